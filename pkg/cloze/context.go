package cloze

// Bucket grades the amount of surrounding material on a card's front.
type Bucket string

const (
	Isolated Bucket = "isolated" // 0-1 tokens
	Phrase   Bucket = "phrase"   // 2-3 tokens
	Minimal  Bucket = "minimal"  // 4 tokens
	Rich     Bucket = "rich"     // 5 or more
)

// Advice values attached to each bucket.
const (
	AdviceNeedsContext      = "needs_context"
	AdviceConsiderEnhancing = "consider_enhancing"
	AdviceGood              = "good"
)

// Context is the contextual-richness class of a card.
type Context struct {
	TokenCount int    `json:"token_count"`
	Bucket     Bucket `json:"bucket"`
	Advice     string `json:"advice"`
}

// ClassifyContext counts the words of front and buckets them.
func ClassifyContext(front string) Context {
	n := len(Tokenize(front))
	return Context{TokenCount: n, Bucket: BucketFor(n), Advice: adviceFor(n)}
}

// BucketFor maps a token count to its bucket. Buckets are disjoint: a
// count of 3 is a phrase.
func BucketFor(n int) Bucket {
	switch {
	case n >= 5:
		return Rich
	case n == 4:
		return Minimal
	case n >= 2:
		return Phrase
	}
	return Isolated
}

func adviceFor(n int) string {
	switch BucketFor(n) {
	case Rich, Minimal:
		return AdviceGood
	case Phrase:
		return AdviceConsiderEnhancing
	}
	return AdviceNeedsContext
}

// Package lint runs every card check over a candidate batch and merges the
// results into one record per card.
package lint

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hazyhaar/hoplite/pkg/cloze"
	"github.com/hazyhaar/hoplite/pkg/deck"
	"github.com/hazyhaar/hoplite/pkg/detect"
	"github.com/hazyhaar/hoplite/pkg/ingest"
	"github.com/hazyhaar/hoplite/pkg/lemma"
	"github.com/hazyhaar/hoplite/pkg/stopwords"
	"github.com/hazyhaar/hoplite/pkg/tags"
)

// DefaultMinClozeConfidence is the confidence at which a cloze suggestion
// counts as recommended.
const DefaultMinClozeConfidence = 0.75

// Options wires a Linter. Resolver is required; a nil Index lints against
// an empty reference collection, a nil Converter leaves tags as imported
// and a nil Tags disables tag hygiene.
type Options struct {
	Index              *deck.Index
	Resolver           *lemma.Resolver
	Stop               *stopwords.Set
	Recommender        *cloze.Recommender
	Converter          *tags.Converter
	Tags               *tags.Schema
	AutoTag            bool
	MinClozeConfidence float64
	Logger             *slog.Logger
}

// Record is the merged result for one card.
type Record struct {
	Row              int                   `json:"row"`
	Front            string                `json:"front"`
	Back             string                `json:"back"`
	Tags             []string              `json:"tags"`
	ConvertedTags    []string              `json:"converted_tags,omitempty"`
	Chapter          string                `json:"chapter,omitempty"`
	Source           string                `json:"source,omitempty"`
	Section          string                `json:"section,omitempty"`
	Detection        detect.Result         `json:"detection"`
	SelfDuplicate    detect.SelfDuplicate  `json:"self_duplicate"`
	SelfLevel        detect.Level          `json:"self_duplicate_level"`
	Context          cloze.Context         `json:"context"`
	Recommendation   *cloze.Recommendation `json:"cloze_recommendation,omitempty"`
	ClozeRecommended bool                  `json:"cloze_recommended"`
	Validation       *cloze.Validation     `json:"cloze_validation,omitempty"`
	TagResult        *tags.Result          `json:"tag_hygiene,omitempty"`
	Error            string                `json:"error,omitempty"`
}

// Report is the outcome of one run.
type Report struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Records   []Record  `json:"records"`
	Summary   Summary   `json:"summary"`
}

// Linter checks candidate batches. It is safe for concurrent use as long
// as the Resolver is.
type Linter struct {
	opts   Options
	logger *slog.Logger
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newRunID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// New validates opts and fills defaults.
func New(opts Options) (*Linter, error) {
	if opts.Resolver == nil {
		return nil, errors.New("lint: resolver is required")
	}
	if opts.Stop == nil {
		opts.Stop = opts.Resolver.Stopwords()
	}
	if opts.Stop == nil {
		opts.Stop = stopwords.Default()
	}
	if opts.Index == nil {
		opts.Index = deck.Build(nil, opts.Resolver)
	}
	if opts.Recommender == nil {
		opts.Recommender = cloze.NewRecommender(opts.Stop)
	}
	if opts.MinClozeConfidence <= 0 {
		opts.MinClozeConfidence = DefaultMinClozeConfidence
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Linter{opts: opts, logger: logger}, nil
}

// Index returns the reference index the linter checks against.
func (l *Linter) Index() *deck.Index { return l.opts.Index }

// Resolver returns the linter's lemma resolver.
func (l *Linter) Resolver() *lemma.Resolver { return l.opts.Resolver }

// Run lints cards in order. A failure on one card is recorded in that
// card's Error and does not stop the batch.
func (l *Linter) Run(cards []ingest.Card) Report {
	rep := Report{
		RunID:     newRunID(),
		StartedAt: time.Now().UTC(),
		Records:   make([]Record, len(cards)),
	}
	log := l.logger.With("run_id", rep.RunID)

	fronts := make([]string, len(cards))
	for i, c := range cards {
		fronts[i] = c.Front
	}
	var selfDups []detect.SelfDuplicate
	if err := protect(func() { selfDups = detect.SelfDuplicates(fronts, l.opts.Resolver) }); err != nil {
		log.Error("self-duplicate detection failed", "error", err)
	}

	for i, c := range cards {
		rec := &rep.Records[i]
		rec.Row, rec.Front, rec.Back, rec.Tags = i, c.Front, c.Back, c.Tags
		rec.SelfLevel = detect.None
		if i < len(selfDups) {
			rec.SelfDuplicate = selfDups[i]
			rec.SelfLevel = selfDups[i].Level()
		}
		if err := protect(func() { l.check(rec) }); err != nil {
			rec.Error = err.Error()
			log.Warn("card failed", "row", i+1, "error", err)
		}
	}

	rep.Summary = Summarize(rep.Records, l.opts.MinClozeConfidence)
	log.Info("lint complete", "cards", len(cards),
		"high", rep.Summary.Levels[detect.High],
		"medium", rep.Summary.Levels[detect.Medium],
		"errors", rep.Summary.Errors)
	return rep
}

func (l *Linter) check(rec *Record) {
	cardTags := rec.Tags
	if l.opts.Converter != nil {
		conv := l.opts.Converter.Convert(rec.Tags)
		rec.ConvertedTags = conv.Tags
		rec.Chapter, rec.Source, rec.Section = conv.Chapter, conv.Source, conv.Section
		cardTags = conv.Tags
	}

	rec.Detection = detect.Classify(rec.Front, rec.Back, l.opts.Index, l.opts.Resolver)
	rec.Context = cloze.ClassifyContext(rec.Front)
	rec.Recommendation = l.opts.Recommender.Recommend(rec.Front, cardTags, rec.Detection.Level, rec.Context)
	if rec.Recommendation != nil {
		rec.ClozeRecommended = rec.Recommendation.Confidence >= l.opts.MinClozeConfidence
	}
	if cloze.IsCloze(rec.Front) {
		v := cloze.Validate(rec.Front, l.opts.Stop)
		rec.Validation = &v
	}
	if l.opts.Tags != nil {
		t := l.opts.Tags.Analyze(rec.Front, rec.Back, cardTags, l.opts.AutoTag)
		rec.TagResult = &t
	}
}

// protect runs fn and turns a panic into an error.
func protect(fn func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	fn()
	return nil
}

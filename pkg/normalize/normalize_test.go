package normalize

import "testing"

func TestForMatch(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"λύω", "λυω"},
		{"ΛΎΩ", "λυω"},
		{"ἡ κρήνη", "η κρηνη"},
		{"τῆς κρήνης", "τησ κρηνησ"},
		{"τῇ κρήνῃ", "τη κρηνη"},
		{"  λόγος,   λόγου; ", "λογοσ λογου"},
		{"τί ἐστι\u037e", "τι εστι"},
		{"ἔστιν\u0387 καλῶς", "εστιν καλωσ"},
		{"ὁ\tἄνθρωπος\n", "ο ανθρωποσ"},
		{"", ""},
		{"   ", ""},
		{"...", ""},
	}
	for _, tt := range tests {
		if got := ForMatch(tt.input); got != tt.want {
			t.Errorf("ForMatch(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestForMatch_Idempotent(t *testing.T) {
	inputs := []string{"Ἀθηναῖος", "τῆς κρήνης", "ΣΟΦΙΑ", "ὦ παῖ, ἐλθέ.", "abc DEF", "\xff\xfeλ"}
	for _, in := range inputs {
		once := ForMatch(in)
		if twice := ForMatch(once); twice != once {
			t.Errorf("ForMatch not idempotent on %q: %q then %q", in, once, twice)
		}
	}
}

func TestForMatch_DecomposedInput(t *testing.T) {
	// Same word, precomposed and decomposed.
	pre := "λύω"
	dec := "λύω"
	if ForMatch(pre) != ForMatch(dec) {
		t.Errorf("ForMatch(%q) = %q, ForMatch(%q) = %q", pre, ForMatch(pre), dec, ForMatch(dec))
	}
}

func TestForMatch_InvalidUTF8(t *testing.T) {
	// Must not panic.
	_ = ForMatch("\xc3\x28 λόγος")
}

func TestForGloss(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"To Loose, Release", "to loose release"},
		{"  spring;  fountain ", "spring fountain"},
		{"café", "café"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ForGloss(tt.input); got != tt.want {
			t.Errorf("ForGloss(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGet(t *testing.T) {
	if Get("none")("ΛΎΩ") != "ΛΎΩ" {
		t.Error("none mode changed input")
	}
	if Get("gloss")("A, B") != "a b" {
		t.Error("gloss mode mismatch")
	}
	if Get("")("ΛΎΩ") != "λυω" {
		t.Error("default mode should be greek")
	}
}

func TestTokens(t *testing.T) {
	if got := Tokens(""); got != nil {
		t.Errorf("Tokens(\"\") = %v, want nil", got)
	}
	got := Tokens("οι βοεσ μενουσι")
	if len(got) != 3 || got[2] != "μενουσι" {
		t.Errorf("Tokens = %v", got)
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"λύω", "λύω"},
		{"<b>λύω</b>", "λύω"},
		{"ἡ<br>κρήνη", "ἡ κρήνη"},
		{"to loose&nbsp;&amp; release", "to loose & release"},
		{"λύω [sound:luo.mp3]", "λύω"},
		{`<div class="x">ὁ <i>λόγος</i></div>`, "ὁ λόγος"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripMarkup(tt.input); got != tt.want {
			t.Errorf("StripMarkup(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

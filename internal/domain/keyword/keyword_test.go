package keyword

import (
	"reflect"
	"testing"
)

func TestExtract_StopWordsAndCase(t *testing.T) {
	s := Extract("The cat sat")
	if s.Contains("the") {
		t.Error("stop word \"the\" must be excluded")
	}
	if !s.Contains("cat") || !s.Contains("sat") {
		t.Errorf("expected cat and sat, got %v", s.Tokens())
	}
}

func TestExtract_Tokenization(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a an to", []string{}},
		{"Enterprise Knowledge Management", []string{"enterprise", "knowledge", "management"}},
		{"abc123def", []string{"abc", "def"}},
		{"e-mail re-index", []string{"mail", "index"}},
		{"data, DATA; Data!", []string{"data"}},
		{"café naïve", []string{"caf"}},
		{"42 3.14 $$$", []string{}},
		{"This would have been theirs", []string{"theirs"}},
	}
	for _, tc := range tests {
		got := Extract(tc.in).Tokens()
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Extract(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestExtract_NeverContainsStopWordsOrShortTokens(t *testing.T) {
	text := "the and for are but not you all can had her was one our out has have been from they " +
		"were many some them this that with will would there their what which when where while " +
		"into more other could should go is it ox retrieval"
	s := Extract(text)
	for _, tok := range s.Tokens() {
		if len(tok) < MinTokenLength {
			t.Errorf("short token %q", tok)
		}
		if IsStopWord(tok) {
			t.Errorf("stop word %q", tok)
		}
	}
	if !reflect.DeepEqual(s.Tokens(), []string{"retrieval"}) {
		t.Errorf("got %v", s.Tokens())
	}
}

func TestFromTokens_RoundTrip(t *testing.T) {
	orig := Extract("search engines index documents")
	back := FromTokens(orig.Tokens())
	if !reflect.DeepEqual(orig.Tokens(), back.Tokens()) {
		t.Errorf("round trip: %v != %v", orig.Tokens(), back.Tokens())
	}
	if back.String() != "search engines index documents" {
		t.Errorf("String() = %q", back.String())
	}
}

func TestFromTokens_Renormalizes(t *testing.T) {
	s := FromTokens([]string{"The", "ab", "Cat"})
	if !reflect.DeepEqual(s.Tokens(), []string{"cat"}) {
		t.Errorf("got %v", s.Tokens())
	}
}

func TestTokens_ReturnsCopy(t *testing.T) {
	s := Extract("alpha beta")
	toks := s.Tokens()
	toks[0] = "mutated"
	if s.Tokens()[0] != "alpha" {
		t.Error("Tokens() exposed internal slice")
	}
}

func TestSimilarity(t *testing.T) {
	a := Extract("alpha beta gamma")
	b := Extract("beta gamma delta")
	empty := Extract("")

	if got := Similarity(a, b); got != 0.5 {
		t.Errorf("Similarity(a,b) = %v, want 0.5", got)
	}
	if Similarity(a, b) != Similarity(b, a) {
		t.Error("similarity must be symmetric")
	}
	if got := Similarity(a, a); got != 1 {
		t.Errorf("Similarity(a,a) = %v, want 1", got)
	}
	if got := Similarity(empty, a); got != 0 {
		t.Errorf("Similarity(empty,a) = %v, want 0", got)
	}
	if got := Similarity(a, empty); got != 0 {
		t.Errorf("Similarity(a,empty) = %v, want 0", got)
	}
	if got := Similarity(empty, empty); got != 0 {
		t.Errorf("Similarity(empty,empty) = %v, want 0", got)
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	texts := []string{
		"enterprise knowledge features",
		"Enterprise Knowledge Management System features include search",
		"unrelated words entirely",
		"features",
		"",
	}
	for _, x := range texts {
		for _, y := range texts {
			a, b := Extract(x), Extract(y)
			s := Similarity(a, b)
			if s < 0 || s > 1 {
				t.Errorf("Similarity(%q,%q) = %v out of [0,1]", x, y, s)
			}
			if s != Similarity(b, a) {
				t.Errorf("asymmetric for %q / %q", x, y)
			}
		}
	}
}

func TestSimilarity_Scenario(t *testing.T) {
	q := Extract("enterprise knowledge features")
	c := Extract("Enterprise Knowledge Management System features include search")
	// 3 shared of 7 distinct
	if got, want := Similarity(q, c), 3.0/7.0; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

package result

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewHit_CapsText(t *testing.T) {
	h := NewHit("doc-1", "a.txt", strings.Repeat("é", 800), 0.5)
	if n := utf8.RuneCountInString(h.Text()); n != MaxHitTextLength {
		t.Errorf("text length = %d, want %d", n, MaxHitTextLength)
	}
	if !utf8.ValidString(h.Text()) {
		t.Error("truncation split a multi-byte character")
	}
}

func TestNewHit_ShortTextUntouched(t *testing.T) {
	h := NewHit("doc-1", "a.txt", "short", 0.5)
	if h.Text() != "short" {
		t.Errorf("Text() = %q", h.Text())
	}
}

func TestNewSource_RoundsRelevance(t *testing.T) {
	s := NewSource("doc-1", "a.txt", 3.0/7.0)
	if s.Relevance() != 0.429 {
		t.Errorf("Relevance() = %v, want 0.429", s.Relevance())
	}
}

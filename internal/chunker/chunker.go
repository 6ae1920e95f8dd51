// Package chunker splits text into fixed-size overlapping windows.
package chunker

import (
	"fmt"
	"strings"
)

// Default window geometry, in characters.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Chunker splits text into windows of size characters, each starting size-overlap characters
// after the previous one.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker. overlap must be smaller than size so that every window advances.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must be non-negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Default returns the 1000/200 chunker used by ingestion.
func Default() *Chunker {
	return &Chunker{size: DefaultSize, overlap: DefaultOverlap}
}

// Size returns the window size.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the window overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Window is one trimmed chunk together with its rune offsets in the source text.
type Window struct {
	Text  string
	Start int
	End   int
}

// Split returns the trimmed, non-empty windows of text in order.
func (c *Chunker) Split(text string) []string {
	windows := c.Windows(text)
	out := make([]string, len(windows))
	for i, w := range windows {
		out[i] = w.Text
	}
	return out
}

// Windows is Split with offsets. Whitespace-only windows are dropped but still advance the cursor,
// and iteration stops after the window that reaches the end of the text.
func (c *Chunker) Windows(text string) []Window {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var out []Window
	for start := 0; start < len(runes); start += step {
		end := min(start+c.size, len(runes))
		if trimmed := strings.TrimSpace(string(runes[start:end])); trimmed != "" {
			out = append(out, Window{Text: trimmed, Start: start, End: end})
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

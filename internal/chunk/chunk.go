package chunk

import (
	"errors"
	"fmt"
	"strings"
)

// Default window parameters, in words.
const (
	DefaultSize    = 150
	DefaultOverlap = 30
)

// ErrInvalidConfiguration is returned when the window parameters would not
// make forward progress over the word list.
var ErrInvalidConfiguration = errors.New("invalid chunk configuration")

// Chunk is a contiguous window of whitespace-delimited words from a document.
// ID is the chunk's position in its Collection.
type Chunk struct {
	ID    int
	Start int // index of the first word in the source document
	Words []string
}

// Text returns the chunk words joined by single spaces.
func (c Chunk) Text() string {
	return strings.Join(c.Words, " ")
}

// Len returns the number of words in the chunk.
func (c Chunk) Len() int {
	return len(c.Words)
}

// Preview returns the first maxRunes runes of the chunk text.
func (c Chunk) Preview(maxRunes int) string {
	text := c.Text()
	if maxRunes <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes])
}

// Collection is an ordered set of chunks; a chunk's identifier is its index.
type Collection []Chunk

// Texts returns the chunk texts in identifier order.
func (c Collection) Texts() []string {
	texts := make([]string, len(c))
	for i, ch := range c {
		texts[i] = ch.Text()
	}
	return texts
}

// Get returns the chunk with the given identifier.
func (c Collection) Get(id int) (Chunk, bool) {
	if id < 0 || id >= len(c) {
		return Chunk{}, false
	}
	return c[id], true
}

// Validate checks that size and overlap describe a window that advances.
func Validate(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfiguration, size)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidConfiguration, overlap)
	}
	if overlap >= size {
		return fmt.Errorf("%w: overlap (%d) must be smaller than size (%d)", ErrInvalidConfiguration, overlap, size)
	}
	return nil
}

// Split breaks text into windows of size words, each starting size-overlap
// words after the previous one. The last window may be shorter than size.
// Empty or all-whitespace text yields an empty collection.
func Split(text string, size, overlap int) (Collection, error) {
	if err := Validate(size, overlap); err != nil {
		return nil, err
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return Collection{}, nil
	}

	step := size - overlap
	out := make(Collection, 0, len(words)/step+1)
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		out = append(out, Chunk{
			ID:    len(out),
			Start: start,
			Words: words[start:end:end],
		})
	}
	return out, nil
}

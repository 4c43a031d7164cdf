package segmenter

import (
	"fmt"
	"strings"
)

const (
	DefaultChunkSize = 400 // characters
	DefaultOverlap   = 80  // characters
)

// Piece is one window of the source text with its half-open character
// interval [Start, End).
type Piece struct {
	Text  string
	Start int
	End   int
}

// Segment splits text into overlapping windows of at most chunkSize
// characters, preferring to break on a line or sentence boundary.
// Consecutive pieces share overlap characters. The union of all
// [Start, End) intervals covers every offset of text.
//
// An overlap >= chunkSize would stop the cursor from advancing, so the
// parameters are rejected up front instead of looping forever.
func Segment(text string, chunkSize, overlap int) ([]Piece, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("segmenter: chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("segmenter: overlap must satisfy 0 <= overlap < chunk size, got overlap=%d chunk_size=%d", overlap, chunkSize)
	}
	if text == "" {
		return nil, nil
	}

	var pieces []Piece
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		if end < len(text) {
			// Not the final window: snap back to the later of the last
			// line break and the last sentence terminator, but never
			// into the overlap region carried from the previous piece.
			boundary := strings.LastIndex(text[start:end], "\n")
			if b := strings.LastIndex(text[start:end], ". "); b > boundary {
				boundary = b
			}
			if boundary > overlap {
				end = start + boundary + 1
			}
		}
		pieces = append(pieces, Piece{Text: text[start:end], Start: start, End: end})
		if end == len(text) {
			break
		}
		start = end - overlap
	}
	return pieces, nil
}

package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Chunk is a contiguous slice of a document's text, the atomic unit of
// embedding and retrieval. Offsets and lengths are in characters (runes) so
// accented corpus text splits cleanly.
type Chunk struct {
	ChunkID         string // Content-addressed: sha256 of document ID, offset and text.
	DocumentID      string
	Text            string
	StartOffset     int
	Length          int
	OverlapWithPrev int
}

// boundaries are tried in order when looking for a cut point, mirroring the
// recursive splitting behaviour the index was originally built with:
// paragraph break first, then sentence end, then line break, then word break.
var boundaries = []string{"\n\n", ". ", "! ", "? ", "\n", " "}

// Split cuts a document's text into overlapping chunks of at most size
// characters. Consecutive chunks overlap by overlap characters when a hard
// cut is taken; when a paragraph or sentence boundary is found near the limit
// the cut moves back to it. Every chunk is an exact substring of the input
// and consecutive chunks are contiguous, so stripping each chunk's
// overlapping prefix and concatenating reconstructs the document.
func Split(documentID, text string, size, overlap int) ([]Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunker: size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunker: overlap %d must be in [0, size)", overlap)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	// A document shorter than the chunk size is a single chunk.
	if len(runes) <= size {
		return []Chunk{makeChunk(documentID, text, 0, 0)}, nil
	}

	var chunks []Chunk
	start := 0
	prevEnd := 0

	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = adjustToBoundary(runes, start, end)
		}

		overlapWithPrev := 0
		if len(chunks) > 0 {
			overlapWithPrev = prevEnd - start
		}
		chunks = append(chunks, makeChunk(documentID, string(runes[start:end]), start, overlapWithPrev))

		if end == len(runes) {
			break
		}

		prevEnd = end
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks, nil
}

// adjustToBoundary searches backwards from the hard limit for the best cut
// point, never giving up more than half the chunk. Returns the index right
// after the boundary, or the hard limit when none is found.
func adjustToBoundary(runes []rune, start, limit int) int {
	window := string(runes[start:limit])
	minCut := len([]rune(window)) / 2

	for _, sep := range boundaries {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := len([]rune(window[:idx])) + len([]rune(sep))
		if cut > minCut {
			return start + cut
		}
	}
	return limit
}

func makeChunk(documentID, text string, offset, overlapWithPrev int) Chunk {
	return Chunk{
		ChunkID:         chunkID(documentID, offset, text),
		DocumentID:      documentID,
		Text:            text,
		StartOffset:     offset,
		Length:          len([]rune(text)),
		OverlapWithPrev: overlapWithPrev,
	}
}

// chunkID derives a stable content-addressed identifier. Re-ingesting an
// unchanged document reproduces the same IDs, which is what makes re-runs
// no-ops at the index level.
func chunkID(documentID string, offset int, text string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s:%d:%s", documentID, offset, text)
	return hex.EncodeToString(h.Sum(nil))
}

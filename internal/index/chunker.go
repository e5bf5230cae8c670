package index

import "unicode/utf8"

// Chunk is one immutable guideline fragment. Offset is the rune offset of the
// chunk start within its source document.
type Chunk struct {
	Text     string `json:"text"`
	SourceID string `json:"source_id"`
	Offset   int    `json:"offset"`
}

// Chunker splits source text into overlapping fixed-size character windows.
// The overlap exists so a fact spanning a chunk boundary is not lost.
type Chunker struct {
	Size    int
	Overlap int
}

// DefaultChunker matches the corpus defaults (1000 chars, 200 overlap).
func DefaultChunker() Chunker {
	return Chunker{Size: 1000, Overlap: 200}
}

// Split windows the source into chunks. Windows advance by Size-Overlap runes;
// a final short window is kept. Empty or whitespace-free degenerate input
// yields zero chunks only when the text itself is empty.
func (c Chunker) Split(sourceID, text string) []Chunk {
	if text == "" {
		return nil
	}
	size := c.Size
	if size <= 0 {
		size = 1000
	}
	overlap := c.Overlap
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	step := size - overlap

	runes := []rune(text)
	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Text:     string(runes[start:end]),
			SourceID: sourceID,
			Offset:   start,
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// ValidUTF8 reports whether the source bytes decode as text. The indexer
// aborts on undecodable sources instead of silently skipping them.
func ValidUTF8(b []byte) bool {
	return utf8.Valid(b)
}

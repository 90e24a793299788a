package document

import (
	"strings"
	"unicode/utf8"
)

// Splitter cuts parsed documents into overlapping chunks for embedding and
// compliance analysis. Sizes are in runes. Break points prefer paragraph,
// then line, then word boundaries, falling back to a hard cut.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// NewSplitter creates a Splitter. Overlap must be smaller than ChunkSize;
// the config layer validates that before construction.
func NewSplitter(chunkSize, overlap int) *Splitter {
	return &Splitter{ChunkSize: chunkSize, Overlap: overlap}
}

// Split chunks a parsed document, preserving the page each chunk starts on.
// Chunk indexes are sequential across the whole document.
func (s *Splitter) Split(doc *Parsed) []Chunk {
	var chunks []Chunk
	index := 0
	for _, page := range doc.Pages {
		for _, text := range s.splitText(page.Text) {
			chunks = append(chunks, Chunk{
				Source: doc.Name,
				Page:   page.Page,
				Index:  index,
				Text:   text,
			})
			index++
		}
	}
	return chunks
}

// SplitAll chunks several documents, keeping per-document indexes.
func (s *Splitter) SplitAll(docs []*Parsed) []Chunk {
	var chunks []Chunk
	for _, doc := range docs {
		chunks = append(chunks, s.Split(doc)...)
	}
	return chunks
}

// separators in preference order; the empty string means a hard cut.
var separators = []string{"\n\n", "\n", " "}

// splitText cuts text into pieces of at most ChunkSize runes with Overlap
// runes carried over between adjacent pieces.
func (s *Splitter) splitText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= s.ChunkSize {
		return []string{text}
	}

	var pieces []string
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			piece := strings.TrimSpace(string(runes[start:]))
			if piece != "" {
				pieces = append(pieces, piece)
			}
			break
		}

		cut := s.findBreak(runes[start:end])
		piece := strings.TrimSpace(string(runes[start : start+cut]))
		if piece != "" {
			pieces = append(pieces, piece)
		}

		next := start + cut - s.Overlap
		if next <= start {
			// Overlap would stall progress on pathological input
			next = start + cut
		}
		start = next
	}
	return pieces
}

// findBreak returns the cut position within window, preferring the last
// occurrence of the strongest separator in the second half of the window.
func (s *Splitter) findBreak(window []rune) int {
	text := string(window)
	half := len(text) / 2
	for _, sep := range separators {
		if idx := strings.LastIndex(text, sep); idx > half {
			return utf8.RuneCountInString(text[:idx+len(sep)])
		}
	}
	return len(window)
}

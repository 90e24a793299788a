// Package document handles uploaded regulatory submission files: format
// detection, text extraction, archive expansion, and chunking for indexing
// and analysis.
//
// Parsing is stateless; a Parser is safe for concurrent use.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Upload is a raw uploaded file before parsing.
type Upload struct {
	Name string
	Data []byte
}

// ReadUpload loads a file from disk as an Upload named by its base name.
func ReadUpload(path string) (Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Upload{Name: filepath.Base(path), Data: data}, nil
}

// PageText is the extracted text of a single page. Page is 1-based;
// formats without page structure use a single PageText with Page 0.
type PageText struct {
	Page int
	Text string
}

// Parsed is the result of extracting text from one uploaded file.
type Parsed struct {
	Name     string
	FileType string // "pdf", "docx", "text"
	Pages    []PageText
	Size     int64
	Words    int
	Category Category
}

// Text returns the full extracted text with page breaks joined by newlines.
func (p *Parsed) Text() string {
	parts := make([]string, 0, len(p.Pages))
	for _, pg := range p.Pages {
		parts = append(parts, pg.Text)
	}
	return strings.Join(parts, "\n")
}

// Chunk is a contiguous slice of a parsed document, sized for embedding
// and analysis. Page is the page the chunk starts on (0 if unknown).
type Chunk struct {
	Source string
	Page   int
	Index  int
	Text   string
}

// Category classifies a submission document by its role in the package.
type Category string

const (
	CategoryClinical      Category = "clinical"
	CategoryTechnical     Category = "technical"
	CategoryQuality       Category = "quality"
	CategoryCybersecurity Category = "cybersecurity"
	CategoryLabeling      Category = "labeling"
	CategoryGeneral       Category = "general"
)

// categoryHints maps filename substrings to document categories.
var categoryHints = []struct {
	hints    []string
	category Category
}{
	{[]string{"clinical", "study", "trial"}, CategoryClinical},
	{[]string{"technical", "specification", "design"}, CategoryTechnical},
	{[]string{"quality", "qms", "iso"}, CategoryQuality},
	{[]string{"cyber", "security", "soup"}, CategoryCybersecurity},
	{[]string{"label", "ifu", "instruction"}, CategoryLabeling},
}

// Categorize infers a document's category from its filename.
func Categorize(name string) Category {
	lower := strings.ToLower(name)
	for _, h := range categoryHints {
		for _, hint := range h.hints {
			if strings.Contains(lower, hint) {
				return h.category
			}
		}
	}
	return CategoryGeneral
}

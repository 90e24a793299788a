package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

var (
	// ErrUploadTooLarge indicates an upload exceeds the configured ceiling.
	ErrUploadTooLarge = errors.New("upload too large")

	// ErrEmptyUpload indicates an upload with no content.
	ErrEmptyUpload = errors.New("empty upload")

	// ErrUnsupportedType indicates a file format the parser cannot extract text from.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrBadArchive indicates a ZIP archive that cannot be opened.
	ErrBadArchive = errors.New("invalid ZIP archive")
)

// MIME types the parser dispatches on.
const (
	mimePDF  = "application/pdf"
	mimeZIP  = "application/zip"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Parser extracts plain text from uploaded submission documents.
// Format detection uses content sniffing, not the file extension, so a
// mislabeled upload is still handled by the right extractor.
type Parser struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewParser creates a Parser. maxBytes caps the size of a single file,
// including files inside archives.
func NewParser(maxBytes int64, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{maxBytes: maxBytes, logger: logger}
}

// Expand flattens an upload into the list of files to parse.
// ZIP archives yield their member files (directories skipped); anything
// else passes through unchanged. Nested archives are not descended into.
func (p *Parser) Expand(u Upload) ([]Upload, error) {
	if int64(len(u.Data)) > p.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrUploadTooLarge, u.Name, len(u.Data), p.maxBytes)
	}
	if len(u.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyUpload, u.Name)
	}

	// Detection returns the most specific type, so a .docx (itself a ZIP
	// container) does not match here and passes through to Parse.
	if !mimetype.Detect(u.Data).Is(mimeZIP) {
		return []Upload{u}, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(u.Data), int64(len(u.Data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadArchive, u.Name, err)
	}

	var members []Upload
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if f.UncompressedSize64 > uint64(p.maxBytes) {
			return nil, fmt.Errorf("%w: %s in %s", ErrUploadTooLarge, f.Name, u.Name)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s in %s: %w", f.Name, u.Name, err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, p.maxBytes+1))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s in %s: %w", f.Name, u.Name, err)
		}
		if int64(len(data)) > p.maxBytes {
			return nil, fmt.Errorf("%w: %s in %s", ErrUploadTooLarge, f.Name, u.Name)
		}
		members = append(members, Upload{Name: f.Name, Data: data})
	}

	p.logger.Debug("expanded archive", "name", u.Name, "members", len(members))
	return members, nil
}

// Check validates an upload without extracting text. It applies the same
// size, emptiness, and format rules as Parse, so callers can reject bad
// input up front. ZIP archives pass; their members are checked on expansion.
func (p *Parser) Check(u Upload) error {
	if int64(len(u.Data)) > p.maxBytes {
		return fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrUploadTooLarge, u.Name, len(u.Data), p.maxBytes)
	}
	if len(u.Data) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyUpload, u.Name)
	}
	mime := mimetype.Detect(u.Data)
	switch {
	case mime.Is(mimePDF), mime.Is(mimeDOCX), mime.Is(mimeZIP):
		return nil
	case strings.HasPrefix(mime.String(), "text/"):
		return nil
	}
	return fmt.Errorf("%w: %s detected as %s", ErrUnsupportedType, u.Name, mime.String())
}

// Parse extracts text from a single (non-archive) upload.
func (p *Parser) Parse(u Upload) (*Parsed, error) {
	if int64(len(u.Data)) > p.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrUploadTooLarge, u.Name, len(u.Data), p.maxBytes)
	}
	if len(u.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyUpload, u.Name)
	}

	mime := mimetype.Detect(u.Data)

	var (
		pages    []PageText
		fileType string
		err      error
	)
	switch {
	case mime.Is(mimePDF):
		fileType = "pdf"
		pages, err = parsePDF(u.Data)
	case mime.Is(mimeDOCX):
		fileType = "docx"
		pages, err = parseDOCX(u.Data)
	case strings.HasPrefix(mime.String(), "text/"):
		fileType = "text"
		pages = []PageText{{Page: 0, Text: decodeText(u.Data)}}
	default:
		return nil, fmt.Errorf("%w: %s detected as %s", ErrUnsupportedType, u.Name, mime.String())
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", u.Name, err)
	}

	for i := range pages {
		pages[i].Text = cleanText(pages[i].Text)
	}

	parsed := &Parsed{
		Name:     u.Name,
		FileType: fileType,
		Pages:    pages,
		Size:     int64(len(u.Data)),
		Category: Categorize(u.Name),
	}
	parsed.Words = len(strings.Fields(parsed.Text()))

	p.logger.Debug("parsed document",
		"name", u.Name, "type", fileType, "pages", len(pages), "words", parsed.Words)
	return parsed, nil
}

// parsePDF extracts per-page text. The pdf library panics on some malformed
// inputs, so extraction runs under a recover that converts panics to errors.
func parsePDF(data []byte) (pages []PageText, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for num := 1; num <= r.NumPage(); num++ {
		page := r.Page(num)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages rather than failing the whole document
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, PageText{Page: num, Text: text})
	}
	return pages, nil
}

// docx body elements we care about inside word/document.xml.
type docxBody struct {
	Paragraphs []docxParagraph `xml:"body>p"`
	Tables     []docxTable     `xml:"body>tbl"`
}

type docxParagraph struct {
	Runs []string `xml:"r>t"`
}

type docxTable struct {
	Rows []docxRow `xml:"tr"`
}

type docxRow struct {
	Cells []docxCell `xml:"tc"`
}

type docxCell struct {
	Paragraphs []docxParagraph `xml:"p"`
}

// parseDOCX pulls paragraph and table text from the OOXML document part.
// A .docx is a ZIP container; the text lives in word/document.xml.
func parseDOCX(data []byte) ([]PageText, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening docx container: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("opening document part: %w", err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("reading document part: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, errors.New("docx missing word/document.xml")
	}

	var body docxBody
	if err := xml.Unmarshal(docXML, &body); err != nil {
		return nil, fmt.Errorf("decoding document part: %w", err)
	}

	var lines []string
	for _, para := range body.Paragraphs {
		if text := strings.Join(para.Runs, ""); strings.TrimSpace(text) != "" {
			lines = append(lines, text)
		}
	}
	for _, tbl := range body.Tables {
		for _, row := range tbl.Rows {
			var cells []string
			for _, cell := range row.Cells {
				var cellText []string
				for _, para := range cell.Paragraphs {
					if text := strings.Join(para.Runs, ""); strings.TrimSpace(text) != "" {
						cellText = append(cellText, text)
					}
				}
				if len(cellText) > 0 {
					cells = append(cells, strings.Join(cellText, " "))
				}
			}
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, " | "))
			}
		}
	}

	// Word documents carry no reliable page structure; treat as unpaged
	return []PageText{{Page: 0, Text: strings.Join(lines, "\n")}}, nil
}

// decodeText decodes a text upload, replacing invalid UTF-8 rather than failing.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}

var (
	multiBlank   = regexp.MustCompile(`\n\s*\n\s*\n`)
	runsOfSpaces = regexp.MustCompile(`[ \t]+`)
	controlChars = regexp.MustCompile("[\x00-\x08\x0b\x0e-\x1f\x7f]")
)

// cleanText normalizes extracted text: line endings, form feeds, excess
// whitespace, and stray control characters from PDF extraction.
func cleanText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x0c", "\n")
	text = controlChars.ReplaceAllString(text, "")
	text = runsOfSpaces.ReplaceAllString(text, " ")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fdassist/internal/document"
	"fdassist/internal/knowledge"
	"fdassist/internal/log"
	"fdassist/internal/rag"
	"fdassist/internal/router"
)

// Warnings appended when a turn has no usable uploads.
const (
	noUploadsMessage   = "⚠️ No uploaded files found in the state."
	noDocumentsMessage = "⚠️ No valid documents found to process."
)

// Indexer stores a parsed document's chunks in a corpus.
type Indexer interface {
	IndexParsed(ctx context.Context, corpus string, parsed *document.Parsed) (*rag.IndexResult, error)
}

// DocumentProcessor parses, chunks, and indexes uploaded files so the LLM
// specialists can search them. It is fully deterministic; no model call is
// involved.
type DocumentProcessor struct {
	parser  *document.Parser
	indexer Indexer
	logger  log.Logger
}

// NewDocumentProcessor creates the document processor.
func NewDocumentProcessor(parser *document.Parser, indexer Indexer, logger log.Logger) (*DocumentProcessor, error) {
	if parser == nil {
		return nil, errors.New("parser is required")
	}
	if indexer == nil {
		return nil, errors.New("indexer is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &DocumentProcessor{parser: parser, indexer: indexer, logger: logger}, nil
}

// Name returns the processor's routing name.
func (p *DocumentProcessor) Name() string { return NameDocumentProcessor }

// Run expands, parses, and indexes every upload into the upload corpus,
// recording the results on the state. A file that fails to parse or index
// is skipped; processing continues with the rest.
func (p *DocumentProcessor) Run(ctx context.Context, st *router.State) error {
	if len(st.Uploads) == 0 {
		st.Append(router.Message{Role: "assistant", Agent: NameDocumentProcessor, Content: noUploadsMessage})
		return nil
	}

	totalChunks := 0
	for _, u := range st.Uploads {
		members, err := p.parser.Expand(u)
		if err != nil {
			p.logger.Warn("skipping upload", "name", u.Name, "error", err)
			continue
		}
		for _, m := range members {
			parsed, err := p.parser.Parse(m)
			if err != nil {
				p.logger.Warn("skipping document", "name", m.Name, "error", err)
				continue
			}
			res, err := p.indexer.IndexParsed(ctx, knowledge.CorpusUpload, parsed)
			if err != nil {
				p.logger.Warn("skipping document", "name", parsed.Name, "error", err)
				continue
			}
			st.Processed = append(st.Processed, router.Processed{
				Name:     parsed.Name,
				FileType: parsed.FileType,
				Category: parsed.Category,
				Pages:    len(parsed.Pages),
				Chunks:   res.Chunks,
				Words:    parsed.Words,
				Text:     parsed.Text(),
			})
			totalChunks += res.Chunks
		}
	}

	if len(st.Processed) == 0 {
		st.Append(router.Message{Role: "assistant", Agent: NameDocumentProcessor, Content: noDocumentsMessage})
		return nil
	}

	var b strings.Builder
	b.WriteString("✅ Document processing complete!\n\n")
	fmt.Fprintf(&b, "📄 Processed %d uploaded files\n", len(st.Uploads))
	fmt.Fprintf(&b, "📝 Created %d document chunks\n", totalChunks)
	b.WriteString("🔍 Documents are now ready for compliance analysis\n\n")
	b.WriteString("Files processed:\n")
	for _, proc := range st.Processed {
		fmt.Fprintf(&b, "- %s (%s)\n", proc.Name, proc.FileType)
	}
	b.WriteString("\nDocuments are ready for cybersecurity and regulatory analysis.")

	st.Append(router.Message{Role: "assistant", Agent: NameDocumentProcessor, Content: b.String()})
	return nil
}

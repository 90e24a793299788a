package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"

	"fdassist/internal/knowledge"
	"fdassist/internal/log"
	"fdassist/internal/rag"
	"fdassist/internal/router"
	"fdassist/internal/tools"
)

// Agent names as they appear in the message log and routing decisions.
const (
	NameDocumentProcessor = router.AgentDocumentProcessor
	NameCybersecurity     = router.AgentCybersecurity
	NameRegulatory        = router.AgentRegulatory
	NameAuditor           = router.AgentAuditor
	NameReportGenerator   = router.AgentReportGenerator
)

// Retriever supplies corpus similarity search to the LLM specialists.
type Retriever interface {
	Retrieve(ctx context.Context, corpus, query string) ([]rag.Passage, error)
}

// defaultQueries seed retrieval in gap-analysis turns that come without a
// question, so the specialists still pull relevant guidance for the report.
var defaultQueries = map[string]string{
	knowledge.CorpusCybersecurity: "FDA cybersecurity requirements for medical device premarket submissions",
	knowledge.CorpusRegulatory:    "FDA regulatory submission requirements for medical devices",
}

// Specialist is a retrieval-augmented LLM agent scoped to one corpus.
// In gap-analysis turns it additionally scores the uploaded package against
// its regulation's compliance criteria.
type Specialist struct {
	name       string
	corpus     string
	regulation string
	prompt     string
	toolset    []ai.ToolRef
	gen        *Generator
	retriever  Retriever
	logger     log.Logger
}

// NewCybersecurity creates the cybersecurity specialist. The toolset is
// what the model may call during generation, normally selected with
// ToolsFor from the registered tools.
func NewCybersecurity(gen *Generator, retriever Retriever, logger log.Logger, toolset ...ai.ToolRef) (*Specialist, error) {
	return newSpecialist(NameCybersecurity, knowledge.CorpusCybersecurity,
		tools.RegulationCybersecurity, cybersecurityPrompt, toolset, gen, retriever, logger)
}

// NewRegulatory creates the regulatory specialist. Uploaded packages are
// scored against the 510(k) criteria, the default submission pathway.
func NewRegulatory(gen *Generator, retriever Retriever, logger log.Logger, toolset ...ai.ToolRef) (*Specialist, error) {
	return newSpecialist(NameRegulatory, knowledge.CorpusRegulatory,
		tools.Regulation510k, regulatoryPrompt, toolset, gen, retriever, logger)
}

func newSpecialist(name, corpus, regulation, prompt string, toolset []ai.ToolRef, gen *Generator, retriever Retriever, logger log.Logger) (*Specialist, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Specialist{
		name:       name,
		corpus:     corpus,
		regulation: regulation,
		prompt:     prompt,
		toolset:    toolset,
		gen:        gen,
		retriever:  retriever,
		logger:     logger,
	}, nil
}

// Name returns the specialist's routing name.
func (s *Specialist) Name() string { return s.name }

// Run retrieves corpus passages for the turn's question, generates an
// answer grounded in them, and appends the answer with its source section
// to the conversation log. In gap-analysis mode it also records a
// compliance analysis of the combined uploaded text.
func (s *Specialist) Run(ctx context.Context, st *router.State) error {
	query := strings.TrimSpace(st.Question)
	if query == "" {
		query = defaultQueries[s.corpus]
	}

	passages, err := s.retriever.Retrieve(ctx, s.corpus, query)
	if err != nil {
		return fmt.Errorf("%s retrieval: %w", s.name, err)
	}

	opts := []ai.GenerateOption{ai.WithPrompt(buildPrompt(s.prompt, formatPassages(passages), query))}
	if len(s.toolset) > 0 {
		opts = append(opts, ai.WithTools(s.toolset...))
	}
	answer, err := s.gen.Generate(ctx, opts...)
	if err != nil {
		return fmt.Errorf("%s generation: %w", s.name, err)
	}

	if st.Mode == router.ModeGapAnalysis {
		if combined := st.CombinedText(); combined != "" {
			analysis := tools.AnalyzeCompliance(combined, s.regulation)
			if s.corpus == knowledge.CorpusCybersecurity {
				st.Cyber = analysis
			} else {
				st.Regulatory = analysis
			}
			s.logger.Info("scored uploaded package",
				"agent", s.name,
				"regulation", s.regulation,
				"score", analysis.OverallScore,
			)
		}
	}

	sources := make([]router.Source, len(passages))
	for i, p := range passages {
		sources[i] = router.Source{Document: p.Source, Page: p.Page}
	}
	st.AddSources(sources...)

	st.Append(router.Message{
		Role:    "assistant",
		Agent:   s.name,
		Content: answer + sourcesSection(sources),
	})
	return nil
}

// sourcesSection renders the citation list appended to a specialist answer.
// The router strips this section again before final compilation.
func sourcesSection(srcs []router.Source) string {
	if len(srcs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n📚 **Sources referenced:**\n")
	for i, src := range srcs {
		fmt.Fprintf(&b, "%d. %s - Page %d\n", i+1, src.Document, src.Page)
	}
	return strings.TrimRight(b.String(), "\n")
}

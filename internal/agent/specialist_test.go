package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"fdassist/internal/document"
	"fdassist/internal/knowledge"
	"fdassist/internal/log"
	"fdassist/internal/rag"
	"fdassist/internal/router"
)

type fakeRetriever struct {
	passages   []rag.Passage
	err        error
	lastCorpus string
	lastQuery  string
}

func (f *fakeRetriever) Retrieve(_ context.Context, corpus, query string) ([]rag.Passage, error) {
	f.lastCorpus = corpus
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

func cannedGenerator(answer string) *Generator {
	return newTestGenerator(func(_ context.Context, _ *genkit.Genkit, _ ...ai.GenerateOption) (*ai.ModelResponse, error) {
		return textResponse(answer), nil
	})
}

func TestSpecialistRunQuestionAnswering(t *testing.T) {
	t.Parallel()

	fr := &fakeRetriever{passages: []rag.Passage{
		{Source: "premarket-cyber-guidance.pdf", Page: 3, Content: "SOUP must be documented."},
		{Source: "premarket-cyber-guidance.pdf", Page: 7, Content: "Threat modeling is expected."},
	}}
	spec, err := NewCybersecurity(cannedGenerator("SOUP components must be documented."), fr, log.NewNop())
	if err != nil {
		t.Fatalf("NewCybersecurity() error = %v", err)
	}

	st := router.NewState("What are SOUP requirements for medical devices?", nil)
	if err := spec.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if fr.lastCorpus != knowledge.CorpusCybersecurity {
		t.Errorf("retrieved corpus %q, want %q", fr.lastCorpus, knowledge.CorpusCybersecurity)
	}
	if fr.lastQuery != st.Question {
		t.Errorf("retrieved query %q, want the question", fr.lastQuery)
	}

	msgs := st.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Agent != NameCybersecurity {
		t.Errorf("message agent = %q, want %q", msgs[0].Agent, NameCybersecurity)
	}
	if !strings.HasPrefix(msgs[0].Content, "SOUP components must be documented.") {
		t.Errorf("message does not start with the answer: %q", msgs[0].Content)
	}
	if !strings.Contains(msgs[0].Content, "📚 **Sources referenced:**") {
		t.Error("message missing sources section")
	}
	if !strings.Contains(msgs[0].Content, "1. premarket-cyber-guidance.pdf - Page 3") {
		t.Errorf("message missing first source line: %q", msgs[0].Content)
	}

	if got := len(st.Sources()); got != 2 {
		t.Errorf("got %d sources, want 2", got)
	}
	if !st.Completed(NameCybersecurity) {
		t.Error("specialist not marked completed")
	}
}

func TestSpecialistGapModeScoresPackage(t *testing.T) {
	t.Parallel()

	uploads := []document.Upload{{Name: "submission.txt", Data: []byte("x")}}
	st := router.NewState("", uploads)
	st.Processed = []router.Processed{{
		Name: "submission.txt",
		Text: "We performed threat modeling and maintain an SBOM with vulnerability assessment and penetration testing.",
	}}

	fr := &fakeRetriever{}
	spec, err := NewCybersecurity(cannedGenerator("analysis"), fr, log.NewNop())
	if err != nil {
		t.Fatalf("NewCybersecurity() error = %v", err)
	}
	if err := spec.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if st.Cyber == nil {
		t.Fatal("cybersecurity analysis not recorded")
	}
	if st.Regulatory != nil {
		t.Error("regulatory analysis set by cybersecurity specialist")
	}
	if st.Cyber.OverallScore <= 0 {
		t.Errorf("analysis score = %v, want > 0", st.Cyber.OverallScore)
	}
	if fr.lastQuery != defaultQueries[knowledge.CorpusCybersecurity] {
		t.Errorf("empty question should use the default query, got %q", fr.lastQuery)
	}
}

func TestRegulatorySpecialistRecordsItsAnalysis(t *testing.T) {
	t.Parallel()

	st := router.NewState("", []document.Upload{{Name: "s.txt", Data: []byte("x")}})
	st.Processed = []router.Processed{{Name: "s.txt", Text: "predicate device comparison with performance testing"}}

	spec, err := NewRegulatory(cannedGenerator("analysis"), &fakeRetriever{}, log.NewNop())
	if err != nil {
		t.Fatalf("NewRegulatory() error = %v", err)
	}
	if err := spec.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if st.Regulatory == nil {
		t.Fatal("regulatory analysis not recorded")
	}
	if st.Cyber != nil {
		t.Error("cybersecurity analysis set by regulatory specialist")
	}
	if st.Regulatory.RegulationType != "510k" {
		t.Errorf("regulation type = %q, want 510k", st.Regulatory.RegulationType)
	}
}

func TestSpecialistRetrievalError(t *testing.T) {
	t.Parallel()

	fr := &fakeRetriever{err: errors.New("connection refused")}
	spec, err := NewRegulatory(cannedGenerator("unused"), fr, log.NewNop())
	if err != nil {
		t.Fatalf("NewRegulatory() error = %v", err)
	}

	st := router.NewState("what is a 510k", nil)
	if err := spec.Run(context.Background(), st); err == nil {
		t.Fatal("Run() error = nil, want retrieval error")
	}
	if len(st.Messages()) != 0 {
		t.Error("failed run should not append a message")
	}
}

func TestSpecialistGenerationError(t *testing.T) {
	t.Parallel()

	gen := newTestGenerator(func(_ context.Context, _ *genkit.Genkit, _ ...ai.GenerateOption) (*ai.ModelResponse, error) {
		return nil, errors.New("model not found")
	})
	spec, err := NewCybersecurity(gen, &fakeRetriever{}, log.NewNop())
	if err != nil {
		t.Fatalf("NewCybersecurity() error = %v", err)
	}

	st := router.NewState("question", nil)
	if err := spec.Run(context.Background(), st); err == nil {
		t.Fatal("Run() error = nil, want generation error")
	}
}

func TestNewSpecialistValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewCybersecurity(nil, &fakeRetriever{}, nil); err == nil {
		t.Error("nil generator should fail")
	}
	if _, err := NewRegulatory(cannedGenerator("x"), nil, nil); err == nil {
		t.Error("nil retriever should fail")
	}
}

func TestFormatPassages(t *testing.T) {
	t.Parallel()

	got := formatPassages([]rag.Passage{
		{Source: "guidance.pdf", Page: 12, Content: "Use encryption."},
		{Source: "qsr.txt", Page: 0, Content: "Design controls apply."},
	})
	want := "[Source 1: guidance.pdf, Page 12]\nUse encryption.\n[Source 2: qsr.txt, Page 0]\nDesign controls apply."
	if got != want {
		t.Errorf("formatPassages() = %q, want %q", got, want)
	}

	if got := formatPassages(nil); !strings.Contains(got, "No relevant documents") {
		t.Errorf("empty passages = %q, want placeholder", got)
	}
}

func TestSourcesSection(t *testing.T) {
	t.Parallel()

	if got := sourcesSection(nil); got != "" {
		t.Errorf("sourcesSection(nil) = %q, want empty", got)
	}

	got := sourcesSection([]router.Source{{Document: "a.pdf", Page: 1}, {Document: "b.pdf", Page: 2}})
	if !strings.Contains(got, "1. a.pdf - Page 1") || !strings.Contains(got, "2. b.pdf - Page 2") {
		t.Errorf("sourcesSection() = %q", got)
	}
}

func TestSpecialistRunBindsToolset(t *testing.T) {
	t.Parallel()

	var optCounts []int
	gen := newTestGenerator(func(_ context.Context, _ *genkit.Genkit, opts ...ai.GenerateOption) (*ai.ModelResponse, error) {
		optCounts = append(optCounts, len(opts))
		return textResponse("answer"), nil
	})

	bare, err := NewCybersecurity(gen, &fakeRetriever{}, log.NewNop())
	if err != nil {
		t.Fatalf("NewCybersecurity() error = %v", err)
	}
	if err := bare.Run(context.Background(), router.NewState("SOUP question", nil)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	toolset := ToolsFor(NameCybersecurity, allToolRefs())
	armed, err := NewCybersecurity(gen, &fakeRetriever{}, log.NewNop(), toolset...)
	if err != nil {
		t.Fatalf("NewCybersecurity() error = %v", err)
	}
	if err := armed.Run(context.Background(), router.NewState("SOUP question", nil)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(optCounts) != 2 {
		t.Fatalf("generate called %d times, want 2", len(optCounts))
	}
	// model + prompt without tools, plus the tools option when a toolset is bound
	if optCounts[1] != optCounts[0]+1 {
		t.Errorf("option counts = %v, want the toolset run to carry one extra option", optCounts)
	}
}

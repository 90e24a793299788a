package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fdassist/internal/document"
)

type fakeSpecialist struct {
	name    string
	content string
	sources []Source
	err     error
	silent  bool // appends nothing, simulating a stuck step
	runs    int
	order   *[]string
}

func (f *fakeSpecialist) Name() string { return f.name }

func (f *fakeSpecialist) Run(_ context.Context, st *State) error {
	f.runs++
	if f.order != nil {
		*f.order = append(*f.order, f.name)
	}
	if f.err != nil {
		return f.err
	}
	if f.silent {
		return nil
	}
	content := f.content
	if content == "" {
		content = f.name + " analysis"
	}
	st.AddSources(f.sources...)
	st.Append(Message{Role: "assistant", Agent: f.name, Content: content})
	return nil
}

func newTestRouter(t *testing.T, maxSteps int, specialists ...Specialist) *Router {
	t.Helper()
	r, err := New(Config{
		Specialists: specialists,
		Classifier:  newTestClassifier(t),
		MaxSteps:    maxSteps,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func gapSpecialists(order *[]string) []Specialist {
	specs := make([]Specialist, len(gapPipeline))
	for i, name := range gapPipeline {
		specs[i] = &fakeSpecialist{name: name, order: order}
	}
	return specs
}

func TestRouterQuestionAnswering(t *testing.T) {
	t.Parallel()

	cyber := &fakeSpecialist{name: AgentCybersecurity, content: "SOUP must be documented."}
	reg := &fakeSpecialist{name: AgentRegulatory}
	r := newTestRouter(t, 0, cyber, reg)

	st, err := r.Run(context.Background(), "What are SOUP requirements for medical devices?", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if cyber.runs != 1 || reg.runs != 0 {
		t.Errorf("runs = cyber %d, reg %d; want 1, 0", cyber.runs, reg.runs)
	}
	if st.Partial {
		t.Error("single-pass turn marked partial")
	}
	for _, want := range []string{
		"**FDA Auditor Assessment:**",
		"SOUP must be documented.",
		"our cybersecurity agent specialist",
		"Do you need any additional clarifications?",
	} {
		if !strings.Contains(st.Final, want) {
			t.Errorf("final answer missing %q:\n%s", want, st.Final)
		}
	}
}

func TestRouterQuestionAnsweringDefaultRoute(t *testing.T) {
	t.Parallel()

	cyber := &fakeSpecialist{name: AgentCybersecurity}
	reg := &fakeSpecialist{name: AgentRegulatory, content: "General regulatory guidance."}
	r := newTestRouter(t, 0, cyber, reg)

	st, err := r.Run(context.Background(), "How do I market my device?", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if reg.runs != 1 || cyber.runs != 0 {
		t.Errorf("runs = reg %d, cyber %d; want 1, 0", reg.runs, cyber.runs)
	}
	if !strings.Contains(st.Final, "regulatory agent specialist") {
		t.Errorf("final answer missing attribution:\n%s", st.Final)
	}
}

func TestRouterGapAnalysisPipeline(t *testing.T) {
	t.Parallel()

	var order []string
	r := newTestRouter(t, 0, gapSpecialists(&order)...)

	uploads := []document.Upload{{Name: "submission.zip", Data: []byte("x")}}
	st, err := r.Run(context.Background(), "", uploads)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(order) != len(gapPipeline) {
		t.Fatalf("ran %d agents, want %d: %v", len(order), len(gapPipeline), order)
	}
	for i, name := range gapPipeline {
		if order[i] != name {
			t.Fatalf("pipeline order = %v, want %v", order, gapPipeline)
		}
	}

	for _, want := range []string{
		"**FDA Auditor Assessment - Compliance Gap Analysis:**",
		"**Document Processor Findings:**",
		"**Cybersecurity Agent Findings:**",
		"**Report Generator Findings:**",
		"**Overall Assessment:**",
	} {
		if !strings.Contains(st.Final, want) {
			t.Errorf("final answer missing %q:\n%s", want, st.Final)
		}
	}
	if st.Partial {
		t.Error("complete pipeline marked partial")
	}
}

func TestRouterGapAnalysisDegradesOnFailure(t *testing.T) {
	t.Parallel()

	var order []string
	specs := gapSpecialists(&order)
	specs[2] = &fakeSpecialist{name: AgentRegulatory, err: errors.New("retrieval backend down"), order: &order}
	r := newTestRouter(t, 0, specs...)

	st, err := r.Run(context.Background(), "", []document.Upload{{Name: "a.txt", Data: []byte("x")}})
	if err != nil {
		t.Fatalf("Run() error = %v, pipeline should absorb specialist failures", err)
	}

	if len(order) != len(gapPipeline) {
		t.Errorf("ran %d agents, want all %d despite failure: %v", len(order), len(gapPipeline), order)
	}

	var degraded *Message
	for i, m := range st.Messages() {
		if m.Degraded {
			degraded = &st.Messages()[i]
		}
	}
	if degraded == nil {
		t.Fatal("no degraded message appended for the failed specialist")
	}
	if degraded.Agent != AgentRegulatory {
		t.Errorf("degraded agent = %q, want %q", degraded.Agent, AgentRegulatory)
	}
	if !strings.Contains(st.Final, "could not complete its analysis") {
		t.Errorf("final answer does not surface the degraded step:\n%s", st.Final)
	}
}

func TestRouterQuestionAnsweringFailureIsFatal(t *testing.T) {
	t.Parallel()

	cyber := &fakeSpecialist{name: AgentCybersecurity, err: errors.New("model unreachable")}
	r := newTestRouter(t, 0, cyber, &fakeSpecialist{name: AgentRegulatory})

	_, err := r.Run(context.Background(), "soup documentation requirements", nil)
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Errorf("error = %v, want ErrGenerationUnavailable", err)
	}
}

func TestRouterStepCeiling(t *testing.T) {
	t.Parallel()

	// A specialist that never appends a message would loop forever
	// without the step safeguard.
	stuck := &fakeSpecialist{name: AgentRegulatory, silent: true}
	r := newTestRouter(t, 5, stuck, &fakeSpecialist{name: AgentCybersecurity})

	st, err := r.Run(context.Background(), "generic question", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stuck.runs != 5 {
		t.Errorf("stuck specialist ran %d times, want 5", stuck.runs)
	}
	if !st.Partial {
		t.Error("forced compilation not marked partial")
	}
	if !strings.Contains(st.Final, "maximum steps reached") {
		t.Errorf("final answer missing termination reason:\n%s", st.Final)
	}
	if !strings.Contains(st.Final, "⚠️ Analysis incomplete") {
		t.Errorf("final answer missing partial notice:\n%s", st.Final)
	}
}

func TestRouterNeverReroutesCompletedAgent(t *testing.T) {
	t.Parallel()

	var order []string
	specs := gapSpecialists(&order)
	r := newTestRouter(t, 50, specs...)

	if _, err := r.Run(context.Background(), "", []document.Upload{{Name: "a.txt", Data: []byte("x")}}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, s := range specs {
		if fs := s.(*fakeSpecialist); fs.runs != 1 {
			t.Errorf("%s ran %d times, want 1", fs.name, fs.runs)
		}
	}
}

func TestRouterSourceDedupeAcrossAgents(t *testing.T) {
	t.Parallel()

	shared := Source{Document: "premarket-cyber-guidance.pdf", Page: 4}
	var order []string
	specs := gapSpecialists(&order)
	specs[1] = &fakeSpecialist{name: AgentCybersecurity, sources: []Source{shared, {Document: "a.pdf", Page: 1}}}
	specs[2] = &fakeSpecialist{name: AgentRegulatory, sources: []Source{shared}}
	r := newTestRouter(t, 0, specs...)

	st, err := r.Run(context.Background(), "", []document.Upload{{Name: "a.txt", Data: []byte("x")}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := len(st.Sources()); got != 2 {
		t.Errorf("got %d sources, want 2 after dedupe: %+v", got, st.Sources())
	}
}

func TestRouterStripsSourceSections(t *testing.T) {
	t.Parallel()

	content := "Encryption is required.\n\n" + sourcesMarker + "\n1. guidance.pdf - Page 2"
	cyber := &fakeSpecialist{name: AgentCybersecurity, content: content}
	r := newTestRouter(t, 0, cyber, &fakeSpecialist{name: AgentRegulatory})

	st, err := r.Run(context.Background(), "encryption requirements", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Contains(st.Final, sourcesMarker) {
		t.Errorf("compiled answer still contains the sources section:\n%s", st.Final)
	}
	if !strings.Contains(st.Final, "Encryption is required.") {
		t.Errorf("compiled answer lost the analysis content:\n%s", st.Final)
	}
}

func TestRouterEmptyTurn(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, 0, &fakeSpecialist{name: AgentRegulatory})
	if _, err := r.Run(context.Background(), "   ", nil); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("error = %v, want ErrEmptyQuestion", err)
	}
}

func TestRouterUnknownSpecialist(t *testing.T) {
	t.Parallel()

	// Only the regulatory specialist is registered; a cybersecurity
	// question has nowhere to go.
	r := newTestRouter(t, 0, &fakeSpecialist{name: AgentRegulatory})
	_, err := r.Run(context.Background(), "vulnerability management plan", nil)
	if !errors.Is(err, ErrUnknownSpecialist) {
		t.Errorf("error = %v, want ErrUnknownSpecialist", err)
	}
}

func TestRouterCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	failing := &fakeSpecialist{name: AgentRegulatory, err: errors.New("canceled mid-call")}
	r := newTestRouter(t, 0, failing)

	_, err := r.Run(ctx, "regulatory question", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestNewRouterValidation(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	if _, err := New(Config{Classifier: c}); err == nil {
		t.Error("no specialists should fail")
	}
	if _, err := New(Config{Specialists: []Specialist{&fakeSpecialist{name: "a"}}}); err == nil {
		t.Error("missing classifier should fail")
	}
	if _, err := New(Config{
		Classifier:  c,
		Specialists: []Specialist{&fakeSpecialist{name: "a"}, &fakeSpecialist{name: "a"}},
	}); err == nil {
		t.Error("duplicate specialist names should fail")
	}
}

func TestTitleWords(t *testing.T) {
	t.Parallel()

	if got := titleWords("document processor"); got != "Document Processor" {
		t.Errorf("titleWords() = %q", got)
	}
	if got := titleWords("auditor agent"); got != "Auditor Agent" {
		t.Errorf("titleWords() = %q", got)
	}
}

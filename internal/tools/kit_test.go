package tools

import (
	"context"
	"errors"
	"testing"

	"fdassist/internal/knowledge"
	"fdassist/internal/log"
	"fdassist/internal/rag"
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
	return f.passages, f.err
}

func newTestKit(t *testing.T, r Retriever) *Kit {
	t.Helper()
	kit, err := NewKit(r, log.NewNop())
	if err != nil {
		t.Fatalf("NewKit() error: %v", err)
	}
	return kit
}

func TestNewKitRequiresRetriever(t *testing.T) {
	if _, err := NewKit(nil, log.NewNop()); err == nil {
		t.Fatal("NewKit(nil) succeeded")
	}
}

func TestKitAnalyzeCompliance(t *testing.T) {
	kit := newTestKit(t, &fakeRetriever{})

	result, err := kit.AnalyzeCompliance(nil, ComplianceInput{
		Content:        "predicate device and substantial equivalence comparison",
		RegulationType: Regulation510k,
	})
	if err != nil {
		t.Fatalf("AnalyzeCompliance() error: %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("status = %v, error = %+v", result.Status, result.Error)
	}
	if result.Data["regulation_type"] != Regulation510k {
		t.Errorf("regulation_type = %v", result.Data["regulation_type"])
	}
}

func TestKitAnalyzeComplianceEmptyContent(t *testing.T) {
	kit := newTestKit(t, &fakeRetriever{})

	result, err := kit.AnalyzeCompliance(nil, ComplianceInput{})
	if err != nil {
		t.Fatalf("AnalyzeCompliance() error: %v", err)
	}
	if result.Status != StatusError || result.Error.Code != ErrCodeValidation {
		t.Errorf("result = %+v, want validation error", result)
	}
}

func TestKitGenerateChecklistDefaults(t *testing.T) {
	kit := newTestKit(t, &fakeRetriever{})

	result, err := kit.GenerateChecklist(nil, ChecklistInput{})
	if err != nil {
		t.Fatalf("GenerateChecklist() error: %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("status = %v", result.Status)
	}
	// Defaults to 510k class II.
	if result.Data["total_items"] != 9 {
		t.Errorf("total_items = %v, want 9", result.Data["total_items"])
	}
}

func TestKitGenerateChecklistUnknownCombination(t *testing.T) {
	kit := newTestKit(t, &fakeRetriever{})

	result, err := kit.GenerateChecklist(nil, ChecklistInput{
		RegulationType: RegulationQSR,
		DeviceClass:    "II",
	})
	if err != nil {
		t.Fatalf("GenerateChecklist() error: %v", err)
	}
	if result.Status != StatusError || result.Error.Code != ErrCodeValidation {
		t.Errorf("result = %+v, want validation error", result)
	}
}

func TestKitRetrieveRegulatory(t *testing.T) {
	retriever := &fakeRetriever{
		passages: []rag.Passage{
			{Source: "510k-guidance.pdf", Page: 3, Content: "predicate device rules"},
		},
	}
	kit := newTestKit(t, retriever)

	result, err := kit.RetrieveRegulatory(nil, QuestionInput{Question: "what is a predicate device"})
	if err != nil {
		t.Fatalf("RetrieveRegulatory() error: %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("status = %v, error = %+v", result.Status, result.Error)
	}
	if retriever.lastCorpus != knowledge.CorpusRegulatory {
		t.Errorf("corpus = %q, want regulatory", retriever.lastCorpus)
	}
	if result.Data["passage_count"] != 1 {
		t.Errorf("passage_count = %v", result.Data["passage_count"])
	}
}

func TestKitRetrieveCybersecurityCorpus(t *testing.T) {
	retriever := &fakeRetriever{}
	kit := newTestKit(t, retriever)

	if _, err := kit.RetrieveCybersecurity(nil, QuestionInput{Question: "soup docs"}); err != nil {
		t.Fatalf("RetrieveCybersecurity() error: %v", err)
	}
	if retriever.lastCorpus != knowledge.CorpusCybersecurity {
		t.Errorf("corpus = %q, want cybersecurity", retriever.lastCorpus)
	}
}

func TestKitSearchUploadsCorpus(t *testing.T) {
	retriever := &fakeRetriever{}
	kit := newTestKit(t, retriever)

	if _, err := kit.SearchUploads(nil, QuestionInput{Question: "device description"}); err != nil {
		t.Fatalf("SearchUploads() error: %v", err)
	}
	if retriever.lastCorpus != knowledge.CorpusUpload {
		t.Errorf("corpus = %q, want upload", retriever.lastCorpus)
	}
}

func TestKitRetrieveErrorBecomesToolError(t *testing.T) {
	kit := newTestKit(t, &fakeRetriever{err: errors.New("connection refused")})

	result, err := kit.RetrieveRegulatory(nil, QuestionInput{Question: "q"})
	if err != nil {
		t.Fatalf("RetrieveRegulatory() returned Go error: %v", err)
	}
	if result.Status != StatusError || result.Error.Code != ErrCodeExecution {
		t.Errorf("result = %+v, want execution error", result)
	}
}

func TestKitRetrieveEmptyQuestion(t *testing.T) {
	kit := newTestKit(t, &fakeRetriever{})

	result, err := kit.RetrieveCybersecurity(nil, QuestionInput{})
	if err != nil {
		t.Fatalf("RetrieveCybersecurity() error: %v", err)
	}
	if result.Status != StatusError || result.Error.Code != ErrCodeValidation {
		t.Errorf("result = %+v, want validation error", result)
	}
}

func TestKitIdentifyGapsDefaults(t *testing.T) {
	kit := newTestKit(t, &fakeRetriever{})

	result, err := kit.IdentifyGaps(nil, GapsInput{Content: "device description and intended use"})
	if err != nil {
		t.Fatalf("IdentifyGaps() error: %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("status = %v", result.Status)
	}
	if result.Data["document_name"] != "unknown" {
		t.Errorf("document_name = %v", result.Data["document_name"])
	}
	if result.Data["regulation_type"] != Regulation510k {
		t.Errorf("regulation_type = %v", result.Data["regulation_type"])
	}
}

func TestKitValidateSubmission(t *testing.T) {
	kit := newTestKit(t, &fakeRetriever{})

	result, err := kit.ValidateSubmission(nil, SubmissionInput{Content: complete510k})
	if err != nil {
		t.Fatalf("ValidateSubmission() error: %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("status = %v, error = %+v", result.Status, result.Error)
	}
	if result.Data["submission_type"] != Regulation510k {
		t.Errorf("submission_type = %v, want default %q", result.Data["submission_type"], Regulation510k)
	}
	if result.Data["overall_status"] != "valid" {
		t.Errorf("overall_status = %v, want valid", result.Data["overall_status"])
	}
}

func TestKitValidateSubmissionEmptyContent(t *testing.T) {
	kit := newTestKit(t, &fakeRetriever{})

	result, err := kit.ValidateSubmission(nil, SubmissionInput{})
	if err != nil {
		t.Fatalf("ValidateSubmission() error: %v", err)
	}
	if result.Status != StatusError || result.Error.Code != ErrCodeValidation {
		t.Errorf("result = %+v, want validation error", result)
	}
}

package agent

import (
	"context"
	"strings"
	"testing"

	"fdassist/internal/document"
	"fdassist/internal/router"
	"fdassist/internal/tools"
)

func TestReportGeneratorRun(t *testing.T) {
	t.Parallel()

	st := router.NewState("", nil)
	st.Cyber = compliantAnalysis("cybersecurity", 0.9)
	st.Regulatory = compliantAnalysis("510k", 0.9)
	st.Gaps = tools.PerformGapAnalysis(st.Cyber, st.Regulatory)
	st.Processed = []router.Processed{
		{Name: "labeling.txt", Category: document.CategoryLabeling, Text: strings.Repeat("a", 100)},
		{Name: "design-spec.txt", Category: document.CategoryTechnical, Text: strings.Repeat("b", 50)},
	}

	gen := NewReportGenerator(nil)
	if err := gen.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if st.Report == nil {
		t.Fatal("report not recorded")
	}
	if st.Report.ComplianceScore != st.Gaps.ComplianceScore {
		t.Errorf("report score = %v, want %v", st.Report.ComplianceScore, st.Gaps.ComplianceScore)
	}

	msgs := st.Messages()
	if len(msgs) != 1 || msgs[0].Agent != NameReportGenerator {
		t.Fatalf("got messages %+v, want one report message", msgs)
	}
	content := msgs[0].Content
	for _, want := range []string{
		"**COMPLIANCE GAP ANALYSIS REPORT**",
		"EXECUTIVE SUMMARY - FDA REGULATORY SUBMISSION GAP ANALYSIS",
		"\n\n---\n\n",
		"1. DOCUMENT OVERVIEW",
		"Total Documents Analyzed: 2",
		"Total Content Length: 150 characters",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("message missing %q:\n%s", want, content)
		}
	}
}

func TestReportGeneratorWithoutGapAnalysis(t *testing.T) {
	t.Parallel()

	st := router.NewState("", nil)
	gen := NewReportGenerator(nil)
	if err := gen.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if st.Report == nil {
		t.Fatal("report not recorded")
	}
	content := st.Messages()[0].Content
	if !strings.Contains(content, "Overall Compliance Score: 50.0%") {
		t.Errorf("placeholder score missing:\n%s", content)
	}
	if !strings.Contains(content, "Readiness Assessment: NEEDS_ANALYSIS") {
		t.Errorf("placeholder readiness missing:\n%s", content)
	}
}

func TestPackageSummary(t *testing.T) {
	t.Parallel()

	summary := packageSummary([]router.Processed{
		{Name: "a.txt", Category: document.CategoryClinical, Text: "12345"},
		{Name: "b.txt", Category: document.CategoryQuality, Text: "123"},
	})
	if summary.DocumentCount != 2 {
		t.Errorf("count = %d, want 2", summary.DocumentCount)
	}
	if summary.TotalContentLength != 8 {
		t.Errorf("length = %d, want 8", summary.TotalContentLength)
	}
	if summary.DocumentTypes["a.txt"] != "clinical" {
		t.Errorf("types = %v", summary.DocumentTypes)
	}
}

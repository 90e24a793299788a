package agent

import (
	"context"
	"fmt"

	"fdassist/internal/log"
	"fdassist/internal/router"
	"fdassist/internal/tools"
)

// ReportGenerator renders the final gap-analysis report from the auditor's
// assessment. Deterministic; no model call is involved.
type ReportGenerator struct {
	logger log.Logger
}

// NewReportGenerator creates the report generator.
func NewReportGenerator(logger log.Logger) *ReportGenerator {
	if logger == nil {
		logger = log.NewNop()
	}
	return &ReportGenerator{logger: logger}
}

// Name returns the generator's routing name.
func (r *ReportGenerator) Name() string { return NameReportGenerator }

// Run builds the compliance report and appends it to the log. When the
// auditor never ran, a neutral placeholder analysis is used so a report is
// still produced.
func (r *ReportGenerator) Run(ctx context.Context, st *router.State) error {
	_ = ctx

	gaps := st.Gaps
	if gaps == nil {
		gaps = &tools.GapAnalysis{
			ComplianceScore: 0.5,
			Readiness:       "needs_analysis",
		}
	}

	report := tools.BuildReport(gaps, st.Cyber, st.Regulatory, packageSummary(st.Processed))
	st.Report = report

	r.logger.Info("report generated",
		"score", report.ComplianceScore,
		"readiness", report.Readiness,
	)

	st.Append(router.Message{
		Role:  "assistant",
		Agent: NameReportGenerator,
		Content: fmt.Sprintf("**COMPLIANCE GAP ANALYSIS REPORT**\n\n%s\n\n---\n\n%s",
			report.ExecutiveSummary, report.FullReport),
	})
	return nil
}

// packageSummary condenses processed uploads into the report's document
// overview.
func packageSummary(processed []router.Processed) tools.PackageSummary {
	summary := tools.PackageSummary{
		DocumentCount: len(processed),
		DocumentTypes: make(map[string]string, len(processed)),
	}
	for _, p := range processed {
		summary.DocumentTypes[p.Name] = string(p.Category)
		summary.TotalContentLength += len(p.Text)
	}
	return summary
}

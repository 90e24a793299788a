package agent

import (
	"context"
	"fmt"
	"strings"

	"fdassist/internal/log"
	"fdassist/internal/router"
	"fdassist/internal/tools"
)

// auditorTemplate summarizes the merged gap analysis for the log.
const auditorTemplate = `**AUDITOR ASSESSMENT**

Compliance Analysis Complete:
- Overall Compliance Score: %.1f%%
- Total Gaps Identified: %d
- Readiness Assessment: %s

Critical Issues: %d
Major Issues: %d
Minor Issues: %d

The comprehensive gap analysis has been completed and is ready for report generation.`

// Auditor merges the specialists' compliance findings into a single gap
// assessment. Deterministic; no model call is involved.
type Auditor struct {
	logger log.Logger
}

// NewAuditor creates the auditor.
func NewAuditor(logger log.Logger) *Auditor {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Auditor{logger: logger}
}

// Name returns the auditor's routing name.
func (a *Auditor) Name() string { return NameAuditor }

// Run performs the gap analysis over the accumulated compliance findings
// and records the result on the state. Missing specialist findings reduce
// the analysis rather than failing it.
func (a *Auditor) Run(ctx context.Context, st *router.State) error {
	_ = ctx

	analysis := tools.PerformGapAnalysis(st.Cyber, st.Regulatory)
	st.Gaps = analysis

	a.logger.Info("gap analysis complete",
		"score", analysis.ComplianceScore,
		"gaps", analysis.TotalGaps,
		"readiness", analysis.Readiness,
	)

	st.Append(router.Message{
		Role:  "assistant",
		Agent: NameAuditor,
		Content: fmt.Sprintf(auditorTemplate,
			analysis.ComplianceScore*100,
			analysis.TotalGaps,
			strings.ToUpper(analysis.Readiness),
			len(analysis.CriticalGaps),
			len(analysis.MajorGaps),
			len(analysis.MinorGaps),
		),
	})
	return nil
}

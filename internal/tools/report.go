package tools

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// maxListedGaps caps how many gaps of each severity the detailed report
// lists verbatim.
const maxListedGaps = 5

// PackageSummary describes the set of documents a gap analysis covered.
type PackageSummary struct {
	DocumentCount      int               `json:"document_count"`
	DocumentTypes      map[string]string `json:"document_types"`
	TotalContentLength int               `json:"total_content_length"`
}

// Report is the rendered gap analysis report.
type Report struct {
	ExecutiveSummary string    `json:"executive_summary"`
	FullReport       string    `json:"full_report"`
	ComplianceScore  float64   `json:"compliance_score"`
	Readiness        string    `json:"readiness_level"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// BuildReport renders the executive summary and the sectioned detail report
// from a completed gap analysis. The specialist analyses may be nil when the
// corresponding agent did not run; their sections are then omitted.
func BuildReport(gap *GapAnalysis, cyber, regulatory *ComplianceAnalysis, pkg PackageSummary) *Report {
	return &Report{
		ExecutiveSummary: executiveSummary(gap),
		FullReport:       fullReport(gap, cyber, regulatory, pkg),
		ComplianceScore:  gap.ComplianceScore,
		Readiness:        gap.Readiness,
		GeneratedAt:      time.Now(),
	}
}

func executiveSummary(gap *GapAnalysis) string {
	var verdict string
	switch {
	case gap.ComplianceScore < 0.8:
		verdict = "PROCEED WITH CAUTION"
	case gap.ComplianceScore > 0.9:
		verdict = "READY FOR SUBMISSION"
	default:
		verdict = "ADDRESS GAPS BEFORE SUBMISSION"
	}

	var b strings.Builder
	b.WriteString("EXECUTIVE SUMMARY - FDA REGULATORY SUBMISSION GAP ANALYSIS\n\n")
	fmt.Fprintf(&b, "Overall Compliance Score: %.1f%%\n", gap.ComplianceScore*100)
	fmt.Fprintf(&b, "Total Gaps Identified: %d\n", gap.TotalGaps)
	fmt.Fprintf(&b, "Critical Issues: %d\n\n", len(gap.CriticalGaps))
	fmt.Fprintf(&b, "Readiness Assessment: %s\n\n", strings.ToUpper(gap.Readiness))
	b.WriteString("Key Findings:\n")
	fmt.Fprintf(&b, "- %d critical gaps requiring immediate attention\n", len(gap.CriticalGaps))
	fmt.Fprintf(&b, "- %d major gaps needing resolution\n", len(gap.MajorGaps))
	fmt.Fprintf(&b, "- %d minor gaps for improvement\n\n", len(gap.MinorGaps))
	fmt.Fprintf(&b, "Recommendation: %s", verdict)
	return b.String()
}

func fullReport(gap *GapAnalysis, cyber, regulatory *ComplianceAnalysis, pkg PackageSummary) string {
	var b strings.Builder

	b.WriteString("1. DOCUMENT OVERVIEW\n")
	fmt.Fprintf(&b, "   - Total Documents Analyzed: %d\n", pkg.DocumentCount)
	fmt.Fprintf(&b, "   - Document Types: %s\n", joinTypes(pkg.DocumentTypes))
	fmt.Fprintf(&b, "   - Total Content Length: %d characters\n", pkg.TotalContentLength)

	section := 2
	if cyber != nil {
		fmt.Fprintf(&b, "\n%d. CYBERSECURITY ANALYSIS\n", section)
		fmt.Fprintf(&b, "   - Compliance Score: %.1f%%\n", cyber.OverallScore*100)
		fmt.Fprintf(&b, "   - Criteria Checked: %d\n", len(cyber.Criteria))
		fmt.Fprintf(&b, "   - Items Needing Attention: %d\n", len(cyber.Recommendations))
		section++
	}
	if regulatory != nil {
		fmt.Fprintf(&b, "\n%d. REGULATORY ANALYSIS\n", section)
		fmt.Fprintf(&b, "   - Compliance Score: %.1f%%\n", regulatory.OverallScore*100)
		fmt.Fprintf(&b, "   - Criteria Checked: %d\n", len(regulatory.Criteria))
		fmt.Fprintf(&b, "   - Items Needing Attention: %d\n", len(regulatory.Recommendations))
		section++
	}

	fmt.Fprintf(&b, "\n%d. GAP ANALYSIS DETAILS\n", section)
	fmt.Fprintf(&b, "\nCritical Gaps (%d):\n", len(gap.CriticalGaps))
	writeGapList(&b, gap.CriticalGaps)
	fmt.Fprintf(&b, "\nMajor Gaps (%d):\n", len(gap.MajorGaps))
	writeGapList(&b, gap.MajorGaps)
	section++

	fmt.Fprintf(&b, "\n%d. RECOMMENDATIONS\n\nImmediate Actions:\n", section)
	n := 0
	for _, rec := range gap.Recommendations {
		if rec.Priority != "immediate" {
			continue
		}
		n++
		fmt.Fprintf(&b, "   %d. %s\n", n, rec.Action)
		if n == 3 {
			break
		}
	}

	return strings.TrimSpace(b.String())
}

func writeGapList(b *strings.Builder, gaps []Gap) {
	for i, g := range gaps {
		if i == maxListedGaps {
			break
		}
		fmt.Fprintf(b, "   %d. %s\n", i+1, g.Description)
	}
}

// joinTypes renders document types in a stable order keyed by document name.
func joinTypes(types map[string]string) string {
	if len(types) == 0 {
		return "none"
	}
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = types[name]
	}
	return strings.Join(parts, ", ")
}

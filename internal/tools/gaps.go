package tools

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// requiredElements maps a regulation type to the named elements a single
// document is expected to cover, each with the keywords that evidence it.
var requiredElements = map[string]map[string][]string{
	Regulation510k: {
		"device_description":   {"device description", "intended use", "indications for use"},
		"predicate_comparison": {"predicate device", "substantial equivalence", "comparison"},
		"performance_data":     {"performance testing", "verification", "validation"},
		"risk_analysis":        {"risk analysis", "risk management", "iso 14971"},
		"labeling":             {"labeling", "instructions for use", "ifu"},
		"biocompatibility":     {"biocompatibility", "iso 10993", "biological evaluation"},
		"software":             {"software documentation", "software lifecycle", "iec 62304"},
	},
}

// elementOrder fixes iteration over requiredElements for deterministic output.
var elementOrder = []string{
	"device_description",
	"predicate_comparison",
	"performance_data",
	"risk_analysis",
	"labeling",
	"biocompatibility",
	"software",
}

// majorElements are the elements whose absence from a document is a major
// rather than minor gap.
var majorElements = map[string]bool{
	"device_description":   true,
	"predicate_comparison": true,
}

// DocumentGap is a missing element in a single document.
type DocumentGap struct {
	Element          string   `json:"element"`
	Description      string   `json:"description"`
	KeywordsSearched []string `json:"keywords_searched"`
	Severity         string   `json:"severity"`
	Recommendation   string   `json:"recommendation"`
}

// DocumentGapReport is the per-document gap analysis.
type DocumentGapReport struct {
	DocumentName         string        `json:"document_name"`
	RegulationType       string        `json:"regulation_type"`
	Gaps                 []DocumentGap `json:"gaps_found"`
	PresentElements      []string      `json:"present_elements"`
	CompliancePercentage float64       `json:"compliance_percentage"`
}

// IdentifyDocumentGaps checks one document's content for the required
// elements of a regulation type. Unknown regulation types fall back to
// 510(k).
func IdentifyDocumentGaps(documentName, content, regulationType string) *DocumentGapReport {
	elements, ok := requiredElements[regulationType]
	if !ok {
		regulationType = Regulation510k
		elements = requiredElements[Regulation510k]
	}

	lower := strings.ToLower(content)
	report := &DocumentGapReport{
		DocumentName:   documentName,
		RegulationType: regulationType,
	}

	for _, name := range elementOrder {
		keywords := elements[name]
		found := lo.SomeBy(keywords, func(kw string) bool {
			return strings.Contains(lower, kw)
		})
		if found {
			report.PresentElements = append(report.PresentElements, name)
			continue
		}

		severity := SeverityMinor
		if majorElements[name] {
			severity = SeverityMajor
		}
		readable := strings.ReplaceAll(name, "_", " ")
		report.Gaps = append(report.Gaps, DocumentGap{
			Element:          name,
			Description:      "Missing or insufficient " + readable,
			KeywordsSearched: keywords,
			Severity:         severity,
			Recommendation:   "Include comprehensive " + readable + " section",
		})
	}

	report.CompliancePercentage = float64(len(report.PresentElements)) / float64(len(elements)) * 100
	return report
}

// Gap is one compliance gap found across the submission package.
type Gap struct {
	Category       string `json:"category"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Requirement    string `json:"requirement"`
	Evidence       string `json:"evidence"`
	Recommendation string `json:"recommendation"`
}

// Recommendation is a prioritized remediation action.
type Recommendation struct {
	Priority string `json:"priority"`
	Action   string `json:"action"`
	Timeline string `json:"timeline"`
	Effort   string `json:"effort"`
}

// GapAnalysis is the combined result of cybersecurity and regulatory
// compliance analysis for a submission package.
type GapAnalysis struct {
	ComplianceScore float64          `json:"overall_compliance_score"`
	TotalGaps       int              `json:"total_gaps"`
	CriticalGaps    []Gap            `json:"critical_gaps"`
	MajorGaps       []Gap            `json:"major_gaps"`
	MinorGaps       []Gap            `json:"minor_gaps"`
	Recommendations []Recommendation `json:"recommendations"`
	Readiness       string           `json:"readiness_assessment"`
}

// baselineRequirements is the nominal requirement count for a typical
// 510(k) submission, used to turn a gap count into a compliance score.
const baselineRequirements = 10

// PerformGapAnalysis merges cybersecurity and regulatory compliance
// analyses into a single gap assessment. Either analysis may be nil when
// the corresponding specialist did not run.
//
// Severity thresholds differ by category: cybersecurity gaps escalate to
// major below a score of 0.4, regulatory below 0.3. A zero score is
// critical in both.
func PerformGapAnalysis(cyber, regulatory *ComplianceAnalysis) *GapAnalysis {
	var gaps []Gap
	if cyber != nil {
		gaps = append(gaps, gapsFromAnalysis(cyber, "cybersecurity", 0.4,
			"Implement comprehensive %s documentation and controls")...)
	}
	if regulatory != nil {
		gaps = append(gaps, gapsFromAnalysis(regulatory, "regulatory", 0.3,
			"Review and include comprehensive %s section")...)
	}

	analysis := &GapAnalysis{
		TotalGaps: len(gaps),
		CriticalGaps: lo.Filter(gaps, func(g Gap, _ int) bool {
			return g.Severity == SeverityCritical
		}),
		MajorGaps: lo.Filter(gaps, func(g Gap, _ int) bool {
			return g.Severity == SeverityMajor
		}),
		MinorGaps: lo.Filter(gaps, func(g Gap, _ int) bool {
			return g.Severity == SeverityMinor
		}),
	}

	analysis.ComplianceScore = complianceScore(gaps, cyber, regulatory)

	if len(analysis.CriticalGaps) > 0 {
		analysis.Recommendations = append(analysis.Recommendations, Recommendation{
			Priority: "immediate",
			Action:   "Address critical compliance gaps before submission",
			Timeline: "1-2 weeks",
			Effort:   "high",
		})
	}
	if len(analysis.MajorGaps) > 0 {
		analysis.Recommendations = append(analysis.Recommendations, Recommendation{
			Priority: "high",
			Action:   "Resolve major gaps to ensure submission success",
			Timeline: "2-4 weeks",
			Effort:   "medium",
		})
	}

	switch {
	case len(analysis.CriticalGaps) > 0:
		analysis.Readiness = ReadinessNotReady
	case len(analysis.MajorGaps) > 0 || analysis.ComplianceScore < 0.7:
		analysis.Readiness = ReadinessNeedsUpdates
	case analysis.ComplianceScore < 0.9:
		analysis.Readiness = ReadinessNeedsMinorUpdates
	default:
		analysis.Readiness = ReadinessReady
	}

	return analysis
}

// gapsFromAnalysis converts the non-compliant criteria of one analysis into
// gaps, grading severity by score against the category's major threshold.
func gapsFromAnalysis(analysis *ComplianceAnalysis, category string, majorBelow float64, recommendationFormat string) []Gap {
	var gaps []Gap
	for _, c := range analysis.Criteria {
		if c.Compliant {
			continue
		}

		severity := SeverityMinor
		switch {
		case c.Score == 0:
			severity = SeverityCritical
		case c.Score < majorBelow:
			severity = SeverityMajor
		}

		gaps = append(gaps, Gap{
			Category:       category,
			Severity:       severity,
			Description:    "Missing or insufficient " + c.Criterion,
			Requirement:    c.Criterion,
			Evidence:       fmt.Sprintf("Found keywords: %v", c.FoundKeywords),
			Recommendation: fmt.Sprintf(recommendationFormat, c.Criterion),
		})
	}
	return gaps
}

// complianceScore derives the package score. With gaps present the score
// falls linearly with the gap count; with none it averages the specialist
// scores, defaulting to perfect when nothing was analyzed.
func complianceScore(gaps []Gap, cyber, regulatory *ComplianceAnalysis) float64 {
	if len(gaps) > 0 {
		score := float64(baselineRequirements-len(gaps)) / float64(baselineRequirements)
		return max(0, score)
	}

	var scores []float64
	if regulatory != nil {
		scores = append(scores, regulatory.OverallScore)
	}
	if cyber != nil {
		scores = append(scores, cyber.OverallScore)
	}
	if len(scores) == 0 {
		return 1.0
	}
	return lo.Sum(scores) / float64(len(scores))
}

package tools

import (
	"strings"
)

// complianceCriteria maps each regulation type to the criteria a submission
// is checked against. Each criterion is scored by the fraction of its words
// found in the document text.
var complianceCriteria = map[string][]string{
	Regulation510k: {
		"predicate device identification",
		"substantial equivalence comparison",
		"safety and effectiveness data",
		"labeling information",
		"risk analysis",
	},
	RegulationPMA: {
		"clinical data",
		"manufacturing information",
		"risk-benefit analysis",
		"labeling",
		"quality system information",
	},
	RegulationDeNovo: {
		"classification rationale",
		"risk classification",
		"special controls",
		"clinical data",
		"predicate device analysis",
	},
	RegulationQSR: {
		"design controls",
		"document controls",
		"management responsibility",
		"corrective and preventive actions",
		"production and process controls",
	},
	RegulationCybersecurity: {
		"SOUP documentation",
		"cybersecurity risk assessment",
		"vulnerability management",
		"security controls implementation",
		"threat modeling",
		"security testing documentation",
		"incident response plan",
		"security architecture documentation",
	},
}

// CriterionResult is the scored outcome for one compliance criterion.
type CriterionResult struct {
	Criterion     string   `json:"criterion"`
	Score         float64  `json:"score"`
	FoundKeywords []string `json:"found_keywords"`
	Compliant     bool     `json:"compliant"`
}

// ComplianceAnalysis is the result of checking a document against all
// criteria for a regulation type.
type ComplianceAnalysis struct {
	RegulationType  string            `json:"regulation_type"`
	OverallScore    float64           `json:"overall_compliance_score"`
	Criteria        []CriterionResult `json:"criteria_analysis"`
	Recommendations []string          `json:"recommendations"`
}

// AnalyzeCompliance scores document content against the criteria for the
// given regulation type. Unknown regulation types fall back to 510(k).
// A criterion is compliant when more than half of its words appear in the
// document.
func AnalyzeCompliance(content, regulationType string) *ComplianceAnalysis {
	criteria, ok := complianceCriteria[regulationType]
	if !ok {
		regulationType = Regulation510k
		criteria = complianceCriteria[Regulation510k]
	}

	lower := strings.ToLower(content)

	analysis := &ComplianceAnalysis{
		RegulationType: regulationType,
		Criteria:       make([]CriterionResult, 0, len(criteria)),
	}

	var total float64
	for _, criterion := range criteria {
		words := strings.Fields(criterion)
		var found []string
		for _, w := range words {
			if strings.Contains(lower, strings.ToLower(w)) {
				found = append(found, w)
			}
		}
		score := float64(len(found)) / float64(len(words))
		total += score

		result := CriterionResult{
			Criterion:     criterion,
			Score:         score,
			FoundKeywords: found,
			Compliant:     score > 0.5,
		}
		analysis.Criteria = append(analysis.Criteria, result)

		if !result.Compliant {
			analysis.Recommendations = append(analysis.Recommendations, "Review "+criterion)
		}
	}

	analysis.OverallScore = total / float64(len(criteria))
	return analysis
}

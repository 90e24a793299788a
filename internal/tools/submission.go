package tools

import (
	"strings"
	"time"
)

// charsPerPage is the rough page estimate used when a submission arrives
// as extracted text without page markers.
const charsPerPage = 2000

// formatRules holds the per-pathway format requirements: the sections a
// submission must contain and the page ceiling FDA reviewers expect.
var formatRules = map[string]struct {
	requiredSections []string
	maxPages         int
}{
	Regulation510k: {
		requiredSections: []string{
			"device description",
			"intended use",
			"substantial equivalence comparison",
			"performance data",
			"labeling",
		},
		maxPages: 150,
	},
	RegulationPMA: {
		requiredSections: []string{
			"device description",
			"clinical studies",
			"manufacturing information",
			"risk analysis",
			"labeling",
		},
		maxPages: 500,
	},
}

// SectionCheck records whether one required section was found.
type SectionCheck struct {
	Present bool   `json:"present"`
	Status  string `json:"status"` // "valid" or "missing"
}

// PageCheck compares the estimated page count against the pathway limit.
type PageCheck struct {
	Estimated  int    `json:"estimated"`
	MaxAllowed int    `json:"max_allowed"`
	Status     string `json:"status"` // "valid" or "exceeds_limit"
}

// SubmissionValidation is the result of a format check of submission text
// against an FDA pathway's structural requirements.
type SubmissionValidation struct {
	SubmissionType string                  `json:"submission_type"`
	Sections       map[string]SectionCheck `json:"section_validation"`
	Pages          PageCheck               `json:"page_count"`
	OverallStatus  string                  `json:"overall_status"` // "valid" or "needs_review"
	ValidatedAt    time.Time               `json:"validation_timestamp"`
}

// ValidateSubmissionFormat checks submission text for the required sections
// of the given pathway and estimates whether it fits the page limit. An
// unknown submission type falls back to the 510(k) rules. The overall
// status is "valid" only when every section is present and the estimate is
// within the limit.
func ValidateSubmissionFormat(content, submissionType string) *SubmissionValidation {
	rules, ok := formatRules[submissionType]
	if !ok {
		submissionType = Regulation510k
		rules = formatRules[Regulation510k]
	}

	lower := strings.ToLower(content)
	sections := make(map[string]SectionCheck, len(rules.requiredSections))
	allPresent := true
	for _, section := range rules.requiredSections {
		present := strings.Contains(lower, section)
		status := "valid"
		if !present {
			status = "missing"
			allPresent = false
		}
		sections[section] = SectionCheck{Present: present, Status: status}
	}

	estimated := len(content) / charsPerPage
	pages := PageCheck{Estimated: estimated, MaxAllowed: rules.maxPages, Status: "valid"}
	if estimated > rules.maxPages {
		pages.Status = "exceeds_limit"
	}

	overall := "valid"
	if !allPresent || pages.Status != "valid" {
		overall = "needs_review"
	}

	return &SubmissionValidation{
		SubmissionType: submissionType,
		Sections:       sections,
		Pages:          pages,
		OverallStatus:  overall,
		ValidatedAt:    time.Now(),
	}
}

package tools

import (
	"fmt"
	"regexp"
	"strings"
)

// Requirement kinds recognized by ExtractRequirements.
const (
	RequirementClinical  = "clinical"
	RequirementTechnical = "technical"
	RequirementQuality   = "quality"
	RequirementAll       = "all"
)

// requirementPatterns holds the phrase patterns that signal a regulatory
// requirement of each kind.
var requirementPatterns = map[string][]*regexp.Regexp{
	RequirementClinical: {
		regexp.MustCompile(`(?i)clinical\s+(?:study|trial|data|evidence)`),
		regexp.MustCompile(`(?i)safety\s+and\s+effectiveness`),
		regexp.MustCompile(`(?i)clinical\s+evaluation`),
	},
	RequirementTechnical: {
		regexp.MustCompile(`(?i)technical\s+(?:specification|requirement|standard)`),
		regexp.MustCompile(`(?i)performance\s+(?:criteria|standard|requirement)`),
		regexp.MustCompile(`(?i)design\s+(?:control|requirement|specification)`),
	},
	RequirementQuality: {
		regexp.MustCompile(`(?i)quality\s+(?:system|management|control)`),
		regexp.MustCompile(`(?i)ISO\s+\d+`),
		regexp.MustCompile(`(?i)good\s+manufacturing\s+practice`),
	},
}

// requirementKinds fixes the iteration order for the "all" case so that
// requirement IDs are deterministic.
var requirementKinds = []string{RequirementClinical, RequirementTechnical, RequirementQuality}

// contextRadius is how many bytes of surrounding text each extracted
// requirement carries.
const contextRadius = 100

// Requirement is one extracted regulatory requirement with its context.
type Requirement struct {
	ID          string  `json:"requirement_id"`
	Type        string  `json:"type"`
	MatchedText string  `json:"matched_text"`
	Context     string  `json:"context"`
	Position    int     `json:"position"`
	Confidence  float64 `json:"confidence"`
}

// ExtractRequirements scans content for requirement phrases of the given
// kind. Passing "all" or an unknown kind scans every pattern.
func ExtractRequirements(content, kind string) []Requirement {
	var patterns []*regexp.Regexp
	if ps, ok := requirementPatterns[kind]; ok {
		patterns = ps
	} else {
		kind = RequirementAll
		for _, k := range requirementKinds {
			patterns = append(patterns, requirementPatterns[k]...)
		}
	}

	var requirements []Requirement
	for i, pattern := range patterns {
		for _, loc := range pattern.FindAllStringIndex(content, -1) {
			start := max(0, loc[0]-contextRadius)
			end := min(len(content), loc[1]+contextRadius)

			requirements = append(requirements, Requirement{
				ID:          fmt.Sprintf("REQ_%d_%d", i+1, len(requirements)+1),
				Type:        kind,
				MatchedText: content[loc[0]:loc[1]],
				Context:     strings.TrimSpace(content[start:end]),
				Position:    loc[0],
				Confidence:  0.8,
			})
		}
	}
	return requirements
}

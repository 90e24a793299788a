package agent

import (
	"github.com/firebase/genkit/go/ai"

	"fdassist/internal/tools"
)

// Descriptor maps a specialist name to its permitted tool set and its
// instruction template. The table is immutable and defined at startup;
// specialists without an LLM prompt or registered tools leave those blank.
type Descriptor struct {
	Name        string
	Description string
	Tools       []string
	Prompt      string
}

// Descriptors returns the static specialist table in pipeline order.
func Descriptors() []Descriptor {
	return []Descriptor{
		{
			Name:        NameDocumentProcessor,
			Description: "Parses, chunks, and indexes uploaded submission documents for analysis.",
			Tools:       []string{tools.ExtractMetadataName},
		},
		{
			Name:        NameCybersecurity,
			Description: "Analyzes documents and questions for FDA cybersecurity compliance issues.",
			Tools:       []string{tools.RetrieveCybersecurityName, tools.SearchUploadsName, tools.AnalyzeComplianceName},
			Prompt:      cybersecurityPrompt,
		},
		{
			Name:        NameRegulatory,
			Description: "Analyzes documents and questions for FDA regulatory compliance issues.",
			Tools:       []string{tools.RetrieveRegulatoryName, tools.SearchUploadsName, tools.AnalyzeComplianceName, tools.ValidateSubmissionName},
			Prompt:      regulatoryPrompt,
		},
		{
			Name:        NameAuditor,
			Description: "Merges specialist findings into a scored compliance gap assessment.",
			Tools:       []string{tools.IdentifyGapsName},
		},
		{
			Name:        NameReportGenerator,
			Description: "Renders the executive summary and full gap-analysis report.",
		},
	}
}

// ToolsFor selects, from the registered tool set, the tools a specialist is
// permitted to call, in descriptor order. Names with no registered tool are
// skipped; an unknown specialist gets none.
func ToolsFor(specialist string, registered []ai.ToolRef) []ai.ToolRef {
	byName := make(map[string]ai.ToolRef, len(registered))
	for _, t := range registered {
		byName[t.Name()] = t
	}
	for _, d := range Descriptors() {
		if d.Name != specialist {
			continue
		}
		permitted := make([]ai.ToolRef, 0, len(d.Tools))
		for _, name := range d.Tools {
			if t, ok := byName[name]; ok {
				permitted = append(permitted, t)
			}
		}
		return permitted
	}
	return nil
}

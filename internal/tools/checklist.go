package tools

import "fmt"

// checklistItems maps regulation type and device class to the submission
// checklist for that combination.
var checklistItems = map[string]map[string][]string{
	Regulation510k: {
		"I": {
			"Device description and intended use",
			"Predicate device identification",
			"Comparison table with predicate",
			"Performance testing data",
			"Labeling information",
		},
		"II": {
			"Device description and intended use",
			"Predicate device identification",
			"Substantial equivalence comparison",
			"Performance testing data",
			"Software documentation (if applicable)",
			"Biocompatibility data",
			"Sterilization validation (if applicable)",
			"Labeling information",
			"Risk analysis",
		},
		"III": {
			"Device description and intended use",
			"Predicate device identification",
			"Substantial equivalence comparison",
			"Clinical data",
			"Performance testing data",
			"Software documentation (if applicable)",
			"Biocompatibility data",
			"Sterilization validation (if applicable)",
			"Labeling information",
			"Risk analysis",
			"Quality system information",
		},
	},
	RegulationPMA: {
		"III": {
			"Device description and intended use",
			"Clinical protocol and data",
			"Manufacturing information",
			"Risk-benefit analysis",
			"Non-clinical laboratory studies",
			"Software documentation (if applicable)",
			"Biocompatibility data",
			"Sterilization validation (if applicable)",
			"Labeling information",
			"Quality system information",
			"Post-market study commitments",
		},
	},
}

// ChecklistItem is one trackable entry in a compliance checklist.
type ChecklistItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// Checklist is a structured compliance checklist for a regulation type and
// device class.
type Checklist struct {
	RegulationType string          `json:"regulation_type"`
	DeviceClass    string          `json:"device_class"`
	TotalItems     int             `json:"total_items"`
	Items          []ChecklistItem `json:"items"`
}

// GenerateChecklist builds the checklist for a regulation type and device
// class. The first three items carry high priority. An unknown combination
// yields an empty checklist.
func GenerateChecklist(regulationType, deviceClass string) *Checklist {
	descriptions := checklistItems[regulationType][deviceClass]

	checklist := &Checklist{
		RegulationType: regulationType,
		DeviceClass:    deviceClass,
		TotalItems:     len(descriptions),
		Items:          make([]ChecklistItem, 0, len(descriptions)),
	}

	for i, desc := range descriptions {
		priority := "medium"
		if i < 3 {
			priority = "high"
		}
		checklist.Items = append(checklist.Items, ChecklistItem{
			ID:          fmt.Sprintf("ITEM_%03d", i+1),
			Description: desc,
			Status:      "pending",
			Priority:    priority,
		})
	}
	return checklist
}

package tools

import (
	"strings"
	"testing"
)

func TestExtractRequirementsClinical(t *testing.T) {
	content := "The submission includes a Clinical Study report demonstrating " +
		"safety and effectiveness across 240 subjects. A clinical evaluation " +
		"was performed per MEDDEV guidance."

	reqs := ExtractRequirements(content, RequirementClinical)

	if len(reqs) != 3 {
		t.Fatalf("got %d requirements, want 3", len(reqs))
	}
	if reqs[0].MatchedText != "Clinical Study" {
		t.Errorf("MatchedText = %q", reqs[0].MatchedText)
	}
	if reqs[0].Type != RequirementClinical {
		t.Errorf("Type = %q", reqs[0].Type)
	}
	if reqs[0].ID != "REQ_1_1" {
		t.Errorf("ID = %q, want REQ_1_1", reqs[0].ID)
	}
	if !strings.Contains(reqs[0].Context, "Clinical Study report") {
		t.Errorf("Context = %q, want surrounding text", reqs[0].Context)
	}
	if reqs[0].Confidence != 0.8 {
		t.Errorf("Confidence = %v", reqs[0].Confidence)
	}
}

func TestExtractRequirementsQuality(t *testing.T) {
	content := "Manufacturing follows the quality system per ISO 13485 and " +
		"good manufacturing practice requirements."

	reqs := ExtractRequirements(content, RequirementQuality)
	if len(reqs) != 3 {
		t.Fatalf("got %d requirements, want 3", len(reqs))
	}
}

func TestExtractRequirementsAll(t *testing.T) {
	content := "Design controls are established. The clinical trial data and " +
		"quality management procedures are referenced."

	all := ExtractRequirements(content, RequirementAll)
	if len(all) != 3 {
		t.Fatalf("got %d requirements, want 3", len(all))
	}

	// Unknown kinds behave like "all".
	unknown := ExtractRequirements(content, "bogus")
	if len(unknown) != len(all) {
		t.Errorf("unknown kind found %d, all found %d", len(unknown), len(all))
	}
	if unknown[0].Type != RequirementAll {
		t.Errorf("Type = %q, want all", unknown[0].Type)
	}
}

func TestExtractRequirementsNone(t *testing.T) {
	if reqs := ExtractRequirements("nothing relevant here", RequirementTechnical); len(reqs) != 0 {
		t.Errorf("got %d requirements from irrelevant text", len(reqs))
	}
}

func TestExtractMetadata(t *testing.T) {
	content := `Device Name: GlucoTrack Pro
Manufacturer: Acme Medical Inc
Model Number: GT-2000
Classification: Class II

Submitted on 2024-03-15 and reviewed March 20, 2024.

Second paragraph with details.`

	meta := ExtractMetadata(content)

	if meta.DeviceName != "GlucoTrack Pro" {
		t.Errorf("DeviceName = %q", meta.DeviceName)
	}
	if meta.Manufacturer != "Acme Medical Inc" {
		t.Errorf("Manufacturer = %q", meta.Manufacturer)
	}
	if meta.ModelNumber != "GT-2000" {
		t.Errorf("ModelNumber = %q", meta.ModelNumber)
	}
	if meta.Classification != "Class II" {
		t.Errorf("Classification = %q", meta.Classification)
	}
	if len(meta.DatesFound) != 2 {
		t.Errorf("DatesFound = %v, want 2 dates", meta.DatesFound)
	}
	if meta.ParagraphCount != 3 {
		t.Errorf("ParagraphCount = %d, want 3", meta.ParagraphCount)
	}
	if meta.WordCount == 0 || meta.ContentLength != len(content) {
		t.Errorf("stats = %+v", meta)
	}
}

func TestExtractMetadataAbsentFields(t *testing.T) {
	meta := ExtractMetadata("no labeled fields here")
	if meta.DeviceName != "" || meta.Manufacturer != "" {
		t.Errorf("extracted fields from unlabeled text: %+v", meta)
	}
	if len(meta.DatesFound) != 0 {
		t.Errorf("DatesFound = %v", meta.DatesFound)
	}
}

package tools

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"fdassist/internal/knowledge"
	"fdassist/internal/log"
	"fdassist/internal/rag"
)

// Tool name constants registered with Genkit.
const (
	AnalyzeComplianceName     = "analyze_document_compliance"
	GenerateChecklistName     = "generate_compliance_checklist"
	ExtractRequirementsName   = "extract_regulatory_requirements"
	ExtractMetadataName       = "extract_document_metadata"
	IdentifyGapsName          = "identify_document_gaps"
	RetrieveCybersecurityName = "retrieve_cybersecurity_information"
	RetrieveRegulatoryName    = "retrieve_regulatory_information"
	SearchUploadsName         = "search_uploaded_documents"
	ValidateSubmissionName    = "validate_submission_format"
)

// Retriever defines the retrieval operation the Kit needs.
type Retriever interface {
	Retrieve(ctx context.Context, corpus, query string) ([]rag.Passage, error)
}

// ComplianceInput is the input for analyze_document_compliance.
type ComplianceInput struct {
	Content        string `json:"content" jsonschema_description:"Document text to analyze"`
	RegulationType string `json:"regulation_type,omitempty" jsonschema_description:"One of 510k, pma, de_novo, qsr, cybersecurity (default 510k)"`
}

// ChecklistInput is the input for generate_compliance_checklist.
type ChecklistInput struct {
	RegulationType string `json:"regulation_type,omitempty" jsonschema_description:"One of 510k, pma (default 510k)"`
	DeviceClass    string `json:"device_class,omitempty" jsonschema_description:"FDA device class: I, II, or III (default II)"`
}

// RequirementsInput is the input for extract_regulatory_requirements.
type RequirementsInput struct {
	Content         string `json:"content" jsonschema_description:"Document text to scan"`
	RequirementType string `json:"requirement_type,omitempty" jsonschema_description:"One of clinical, technical, quality, all (default all)"`
}

// MetadataInput is the input for extract_document_metadata.
type MetadataInput struct {
	Content string `json:"content" jsonschema_description:"Document text to extract metadata from"`
}

// GapsInput is the input for identify_document_gaps.
type GapsInput struct {
	DocumentName   string `json:"document_name" jsonschema_description:"Name of the document being checked"`
	Content        string `json:"content" jsonschema_description:"Document text to check"`
	RegulationType string `json:"regulation_type,omitempty" jsonschema_description:"Regulation to check against (default 510k)"`
}

// SubmissionInput is the input for validate_submission_format.
type SubmissionInput struct {
	Content        string `json:"content" jsonschema_description:"Submission text to validate"`
	SubmissionType string `json:"submission_type,omitempty" jsonschema_description:"One of 510k, pma (default 510k)"`
}

// QuestionInput is the input for the corpus retrieval tools.
type QuestionInput struct {
	Question string `json:"question" jsonschema_description:"The question to retrieve passages for"`
}

// Kit holds the dependencies of the tool handlers.
type Kit struct {
	retriever Retriever
	logger    log.Logger
}

// NewKit creates a Kit. The retriever is required.
func NewKit(retriever Retriever, logger log.Logger) (*Kit, error) {
	if retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	return &Kit{retriever: retriever, logger: logger}, nil
}

// Register registers all analysis and retrieval tools with Genkit and
// returns them for use in generate calls.
func Register(g *genkit.Genkit, kit *Kit) ([]ai.Tool, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if kit == nil {
		return nil, fmt.Errorf("kit is required")
	}

	return []ai.Tool{
		genkit.DefineTool(g, AnalyzeComplianceName,
			"Analyze document text for compliance with FDA regulations. "+
				"Scores the document against the criteria of the given regulation type "+
				"(510k, pma, de_novo, qsr, cybersecurity) and flags criteria needing attention.",
			kit.AnalyzeCompliance),
		genkit.DefineTool(g, GenerateChecklistName,
			"Generate a compliance checklist for a regulation type and FDA device class. "+
				"Returns structured checklist items with priorities.",
			kit.GenerateChecklist),
		genkit.DefineTool(g, ExtractRequirementsName,
			"Extract regulatory requirements from document text. "+
				"Finds clinical, technical, and quality requirement phrases with surrounding context.",
			kit.ExtractRequirements),
		genkit.DefineTool(g, ExtractMetadataName,
			"Extract device metadata from document text: device name, manufacturer, "+
				"model number, classification, dates, and content statistics.",
			kit.ExtractMetadata),
		genkit.DefineTool(g, IdentifyGapsName,
			"Identify missing required elements in a single document against a regulation type. "+
				"Returns the gaps found, present elements, and a compliance percentage.",
			kit.IdentifyGaps),
		genkit.DefineTool(g, RetrieveCybersecurityName,
			"Retrieve relevant passages from FDA cybersecurity guidance documents. "+
				"Use this to answer questions about premarket cybersecurity, SOUP, threat modeling, "+
				"and vulnerability management.",
			kit.RetrieveCybersecurity),
		genkit.DefineTool(g, RetrieveRegulatoryName,
			"Retrieve relevant passages from FDA regulatory guidance documents. "+
				"Use this to answer questions about 510(k), PMA, De Novo, QSR, and submission requirements.",
			kit.RetrieveRegulatory),
		genkit.DefineTool(g, SearchUploadsName,
			"Search the documents the user uploaded in this session for relevant passages.",
			kit.SearchUploads),
		genkit.DefineTool(g, ValidateSubmissionName,
			"Validate submission text against the structural requirements of an FDA "+
				"pathway (510k, pma): required sections and the page-count limit.",
			kit.ValidateSubmission),
	}, nil
}

// AnalyzeCompliance handles the analyze_document_compliance tool.
func (k *Kit) AnalyzeCompliance(_ *ai.ToolContext, input ComplianceInput) (Result, error) {
	if input.Content == "" {
		return errorResult(ErrCodeValidation, "content is required"), nil
	}
	regulationType := input.RegulationType
	if regulationType == "" {
		regulationType = Regulation510k
	}

	analysis := AnalyzeCompliance(input.Content, regulationType)
	k.logger.Info("compliance analyzed",
		"regulation_type", analysis.RegulationType, "score", analysis.OverallScore)

	return successResult(map[string]any{
		"regulation_type":          analysis.RegulationType,
		"overall_compliance_score": analysis.OverallScore,
		"criteria_analysis":        analysis.Criteria,
		"recommendations":          analysis.Recommendations,
	}), nil
}

// GenerateChecklist handles the generate_compliance_checklist tool.
func (k *Kit) GenerateChecklist(_ *ai.ToolContext, input ChecklistInput) (Result, error) {
	regulationType := input.RegulationType
	if regulationType == "" {
		regulationType = Regulation510k
	}
	deviceClass := input.DeviceClass
	if deviceClass == "" {
		deviceClass = "II"
	}

	checklist := GenerateChecklist(regulationType, deviceClass)
	if checklist.TotalItems == 0 {
		return errorResult(ErrCodeValidation,
			fmt.Sprintf("no checklist defined for regulation %q device class %q", regulationType, deviceClass)), nil
	}

	return successResult(map[string]any{
		"regulation_type": checklist.RegulationType,
		"device_class":    checklist.DeviceClass,
		"total_items":     checklist.TotalItems,
		"items":           checklist.Items,
	}), nil
}

// ExtractRequirements handles the extract_regulatory_requirements tool.
func (k *Kit) ExtractRequirements(_ *ai.ToolContext, input RequirementsInput) (Result, error) {
	if input.Content == "" {
		return errorResult(ErrCodeValidation, "content is required"), nil
	}
	kind := input.RequirementType
	if kind == "" {
		kind = RequirementAll
	}

	requirements := ExtractRequirements(input.Content, kind)
	return successResult(map[string]any{
		"requirement_type":  kind,
		"requirement_count": len(requirements),
		"requirements":      requirements,
	}), nil
}

// ExtractMetadata handles the extract_document_metadata tool.
func (k *Kit) ExtractMetadata(_ *ai.ToolContext, input MetadataInput) (Result, error) {
	if input.Content == "" {
		return errorResult(ErrCodeValidation, "content is required"), nil
	}

	meta := ExtractMetadata(input.Content)
	return successResult(map[string]any{"metadata": meta}), nil
}

// IdentifyGaps handles the identify_document_gaps tool.
func (k *Kit) IdentifyGaps(_ *ai.ToolContext, input GapsInput) (Result, error) {
	if input.Content == "" {
		return errorResult(ErrCodeValidation, "content is required"), nil
	}
	name := input.DocumentName
	if name == "" {
		name = "unknown"
	}
	regulationType := input.RegulationType
	if regulationType == "" {
		regulationType = Regulation510k
	}

	report := IdentifyDocumentGaps(name, input.Content, regulationType)
	return successResult(map[string]any{
		"document_name":         report.DocumentName,
		"regulation_type":       report.RegulationType,
		"gaps_found":            report.Gaps,
		"present_elements":      report.PresentElements,
		"compliance_percentage": report.CompliancePercentage,
	}), nil
}

// ValidateSubmission handles the validate_submission_format tool.
func (k *Kit) ValidateSubmission(_ *ai.ToolContext, input SubmissionInput) (Result, error) {
	if input.Content == "" {
		return errorResult(ErrCodeValidation, "content is required"), nil
	}
	submissionType := input.SubmissionType
	if submissionType == "" {
		submissionType = Regulation510k
	}

	validation := ValidateSubmissionFormat(input.Content, submissionType)
	k.logger.Info("submission format validated",
		"submission_type", validation.SubmissionType, "status", validation.OverallStatus)

	return successResult(map[string]any{
		"submission_type":      validation.SubmissionType,
		"section_validation":   validation.Sections,
		"page_count":           validation.Pages,
		"overall_status":       validation.OverallStatus,
		"validation_timestamp": validation.ValidatedAt,
	}), nil
}

// RetrieveCybersecurity handles the retrieve_cybersecurity_information tool.
func (k *Kit) RetrieveCybersecurity(ctx *ai.ToolContext, input QuestionInput) (Result, error) {
	return k.retrieve(ctx, knowledge.CorpusCybersecurity, input.Question)
}

// RetrieveRegulatory handles the retrieve_regulatory_information tool.
func (k *Kit) RetrieveRegulatory(ctx *ai.ToolContext, input QuestionInput) (Result, error) {
	return k.retrieve(ctx, knowledge.CorpusRegulatory, input.Question)
}

// SearchUploads handles the search_uploaded_documents tool.
func (k *Kit) SearchUploads(ctx *ai.ToolContext, input QuestionInput) (Result, error) {
	return k.retrieve(ctx, knowledge.CorpusUpload, input.Question)
}

func (k *Kit) retrieve(ctx context.Context, corpus, question string) (Result, error) {
	if question == "" {
		return errorResult(ErrCodeValidation, "question is required"), nil
	}

	passages, err := k.retriever.Retrieve(ctx, corpus, question)
	if err != nil {
		k.logger.Warn("retrieval failed", "corpus", corpus, "error", err)
		return errorResult(ErrCodeExecution,
			fmt.Sprintf("retrieving from %s corpus: %v", corpus, err)), nil
	}

	return successResult(map[string]any{
		"corpus":        corpus,
		"passage_count": len(passages),
		"passages":      passages,
	}), nil
}

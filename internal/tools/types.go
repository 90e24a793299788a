// Package tools implements the analysis toolset used by the specialist
// agents: compliance checking, gap analysis, requirement and metadata
// extraction, checklist generation, and corpus retrieval. Pure analysis
// functions live alongside their Genkit tool registrations so they can be
// called directly by deterministic agents or exposed to the model.
package tools

// Status indicates whether a tool invocation succeeded.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Error codes returned to the model so it can correct its call.
const (
	ErrCodeValidation = "validation"
	ErrCodeExecution  = "execution"
)

// Error is a structured tool error for model consumption.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the uniform envelope returned by every tool.
type Result struct {
	Status Status         `json:"status"`
	Data   map[string]any `json:"data,omitempty"`
	Error  *Error         `json:"error,omitempty"`
}

func errorResult(code, message string) Result {
	return Result{
		Status: StatusError,
		Error:  &Error{Code: code, Message: message},
	}
}

func successResult(data map[string]any) Result {
	return Result{Status: StatusSuccess, Data: data}
}

// Regulation types supported by the compliance tools.
const (
	Regulation510k          = "510k"
	RegulationPMA           = "pma"
	RegulationDeNovo        = "de_novo"
	RegulationQSR           = "qsr"
	RegulationCybersecurity = "cybersecurity"
)

// Gap severities, ordered from most to least urgent.
const (
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
)

// Readiness levels for a submission package.
const (
	ReadinessNotReady          = "not_ready"
	ReadinessNeedsUpdates      = "needs_updates"
	ReadinessNeedsMinorUpdates = "needs_minor_updates"
	ReadinessReady             = "ready"
)

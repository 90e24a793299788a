// Package router orchestrates the specialist pipeline over a shared
// conversation state. A turn runs in one of two modes: question answering
// routes the question to a single specialist by keyword, gap analysis walks
// the full pipeline over uploaded submission documents. The router owns
// routing, termination, degraded-failure handling, and final compilation.
package router

import (
	"fmt"
	"strings"

	"fdassist/internal/document"
	"fdassist/internal/tools"
)

// Mode selects the workflow a turn runs.
type Mode string

const (
	ModeQuestionAnswering Mode = "question_answering"
	ModeGapAnalysis       Mode = "gap_analysis"
)

// Message is one entry in the conversation log. Agent names the specialist
// that produced it; Degraded marks a failure placeholder appended by the
// router when a specialist errored.
type Message struct {
	Role     string
	Agent    string
	Content  string
	Degraded bool
}

// Source identifies a cited passage in a corpus document.
type Source struct {
	Document string
	Page     int
}

// Key returns the identity used for source deduplication.
func (s Source) Key() string {
	return fmt.Sprintf("%s_page_%d", s.Document, s.Page)
}

// Processed records one successfully parsed upload.
type Processed struct {
	Name     string
	FileType string
	Category document.Category
	Pages    int
	Chunks   int
	Words    int
	Text     string
}

// State is the shared conversation state for one turn. The message log is
// append-only; analysis artifacts are each written once by the specialist
// that produces them. A State is used by a single goroutine.
type State struct {
	Mode     Mode
	Question string
	Uploads  []document.Upload

	Processed  []Processed
	Cyber      *tools.ComplianceAnalysis
	Regulatory *tools.ComplianceAnalysis
	Gaps       *tools.GapAnalysis
	Report     *tools.Report

	// Partial is set when the step safeguard forced compilation before
	// the pipeline finished.
	Partial bool
	// Final holds the compiled answer once the turn reaches done.
	Final string

	messages    []Message
	sources     []Source
	seenSources map[string]bool
	completed   map[string]bool
}

// NewState creates the state for one user turn. Mode is gap analysis when
// uploads are present, question answering otherwise.
func NewState(question string, uploads []document.Upload) *State {
	mode := ModeQuestionAnswering
	if len(uploads) > 0 {
		mode = ModeGapAnalysis
	}
	return &State{
		Mode:        mode,
		Question:    question,
		Uploads:     uploads,
		seenSources: make(map[string]bool),
		completed:   make(map[string]bool),
	}
}

// Append adds a message to the log and marks its agent as completed.
// This is the only way the log grows; entries are never modified or removed.
func (s *State) Append(msg Message) {
	s.messages = append(s.messages, msg)
	if msg.Agent != "" {
		s.completed[msg.Agent] = true
	}
}

// Messages returns the log. Callers must not modify the returned slice.
func (s *State) Messages() []Message {
	return s.messages
}

// Completed reports whether the named agent has already produced a message.
func (s *State) Completed(agent string) bool {
	return s.completed[agent]
}

// AgentMessages counts log entries attributed to an agent.
func (s *State) AgentMessages() int {
	n := 0
	for _, m := range s.messages {
		if m.Agent != "" {
			n++
		}
	}
	return n
}

// AddSources merges citations into the turn's source list, dropping
// duplicates while preserving first-seen order.
func (s *State) AddSources(srcs ...Source) {
	for _, src := range srcs {
		key := src.Key()
		if s.seenSources[key] {
			continue
		}
		s.seenSources[key] = true
		s.sources = append(s.sources, src)
	}
}

// Sources returns the deduplicated citations accumulated so far.
func (s *State) Sources() []Source {
	return s.sources
}

// CombinedText concatenates the text of all processed uploads, for
// whole-package compliance scoring.
func (s *State) CombinedText() string {
	parts := make([]string, 0, len(s.Processed))
	for _, p := range s.Processed {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

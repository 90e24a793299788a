package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fdassist/internal/config"
	"fdassist/internal/document"
	"fdassist/internal/log"
)

// Agent names recognized by the router.
const (
	AgentDocumentProcessor = "document_processor"
	AgentCybersecurity     = "cybersecurity_agent"
	AgentRegulatory        = "regulatory_agent"
	AgentAuditor           = "auditor_agent"
	AgentReportGenerator   = "report_generator"
)

// gapPipeline is the fixed agent order for gap-analysis turns.
var gapPipeline = []string{
	AgentDocumentProcessor,
	AgentCybersecurity,
	AgentRegulatory,
	AgentAuditor,
	AgentReportGenerator,
}

// decisionFinish ends the dispatch loop and moves to compilation.
const decisionFinish = "finish"

var (
	// ErrEmptyQuestion rejects a turn with neither question nor uploads.
	ErrEmptyQuestion = errors.New("empty question")

	// ErrUnknownSpecialist indicates a routing decision named an agent
	// that was never registered.
	ErrUnknownSpecialist = errors.New("unknown specialist")

	// ErrGenerationUnavailable marks a turn that produced no answer because
	// the single routed specialist could not complete at all.
	ErrGenerationUnavailable = errors.New("answer generation unavailable")
)

// Specialist is one pipeline agent. Run mutates the shared state and
// appends at least one message on success.
type Specialist interface {
	Name() string
	Run(ctx context.Context, st *State) error
}

// Config configures a Router.
type Config struct {
	Specialists []Specialist
	Classifier  *Classifier
	MaxSteps    int // zero gets config.DefaultMaxSteps
	Logger      log.Logger
}

func (c *Config) validate() error {
	if len(c.Specialists) == 0 {
		return errors.New("at least one specialist is required")
	}
	if c.Classifier == nil {
		return errors.New("classifier is required")
	}
	return nil
}

// Router drives one turn at a time: it selects the next specialist,
// absorbs non-fatal failures, enforces the step ceiling, and compiles the
// final answer. A Router is immutable after construction and safe for
// concurrent turns, each on its own State.
type Router struct {
	specialists map[string]Specialist
	classifier  *Classifier
	maxSteps    int
	logger      log.Logger
}

// New creates a Router from the config.
func New(cfg Config) (*Router, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid router config: %w", err)
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = config.DefaultMaxSteps
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}

	specialists := make(map[string]Specialist, len(cfg.Specialists))
	for _, s := range cfg.Specialists {
		if _, dup := specialists[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate specialist %q", s.Name())
		}
		specialists[s.Name()] = s
	}
	return &Router{
		specialists: specialists,
		classifier:  cfg.Classifier,
		maxSteps:    cfg.MaxSteps,
		logger:      cfg.Logger,
	}, nil
}

// Run executes one user turn to completion and returns the state with
// Final set. Uploads put the turn in gap-analysis mode; otherwise the
// question is routed to a single specialist.
func (r *Router) Run(ctx context.Context, question string, uploads []document.Upload) (*State, error) {
	if strings.TrimSpace(question) == "" && len(uploads) == 0 {
		return nil, ErrEmptyQuestion
	}

	st := NewState(question, uploads)
	reason := "analysis complete"

	for steps := 0; ; steps++ {
		if steps >= r.maxSteps {
			st.Partial = true
			reason = "maximum steps reached"
			r.logger.Warn("step ceiling reached, forcing compilation", "steps", steps)
			break
		}

		next := r.next(st)
		if next == decisionFinish {
			break
		}

		spec, ok := r.specialists[next]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSpecialist, next)
		}

		r.logger.Debug("dispatching", "agent", next, "step", steps+1, "mode", st.Mode)
		if err := spec.Run(ctx, st); err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("turn canceled: %w", ctx.Err())
			}
			if st.Mode == ModeQuestionAnswering {
				// A single-pass turn has nothing to fall back on.
				return nil, fmt.Errorf("%w: %s: %v", ErrGenerationUnavailable, next, err)
			}
			r.logger.Warn("specialist failed, continuing pipeline", "agent", next, "error", err)
			st.Append(Message{
				Role:     "assistant",
				Agent:    next,
				Content:  fmt.Sprintf("⚠️ %s could not complete its analysis: %v", next, err),
				Degraded: true,
			})
		}
	}

	r.compile(st, reason)
	return st, nil
}

// next decides the following step from the accumulated state. Completed
// agents are never selected again.
func (r *Router) next(st *State) string {
	switch st.Mode {
	case ModeGapAnalysis:
		for _, name := range gapPipeline {
			if !st.Completed(name) {
				return name
			}
		}
		return decisionFinish
	default:
		if st.AgentMessages() > 0 {
			return decisionFinish
		}
		return r.classifier.Route(st.Question)
	}
}

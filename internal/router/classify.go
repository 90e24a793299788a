package router

import (
	"fmt"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Candidate is one routing option produced by Classify.
type Candidate struct {
	Agent   string
	Matches int
}

// Classifier assigns questions to a specialist by keyword match. The
// keyword sets are compiled into per-set Aho-Corasick automata once at
// construction; Classify holds no mutable state and is safe for concurrent
// use across sessions.
type Classifier struct {
	sets []keywordSet
}

type keywordSet struct {
	agent   string
	machine *goahocorasick.Machine
}

// NewClassifier compiles the routing keyword sets. Set order is the
// tie-break: when a question matches several sets the earliest wins, so
// cybersecurity outranks regulatory.
func NewClassifier(cybersecurity, regulatory []string) (*Classifier, error) {
	c := &Classifier{}
	for _, set := range []struct {
		agent string
		words []string
	}{
		{AgentCybersecurity, cybersecurity},
		{AgentRegulatory, regulatory},
	} {
		if len(set.words) == 0 {
			return nil, fmt.Errorf("empty keyword set for %s", set.agent)
		}
		patterns := make([][]rune, len(set.words))
		for i, w := range set.words {
			patterns[i] = []rune(strings.ToLower(w))
		}
		m := new(goahocorasick.Machine)
		if err := m.Build(patterns); err != nil {
			return nil, fmt.Errorf("building %s keyword automaton: %w", set.agent, err)
		}
		c.sets = append(c.sets, keywordSet{agent: set.agent, machine: m})
	}
	return c, nil
}

// Classify returns the specialists whose keyword sets match the question,
// in tie-break order. The result is empty when nothing matches.
func (c *Classifier) Classify(question string) []Candidate {
	text := []rune(strings.ToLower(question))
	var out []Candidate
	for _, set := range c.sets {
		if hits := set.machine.MultiPatternSearch(text, false); len(hits) > 0 {
			out = append(out, Candidate{Agent: set.agent, Matches: len(hits)})
		}
	}
	return out
}

// Route returns the specialist for a question, defaulting to regulatory
// when no keyword matches.
func (c *Classifier) Route(question string) string {
	if cands := c.Classify(question); len(cands) > 0 {
		return cands[0].Agent
	}
	return AgentRegulatory
}

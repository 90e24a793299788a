// Package agent implements the five specialists that the router dispatches:
// a deterministic document processor, two retrieval-augmented LLM specialists
// (cybersecurity and regulatory), and the deterministic auditor and report
// generator that turn accumulated findings into a gap-analysis report.
//
// LLM calls go through a shared Generator that applies rate limiting and
// retry with exponential backoff.
package agent

// internal/api/types.go

// Package api defines the wire types and HTTP client for the test-suite
// service. It covers the run execution endpoint, the comparison-session
// store, and the read-only suite listing the CLI exposes.
package api

import (
	"fmt"
	"strings"
)

// Limits enforced on run requests before they reach the server.
const (
	MaxNoteLength = 500
	MinIterations = 1
	MaxIterations = 100
)

// Provider identifies one of the LLM providers the service can execute against.
type Provider string

// The fixed set of providers the service recognizes.
const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
	ProviderMistral   Provider = "mistral"
	ProviderOllama    Provider = "ollama"
)

// Providers returns every recognized provider in a stable order.
func Providers() []Provider {
	return []Provider{
		ProviderOpenAI,
		ProviderAnthropic,
		ProviderGoogle,
		ProviderMistral,
		ProviderOllama,
	}
}

// Valid reports whether p is one of the recognized providers.
func (p Provider) Valid() bool {
	for _, known := range Providers() {
		if p == known {
			return true
		}
	}
	return false
}

// ParseProvider converts a user-supplied string into a Provider.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown provider %q (expected one of %v)", s, Providers())
	}
	return p, nil
}

// ModelSelection identifies one target configuration for a run. At most one
// selection in a set should be marked primary; the orchestrator tolerates
// zero or many and falls back to the first in the list.
type ModelSelection struct {
	Provider  Provider `json:"provider"`
	Model     string   `json:"model"`
	IsPrimary bool     `json:"isPrimary"`
}

// Label returns the provider/model pair as a single display string.
func (m ModelSelection) Label() string {
	return string(m.Provider) + "/" + m.Model
}

// ModelOverride names the provider/model pair a run should execute against
// instead of the suite's default target.
type ModelOverride struct {
	Provider Provider `json:"provider"`
	Model    string   `json:"model"`
}

// RunRequest carries the parameters for one suite execution.
type RunRequest struct {
	ModelOverride *ModelOverride `json:"modelOverride,omitempty"`
	Note          string         `json:"note,omitempty"`
	Iterations    int            `json:"iterations"`
	Tags          []string       `json:"tags,omitempty"`
	TestCaseIDs   []string       `json:"testCaseIds,omitempty"`
}

// Validate checks the request against the server's documented bounds.
func (r RunRequest) Validate() error {
	if len(r.Note) > MaxNoteLength {
		return fmt.Errorf("note exceeds %d characters", MaxNoteLength)
	}
	if r.Iterations < MinIterations || r.Iterations > MaxIterations {
		return fmt.Errorf("iterations must be between %d and %d, got %d", MinIterations, MaxIterations, r.Iterations)
	}
	if r.ModelOverride != nil && !r.ModelOverride.Provider.Valid() {
		return fmt.Errorf("unknown provider %q in model override", r.ModelOverride.Provider)
	}
	return nil
}

// Normalized returns a copy with defaults applied and the case-selection
// precedence resolved: explicit test-case IDs win over tag filtering.
func (r RunRequest) Normalized() RunRequest {
	out := r
	if out.Iterations == 0 {
		out.Iterations = MinIterations
	}
	if len(out.TestCaseIDs) > 0 {
		out.Tags = nil
	}
	return out
}

// TestCaseResult is one test case's outcome within a run. Per-case errors
// live here; they are not stream-level failures.
type TestCaseResult struct {
	TestCaseID     string   `json:"testCaseId"`
	TestCaseName   string   `json:"testCaseName"`
	Passed         bool     `json:"passed"`
	Response       string   `json:"response,omitempty"`
	Error          string   `json:"error,omitempty"`
	JudgeScore     *float64 `json:"judgeScore,omitempty"`
	ResponseTimeMs int64    `json:"responseTimeMs,omitempty"`
}

// RunSummary aggregates a run's per-case outcomes.
type RunSummary struct {
	Total             int      `json:"total"`
	Passed            int      `json:"passed"`
	Failed            int      `json:"failed"`
	AvgJudgeScore     *float64 `json:"avgJudgeScore,omitempty"`
	AvgResponseTimeMs float64  `json:"avgResponseTimeMs,omitempty"`
}

// TestRun is the server's canonical record of one execution. The client only
// reads and relays it.
type TestRun struct {
	ID            string           `json:"id"`
	Status        string           `json:"status"`
	ModelOverride *ModelOverride   `json:"modelOverride,omitempty"`
	Results       []TestCaseResult `json:"results"`
	Summary       RunSummary       `json:"summary"`
}

// TestSuite is the read-only suite record returned by the listing endpoints.
type TestSuite struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CaseCount   int    `json:"caseCount"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// internal/report/report_test.go
package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/promptcheck/promptcheck/internal/api"
	"github.com/promptcheck/promptcheck/internal/runner"
)

func init() {
	// Assert on plain text regardless of the test environment's terminal.
	color.NoColor = true
}

func TestWriteRun(t *testing.T) {
	score := 0.91
	run := &api.TestRun{
		ID:     "run-1",
		Status: "completed",
		Results: []api.TestCaseResult{
			{TestCaseName: "greets the user", Passed: true, JudgeScore: &score, ResponseTimeMs: 420},
			{TestCaseName: "refuses bad input", Passed: false, Error: "provider timeout"},
		},
		Summary: api.RunSummary{Total: 2, Passed: 1, Failed: 1, AvgResponseTimeMs: 420},
	}

	var buf bytes.Buffer
	WriteRun(&buf, api.ModelSelection{Provider: api.ProviderOpenAI, Model: "gpt-4o-mini"}, run)
	got := buf.String()

	for _, want := range []string{"openai/gpt-4o-mini", "greets the user", "PASS", "ERROR", "1 passed / 1 failed", "0.91"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestWriteComparison(t *testing.T) {
	run := api.TestRun{ID: "run-1", Status: "completed", Summary: api.RunSummary{Total: 3, Passed: 3}}
	result := &runner.MultiModelResult{
		Outcomes: []runner.ModelOutcome{
			{
				Selection: api.ModelSelection{Provider: api.ProviderOpenAI, Model: "gpt-4o-mini"},
				Outcome:   runner.Outcome{State: runner.StateCompleted, TestRun: &run},
			},
			{
				Selection: api.ModelSelection{Provider: api.ProviderAnthropic, Model: "claude-sonnet"},
				Outcome:   runner.Outcome{State: runner.StateFailed, Message: "judge unavailable"},
			},
			{
				Selection: api.ModelSelection{Provider: api.ProviderOllama, Model: "llama3.2:3b"},
				Outcome:   runner.Outcome{State: runner.StateCancelled, Message: runner.CancelledMessage},
			},
		},
		SessionPersisted: true,
	}

	var buf bytes.Buffer
	WriteComparison(&buf, result)
	got := buf.String()

	for _, want := range []string{"gpt-4o-mini", "completed", "judge unavailable", "cancelled", "Comparison session saved."} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestWriteSuites(t *testing.T) {
	var buf bytes.Buffer
	WriteSuites(&buf, []api.TestSuite{
		{ID: "s1", Name: "Smoke", CaseCount: 4, UpdatedAt: "2026-08-01"},
		{ID: "s2", Name: "Nightly", CaseCount: 12},
	})
	got := buf.String()

	for _, want := range []string{"s1", "Smoke", "Nightly", "12"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

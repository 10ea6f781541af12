// internal/report/report.go

// Package report renders run and comparison results for the terminal.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"
	"github.com/olekukonko/tablewriter"

	"github.com/promptcheck/promptcheck/internal/api"
	"github.com/promptcheck/promptcheck/internal/runner"
)

var passed = color.New(color.FgGreen).SprintFunc()
var failed = color.New(color.FgRed).SprintFunc()
var cancelled = color.New(color.FgYellow).SprintFunc()

// WriteRun prints one run's per-case results and summary.
func WriteRun(out io.Writer, model api.ModelSelection, run *api.TestRun) {
	fmt.Fprintf(out, "\nResults for %s (run %s)\n\n", model.Label(), run.ID)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Test Case", "Status", "Judge", "Time (ms)"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, result := range run.Results {
		table.Append([]string{
			result.TestCaseName,
			caseStatus(result),
			judgeScore(result.JudgeScore),
			fmt.Sprintf("%d", result.ResponseTimeMs),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", run.Summary.Total),
		fmt.Sprintf("%d passed / %d failed", run.Summary.Passed, run.Summary.Failed),
		judgeScore(run.Summary.AvgJudgeScore),
		fmt.Sprintf("%.0f avg", run.Summary.AvgResponseTimeMs),
	})

	table.Render()
}

// WriteComparison prints the per-model outcome table for a multi-model run.
func WriteComparison(out io.Writer, result *runner.MultiModelResult) {
	fmt.Fprint(out, "\nModel comparison\n\n")

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Provider", "Model", "Status", "Passed", "Failed", "Judge"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, outcome := range result.Outcomes {
		row := []string{
			string(outcome.Selection.Provider),
			outcome.Selection.Model,
		}
		switch outcome.Outcome.State {
		case runner.StateCompleted:
			summary := outcome.Outcome.TestRun.Summary
			row = append(row,
				passed("completed"),
				fmt.Sprintf("%d", summary.Passed),
				fmt.Sprintf("%d", summary.Failed),
				judgeScore(summary.AvgJudgeScore),
			)
		case runner.StateCancelled:
			row = append(row, cancelled("cancelled"), "-", "-", "-")
		default:
			row = append(row, failed(outcome.Outcome.Message), "-", "-", "-")
		}
		table.Append(row)
	}

	table.Render()

	if result.SessionPersisted {
		fmt.Fprintln(out, "\nComparison session saved.")
	} else if len(result.SuccessfulRuns()) >= 2 {
		fmt.Fprintln(out, "\nComparison session could not be saved; results shown above only.")
	}
}

// WriteSuites prints the suite listing.
func WriteSuites(out io.Writer, suites []api.TestSuite) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Name", "Cases", "Updated"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, suite := range suites {
		table.Append([]string{suite.ID, suite.Name, fmt.Sprintf("%d", suite.CaseCount), suite.UpdatedAt})
	}

	table.Render()
}

// Dump pretty-prints a value for debug output.
func Dump(value any) {
	pp.Println(value)
}

func caseStatus(result api.TestCaseResult) string {
	if result.Passed {
		return passed("PASS")
	}
	if result.Error != "" {
		return failed("ERROR")
	}
	return failed("FAIL")
}

func judgeScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *score)
}

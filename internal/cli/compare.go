// internal/cli/compare.go
package promptcheck

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptcheck/promptcheck/internal/appconfig"
	"github.com/promptcheck/promptcheck/internal/report"
	"github.com/promptcheck/promptcheck/internal/runner"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run the test suite against every configured model",
	Long: `Run the configured test suite once per configured comparison model, in
order, and show the per-model results side by side. With two or more
successful runs the comparison session is saved on the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runComparison(cmd)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringP("request", "r", "", "run-request file (JSON or YAML)")
	compareCmd.Flags().IntP("iterations", "i", 0, "iterations per test case (1-100)")
	compareCmd.Flags().StringP("note", "n", "", "note to attach to each run")
	compareCmd.Flags().StringSliceP("tags", "t", nil, "only run test cases with these tags")
	compareCmd.Flags().StringSlice("cases", nil, "only run these test case IDs (overrides --tags)")
	compareCmd.Flags().Bool("no-stream", false, "fetch each result as one JSON payload instead of streaming")
	compareCmd.Flags().Bool("tui", false, "show a live progress display while the runs stream")
}

func runComparison(cmd *cobra.Command) error {
	suiteID, err := requireSuite()
	if err != nil {
		return err
	}
	cfg := getConfig()

	if len(cfg.ComparisonModels) == 0 {
		return fmt.Errorf("no comparison models configured: run 'promptcheck models set' first")
	}

	req, err := buildRunRequest(cmd)
	if err != nil {
		return err
	}

	noStream, _ := cmd.Flags().GetBool("no-stream")
	o := runner.New(newClient(), appconfig.LoadCredentials(*cfg), runner.Options{
		SupportsMultiModel: true,
		SupportsTags:       true,
		NoStream:           noStream,
	})

	var result *runner.MultiModelResult
	var runErr error
	execute := func(ctx context.Context) {
		result, runErr = o.RunAllModels(ctx, suiteID, cfg.ComparisonModels, req)
	}
	if err := drive(cmd, o, execute); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	report.WriteComparison(cmd.OutOrStdout(), result)
	if DebugEnabled() {
		for _, run := range result.SuccessfulRuns() {
			report.Dump(run.Summary)
		}
	}
	return nil
}

// internal/cli/run.go
package promptcheck

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptcheck/promptcheck/internal/api"
	"github.com/promptcheck/promptcheck/internal/appconfig"
	"github.com/promptcheck/promptcheck/internal/report"
	"github.com/promptcheck/promptcheck/internal/runner"
	"github.com/promptcheck/promptcheck/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the test suite against a single model",
	Long: `Run the configured test suite against one model and stream the results.
The model comes from --model, or from the primary entry in the configured
comparison models when the flag is omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSuite(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("model", "m", "", "model to run, as provider/model (e.g. openai/gpt-4o-mini)")
	runCmd.Flags().StringP("request", "r", "", "run-request file (JSON or YAML)")
	runCmd.Flags().IntP("iterations", "i", 0, "iterations per test case (1-100)")
	runCmd.Flags().StringP("note", "n", "", "note to attach to the run")
	runCmd.Flags().StringSliceP("tags", "t", nil, "only run test cases with these tags")
	runCmd.Flags().StringSlice("cases", nil, "only run these test case IDs (overrides --tags)")
	runCmd.Flags().Bool("no-stream", false, "fetch the complete result as one JSON payload instead of streaming")
	runCmd.Flags().Bool("tui", false, "show a live progress display while the run streams")
}

func runSuite(cmd *cobra.Command) error {
	suiteID, err := requireSuite()
	if err != nil {
		return err
	}
	cfg := getConfig()

	model, err := selectedModel(cmd, cfg)
	if err != nil {
		return err
	}

	req, err := buildRunRequest(cmd)
	if err != nil {
		return err
	}

	noStream, _ := cmd.Flags().GetBool("no-stream")
	o := runner.New(newClient(), appconfig.LoadCredentials(*cfg), runner.Options{
		SupportsTags: true,
		NoStream:     noStream,
	})

	var outcome runner.Outcome
	execute := func(ctx context.Context) {
		outcome = o.RunSingleModel(ctx, suiteID, model, req)
	}
	if err := drive(cmd, o, execute); err != nil {
		return err
	}

	switch outcome.State {
	case runner.StateCompleted:
		report.WriteRun(cmd.OutOrStdout(), model, outcome.TestRun)
		if DebugEnabled() {
			report.Dump(outcome.TestRun.Summary)
		}
		return nil
	case runner.StateCancelled:
		fmt.Fprintln(cmd.OutOrStdout(), outcome.Message)
		return nil
	default:
		return fmt.Errorf("run failed: %s", outcome.Message)
	}
}

// drive executes fn plainly with interrupt-to-cancel, or under the live
// progress display when --tui is set.
func drive(cmd *cobra.Command, o *runner.Orchestrator, fn func(context.Context)) error {
	if useTUI, _ := cmd.Flags().GetBool("tui"); useTUI {
		return tui.Run(o, func() { fn(cmd.Context()) })
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	fn(ctx)
	return nil
}

// selectedModel resolves the run target: the --model flag when set, else the
// primary configured comparison model.
func selectedModel(cmd *cobra.Command, cfg *appconfig.Config) (api.ModelSelection, error) {
	if flag, _ := cmd.Flags().GetString("model"); flag != "" {
		return parseModelRef(flag)
	}
	model, err := runner.ResolveModel(cfg.ComparisonModels)
	if err != nil {
		return api.ModelSelection{}, fmt.Errorf("no model selected: pass --model or configure comparison models")
	}
	return model, nil
}

// parseModelRef parses a provider/model reference such as openai/gpt-4o-mini.
// The model part may itself contain slashes.
func parseModelRef(ref string) (api.ModelSelection, error) {
	providerPart, modelPart, ok := strings.Cut(ref, "/")
	if !ok || strings.TrimSpace(modelPart) == "" {
		return api.ModelSelection{}, fmt.Errorf("invalid model reference %q (expected provider/model)", ref)
	}
	provider, err := api.ParseProvider(providerPart)
	if err != nil {
		return api.ModelSelection{}, err
	}
	return api.ModelSelection{Provider: provider, Model: strings.TrimSpace(modelPart)}, nil
}

// buildRunRequest assembles the run request from an optional request file
// plus flag overrides.
func buildRunRequest(cmd *cobra.Command) (api.RunRequest, error) {
	var req api.RunRequest

	if path, _ := cmd.Flags().GetString("request"); path != "" {
		loaded, err := api.LoadRunRequest(path)
		if err != nil {
			return req, err
		}
		req = loaded
	}

	if cmd.Flags().Changed("iterations") {
		req.Iterations, _ = cmd.Flags().GetInt("iterations")
	}
	if cmd.Flags().Changed("note") {
		req.Note, _ = cmd.Flags().GetString("note")
	}
	if cmd.Flags().Changed("tags") {
		req.Tags, _ = cmd.Flags().GetStringSlice("tags")
	}
	if cmd.Flags().Changed("cases") {
		req.TestCaseIDs, _ = cmd.Flags().GetStringSlice("cases")
	}

	req = req.Normalized()
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

// internal/cli/models.go
package promptcheck

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptcheck/promptcheck/internal/api"
	"github.com/promptcheck/promptcheck/internal/appconfig"
)

// modelsCmd represents the 'models' command group.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Group commands for managing comparison models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured comparison models and their credential status",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := getConfig()
		if len(cfg.ComparisonModels) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No comparison models configured.")
			return
		}

		creds := appconfig.LoadCredentials(*cfg)
		for _, model := range cfg.ComparisonModels {
			marker := " "
			if model.IsPrimary {
				marker = "*"
			}
			credStatus := "credential missing"
			if _, ok := creds.For(model.Provider); ok {
				credStatus = "credential set"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %-40s %s\n", marker, model.Label(), credStatus)
		}
	},
}

var modelsSetCmd = &cobra.Command{
	Use:   "set provider/model [provider/model...]",
	Short: "Save the comparison model set on the current suite",
	Long: `Save the given models as the suite's comparison set. The first model is
marked primary unless --primary names another one.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setModels(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsSetCmd)

	modelsSetCmd.Flags().String("primary", "", "model reference to mark primary (defaults to the first)")
}

func setModels(cmd *cobra.Command, args []string) error {
	suiteID, err := requireSuite()
	if err != nil {
		return err
	}

	primaryRef, _ := cmd.Flags().GetString("primary")

	var models []api.ModelSelection
	primarySet := false
	for _, ref := range args {
		model, err := parseModelRef(ref)
		if err != nil {
			return err
		}
		if primaryRef != "" && ref == primaryRef {
			model.IsPrimary = true
			primarySet = true
		}
		models = append(models, model)
	}
	if primaryRef != "" && !primarySet {
		return fmt.Errorf("--primary %q does not match any given model", primaryRef)
	}
	if primaryRef == "" {
		models[0].IsPrimary = true
	}

	if err := newClient().SaveComparisonModels(cmd.Context(), suiteID, models); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d comparison model(s) on suite %s.\n", len(models), suiteID)
	return nil
}

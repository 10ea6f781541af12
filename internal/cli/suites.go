// internal/cli/suites.go
package promptcheck

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptcheck/promptcheck/internal/report"
)

// suitesCmd represents the 'suites' command group.
var suitesCmd = &cobra.Command{
	Use:   "suites",
	Short: "Group commands for inspecting test suites",
}

var suitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the test suites on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		suites, err := newClient().ListSuites(cmd.Context())
		if err != nil {
			return err
		}
		if len(suites) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No test suites found.")
			return nil
		}
		report.WriteSuites(cmd.OutOrStdout(), suites)
		return nil
	},
}

var suitesShowCmd = &cobra.Command{
	Use:   "show [suite-id]",
	Short: "Show one test suite",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suiteID := ""
		if len(args) == 1 {
			suiteID = args[0]
		} else {
			resolved, err := requireSuite()
			if err != nil {
				return err
			}
			suiteID = resolved
		}

		suite, err := newClient().GetSuite(cmd.Context(), suiteID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Suite:       %s\n", suite.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "ID:          %s\n", suite.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "Test cases:  %d\n", suite.CaseCount)
		if suite.Description != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Description: %s\n", suite.Description)
		}
		if suite.UpdatedAt != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Updated:     %s\n", suite.UpdatedAt)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suitesCmd)
	suitesCmd.AddCommand(suitesListCmd)
	suitesCmd.AddCommand(suitesShowCmd)
}

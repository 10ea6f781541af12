// internal/cli/validate.go
package promptcheck

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptcheck/promptcheck/internal/api"
)

var validateCmd = &cobra.Command{
	Use:   "validate <request-file>",
	Short: "Validate a run-request file without executing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := api.LoadRunRequest(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (%d iteration(s))\n", args[0], req.Normalized().Iterations)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// internal/cli/show_config.go
package promptcheck

import (
	"github.com/spf13/cobra"

	"github.com/promptcheck/promptcheck/internal/appconfig"
)

// showConfigCmd implements 'show config', printing the merged configuration
// after flags override the config file.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := getConfig()
		file := ""
		if cfg != nil {
			file = cfg.ConfigPath
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), file, cfg)
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}

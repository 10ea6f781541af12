// internal/cli/root.go
package promptcheck

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/promptcheck/promptcheck/internal/api"
	"github.com/promptcheck/promptcheck/internal/appconfig"
	"github.com/promptcheck/promptcheck/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "promptcheck",
	Short: "promptcheck — run LLM test suites against multiple models from the terminal",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Load config (file or defaults).
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		// 2) Flags override config. Only copy values the user actually set so
		//    the config file keeps authority over untouched settings.
		if cmd.Flags().Changed("debug") {
			currentConfig.Debug = viper.GetBool("debug")
		}
		if cmd.Flags().Changed("server") {
			currentConfig.ServerURL = viper.GetString("server")
		}
		if cmd.Flags().Changed("suite") {
			currentConfig.SuiteID = viper.GetString("suite")
		}
		if cmd.Flags().Changed("logFile") {
			currentConfig.LogFile = viper.GetString("logFile")
		}

		// 3) Logging is up before any command body runs.
		return logging.Init(currentConfig.LogFilePath())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Close()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("server", "", "test-suite service base URL")
	rootCmd.PersistentFlags().String("suite", "", "test suite ID to operate on")
	rootCmd.PersistentFlags().String("logFile", "", "log file path")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("suite", rootCmd.PersistentFlags().Lookup("suite"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
}

// ensureConfigLoaded reads the config file into currentConfig. A missing file
// is fine; flags and defaults carry the session.
func ensureConfigLoaded() error {
	cfg, err := appconfig.Load(cfgFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			currentConfig = &appconfig.Config{}
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	currentConfig = &cfg
	return nil
}

// getConfig returns the loaded application configuration for command bodies.
func getConfig() *appconfig.Config {
	return currentConfig
}

// newClient builds the service client from the merged configuration.
func newClient() *api.Client {
	cfg := getConfig()
	return api.NewClient(cfg.Server(), cfg.RequestTimeout())
}

// requireSuite resolves the suite ID from flags or config.
func requireSuite() (string, error) {
	if suite := getConfig().SuiteID; suite != "" {
		return suite, nil
	}
	return "", fmt.Errorf("no suite selected: pass --suite or set \"suite\" in the config file")
}

func DebugEnabled() bool { return getConfig() != nil && getConfig().Debug }

package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary. A nil cfg prints the
// built-in defaults.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	if cfg == nil {
		cfg = &Config{}
	}

	fmt.Fprintf(out, "  Server:       %s\n", cfg.Server())
	fmt.Fprintf(out, "  Suite:        %s\n", cfg.SuiteID)
	fmt.Fprintf(out, "  Timeout:      %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Log File:     %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Debug:        %v\n", cfg.Debug)
	if len(cfg.ComparisonModels) == 0 {
		fmt.Fprintln(out, "  Models:       (none configured)")
		return
	}
	fmt.Fprintln(out, "  Models:")
	for _, model := range cfg.ComparisonModels {
		marker := " "
		if model.IsPrimary {
			marker = "*"
		}
		fmt.Fprintf(out, "    %s %s\n", marker, model.Label())
	}
}

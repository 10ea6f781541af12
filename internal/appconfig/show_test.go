// internal/appconfig/show_test.go
package appconfig

import (
	"bytes"
	"strings"
	"testing"

	"github.com/promptcheck/promptcheck/internal/api"
)

func TestShowConfigNilUsesDefaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ShowConfig(&buf, "", nil)
	got := buf.String()

	for _, want := range []string{"No config file loaded", "http://localhost:3000", "promptcheck.log", "(none configured)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestShowConfigMarksPrimaryModel(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		SuiteID: "suite-1",
		ComparisonModels: []api.ModelSelection{
			{Provider: api.ProviderOpenAI, Model: "gpt-4o-mini"},
			{Provider: api.ProviderAnthropic, Model: "claude-sonnet", IsPrimary: true},
		},
	}

	var buf bytes.Buffer
	ShowConfig(&buf, "config/config.json", cfg)
	got := buf.String()

	if !strings.Contains(got, "Config file: config/config.json") {
		t.Errorf("output missing config file line:\n%s", got)
	}
	if !strings.Contains(got, "* anthropic/claude-sonnet") {
		t.Errorf("output missing primary marker:\n%s", got)
	}
}

// internal/appconfig/credentials.go
package appconfig

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/promptcheck/promptcheck/internal/api"
)

// defaultCredentialEnv maps each provider to its conventional API key
// variable. Entries in Config.CredentialEnv override these names.
var defaultCredentialEnv = map[api.Provider]string{
	api.ProviderOpenAI:    "OPENAI_API_KEY",
	api.ProviderAnthropic: "ANTHROPIC_API_KEY",
	api.ProviderGoogle:    "GOOGLE_API_KEY",
	api.ProviderMistral:   "MISTRAL_API_KEY",
	api.ProviderOllama:    "OLLAMA_API_KEY",
}

// Credentials holds the resolved API keys per provider.
type Credentials struct {
	values map[api.Provider]string
}

// LoadCredentials resolves provider credentials from the environment. A .env
// file (or the configured EnvFile) is loaded first when present; a missing
// file is not an error.
func LoadCredentials(cfg Config) Credentials {
	envFile := strings.TrimSpace(cfg.EnvFile)
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	values := make(map[api.Provider]string, len(defaultCredentialEnv))
	for provider, envName := range defaultCredentialEnv {
		if override, ok := cfg.CredentialEnv[string(provider)]; ok && strings.TrimSpace(override) != "" {
			envName = override
		}
		if key := strings.TrimSpace(os.Getenv(envName)); key != "" {
			values[provider] = key
		}
	}
	return Credentials{values: values}
}

// NewCredentials builds a store from explicit values. Used by tests and by
// callers that resolve keys some other way.
func NewCredentials(values map[api.Provider]string) Credentials {
	copied := make(map[api.Provider]string, len(values))
	for provider, key := range values {
		if strings.TrimSpace(key) != "" {
			copied[provider] = key
		}
	}
	return Credentials{values: copied}
}

// For returns the API key for a provider and whether one is configured.
func (c Credentials) For(provider api.Provider) (string, bool) {
	key, ok := c.values[provider]
	return key, ok
}

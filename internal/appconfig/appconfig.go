// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/promptcheck/promptcheck/internal/api"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path to the configuration file used in previous versions.
	legacyConfigPath = "config.json"
	// defaultRequestTimeout is the default timeout for non-streaming HTTP requests.
	defaultRequestTimeout = 120 * time.Second
	// defaultServerURL is used when the config omits the service address.
	defaultServerURL = "http://localhost:3000"
)

// Config represents the top-level application configuration.
type Config struct {
	ServerURL        string               `json:"serverUrl"`
	SuiteID          string               `json:"suite,omitempty"`
	ComparisonModels []api.ModelSelection `json:"comparisonModels,omitempty"`
	CredentialEnv    map[string]string    `json:"credentialEnv,omitempty"`
	EnvFile          string               `json:"envFile,omitempty"`
	TimeoutSeconds   int                  `json:"timeout,omitempty"`
	LogFile          string               `json:"logFile,omitempty"`
	Debug            bool                 `json:"debug"`
	ConfigPath       string               `json:"-"`
}

// RequestTimeout returns the timeout duration for non-streaming HTTP
// requests, falling back to the default if not specified. Run streams are
// not bounded by it.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "promptcheck.log"
}

// Server returns the service base URL without a trailing slash.
func (c Config) Server() string {
	url := strings.TrimSpace(c.ServerURL)
	if url == "" {
		url = defaultServerURL
	}
	return strings.TrimRight(url, "/")
}

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				config.ConfigPath = legacyConfigPath
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("no configuration file found (searched %q and %q): %w", DefaultConfigPath, legacyConfigPath, os.ErrNotExist)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q: %w", path, os.ErrNotExist)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}
	for provider := range config.CredentialEnv {
		if !api.Provider(provider).Valid() {
			return Config{}, fmt.Errorf("credentialEnv names unknown provider %q", provider)
		}
	}

	return config, nil
}

// Package utils holds file helpers used by the CLI to load its configuration.
package utils

import (
	"errors"
	"fmt"
	"os"

	"github.com/fjacquet/hrdir/internal/models"
	"gopkg.in/yaml.v2"
)

// TokenEnvVar overrides api.token when set, so the token can stay out of the
// configuration file.
const TokenEnvVar = "HRDIR_API_TOKEN"

// FileExists checks if the given file exists.
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// ReadFile decodes the YAML file at filepath into cfg. Unknown keys are rejected.
func ReadFile(cfg *models.Config, filepath string) error {
	f, err := os.Open(filepath)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", filepath, err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.SetStrict(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", filepath, err)
	}
	return nil
}

// LoadConfig reads, completes and validates the configuration at path.
func LoadConfig(path string) (models.Config, error) {
	var cfg models.Config
	if path == "" {
		return cfg, errors.New("config file path is required")
	}
	if !FileExists(path) {
		return cfg, fmt.Errorf("config file not found: %s", path)
	}
	if err := ReadFile(&cfg, path); err != nil {
		return cfg, err
	}
	if token := os.Getenv(TokenEnvVar); token != "" {
		cfg.API.Token = token
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// Package config provides document loading (YAML, JSON, TOML) with environment variable expansion.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a file with environment variable expansion.
// The decoder is chosen from the file extension; unknown extensions are read as YAML.
func Load[T any](filename string, target *T) error {
	return load(filename, target, true)
}

// LoadLiteral loads a document like Load but leaves "$" sequences untouched,
// for documents whose values are user text rather than settings.
func LoadLiteral[T any](filename string, target *T) error {
	return load(filename, target, false)
}

func load[T any](filename string, target *T, expand bool) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	if expand {
		data = []byte(os.ExpandEnv(string(data)))
	}

	if err := Unmarshal(filename, data, target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// Unmarshal decodes data according to the extension of filename.
func Unmarshal[T any](filename string, data []byte, target *T) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return json.Unmarshal(data, target)
	case ".toml":
		return toml.Unmarshal(data, target)
	default:
		return yaml.Unmarshal(data, target)
	}
}

// LoadWithDefaults loads configuration with fallback to a default file.
func LoadWithDefaults[T any](filename, defaultFile string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if defaultFile != "" {
			return Load(defaultFile, target)
		}
		return fmt.Errorf("config file not found: %s", filename)
	}
	return Load(filename, target)
}

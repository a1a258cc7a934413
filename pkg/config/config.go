// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load reads a YAML file into target after expanding ${VAR} references.
// Unknown keys are rejected so a misspelt section does not silently fall
// back to defaults. An empty file leaves target untouched.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(data)))))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// LoadWithDefaults loads filename, or defaultFile when filename does not
// exist. With no default file, target keeps its preset values and is only
// validated.
func LoadWithDefaults[T any](filename, defaultFile string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if defaultFile != "" {
			return Load(defaultFile, target)
		}
		if validator, ok := any(target).(Validator); ok {
			if err := validator.Validate(); err != nil {
				return fmt.Errorf("config validation failed: %w", err)
			}
		}
		return nil
	}
	return Load(filename, target)
}

// Package config provides configuration loading and management for
// the openspec CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete openspec configuration
type Config struct {
	Project  ProjectConfig  `yaml:"project"`
	Author   AuthorConfig   `yaml:"author"`
	Validation ValidateConfig `yaml:"validate"`
	Log      LogConfig      `yaml:"log"`
}

// ProjectConfig configures project layout
type ProjectConfig struct {
	// Root is the workspace root path (auto-detected if empty)
	Root string `yaml:"root"`
	// Dir is the directory holding specs and changes (default: "openspec")
	Dir string `yaml:"dir"`
}

// AuthorConfig configures change attribution
type AuthorConfig struct {
	// Name is recorded on new changes (falls back to $USER)
	Name string `yaml:"name"`
}

// ValidateConfig configures validation behavior
type ValidateConfig struct {
	// Strict treats warnings as failures
	Strict bool `yaml:"strict"`
	// ExtraVerbs extends the verb allow-list for change ids
	ExtraVerbs []string `yaml:"extra_verbs"`
}

// LogConfig configures logging output
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: warn)
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Root: "", // Auto-detect
			Dir:  "openspec",
		},
		Author: AuthorConfig{
			Name: "",
		},
		Validation: ValidateConfig{
			Strict:     false,
			ExtraVerbs: nil,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Project.Dir == "" {
		return fmt.Errorf("project.dir is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence
// for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Project.Root != "" {
		c.Project.Root = other.Project.Root
	}
	if other.Project.Dir != "" {
		c.Project.Dir = other.Project.Dir
	}

	if other.Author.Name != "" {
		c.Author.Name = other.Author.Name
	}

	if other.Validation.Strict {
		c.Validation.Strict = true
	}
	if len(other.Validation.ExtraVerbs) > 0 {
		c.Validation.ExtraVerbs = append(c.Validation.ExtraVerbs, other.Validation.ExtraVerbs...)
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}

// AuthorName returns the configured author, falling back to $USER.
func (c *Config) AuthorName() string {
	if c.Author.Name != "" {
		return c.Author.Name
	}
	return os.Getenv("USER")
}

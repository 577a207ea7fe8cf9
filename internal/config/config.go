// Package config loads defaults for command-line options from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = ".dendo.yaml"

// Config mirrors the command-line flags. Zero values leave the flag default
// in place.
type Config struct {
	Output     string   `yaml:"output"`
	Out        string   `yaml:"out"`
	Title      string   `yaml:"title"`
	ScriptURL  string   `yaml:"script_url"`
	PathColumn string   `yaml:"path_column"`
	SizeColumn string   `yaml:"size_column"`
	Delimiter  string   `yaml:"delimiter"`
	Separator  string   `yaml:"separator"`
	Top        int      `yaml:"top"`
	MaxDepth   int      `yaml:"max_depth"`
	Depth      int      `yaml:"depth"`
	MinSize    string   `yaml:"min_size"`
	Excludes   []string `yaml:"exclude"`
	Extensions []string `yaml:"ext"`
}

// Load reads the configuration at path. Unknown keys are rejected.
// A missing file yields an error matching os.ErrNotExist.
func Load(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("opening config: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

// Decode parses a configuration document. An empty document is valid.
func Decode(r io.Reader) (Config, error) {
	var cfg Config

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// LoadOptional reads path, treating a missing file as an empty configuration.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}

	return cfg, err
}

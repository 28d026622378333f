package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for vizpath
type Config struct {
	GraphType  string           `yaml:"graph_type"`
	Output     OutputConfig     `yaml:"output"`
	Display    DisplayConfig    `yaml:"display"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Cache      CacheConfig      `yaml:"cache"`
	Charts     []ChartConfig    `yaml:"charts" validate:"dive"`
	Dev        DevConfig        `yaml:"dev"`
}

// OutputConfig controls how results are written
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=json csv table"`
	Pretty bool   `yaml:"pretty"`
}

// DisplayConfig controls column display names and chart labels
type DisplayConfig struct {
	// Style is the case style applied to display names
	Style          string            `yaml:"style" validate:"oneof=raw camel lower_camel snake kebab words"`
	LabelMaxLength int               `yaml:"label_max_length" validate:"gte=0"`
	MaxPoints      int               `yaml:"max_points" validate:"gte=0"`
	FieldMappings  map[string]string `yaml:"field_mappings"`
}

// ExtractionConfig controls how parameters are resolved
type ExtractionConfig struct {
	// DescendantSearch enables the by-name fallback when exact paths miss
	DescendantSearch bool `yaml:"descendant_search"`
	// ImplicitRoots anchors rootless parameters at the array they share
	ImplicitRoots bool `yaml:"implicit_roots"`
	// Columnar zips parameters that all resolve to arrays into one row per index
	Columnar bool `yaml:"columnar"`
}

// AnalysisConfig bounds the structure summary
type AnalysisConfig struct {
	MaxDepth    int `yaml:"max_depth" validate:"gte=0"`
	ArraySample int `yaml:"array_sample" validate:"gte=0"`
}

// CacheConfig sizes the batch root-resolution cache; 0 disables it
type CacheConfig struct {
	Size int `yaml:"size" validate:"gte=0"`
}

// ChartConfig registers or overrides a graph type's requirements
type ChartConfig struct {
	Type      string   `yaml:"type" validate:"required,lowercase"`
	MinParams int      `yaml:"min_params" validate:"min=1"`
	Roles     []string `yaml:"roles"`
	Variadic  bool     `yaml:"variadic"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "json",
			Pretty: true,
		},
		Display: DisplayConfig{
			Style:          "raw",
			LabelMaxLength: 20,
			FieldMappings:  make(map[string]string),
		},
		Extraction: ExtractionConfig{
			DescendantSearch: true,
			ImplicitRoots:    true,
		},
		Analysis: AnalysisConfig{
			MaxDepth:    0,
			ArraySample: 0,
		},
		Cache: CacheConfig{
			Size: 128,
		},
		Charts: []ChartConfig{},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findConfigFrom(currentDir)
}

func findConfigFrom(currentDir string) string {
	configNames := []string{".vizpath.yml", ".vizpath.yaml", "vizpath.yml", "vizpath.yaml"}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		// Move up one directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks the structural constraints on every field.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DisplayName returns the configured display name for a column, if any
func (c *Config) DisplayName(column string) (string, bool) {
	name, ok := c.Display.FieldMappings[column]
	return name, ok && strings.TrimSpace(name) != ""
}

// Overrides holds values set on the command line. Pointer fields are nil
// when the flag was not given.
type Overrides struct {
	GraphType        string
	Format           string
	Pretty           *bool
	Style            string
	DescendantSearch *bool
	ImplicitRoots    *bool
	Columnar         *bool
	Debug            bool
}

// MergeConfigs merges CLI overrides into a base config
// Non-empty values from override take precedence over base values
func MergeConfigs(base *Config, override Overrides) *Config {
	merged := *base // Start with a copy of base

	// Override non-empty string values
	if override.GraphType != "" {
		merged.GraphType = override.GraphType
	}
	if override.Format != "" {
		merged.Output.Format = override.Format
	}
	if override.Style != "" {
		merged.Display.Style = override.Style
	}

	// Booleans only override when the flag was explicitly set
	if override.Pretty != nil {
		merged.Output.Pretty = *override.Pretty
	}
	if override.DescendantSearch != nil {
		merged.Extraction.DescendantSearch = *override.DescendantSearch
	}
	if override.ImplicitRoots != nil {
		merged.Extraction.ImplicitRoots = *override.ImplicitRoots
	}
	if override.Columnar != nil {
		merged.Extraction.Columnar = *override.Columnar
	}
	if override.Debug {
		merged.Dev.Debug = true
	}

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence. An empty
// configPath falls back to FindConfigFile.
func LoadConfigWithCLI(configPath string, override Overrides) (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	if configPath == "" {
		configPath = FindConfigFile()
	}

	// Load config file if provided
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	merged := MergeConfigs(cfg, override)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

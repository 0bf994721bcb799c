package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rgehrsitz/inss-calc/internal/domain"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// DefaultConfiguration returns a configuration carrying every default value
func DefaultConfiguration() domain.Configuration {
	return domain.Configuration{
		Pipeline:   domain.DefaultPipelineOptions(),
		Parameters: domain.DefaultPensionParameters(),
		Logging:    domain.LoggingConfig{Level: "info", Format: "console"},
	}
}

// LoadFromFile loads configuration from a YAML file. Relative source paths
// are resolved against the directory of the file.
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	config, err := ip.LoadFromBytes(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(filename)
	for i := range config.Sources {
		p := config.Sources[i].Path
		if p != "" && !filepath.IsAbs(p) {
			config.Sources[i].Path = filepath.Join(base, p)
		}
	}
	return config, nil
}

// LoadFromBytes decodes and validates a YAML document. Keys absent from the
// document keep their default values.
func (ip *InputParser) LoadFromBytes(data []byte) (*domain.Configuration, error) {
	config := DefaultConfiguration()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if len(config.Sources) == 0 {
		return fmt.Errorf("sources: at least one source is required")
	}

	seen := make(map[string]bool, len(config.Sources))
	for i := range config.Sources {
		src := &config.Sources[i]
		if err := ip.validateSource(src); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
		if seen[src.Name] {
			return fmt.Errorf("sources[%d].name: duplicate source %q", i, src.Name)
		}
		seen[src.Name] = true
	}

	if err := config.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline.%w", err)
	}
	if err := config.Parameters.Validate(); err != nil {
		return fmt.Errorf("parameters: %w", err)
	}
	if err := ip.validateLogging(&config.Logging); err != nil {
		return fmt.Errorf("logging.%w", err)
	}
	return nil
}

// validateSource validates a single source entry
func (ip *InputParser) validateSource(src *domain.SourceConfig) error {
	if strings.TrimSpace(src.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if src.Path == "" && src.Inline == "" {
		return fmt.Errorf("path or inline content is required")
	}
	if src.Path != "" && src.Inline != "" {
		return fmt.Errorf("path and inline are mutually exclusive")
	}

	switch src.Format {
	case domain.FormatText:
	case domain.FormatDelimited:
		switch src.Layout {
		case domain.LayoutHistory, domain.LayoutLetter:
		case "":
			return fmt.Errorf("layout is required for delimited sources")
		default:
			return fmt.Errorf("layout: unknown layout %q", src.Layout)
		}
	case "":
		return fmt.Errorf("format is required")
	default:
		return fmt.Errorf("format: unknown format %q", src.Format)
	}

	switch src.Role() {
	case domain.FeedsHistory, domain.FeedsExclusions:
	default:
		return fmt.Errorf("feeds: unknown role %q", src.Feeds)
	}
	return nil
}

func (ip *InputParser) validateLogging(cfg *domain.LoggingConfig) error {
	switch strings.ToLower(cfg.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level: unknown level %q", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("format: unknown format %q", cfg.Format)
	}
	return nil
}

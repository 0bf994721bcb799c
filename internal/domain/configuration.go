package domain

// SourceFormat selects the parser used for a source
type SourceFormat string

const (
	FormatText      SourceFormat = "text"
	FormatDelimited SourceFormat = "delimited"
)

// DelimitedLayout names the positional column layout of a delimited source
type DelimitedLayout string

const (
	LayoutHistory DelimitedLayout = "history"
	LayoutLetter  DelimitedLayout = "letter"
)

// SourceRole tells the classifier what a source contributes
type SourceRole string

const (
	// FeedsHistory sources contribute considered records to selection
	FeedsHistory SourceRole = "history"
	// FeedsExclusions sources only contribute excluded records to reconciliation
	FeedsExclusions SourceRole = "exclusions"
)

// SourceConfig describes one input document
type SourceConfig struct {
	Name   string          `yaml:"name" json:"name"`
	Path   string          `yaml:"path,omitempty" json:"path,omitempty"`
	Inline string          `yaml:"inline,omitempty" json:"inline,omitempty"`
	Format SourceFormat    `yaml:"format" json:"format"`
	Layout DelimitedLayout `yaml:"layout,omitempty" json:"layout,omitempty"`
	Origin Origin          `yaml:"origin" json:"origin"`
	Feeds  SourceRole      `yaml:"feeds,omitempty" json:"feeds,omitempty"`
	// Excluded marks every record of the source as not considered
	Excluded bool `yaml:"excluded,omitempty" json:"excluded,omitempty"`
	// Header defaults to true for delimited sources
	Header *bool `yaml:"header,omitempty" json:"header,omitempty"`
}

// HasHeader reports whether the first delimited row is a header
func (s SourceConfig) HasHeader() bool {
	return s.Header == nil || *s.Header
}

// Role returns the configured role, defaulting to history
func (s SourceConfig) Role() SourceRole {
	if s.Feeds == "" {
		return FeedsHistory
	}
	return s.Feeds
}

// LoggingConfig mirrors the CLI logging flags
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Configuration represents the complete input configuration
type Configuration struct {
	Sources    []SourceConfig    `yaml:"sources" json:"sources"`
	Pipeline   PipelineOptions   `yaml:"pipeline" json:"pipeline"`
	Parameters PensionParameters `yaml:"parameters" json:"parameters"`
	Logging    LoggingConfig     `yaml:"logging" json:"logging"`
}

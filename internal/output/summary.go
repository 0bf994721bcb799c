package output

import (
	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/inss-calc/internal/calculation"
	"github.com/rgehrsitz/inss-calc/internal/domain"
	"gopkg.in/yaml.v3"
)

// AuditLog is the machine-readable record of a run
type AuditLog struct {
	Summary domain.Summary             `yaml:"summary" json:"summary"`
	Sources []calculation.SourceReport `yaml:"sources" json:"sources"`
	Audit   []domain.AuditEntry        `yaml:"audit" json:"audit"`
	Trace   []calculation.StageTrace   `yaml:"trace" json:"trace"`
}

// NewAuditLog extracts the audit log from a report
func NewAuditLog(report *calculation.Report) AuditLog {
	return AuditLog{
		Summary: report.Summary,
		Sources: report.Sources,
		Audit:   report.Audit,
		Trace:   report.Trace,
	}
}

// JSONFormatter renders the audit log as JSON
type JSONFormatter struct {
	Pretty bool
}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(report *calculation.Report) ([]byte, error) {
	log := NewAuditLog(report)
	if j.Pretty {
		return json.MarshalIndent(log, "", "  ")
	}
	return json.Marshal(log)
}

// YAMLFormatter renders the audit log as YAML
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string { return "yaml" }

func (y YAMLFormatter) Format(report *calculation.Report) ([]byte, error) {
	return yaml.Marshal(NewAuditLog(report))
}

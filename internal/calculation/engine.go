package calculation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/rgehrsitz/inss-calc/internal/ingest"
)

// Stage names recorded in the run trace
const (
	StageParsed     = "parsed"
	StageNormalized = "normalized"
	StageFiltered   = "filtered"
	StageClassified = "classified"
	StageCorrected  = "corrected"
	StageSelected   = "selected"
	StageReconciled = "reconciled"
	StageEvaluated  = "evaluated"
)

// Record statuses reported in the records export
const (
	RecordSelected      = "selected"
	RecordRemainder     = "remainder"
	RecordPromoted      = "promoted"
	RecordExcluded      = "excluded"
	RecordReferenceOnly = "reference_only"
	RecordAboveCeiling  = "above_ceiling"
	RecordUnparseable   = "unparseable"
)

// PipelineContext is the immutable input of one run
type PipelineContext struct {
	Sources    []domain.SourceConfig
	Options    domain.PipelineOptions
	Parameters domain.PensionParameters
}

// NewPipelineContext builds a run context from a loaded configuration
func NewPipelineContext(config *domain.Configuration) PipelineContext {
	return PipelineContext{
		Sources:    append([]domain.SourceConfig(nil), config.Sources...),
		Options:    config.Pipeline,
		Parameters: config.Parameters,
	}
}

// WithParameters returns a copy of pc using params
func (pc PipelineContext) WithParameters(params domain.PensionParameters) PipelineContext {
	pc.Parameters = params
	return pc
}

func (pc PipelineContext) thresholds() PertinenceThresholds {
	return PertinenceThresholds{
		AverageAbove: pc.Options.PertinenceAverageAbove,
		BenefitBelow: pc.Options.PertinenceBenefitBelow,
	}
}

// StageTrace records the outcome of one stage
type StageTrace struct {
	Stage    string        `yaml:"stage" json:"stage"`
	Records  int           `yaml:"records" json:"records"`
	Duration time.Duration `yaml:"duration" json:"duration"`
}

// RecordRow is one line of the records export
type RecordRow struct {
	Record domain.SalaryRecord `yaml:"record" json:"record"`
	Status string              `yaml:"status" json:"status"`
}

// SourceReport is the parse outcome of one source
type SourceReport struct {
	Name   string             `yaml:"name" json:"name"`
	Report ingest.ParseReport `yaml:"report" json:"report"`
}

// Report is everything one run produced
type Report struct {
	RunID          string               `yaml:"run_id" json:"run_id"`
	Context        PipelineContext      `yaml:"-" json:"-"`
	Sources        []SourceReport       `yaml:"sources" json:"sources"`
	Rows           []RecordRow          `yaml:"rows" json:"rows"`
	Audit          []domain.AuditEntry  `yaml:"audit" json:"audit"`
	Selection      Selection            `yaml:"selection" json:"selection"`
	Reconciliation Reconciliation       `yaml:"reconciliation" json:"reconciliation"`
	Result         domain.BenefitResult `yaml:"result" json:"result"`
	Summary        domain.Summary       `yaml:"summary" json:"summary"`
	Trace          []StageTrace         `yaml:"trace" json:"trace"`
}

// Engine runs the normalization and benefit pipeline. It holds no
// per-run state and is safe for concurrent use once configured.
type Engine struct {
	Logger Logger
	newID  func() string
}

// NewEngine creates an engine with a no-op logger
func NewEngine() *Engine {
	return &Engine{
		Logger: NopLogger{},
		newID:  func() string { return uuid.NewString() },
	}
}

// SetLogger sets the logger; nil restores the no-op logger
func (e *Engine) SetLogger(logger Logger) {
	if logger == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = logger
}

type tracer struct {
	trace []StageTrace
	start time.Time
}

func (t *tracer) mark(stage string, records int) {
	now := time.Now()
	t.trace = append(t.trace, StageTrace{Stage: stage, Records: records, Duration: now.Sub(t.start)})
	t.start = now
}

// Run executes every stage over batches in order, checking ctx between
// stages.
func (e *Engine) Run(ctx context.Context, pc PipelineContext, batches []ingest.Batch) (*Report, error) {
	if err := pc.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline options: %w", err)
	}
	if err := pc.Parameters.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pension parameters: %w", err)
	}

	report := &Report{RunID: e.newID(), Context: pc}
	tr := &tracer{start: time.Now()}
	e.Logger.Debugf("run %s: %d sources", report.RunID, len(batches))

	var totals ingest.ParseReport
	for _, b := range batches {
		totals = totals.Add(b.Report)
	}
	tr.mark(StageParsed, totals.Parsed)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s canceled after %s: %w", report.RunID, StageParsed, err)
	}

	// Normalized
	var records []domain.SalaryRecord
	totals = ingest.ParseReport{}
	for _, b := range batches {
		recs, rep := ingest.Normalize(b)
		records = append(records, recs...)
		totals = totals.Add(rep)
		report.Sources = append(report.Sources, SourceReport{Name: b.Source.Name, Report: rep})
		if rep.Unparseable > 0 {
			e.Logger.Warnf("source %s: %d records with unreadable amounts", b.Source.Name, rep.Unparseable)
		}
	}
	tr.mark(StageNormalized, len(records))
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s canceled after %s: %w", report.RunID, StageNormalized, err)
	}

	// Filtered
	kept, audit := FilterOutliers(records, pc.Options.Ceiling)
	report.Audit = append(report.Audit, audit...)
	tr.mark(StageFiltered, len(kept))
	if len(audit) > 0 {
		e.Logger.Infof("%d records moved to audit by the outlier filter", len(audit))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s canceled after %s: %w", report.RunID, StageFiltered, err)
	}

	// Classified
	sources := make(map[string]domain.SourceConfig, len(pc.Sources))
	for _, b := range batches {
		sources[b.Source.Name] = b.Source
	}
	for _, s := range pc.Sources {
		sources[s.Name] = s
	}
	class := Classify(kept, sources, pc.Options.ExclusionMarkers)
	report.Audit = append(report.Audit, class.Audit...)
	tr.mark(StageClassified, len(class.Selection))
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s canceled after %s: %w", report.RunID, StageClassified, err)
	}

	// Corrected
	selectionInput, pool := class.Selection, class.Pool
	if pc.Options.ApplyCorrection {
		selectionInput = ApplyCorrection(selectionInput, pc.Options.IndexTable)
		pool = ApplyCorrection(pool, pc.Options.IndexTable)
		tr.mark(StageCorrected, len(selectionInput)+len(pool))
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %s canceled after %s: %w", report.RunID, StageCorrected, err)
		}
	}

	// Selected
	report.Selection = SelectTop(selectionInput, pc.Options.TopFraction)
	tr.mark(StageSelected, report.Selection.K)
	e.Logger.Debugf("selected %d of %d records", report.Selection.K, report.Selection.N)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s canceled after %s: %w", report.RunID, StageSelected, err)
	}

	// Reconciled
	report.Reconciliation = Reconcile(report.Selection.Top, pool)
	tr.mark(StageReconciled, len(report.Reconciliation.Records))
	if n := len(report.Reconciliation.Promoted); n > 0 {
		e.Logger.Infof("%d excluded records promoted above %s", n, report.Reconciliation.MinTop.StringFixed(2))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s canceled after %s: %w", report.RunID, StageReconciled, err)
	}

	// Evaluated
	result, err := Aggregate(report.Reconciliation.Records, pc.Parameters, pc.thresholds())
	if err != nil {
		return nil, fmt.Errorf("run %s evaluation failed: %w", report.RunID, err)
	}
	report.Result = result
	tr.mark(StageEvaluated, result.SelectionSize)
	for _, w := range result.Warnings {
		e.Logger.Warnf("%s", w)
	}

	report.Rows = buildRows(report, selectionInput, pool)
	report.Trace = tr.trace
	report.Summary = buildSummary(report, totals, len(class.Records), len(class.Pool))

	e.Logger.Infof("run %s finished: status=%s benefit=%s", report.RunID, result.Status, result.FinalBenefit.StringFixed(2))
	return report, nil
}

// Simulate re-evaluates a finished run with other parameters. The report
// is not modified.
func (e *Engine) Simulate(report *Report, params domain.PensionParameters) (domain.BenefitResult, error) {
	if report == nil {
		return domain.BenefitResult{}, fmt.Errorf("no report to simulate")
	}
	pc := report.Context.WithParameters(params)
	result, err := Aggregate(report.Reconciliation.Records, pc.Parameters, pc.thresholds())
	if err != nil {
		return domain.BenefitResult{}, fmt.Errorf("simulation failed: %w", err)
	}
	return result, nil
}

// buildRows lists every record once, in source then input order, with the
// final status it reached.
func buildRows(report *Report, selectionInput, pool []domain.SalaryRecord) []RecordRow {
	status := make(map[domain.RecordKey]string)
	latest := make(map[domain.RecordKey]domain.SalaryRecord)

	for _, r := range selectionInput {
		latest[r.Key()] = r
	}
	for _, r := range pool {
		status[r.Key()] = RecordExcluded
		latest[r.Key()] = r
	}
	for _, r := range report.Selection.Remainder {
		status[r.Key()] = RecordRemainder
	}
	for _, r := range report.Selection.Top {
		status[r.Key()] = RecordSelected
	}
	for _, r := range report.Reconciliation.Promoted {
		status[r.Key()] = RecordPromoted
		latest[r.Key()] = r
	}
	for _, a := range report.Audit {
		k := a.Record.Key()
		latest[k] = a.Record
		switch a.Reason {
		case domain.ReasonAboveCeiling:
			status[k] = RecordAboveCeiling
		case domain.ReasonUnparseable:
			status[k] = RecordUnparseable
		case domain.ReasonReferenceOnly:
			status[k] = RecordReferenceOnly
		}
	}

	order := make([]domain.RecordKey, 0, len(latest))
	for k := range latest {
		order = append(order, k)
	}
	rank := make(map[string]int, len(report.Sources))
	for i, s := range report.Sources {
		rank[s.Name] = i
	}
	sortKeys(order, rank)

	rows := make([]RecordRow, 0, len(order))
	for _, k := range order {
		rows = append(rows, RecordRow{Record: latest[k], Status: status[k]})
	}
	return rows
}

func buildSummary(report *Report, totals ingest.ParseReport, classified, excluded int) domain.Summary {
	res := report.Result
	s := domain.Summary{
		RunID:               report.RunID,
		AverageTopSelection: res.AverageTopSelection,
		Factor:              res.Factor,
		FinalBenefit:        res.FinalBenefit,
		Status:              res.Status,
		Warnings:            res.Warnings,
		Parameters:          res.Parameters,
		Counts: domain.RecordCounts{
			Parsed:     totals.Parsed,
			Skipped:    totals.Skipped,
			Dropped:    totals.Dropped,
			Audited:    len(report.Audit),
			Considered: classified - excluded,
			Excluded:   excluded,
			Selected:   report.Selection.K,
			Remainder:  len(report.Selection.Remainder),
			Promoted:   len(report.Reconciliation.Promoted),
			Reconciled: len(report.Reconciliation.Records),
		},
	}
	if report.Context.Options.ApplyCorrection {
		s.AppliedIndices = report.Context.Options.IndexTable.Labels()
	}
	return s
}

func sortKeys(keys []domain.RecordKey, rank map[string]int) {
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank[keys[i].Source], rank[keys[j].Source]
		if ri != rj {
			return ri < rj
		}
		if keys[i].Source != keys[j].Source {
			return keys[i].Source < keys[j].Source
		}
		return keys[i].Sequence < keys[j].Sequence
	})
}

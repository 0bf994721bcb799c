package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rgehrsitz/inss-calc/internal/calculation"
	"github.com/rgehrsitz/inss-calc/internal/config"
	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/rgehrsitz/inss-calc/internal/ingest"
	"go.uber.org/zap"
)

// pipeline is a loaded configuration with its logger
type pipeline struct {
	config *domain.Configuration
	logger *zap.Logger
	engine *calculation.Engine
}

func (a *app) loadPipeline(path string) (*pipeline, error) {
	cfg, err := config.NewInputParser().LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return a.newPipeline(cfg)
}

func (a *app) newPipeline(cfg *domain.Configuration) (*pipeline, error) {
	logger, err := initializeLogger(cfg.Logging, a.settings)
	if err != nil {
		return nil, err
	}
	engine := calculation.NewEngine()
	engine.SetLogger(logger.Sugar())
	return &pipeline{config: cfg, logger: logger, engine: engine}, nil
}

// run loads every source and executes the pipeline
func (p *pipeline) run(ctx context.Context) (*calculation.Report, error) {
	loader := ingest.NewLoader(p.logger)
	loader.MaxConcurrent = runtime.GOMAXPROCS(0)
	batches, err := loader.Load(ctx, p.config.Sources)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	report, err := p.engine.Run(ctx, calculation.NewPipelineContext(p.config), batches)
	if err != nil {
		return nil, err
	}
	p.logger.Info("run complete",
		zap.String("op", "cli.run"),
		zap.String("run_id", report.RunID),
		zap.String("status", string(report.Summary.Status)),
		zap.Int("selected", report.Summary.Counts.Selected))
	return report, nil
}

func (p *pipeline) close() {
	_ = p.logger.Sync()
}

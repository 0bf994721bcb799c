package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rgehrsitz/inss-calc/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Loader reads configured sources. It is the only component that touches
// the filesystem.
type Loader struct {
	logger *zap.Logger
	// MaxConcurrent bounds parallel reads; zero means one goroutine per source
	MaxConcurrent int
}

// NewLoader creates a loader that logs through logger
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// Load reads and parses every source concurrently. Batches are returned in
// source order; the first failure cancels the remaining reads.
func (l *Loader) Load(ctx context.Context, sources []domain.SourceConfig) ([]Batch, error) {
	batches := make([]Batch, len(sources))

	eg, egCtx := errgroup.WithContext(ctx)
	if l.MaxConcurrent > 0 {
		eg.SetLimit(l.MaxConcurrent)
	}

	for i, src := range sources {
		i, src := i, src
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			batch, err := l.loadOne(egCtx, src)
			if err != nil {
				return err
			}
			batches[i] = batch
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

func (l *Loader) loadOne(ctx context.Context, src domain.SourceConfig) (Batch, error) {
	data, err := readSource(ctx, src)
	if err != nil {
		return Batch{}, err
	}

	batch, err := Parse(bytes.NewReader(data), src)
	if err != nil {
		return Batch{}, err
	}

	l.logger.Debug("source parsed",
		zap.String("op", "ingest.Load"),
		zap.String("source", src.Name),
		zap.Int("lines", batch.Report.Lines),
		zap.Int("parsed", batch.Report.Parsed),
		zap.Int("skipped", batch.Report.Skipped),
		zap.Int("dropped", batch.Report.Dropped),
	)
	if batch.Report.Parsed == 0 {
		l.logger.Warn("source produced no records",
			zap.String("op", "ingest.Load"),
			zap.String("source", src.Name),
		)
	}
	return batch, nil
}

func readSource(ctx context.Context, src domain.SourceConfig) ([]byte, error) {
	if src.Inline != "" {
		return []byte(src.Inline), nil
	}

	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", src.Name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(&ctxReader{ctx: ctx, r: f})
	if err != nil {
		return nil, fmt.Errorf("failed to read source %s: %w", src.Name, err)
	}
	return data, nil
}

// ctxReader stops a read once ctx is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// ParseString parses a single in-memory document, used by the extract command
// and tests.
func ParseString(content string, src domain.SourceConfig) (Batch, error) {
	return Parse(strings.NewReader(content), src)
}

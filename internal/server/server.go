// Package server exposes the benefit pipeline over HTTP. Every request runs
// its own pipeline; nothing is shared between requests but the engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/inss-calc/internal/calculation"
	"github.com/rgehrsitz/inss-calc/internal/config"
	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/rgehrsitz/inss-calc/internal/ingest"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// DefaultRequestTimeout bounds a single calculation
const DefaultRequestTimeout = 30 * time.Second

// MaxSourceReads bounds the sources a single request parses in parallel
const MaxSourceReads = 4

// CalculateRequest is the body of POST /calculate. Omitted pipeline options
// and parameters keep their defaults.
type CalculateRequest struct {
	Sources    []domain.SourceConfig    `json:"sources"`
	Pipeline   domain.PipelineOptions   `json:"pipeline"`
	Parameters domain.PensionParameters `json:"parameters"`
}

// CalculateResponse is the body returned by POST /calculate
type CalculateResponse struct {
	Summary domain.Summary             `json:"summary"`
	Sources []calculation.SourceReport `json:"sources"`
	Records []calculation.RecordRow    `json:"records"`
	Audit   []domain.AuditEntry        `json:"audit"`
}

// FactorResponse is the body returned by POST /factor
type FactorResponse struct {
	Factor     string                   `json:"factor"`
	Parameters domain.PensionParameters `json:"parameters"`
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Server holds the stateless collaborators shared by all requests
type Server struct {
	Engine         *calculation.Engine
	Loader         *ingest.Loader
	Parser         *config.InputParser
	Logger         *zap.Logger
	RequestTimeout time.Duration

	baseCtx context.Context
}

// New creates a server; a nil logger disables logging
func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := calculation.NewEngine()
	engine.SetLogger(logger.Sugar())
	loader := ingest.NewLoader(logger)
	loader.MaxConcurrent = MaxSourceReads
	return &Server{
		Engine:         engine,
		Loader:         loader,
		Parser:         config.NewInputParser(),
		Logger:         logger,
		RequestTimeout: DefaultRequestTimeout,
		baseCtx:        context.Background(),
	}
}

// Handler routes requests to the endpoints
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		path := string(ctx.Path())
		switch path {
		case "/healthz":
			if !ctx.IsGet() {
				writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
		case "/calculate":
			if !ctx.IsPost() {
				writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			s.handleCalculate(ctx)
		case "/factor":
			if !ctx.IsPost() {
				writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			s.handleFactor(ctx)
		default:
			writeError(ctx, fasthttp.StatusNotFound, "Not found: "+path)
		}
	}
}

func (s *Server) handleCalculate(ctx *fasthttp.RequestCtx) {
	cfg := config.DefaultConfiguration()
	req := CalculateRequest{
		Pipeline:   cfg.Pipeline,
		Parameters: cfg.Parameters,
	}
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	for i, src := range req.Sources {
		if src.Path != "" {
			writeError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("sources[%d]: only inline sources are accepted", i))
			return
		}
	}

	cfg.Sources = req.Sources
	cfg.Pipeline = req.Pipeline
	cfg.Parameters = req.Parameters
	if err := s.Parser.ValidateConfiguration(&cfg); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	runCtx, cancel := context.WithTimeout(s.baseCtx, s.RequestTimeout)
	defer cancel()

	batches, err := s.Loader.Load(runCtx, cfg.Sources)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	report, err := s.Engine.Run(runCtx, calculation.NewPipelineContext(&cfg), batches)
	if err != nil {
		status := fasthttp.StatusUnprocessableEntity
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			status = fasthttp.StatusServiceUnavailable
		}
		writeError(ctx, status, err.Error())
		return
	}

	s.Logger.Info("calculation served",
		zap.String("op", "server.calculate"),
		zap.String("run_id", report.RunID),
		zap.String("status", string(report.Summary.Status)))

	writeJSON(ctx, fasthttp.StatusOK, CalculateResponse{
		Summary: report.Summary,
		Sources: report.Sources,
		Records: report.Rows,
		Audit:   report.Audit,
	})
}

func (s *Server) handleFactor(ctx *fasthttp.RequestCtx) {
	params := domain.DefaultPensionParameters()
	if err := json.Unmarshal(ctx.PostBody(), &params); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	factor, err := calculation.PensionFactor(params)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, FactorResponse{Factor: factor.StringFixed(4), Parameters: params})
}

// Serve accepts connections on ln until ctx is done
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.baseCtx = ctx
	srv := &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "inss",
		ReadTimeout:        s.RequestTimeout,
		WriteTimeout:       s.RequestTimeout,
		MaxRequestBodySize: 8 << 20,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		err := srv.Shutdown()
		// Shutdown misses a listener that Serve has not registered yet
		_ = ln.Close()
		if serveErr := <-errCh; err == nil {
			err = serveErr
		}
		if err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

// ListenAndServe listens on addr and serves until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.Logger.Info("listening", zap.String("op", "server.ListenAndServe"), zap.String("addr", addr))
	return s.Serve(ctx, ln)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.Error(`{"status":500,"message":"encoding failed"}`, fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, ErrorResponse{Status: status, Message: message})
}

package server

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// the server date refresher lives for the whole process
		goleak.IgnoreAnyFunction("github.com/valyala/fasthttp.updateServerDate.func1"),
	)
}

func do(t *testing.T, s *Server, method, path, body string) *fasthttp.RequestCtx {
	t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	s.Handler()(&ctx)
	return &ctx
}

func historyText(amounts ...string) string {
	var b strings.Builder
	for i, a := range amounts {
		fmt.Fprintf(&b, "%02d/2010   %s\\n", i+1, a)
	}
	return b.String()
}

func calculateBody(inline string, extra string) string {
	return fmt.Sprintf(`{"sources":[{"name":"cnis","format":"text","origin":"cnis","inline":"%s"}]%s}`, inline, extra)
}

func TestHealthz(t *testing.T) {
	ctx := do(t, New(nil), "GET", "/healthz", "")

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status":"ok"}`, string(ctx.Response.Body()))
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
}

func TestRouting(t *testing.T) {
	s := New(nil)
	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/healthz", fasthttp.StatusMethodNotAllowed},
		{"GET", "/calculate", fasthttp.StatusMethodNotAllowed},
		{"GET", "/factor", fasthttp.StatusMethodNotAllowed},
		{"GET", "/missing", fasthttp.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			ctx := do(t, s, tt.method, tt.path, "")
			assert.Equal(t, tt.status, ctx.Response.StatusCode())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
			assert.Equal(t, tt.status, resp.Status)
		})
	}
}

func TestCalculate(t *testing.T) {
	body := calculateBody(
		historyText("1.000,00", "2.000,00", "3.000,00", "4.000,00", "5.000,00",
			"6.000,00", "7.000,00", "8.000,00", "9.000,00", "10.000,00"),
		`,"parameters":{"contribution_years":"38","survival_expectancy":"21.8","age":"60","aliquot":"0.31"}`,
	)

	ctx := do(t, New(nil), "POST", "/calculate", body)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))

	var resp struct {
		Summary struct {
			RunID               string `json:"run_id"`
			Status              string `json:"status"`
			AverageTopSelection string `json:"average_top_selection"`
			Factor              string `json:"factor"`
			Counts              struct {
				Selected int `json:"selected"`
			} `json:"counts"`
		} `json:"summary"`
		Records []struct {
			Status string `json:"status"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))

	assert.NotEmpty(t, resp.Summary.RunID)
	assert.Equal(t, "ok", resp.Summary.Status)
	// top 8 of 10: (10+9+...+3)*1000/8
	assert.Equal(t, "6500", resp.Summary.AverageTopSelection)
	assert.Equal(t, "0.9282", resp.Summary.Factor)
	assert.Equal(t, 8, resp.Summary.Counts.Selected)
	assert.Len(t, resp.Records, 10)
}

func TestCalculate_IndependentRuns(t *testing.T) {
	s := New(nil)
	body := calculateBody(historyText("1.000,00", "2.000,00"), "")

	first := do(t, s, "POST", "/calculate", body)
	second := do(t, s, "POST", "/calculate", body)
	require.Equal(t, fasthttp.StatusOK, first.Response.StatusCode())
	require.Equal(t, fasthttp.StatusOK, second.Response.StatusCode())

	var a, b struct {
		Summary struct {
			RunID        string `json:"run_id"`
			FinalBenefit string `json:"final_benefit"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(first.Response.Body(), &a))
	require.NoError(t, json.Unmarshal(second.Response.Body(), &b))
	assert.NotEqual(t, a.Summary.RunID, b.Summary.RunID)
	assert.Equal(t, a.Summary.FinalBenefit, b.Summary.FinalBenefit)
}

func TestCalculate_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"invalid json", `{"sources":`, fasthttp.StatusBadRequest, "Invalid request body"},
		{"no sources", `{}`, fasthttp.StatusBadRequest, "at least one source"},
		{"path source", `{"sources":[{"name":"x","format":"text","path":"/etc/passwd"}]}`, fasthttp.StatusBadRequest, "only inline sources"},
		{"bad format", `{"sources":[{"name":"x","format":"pdf","inline":"a"}]}`, fasthttp.StatusBadRequest, "unknown format"},
		{"zero survival", calculateBody(historyText("1.000,00"), `,"parameters":{"survival_expectancy":"0"}`), fasthttp.StatusBadRequest, "survival"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := do(t, New(nil), "POST", "/calculate", tt.body)
			assert.Equal(t, tt.status, ctx.Response.StatusCode())
			assert.Contains(t, string(ctx.Response.Body()), tt.message)
		})
	}
}

func TestFactor(t *testing.T) {
	ctx := do(t, New(nil), "POST", "/factor", `{"contribution_years":"38","survival_expectancy":"21.8","age":"60","aliquot":"0.31"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp FactorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, "0.9282", resp.Factor)

	ctx = do(t, New(nil), "POST", "/factor", `{"survival_expectancy":0}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "survival_expectancy")

	ctx = do(t, New(nil), "POST", "/factor", `not json`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestCalculate_Timeout(t *testing.T) {
	s := New(nil)
	s.RequestTimeout = time.Nanosecond

	ctx := do(t, s, "POST", "/calculate", calculateBody(historyText("1.000,00", "2.000,00"), ""))
	assert.NotEqual(t, fasthttp.StatusOK, ctx.Response.StatusCode())
}

func TestServe_StopsOnCancel(t *testing.T) {
	s := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.ListenAndServe(ctx, "127.0.0.1:0")
	assert.NoError(t, err)
}

func TestNew_BoundsSourceReads(t *testing.T) {
	s := New(nil)
	assert.Equal(t, MaxSourceReads, s.Loader.MaxConcurrent)
}

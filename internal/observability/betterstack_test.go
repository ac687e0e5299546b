package observability

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fotisolgr/my-bet-app/internal/config"
	"github.com/fotisolgr/my-bet-app/internal/platform/logging"
)

type betterStackRecorder struct {
	mu       sync.Mutex
	requests int
	auth     string
	entries  []map[string]any
}

func (rec *betterStackRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var batch []map[string]any
		if err := json.Unmarshal(body, &batch); err != nil {
			t.Errorf("decode batch: %v (body=%s)", err, body)
		}

		rec.mu.Lock()
		rec.requests++
		rec.auth = r.Header.Get("Authorization")
		rec.entries = append(rec.entries, batch...)
		rec.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)
	return server
}

func betterStackConfig(endpoint string) config.Config {
	return config.Config{
		BetterStackEnabled:  true,
		BetterStackEndpoint: endpoint,
		BetterStackToken:    "secret-token",
		BetterStackTimeout:  2 * time.Second,
		BetterStackMinLevel: logging.LevelError,
		LogLevel:            logging.LevelInfo,
		ServiceName:         "my-bet-app-api",
		AppEnv:              config.EnvDev,
	}
}

func shutdownWithin(t *testing.T, shutdown func(context.Context) error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown logger: %v", err)
	}
}

func TestInitBetterStackLogger_SendsErrorLog(t *testing.T) {
	t.Parallel()

	rec := &betterStackRecorder{}
	server := rec.server(t)

	logger, shutdown, err := InitBetterStackLogger(betterStackConfig(server.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}

	logger.ErrorContext(context.Background(), "backend error", "component", "httpapi")
	shutdownWithin(t, shutdown)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.requests == 0 {
		t.Fatalf("expected Better Stack endpoint to receive at least 1 request")
	}
	if rec.auth != "Bearer secret-token" {
		t.Fatalf("unexpected authorization header: %q", rec.auth)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("expected 1 shipped entry, got %d", len(rec.entries))
	}
	entry := rec.entries[0]
	if entry["message"] != "backend error" || entry["component"] != "httpapi" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry["service"] != "my-bet-app-api" {
		t.Fatalf("expected service field, got %+v", entry)
	}
}

func TestInitBetterStackLogger_BatchesEntries(t *testing.T) {
	t.Parallel()

	rec := &betterStackRecorder{}
	server := rec.server(t)

	logger, shutdown, err := InitBetterStackLogger(betterStackConfig(server.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}

	for i := 0; i < 5; i++ {
		logger.Error("repeated failure", "attempt", i)
	}
	shutdownWithin(t, shutdown)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.entries) != 5 {
		t.Fatalf("expected 5 shipped entries, got %d", len(rec.entries))
	}
	if rec.requests >= len(rec.entries) {
		t.Fatalf("expected entries to be batched, got %d requests for %d entries", rec.requests, len(rec.entries))
	}
}

func TestInitBetterStackLogger_RespectsMinLevel(t *testing.T) {
	t.Parallel()

	rec := &betterStackRecorder{}
	server := rec.server(t)

	logger, shutdown, err := InitBetterStackLogger(betterStackConfig(server.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}

	logger.InfoContext(context.Background(), "info log should not be shipped")
	shutdownWithin(t, shutdown)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.requests != 0 {
		t.Fatalf("expected no request for info log, got %d", rec.requests)
	}
}

func TestInitBetterStackLogger_Disabled(t *testing.T) {
	t.Parallel()

	base := logging.NewNop()
	logger, shutdown, err := InitBetterStackLogger(config.Config{}, base)
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}
	if logger != base {
		t.Fatalf("expected base logger when disabled")
	}
	shutdownWithin(t, shutdown)
}

func TestNormalizeBetterStackEndpoint(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                              "",
		"  ":                            "",
		"in.logs.betterstack.com":       "https://in.logs.betterstack.com",
		"http://localhost:9000":         "http://localhost:9000",
		" https://in.logs.example.com ": "https://in.logs.example.com",
	}
	for raw, want := range tests {
		if got := normalizeBetterStackEndpoint(raw); got != want {
			t.Fatalf("normalizeBetterStackEndpoint(%q) = %q, want %q", raw, got, want)
		}
	}
}

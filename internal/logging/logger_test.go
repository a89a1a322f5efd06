// Package logging includes tests for the zap logger helpers.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestNewDevelopmentLogger confirms the development logger builds and logs.
func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	if err != nil {
		t.Fatalf("New(true) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("development logger ready")
}

// TestNewProductionLogger ensures the production logger configuration succeeds.
func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	if err != nil {
		t.Fatalf("New(false) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("production logger ready")
}

func TestBuildConfigLevels(t *testing.T) {
	t.Parallel()

	if !buildConfig(true).Development {
		t.Fatal("expected development config")
	}
	prod := buildConfig(false)
	if prod.Development {
		t.Fatal("expected production config")
	}
	if prod.Level.Level() != zap.InfoLevel {
		t.Fatalf("expected info level in production, got %v", prod.Level.Level())
	}
}

func TestWithRequest(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	WithRequest(zap.New(core), "req-1", "https://app.example/").Info("scoped")
	WithRequest(zap.New(core), "", "").Info("bare")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["client_id"] != "https://app.example/" {
		t.Fatalf("unexpected scoped fields: %+v", fields)
	}
	if len(entries[1].Context) != 0 {
		t.Fatalf("expected no fields, got %+v", entries[1].Context)
	}
	if WithRequest(nil, "req", "") == nil {
		t.Fatal("expected no-op logger for nil input")
	}
}

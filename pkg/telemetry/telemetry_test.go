package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"rollcall-hq/attendance/pkg/config"
)

func TestNew(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.Logging.Format = "text"

	buf := &bytes.Buffer{}
	tel, err := New(&cfg, BuildInfo{Version: "1.0.0"}, buf)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	tel.Logger.Slog().Info("started")
	if !strings.Contains(buf.String(), "msg=started") {
		t.Errorf("expected log output in writer, got %q", buf.String())
	}

	tel.Health.RegisterCheck("store", func(ctx context.Context) error { return nil })
	if status := tel.Health.CheckReadiness(context.Background()); !status.Ready() {
		t.Errorf("expected ready, got %q", status.Status)
	}

	tel.Metrics.RecordCheckin("accepted")
	if tel.Config() != &cfg || tel.Build.Version != "1.0.0" {
		t.Error("config or build info not retained")
	}
}

func TestNew_InvalidLogging(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.Logging.Level = "chatty"

	if _, err := New(&cfg, BuildInfo{}, nil); err == nil {
		t.Error("expected invalid level to fail")
	}
}

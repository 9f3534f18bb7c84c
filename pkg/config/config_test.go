package config

import (
	"testing"
	"time"

	_ "time/tzdata"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := Validate(cfg); err != nil {
		t.Fatalf("default configuration is invalid: %v", err)
	}

	if !cfg.Roster.Watch {
		t.Error("expected roster watch to default to true")
	}
	if !cfg.Retention.Enabled || !cfg.Retention.RunOnStart {
		t.Error("expected retention to be enabled and run on start by default")
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics to be enabled by default")
	}
	if cfg.Roster.AllowUnknown {
		t.Error("expected unknown students to be rejected by default")
	}
	if cfg.Retention.Threshold != 48*time.Hour {
		t.Errorf("expected threshold 48h, got %v", cfg.Retention.Threshold)
	}
	if cfg.Timezone != "Asia/Ho_Chi_Minh" {
		t.Errorf("expected timezone %q, got %q", "Asia/Ho_Chi_Minh", cfg.Timezone)
	}
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()

	a.Telemetry.Metrics.SweepDurationBuckets[0] = 99
	a.Server.CORS.AllowedOrigins[0] = "https://example.com"

	if b.Telemetry.Metrics.SweepDurationBuckets[0] == 99 {
		t.Error("bucket slices are shared between configurations")
	}
	if DefaultSweepDurationBuckets[0] == 99 {
		t.Error("package default buckets were modified")
	}
	if b.Server.CORS.AllowedOrigins[0] != "*" {
		t.Error("origin slices are shared between configurations")
	}
}

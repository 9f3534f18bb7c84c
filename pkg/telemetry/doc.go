// Package telemetry bundles the observability of the rollcall service.
//
// # Components
//
//   - logging: slog setup with request fields and address masking
//   - metrics: Prometheus collector and /metrics handler
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	tel, err := telemetry.New(&cfg.Telemetry, telemetry.BuildInfo{Version: "1.0.0"}, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	tel.Logger.SetDefault()
//	tel.Health.RegisterCheck("store", func(ctx context.Context) error { return st.Corrupt() })
package telemetry

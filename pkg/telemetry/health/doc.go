// Package health provides liveness, readiness and version endpoints.
//
// # Endpoints
//
//   - /health: Liveness probe - indicates if the process is running
//   - /ready: Readiness probe - runs the registered component checks
//   - /version: Build information - version, commit, build time
//
// # Critical and advisory checks
//
// A critical check (RegisterCheck) that fails makes readiness report
// "unhealthy" with status 503. An advisory check (RegisterAdvisoryCheck)
// that fails only reports "degraded" and readiness still answers 200. The
// service registers the record store and the uploads directory as critical
// and the roster as advisory, since summaries fall back to the attended-only
// view when no roster is loaded.
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("store", func(ctx context.Context) error {
//	    return st.Corrupt()
//	})
//	checker.RegisterAdvisoryCheck("roster", func(ctx context.Context) error {
//	    return r.Ready()
//	})
//
//	router.GET("/health", gin.WrapF(checker.LivenessHandler()))
//	router.GET("/ready", gin.WrapF(checker.ReadinessHandler()))
package health

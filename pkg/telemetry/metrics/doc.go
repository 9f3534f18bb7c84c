// Package metrics provides Prometheus metrics collection for the rollcall
// service.
//
// # Metrics
//
//   - checkins_total{result}: check-in submissions by outcome
//   - sweep_runs_total{status}, sweep_duration_seconds,
//     photos_reclaimed_total, photo_delete_failures_total: retention sweeps
//   - roster_reloads_total{status}: roster reloads
//   - http_requests_total, http_request_duration_seconds: query surface
//   - records: records in the store (gauge read at scrape time)
//
// All names carry the configured namespace prefix ("rollcall" by default).
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	service.OnOutcome = collector.RecordCheckin
//	_ = collector.RegisterGaugeFunc("records", "Records in the attendance log",
//		func() float64 { return float64(st.Len()) })
//	router.GET("/metrics", gin.WrapH(collector.Handler()))
package metrics

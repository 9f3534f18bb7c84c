// Package server provides the HTTP query surface of the attendance service.
//
// It wires the check-in service, record store, aggregator, retention sweeper
// and roster behind a gin engine and manages the server lifecycle.
//
// # Routes
//
//	POST   /api/checkins        multipart form: mssv, hinhAnh (photo)
//	GET    /api/logs            ?date=YYYY-MM-DD or ?start=&end=
//	GET    /api/summary         ?date=YYYY-MM-DD
//	GET    /api/stats
//	DELETE /api/records/:id
//	POST   /api/sweep
//	GET    /api/sweep/status
//	GET    /api/export          ?format=json|csv&date=
//	GET    /api/roster
//	POST   /api/roster/reload
//	GET    /api/consistency     ?date=
//	GET    /uploads/*           stored photos
//
// Liveness, readiness, version and Prometheus endpoints are mounted at the
// paths configured under telemetry.
//
// # Responses
//
// Successful API calls return {"success": true, "data": ...}. Failures return
// {"success": false, "error": "<code>", "message": "...", "field": "..."}
// with these status codes:
//
//	400  validation_error, unknown_student
//	404  not_found
//	409  duplicate, sweep_in_progress
//	413  payload_too_large
//	503  store_corrupt
//	500  internal_error
//
// # Middleware
//
// Requests pass through panic recovery, request ID assignment, structured
// logging, metrics and CORS, in that order.
//
// # Basic Usage
//
//	srv, err := server.New(cfg, server.Dependencies{
//	    Store:      st,
//	    Checkins:   checkins,
//	    Aggregator: agg,
//	    Sweeper:    sweeper,
//	    Roster:     r,
//	    Uploads:    dir,
//	    Clock:      clock,
//	    Telemetry:  tel,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
package server

// Package logging configures the process-wide structured logger.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON or text output at a level that can be changed at runtime
//   - Request-scoped fields (request_id, mssv) taken from the context
//   - Optional masking of client IP addresses
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:           "info",
//	    Format:          "json",
//	    RedactAddresses: true,
//	})
//	if err != nil {
//	    return err
//	}
//	logger.SetDefault()
//
// Components then log through slog.Default().With("component", "...").
// Records logged with a context carry its request fields:
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "check-in accepted", "ip", "203.0.113.7")
//	// {"msg":"check-in accepted","request_id":"req-123","ip":"203.*.*.*"}
package logging

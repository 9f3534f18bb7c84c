// Package retention reclaims photo storage from old check-ins.
//
// # Sweeping
//
// A sweep clears the photo of every record older than the retention threshold
// (48 hours by default). The file is deleted through the upload collaborator
// and the record keeps its textual data with an empty photo reference. All
// changes of one sweep are persisted with a single store rewrite.
//
//	sweeper := retention.NewSweeper(st, uploadDir, clock, retention.DefaultConfig())
//	result, err := sweeper.SweepOnce(ctx)
//	if errors.Is(err, retention.ErrSweepInProgress) {
//	    // another sweep holds the lock
//	}
//
// A photo that cannot be deleted is logged and counted in Result.Failures;
// the sweep carries on and the record keeps its reference so a later sweep
// retries. A store failure aborts the cycle with *attendance.SweepError.
//
// # Scheduling
//
// The scheduler runs a sweep immediately on Start and then on a fixed
// interval (hourly by default) using robfig/cron:
//
//	if err := sweeper.Scheduler().Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer sweeper.Scheduler().Stop()
//
// Failures of scheduled sweeps are logged only; later cycles still run.
//
// # Presentation
//
// IsImageRetained and DisplayPhoto let views show a placeholder instead of a
// reclaimed photo.
package retention

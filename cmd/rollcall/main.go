// Rollcall records student check-ins with a photo, one per student per day,
// and reclaims the photos once they pass the retention window.
//
// It serves a small HTTP API for submitting check-ins and for reading the
// attendance log, daily summaries and statistics, and offers offline
// commands for operators:
//
//	# Start the server
//	rollcall run --config rollcall.yaml
//
//	# List today's records
//	rollcall records list --date 2024-01-01
//
//	# Export the log as CSV
//	rollcall records export --format csv --out diem_danh.csv
//
//	# Reclaim expired photos once
//	rollcall sweep
//
//	# Fix a hand-edited log with trailing commas
//	rollcall store repair
//
//	# Compare the log against the roster
//	rollcall roster check
package main

import (
	// Embedded zone database so Asia/Ho_Chi_Minh resolves on hosts without
	// one.
	_ "time/tzdata"
)

func main() {
	Execute()
}

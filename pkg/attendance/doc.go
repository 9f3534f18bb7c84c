// Package attendance defines the check-in record model shared by the rollcall
// components, the civil clock used to derive days, and the typed errors every
// component returns.
//
// # Architecture
//
// The attendance system consists of four layers:
//
//  1. Record Store - owns the in-memory collection and its persistence
//  2. Dedup Index - rejects a second check-in for the same student and day
//  3. Aggregator - joins records against the roster for summaries and stats
//  4. Retention Sweeper - reclaims photos older than the retention threshold
//
// # Records
//
// Each record captures:
//   - Student identifier and the name snapshot taken at submission time
//   - The submitting network address
//   - A relative reference to the stored photo (blank once reclaimed)
//   - Timestamp and day, both in the configured civil timezone
//
// Records keep the JSON field names of the historical log file
// (mssv, ten, ip, hinhAnh, thoiGian, ngay) so existing logs load unchanged.
//
// # Check-in Flow
//
//	HTTP submission
//	     ↓
//	Validate (student id, photo)
//	     ↓
//	Roster lookup
//	     ↓
//	Save photo to uploads
//	     ↓
//	Store.AppendIf (dedup guard inside the write lock)
//	     ↓
//	Full rewrite of the backing file
//
// # Errors
//
// Components return the typed errors in errors.go. Use errors.As to branch:
//
//	var dup *attendance.DuplicateError
//	if errors.As(err, &dup) {
//	    // already checked in today
//	}
package attendance

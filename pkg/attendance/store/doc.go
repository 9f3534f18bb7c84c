// Package store provides the attendance record store and its persistence
// strategies.
//
// # Record Store
//
// Store owns the in-memory record collection and is the only writer of the
// backing file. It is loaded fully at startup and fully rewritten after every
// mutation. Mutations are serialized by a single mutex, so a check-in append
// and a retention rewrite cannot clobber each other:
//
//	st := store.New(store.NewJSONFile("logs/diem_danh_log.json"), store.Options{})
//	if err := st.Load(ctx); err != nil {
//	    var corrupt *attendance.CorruptStoreError
//	    if errors.As(err, &corrupt) {
//	        // Store is readable but refuses writes until Reset or repair.
//	    }
//	}
//
//	err := st.AppendIf(ctx, rec, func(existing []attendance.Record) error {
//	    return dedup.Conflict(existing, rec.StudentID, rec.Day)
//	})
//
// # Persistence Strategies
//
// The Persistence interface decouples the store from the on-disk format:
//
//   - JSONFile: pretty-printed JSON array, written to a temp file and renamed
//   - SQLite: one table, fully replaced inside a transaction. Both the cgo
//     driver (mattn/go-sqlite3, "sqlite3") and the pure Go driver
//     (modernc.org/sqlite, "sqlite") are supported.
//   - Memory: for tests and dry runs
//
// # Corruption
//
// A backing file that exists but cannot be parsed is never silently replaced.
// Load returns *attendance.CorruptStoreError and every mutation fails with
// attendance.ErrStoreCorrupt until the file is repaired (RepairJSON strips the
// trailing comma left by interrupted hand edits) or the store is Reset, which
// moves the bad file aside.
package store

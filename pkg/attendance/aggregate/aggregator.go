package aggregate

import (
	"log/slog"

	"rollcall-hq/attendance/pkg/attendance"
)

// RecordSource is the read side of the record store.
type RecordSource interface {
	All() []attendance.Record
	FilterByDay(day string) []attendance.Record
}

// Aggregator binds a record source, an optional roster and a clock.
type Aggregator struct {
	records RecordSource
	roster  attendance.RosterSource
	clock   *attendance.Clock
	logger  *slog.Logger
}

// NewAggregator creates an aggregator. roster may be nil, in which case
// summaries fall back to the attended-only variant.
func NewAggregator(records RecordSource, roster attendance.RosterSource, clock *attendance.Clock) *Aggregator {
	return &Aggregator{
		records: records,
		roster:  roster,
		clock:   clock,
		logger:  slog.Default().With("component", "attendance.aggregate"),
	}
}

// Summary returns the attendance summary for day, or for the whole log when
// day is empty.
func (a *Aggregator) Summary(day string) attendance.Summary {
	var records []attendance.Record
	if day != "" {
		records = a.records.FilterByDay(day)
	} else {
		records = a.records.All()
	}

	if a.roster != nil {
		if entries := a.roster.Entries(); len(entries) > 0 {
			return Summarize(records, entries, day)
		}
	}

	a.logger.Debug("roster unavailable, summarizing attended students only", "day", day)
	return SummarizeAttendedOnly(records, day)
}

// Stats returns statistics over the whole log.
func (a *Aggregator) Stats() attendance.Stats {
	return ComputeStats(a.records.All(), a.clock)
}

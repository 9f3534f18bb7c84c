package aggregate

import (
	"math"

	"rollcall-hq/attendance/pkg/attendance"
)

// ComputeStats summarises the whole log. Today is taken from clock.
func ComputeStats(records []attendance.Record, clock *attendance.Clock) attendance.Stats {
	today := clock.Today()

	stats := attendance.Stats{TotalRecords: len(records)}
	days := make(map[string]struct{})
	for _, r := range records {
		if r.Day == today {
			stats.TodayCount++
		}
		days[r.Day] = struct{}{}
	}

	stats.DistinctDays = len(days)
	if stats.DistinctDays > 0 {
		stats.AverageDailyAttendance = math.Round(float64(stats.TotalRecords)/float64(stats.DistinctDays)*10) / 10
	}
	if len(records) > 0 {
		last := records[len(records)-1].Timestamp
		stats.LastAttendance = &last
	}

	return stats
}

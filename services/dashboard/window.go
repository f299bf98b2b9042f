package dashboard

import (
	"strings"
	"time"
)

// TimeFilter selects the trailing creation-date window.
type TimeFilter string

const (
	Weekly   TimeFilter = "Weekly"
	Monthly  TimeFilter = "Monthly"
	Yearly   TimeFilter = "Yearly"
	AllTimes TimeFilter = "AllTimes"
)

// ParseTimeFilter is case-insensitive; anything unrecognised is AllTimes.
func ParseTimeFilter(s string) TimeFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly":
		return Weekly
	case "monthly":
		return Monthly
	case "yearly":
		return Yearly
	}
	return AllTimes
}

// StartDate is the first instant inside the window ending at now.
func (tf TimeFilter) StartDate(now time.Time) time.Time {
	switch tf {
	case Weekly:
		return now.AddDate(0, 0, -7)
	case Monthly:
		return now.AddDate(0, -1, 0)
	case Yearly:
		return now.AddDate(-1, 0, 0)
	}
	return time.Unix(0, 0).UTC()
}

// InWindow reports whether a record created at createdAt falls inside the
// window. Records without a creation date never do.
func InWindow(createdAt *time.Time, start time.Time) bool {
	return createdAt != nil && !createdAt.Before(start)
}

// FilterWindow returns the records created inside tf's window.
func FilterWindow(derived []Derived, tf TimeFilter, now time.Time) []Derived {
	start := tf.StartDate(now)
	out := make([]Derived, 0, len(derived))
	for _, d := range derived {
		if InWindow(d.Record.CreatedAt, start) {
			out = append(out, d)
		}
	}
	return out
}

package dashboard

import (
	"time"

	"github.com/sahilchouksey/partner-hub/config"
)

// StatusSummary is the per-college status table plus the overall tuple.
type StatusSummary struct {
	ByCollege map[string]StatusCounts `json:"byCollege"`
	Total     StatusCounts            `json:"total"`
}

// AggregateByCollege counts the statuses of the time-windowed records for
// every enumerated college and for "All Colleges".
func AggregateByCollege(derived []Derived, tf TimeFilter, now time.Time) StatusSummary {
	lk := config.GetLookups()
	windowed := FilterWindow(derived, tf, now)

	summary := StatusSummary{ByCollege: make(map[string]StatusCounts, len(lk.Colleges)+1)}
	for _, college := range lk.CollegeKeys() {
		var counts StatusCounts
		for _, d := range windowed {
			if college == lk.AllColleges || d.Record.InterestedCollege() == college {
				counts.Add(d.Status)
			}
		}
		summary.ByCollege[college] = counts
	}

	for _, d := range windowed {
		summary.Total.Add(d.Status)
	}
	return summary
}

// MatchesCollege reports whether a record's college passes the active filter.
func MatchesCollege(recordCollege, filter string) bool {
	return filter == config.GetLookups().AllColleges || recordCollege == filter
}

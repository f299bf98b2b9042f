package dashboard

import (
	"time"

	"github.com/sahilchouksey/partner-hub/config"
)

// MonthWindow is the number of trailing calendar months in the time series.
const MonthWindow = 12

// Series is one status line of the monthly chart.
type Series [MonthWindow]int

// MonthlySeries holds the labels and, per college, one Series per status.
type MonthlySeries struct {
	Labels    [MonthWindow]string          `json:"labels"`
	ByCollege map[string]map[Status]Series `json:"byCollege"`
}

// MonthLabels returns the 12 trailing month labels ending with now's month.
func MonthLabels(now time.Time) [MonthWindow]string {
	var labels [MonthWindow]string
	for i := 0; i < MonthWindow; i++ {
		m := time.Date(now.Year(), now.Month()-time.Month(MonthWindow-1-i), 1, 0, 0, 0, 0, now.Location())
		labels[i] = m.Format("Jan 2006")
	}
	return labels
}

// MonthIndex is the slot of created in the window ending at now; values
// outside [0, MonthWindow) are outside the window.
func MonthIndex(created, now time.Time) int {
	created = created.In(now.Location())
	return (created.Year()-now.Year())*12 + int(created.Month()) - (int(now.Month()) - (MonthWindow - 1))
}

// AggregateMonthly buckets records by creation month. A record increments its
// own college and "All Colleges" only while it matches activeCollege.
func AggregateMonthly(derived []Derived, activeCollege string, now time.Time) MonthlySeries {
	lk := config.GetLookups()
	out := MonthlySeries{
		Labels:    MonthLabels(now),
		ByCollege: make(map[string]map[Status]Series, len(lk.Colleges)+1),
	}
	for _, college := range lk.CollegeKeys() {
		out.ByCollege[college] = emptySeries()
	}

	for _, d := range derived {
		college := d.Record.InterestedCollege()
		if d.Record.CreatedAt == nil || college == "" || !d.Status.Known() {
			continue
		}
		idx := MonthIndex(*d.Record.CreatedAt, now)
		if idx < 0 || idx >= MonthWindow {
			continue
		}
		if !MatchesCollege(college, activeCollege) {
			continue
		}

		if college != lk.AllColleges {
			if _, ok := out.ByCollege[college]; !ok {
				out.ByCollege[college] = emptySeries()
			}
			increment(out.ByCollege[college], d.Status, idx)
		}
		increment(out.ByCollege[lk.AllColleges], d.Status, idx)
	}
	return out
}

func emptySeries() map[Status]Series {
	m := make(map[Status]Series, len(Statuses))
	for _, s := range Statuses {
		m[s] = Series{}
	}
	return m
}

func increment(m map[Status]Series, s Status, idx int) {
	series := m[s]
	series[idx]++
	m[s] = series
}

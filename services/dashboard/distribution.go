package dashboard

import "github.com/sahilchouksey/partner-hub/config"

// PieData is the per-college share of all fetched records.
type PieData struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// AggregateDistribution counts every record per enumerated college, ignoring
// the time filter, and keeps only colleges with at least one record.
func AggregateDistribution(derived []Derived) PieData {
	counts := make(map[string]int)
	for _, d := range derived {
		counts[d.Record.InterestedCollege()]++
	}

	pie := PieData{Labels: []string{}, Values: []int{}}
	for _, college := range config.GetLookups().Colleges {
		if n := counts[college]; n > 0 {
			pie.Labels = append(pie.Labels, college)
			pie.Values = append(pie.Values, n)
		}
	}
	return pie
}

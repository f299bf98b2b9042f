package dashboard

import (
	"strconv"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/sahilchouksey/partner-hub/config"
	"github.com/sahilchouksey/partner-hub/model"
)

// Filter is the pair of controls on the dashboard screen.
type Filter struct {
	TimeFilter TimeFilter `json:"timeFilter"`
	College    string     `json:"college"`
}

// Normalize fills defaults: AllTimes and "All Colleges".
func (f Filter) Normalize() Filter {
	if f.TimeFilter == "" {
		f.TimeFilter = AllTimes
	} else {
		f.TimeFilter = ParseTimeFilter(string(f.TimeFilter))
	}
	if f.College == "" {
		f.College = config.GetLookups().AllColleges
	}
	return f
}

// Dashboard is every aggregate and chart payload for one filter.
type Dashboard struct {
	Filter       Filter         `json:"filter"`
	GeneratedAt  time.Time      `json:"generatedAt"`
	RecordCount  int            `json:"recordCount"`
	Summary      StatusSummary  `json:"summary"`
	Monthly      MonthlySeries  `json:"monthly"`
	Countries    CountryHeatmap `json:"countries"`
	Distribution PieData        `json:"distribution"`
	StatusCards  []StatusCard   `json:"statusCards"`
	Bar          ChartData      `json:"bar"`
	Line         ChartData      `json:"line"`
	Pie          ChartData      `json:"pie"`
	Map          MapPanel       `json:"map"`
	Warnings     []string       `json:"warnings,omitempty"`
}

// Build runs the whole pipeline over records with a single clock reading.
// boundaries may be nil, which only disables the map geometry.
func Build(records []model.Partnership, filter Filter, now time.Time, boundaries *geojson.FeatureCollection) Dashboard {
	filter = filter.Normalize()
	derived := Derive(records, now)

	summary := AggregateByCollege(derived, filter.TimeFilter, now)
	monthly := AggregateMonthly(derived, filter.College, now)
	countries := AggregateCountries(derived, filter.TimeFilter, filter.College, now)
	distribution := AggregateDistribution(derived)

	d := Dashboard{
		Filter:       filter,
		GeneratedAt:  now,
		RecordCount:  len(records),
		Summary:      summary,
		Monthly:      monthly,
		Countries:    countries,
		Distribution: distribution,
		StatusCards:  StatusCards(summary, filter.College),
		Bar:          BarChart(summary, filter.College),
		Line:         LineChart(monthly, filter.College),
		Pie:          PieChart(distribution),
		Map:          Choropleth(countries, boundaries),
	}

	if countries.UnknownCount > 0 {
		d.Warnings = append(d.Warnings, unknownCountryWarning(countries.UnknownCount))
	}
	if !d.Map.Available {
		d.Warnings = append(d.Warnings, MapUnavailableMessage)
	}
	return d
}

// ExpiringSoon returns the records currently in the expiringSoon bucket.
func ExpiringSoon(records []model.Partnership, now time.Time) []model.Partnership {
	var out []model.Partnership
	for _, d := range Derive(records, now) {
		if d.Status == StatusExpiringSoon {
			out = append(out, d.Record)
		}
	}
	return out
}

func unknownCountryWarning(n int) string {
	if n == 1 {
		return "1 partnership has no country and is not shown on the map"
	}
	return strconv.Itoa(n) + " partnerships have no country and are not shown on the map"
}

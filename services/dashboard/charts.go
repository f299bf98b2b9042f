package dashboard

import (
	"sort"

	"github.com/paulmach/orb/geojson"

	"github.com/sahilchouksey/partner-hub/config"
)

// Dataset is one series of a bar, line or pie chart.
type Dataset struct {
	Label           string   `json:"label"`
	Data            []int    `json:"data"`
	BackgroundColor []string `json:"backgroundColor,omitempty"`
	BorderColor     string   `json:"borderColor,omitempty"`
}

// ChartData is the labels/datasets shape consumed by the chart renderer.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// StatusCard is one of the headline tiles above the charts.
type StatusCard struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
	Total  int    `json:"total"`
	Color  string `json:"color"`
}

// StatusCards returns one tile per status for the active college, each
// carrying the college-independent total alongside.
func StatusCards(summary StatusSummary, college string) []StatusCard {
	colors := config.GetLookups().Colors.Status
	selected := summary.ByCollege[college]
	cards := make([]StatusCard, 0, len(Statuses))
	for _, s := range Statuses {
		cards = append(cards, StatusCard{
			Status: s,
			Count:  selected.Get(s),
			Total:  summary.Total.Get(s),
			Color:  colors[string(s)],
		})
	}
	return cards
}

// BarChart groups status counts by college. A specific college filter
// narrows the chart to that college.
func BarChart(summary StatusSummary, college string) ChartData {
	lk := config.GetLookups()
	labels := lk.Colleges
	if college != lk.AllColleges {
		labels = []string{college}
	}

	chart := ChartData{Labels: append([]string(nil), labels...)}
	for _, s := range Statuses {
		ds := Dataset{Label: string(s), Data: make([]int, len(labels))}
		color := lk.Colors.Status[string(s)]
		for i, c := range labels {
			ds.Data[i] = summary.ByCollege[c].Get(s)
			ds.BackgroundColor = append(ds.BackgroundColor, color)
		}
		chart.Datasets = append(chart.Datasets, ds)
	}
	return chart
}

// LineChart plots the monthly series of the active college.
func LineChart(series MonthlySeries, college string) ChartData {
	colors := config.GetLookups().Colors.Status
	chart := ChartData{Labels: series.Labels[:]}
	byStatus := series.ByCollege[college]
	for _, s := range Statuses {
		points := byStatus[s]
		chart.Datasets = append(chart.Datasets, Dataset{
			Label:       string(s),
			Data:        append([]int(nil), points[:]...),
			BorderColor: colors[string(s)],
		})
	}
	return chart
}

// PieChart reshapes the distribution into a single dataset.
func PieChart(pie PieData) ChartData {
	colors := config.GetLookups().Colors.Status
	palette := []string{
		colors[string(StatusActive)],
		colors[string(StatusExpiringSoon)],
		colors[string(StatusExpired)],
		colors[string(StatusProspect)],
	}
	ds := Dataset{Label: "Partnerships", Data: append([]int{}, pie.Values...)}
	for i := range pie.Values {
		ds.BackgroundColor = append(ds.BackgroundColor, palette[i%len(palette)])
	}
	return ChartData{Labels: append([]string{}, pie.Labels...), Datasets: []Dataset{ds}}
}

// MapRegion is one plotted country.
type MapRegion struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
	Fill    string `json:"fill"`
}

// MapLegend describes the color scale of the choropleth.
type MapLegend struct {
	MinColor string `json:"minColor"`
	MaxColor string `json:"maxColor"`
	NoData   string `json:"noData"`
	Domain   [2]int `json:"domain"`
}

// MapPanel is the choropleth payload. Available is false when boundary data
// could not be loaded; the counts are still returned.
type MapPanel struct {
	Available    bool                       `json:"available"`
	Message      string                     `json:"message,omitempty"`
	Regions      []MapRegion                `json:"regions"`
	Legend       MapLegend                  `json:"legend"`
	UnknownCount int                        `json:"unknownCount"`
	Features     *geojson.FeatureCollection `json:"features,omitempty"`
}

// MapUnavailableMessage is shown in place of the map when boundaries failed to load.
const MapUnavailableMessage = "Map data is unavailable right now"

// Choropleth colors the heatmap counts. When boundaries is non-nil every
// feature is copied with "name", "count" and "fill" properties; features are
// matched by their normalized "name" property.
func Choropleth(h CountryHeatmap, boundaries *geojson.FeatureCollection) MapPanel {
	scale := NewColorScale(h.MaxCount)
	panel := MapPanel{
		Available:    boundaries != nil,
		Regions:      make([]MapRegion, 0, len(h.Counts)),
		UnknownCount: h.UnknownCount,
		Legend: MapLegend{
			MinColor: scale.At(0),
			MaxColor: scale.At(int(scale.Domain)),
			NoData:   scale.NoData,
			Domain:   [2]int{0, int(scale.Domain)},
		},
	}

	for country, n := range h.Counts {
		panel.Regions = append(panel.Regions, MapRegion{Country: country, Count: n, Fill: scale.At(n)})
	}
	sort.Slice(panel.Regions, func(i, j int) bool {
		if panel.Regions[i].Count != panel.Regions[j].Count {
			return panel.Regions[i].Count > panel.Regions[j].Count
		}
		return panel.Regions[i].Country < panel.Regions[j].Country
	})

	if boundaries == nil {
		panel.Message = MapUnavailableMessage
		return panel
	}

	fc := geojson.NewFeatureCollection()
	for _, f := range boundaries.Features {
		name := NormalizeCountry(f.Properties.MustString("name", ""))
		count := h.Counts[name]

		colored := geojson.NewFeature(f.Geometry)
		colored.ID = f.ID
		for k, v := range f.Properties {
			colored.Properties[k] = v
		}
		colored.Properties["name"] = name
		colored.Properties["count"] = count
		colored.Properties["fill"] = scale.Fill(count)
		fc.Append(colored)
	}
	panel.Features = fc
	return panel
}

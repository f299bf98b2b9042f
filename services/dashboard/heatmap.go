package dashboard

import (
	"math"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sahilchouksey/partner-hub/config"
)

var titleCaser = cases.Title(language.English)

// NormalizeCountry maps a free-text country name to its canonical form.
// Empty names become the unknown sentinel. Applying it twice is a no-op.
func NormalizeCountry(raw string) string {
	lk := config.GetLookups()
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return lk.UnknownCountry
	}
	if name, ok := lk.CountryAlias(trimmed); ok {
		return name
	}
	return titleCaser.String(strings.Join(strings.Fields(trimmed), " "))
}

// CountryHeatmap is the per-country record count used by the map panel.
type CountryHeatmap struct {
	Counts       map[string]int `json:"counts"`
	MaxCount     int            `json:"maxCount"`
	UnknownCount int            `json:"unknownCount"`
}

// CountryOf prefers the partner institution's country over the record's own.
func CountryOf(d Derived) string {
	if c := strings.TrimSpace(d.Record.PartnerInstitution.Country); c != "" {
		return c
	}
	return d.Record.Country
}

// AggregateCountries counts the time-windowed records of the active college
// per normalized country. Records without a country are tallied in
// UnknownCount and never plotted.
func AggregateCountries(derived []Derived, tf TimeFilter, college string, now time.Time) CountryHeatmap {
	unknown := config.GetLookups().UnknownCountry
	h := CountryHeatmap{Counts: make(map[string]int)}
	for _, d := range FilterWindow(derived, tf, now) {
		if !MatchesCollege(d.Record.InterestedCollege(), college) {
			continue
		}
		name := NormalizeCountry(CountryOf(d))
		if name == unknown {
			h.UnknownCount++
			continue
		}
		h.Counts[name]++
		if h.Counts[name] > h.MaxCount {
			h.MaxCount = h.Counts[name]
		}
	}
	return h
}

// ColorScale interpolates linearly in Lab space between two colors over [0, Max].
type ColorScale struct {
	Min    colorful.Color
	Max    colorful.Color
	NoData string
	Domain float64
}

// NewColorScale builds the map scale for a heatmap. The domain never
// collapses below 1.
func NewColorScale(maxCount int) ColorScale {
	colors := config.GetLookups().Colors
	return ColorScale{
		Min:    mustHex(colors.MapMin),
		Max:    mustHex(colors.MapMax),
		NoData: colors.NoData,
		Domain: math.Max(float64(maxCount), 1),
	}
}

// At returns the hex color for count. Counts at or beyond the domain ends
// return the exact end colors.
func (s ColorScale) At(count int) string {
	t := float64(count) / s.Domain
	switch {
	case t <= 0:
		return s.Min.Hex()
	case t >= 1:
		return s.Max.Hex()
	}
	return s.Min.BlendLab(s.Max, t).Clamped().Hex()
}

// Fill returns the color for a region: NoData when it has no records.
func (s ColorScale) Fill(count int) string {
	if count <= 0 {
		return s.NoData
	}
	return s.At(count)
}

func mustHex(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic("dashboard: invalid color " + hex)
	}
	return c
}

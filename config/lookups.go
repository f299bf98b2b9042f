package config

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lookups.yaml
var lookupsYAML []byte

// Lookups holds the static tables used by the dashboard pipeline.
type Lookups struct {
	AllColleges    string            `yaml:"all_colleges"`
	Colleges       []string          `yaml:"colleges"`
	UnknownCountry string            `yaml:"unknown_country"`
	CountryAliases map[string]string `yaml:"country_aliases"`
	Colors         ColorTable        `yaml:"colors"`

	canonical map[string]string
}

// ColorTable holds hex colors for the charts.
type ColorTable struct {
	MapMin string            `yaml:"map_min"`
	MapMax string            `yaml:"map_max"`
	NoData string            `yaml:"no_data"`
	Status map[string]string `yaml:"status"`
}

var lookups = mustParseLookups(lookupsYAML)

// GetLookups returns the process-wide lookup tables. The returned value must not be mutated.
func GetLookups() *Lookups {
	return lookups
}

// ParseLookups decodes a lookups document and builds its indexes.
func ParseLookups(data []byte) (*Lookups, error) {
	var l Lookups
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse lookups: %w", err)
	}
	if l.AllColleges == "" {
		return nil, fmt.Errorf("lookups: all_colleges is required")
	}
	if l.UnknownCountry == "" {
		l.UnknownCountry = "Unknown"
	}

	aliases := make(map[string]string, len(l.CountryAliases))
	l.canonical = make(map[string]string, len(l.CountryAliases))
	for alias, name := range l.CountryAliases {
		aliases[lookupKey(alias)] = name
		l.canonical[lookupKey(name)] = name
	}
	l.CountryAliases = aliases
	l.canonical[lookupKey(l.UnknownCountry)] = l.UnknownCountry

	return &l, nil
}

func mustParseLookups(data []byte) *Lookups {
	l, err := ParseLookups(data)
	if err != nil {
		panic(err)
	}
	return l
}

// CountryAlias resolves a raw country name against the alias table and the set
// of canonical names. ok is false when the name is in neither.
func (l *Lookups) CountryAlias(raw string) (string, bool) {
	key := lookupKey(raw)
	if name, ok := l.CountryAliases[key]; ok {
		return name, true
	}
	if name, ok := l.canonical[key]; ok {
		return name, true
	}
	return "", false
}

// IsCollege reports whether name is one of the enumerated colleges.
func (l *Lookups) IsCollege(name string) bool {
	for _, c := range l.Colleges {
		if c == name {
			return true
		}
	}
	return false
}

// CollegeKeys returns the enumerated colleges followed by the "All Colleges" sentinel.
func (l *Lookups) CollegeKeys() []string {
	keys := make([]string, 0, len(l.Colleges)+1)
	keys = append(keys, l.Colleges...)
	return append(keys, l.AllColleges)
}

func lookupKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

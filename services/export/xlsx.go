// Package export renders dashboard aggregates as spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/sahilchouksey/partner-hub/config"
	"github.com/sahilchouksey/partner-hub/services/dashboard"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names, in workbook order.
const (
	SheetStatus       = "Status by College"
	SheetMonthly      = "Monthly"
	SheetCountries    = "Countries"
	SheetDistribution = "Distribution"
)

// FileName is the attachment name for a dashboard generated at d.GeneratedAt.
func FileName(d dashboard.Dashboard) string {
	return fmt.Sprintf("partnerships_%s.xlsx", d.GeneratedAt.Format("20060102_150405"))
}

// WriteDashboard writes the dashboard as an XLSX workbook to w.
func WriteDashboard(w io.Writer, d dashboard.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetStatus); err != nil {
		return fmt.Errorf("failed to prepare workbook: %w", err)
	}
	for _, name := range []string{SheetMonthly, SheetCountries, SheetDistribution} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
	}

	writers := []func(*excelize.File, dashboard.Dashboard) error{
		writeStatus, writeMonthly, writeCountries, writeDistribution,
	}
	for _, write := range writers {
		if err := write(f, d); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Dashboard renders the workbook into memory.
func Dashboard(d dashboard.Dashboard) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDashboard(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func statusHeaders(first string) []interface{} {
	row := []interface{}{first}
	for _, s := range dashboard.Statuses {
		row = append(row, string(s))
	}
	return row
}

func writeStatus(f *excelize.File, d dashboard.Dashboard) error {
	rows := [][]interface{}{
		{"Time filter", string(d.Filter.TimeFilter)},
		{"College filter", d.Filter.College},
		{"Generated at", d.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{},
		append(statusHeaders("College"), "Total"),
	}
	for _, college := range config.GetLookups().CollegeKeys() {
		rows = append(rows, countsRow(college, d.Summary.ByCollege[college]))
	}
	rows = append(rows, countsRow("Total", d.Summary.Total))
	return writeRows(f, SheetStatus, rows)
}

func countsRow(label string, c dashboard.StatusCounts) []interface{} {
	row := []interface{}{label}
	for _, s := range dashboard.Statuses {
		row = append(row, c.Get(s))
	}
	return append(row, c.Total())
}

func writeMonthly(f *excelize.File, d dashboard.Dashboard) error {
	header := []interface{}{"College", "Status"}
	for _, l := range d.Monthly.Labels {
		header = append(header, l)
	}
	rows := [][]interface{}{header}

	for _, college := range monthlyColleges(d.Monthly) {
		for _, s := range dashboard.Statuses {
			series := d.Monthly.ByCollege[college][s]
			row := []interface{}{college, string(s)}
			for _, n := range series {
				row = append(row, n)
			}
			rows = append(rows, row)
		}
	}
	return writeRows(f, SheetMonthly, rows)
}

// monthlyColleges lists enumerated colleges first, then any others in name order.
func monthlyColleges(m dashboard.MonthlySeries) []string {
	lk := config.GetLookups()
	keys := lk.CollegeKeys()
	var extra []string
	for college := range m.ByCollege {
		if college != lk.AllColleges && !lk.IsCollege(college) {
			extra = append(extra, college)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

func writeCountries(f *excelize.File, d dashboard.Dashboard) error {
	rows := [][]interface{}{{"Country", "Partnerships"}}
	for _, r := range d.Map.Regions {
		rows = append(rows, []interface{}{r.Country, r.Count})
	}
	if d.Countries.UnknownCount > 0 {
		rows = append(rows, []interface{}{config.GetLookups().UnknownCountry, d.Countries.UnknownCount})
	}
	return writeRows(f, SheetCountries, rows)
}

func writeDistribution(f *excelize.File, d dashboard.Dashboard) error {
	rows := [][]interface{}{{"College", "Partnerships"}}
	for i, label := range d.Distribution.Labels {
		rows = append(rows, []interface{}{label, d.Distribution.Values[i]})
	}
	return writeRows(f, SheetDistribution, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sahilchouksey/partner-hub/config"
	"github.com/sahilchouksey/partner-hub/services/dashboard"
	"github.com/sahilchouksey/partner-hub/services/export"
)

const topCountries = 10

type filterFlags struct {
	timeFilter string
	college    string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.timeFilter, "time", "t", string(dashboard.AllTimes), "time window: Weekly, Monthly, Yearly or AllTimes")
	cmd.Flags().StringVarP(&f.college, "college", "c", "", "limit to one college")
}

func (f *filterFlags) filter() (dashboard.Filter, error) {
	lk := config.GetLookups()
	if f.college != "" && f.college != lk.AllColleges && !lk.IsCollege(f.college) {
		return dashboard.Filter{}, fmt.Errorf("unknown college %q", f.college)
	}
	return dashboard.Filter{TimeFilter: dashboard.TimeFilter(f.timeFilter), College: f.college}, nil
}

// load runs the dashboard pipeline; a failed fetch is an error here.
func (c *cli) load(cmd *cobra.Command, f *filterFlags) (dashboard.Dashboard, error) {
	filter, err := f.filter()
	if err != nil {
		return dashboard.Dashboard{}, err
	}
	view := dashboard.NewView(c.backend, nil, dashboard.WithClock(c.now), dashboard.WithLogger(c.log))
	snap := view.Apply(c.context(cmd), filter)
	if snap.Error != "" {
		return dashboard.Dashboard{}, fmt.Errorf("partnerships could not be loaded: %s", snap.Error)
	}
	return snap.Dashboard, nil
}

func newDashboardCmd(c *cli) *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show status counts per college and partner countries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := c.load(cmd, &f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := c.render(out, d, func(tw *tabwriter.Writer) { dashboardTable(tw, d) }); err != nil {
				return err
			}
			for _, w := range d.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func dashboardTable(tw *tabwriter.Writer, d dashboard.Dashboard) {
	lk := config.GetLookups()
	fmt.Fprintf(tw, "%s / %s\t\t\t\t\n", d.Filter.TimeFilter, d.Filter.College)
	fmt.Fprintln(tw, "COLLEGE\tACTIVE\tEXPIRING SOON\tEXPIRED\tPROSPECT")
	for _, college := range lk.CollegeKeys() {
		counts := d.Summary.ByCollege[college]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", college, counts.Active, counts.ExpiringSoon, counts.Expired, counts.Prospect)
	}

	type row struct {
		country string
		count   int
	}
	rows := make([]row, 0, len(d.Countries.Counts))
	for country, n := range d.Countries.Counts {
		rows = append(rows, row{country, n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].country < rows[j].country
	})
	if len(rows) > topCountries {
		rows = rows[:topCountries]
	}

	fmt.Fprintln(tw, "\t\t\t\t")
	fmt.Fprintln(tw, "COUNTRY\tPARTNERSHIPS\t\t\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t\t\t\n", r.country, r.count)
	}
}

func newExportCmd(c *cli) *cobra.Command {
	var f filterFlags
	var file string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dashboard to an Excel workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := c.load(cmd, &f)
			if err != nil {
				return err
			}
			if file == "" {
				file = export.FileName(d)
			}

			out, err := os.Create(file)
			if err != nil {
				return err
			}
			if err := export.WriteDashboard(out, d); err != nil {
				out.Close()
				return fmt.Errorf("failed to write %s: %w", file, err)
			}
			if err := out.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", file)
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "output file (default partnerships_<timestamp>.xlsx)")
	return cmd
}

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/owidviz/covidscope/internal/utils"
	"github.com/owidviz/covidscope/pkg/loader"
	"github.com/owidviz/covidscope/pkg/selection"
	"github.com/owidviz/covidscope/pkg/timebucket"
	"github.com/owidviz/covidscope/pkg/views"
)

// env is what a view command works with.
type env struct {
	cfg      appConfig
	provider loader.Provider
	sess     *selection.Session
}

// withSession loads the datasets, applies the selector flags and hands the
// settled snapshot to fn.
func withSession(cmd *cobra.Command, fn func(e env, snap selection.Snapshot) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	provider, closeProvider, err := newProvider(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	sess, stop, err := startSession(cmd, cfg, provider)
	if err != nil {
		return err
	}
	defer stop()

	snap, err := pick(cmd, sess)
	if err != nil {
		return err
	}
	return fn(env{cfg: cfg, provider: provider, sess: sess}, snap)
}

type monthRow struct {
	Month        timebucket.Month `json:"month"`
	Cases        *float64         `json:"cases"`
	Deaths       *float64         `json:"deaths"`
	Vaccinations *float64         `json:"vaccinations"`
}

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Print monthly cases, deaths and vaccinations for an entity (or every row)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(_ env, snap selection.Snapshot) error {
			if snap.Vaccination.Status == selection.StatusFailed {
				utils.Log.Warnf("Vaccinations unavailable: %s", snap.Vaccination.Err)
			}
			var rows []monthRow
			for _, m := range unionMonths(snap) {
				row := monthRow{Month: m}
				if t, ok := snap.Primary.Aggregate.Get(m); ok {
					row.Cases, row.Deaths = &t.Cases, &t.Deaths
				}
				if v, ok := snap.Vaccination.Vaccinations.Aggregate.Get(m); ok {
					row.Vaccinations = &v
				}
				rows = append(rows, row)
			}
			return printOutput(cmd, rows, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "MONTH (%s)\tNEW CASES\tNEW DEATHS\tNEW VACCINATIONS\t\n", snap.State.Selector)
				for _, r := range rows {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", r.Month.Label(), count(r.Cases), count(r.Deaths), count(r.Vaccinations))
				}
			})
		})
	},
}

var boostersCmd = &cobra.Command{
	Use:   "boosters",
	Short: "Print total boosters at the end of each month",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(_ env, snap selection.Snapshot) error {
			if snap.Vaccination.Status == selection.StatusFailed {
				return fmt.Errorf("loading vaccination data: %s", snap.Vaccination.Err)
			}
			chart := views.Render(snap).Boosters
			return printOutput(cmd, chart, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "MONTH (%s)\tTOTAL BOOSTERS\t\n", snap.State.Selector)
				for _, b := range chart.Bars {
					fmt.Fprintf(w, "%s\t%s\t\n", b.Label, views.Count(b.Value, true))
				}
			})
		})
	},
}

// unionMonths lists every month with case or vaccination data, in order.
func unionMonths(snap selection.Snapshot) []timebucket.Month {
	seen := make(map[timebucket.Month]bool)
	var months []timebucket.Month
	for _, keys := range [][]timebucket.Month{snap.Primary.Months.Keys(), snap.Vaccination.Vaccinations.Months.Keys()} {
		for _, m := range keys {
			if !seen[m] {
				seen[m] = true
				months = append(months, m)
			}
		}
	}
	timebucket.Sort(months)
	return months
}

func count(v *float64) string {
	if v == nil {
		return views.NA
	}
	return views.Count(*v, true)
}

func init() {
	for _, c := range []*cobra.Command{monthlyCmd, boostersCmd} {
		rootCmd.AddCommand(c)
		addSelectorFlags(c)
		addFormatFlag(c)
	}
}

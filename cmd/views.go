package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/owidviz/covidscope/pkg/selection"
	"github.com/owidviz/covidscope/pkg/timebucket"
	"github.com/owidviz/covidscope/pkg/views"
)

var continentsCmd = &cobra.Command{
	Use:   "continents",
	Short: "Print the continent breakdown of new cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(_ env, snap selection.Snapshot) error {
			tm := views.Continents(snap.Observations)
			return printOutput(cmd, tm, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "CONTINENT\tNEW CASES\tSHARE\t")
				for _, t := range tm.Tiles {
					fmt.Fprintf(w, "%s\t%s\t%.1f%%\t\n", t.Name, views.Count(t.Cases, true), t.Share*100)
				}
				fmt.Fprintln(w, " \t \t \t")
				fmt.Fprintf(w, "%s\t%s\t\t\n", tm.Root, views.Count(tm.Total, true))
			})
		})
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare new cases per million between high and low GDP countries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(e env, snap selection.Snapshot) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			if from != "" || to != "" {
				ev, err := brushFlags(from, to)
				if err != nil {
					return err
				}
				if snap, err = e.sess.Dispatch(cmd.Context(), ev); err != nil {
					return err
				}
			}
			cmp := views.Compare(snap, e.cfg.Groups)
			return printOutput(cmd, cmp, func(w *tabwriter.Writer) {
				period := "whole window"
				if cmp.From != nil {
					period = cmp.From.Label() + " - " + cmp.To.Label()
				}
				fmt.Fprintf(w, "COUNTRY (%s)\tGDP\tCASES PER MILLION\t\n", period)
				for _, b := range cmp.Bars {
					fmt.Fprintf(w, "%s\t%s\t%s\t\n", b.Country, b.Group, views.Count(b.Value, true))
				}
			})
		})
	},
}

// brushFlags turns --from/--to into a brush; a missing bound repeats the
// other one.
func brushFlags(from, to string) (selection.BrushMonths, error) {
	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}
	f, err := timebucket.Parse(from)
	if err != nil {
		return selection.BrushMonths{}, err
	}
	t, err := timebucket.Parse(to)
	if err != nil {
		return selection.BrushMonths{}, err
	}
	return selection.BrushMonths{From: f, To: t}, nil
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Summarize the smoothed daily case trends of the tracked countries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(e env, snap selection.Snapshot) error {
			tc := views.Trends(snap.Observations, e.cfg.TrendCountries, e.cfg.Axis)
			return printOutput(cmd, tc, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "COUNTRY\tDAYS\tPEAK\tPEAK DAY\tLAST\t\n")
				for _, s := range tc.Series {
					if len(s.Points) == 0 {
						fmt.Fprintf(w, "%s\t0\t%s\t%s\t%s\t\n", s.Country, views.NA, views.NA, views.NA)
						continue
					}
					peak := s.Points[0]
					for _, p := range s.Points {
						if p.Value > peak.Value {
							peak = p
						}
					}
					last := s.Points[len(s.Points)-1]
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t\n", s.Country, len(s.Points),
						views.Count(peak.Value, true), peak.Date.Format("2006-01-02"), views.Count(last.Value, true))
				}
			})
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{continentsCmd, compareCmd, trendsCmd} {
		rootCmd.AddCommand(c)
		addFormatFlag(c)
	}
	compareCmd.Flags().String("from", "", "First brushed month (YYYY-MM)")
	compareCmd.Flags().String("to", "", "Last brushed month (YYYY-MM)")
}

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/owidviz/covidscope/internal/utils"
	"github.com/owidviz/covidscope/pkg/geo"
	"github.com/owidviz/covidscope/pkg/scale"
	"github.com/owidviz/covidscope/pkg/selection"
	"github.com/owidviz/covidscope/pkg/timebucket"
	"github.com/owidviz/covidscope/pkg/views"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Resolve the choropleth for one month of the slider",
	Long: `Resolve every country of the boundaries file against the monthly case,
death and vaccination aggregates. Select the month with --month (2020-03) or
the slider position with --index (0 is the first month of the window).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(e env, snap selection.Snapshot) error {
			index, _ := cmd.Flags().GetInt("index")
			if month, _ := cmd.Flags().GetString("month"); month != "" {
				m, err := timebucket.Parse(month)
				if err != nil {
					return err
				}
				i, ok := snap.Slider.Index(m)
				if !ok {
					return fmt.Errorf("%w: %s is outside %s", scale.ErrSliderRange, m.Label(), snap.Window)
				}
				index = i
			}
			snap, err := e.sess.Dispatch(cmd.Context(), selection.SliderMoved{Index: index})
			if err != nil {
				return err
			}

			raw, err := e.provider.Boundaries(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading boundaries: %w", err)
			}
			b, err := geo.ParseBoundaries(raw)
			if err != nil {
				return err
			}
			month := snap.MapMonth()
			cells := snap.Join.Resolve(b, month, scale.CaseColors)

			if path, _ := cmd.Flags().GetString("geojson"); path != "" {
				body, err := geo.Choropleth(b, cells)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, body, 0o644); err != nil {
					return err
				}
				utils.Log.Infof("Wrote %d regions for %s to %s", len(cells), month.Label(), path)
				return nil
			}

			return printOutput(cmd, cells, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "CODE\tNAME (%s)\tNEW CASES\tNEW DEATHS\tNEW VACCINATIONS\tFILL\t\n", month.Label())
				for _, c := range cells {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n", c.Code, c.Name,
						views.Count(c.Cases.V, c.Cases.OK), views.Count(c.Deaths.V, c.Deaths.OK),
						views.Count(c.Vaccinations.V, c.Vaccinations.OK), c.Fill)
				}
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)
	addFormatFlag(mapCmd)
	mapCmd.Flags().IntP("index", "i", 0, "Slider position")
	mapCmd.Flags().StringP("month", "m", "", "Month to show (YYYY-MM), overrides --index")
	mapCmd.Flags().String("geojson", "", "Write the annotated FeatureCollection to this file instead of a table")
}

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/owidviz/covidscope/internal/utils"
	"github.com/owidviz/covidscope/pkg/chart"
	"github.com/owidviz/covidscope/pkg/selection"
	"github.com/owidviz/covidscope/pkg/views"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw one of the dashboard charts as SVG or PNG",
	Long: `Draw one chart of the dashboard for the current selection.

Charts: cases, deaths, vaccinations, boosters, overview, trends`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("chart")
		formatStr, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		format, err := chart.ParseFormat(formatStr)
		if err != nil {
			return err
		}

		return withSession(cmd, func(e env, snap selection.Snapshot) error {
			var buf bytes.Buffer
			d := views.Render(snap)
			switch name {
			case selection.ChartCases:
				err = chart.Bars(&buf, d.Cases, format)
			case selection.ChartDeaths:
				err = chart.Bars(&buf, d.Deaths, format)
			case selection.ChartVaccinations:
				err = chart.Bars(&buf, d.Vaccinations, format)
			case selection.ChartBoosters:
				err = chart.Bars(&buf, d.Boosters, format)
			case "overview":
				err = chart.Bars(&buf, views.Compare(snap, e.cfg.Groups).Overview, format)
			case "trends":
				err = chart.Trends(&buf, views.Trends(snap.Observations, e.cfg.TrendCountries, e.cfg.Axis), format)
			default:
				return fmt.Errorf("unknown chart %q", name)
			}
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if _, err := buf.WriteTo(out); err != nil {
				return err
			}
			if outPath != "" {
				utils.Log.Infof("Wrote %s chart to %s", name, outPath)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	addSelectorFlags(renderCmd)
	renderCmd.Flags().String("chart", selection.ChartCases, "Chart to draw")
	renderCmd.Flags().StringP("format", "f", "svg", "Image format: svg, png")
	renderCmd.Flags().String("out", "", "Output file (default is stdout)")
}

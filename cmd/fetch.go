package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/owidviz/covidscope/internal/utils"
	"github.com/owidviz/covidscope/pkg/refresh"
	"github.com/owidviz/covidscope/pkg/storage"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the datasets and boundaries into the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := runRefresh(cmd, cfg)
		if err != nil {
			return err
		}
		out := fetchOutput{Loaded: res.Loaded, Boundaries: res.Boundaries}
		for _, e := range res.Errors {
			utils.Log.Errorf("%v", e)
			out.Errors = append(out.Errors, e.Error())
		}
		return printOutput(cmd, out, func(w *tabwriter.Writer) {
			fmt.Fprintln(w, "DATASET\tROWS\tKEPT\tDROPPED\t")
			for _, l := range res.Loaded {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t\n", l.Dataset, l.Rows, l.Kept, l.Dropped)
			}
			fmt.Fprintf(w, "boundaries\t%d\t%d\t-\t\n", res.Boundaries, res.Boundaries)
		})
	},
}

type fetchOutput struct {
	Loaded     []refresh.Loaded `json:"loaded"`
	Boundaries int              `json:"boundaries"`
	Errors     []string         `json:"errors,omitempty"`
}

// runRefresh fetches every resource and stores it under the cache lock.
func runRefresh(cmd *cobra.Command, cfg appConfig) (*refresh.Result, error) {
	remote, done, err := newRemote(cmd, cfg)
	if err != nil {
		return nil, err
	}
	defer done()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	lock, err := utils.NewDBLock(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	lock.Wait, _ = cmd.Flags().GetDuration("lock-wait")

	start := time.Now()
	res, err := refresh.Run(cmd.Context(), refresh.Config{
		Source:  remote,
		Sources: cfg.Sources,
		Store:   db,
		Lock:    lock,
		Log:     utils.Log,
	})
	if err != nil {
		return res, err
	}
	utils.Log.Infof("Refresh finished in %s", time.Since(start).Round(time.Millisecond))
	return res, nil
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	addFormatFlag(fetchCmd)
	fetchCmd.Flags().Duration("lock-wait", 0, "Give up after waiting this long for another refresh (0 waits forever)")
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/owidviz/covidscope/internal/utils"
	"github.com/owidviz/covidscope/pkg/loader"
	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/selection"
	"github.com/owidviz/covidscope/pkg/storage"
	"github.com/owidviz/covidscope/pkg/views"
	"github.com/owidviz/covidscope/pkg/window"
)

// appConfig is the viper configuration resolved into typed values.
type appConfig struct {
	Sources        loader.Sources
	Window         window.Window
	Axis           window.Window
	Metric         observation.Metric
	RetryMax       int
	Timeout        time.Duration
	DBPath         string
	Groups         views.Groups
	TrendCountries []string
}

func loadConfig() (appConfig, error) {
	cfg := appConfig{
		Sources: loader.Sources{
			Cases:        viper.GetString("sources.cases_url"),
			Vaccinations: viper.GetString("sources.vaccinations_url"),
			Boundaries:   viper.GetString("sources.boundaries_url"),
		},
		RetryMax: viper.GetInt("http.retry_max"),
		Timeout:  viper.GetDuration("http.timeout"),
		Groups: views.Groups{
			High: viper.GetStringSlice("gdp.high"),
			Low:  viper.GetStringSlice("gdp.low"),
		},
		TrendCountries: viper.GetStringSlice("trends.countries"),
	}

	var err error
	if cfg.Window, err = window.New(viper.GetString("window.start"), viper.GetString("window.end")); err != nil {
		return cfg, err
	}
	if cfg.Axis, err = window.New(viper.GetString("window.start"), viper.GetString("window.axis_end")); err != nil {
		return cfg, err
	}
	if cfg.Metric, err = observation.ParseMetric(viper.GetString("metrics.cases")); err != nil {
		return cfg, err
	}
	if cfg.DBPath, err = utils.GetAbsDBPath(viper.GetString("db.path")); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newProvider returns the local cache with --offline, the network otherwise.
func newProvider(cmd *cobra.Command, cfg appConfig) (loader.Provider, func(), error) {
	offline, _ := cmd.Flags().GetBool("offline")
	if offline {
		if _, err := os.Stat(cfg.DBPath); err != nil {
			return nil, nil, fmt.Errorf("cache not found at %s, run 'covidscope fetch' first", cfg.DBPath)
		}
		db, err := storage.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	}
	return newRemote(cmd, cfg)
}

func newRemote(cmd *cobra.Command, cfg appConfig) (*loader.Remote, func(), error) {
	proxy, _ := cmd.Flags().GetString("proxy")
	remote, err := loader.NewRemote(cfg.Sources, loader.Options{
		RetryMax: cfg.RetryMax,
		Timeout:  cfg.Timeout,
		Proxy:    proxy,
		Log:      utils.Log,
	})
	if err != nil {
		return nil, nil, err
	}
	return remote, func() {}, nil
}

// startSession runs a session in the background and waits until both
// datasets have settled. The returned stop function ends it.
func startSession(cmd *cobra.Command, cfg appConfig, provider loader.Provider) (*selection.Session, func(), error) {
	ctx, cancel := context.WithCancel(cmd.Context())
	sess := selection.New(selection.Config{
		Provider: provider,
		Window:   cfg.Window,
		Metric:   cfg.Metric,
		Log:      utils.Log,
	})
	go sess.Run(ctx)

	snap, err := waitSettled(ctx, sess)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if snap.CasesStatus == selection.StatusFailed {
		cancel()
		return nil, nil, fmt.Errorf("loading case data: %s", snap.CasesErr)
	}
	return sess, cancel, nil
}

// waitSettled polls until neither dataset is pending.
func waitSettled(ctx context.Context, sess *selection.Session) (selection.Snapshot, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		snap, err := sess.Snapshot(ctx)
		if err != nil {
			return snap, err
		}
		if snap.CasesStatus != selection.StatusPending && snap.Vaccination.Status != selection.StatusPending {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-ticker.C:
		}
	}
}

// pick applies the --entity / --code flags, if any, and waits for the
// vaccination series of the new selection.
func pick(cmd *cobra.Command, sess *selection.Session) (selection.Snapshot, error) {
	entity, _ := cmd.Flags().GetString("entity")
	code, _ := cmd.Flags().GetString("code")
	if entity != "" || code != "" {
		if _, err := sess.Dispatch(cmd.Context(), selection.EntityPicked{Selector: observation.Selector{Entity: entity, Code: code}}); err != nil {
			return selection.Snapshot{}, err
		}
	}
	return waitSettled(cmd.Context(), sess)
}

func addSelectorFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("entity", "e", "", "Entity (location) name, e.g. France. Default is every row")
	cmd.Flags().StringP("code", "c", "", "ISO code, e.g. FRA. Wins over --entity")
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "table", "Output format: table, json, yaml")
}

// printOutput writes v as JSON or YAML, or calls table for tabular output.
func printOutput(cmd *cobra.Command, v interface{}, table func(w *tabwriter.Writer)) error {
	format, _ := cmd.Flags().GetString("output")
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		return writeYAML(out, v)
	case "table", "":
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
		table(w)
		return w.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// writeYAML goes through JSON so field names and ordering match the JSON
// output.
func writeYAML(w io.Writer, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return err
	}
	blockStyle(&node)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

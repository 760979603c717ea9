package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/owidviz/covidscope/internal/server"
	"github.com/owidviz/covidscope/internal/utils"
	"github.com/owidviz/covidscope/pkg/refresh"
	"github.com/owidviz/covidscope/pkg/selection"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard views over HTTP",
	Long: `Serve the dashboard views and charts over HTTP. All clients share one
selection. With server.refresh set (a cron expression such as "@every 6h"),
the local cache is refreshed on that schedule and the session reloads.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		schedule := viper.GetString("server.refresh")
		if schedule != "" {
			if err := refresh.ValidateSchedule(schedule); err != nil {
				return err
			}
		}

		provider, done, err := newProvider(cmd, cfg)
		if err != nil {
			return err
		}
		defer done()

		sess, end, err := startSession(cmd, cfg, provider)
		if err != nil {
			return err
		}
		defer end()

		if schedule != "" {
			go func() {
				err := refresh.Schedule(ctx, schedule, func(ctx context.Context) {
					if _, err := runRefresh(cmd, cfg); err != nil {
						utils.Log.Errorf("Scheduled refresh failed: %v", err)
						return
					}
					sess.Post(selection.Reload{})
				})
				if err != nil {
					utils.Log.Errorf("Refresh scheduler stopped: %v", err)
				}
			}()
			utils.Log.Infof("Refreshing the cache on schedule %q", schedule)
		}

		listen, _ := cmd.Flags().GetString("listen")
		if listen == "" {
			listen = viper.GetString("server.listen")
		}
		srv := server.New(server.Config{
			Session:        sess,
			Provider:       provider,
			Groups:         cfg.Groups,
			TrendCountries: cfg.TrendCountries,
			Axis:           cfg.Axis,
			Username:       viper.GetString("server.username"),
			Password:       viper.GetString("server.password"),
		})
		return srv.Start(ctx, listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "HTTP listen address (default is server.listen, :8080)")
	serveCmd.Flags().Duration("lock-wait", 0, "Give up a scheduled refresh after waiting this long for the cache lock (0 waits forever)")
}

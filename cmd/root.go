package cmd

import (
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/owidviz/covidscope/internal/utils"
	"github.com/owidviz/covidscope/pkg/loader"
	"github.com/owidviz/covidscope/pkg/views"
)

var cfgFile string

const (
	LOGO = `                _     _
  ___ _____   _(_) __| |___  ___ ___  _ __   ___
 / __/ _ \ \ / / |/ _` + "`" + ` / __|/ __/ _ \| '_ \ / _ \
| (_| (_) \ V /| | (_| \__ \ (_| (_) | |_) |  __/
 \___\___/ \_/ |_|\__,_|___/\___\___/| .__/ \___|
                                     |_|
`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "covidscope",
	Short: "Monthly COVID-19 aggregates and linked views from Our World in Data.",
	Long: LOGO + `covidscope loads the OWID case and vaccination datasets, aggregates them by
month and entity, and serves the linked dashboard views (bar charts, map,
continent treemap, GDP comparison and trend lines) from the command line or
over HTTP.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.covidscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().Bool("offline", false, "Read datasets from the local cache (see 'covidscope fetch') instead of the network")
	rootCmd.PersistentFlags().String("dbpath", "", "Path to the SQLite cache (default is ~/.config/covidscope/covidscope.sqlite)")
	viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("dbpath"))
}

func setDefaults() {
	viper.SetDefault("sources.cases_url", loader.DefaultSources.Cases)
	viper.SetDefault("sources.vaccinations_url", loader.DefaultSources.Vaccinations)
	viper.SetDefault("sources.boundaries_url", loader.DefaultSources.Boundaries)
	viper.SetDefault("window.start", "2020-03-01")
	viper.SetDefault("window.end", "2022-11-30")
	viper.SetDefault("window.axis_end", "2022-12-31")
	viper.SetDefault("metrics.cases", "new_cases")
	viper.SetDefault("http.retry_max", 5)
	viper.SetDefault("http.timeout", "2m")
	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")
	viper.SetDefault("server.refresh", "")
	viper.SetDefault("gdp.high", views.DefaultGroups.High)
	viper.SetDefault("gdp.low", views.DefaultGroups.Low)
	viper.SetDefault("trends.countries", views.DefaultTrendCountries)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".covidscope")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("covidscope")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.covidscope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				utils.Log.Debugf("Could not create config file: %s", err)
			}
		} else {
			utils.Log.Warnf("Could not read config file: %s", err)
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if err := utils.SetLogLevel(levelString); err != nil {
		utils.Log.Fatal(err)
	}
}

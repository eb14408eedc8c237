package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool

	log = logrus.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "forecaster",
	Short: "Budget forecasting engine",
	Long: `Forecaster tracks budgets and planned operations on recurring
calendar schedules and prorates them into monthly forecasts.

Examples:
  forecaster serve --db ./data/forecast.db --port 8080
  forecaster forecast --db ./data/forecast.db --start 2024-01-01 --months 12`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("db", "forecast.db", "SQLite database path (\":memory:\" for in-memory)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(1)
		}
	}

	// Read environment variables that match: FORECASTER_DB, FORECASTER_PORT
	viper.SetEnvPrefix("FORECASTER")
	viper.AutomaticEnv()

	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose || viper.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}
}

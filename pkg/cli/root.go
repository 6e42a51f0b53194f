package cli

import (
	"fmt"
	"os"

	"github.com/chi-bristol/icca-curation/pkg/common/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "icca-curate",
	Short: "icca-curate - locate and curate clinical variables in an ICCA reporting replica",
	Long: `icca-curate wraps the query workflow used to find study variables in a
Philips ICCA reporting database:

  locate      search intervention definitions by label pattern
  attributes  rank attribute usage for located interventions
  plan        map resolved attributes onto curated variables
  icnarc      import a WardWatcher ICNARC XML export

Connection settings come from the environment (REPORTING_*, POSTGRES_*) or
from the config file.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitCLI(verbose)
		applyConfigOverrides()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("icca-curate v0.3.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.icca-curate/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home + "/.icca-curate")
			viper.SetConfigType("yaml")
			viper.SetConfigName("config")
		}
	}

	viper.SetEnvPrefix("ICCA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// applyConfigOverrides bridges config-file keys into the environment the
// shared config package reads, so the CLI and the service resolve
// connections the same way.
func applyConfigOverrides() {
	keys := map[string]string{
		"reporting.host":     "REPORTING_HOST",
		"reporting.port":     "REPORTING_PORT",
		"reporting.user":     "REPORTING_USER",
		"reporting.password": "REPORTING_PASSWORD",
		"reporting.db":       "REPORTING_DB",
		"postgres.host":      "POSTGRES_HOST",
		"postgres.port":      "POSTGRES_PORT",
		"postgres.user":      "POSTGRES_USER",
		"postgres.password":  "POSTGRES_PASSWORD",
		"postgres.db":        "POSTGRES_DB",
	}
	for key, env := range keys {
		if viper.IsSet(key) && os.Getenv(env) == "" {
			os.Setenv(env, viper.GetString(key))
		}
	}
}

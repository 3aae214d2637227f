package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/style"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "autoscope",
	Short: models.AppIcon + " AutoScope",
	Long:  models.AppIcon + " Compile automation drafts for Home Assistant and keep every user inside their areas…",

	SilenceUsage: true,

	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() { //nolint:gochecknoinits
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.autoscope.yaml)")

	// logging
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show more output")
	_ = viper.BindPFlag("autoscope.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "show debug output")
	_ = viper.BindPFlag("autoscope.debug", rootCmd.PersistentFlags().Lookup("debug"))
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	_ = viper.BindPFlag("autoscope.no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	// defaults
	viper.SetDefault("homeassistant.timeout", 10*time.Second)
	viper.SetDefault("autoscope.audit.every", 15*time.Minute)
	viper.SetDefault("autoscope.audit.metrics_addr", "")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".autoscope" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".autoscope")
	}

	// read in environment variables that match
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		log.Debug(fmt.Errorf("failed to read config file %s: %w", viper.ConfigFileUsed(), err))
	}
}

// setupLogging replaces the root printer according to the log flags.
func setupLogging() {
	var logLevel log.Level

	switch {
	case viper.GetBool("autoscope.debug"):
		logLevel = log.DebugLevel

	case viper.GetBool("autoscope.verbose"):
		logLevel = log.InfoLevel

	default:
		logLevel = log.WarnLevel
	}

	models.Printer = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		TimeFormat:      " " + "15:04:05",
		ReportCaller:    logLevel < log.InfoLevel,
		Level:           logLevel,
	})

	if viper.GetBool("autoscope.no_color") {
		style.DisableColors()
	}
}

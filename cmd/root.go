package cmd

import (
	"bundler/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	quiet    bool
	logLevel string
)

var RootCmd = &cobra.Command{
	Use:   "bundler",
	Short: "A tool for submitting atomic transaction bundles to the Jito block engine",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetConsoleEnabled(!quiet)
		if logLevel == "" {
			logLevel = viper.GetString("log.level")
		}
		logger.SetLevel(logLevel)
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Do not copy logs to stdout")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
}

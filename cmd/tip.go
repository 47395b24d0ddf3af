package cmd

import (
	"context"
	"fmt"

	"bundler/jito"
	"bundler/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var tipCmd = cobra.Command{
	Use:   "tip-accounts",
	Short: "List the tip accounts the block engine currently accepts",
	Run: func(cmd *cobra.Command, args []string) {
		logger.InitLogs("tip")

		blockEngine, err := jito.NewBlockEngine(jito.GetBlockEngineURL(), viper.GetString("jito.uuid"))
		if err != nil {
			logger.JitoLogger.Error("Error creating block engine client", "err", err)
			return
		}
		accounts, err := blockEngine.GetTipAccounts(context.Background())
		if err != nil {
			logger.JitoLogger.Error("Error fetching tip accounts", "err", err)
			return
		}
		logger.JitoLogger.Info("Fetched tip accounts", "count", len(accounts))
		for _, a := range accounts {
			fmt.Println(a)
		}
	},
}

func init() {
	RootCmd.AddCommand(&tipCmd)
}

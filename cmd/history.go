package cmd

import (
	"fmt"

	"bundler/config"
	"bundler/db"
	"bundler/logger"

	"github.com/spf13/cobra"
)

var historyLimit uint

var historyCmd = cobra.Command{
	Use:   "history",
	Short: "List the latest recorded bundle submissions",
	Run: func(cmd *cobra.Command, args []string) {
		ch, err := db.NewClickhouse()
		if err != nil {
			logger.GlobalLogger.Error("Failed to open database", "err", err)
			return
		}
		defer ch.Close()

		rows, err := ch.QueryLatestSubmissions(historyLimit)
		if err != nil {
			logger.GlobalLogger.Error("Failed to query submissions", "err", err)
			return
		}
		for _, r := range rows {
			fmt.Printf("%s  %s  %-9s slot=%d txs=%d tip=%d rejections=%d wait=%dms\n",
				r.Timestamp.Format("2006-01-02 15:04:05"), r.BundleId, r.Status, r.Slot, r.TxCount, r.TipLamports, r.Rejections, r.WaitMs)
		}
	},
}

func init() {
	historyCmd.Flags().UintVarP(&historyLimit, "limit", "n", config.HISTORY_DEFAULT_LIMIT, "Number of submissions to show")
	RootCmd.AddCommand(&historyCmd)
}

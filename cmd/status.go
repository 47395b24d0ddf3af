package cmd

import (
	"context"
	"fmt"

	"bundler/db"
	"bundler/jito"
	"bundler/logger"
	"bundler/types"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var statusCmd = cobra.Command{
	Use:   "bundle-status <bundleId>",
	Short: "Show what the block engine and the bundles explorer know about a bundle",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger.InitLogs("status")
		bundleId := args[0]

		blockEngine, err := jito.NewBlockEngine(jito.GetBlockEngineURL(), viper.GetString("jito.uuid"))
		if err != nil {
			logger.JitoLogger.Error("Error creating block engine client", "err", err)
			return
		}

		var (
			inflight []jito.InflightBundleStatus
			statuses []jito.BundleStatus
			landed   *types.JitoBundle
		)
		// The three sources are independent; one failing should not hide the others
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			if inflight, err = blockEngine.GetInflightBundleStatuses(ctx, []string{bundleId}); err != nil {
				logger.JitoLogger.Warn("GetInflightBundleStatuses failed", "bundleId", bundleId, "err", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if statuses, err = blockEngine.GetBundleStatuses(ctx, []string{bundleId}); err != nil {
				logger.JitoLogger.Warn("GetBundleStatuses failed", "bundleId", bundleId, "err", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if landed, err = jito.GetLandedBundle(ctx, bundleId); err != nil {
				logger.JitoLogger.Warn("GetLandedBundle failed", "bundleId", bundleId, "err", err)
			}
			return nil
		})
		_ = g.Wait()

		for _, s := range inflight {
			slot := "-"
			if s.LandedSlot != nil {
				slot = fmt.Sprint(*s.LandedSlot)
			}
			fmt.Printf("inflight: status=%s landed_slot=%s\n", s.Status, slot)
		}
		for _, s := range statuses {
			fmt.Printf("landed: slot=%d confirmation=%s failed=%t txs=%d\n", s.Slot, s.ConfirmationStatus, s.Failed(), len(s.Transactions))
		}
		if landed != nil {
			fmt.Printf("explorer: slot=%d tip=%d lamports tippers=%v\n", landed.Slot, landed.LandedTipLamports, landed.Tippers)
		}
		if db.Enabled() {
			printRecordedSubmission(bundleId)
		}
		fmt.Println(jito.ExplorerURL(bundleId))
	},
}

func printRecordedSubmission(bundleId string) {
	ch, err := db.NewClickhouse()
	if err != nil {
		logger.GlobalLogger.Warn("Failed to open database", "err", err)
		return
	}
	defer ch.Close()

	row, err := ch.QuerySubmission(bundleId)
	if err != nil {
		logger.GlobalLogger.Warn("Failed to query submission", "bundleId", bundleId, "err", err)
		return
	}
	if row == nil {
		return
	}
	fmt.Printf("recorded: %s status=%s slot=%d txs=%d tip=%d rejections=%d wait=%dms\n",
		row.Timestamp.Format("2006-01-02 15:04:05"), row.Status, row.Slot, row.TxCount, row.TipLamports, row.Rejections, row.WaitMs)
}

func init() {
	RootCmd.AddCommand(&statusCmd)
}

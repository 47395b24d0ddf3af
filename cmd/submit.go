package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bundler/config"
	"bundler/db"
	"bundler/jito"
	"bundler/logger"
	"bundler/metrics"
	"bundler/sol"
	"bundler/types"
	"bundler/utils"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	submitFile        string
	submitMemos       []string
	submitTip         string
	submitLimit       int
	submitTimeout     time.Duration
	submitMetrics     bool
	submitSkipBalance bool
)

var submitCmd = cobra.Command{
	Use:   "submit",
	Short: "Submit transaction groups as one atomic bundle and wait for the result",
	Long: `Submit transaction groups as one atomic bundle, tip appended last, and wait until the
block engine reports it accepted or the timeout expires.

Groups come either from --file, a JSON array of groups of base64 signed transactions,
or from --memo, where every memo becomes a one-transaction group signed by the fee payer.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger.InitLogs("submit")

		if err := runSubmit(); err != nil {
			logger.JitoLogger.Error("Error running submit command", "err", err)
			os.Exit(1)
		}
	},
}

func runSubmit() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Flags win over config.yaml, which wins over the compiled defaults
	submitLimit = viper.GetInt("bundle.limit")
	submitTimeout = viper.GetDuration("bundle.timeout")

	if submitFile == "" && len(submitMemos) == 0 {
		return errors.New("nothing to submit, use --file or --memo")
	}
	tipLamports, err := utils.LamportsFromSOL(submitTip)
	if err != nil {
		return err
	}

	feePayer, err := sol.LoadFeePayer()
	if err != nil {
		return err
	}
	ledger := sol.NewLedger(sol.GetSolanaRpcURL())
	blockEngine, err := jito.NewBlockEngine(jito.GetBlockEngineURL(), viper.GetString("jito.uuid"))
	if err != nil {
		return err
	}
	policy, err := jito.ParseTipPolicy(viper.GetString("jito.tip-policy"))
	if err != nil {
		return err
	}

	if !submitSkipBalance {
		balance, err := ledger.Balance(ctx, feePayer.PublicKey())
		if err != nil {
			return fmt.Errorf("get fee payer balance failed: %w", err)
		}
		if balance < tipLamports {
			return fmt.Errorf("fee payer %s holds %s SOL, cannot cover a tip of %s SOL",
				feePayer.PublicKey(), utils.SOLFromLamports(balance), utils.SOLFromLamports(tipLamports))
		}
	}

	groups, err := loadGroups(ctx, ledger, feePayer)
	if err != nil {
		return err
	}

	if submitMetrics {
		m := metrics.NewMetrics(viper.GetString("metrics.addr"))
		m.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = m.Stop(shutdownCtx)
		}()
	}

	hub := jito.NewResultHub(blockEngine, viper.GetDuration("bundle.poll-interval"))
	hub.Start(context.Background())
	defer hub.Stop()

	engine := jito.NewEngine(
		jito.NewTipSelector(blockEngine, policy),
		ledger,
		jito.NewSubmitter(blockEngine),
		jito.NewResultAwaiter(hub, submitTimeout),
		feePayer,
		submitLimit,
	)
	if db.Enabled() {
		ch, err := db.NewClickhouse()
		if err != nil {
			logger.GlobalLogger.Error("Submission history disabled", "err", err)
		} else {
			defer ch.Close()
			engine.WithRecorder(ch)
		}
	}

	logger.JitoLogger.Info("Submitting bundle",
		"groups", len(groups),
		"tip", utils.SOLFromLamports(tipLamports),
		"limit", submitLimit,
		"timeout", submitTimeout.String(),
		"feePayer", feePayer.PublicKey(),
	)
	outcome, err := engine.SubmitAtomic(ctx, groups, tipLamports)
	if err != nil {
		if errors.Is(err, types.ErrStaleBlockhash) {
			logger.JitoLogger.Warn("Blockhash expired before the bundle was sent, submit again")
		}
		return err
	}

	switch outcome.Status {
	case types.OutcomeAccepted:
		logger.JitoLogger.Info("Bundle accepted", "bundleId", outcome.BundleId, "slot", outcome.Slot, "explorer", jito.ExplorerURL(outcome.BundleId))
	default:
		logger.JitoLogger.Warn("Bundle not accepted within timeout", "bundleId", outcome.BundleId, "rejections", outcome.Rejections, "explorer", jito.ExplorerURL(outcome.BundleId))
	}
	fmt.Printf("%s %s %d\n", outcome.BundleId, outcome.Status, outcome.Count())
	return nil
}

func loadGroups(ctx context.Context, ledger *sol.Ledger, feePayer solana.PrivateKey) ([][]*solana.Transaction, error) {
	if submitFile != "" {
		return sol.LoadTransactionGroups(submitFile)
	}

	blockhash, err := ledger.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	groups := make([][]*solana.Transaction, 0, len(submitMemos))
	for _, memo := range submitMemos {
		tx, err := sol.BuildMemoTransaction(feePayer, blockhash, memo)
		if err != nil {
			return nil, err
		}
		groups = append(groups, []*solana.Transaction{tx})
	}
	return groups, nil
}

func init() {
	submitCmd.Flags().StringVarP(&submitFile, "file", "f", "", "JSON file with groups of base64 signed transactions")
	submitCmd.Flags().StringArrayVarP(&submitMemos, "memo", "m", nil, "Memo message, one transaction group per memo (repeatable)")
	submitCmd.Flags().StringVarP(&submitTip, "tip", "t", utils.SOLFromLamports(config.BUNDLE_TIP_LAMPORTS), "Tip in SOL")
	submitCmd.Flags().IntVarP(&submitLimit, "limit", "l", config.BUNDLE_TRANSACTION_LIMIT, "Maximum transactions per bundle, tip included")
	submitCmd.Flags().DurationVar(&submitTimeout, "timeout", config.BUNDLE_RESULT_TIMEOUT, "How long to wait for an accepted result")
	submitCmd.Flags().BoolVar(&submitMetrics, "metrics", false, "Serve prometheus metrics while running")
	submitCmd.Flags().BoolVar(&submitSkipBalance, "skip-balance-check", false, "Do not check the fee payer balance before submitting")
	_ = viper.BindPFlag("bundle.limit", submitCmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("bundle.timeout", submitCmd.Flags().Lookup("timeout"))
	RootCmd.AddCommand(&submitCmd)
}

package jito

import (
	"context"
	"fmt"
	"time"

	"bundler/config"
	"bundler/logger"
	"bundler/types"
	"bundler/utils"

	"github.com/spf13/viper"
)

var JitoBundleURL string

func GetJitoBundleURL() string {
	if JitoBundleURL != "" {
		return JitoBundleURL
	}

	JitoBundleURL = viper.GetString("jito.bundles-url")
	if JitoBundleURL == "" {
		JitoBundleURL = config.DEFAULT_BUNDLES_URL
		logger.JitoLogger.Warn("JitoBundleURL not set in config, using default", "url", JitoBundleURL)
	}

	return JitoBundleURL
}

// ExplorerURL links a bundle on the Jito explorer.
func ExplorerURL(bundleId string) string {
	return config.JITO_EXPLORER_BUNDLE_URL + bundleId
}

type ExplorerBundle struct {
	BundleId          string   `json:"bundleId"`
	Slot              uint64   `json:"slot"`
	Validator         string   `json:"validator"`
	Tippers           []string `json:"tippers"`
	LandedTipLamports uint64   `json:"landedTipLamports"`
	LandedCu          uint64   `json:"landedCu"`
	BlockIndex        uint     `json:"blockIndex"`
	Timestamp         string   `json:"timestamp"`
	TxSignatures      []string `json:"txSignatures"`
}

// GetLandedBundle looks a bundle up in the Jito bundles explorer API.
// It returns nil without error when the explorer does not know the bundle (yet).
func GetLandedBundle(ctx context.Context, bundleId string) (*types.JitoBundle, error) {
	var result []ExplorerBundle
	// This endpoint is like .../bundles/bundle/<bundleId>
	err := utils.GetUrlResponse(ctx, GetJitoBundleURL()+"/bundle/"+bundleId, nil, &result, logger.JitoLogger)
	if err != nil {
		return nil, fmt.Errorf("GetLandedBundle failed: %w", err)
	}
	if len(result) == 0 {
		return nil, nil
	}

	b := result[0]
	ts, err := time.Parse(time.RFC3339, b.Timestamp)
	if err != nil {
		logger.JitoLogger.Warn("Failed to parse timestamp", "bundleId", b.BundleId, "err", err)
	}
	return &types.JitoBundle{
		Slot:              b.Slot,
		BundleId:          b.BundleId,
		Timestamp:         ts,
		Tippers:           b.Tippers,
		LandedTipLamports: b.LandedTipLamports,
		Transactions:      b.TxSignatures,
	}, nil
}

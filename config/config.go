package config

import "time"

// Path config
const (
	LogPath    = "./logs/"
	ConfigPath = "./"
)

// Log config
const (
	LOG_MAX_SIZE_MB  = 50
	LOG_MAX_BACKUPS  = 5
	LOG_MAX_AGE_DAYS = 14
)

// Network config
const (
	DEFAULT_SOL_RPC          = "https://api.mainnet-beta.solana.com"
	DEFAULT_BLOCK_ENGINE_URL = "https://mainnet.block-engine.jito.wtf"
	DEFAULT_BUNDLES_URL      = "https://bundles.jito.wtf/api/v1/bundles"
	JITO_EXPLORER_BUNDLE_URL = "https://explorer.jito.wtf/bundle/"
)

// Bundle config
const (
	// The block engine rejects bundles with more than 5 transactions
	BUNDLE_TRANSACTION_LIMIT = 5
	// 0.01 SOL
	BUNDLE_TIP_LAMPORTS = uint64(10_000_000)
	// How long to wait for an accepted result before giving up
	BUNDLE_RESULT_TIMEOUT = 30 * time.Second

	// getInflightBundleStatuses accepts at most 5 ids per call
	JITO_STATUS_BATCH_SIZE    = 5
	JITO_STATUS_POLL_INTERVAL = 1 * time.Second
	// Number of (bundleId, status) pairs remembered to avoid publishing the same result twice
	JITO_RESULT_DEDUP_SIZE = 4096
	// Buffered events per subscription; an event that does not fit is published again on the next poll
	JITO_SUBSCRIPTION_BUFFER = 16
)

// Storage config
const (
	HISTORY_DEFAULT_LIMIT = 20
)

// Metrics config
const (
	DEFAULT_METRICS_ADDR = "0.0.0.0:9090"
)

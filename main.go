package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"bundler/cmd"
	"bundler/config"
	"bundler/db"
	"bundler/logger"
)

func initConfig() {
	viper.SetDefault("sol.rpc", config.DEFAULT_SOL_RPC)
	viper.SetDefault("jito.block-engine-url", config.DEFAULT_BLOCK_ENGINE_URL)
	viper.SetDefault("jito.bundles-url", config.DEFAULT_BUNDLES_URL)
	viper.SetDefault("jito.tip-policy", "first")
	viper.SetDefault("bundle.limit", config.BUNDLE_TRANSACTION_LIMIT)
	viper.SetDefault("bundle.timeout", config.BUNDLE_RESULT_TIMEOUT)
	viper.SetDefault("bundle.poll-interval", config.JITO_STATUS_POLL_INTERVAL)
	viper.SetDefault("metrics.addr", config.DEFAULT_METRICS_ADDR)
	viper.SetDefault("log.level", "info")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(config.ConfigPath)

	if err := viper.MergeInConfig(); err != nil {
		logger.GlobalLogger.Warn("Error reading config.yaml file, if you don't have config.yaml file, please create one from config-example.yaml", "err", err)
	}

	if err := godotenv.Load(config.ConfigPath + ".env"); err != nil {
		logger.GlobalLogger.Warn("Error reading .env file, if you don't have .env file, please create one from .env-example", "err", err)
	}

	viper.AutomaticEnv()
}

func initDB() {
	if !db.Enabled() {
		logger.GlobalLogger.Info("CLICKHOUSE_ADDR not set, submission history disabled")
		return
	}

	ch, err := db.NewClickhouse()
	if err != nil {
		logger.GlobalLogger.Error("Failed to open database", "err", err)
		return
	}
	defer ch.Close()

	logger.GlobalLogger.Info("Try to ensure database and tables exist")

	if err := ch.EnsureDatabaseExists(); err != nil {
		logger.GlobalLogger.Error("Failed to ensure database", "err", err)
		return
	}

	if err := ch.CreateTables(); err != nil {
		logger.GlobalLogger.Error("Failed to create tables", "err", err)
	}
}

func main() {
	initConfig()
	initDB()
	code := 0
	if err := cmd.RootCmd.Execute(); err != nil {
		logger.GlobalLogger.Error("Error executing command", "err", err)
		code = 1
	}

	logger.CloseAll()
	os.Exit(code)
}

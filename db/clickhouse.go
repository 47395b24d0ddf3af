package db

import (
	"context"
	"fmt"
	"time"

	"bundler/logger"
	"bundler/types"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/spf13/viper"
)

const DatabaseName = "bundler"

var tables = []string{"bundle_submissions"}

type ClickhouseDB struct {
	conn driver.Conn
}

// Enabled reports whether a ClickHouse address is configured.
func Enabled() bool {
	return viper.GetString("CLICKHOUSE_ADDR") != ""
}

func NewClickhouse() (*ClickhouseDB, error) {
	opts := &clickhouse.Options{
		Addr: []string{viper.GetString("CLICKHOUSE_ADDR")},
		Auth: clickhouse.Auth{
			Database: viper.GetString("CLICKHOUSE_DATABASE"),
			Username: viper.GetString("CLICKHOUSE_USERNAME"),
			Password: viper.GetString("CLICKHOUSE_PASSWORD"),
		},
		DialTimeout:  5 * time.Second,
		Compression:  &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		MaxOpenConns: 10,
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	return &ClickhouseDB{conn: conn}, nil
}

// Database interface implementation
func (d *ClickhouseDB) Close() error {
	return d.conn.Close()
}

func (d *ClickhouseDB) EnsureDatabaseExists() error {
	query := fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, DatabaseName)
	if err := d.conn.Exec(context.Background(), query); err != nil {
		return fmt.Errorf("failed to ensure database exists: %w", err)
	}
	logger.GlobalLogger.Info("Database ensured to exist", "database", DatabaseName)
	return nil
}

func (d *ClickhouseDB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS ` + DatabaseName + `.bundle_submissions
		(
			bundleId String,
			timestamp DateTime64(3),
			tipAccount String,
			tipLamports UInt64,
			txCount UInt32,
			signatures Array(String),
			status LowCardinality(String),
			slot UInt64,
			rejections UInt32,
			waitMs UInt64
		)
		ENGINE = ReplacingMergeTree
		ORDER BY (bundleId)
		SETTINGS index_granularity = 8192`,
	}

	for _, q := range queries {
		if err := d.conn.Exec(context.Background(), q); err != nil {
			return err
		}
		logger.GlobalLogger.Info("Check or create table in DB", "query", q)
	}
	return nil
}

// DropTables removes the history tables. The database itself is kept.
func (d *ClickhouseDB) DropTables() error {
	for _, t := range tables {
		q := fmt.Sprintf("DROP TABLE IF EXISTS %s.%s", DatabaseName, t)
		if err := d.conn.Exec(context.Background(), q); err != nil {
			return fmt.Errorf("drop table %s failed: %w", t, err)
		}
		logger.GlobalLogger.Info("Dropped table", "table", t)
	}
	return nil
}

func (d *ClickhouseDB) InsertBundleSubmissions(rows types.BundleSubmissions) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := d.conn.PrepareBatch(context.Background(), "INSERT INTO "+DatabaseName+".bundle_submissions")
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := batch.AppendStruct(row); err != nil {
			return err
		}
	}
	return batch.Send()
}

func (d *ClickhouseDB) QueryLatestSubmissions(limit uint) (types.BundleSubmissions, error) {
	var rows []types.BundleSubmission
	err := d.conn.Select(context.Background(), &rows,
		fmt.Sprintf(`SELECT * FROM %s.bundle_submissions FINAL ORDER BY timestamp DESC LIMIT %d`, DatabaseName, limit))
	if err != nil {
		return nil, fmt.Errorf("query latest submissions failed: %w", err)
	}

	res := make(types.BundleSubmissions, 0, len(rows))
	for i := range rows {
		res = append(res, &rows[i])
	}
	return res, nil
}

func (d *ClickhouseDB) QuerySubmission(bundleId string) (*types.BundleSubmission, error) {
	var rows []types.BundleSubmission
	err := d.conn.Select(context.Background(), &rows,
		fmt.Sprintf(`SELECT * FROM %s.bundle_submissions FINAL WHERE bundleId = ? LIMIT 1`, DatabaseName), bundleId)
	if err != nil {
		return nil, fmt.Errorf("query submission %s failed: %w", bundleId, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

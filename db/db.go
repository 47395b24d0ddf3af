package db

import (
	"bundler/types"
)

type Database interface {
	Close() error
	EnsureDatabaseExists() error
	CreateTables() error
	DropTables() error

	InsertBundleSubmissions(rows types.BundleSubmissions) error

	QueryLatestSubmissions(limit uint) (types.BundleSubmissions, error)
	QuerySubmission(bundleId string) (*types.BundleSubmission, error)
}

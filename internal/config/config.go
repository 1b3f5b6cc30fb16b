// Package config loads application settings from the environment
// and mapping profiles from disk.
package config

import (
	"fmt"
	"time"

	"github.com/BartekS5/assetimport/internal/etl"
	"github.com/BartekS5/assetimport/pkg/models"
)

// Store selects where committed assets are written.
type Store string

const (
	StoreNone      Store = "none"
	StoreMongo     Store = "mongo"
	StoreSQLServer Store = "sqlserver"
)

// Config holds all configuration for the application,
// typically loaded from environment variables.
type Config struct {
	Store Store

	MongoConnString string
	MongoDatabase   string
	MongoCollection string

	SQLConnString string
	SQLTable      string

	BatchSize    int
	PreviewLimit int
	EnumPolicy   models.EnumPolicy
	Timeout      time.Duration
}

// LoadConfig loads application settings from environment variables
// (which should be populated by the .env file in main.go).
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Store:           Store(envString("ASSET_STORE", string(StoreNone))),
		MongoConnString: envString("MONGO_CONNECTION_STRING", ""),
		MongoDatabase:   envString("MONGO_DATABASE", "assets"),
		MongoCollection: envString("MONGO_COLLECTION", "assets"),
		SQLConnString:   envString("SQL_CONNECTION_STRING", ""),
		SQLTable:        envString("SQL_TABLE", "assets"),
	}

	var err error
	if cfg.BatchSize, err = envInt("IMPORT_BATCH_SIZE", etl.DefaultBatchSize); err != nil {
		return nil, err
	}
	if cfg.PreviewLimit, err = envInt("IMPORT_PREVIEW_LIMIT", etl.DefaultPreviewLimit); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = envDuration("IMPORT_TIMEOUT", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.EnumPolicy, err = models.ParseEnumPolicy(envString("IMPORT_ENUM_POLICY", "")); err != nil {
		return nil, fmt.Errorf("IMPORT_ENUM_POLICY: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected store has what it needs to connect.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreNone:
	case StoreMongo:
		if c.MongoConnString == "" {
			return fmt.Errorf("MONGO_CONNECTION_STRING environment variable not set")
		}
	case StoreSQLServer:
		if c.SQLConnString == "" {
			return fmt.Errorf("SQL_CONNECTION_STRING environment variable not set")
		}
	default:
		return fmt.Errorf("unknown ASSET_STORE %q (want none, mongo or sqlserver)", c.Store)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.PreviewLimit <= 0 {
		return fmt.Errorf("IMPORT_PREVIEW_LIMIT must be positive, got %d", c.PreviewLimit)
	}
	return nil
}

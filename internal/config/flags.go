package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a remote API base URL
//	-k API key
//	-u user id of the personal library owner
//	-d local database path
//	-f file store directory
//	-c/-config json file path with configs
//	-request-timeout per-request timeout (e.g., "30s")
//	-transfer-timeout whole-transfer timeout for uploads (e.g., "5m")
//	-sync-interval periodic sync interval (e.g., "5m")
func ParseFlags() *StructuredConfig {
	var apiURL string
	var apiKey string
	var userID int64
	var databaseDSN string
	var filesDir string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var transferTimeout time.Duration
	var syncInterval time.Duration

	flag.StringVar(&apiURL, "a", "", "Remote API base URL")
	flag.StringVar(&apiKey, "k", "", "API key")
	flag.Int64Var(&userID, "u", 0, "User id")
	flag.StringVar(&databaseDSN, "d", "", "Local database path")
	flag.StringVar(&filesDir, "f", "", "File store directory")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s)")
	flag.DurationVar(&transferTimeout, "transfer-timeout", 0, "Transfer timeout (e.g., 5m)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval (e.g., 5m)")

	flag.Parse()

	return &StructuredConfig{
		API: API{
			BaseURL:         apiURL,
			Key:             apiKey,
			UserID:          userID,
			RequestTimeout:  requestTimeout,
			TransferTimeout: transferTimeout,
		},
		Storage: Storage{
			DB:    DB{DSN: databaseDSN},
			Files: Files{Dir: filesDir},
		},
		Workers:      Workers{SyncInterval: syncInterval},
		JSONFilePath: jsonConfigPath,
	}
}

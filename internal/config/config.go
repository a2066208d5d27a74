// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// StructuredConfig is the top-level configuration container for bibsync.
// It is populated by merging values from environment variables,
// command-line flags, and an optional JSON file (later sources win).
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// API holds remote API endpoint and credential settings.
	API API `envPrefix:"API_"`

	// Storage holds the local sqlite database and file store settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds retry tables, batch sizes and concurrency limits for the
	// sync controller.
	Sync Sync `envPrefix:"SYNC_"`

	// Workers holds background job settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file,
	// populated via the CONFIG environment variable or the -c/-config flag.
	JSONFilePath string `env:"CONFIG"`
}

// API holds settings of the remote multi-tenant API.
type API struct {
	// BaseURL is the root URL of the remote API.
	BaseURL string `env:"URL"`

	// Key is the static API key attached to every request.
	Key string `env:"KEY"`

	// UserID identifies the personal library owner on the server.
	UserID int64 `env:"USER_ID"`

	// RequestTimeout bounds every metadata request.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// TransferTimeout bounds a whole attachment transfer; it is
	// deliberately much longer than RequestTimeout.
	TransferTimeout time.Duration `env:"TRANSFER_TIMEOUT"`
}

// Storage groups local persistence settings.
type Storage struct {
	// DB holds the local sqlite database settings.
	DB DB `envPrefix:"DB_"`

	// Files holds the file store settings.
	Files Files `envPrefix:"FILES_"`
}

// DB contains local database connection settings.
type DB struct {
	// DSN is the sqlite database path.
	DSN string `env:"DSN"`
}

// Files contains file store settings: attachment bytes, cached remote JSON
// and the persisted background-upload task state all live under Dir.
type Files struct {
	// Dir is the base directory of the file store.
	Dir string `env:"DIR"`

	// UploadStateFile is the path of the persisted background-upload task
	// mapping. Defaults to "<Dir>/uploads.json" when empty.
	UploadStateFile string `env:"UPLOAD_STATE_FILE"`
}

// Sync holds tuning knobs of the sync controller. The retry interval
// tables are a required configuration input: the number of entries bounds
// the number of attempts, the values are the waits between them.
type Sync struct {
	// RetryIntervals is the wait table for transient sync failures.
	RetryIntervals []time.Duration `env:"RETRY_INTERVALS" envSeparator:","`

	// ConflictRetryIntervals is the wait table for conflict-resolution
	// retries; exhausting it triggers the revert fallback.
	ConflictRetryIntervals []time.Duration `env:"CONFLICT_RETRY_INTERVALS" envSeparator:","`

	// BatchSize is the maximum number of objects per fetch and per submit
	// request.
	BatchSize int `env:"BATCH_SIZE"`

	// MaxParallelLibraries bounds how many libraries sync concurrently.
	MaxParallelLibraries int `env:"MAX_PARALLEL_LIBRARIES"`

	// BackgroundUploadThreshold is the attachment size in bytes above
	// which the transfer is handed to the background upload coordinator
	// instead of running inside the sync pass.
	BackgroundUploadThreshold int64 `env:"BACKGROUND_UPLOAD_THRESHOLD"`
}

// Workers contains background job settings.
type Workers struct {
	// SyncInterval defines how often the periodic sync job runs.
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// Duration wraps time.Duration so JSON configs can use "30s"-style strings.
type Duration time.Duration

// UnmarshalJSON accepts either a duration string ("1m30s") or a number of
// nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}
	*d = Duration(n)
	return nil
}

// GetStructuredConfig assembles the final configuration: environment
// variables first, command-line flags on top, then the optional JSON file,
// merged with mergo and validated.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}

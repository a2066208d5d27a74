package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// string-friendly durations, so config files can write "30s" instead of
// nanosecond counts.
type StructuredJSONConfig struct {
	API struct {
		BaseURL         string   `json:"base_url"`
		Key             string   `json:"key"`
		UserID          int64    `json:"user_id"`
		RequestTimeout  Duration `json:"request_timeout"`
		TransferTimeout Duration `json:"transfer_timeout"`
	} `json:"api,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Files struct {
			Dir             string `json:"dir"`
			UploadStateFile string `json:"upload_state_file"`
		} `json:"files,omitempty"`
	} `json:"storage,omitempty"`

	Sync struct {
		RetryIntervals            []Duration `json:"retry_intervals"`
		ConflictRetryIntervals    []Duration `json:"conflict_retry_intervals"`
		BatchSize                 int        `json:"batch_size"`
		MaxParallelLibraries      int        `json:"max_parallel_libraries"`
		BackgroundUploadThreshold int64      `json:"background_upload_threshold"`
	} `json:"sync,omitempty"`

	Workers struct {
		SyncInterval Duration `json:"sync_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err = json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json config: %w", err)
	}

	cfg := &StructuredConfig{
		API: API{
			BaseURL:         jsonCfg.API.BaseURL,
			Key:             jsonCfg.API.Key,
			UserID:          jsonCfg.API.UserID,
			RequestTimeout:  time.Duration(jsonCfg.API.RequestTimeout),
			TransferTimeout: time.Duration(jsonCfg.API.TransferTimeout),
		},
		Storage: Storage{
			DB: DB{DSN: jsonCfg.Storage.DB.DSN},
			Files: Files{
				Dir:             jsonCfg.Storage.Files.Dir,
				UploadStateFile: jsonCfg.Storage.Files.UploadStateFile,
			},
		},
		Sync: Sync{
			RetryIntervals:            durations(jsonCfg.Sync.RetryIntervals),
			ConflictRetryIntervals:    durations(jsonCfg.Sync.ConflictRetryIntervals),
			BatchSize:                 jsonCfg.Sync.BatchSize,
			MaxParallelLibraries:      jsonCfg.Sync.MaxParallelLibraries,
			BackgroundUploadThreshold: jsonCfg.Sync.BackgroundUploadThreshold,
		},
		Workers: Workers{SyncInterval: time.Duration(jsonCfg.Workers.SyncInterval)},
	}

	return cfg, nil
}

func durations(in []Duration) []time.Duration {
	if len(in) == 0 {
		return nil
	}
	out := make([]time.Duration, len(in))
	for i, d := range in {
		out[i] = time.Duration(d)
	}
	return out
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

package config

import (
	"path/filepath"
	"strings"
	"time"
)

// applyDefaults fills in every tuning knob the operator left unset. The
// retry interval tables are product/ops tuning values; these defaults are
// starting points, not invariants.
func (cfg *StructuredConfig) applyDefaults() {
	if len(cfg.Sync.RetryIntervals) == 0 {
		cfg.Sync.RetryIntervals = []time.Duration{
			2 * time.Second, 5 * time.Second, 10 * time.Second,
			30 * time.Second, time.Minute,
		}
	}
	if len(cfg.Sync.ConflictRetryIntervals) == 0 {
		cfg.Sync.ConflictRetryIntervals = []time.Duration{
			time.Second, 2 * time.Second, 5 * time.Second,
		}
	}
	if cfg.Sync.BatchSize <= 0 {
		cfg.Sync.BatchSize = 50
	}
	if cfg.Sync.MaxParallelLibraries <= 0 {
		cfg.Sync.MaxParallelLibraries = 4
	}
	if cfg.Sync.BackgroundUploadThreshold <= 0 {
		cfg.Sync.BackgroundUploadThreshold = 8 << 20 // 8 MiB
	}
	if cfg.API.RequestTimeout <= 0 {
		cfg.API.RequestTimeout = 30 * time.Second
	}
	if cfg.API.TransferTimeout <= 0 {
		cfg.API.TransferTimeout = 5 * time.Minute
	}
	if cfg.Workers.SyncInterval <= 0 {
		cfg.Workers.SyncInterval = 5 * time.Minute
	}
	if cfg.Storage.Files.UploadStateFile == "" && cfg.Storage.Files.Dir != "" {
		cfg.Storage.Files.UploadStateFile = filepath.Join(cfg.Storage.Files.Dir, "uploads.json")
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.API.BaseURL == "" || cfg.API.Key == "" || cfg.API.UserID == 0 {
		return ErrInvalidAPIConfigs
	}

	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Storage.Files.Dir == "" {
		return ErrInvalidStorageConfigs
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/ObjectiveCharm/bibsync/internal/adapter"
	"github.com/ObjectiveCharm/bibsync/internal/background"
	"github.com/ObjectiveCharm/bibsync/internal/config"
	"github.com/ObjectiveCharm/bibsync/internal/files"
	"github.com/ObjectiveCharm/bibsync/internal/logger"
	"github.com/ObjectiveCharm/bibsync/internal/store"
	"github.com/ObjectiveCharm/bibsync/internal/syncer"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewFileLogger("bibsync")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storages, err := store.NewStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	fileStore, err := files.NewStorage(cfg.Storage.Files.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating file store")
	}

	api := adapter.NewHTTPClient(adapter.HTTPClientConfig{
		BaseURL:         cfg.API.BaseURL,
		APIKey:          cfg.API.Key,
		RequestTimeout:  cfg.API.RequestTimeout,
		TransferTimeout: cfg.API.TransferTimeout,
	})

	session := background.NewHTTPSession(api, 0, log)
	uploader, err := background.NewCoordinator(
		cfg.Storage.Files.UploadStateFile,
		session,
		syncer.NewRegisterUploadFunc(api, storages.Uploads),
		log,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating upload coordinator")
	}
	session.SetDelegate(uploader)

	if err = uploader.Recover(); err != nil {
		log.Err(err).Msg("error recovering background uploads")
	}

	controller := syncer.NewController(api, storages, fileStore, uploader, syncer.Config{
		UserID:                    cfg.API.UserID,
		RetryIntervals:            cfg.Sync.RetryIntervals,
		ConflictRetryIntervals:    cfg.Sync.ConflictRetryIntervals,
		BatchSize:                 cfg.Sync.BatchSize,
		MaxParallelLibraries:      cfg.Sync.MaxParallelLibraries,
		BackgroundUploadThreshold: cfg.Sync.BackgroundUploadThreshold,
	}, log)

	report := controller.Sync(ctx, syncer.TypeFull, nil)
	if report.AbortError != nil {
		log.Fatal().Err(report.AbortError).Msg("sync aborted")
	}
	for kind, failures := range report.Failures {
		for _, failure := range failures {
			log.Warn().
				Str("kind", string(kind)).
				Str("key", failure.Key).
				Str("error", failure.Message).
				Msg("sync failure")
		}
	}

	job := syncer.NewJob(controller)
	job.Start(ctx, cfg.Workers.SyncInterval)

	<-ctx.Done()
	job.Stop()
	log.Info().Msg("bibsync stopped")
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}

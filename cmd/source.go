package cmd

import (
	"context"
	"fmt"

	"asset-binder/core/binding"
	"asset-binder/core/config"
	"asset-binder/core/database"
	"asset-binder/core/logger"
	"asset-binder/core/storage"
	"asset-binder/feature/importconfig"

	"go.uber.org/zap"
)

// loadRuntime loads the configuration and builds the logger.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, l, nil
}

// openSource connects the configured import backend.
func openSource(ctx context.Context, cfg *config.Config, l *zap.Logger) (importconfig.Source, error) {
	switch cfg.Binding.Backend {
	case binding.BackendStorage:
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return nil, err
		}
		l.Info("Using storage import backend",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("prefix", cfg.Binding.Prefix),
		)
		return importconfig.NewObjectSource(client, cfg.Storage.Bucket, cfg.Binding.Prefix, l), nil

	default:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := importconfig.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate import tables: %w", err)
		}
		if err := importconfig.CheckSchema(db); err != nil {
			return nil, err
		}
		l.Info("Using database import backend", zap.String("driver", cfg.Database.Driver))
		return importconfig.NewDBSource(db, l), nil
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"

	"cover-manager/core/auth"
	"cover-manager/core/clients/catalog"
	"cover-manager/core/clients/loader"
	"cover-manager/core/clients/resolver"
	"cover-manager/core/config"
	"cover-manager/core/database"
	"cover-manager/core/logger"
	"cover-manager/core/retry"
	"cover-manager/core/storage"
	"cover-manager/feature/covers"
	"cover-manager/feature/history"
	"cover-manager/feature/integrity"

	"go.uber.org/zap"
)

// cliSession is the session id used by command line invocations.
const cliSession = "cli"

// application bundles the wired services shared by the commands.
type application struct {
	cfg       *config.Config
	logger    *zap.Logger
	covers    *covers.Feature
	history   *history.Feature
	integrity *integrity.Feature
}

// loadApplication reads the configuration and builds the logger.
func loadApplication() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logg, nil
}

// wire connects the clients and optional stores and builds the features.
// The history database and the staging store are optional: a failure only
// disables them.
func wire(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*application, error) {
	policy := retry.NewPolicy(cfg.Retry, logg)
	tokens := auth.New(cfg.Auth)

	catalogClient := catalog.New(cfg.Catalog, tokens, policy, logg)
	resolverClient := resolver.New(cfg.Resolver, policy, logg)
	loaderClient := loader.New(cfg.Loader, tokens, catalogClient, logg)

	deps := covers.Dependencies{
		Catalog:  catalogClient,
		Resolver: resolverClient,
		Covers:   loaderClient,
		Schema:   cfg.Schema,
		ViewLink: cfg.Server.ViewLink,
		Logger:   logg,
	}

	db, err := database.Connect(cfg.Database)
	switch {
	case errors.Is(err, database.ErrDisabled):
		logg.Debug("History database disabled")
	case err != nil:
		logg.Warn("Optional database connection failed", zap.Error(err))
	}

	hist, err := history.NewFeature(db, logg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	if repo := hist.Repository(); repo != nil {
		deps.Recorder = repo
		logg.Info("Connected to history database", zap.String("driver", cfg.Database.Driver))
	}

	store, err := storage.NewClient(cfg.Storage)
	switch {
	case errors.Is(err, storage.ErrDisabled):
		logg.Debug("Staging store disabled")
	case err != nil:
		logg.Warn("Failed to create storage client", zap.Error(err))
	default:
		if err := storage.EnsureBucket(ctx, store, cfg.Storage.Bucket); err != nil {
			logg.Warn("Staging bucket unavailable", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		} else {
			deps.Storage = store
			deps.Bucket = cfg.Storage.Bucket
		}
	}

	return &application{
		cfg:       cfg,
		logger:    logg,
		covers:    covers.NewFeature(deps),
		history:   hist,
		integrity: integrity.NewFeature(deps.Storage, deps.Bucket, db, catalogClient, logg),
	}, nil
}

// setup loads the configuration and wires the application.
func setup(ctx context.Context) (*application, error) {
	cfg, logg, err := loadApplication()
	if err != nil {
		return nil, err
	}
	return wire(ctx, cfg, logg)
}

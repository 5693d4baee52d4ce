package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cliptray/cliptray/internal/bus"
	"github.com/cliptray/cliptray/internal/config"
	"github.com/cliptray/cliptray/internal/export"
	"github.com/cliptray/cliptray/internal/library"
	"github.com/cliptray/cliptray/internal/migrate"
	"github.com/cliptray/cliptray/internal/screenshot"
	"github.com/cliptray/cliptray/internal/store/file"
)

// appEnv is everything a command needs to work with the library.
type appEnv struct {
	cfgPath string
	cfg     *config.Config
	bus     *bus.Bus
	mirror  *export.Mirror
	shots   *screenshot.Store
	lib     *library.Library
}

// loadConfig loads the config or exits with a readable message.
func loadConfig() (string, *config.Config) {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %s\n", err)
		os.Exit(1)
	}
	return cfgPath, cfg
}

// openApp loads the config, migrates legacy data files and opens the stores.
func openApp(ctx context.Context) (*appEnv, error) {
	cfgPath, cfg := loadConfig()

	report := migrate.Run(ctx, migrate.DefaultMoves(cfg))
	if n := report.Moved(); n > 0 {
		slog.Info("migrated legacy data files", "count", n, "to", cfg.DataPath())
	}
	if err := report.Err(); err != nil {
		slog.Warn("legacy data migration incomplete", "error", err)
	}

	stores, err := file.NewFileStores(cfg.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("open stores: %w", err)
	}

	b := bus.New()
	mirror := export.NewMirror(export.Options{
		CacheSize: cfg.Mirror.CacheSize,
		S3:        mirrorS3Options(cfg),
	})

	return &appEnv{
		cfgPath: cfgPath,
		cfg:     cfg,
		bus:     b,
		mirror:  mirror,
		shots:   screenshot.NewStore(cfg.ScreenshotsDir(), cfg.Screenshots.MaxDimension),
		lib:     library.New(stores, library.Options{Mirror: mirror, Bus: b}),
	}, nil
}

func mirrorS3Options(cfg *config.Config) export.S3Options {
	return export.S3Options{
		Region:         cfg.Mirror.S3Region,
		Endpoint:       cfg.Mirror.S3Endpoint,
		ForcePathStyle: cfg.Mirror.S3ForcePathStyle,
		AccessKeyID:    cfg.Mirror.S3AccessKeyID,
		SecretKey:      cfg.Mirror.S3SecretKey,
	}
}

// mustOpenApp is openApp for commands that cannot continue without the library.
func mustOpenApp(ctx context.Context) *appEnv {
	env, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", formatError(err))
		os.Exit(1)
	}
	return env
}

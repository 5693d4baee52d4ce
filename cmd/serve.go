package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cliptray/cliptray/internal/config"
	"github.com/cliptray/cliptray/internal/desktop"
	httpapi "github.com/cliptray/cliptray/internal/http"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ingestion server without the desktop window",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			env := mustOpenApp(ctx)
			if err := runServer(ctx, env); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", formatError(err))
				os.Exit(1)
			}
		},
	}
}

// runServer serves the ingestion endpoint and watches the config file until
// ctx is cancelled.
func runServer(ctx context.Context, env *appEnv) error {
	shutdownOTel := initOTelExporter(ctx, env.cfg)
	defer shutdownOTel()

	srv := httpapi.NewServer(env.lib, env.shots, env.bus, env.cfg.ServerSnapshot())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(ctx)
	})
	g.Go(func() error {
		watchConfig(ctx, env, srv)
		return nil
	})
	return g.Wait()
}

// watchConfig applies config file edits to the running server.
func watchConfig(ctx context.Context, env *appEnv, srv *httpapi.Server) {
	w := config.NewWatcher(env.cfgPath, env.cfg, func(next *config.Config) {
		before := env.cfg.DataPath()
		env.cfg.ReplaceFrom(next)
		srv.ApplyConfig(env.cfg.ServerSnapshot())
		env.mirror.Reconfigure(mirrorS3Options(env.cfg))
		if env.cfg.DataPath() != before {
			slog.Warn("dataDir changed; restart cliptray to use the new location", "dataDir", env.cfg.DataPath())
		}
		slog.Info("config reloaded", "hash", env.cfg.Hash())
	})
	if err := w.Run(ctx); err != nil {
		slog.Warn("config hot reload unavailable", "error", err)
	}
}

// runDesktop runs the ingestion server in the background and the desktop
// window on the main goroutine. Closing the window stops the server.
func runDesktop() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := mustOpenApp(ctx)

	serverCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- runServer(serverCtx, env) }()

	app := desktop.NewApp(env.lib, env.shots, env.bus)
	if err := desktop.Run(app, env.cfg.Desktop); err != nil {
		slog.Error("desktop shell failed", "error", err)
	}

	cancel()
	if err := <-errCh; err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", formatError(err))
		os.Exit(1)
	}
}

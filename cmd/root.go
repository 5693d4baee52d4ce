package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cliptray/cliptray/internal/config"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "cliptray",
	Short: "Clip manager for AI chat transcripts",
	Long: `Cliptray collects clips pushed by the browser extension into sections,
mirrors them into per-section export folders and shows them in a desktop window.

Running cliptray without a subcommand opens the desktop window and starts the
local ingestion server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadDotEnv()
		setupLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		runDesktop()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.cliptray/config.json, or $CLIPTRAY_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(sectionsCmd())
	rootCmd.AddCommand(clipsCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(doctorCmd())
	rootCmd.AddCommand(onboardCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cliptray %s\n", Version)
		},
	}
}

// resolveConfigPath returns the config path from --config, $CLIPTRAY_CONFIG
// or the default location.
func resolveConfigPath() string {
	return config.ResolvePath(cfgFile)
}

// loadDotEnv reads a .env file from the working directory when present, so
// CLIPTRAY_* overrides can live next to a portable install.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: .env: %s\n", err)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if logJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

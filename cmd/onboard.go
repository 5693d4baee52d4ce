package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cliptray/cliptray/internal/config"
	"github.com/cliptray/cliptray/internal/crypto"
)

func onboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "onboard",
		Short: "Interactive setup wizard: data folder, export folder, ingestion server",
		Run: func(cmd *cobra.Command, args []string) {
			runOnboard()
		},
	}
}

func runOnboard() {
	cfgPath := resolveConfigPath()

	cfg := config.Default()
	if _, err := os.Stat(cfgPath); err == nil {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Existing config is invalid, starting from defaults: %s\n", err)
		} else {
			cfg = loaded
		}
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		if err := config.Save(cfgPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("No terminal detected. Wrote default config to %s\n", cfgPath)
		return
	}

	fmt.Println("╔══════════════════════════════════════════════╗")
	fmt.Println("║            Cliptray  Setup Wizard            ║")
	fmt.Println("╚══════════════════════════════════════════════╝")
	fmt.Println()

	if err := onboardPrompts(cfg); err != nil {
		fmt.Println("Setup cancelled.")
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %s\n", err)
		os.Exit(1)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %s\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("Saved %s\n", cfgPath)
	fmt.Println("Start cliptray with:  cliptray")
	fmt.Println("Headless server:      cliptray serve")
}

func onboardPrompts(cfg *config.Config) error {
	var err error

	if cfg.DataDir, err = promptString("Data folder", "Where clips.json, tabs.json and screenshots live", cfg.DataDir); err != nil {
		return err
	}
	if cfg.ExportBase, err = promptString("Export folder", "Default parent folder for per-section mirrors", cfg.ExportBase); err != nil {
		return err
	}

	portStr, err := promptString("Ingestion port", "The browser extension posts clips to http://127.0.0.1:<port>/add-clip", strconv.Itoa(cfg.Server.Port), validatePort)
	if err != nil {
		return err
	}
	cfg.Server.Port, _ = strconv.Atoi(strings.TrimSpace(portStr))

	origins, err := promptString("Allowed sites", "Comma-separated origins allowed to post clips", strings.Join(cfg.Server.AllowedOrigins, ", "), validateOrigins)
	if err != nil {
		return err
	}
	cfg.Server.AllowedOrigins = config.NormalizeOrigins(strings.Split(origins, ","))

	if cfg.Server.AllowExtensionOrigins, err = promptConfirm("Accept requests from browser extensions?", cfg.Server.AllowExtensionOrigins); err != nil {
		return err
	}

	target, err := promptSelect("Where should section mirrors go by default?", []SelectOption[string]{
		{Label: "Local folders only", Value: "local"},
		{Label: "Local folders, plus S3-compatible storage for s3:// export paths", Value: "s3"},
	}, 0)
	if err != nil {
		return err
	}
	if target == "s3" {
		return onboardS3(cfg)
	}
	return nil
}

func onboardS3(cfg *config.Config) error {
	var err error
	if cfg.Mirror.S3Region, err = promptString("S3 region", "", firstNonEmpty(cfg.Mirror.S3Region, "us-east-1")); err != nil {
		return err
	}
	if cfg.Mirror.S3Endpoint, err = promptString("S3 endpoint", "Leave empty for AWS; set for MinIO or R2", cfg.Mirror.S3Endpoint); err != nil {
		return err
	}
	if cfg.Mirror.S3Endpoint != "" {
		cfg.Mirror.S3ForcePathStyle = true
	}
	if cfg.Mirror.S3AccessKeyID, err = promptString("Access key ID", "Leave empty to use the default AWS credential chain", cfg.Mirror.S3AccessKeyID); err != nil {
		return err
	}
	if cfg.Mirror.S3AccessKeyID != "" {
		if cfg.Mirror.S3SecretKey, err = promptPassword("Secret access key", "Stored in the config file (mode 0600)"); err != nil {
			return err
		}
		if crypto.ResolveKey() == "" && cfg.Mirror.S3SecretKey != "" {
			seal, err := promptConfirm("Seal the secret with a key kept in the OS keychain?", true)
			if err != nil {
				return err
			}
			if seal {
				if _, err := crypto.CreateKeychainKey(); err != nil {
					fmt.Fprintf(os.Stderr, "Keychain unavailable, secret stays in plain text: %s\n", err)
				}
			}
		}
	}
	return nil
}

func validatePort(s string) error {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port <= 0 || port > 65535 {
		return errors.New("enter a port between 1 and 65535")
	}
	return nil
}

func validateOrigins(s string) error {
	for _, o := range strings.Split(s, ",") {
		if strings.TrimSpace(o) != "" && !config.IsValidOrigin(o) {
			return fmt.Errorf("%q is not an origin like https://chatgpt.com", strings.TrimSpace(o))
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

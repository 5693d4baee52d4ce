package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cliptray/cliptray/internal/config"
	"github.com/cliptray/cliptray/internal/crypto"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and check config.json",
	}
	cmd.AddCommand(configShowCmd(), configPathCmd(), configValidateCmd(), configSealCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Long:  "Prints config.json after CLIPTRAY_* environment overrides are applied.",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading config: %s\n", err)
				os.Exit(1)
			}
			out := outputFlags{json: !asYAML, yaml: asYAML}
			out.structured(os.Stdout, redactConfig(cfg))
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "output as YAML")
	return cmd
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(resolveConfigPath())
		},
	}
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check config.json for errors",
		Run: func(cmd *cobra.Command, args []string) {
			cfgPath := resolveConfigPath()
			if _, err := os.Stat(cfgPath); err != nil {
				fmt.Printf("No config at %s; defaults apply.\n", cfgPath)
				return
			}
			if _, err := config.Load(cfgPath); err != nil {
				fmt.Fprintf(os.Stderr, "Invalid config: %s\n", err)
				os.Exit(1)
			}
			fmt.Printf("Config at %s is valid.\n", cfgPath)
		},
	}
}

func configSealCmd() *cobra.Command {
	var keychain bool
	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Rewrite config.json with the S3 secret sealed",
		Long: `Seals mirror.s3SecretKey with AES-256-GCM. The key comes from
CLIPTRAY_ENCRYPTION_KEY or, failing that, the OS keychain. Pass --keychain to
create a keychain key when none exists.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading config: %s\n", err)
				os.Exit(1)
			}
			if cfg.Mirror.S3SecretKey == "" {
				fmt.Println("No S3 secret configured; nothing to seal.")
				return
			}
			if crypto.ResolveKey() == "" {
				if !keychain {
					fmt.Fprintf(os.Stderr, "No sealing key. Set %s or pass --keychain.\n", crypto.KeyEnv)
					os.Exit(1)
				}
				if _, err := crypto.CreateKeychainKey(); err != nil {
					fmt.Fprintf(os.Stderr, "Error: %s\n", err)
					os.Exit(1)
				}
			}
			if err := config.Save(cfgPath, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "Error saving config: %s\n", err)
				os.Exit(1)
			}
			fmt.Printf("Sealed mirror.s3SecretKey in %s\n", cfgPath)
		},
	}
	cmd.Flags().BoolVar(&keychain, "keychain", false, "create a key in the OS keychain if none is set")
	return cmd
}

// redactConfig returns the config as a generic map with secrets masked.
func redactConfig(cfg *config.Config) map[string]any {
	data, _ := json.Marshal(cfg)
	var raw map[string]any
	json.Unmarshal(data, &raw)
	redactMap(raw)
	return raw
}

// secretKeys are matched case-insensitively at any depth.
var secretKeys = []string{"s3secretkey", "s3accesskeyid", "authorization", "token", "secret", "apikey"}

func isSecretKey(k string) bool {
	k = strings.ToLower(k)
	for _, s := range secretKeys {
		if k == s {
			return true
		}
	}
	return false
}

func redactMap(m map[string]any) {
	for k, v := range m {
		switch v := v.(type) {
		case map[string]any:
			redactMap(v)
		case string:
			if v != "" && isSecretKey(k) {
				m[k] = mask(v)
			}
		}
	}
}

// mask keeps the first and last four characters of long values.
func mask(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

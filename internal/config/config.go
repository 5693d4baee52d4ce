package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/titanous/json5"

	"github.com/cliptray/cliptray/internal/crypto"
	"github.com/cliptray/cliptray/internal/store"
)

// Default locations. "~" is expanded against the user's home directory.
const (
	DefaultRoot       = "~/.cliptray"
	DefaultConfigPath = "~/.cliptray/config.json"
	DefaultDataDir    = "~/.cliptray/data"
	DefaultExportBase = "~/Documents/Cliptray"
)

// Config is the root configuration document (config.json, JSON5 accepted).
type Config struct {
	// Root is the application directory. Legacy documents are migrated from
	// here into DataDir, and export paths pointing at it are redirected.
	Root string `json:"root"`
	// DataDir holds clips.json, tabs.json, settings.json and screenshots/.
	DataDir string `json:"dataDir"`
	// ExportBase is the parent of the canonical per-section export folders.
	ExportBase string `json:"exportBase"`

	Server      ServerConfig      `json:"server"`
	Mirror      MirrorConfig      `json:"mirror"`
	Screenshots ScreenshotsConfig `json:"screenshots"`
	Desktop     DesktopConfig     `json:"desktop"`
	Telemetry   TelemetryConfig   `json:"telemetry"`

	mu sync.RWMutex
}

// ServerConfig configures the local ingestion endpoint.
type ServerConfig struct {
	Host                  string   `json:"host"`
	Port                  int      `json:"port"`
	MaxBodyBytes          int64    `json:"maxBodyBytes"`
	AllowedOrigins        []string `json:"allowedOrigins"`
	AllowExtensionOrigins bool     `json:"allowExtensionOrigins"`
	RateLimitRPM          int      `json:"rateLimitRPM"` // 0 = disabled
}

// MirrorConfig configures the export mirror. S3 settings apply to sections
// whose export path is an s3://bucket/prefix URL.
type MirrorConfig struct {
	CacheSize        int    `json:"cacheSize"`
	S3Region         string `json:"s3Region,omitempty"`
	S3Endpoint       string `json:"s3Endpoint,omitempty"`
	S3ForcePathStyle bool   `json:"s3ForcePathStyle,omitempty"`
	S3AccessKeyID    string `json:"s3AccessKeyId,omitempty"`
	S3SecretKey      string `json:"s3SecretKey,omitempty"`
}

type ScreenshotsConfig struct {
	MaxDimension int `json:"maxDimension"`
}

type DesktopConfig struct {
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// TelemetryConfig configures OTLP trace export (binaries built with -tags otel).
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled"`
	Endpoint    string            `json:"endpoint,omitempty"`
	Protocol    string            `json:"protocol,omitempty"` // "grpc" (default) or "http"
	Insecure    bool              `json:"insecure,omitempty"`
	ServiceName string            `json:"serviceName,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	// SampleRatio keeps this fraction of traces; 0 or 1 keeps all.
	SampleRatio float64 `json:"sampleRatio,omitempty"`
}

// Default returns a config with every field set to its default.
func Default() *Config {
	return &Config{
		Root:       DefaultRoot,
		DataDir:    DefaultDataDir,
		ExportBase: DefaultExportBase,
		Server: ServerConfig{
			Host:                  "127.0.0.1",
			Port:                  3030,
			MaxBodyBytes:          1 << 20,
			AllowedOrigins:        []string{"https://chatgpt.com", "https://chat.openai.com"},
			AllowExtensionOrigins: true,
			RateLimitRPM:          120,
		},
		Mirror:      MirrorConfig{CacheSize: 512},
		Screenshots: ScreenshotsConfig{MaxDimension: 2560},
		Desktop:     DesktopConfig{Title: "Cliptray", Width: 1100, Height: 760},
		Telemetry:   TelemetryConfig{Protocol: "grpc", ServiceName: "cliptray"},
	}
}

// Load reads the config at path over the defaults. A missing file is not an
// error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := json5.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		secret, err := openSecret(cfg.Mirror.S3SecretKey)
		if err != nil {
			return nil, fmt.Errorf("mirror.s3SecretKey: %w", err)
		}
		cfg.Mirror.S3SecretKey = secret
	}

	cfg.ApplyEnvOverrides()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as indented JSON, creating the parent directory. When a
// sealing key is available (CLIPTRAY_ENCRYPTION_KEY or the OS keychain) the
// S3 secret is sealed on disk.
func Save(path string, cfg *Config) error {
	cfg.mu.Lock()
	plain := cfg.Mirror.S3SecretKey
	sealed, err := sealSecret(plain)
	if err != nil {
		cfg.mu.Unlock()
		return fmt.Errorf("seal mirror.s3SecretKey: %w", err)
	}
	cfg.Mirror.S3SecretKey = sealed
	data, err := json.MarshalIndent(cfg, "", "  ")
	cfg.Mirror.S3SecretKey = plain
	cfg.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

// The keychain is consulted only when there is a secret to seal or unseal.
func sealSecret(v string) (string, error) {
	if v == "" || crypto.IsSealed(v) {
		return v, nil
	}
	return crypto.Seal(v, crypto.ResolveKey())
}

func openSecret(v string) (string, error) {
	if !crypto.IsSealed(v) {
		return v, nil
	}
	return crypto.Open(v, crypto.ResolveKey())
}

// ApplyEnvOverrides applies CLIPTRAY_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	c.mu.Lock()
	defer c.mu.Unlock()

	envStr := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	envStr("CLIPTRAY_ROOT", &c.Root)
	envStr("CLIPTRAY_DATA_DIR", &c.DataDir)
	envStr("CLIPTRAY_EXPORT_BASE", &c.ExportBase)
	envStr("CLIPTRAY_HOST", &c.Server.Host)
	envStr("CLIPTRAY_S3_ACCESS_KEY_ID", &c.Mirror.S3AccessKeyID)
	envStr("CLIPTRAY_S3_SECRET_KEY", &c.Mirror.S3SecretKey)
	envStr("CLIPTRAY_OTEL_ENDPOINT", &c.Telemetry.Endpoint)

	if v := os.Getenv("CLIPTRAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if c.Telemetry.Endpoint != "" && os.Getenv("CLIPTRAY_OTEL_ENDPOINT") != "" {
		c.Telemetry.Enabled = true
	}
}

// Validate reports settings the server cannot run with.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.maxBodyBytes must be positive"))
	}
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, fmt.Errorf("dataDir is required"))
	}
	for _, o := range c.Server.AllowedOrigins {
		if !IsValidOrigin(o) {
			errs = append(errs, fmt.Errorf("server.allowedOrigins: invalid origin %q", o))
		}
	}
	switch c.Telemetry.Protocol {
	case "", "grpc", "http":
	default:
		errs = append(errs, fmt.Errorf("telemetry.protocol %q: want grpc or http", c.Telemetry.Protocol))
	}
	return errors.Join(errs...)
}

func (c *Config) normalize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Server.AllowedOrigins = NormalizeOrigins(c.Server.AllowedOrigins)
	if c.Root == "" {
		c.Root = DefaultRoot
	}
	if c.ExportBase == "" {
		c.ExportBase = DefaultExportBase
	}
	if c.Mirror.CacheSize <= 0 {
		c.Mirror.CacheSize = 512
	}
	if c.Screenshots.MaxDimension <= 0 {
		c.Screenshots.MaxDimension = 2560
	}
}

// ReplaceFrom copies every setting from src, keeping c's identity so that
// components holding the pointer observe the reload.
func (c *Config) ReplaceFrom(src *Config) {
	src.mu.RLock()
	snapshot := Config{
		Root:        src.Root,
		DataDir:     src.DataDir,
		ExportBase:  src.ExportBase,
		Server:      src.Server,
		Mirror:      src.Mirror,
		Screenshots: src.Screenshots,
		Desktop:     src.Desktop,
		Telemetry:   src.Telemetry,
	}
	snapshot.Server.AllowedOrigins = append([]string{}, src.Server.AllowedOrigins...)
	src.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.Root = snapshot.Root
	c.DataDir = snapshot.DataDir
	c.ExportBase = snapshot.ExportBase
	c.Server = snapshot.Server
	c.Mirror = snapshot.Mirror
	c.Screenshots = snapshot.Screenshots
	c.Desktop = snapshot.Desktop
	c.Telemetry = snapshot.Telemetry
}

// ServerSnapshot returns a copy of the server settings.
func (c *Config) ServerSnapshot() ServerConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.Server
	s.AllowedOrigins = append([]string{}, c.Server.AllowedOrigins...)
	return s
}

// Hash returns a short content hash used to detect config changes.
func (c *Config) Hash() string {
	c.mu.RLock()
	data, _ := json.Marshal(c)
	c.mu.RUnlock()
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// ---- paths ----

func (c *Config) RootPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ExpandHome(c.Root)
}

func (c *Config) DataPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ExpandHome(c.DataDir)
}

func (c *Config) ExportBasePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ExpandHome(c.ExportBase)
}

func (c *Config) ClipsPath() string          { return filepath.Join(c.DataPath(), "clips.json") }
func (c *Config) TabsPath() string           { return filepath.Join(c.DataPath(), "tabs.json") }
func (c *Config) LegacySectionsPath() string { return filepath.Join(c.DataPath(), "sections.json") }
func (c *Config) SettingsPath() string       { return filepath.Join(c.DataPath(), "settings.json") }
func (c *Config) ScreenshotsDir() string     { return filepath.Join(c.DataPath(), "screenshots") }

// StoreConfig returns the file store layout for this config.
func (c *Config) StoreConfig() store.StoreConfig {
	return store.StoreConfig{
		ClipsPath:          c.ClipsPath(),
		TabsPath:           c.TabsPath(),
		LegacySectionsPath: c.LegacySectionsPath(),
		SettingsPath:       c.SettingsPath(),
		DataRoot:           c.RootPath(),
		DataDir:            c.DataPath(),
		ScreenshotsDir:     c.ScreenshotsDir(),
		ExportBase:         c.ExportBasePath(),
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// ResolvePath returns the config path from an explicit flag value, then
// CLIPTRAY_CONFIG, then the default location.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return ExpandHome(flagValue)
	}
	if v := os.Getenv("CLIPTRAY_CONFIG"); v != "" {
		return ExpandHome(v)
	}
	return ExpandHome(DefaultConfigPath)
}

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the bearer token goes to the keyring.
//
// The file is JSON with comments and trailing commas allowed, so users can
// annotate it by hand.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"sensorctl/cli/internal/xdg"
)

// Defaults applied when the file or a field is missing.
const (
	DefaultAPIURL   = "http://127.0.0.1:8000"
	DefaultPageSize = 10
	DefaultLogLevel = "info"
)

// Environment overrides, applied after the file is read.
const (
	EnvAPIURL          = "SENSORCTL_API_URL"
	EnvLogLevel        = "SENSORCTL_LOG_LEVEL"
	EnvPageSize        = "SENSORCTL_PAGE_SIZE"
	EnvKeyringBackend  = "SENSORCTL_KEYRING_BACKEND"
	EnvKeyringPassword = "SENSORCTL_KEYRING_PASSWORD"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	APIURL      string        `json:"api_url"`
	PageSize    int           `json:"page_size"`
	LogLevel    string        `json:"log_level"`
	DownloadDir string        `json:"download_dir"`
	Keyring     KeyringConfig `json:"keyring"`
}

// KeyringConfig selects where the bearer token is persisted.
type KeyringConfig struct {
	// Backend is "auto", "keychain", "wincred", "secret-service", "kwallet", "pass" or "file".
	Backend string `json:"backend"`
	// FileDir overrides the directory used by the file backend.
	FileDir string `json:"file_dir,omitempty"`
	// Password unlocks the file backend. Prefer SENSORCTL_KEYRING_PASSWORD.
	Password string `json:"-"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:      DefaultAPIURL,
		PageSize:    DefaultPageSize,
		LogLevel:    DefaultLogLevel,
		DownloadDir: ".",
		Keyring:     KeyringConfig{Backend: "auto"},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration from the default path; a missing file returns defaults.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFile(p)
}

// LoadFile reads configuration from p, fills defaults and applies env overrides.
func LoadFile(p string) (Config, error) {
	c, err := ReadFile(p)
	if err != nil {
		return c, err
	}
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	c.fill()
	return c, c.Validate()
}

// ReadFile reads p over the defaults without applying env overrides or
// validating. A missing file returns defaults.
func ReadFile(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := Parse(data, &c); err != nil {
			return c, fmt.Errorf("%s: %w", p, err)
		}
	}
	return c, nil
}

// Parse strips comments and trailing commas from data and unmarshals it over c.
func Parse(data []byte, c *Config) error {
	if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPageSize)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		c.PageSize = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvKeyringBackend)); v != "" {
		c.Keyring.Backend = v
	}
	if v := os.Getenv(EnvKeyringPassword); v != "" {
		c.Keyring.Password = v
	}
	return nil
}

func (c *Config) fill() {
	d := Default()
	if strings.TrimSpace(c.APIURL) == "" {
		c.APIURL = d.APIURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.PageSize == 0 {
		c.PageSize = d.PageSize
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.DownloadDir == "" {
		c.DownloadDir = d.DownloadDir
	}
	if c.Keyring.Backend == "" {
		c.Keyring.Backend = d.Keyring.Backend
	}
}

// Validate reports settings the client cannot run with.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be at least 1, got %d", c.PageSize)
	}
	return nil
}

// Keys lists the settings accepted by Set.
var Keys = []string{"api_url", "page_size", "log_level", "download_dir", "keyring.backend", "keyring.file_dir"}

// Set assigns a single setting by its file key.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "api_url":
		c.APIURL = strings.TrimRight(value, "/")
	case "page_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("page_size: %w", err)
		}
		c.PageSize = n
	case "log_level":
		c.LogLevel = value
	case "download_dir":
		c.DownloadDir = value
	case "keyring.backend":
		c.Keyring.Backend = value
	case "keyring.file_dir":
		c.Keyring.FileDir = value
	default:
		return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
	c.fill()
	return c.Validate()
}

// Save writes configuration to the default path.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(p, c)
}

// SaveFile validates c and writes it to p with 0600 permissions.
func SaveFile(p string, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p, append(b, '\n'), 0o600)
}

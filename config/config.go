// Package config loads the daemon configuration from a TOML file, applying
// sensible defaults for anything the file omits.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Addr string `toml:"addr"` // host:port the HTTP API listens on
}

type StorageConfig struct {
	SnapshotPath     string   `toml:"snapshot_path"`
	AutoSaveInterval duration `toml:"autosave_interval"` // 0 disables autosave
}

type SMTPConfig struct {
	Server      string `toml:"server"`
	Port        int    `toml:"port"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	From        string `toml:"from"`
	UseSTARTTLS bool   `toml:"use_starttls"` // true for port 587, false for port 465
}

type ModelConfig struct {
	Provider string `toml:"provider"` // anthropic, openai or template
	Model    string `toml:"model"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json or text
}

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	SMTP    SMTPConfig    `toml:"smtp"`
	Model   ModelConfig   `toml:"model"`
	Log     LogConfig     `toml:"log"`
}

// duration lets TOML files spell intervals as "30s" or "5m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Addr: ":8080"},
		Storage: StorageConfig{SnapshotPath: "inboxmesh.json", AutoSaveInterval: duration{30 * time.Second}},
		SMTP:    SMTPConfig{Port: 587, UseSTARTTLS: true},
		Model:   ModelConfig{Provider: "template"},
		Log:     LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the daemon cannot start with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Storage.SnapshotPath == "" {
		return fmt.Errorf("storage.snapshot_path must not be empty")
	}
	if c.Storage.AutoSaveInterval.Duration < 0 {
		return fmt.Errorf("storage.autosave_interval must not be negative")
	}
	switch c.Model.Provider {
	case "", "template", "anthropic", "openai":
	default:
		return fmt.Errorf("model.provider %q is not supported", c.Model.Provider)
	}
	return nil
}

// Interval returns the configured autosave interval as a plain duration.
func (c *StorageConfig) Interval() time.Duration {
	return c.AutoSaveInterval.Duration
}

// SMTPPort resolves the port, falling back to the conventional one for the
// chosen encryption mode.
func (c *SMTPConfig) SMTPPort() int {
	if c.Port != 0 {
		return c.Port
	}
	if c.UseSTARTTLS {
		return 587
	}
	return 465
}

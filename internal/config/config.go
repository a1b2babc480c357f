// Package config provides Viper-based configuration loading for the catalog
// services.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LocaleSource describes one remote text table.
type LocaleSource struct {
	// URL is the remote location of the table.
	URL string `mapstructure:"url"`
	// Format is "json" (flat alternating key/value array under "data") or
	// "text" (RESOURCE ID / TEXT tagged lines).
	Format string `mapstructure:"format"`
}

// SourcesConfig holds the remote locations of every raw input.
// Empty feed URLs disable the corresponding feed.
type SourcesConfig struct {
	GameMaster   string         `mapstructure:"gamemaster"`
	Protos       string         `mapstructure:"protos"`
	Locales      []LocaleSource `mapstructure:"locales"`
	Raids        string         `mapstructure:"raids"`
	Guards       string         `mapstructure:"guards"`
	Quests       string         `mapstructure:"quests"`
	Events       string         `mapstructure:"events"`
	IconManifest string         `mapstructure:"icon_manifest"`
}

// FetchConfig holds the remote fetch retry policy.
type FetchConfig struct {
	// RetryDelay is the fixed delay between attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// MaxAttempts caps the number of attempts per resource. Zero retries forever.
	MaxAttempts int `mapstructure:"max_attempts"`
	// Timeout bounds a single HTTP request. Zero disables the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// CatalogConfig holds refresh and presentation settings.
type CatalogConfig struct {
	// RefreshInterval is the age after which a snapshot is stale. Zero disables
	// staleness entirely.
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	// BuildTimeout aborts a rebuild that takes longer. Zero means no timeout.
	BuildTimeout time.Duration `mapstructure:"build_timeout"`
	// IconSet names the icon convention used for exported URLs.
	IconSet string `mapstructure:"icon_set"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// KeepSnapshots is how many stored snapshots survive pruning.
	KeepSnapshots int `mapstructure:"keep_snapshots"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// MetricsConfig holds the Prometheus scrape endpoint settings.
type MetricsConfig struct {
	// Addr is the listen address of the /metrics endpoint. Empty disables it.
	Addr string `mapstructure:"addr"`
}

// Config is the top-level application configuration.
type Config struct {
	Sources  SourcesConfig  `mapstructure:"sources"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateSources(c.Sources); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateFetch(c.Fetch); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCatalog(c.Catalog); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSources(s SourcesConfig) error {
	var errs []string
	if s.GameMaster == "" {
		errs = append(errs, "sources.gamemaster must not be empty")
	}
	if s.Protos == "" {
		errs = append(errs, "sources.protos must not be empty")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	for i, l := range s.Locales {
		if l.URL == "" {
			errs = append(errs, fmt.Sprintf("sources.locales[%d].url must not be empty", i))
		}
		if !validFormats[l.Format] {
			errs = append(errs, fmt.Sprintf("sources.locales[%d].format must be one of [json, text], got %q", i, l.Format))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateFetch(f FetchConfig) error {
	var errs []string
	if f.RetryDelay < 0 {
		errs = append(errs, "fetch.retry_delay must not be negative")
	}
	if f.MaxAttempts < 0 {
		errs = append(errs, fmt.Sprintf("fetch.max_attempts must be >= 0, got %d", f.MaxAttempts))
	}
	if f.Timeout < 0 {
		errs = append(errs, "fetch.timeout must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateCatalog(c CatalogConfig) error {
	var errs []string
	if c.RefreshInterval < 0 {
		errs = append(errs, "catalog.refresh_interval must not be negative")
	}
	if c.BuildTimeout < 0 {
		errs = append(errs, "catalog.build_timeout must not be negative")
	}
	if c.IconSet == "" {
		errs = append(errs, "catalog.icon_set must not be empty")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if d.KeepSnapshots < 1 {
		errs = append(errs, fmt.Sprintf("database.keep_snapshots must be >= 1, got %d", d.KeepSnapshots))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path skips the file and uses
// defaults plus environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with POGODATA_ prefix
	v.SetEnvPrefix("POGODATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

const (
	pokeMinersRaw = "https://raw.githubusercontent.com/PokeMiners/"
	pogoInfoRaw   = "https://raw.githubusercontent.com/ccev/pogoinfo/v2/"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("sources.gamemaster", pokeMinersRaw+"game_masters/master/latest/latest.json")
	v.SetDefault("sources.protos", "https://raw.githubusercontent.com/Furtif/POGOProtos/master/base/vbase.proto")
	v.SetDefault("sources.locales", []map[string]any{
		{"url": pokeMinersRaw + "pogo_assets/master/Texts/Latest%20APK/JSON/i18n_english.json", "format": "json"},
		{"url": pokeMinersRaw + "pogo_assets/master/Texts/Latest%20Remote/English.txt", "format": "text"},
	})
	v.SetDefault("sources.raids", pogoInfoRaw+"active/raids.json")
	v.SetDefault("sources.guards", pogoInfoRaw+"active/grunts.json")
	v.SetDefault("sources.quests", pogoInfoRaw+"active/quests.json")
	v.SetDefault("sources.events", pogoInfoRaw+"active/events.json")
	v.SetDefault("sources.icon_manifest", "https://api.github.com/repos/PokeMiners/pogo_assets/git/trees/master?recursive=true")

	v.SetDefault("fetch.retry_delay", "60s")
	v.SetDefault("fetch.max_attempts", 0)
	v.SetDefault("fetch.timeout", "2m")

	v.SetDefault("catalog.refresh_interval", "24h")
	v.SetDefault("catalog.build_timeout", "0s")
	v.SetDefault("catalog.icon_set", "POGO")

	v.SetDefault("metrics.addr", ":9464")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "pogodata")
	v.SetDefault("database.password", "pogodata")
	v.SetDefault("database.name", "pogodata")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.keep_snapshots", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Package config provides Viper-based configuration loading for the raid loot generator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for generation reports.
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

// RandomisationConfig controls whether static containers are drawn through
// group quotas or hydrated unconditionally.
type RandomisationConfig struct {
	// Enabled is the global switch.
	Enabled bool `mapstructure:"enabled"`
	// Maps overrides Enabled per map id. A map absent from Maps inherits Enabled.
	Maps map[string]bool `mapstructure:"maps"`
}

// LootConfig holds the loot generation settings.
type LootConfig struct {
	// DataDir is the root directory holding one sub-directory of tables per map.
	DataDir string `mapstructure:"data_dir"`
	// BlacklistFile is an optional YAML file listing blacklisted item template ids.
	BlacklistFile string `mapstructure:"blacklist_file"`
	// Blacklist lists additional blacklisted item template ids inline.
	Blacklist []string `mapstructure:"blacklist"`
	// RegenerateStaticContainers selects per-raid regeneration over the authored layout.
	RegenerateStaticContainers bool `mapstructure:"regenerate_static_containers"`
	// ContainerRandomisation controls group-quota container selection.
	ContainerRandomisation RandomisationConfig `mapstructure:"container_randomisation"`
	// MinFillLooseMagazinePercent is the lower bound of cartridges placed in a filled magazine.
	MinFillLooseMagazinePercent int `mapstructure:"min_fill_loose_magazine_percent"`
	// StaticMagazineAmmoChancePercent is the chance that a spawned magazine holds any ammo.
	StaticMagazineAmmoChancePercent int `mapstructure:"static_magazine_ammo_chance_percent"`
	// Seed seeds a deterministic random source. Zero selects crypto/rand.
	Seed int64 `mapstructure:"seed"`
}

// RandomisationEnabled reports whether container randomisation applies to mapID.
//
// Postcondition: false whenever the global switch is off; otherwise the per-map
// override (matched case-insensitively) if present, else true.
func (l LootConfig) RandomisationEnabled(mapID string) bool {
	if !l.ContainerRandomisation.Enabled {
		return false
	}
	for id, enabled := range l.ContainerRandomisation.Maps {
		if strings.EqualFold(id, mapID) {
			return enabled
		}
	}
	return true
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Loot     LootConfig     `mapstructure:"loot"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLoot(c.Loot); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
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

func validateLoot(l LootConfig) error {
	var errs []string
	if l.DataDir == "" {
		errs = append(errs, "loot.data_dir must not be empty")
	}
	if l.MinFillLooseMagazinePercent < 0 || l.MinFillLooseMagazinePercent > 100 {
		errs = append(errs, fmt.Sprintf("loot.min_fill_loose_magazine_percent must be 0-100, got %d", l.MinFillLooseMagazinePercent))
	}
	if l.StaticMagazineAmmoChancePercent < 0 || l.StaticMagazineAmmoChancePercent > 100 {
		errs = append(errs, fmt.Sprintf("loot.static_magazine_ammo_chance_percent must be 0-100, got %d", l.StaticMagazineAmmoChancePercent))
	}
	for i, id := range l.Blacklist {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, fmt.Sprintf("loot.blacklist[%d] must not be empty", i))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with RAIDLOOT_ prefix
	v.SetEnvPrefix("RAIDLOOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
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

// Defaults returns a Viper instance carrying only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "raidloot")
	v.SetDefault("database.password", "raidloot")
	v.SetDefault("database.name", "raidloot")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("loot.data_dir", "db")
	v.SetDefault("loot.regenerate_static_containers", true)
	v.SetDefault("loot.container_randomisation.enabled", true)
	v.SetDefault("loot.min_fill_loose_magazine_percent", 50)
	v.SetDefault("loot.static_magazine_ammo_chance_percent", 50)
	v.SetDefault("loot.seed", 0)
}

// Package config loads reportsync settings from defaults, an optional config file, the
// environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	appName   = "reportsync"
	envPrefix = "REPORTSYNC"
)

// Config is the complete runtime configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Source   SourceConfig   `mapstructure:"source"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig selects and tunes the relation store.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SourceConfig locates the daily report files.
type SourceConfig struct {
	Repository    string `mapstructure:"repository"`
	Folder        string `mapstructure:"folder"`
	Token         string `mapstructure:"token"`
	BaseURL       string `mapstructure:"base_url"`
	LocalDir      string `mapstructure:"local_dir"`
	Chronological bool   `mapstructure:"chronological"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GetDataDir resolves the directory holding the default SQLite database. It checks
// REPORTSYNC_DATA_DIR first, then the XDG data home, and finally falls back to the
// user's home directory.
func GetDataDir() string {
	if explicit := os.Getenv(envPrefix + "_DATA_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), appName)
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appName)
}

// GetDBPath returns the path of the default SQLite database file.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), "reports.db")
}

// GetConfigDir returns the directory searched for reportsync.yaml after the working directory.
func GetConfigDir() string {
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, appName)
}

// New returns a viper instance with defaults and environment bindings. Callers bind
// their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 0)
	v.SetDefault("database.max_idle_conns", 0)
	v.SetDefault("database.conn_max_lifetime", time.Duration(0))
	v.SetDefault("source.repository", "CSSEGISandData/COVID-19")
	v.SetDefault("source.folder", "csse_covid_19_data/csse_covid_19_daily_reports")
	v.SetDefault("source.token", "")
	v.SetDefault("source.base_url", "")
	v.SetDefault("source.local_dir", "")
	v.SetDefault("source.chronological", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("source.token", envPrefix+"_SOURCE_TOKEN", "GITHUB_TOKEN")

	return v
}

// Load reads an optional .env file and config file into v and returns the validated
// configuration. An explicit configFile must exist; otherwise reportsync.yaml is looked
// up in the working directory and the XDG config directory.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(GetConfigDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = GetDBPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid database.driver %q: must be sqlite or postgres", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required for postgres")
	}
	if c.Source.LocalDir == "" && !strings.Contains(c.Source.Repository, "/") {
		return fmt.Errorf("invalid source.repository %q: expected owner/name", c.Source.Repository)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}
	return nil
}

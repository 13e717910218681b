// Package config loads the xctor CLI configuration from flags, environment,
// .env files and an optional YAML config file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem config and query files are read from.
var AppFs = afero.NewOsFs()

// Config holds the CLI configuration.
type Config struct {
	Driver  string
	DSN     string
	Timeout time.Duration
	MaxRows int
}

// Keys understood in the config file and as XCTOR_* environment variables.
const (
	KeyDriver  = "driver"
	KeyDSN     = "dsn"
	KeyTimeout = "timeout"
	KeyMaxRows = "max_rows"
)

// New returns a viper instance with xctor's search paths, env prefix and
// defaults applied. configFile, when set, replaces the search paths.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetFs(AppFs)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, errors.Wrap(err, "finding home directory")
		}
		v.SetConfigName(".xctor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "xctor"))
	}

	v.SetEnvPrefix("XCTOR")
	v.AutomaticEnv()

	v.SetDefault(KeyDriver, "sqlite3")
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyMaxRows, 20)
	return v, nil
}

// Load reads the config file (a missing one is fine unless it was named
// explicitly), loads .env and .env.local, and resolves the final Config.
// DATABASE_URL is the fallback when no dsn is configured.
func Load(v *viper.Viper, explicit bool) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	if err := loadDotenv(".env", false); err != nil {
		return nil, err
	}
	// .env.local wins over .env
	if err := loadDotenv(".env.local", true); err != nil {
		return nil, err
	}

	cfg := &Config{
		Driver:  v.GetString(KeyDriver),
		DSN:     v.GetString(KeyDSN),
		Timeout: v.GetDuration(KeyTimeout),
		MaxRows: v.GetInt(KeyMaxRows),
	}
	if cfg.DSN == "" {
		cfg.DSN = os.Getenv("DATABASE_URL")
	}
	return cfg, cfg.Validate()
}

// Validate reports settings the CLI cannot run with.
func (c *Config) Validate() error {
	if c.Driver == "" {
		return errors.New("driver is required")
	}
	if c.DSN == "" {
		return errors.Errorf("no dsn for driver %q: set --dsn, XCTOR_DSN or DATABASE_URL", c.Driver)
	}
	if c.Timeout <= 0 {
		return errors.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxRows < 0 {
		return errors.Errorf("max_rows must not be negative, got %d", c.MaxRows)
	}
	return nil
}

func loadDotenv(name string, override bool) error {
	if _, err := AppFs.Stat(name); err != nil {
		return nil
	}
	f, err := AppFs.Open(name)
	if err != nil {
		return errors.Wrapf(err, "opening %s", name)
	}
	defer f.Close()

	env, err := godotenv.Parse(f)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", name)
	}
	for k, val := range env {
		if _, set := os.LookupEnv(k); set && !override {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return errors.Wrapf(err, "setting %s from %s", k, name)
		}
	}
	return nil
}

/*
Package config loads service configuration from a YAML file plus
environment overrides.

PURPOSE:
  One place for every knob the server and the CLI read at startup:
  HTTP listener, sqlite path, business timezone, rate limiting, the
  reminder scheduler and the initial commission settings.

LOADING ORDER:
  1. .env in the working directory (optional, via godotenv)
  2. CONFIG_PATH, or ./config/local.yaml when unset
  3. environment variables named in `env` tags override the file

  The commission section only seeds the settings table on first start.
  After that the stored, versioned settings win and are edited through
  the admin API.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultPath is read when CONFIG_PATH is not set.
const DefaultPath = "./config/local.yaml"

// Environments understood by the logger setup.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"prod"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	Timezone    string `yaml:"timezone" env:"TIMEZONE" env-default:"America/Sao_Paulo"`

	HTTPServer `yaml:"http_server"`
	RateLimit  string `yaml:"rate_limit" env:"RATE_LIMIT" env-default:"100-M"`

	Scheduler  Scheduler  `yaml:"scheduler"`
	Checklist  Checklist  `yaml:"checklist"`
	Commission Commission `yaml:"commission"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Scheduler drives the weekly checklist reminders.
type Scheduler struct {
	Enabled  bool          `yaml:"enabled" env:"SCHEDULER_ENABLED" env-default:"true"`
	Interval time.Duration `yaml:"interval" env-default:"1h"`
}

type Checklist struct {
	// RestrictToAssignedDay only accepts submissions on the driver's day.
	RestrictToAssignedDay bool `yaml:"restrict_to_assigned_day" env-default:"false"`
}

// Commission seeds the first settings version. t1 may legitimately be 0,
// so only t2 is marked required.
type Commission struct {
	CutoverDate string `yaml:"cutover_date" env:"COMMISSION_CUTOVER_DATE" env-required:"true"`
	T1          int    `yaml:"t1" env:"COMMISSION_T1"`
	T2          int    `yaml:"t2" env:"COMMISSION_T2" env-required:"true"`
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if cfg.Commission.T1 < 0 || cfg.Commission.T1 >= cfg.Commission.T2 {
		return nil, fmt.Errorf("commission thresholds must satisfy 0 <= t1 < t2, got t1=%d t2=%d",
			cfg.Commission.T1, cfg.Commission.T2)
	}
	return &cfg, nil
}

// MustLoad is Load that exits on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config: %s", err)
	}
	return cfg
}

// SettingsJSON renders the commission section as a settings document for
// the factory. Rates and percentages are left to their defaults.
func (c *Config) SettingsJSON() string {
	return fmt.Sprintf(`{"cutover_date":%q,"timezone":%q,"thresholds":{"t1":%d,"t2":%d}}`,
		c.Commission.CutoverDate, c.Timezone, c.Commission.T1, c.Commission.T2)
}

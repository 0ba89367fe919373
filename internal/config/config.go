package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"marketclock/internal/domain"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the market clock service.
type Config struct {
	Server  Server         `yaml:"server"`
	Storage Storage        `yaml:"storage"`
	Logging Logging        `yaml:"logging"`
	Clock   Clock          `yaml:"clock"`
	Markets []MarketConfig `yaml:"markets"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Storage holds paths for the transition journal and archives. Empty paths
// disable the corresponding store.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Clock controls the status poller and presentation defaults.
type Clock struct {
	TickInterval  string `yaml:"tick_interval"`  // Go duration string, default "1s"
	DefaultLocale string `yaml:"default_locale"` // label locale, default "en"
}

// MarketConfig is a YAML-configurable market table entry. When the markets
// list is empty the built-in four-market table is used.
type MarketConfig struct {
	ID         string `yaml:"id"`
	NameKey    string `yaml:"name_key"`
	LocalOpen  string `yaml:"local_open"`
	LocalClose string `yaml:"local_close"`
	Timezone   string `yaml:"timezone"`
	Icon       string `yaml:"icon"`
	Color      string `yaml:"color"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into
// a Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MARKETCLOCK_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MARKETCLOCK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MARKETCLOCK_TICK_INTERVAL"); v != "" {
		cfg.Clock.TickInterval = v
	}
	if v := os.Getenv("MARKETCLOCK_LOCALE"); v != "" {
		cfg.Clock.DefaultLocale = v
	}
}

// Interval returns the poller tick interval, defaulting to one second for
// missing or malformed values.
func (c Clock) Interval() time.Duration {
	if c.TickInterval == "" {
		return time.Second
	}
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// Locale returns the default label locale.
func (c Clock) Locale() string {
	if c.DefaultLocale == "" {
		return "en"
	}
	return c.DefaultLocale
}

// MarketTable returns the configured market list, validated, or the
// built-in table when no markets are configured.
func (c *Config) MarketTable() ([]domain.Market, error) {
	if len(c.Markets) == 0 {
		return domain.DefaultMarkets(), nil
	}

	markets := make([]domain.Market, 0, len(c.Markets))
	for _, mc := range c.Markets {
		m := domain.Market{
			ID:         mc.ID,
			NameKey:    mc.NameKey,
			LocalOpen:  mc.LocalOpen,
			LocalClose: mc.LocalClose,
			Timezone:   mc.Timezone,
			Icon:       mc.Icon,
			Color:      mc.Color,
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		markets = append(markets, m)
	}
	return markets, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"solarlog/internal/valuation"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`
	LogLevel   string `yaml:"log_level"`

	Inverter  InverterConfig  `yaml:"inverter"`
	Prices    PricesConfig    `yaml:"prices"`
	Collector CollectorConfig `yaml:"collector"`
	Valuation ValuationConfig `yaml:"valuation"`
}

type InverterConfig struct {
	// Host is the gateway's IP or hostname, no scheme.
	Host string `yaml:"host"`
}

type PricesConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	// Area is the bidding zone EIC code.
	Area string `yaml:"area"`
}

type CollectorConfig struct {
	RefreshInterval string `yaml:"refresh_interval"`
	LookbackDays    int    `yaml:"lookback_days"`
}

type ValuationConfig struct {
	WorkingHourThresholdKWh float64 `yaml:"working_hour_threshold_kwh"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		DBPath:     "solarlog.db",
		LogLevel:   "info",
		Inverter:   InverterConfig{Host: "192.168.1.100"},
		Prices:     PricesConfig{Area: "10YHU-MAVIR----U"},
		Collector: CollectorConfig{
			RefreshInterval: "1h",
			LookbackDays:    2,
		},
		Valuation: ValuationConfig{
			WorkingHourThresholdKWh: valuation.DefaultWorkingHourThresholdKWh,
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s invalid: %w", path, err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	if c.Inverter.Host == "" {
		return errors.New("inverter.host is required")
	}
	if c.Prices.Area == "" {
		return errors.New("prices.area is required")
	}
	if _, err := time.ParseDuration(c.Collector.RefreshInterval); err != nil {
		return fmt.Errorf("collector.refresh_interval invalid: %w", err)
	}
	if c.Collector.LookbackDays < 1 {
		return errors.New("collector.lookback_days must be >= 1")
	}
	if c.Valuation.WorkingHourThresholdKWh < 0 {
		return errors.New("valuation.working_hour_threshold_kwh must be >= 0")
	}
	return nil
}

// Interval returns the parsed refresh interval. Call Validate first;
// an unparsable value falls back to one hour.
func (c CollectorConfig) Interval() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

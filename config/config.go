// Package config loads, validates, and saves the complete run
// configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/quantlab/folio/market"
	"github.com/quantlab/folio/portfolio"
	"github.com/quantlab/folio/signals"
)

// Config represents a complete backtest run configuration.
type Config struct {
	Portfolio portfolio.Config `yaml:"portfolio" json:"portfolio"`
	Data      DataConfig       `yaml:"data" json:"data"`
	Strategy  StrategyConfig   `yaml:"strategy" json:"strategy"`
	Journal   JournalConfig    `yaml:"journal" json:"journal"`
}

// DataConfig says where price and signal data come from.
type DataConfig struct {
	PricesFile string `yaml:"prices_file" json:"prices_file"`

	// SignalsFile is optional; when empty, Strategy.Name generates the
	// signals from the price data.
	SignalsFile string `yaml:"signals_file,omitempty" json:"signals_file,omitempty"`

	// GapPolicy is "ffill" or "intersect".
	GapPolicy string `yaml:"gap_policy" json:"gap_policy"`
}

// StrategyConfig selects and parameterizes a built-in signal generator.
// Ignored when signals are supplied from a file.
type StrategyConfig struct {
	Name   string         `yaml:"name,omitempty" json:"name,omitempty"`
	Params signals.Params `yaml:"params" json:"params"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	// Type is "none", "csv", "sqlite", or "parquet".
	Type       string `yaml:"type" json:"type"`
	TradesFile string `yaml:"trades_file,omitempty" json:"trades_file,omitempty"`
	EquityFile string `yaml:"equity_file,omitempty" json:"equity_file,omitempty"`
	DBPath     string `yaml:"db_path,omitempty" json:"db_path,omitempty"`

	// OrgFile, when set, receives an Org-mode run summary after the run.
	OrgFile string `yaml:"org_file,omitempty" json:"org_file,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file, then applies
// environment overrides (a .env file next to the working directory is
// honored when present).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays FOLIO_* environment variables so scripts can steer a
// run without editing the config file.
func (c *Config) applyEnv() {
	_ = godotenv.Load() // missing .env is fine

	if v := os.Getenv("FOLIO_PRICES_FILE"); v != "" {
		c.Data.PricesFile = v
	}
	if v := os.Getenv("FOLIO_SIGNALS_FILE"); v != "" {
		c.Data.SignalsFile = v
	}
	if v := os.Getenv("FOLIO_DB_PATH"); v != "" {
		c.Journal.DBPath = v
	}
	if v := os.Getenv("FOLIO_STRATEGY"); v != "" {
		c.Strategy.Name = v
	}
	if v := os.Getenv("FOLIO_INITIAL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Portfolio.InitialCapital = f
		}
	}
}

// SaveToFile saves configuration to a file, YAML or JSON by extension.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the whole configuration. Invalid configurations are
// fatal at setup.
func (c *Config) Validate() error {
	if err := c.Portfolio.Validate(); err != nil {
		return err
	}
	if c.Data.PricesFile == "" {
		return fmt.Errorf("data.prices_file is required")
	}
	switch market.GapPolicy(c.Data.GapPolicy) {
	case market.ForwardFill, market.Intersect:
	default:
		return fmt.Errorf("data.gap_policy must be %q or %q, got %q",
			market.ForwardFill, market.Intersect, c.Data.GapPolicy)
	}
	if c.Data.SignalsFile == "" && c.Strategy.Name == "" {
		return fmt.Errorf("either data.signals_file or strategy.name is required")
	}
	switch c.Journal.Type {
	case "none":
	case "csv", "parquet":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for %s type", c.Journal.Type)
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	default:
		return fmt.Errorf("journal.type must be none, csv, sqlite, or parquet, got %q", c.Journal.Type)
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Portfolio: portfolio.DefaultConfig(),
		Data: DataConfig{
			GapPolicy: string(market.ForwardFill),
		},
		Strategy: StrategyConfig{
			Params: signals.DefaultParams(),
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./folio.sqlite",
		},
	}
}

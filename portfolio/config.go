// Package portfolio implements the portfolio state machine: position
// sizing, trade planning with frictions, and the cash/position ledger.
package portfolio

import "fmt"

// SizingMode selects how a raw signal maps to a target weight.
type SizingMode string

const (
	// SizingBinary maps signal > 0 to the full max weight, signal < 0 to
	// short (or flat when shorting is disallowed), signal == 0 to flat.
	SizingBinary SizingMode = "binary"

	// SizingProportional maps clamp(signal, -1, 1) * max weight.
	SizingProportional SizingMode = "proportional"
)

// MissingSignalPolicy says what a symbol's target weight is on a step with
// no signal value. This is an explicit configuration choice because it
// changes backtest outcomes.
type MissingSignalPolicy string

const (
	// MissingHold keeps the previous target weight.
	MissingHold MissingSignalPolicy = "hold"

	// MissingFlat forces the target weight to zero.
	MissingFlat MissingSignalPolicy = "flat"
)

// Config holds every knob of the backtest engine. It is immutable once the
// run starts; components receive it at construction and never read ambient
// state.
type Config struct {
	InitialCapital    float64             `yaml:"initial_capital" json:"initial_capital"`
	MaxPositionWeight float64             `yaml:"max_position_weight" json:"max_position_weight"`
	SizingMode        SizingMode          `yaml:"sizing_mode" json:"sizing_mode"`
	MissingSignal     MissingSignalPolicy `yaml:"missing_signal" json:"missing_signal"`

	AllowShort  bool `yaml:"allow_short" json:"allow_short"`
	AllowMargin bool `yaml:"allow_margin" json:"allow_margin"`

	SlippageBPS       float64 `yaml:"slippage_bps" json:"slippage_bps"`
	CommissionBPS     float64 `yaml:"commission_bps" json:"commission_bps"`
	FlatCommission    float64 `yaml:"flat_commission" json:"flat_commission"`
	MinTradeThreshold float64 `yaml:"min_trade_threshold" json:"min_trade_threshold"`

	RiskFreeRateAnnual float64 `yaml:"risk_free_rate_annual" json:"risk_free_rate_annual"`
	PeriodsPerYear     int     `yaml:"periods_per_year" json:"periods_per_year"`
}

// DefaultConfig returns a configuration with sensible defaults: daily
// bars, 100% max weight, long-only, no margin, light frictions.
func DefaultConfig() Config {
	return Config{
		InitialCapital:    100_000,
		MaxPositionWeight: 1.0,
		SizingMode:        SizingBinary,
		MissingSignal:     MissingHold,
		SlippageBPS:       5,
		CommissionBPS:     0,
		FlatCommission:    0,
		MinTradeThreshold: 1e-6,
		PeriodsPerYear:    252,
	}
}

// Validate checks the configuration. Invalid configs are fatal at setup;
// the engine refuses to start.
func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive, got %.4f", c.InitialCapital)
	}
	if c.MaxPositionWeight <= 0 || c.MaxPositionWeight > 1 {
		return fmt.Errorf("max_position_weight must be in (0, 1], got %.4f", c.MaxPositionWeight)
	}
	switch c.SizingMode {
	case SizingBinary, SizingProportional:
	default:
		return fmt.Errorf("sizing_mode must be %q or %q, got %q",
			SizingBinary, SizingProportional, c.SizingMode)
	}
	switch c.MissingSignal {
	case MissingHold, MissingFlat:
	default:
		return fmt.Errorf("missing_signal must be %q or %q, got %q",
			MissingHold, MissingFlat, c.MissingSignal)
	}
	if c.SlippageBPS < 0 {
		return fmt.Errorf("slippage_bps must be >= 0, got %.4f", c.SlippageBPS)
	}
	if c.CommissionBPS < 0 {
		return fmt.Errorf("commission_bps must be >= 0, got %.4f", c.CommissionBPS)
	}
	if c.FlatCommission < 0 {
		return fmt.Errorf("flat_commission must be >= 0, got %.4f", c.FlatCommission)
	}
	if c.MinTradeThreshold < 0 {
		return fmt.Errorf("min_trade_threshold must be >= 0, got %.6f", c.MinTradeThreshold)
	}
	if c.PeriodsPerYear <= 0 {
		return fmt.Errorf("periods_per_year must be positive, got %d", c.PeriodsPerYear)
	}
	return nil
}

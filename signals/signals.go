// Package signals generates long/flat trading signals from price series.
// Generators are deliberately separate from the backtest engine: the
// engine only ever consumes an aligned signal table, so externally
// supplied signals and generated ones go through the same path.
package signals

import (
	"fmt"
	"strings"

	"github.com/quantlab/folio/market"
)

// Generator produces one raw signal value per input bar: 1 for long,
// 0 for flat. Values for bars before indicator warmup are 0.
type Generator interface {
	Name() string
	Signals(bars []market.Bar) []float64
}

// Params collects the tunables shared by the built-in generators.
type Params struct {
	FastEMA int `yaml:"fast_ema" json:"fast_ema"`
	SlowEMA int `yaml:"slow_ema" json:"slow_ema"`

	RSILength    int     `yaml:"rsi_length" json:"rsi_length"`
	RSIHigh      float64 `yaml:"rsi_high" json:"rsi_high"`
	VolWindow    int     `yaml:"vol_window" json:"vol_window"`
	VolThreshold float64 `yaml:"vol_threshold" json:"vol_threshold"`

	MACDFast   int `yaml:"macd_fast" json:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow" json:"macd_slow"`
	MACDSignal int `yaml:"macd_signal" json:"macd_signal"`

	BollWindow int     `yaml:"boll_window" json:"boll_window"`
	BollStd    float64 `yaml:"boll_std" json:"boll_std"`

	PeriodsPerYear int `yaml:"periods_per_year" json:"periods_per_year"`
}

// DefaultParams returns the classic parameterization for daily bars.
func DefaultParams() Params {
	return Params{
		FastEMA:        20,
		SlowEMA:        50,
		RSILength:      14,
		RSIHigh:        70,
		VolWindow:      20,
		VolThreshold:   0.6,
		MACDFast:       12,
		MACDSlow:       26,
		MACDSignal:     9,
		BollWindow:     20,
		BollStd:        2,
		PeriodsPerYear: 252,
	}
}

// ByName looks up a built-in generator.
func ByName(name string, p Params) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ema-cross", "emacross":
		return NewEMACross(p), nil
	case "macd", "macd-trend":
		return NewMACDTrend(p), nil
	case "bollinger", "boll":
		return NewBollingerReversion(p), nil
	default:
		return nil, fmt.Errorf("unknown signal generator %q (supported: ema-cross, macd, bollinger)", name)
	}
}

// Table runs a generator over each symbol's bars and returns the per-symbol
// signal points, ready for market.AlignSignals.
func Table(g Generator, series []market.Series) map[string][]market.SignalPoint {
	out := make(map[string][]market.SignalPoint, len(series))
	for i := range series {
		vals := g.Signals(series[i].Bars)
		pts := make([]market.SignalPoint, len(vals))
		for k, v := range vals {
			pts[k] = market.SignalPoint{Time: series[i].Bars[k].Time, Value: v}
		}
		out[series[i].Symbol] = pts
	}
	return out
}

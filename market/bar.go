// Package market holds price data types and the alignment logic that
// merges per-symbol series onto a common timestamp index.
package market

import (
	"fmt"
	"sort"
	"time"
)

// Bar is one OHLC observation for a symbol. Only Close is required by the
// backtest engine; Open/High/Low are carried for indicators that need them.
type Bar struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Series is an ordered run of bars for a single symbol.
type Series struct {
	Symbol string
	Bars   []Bar
}

// Sort orders the bars by time, in place.
func (s *Series) Sort() {
	sort.Slice(s.Bars, func(i, j int) bool {
		return s.Bars[i].Time.Before(s.Bars[j].Time)
	})
}

// Validate checks that the series is usable: non-empty symbol, at least one
// bar, strictly increasing timestamps, positive closes.
func (s *Series) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("series has empty symbol")
	}
	if len(s.Bars) == 0 {
		return fmt.Errorf("series %s has no bars", s.Symbol)
	}
	for i, b := range s.Bars {
		if b.Close <= 0 {
			return fmt.Errorf("series %s: non-positive close %.6f at %s",
				s.Symbol, b.Close, b.Time.Format(time.RFC3339))
		}
		if i > 0 && !s.Bars[i-1].Time.Before(b.Time) {
			return fmt.Errorf("series %s: timestamps not strictly increasing at %s",
				s.Symbol, b.Time.Format(time.RFC3339))
		}
	}
	return nil
}

// SignalPoint is one externally supplied raw signal value for a symbol.
type SignalPoint struct {
	Time  time.Time
	Value float64
}

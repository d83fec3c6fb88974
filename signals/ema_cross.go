package signals

import (
	"fmt"

	"github.com/quantlab/folio/indicators"
	"github.com/quantlab/folio/market"
)

// EMACross goes long when the fast EMA crosses above the slow EMA while
// RSI is below its ceiling and rolling volatility is below its threshold;
// it exits on the opposite cross or when either filter trips.
type EMACross struct {
	p Params
}

// NewEMACross builds the generator with the given parameters.
func NewEMACross(p Params) *EMACross {
	return &EMACross{p: p}
}

func (g *EMACross) Name() string {
	return fmt.Sprintf("ema-cross(%d,%d)", g.p.FastEMA, g.p.SlowEMA)
}

func (g *EMACross) Signals(bars []market.Bar) []float64 {
	fast := indicators.NewEMA(g.p.FastEMA)
	slow := indicators.NewEMA(g.p.SlowEMA)
	rsi := indicators.NewRSI(g.p.RSILength)
	vol := indicators.NewRollingVol(g.p.VolWindow, g.p.PeriodsPerYear)

	out := make([]float64, len(bars))
	position := 0.0
	prevDiff := 0.0
	prevReady := false

	for i, b := range bars {
		fast.Update(b.Close)
		slow.Update(b.Close)
		rsi.Update(b.Close)
		vol.Update(b.Close)

		ready := fast.Ready() && slow.Ready() && rsi.Ready() && vol.Ready()
		if !ready {
			out[i] = position
			continue
		}

		diff := fast.Value() - slow.Value()
		crossUp := prevReady && prevDiff <= 0 && diff > 0
		crossDown := prevReady && prevDiff >= 0 && diff < 0
		prevDiff = diff
		prevReady = true

		switch {
		case position == 0 && crossUp && rsi.Value() < g.p.RSIHigh && vol.Value() < g.p.VolThreshold:
			position = 1
		case position == 1 && (crossDown || rsi.Value() > g.p.RSIHigh || vol.Value() > g.p.VolThreshold):
			position = 0
		}
		out[i] = position
	}
	return out
}

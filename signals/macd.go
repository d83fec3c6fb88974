package signals

import (
	"fmt"

	"github.com/quantlab/folio/indicators"
	"github.com/quantlab/folio/market"
)

// MACDTrend goes long when the MACD line crosses above its signal line and
// exits when it crosses back below.
type MACDTrend struct {
	p Params
}

// NewMACDTrend builds the generator with the given parameters.
func NewMACDTrend(p Params) *MACDTrend {
	return &MACDTrend{p: p}
}

func (g *MACDTrend) Name() string {
	return fmt.Sprintf("macd(%d,%d,%d)", g.p.MACDFast, g.p.MACDSlow, g.p.MACDSignal)
}

func (g *MACDTrend) Signals(bars []market.Bar) []float64 {
	macd := indicators.NewMACD(g.p.MACDFast, g.p.MACDSlow, g.p.MACDSignal)

	out := make([]float64, len(bars))
	position := 0.0
	prevHist := 0.0
	prevReady := false

	for i, b := range bars {
		macd.Update(b.Close)
		if !macd.Ready() {
			out[i] = position
			continue
		}

		hist := macd.Histogram()
		crossUp := prevReady && prevHist <= 0 && hist > 0
		crossDown := prevReady && prevHist >= 0 && hist < 0
		prevHist = hist
		prevReady = true

		switch {
		case position == 0 && crossUp:
			position = 1
		case position == 1 && crossDown:
			position = 0
		}
		out[i] = position
	}
	return out
}

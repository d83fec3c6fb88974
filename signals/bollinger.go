package signals

import (
	"fmt"

	"github.com/quantlab/folio/indicators"
	"github.com/quantlab/folio/market"
)

// BollingerReversion buys when the close drops below the lower band and
// exits once it recovers above the middle band.
type BollingerReversion struct {
	p Params
}

// NewBollingerReversion builds the generator with the given parameters.
func NewBollingerReversion(p Params) *BollingerReversion {
	return &BollingerReversion{p: p}
}

func (g *BollingerReversion) Name() string {
	return fmt.Sprintf("bollinger(%d,%.1f)", g.p.BollWindow, g.p.BollStd)
}

func (g *BollingerReversion) Signals(bars []market.Bar) []float64 {
	bb := indicators.NewBollinger(g.p.BollWindow, g.p.BollStd)

	out := make([]float64, len(bars))
	position := 0.0

	for i, b := range bars {
		bb.Update(b.Close)
		if !bb.Ready() {
			out[i] = position
			continue
		}

		switch {
		case position == 0 && b.Close < bb.Lower():
			position = 1
		case position == 1 && b.Close > bb.Value():
			position = 0
		}
		out[i] = position
	}
	return out
}

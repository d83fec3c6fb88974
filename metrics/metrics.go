// Package metrics derives summary performance statistics from a backtest's
// snapshot sequence and trade log. All ratios with division-by-zero-prone
// denominators are defined with explicit sentinel values rather than left
// to float runtime behavior.
package metrics

import (
	"math"

	"github.com/quantlab/folio/portfolio"
)

// Report is the stateless aggregate computed once at the end of a run.
type Report struct {
	StartEquity float64
	FinalEquity float64

	TotalReturn      float64
	AnnualizedReturn float64
	AnnualizedVol    float64
	SharpeRatio      float64
	SortinoRatio     float64
	CalmarRatio      float64

	// MaxDrawdown is min over t of equity_t/peak_t - 1, so it is <= 0;
	// exactly 0 on a monotonically increasing curve.
	MaxDrawdown float64

	NumTrades     int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	AvgWin        float64
	AvgLoss       float64
	GrossProfit   float64
	GrossLoss     float64

	// ProfitFactor is gross profit over gross loss; +Inf when there are
	// winning trades but no losing ones, 0 when there is neither.
	ProfitFactor float64
}

// Compute derives the report from the full snapshot sequence and trade
// log. riskFreeAnnual is the annual risk-free rate (e.g. 0.02);
// periodsPerYear annualizes per-period statistics (252 for daily bars).
func Compute(snaps []portfolio.Snapshot, fills []portfolio.Fill, riskFreeAnnual float64, periodsPerYear int) Report {
	r := Report{NumTrades: len(fills)}
	tallyFills(&r, fills)

	if len(snaps) == 0 {
		return r
	}
	r.StartEquity = snaps[0].Equity
	r.FinalEquity = snaps[len(snaps)-1].Equity
	r.MaxDrawdown = maxDrawdown(snaps)

	if len(snaps) < 2 || r.StartEquity <= 0 {
		return r
	}

	r.TotalReturn = r.FinalEquity/r.StartEquity - 1

	returns := make([]float64, len(snaps)-1)
	for i := 1; i < len(snaps); i++ {
		returns[i-1] = snaps[i].Equity/snaps[i-1].Equity - 1
	}

	ppy := float64(periodsPerYear)
	n := float64(len(returns))
	rfPeriod := riskFreeAnnual / ppy

	r.AnnualizedReturn = math.Pow(1+r.TotalReturn, ppy/n) - 1

	mean := meanOf(returns)
	sd := stdevOf(returns, mean)
	r.AnnualizedVol = sd * math.Sqrt(ppy)

	// Sharpe is defined as exactly 0 on a zero-variance return series.
	if sd > 0 {
		r.SharpeRatio = (mean - rfPeriod) / sd * math.Sqrt(ppy)
	}
	r.SortinoRatio = sortino(returns, mean, rfPeriod, ppy)
	if r.MaxDrawdown < 0 {
		r.CalmarRatio = r.AnnualizedReturn / -r.MaxDrawdown
	}

	return r
}

func tallyFills(r *Report, fills []portfolio.Fill) {
	for _, f := range fills {
		switch {
		case f.RealizedPL > 0:
			r.WinningTrades++
			r.GrossProfit += f.RealizedPL
		case f.RealizedPL < 0:
			r.LosingTrades++
			r.GrossLoss += -f.RealizedPL
		}
	}
	if closed := r.WinningTrades + r.LosingTrades; closed > 0 {
		r.WinRate = float64(r.WinningTrades) / float64(closed)
	}
	if r.WinningTrades > 0 {
		r.AvgWin = r.GrossProfit / float64(r.WinningTrades)
	}
	if r.LosingTrades > 0 {
		r.AvgLoss = -r.GrossLoss / float64(r.LosingTrades)
	}
	switch {
	case r.GrossLoss > 0:
		r.ProfitFactor = r.GrossProfit / r.GrossLoss
	case r.GrossProfit > 0:
		r.ProfitFactor = math.Inf(1)
	}
}

func maxDrawdown(snaps []portfolio.Snapshot) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, s := range snaps {
		if s.Equity > peak {
			peak = s.Equity
		}
		if peak > 0 {
			if dd := s.Equity/peak - 1; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// sortino uses the sample standard deviation of below-zero returns as the
// downside deviation; it is 0 when there are not enough losing periods to
// measure one.
func sortino(returns []float64, mean, rfPeriod, ppy float64) float64 {
	var down []float64
	for _, x := range returns {
		if x < 0 {
			down = append(down, x)
		}
	}
	if len(down) < 2 {
		return 0
	}
	sd := stdevOf(down, meanOf(down))
	if sd == 0 {
		return 0
	}
	return (mean - rfPeriod) / sd * math.Sqrt(ppy)
}

func meanOf(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdevOf is the sample standard deviation (n-1 denominator); 0 for
// fewer than two observations.
func stdevOf(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

package portfolio

import (
	"math"
	"time"
)

// Executor turns a target weight into a concrete trade against the current
// position, applying slippage and commission. It never mutates ledger
// state; it returns the planned trade for the ledger to apply, which keeps
// computation and state mutation separately testable.
type Executor struct {
	cfg Config
}

// NewExecutor builds an executor for the given configuration.
func NewExecutor(cfg Config) *Executor {
	return &Executor{cfg: cfg}
}

// Plan computes the trade needed to move pos to the target weight.
//
// equity is the previous step's total equity (sizing must never see the
// equity still being computed this step). cash is the ledger's current
// cash, used for affordability clipping when margin is disallowed.
//
// The second return value is false when no trade should happen: the delta
// is below the minimum trade threshold, or clipping reduced it to nothing.
func (x *Executor) Plan(now time.Time, symbol string, target float64, pos Position, price, equity, cash float64) (Trade, bool) {
	if price <= 0 || equity <= 0 {
		return Trade{}, false
	}

	targetQty := target * equity / price
	delta := targetQty - pos.Quantity
	if delta == 0 || math.Abs(delta) < x.cfg.MinTradeThreshold {
		return Trade{}, false
	}

	exec := price * (1 + x.cfg.SlippageBPS/10_000*sign(delta))
	notional := math.Abs(delta) * exec
	comm := x.commission(notional)
	cashDelta := -delta*exec - comm

	if !x.cfg.AllowMargin && cash+cashDelta < -cashTolerance(equity) {
		if delta < 0 {
			// A sell can only push cash negative when its commission
			// exceeds proceeds plus remaining cash. Skip it; the position
			// is carried unchanged.
			return Trade{}, false
		}
		// Clip the buy to the largest affordable notional, possibly zero.
		notional = x.affordableNotional(cash)
		if notional <= 0 {
			return Trade{}, false
		}
		delta = notional / exec
		if delta < x.cfg.MinTradeThreshold {
			return Trade{}, false
		}
		comm = x.commission(notional)
		cashDelta = -(notional + comm)
	}

	return Trade{
		Time:       now,
		Symbol:     symbol,
		Quantity:   delta,
		Price:      exec,
		Commission: comm,
		CashDelta:  cashDelta,
	}, true
}

// commission is max(flat fee, notional * bps).
func (x *Executor) commission(notional float64) float64 {
	return math.Max(x.cfg.FlatCommission, notional*x.cfg.CommissionBPS/10_000)
}

// affordableNotional solves for the largest buy notional n with
// n + max(flat, n*cb) <= budget, where cb is the proportional commission
// rate. Two cases:
//
//	proportional commission dominates: n = budget / (1 + cb)
//	flat fee dominates:                n = budget - flat
//
// The first case applies when its own commission n*cb reaches the flat
// fee, otherwise the second; the split is consistent, so the result is
// deterministic for any budget.
func (x *Executor) affordableNotional(budget float64) float64 {
	cb := x.cfg.CommissionBPS / 10_000
	n := budget / (1 + cb)
	if n*cb >= x.cfg.FlatCommission {
		return n
	}
	return budget - x.cfg.FlatCommission
}

// cashTolerance absorbs float noise when a trade spends cash to exactly
// zero; without it, rebalancing a fully invested portfolio would be
// clipped on rounding error alone.
func cashTolerance(equity float64) float64 {
	return 1e-9 * (math.Abs(equity) + 1)
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

package portfolio

import "time"

// Trade is a planned position change, immutable once created. The executor
// computes it; the ledger applies it. Quantity is a signed share delta:
// positive buys, negative sells.
type Trade struct {
	ID         string
	Time       time.Time
	Symbol     string
	Quantity   float64
	Price      float64 // execution price, slippage included
	Commission float64
	CashDelta  float64 // signed effect on cash, commission included
}

// Fill is an applied trade together with the P&L the ledger realized on
// its closing portion.
type Fill struct {
	Trade
	RealizedPL float64
}

// Position is the ledger's state for one symbol. Quantity is zero when
// flat, negative only when shorting is enabled.
type Position struct {
	Symbol   string
	Quantity float64
	AvgCost  float64
}

// Snapshot is the portfolio's end-of-step record: cash, per-symbol market
// values, and total equity. Equity is always recomputed as cash plus the
// sum of position values, never stored and mutated independently.
type Snapshot struct {
	Time   time.Time
	Cash   float64
	Values map[string]float64
	Equity float64
}

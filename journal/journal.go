// Package journal persists backtest output: the ordered trade log, the
// equity curve, and per-run summaries. Backends: CSV, SQLite, Parquet.
package journal

import "time"

// TradeRecord is one executed trade as written to the journal. Quantity
// is the signed share delta; Price includes slippage; CashDelta includes
// commission.
type TradeRecord struct {
	TradeID    string
	Time       time.Time
	Symbol     string
	Quantity   float64
	Price      float64
	Commission float64
	CashDelta  float64
	RealizedPL float64
}

// EquitySnapshot is one point of the equity curve: cash, the summed market
// value of open positions, and total equity.
type EquitySnapshot struct {
	Time           time.Time
	Cash           float64
	PositionsValue float64
	Equity         float64
}

// Journal records trades and equity snapshots in the order the engine
// produces them.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Discard is a Journal that drops everything. Handy for runs that only
// need the in-memory result.
type Discard struct{}

func (Discard) RecordTrade(TradeRecord) error     { return nil }
func (Discard) RecordEquity(EquitySnapshot) error { return nil }
func (Discard) Close() error                      { return nil }

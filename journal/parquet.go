package journal

import (
	"time"

	"github.com/parquet-go/parquet-go"
)

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// tradeRow is the Parquet schema for the trade log.
type tradeRow struct {
	TradeID    string  `parquet:"trade_id"`
	Timestamp  int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Symbol     string  `parquet:"symbol"`
	Quantity   float64 `parquet:"quantity"`
	Price      float64 `parquet:"price"`
	Commission float64 `parquet:"commission"`
	CashDelta  float64 `parquet:"cash_delta"`
	RealizedPL float64 `parquet:"realized_pl"`
}

// equityRow is the Parquet schema for the equity curve.
type equityRow struct {
	Timestamp      int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Cash           float64 `parquet:"cash"`
	PositionsValue float64 `parquet:"positions_value"`
	Equity         float64 `parquet:"equity"`
}

// Parquet journals a run into two Parquet files. Rows are buffered in
// memory and written at Close; a backtest's full output is small compared
// to the price data that produced it.
type Parquet struct {
	tradesPath string
	equityPath string
	trades     []tradeRow
	equity     []equityRow
}

// NewParquet prepares a Parquet journal writing to the two given paths.
func NewParquet(tradesPath, equityPath string) *Parquet {
	return &Parquet{tradesPath: tradesPath, equityPath: equityPath}
}

func (j *Parquet) RecordTrade(t TradeRecord) error {
	j.trades = append(j.trades, tradeRow{
		TradeID:    t.TradeID,
		Timestamp:  t.Time.UnixMilli(),
		Symbol:     t.Symbol,
		Quantity:   t.Quantity,
		Price:      t.Price,
		Commission: t.Commission,
		CashDelta:  t.CashDelta,
		RealizedPL: t.RealizedPL,
	})
	return nil
}

func (j *Parquet) RecordEquity(e EquitySnapshot) error {
	j.equity = append(j.equity, equityRow{
		Timestamp:      e.Time.UnixMilli(),
		Cash:           e.Cash,
		PositionsValue: e.PositionsValue,
		Equity:         e.Equity,
	})
	return nil
}

// Close flushes both files. Called once, at the end of the run.
func (j *Parquet) Close() error {
	if err := parquet.WriteFile(j.tradesPath, j.trades); err != nil {
		return err
	}
	return parquet.WriteFile(j.equityPath, j.equity)
}

// ReadParquetTrades loads a trade log previously written by a Parquet
// journal.
func ReadParquetTrades(path string) ([]TradeRecord, error) {
	rows, err := parquet.ReadFile[tradeRow](path)
	if err != nil {
		return nil, err
	}
	out := make([]TradeRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, TradeRecord{
			TradeID:    r.TradeID,
			Time:       msToTime(r.Timestamp),
			Symbol:     r.Symbol,
			Quantity:   r.Quantity,
			Price:      r.Price,
			Commission: r.Commission,
			CashDelta:  r.CashDelta,
			RealizedPL: r.RealizedPL,
		})
	}
	return out, nil
}

// ReadParquetEquity loads an equity curve previously written by a Parquet
// journal.
func ReadParquetEquity(path string) ([]EquitySnapshot, error) {
	rows, err := parquet.ReadFile[equityRow](path)
	if err != nil {
		return nil, err
	}
	out := make([]EquitySnapshot, 0, len(rows))
	for _, r := range rows {
		out = append(out, EquitySnapshot{
			Time:           msToTime(r.Timestamp),
			Cash:           r.Cash,
			PositionsValue: r.PositionsValue,
			Equity:         r.Equity,
		})
	}
	return out, nil
}

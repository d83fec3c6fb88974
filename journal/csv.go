package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV journals trades and equity into two flat files, one row per record,
// flushed as they arrive.
type CSV struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

// NewCSV creates (truncating) the two output files and writes headers.
func NewCSV(tradesPath, equityPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{"trade_id", "time", "symbol", "quantity", "price", "commission", "cash_delta", "realized_pl"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"time", "cash", "positions_value", "equity"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{trades: tw, equity: ew, tf: tf, ef: ef}, nil
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Time.Format(time.RFC3339),
		t.Symbol,
		f(t.Quantity),
		f(t.Price),
		f(t.Commission),
		f(t.CashDelta),
		f(t.RealizedPL),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		f(e.Cash),
		f(e.PositionsValue),
		f(e.Equity),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

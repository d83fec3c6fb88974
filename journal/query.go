package journal

import (
	"database/sql"
	"fmt"
	"strings"
)

// GetTrade returns a single trade by ID within this journal's run.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	var rec TradeRecord

	row := j.db.QueryRow(`
		SELECT trade_id, time, symbol, quantity, price, commission, cash_delta, realized_pl
		FROM trades
		WHERE run_id = ? AND trade_id = ?`, j.runID, tradeID)

	err := row.Scan(
		&rec.TradeID,
		&rec.Time,
		&rec.Symbol,
		&rec.Quantity,
		&rec.Price,
		&rec.Commission,
		&rec.CashDelta,
		&rec.RealizedPL,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found in run %q", tradeID, j.runID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTrades returns the run's trade log in execution order.
func (j *SQLite) ListTrades() ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, time, symbol, quantity, price, commission, cash_delta, realized_pl
		FROM trades
		WHERE run_id = ?
		ORDER BY trade_id ASC`, j.runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID,
			&rec.Time,
			&rec.Symbol,
			&rec.Quantity,
			&rec.Price,
			&rec.Commission,
			&rec.CashDelta,
			&rec.RealizedPL,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquity returns the run's equity curve in time order.
func (j *SQLite) ListEquity() ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, cash, positions_value, equity
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, j.runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var rec EquitySnapshot
		if err := rows.Scan(&rec.Time, &rec.Cash, &rec.PositionsValue, &rec.Equity); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetRun loads a run summary by ID (any run in the database, not just this
// journal's own).
func (j *SQLite) GetRun(runID string) (RunSummary, error) {
	var (
		s       RunSummary
		symbols string
	)

	row := j.db.QueryRow(`
		SELECT run_id, created, strategy, symbols, start_time, end_time, steps, gaps,
		       start_equity, final_equity, total_return, annualized_return,
		       annualized_vol, sharpe, max_drawdown, trades, win_rate, profit_factor
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&s.RunID, &s.Created, &s.Strategy, &symbols, &s.Start, &s.End,
		&s.Steps, &s.Gaps,
		&s.Report.StartEquity, &s.Report.FinalEquity, &s.Report.TotalReturn,
		&s.Report.AnnualizedReturn, &s.Report.AnnualizedVol, &s.Report.SharpeRatio,
		&s.Report.MaxDrawdown, &s.Report.NumTrades, &s.Report.WinRate,
		&s.Report.ProfitFactor,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunSummary{}, fmt.Errorf("run %q not found", runID)
		}
		return RunSummary{}, err
	}
	if symbols != "" {
		s.Symbols = strings.Split(symbols, ",")
	}
	return s, nil
}

// ListRuns returns the run IDs in the database, most recent first.
// ULID run IDs sort by creation time, so ordering by ID is ordering by
// time.
func (j *SQLite) ListRuns() ([]string, error) {
	rows, err := j.db.Query(`SELECT run_id FROM runs ORDER BY run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// LatestRun returns the most recently recorded run summary.
func (j *SQLite) LatestRun() (RunSummary, error) {
	ids, err := j.ListRuns()
	if err != nil {
		return RunSummary{}, err
	}
	if len(ids) == 0 {
		return RunSummary{}, fmt.Errorf("no runs recorded")
	}
	return j.GetRun(ids[0])
}

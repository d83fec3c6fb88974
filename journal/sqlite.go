package journal

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite journals one run into a SQLite database. All records insert under
// the run ID given at construction, so a single database accumulates the
// history of many runs.
type SQLite struct {
	db    *sql.DB
	runID string
}

// NewSQLite opens (creating if needed) the journal database at path and
// binds this journal instance to runID.
func NewSQLite(path, runID string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db, runID: runID}, nil
}

// RunID returns the run this journal writes under.
func (j *SQLite) RunID() string { return j.runID }

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, trade_id, time, symbol, quantity, price, commission, cash_delta, realized_pl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, t.TradeID, t.Time, t.Symbol, t.Quantity,
		t.Price, t.Commission, t.CashDelta, t.RealizedPL,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, cash, positions_value, equity)
		VALUES (?, ?, ?, ?, ?)`,
		j.runID, e.Time, e.Cash, e.PositionsValue, e.Equity,
	)
	return err
}

// RecordRun stores the run's summary row.
func (j *SQLite) RecordRun(s RunSummary) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, strategy, symbols, start_time, end_time, steps, gaps,
		 start_equity, final_equity, total_return, annualized_return,
		 annualized_vol, sharpe, max_drawdown, trades, win_rate, profit_factor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.RunID, s.Created, s.Strategy, strings.Join(s.Symbols, ","),
		s.Start, s.End, s.Steps, s.Gaps,
		s.Report.StartEquity, s.Report.FinalEquity, s.Report.TotalReturn,
		s.Report.AnnualizedReturn, s.Report.AnnualizedVol, s.Report.SharpeRatio,
		s.Report.MaxDrawdown, s.Report.NumTrades, s.Report.WinRate,
		s.Report.ProfitFactor,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

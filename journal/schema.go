package journal

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	trade_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	commission REAL NOT NULL,
	cash_delta REAL NOT NULL,
	realized_pl REAL NOT NULL,
	PRIMARY KEY (run_id, trade_id)
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	positions_value REAL NOT NULL,
	equity REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run_time ON trades(run_id, time);
CREATE INDEX IF NOT EXISTS idx_equity_run_time ON equity(run_id, time);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	symbols TEXT NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	steps INTEGER NOT NULL,
	gaps INTEGER NOT NULL,
	start_equity REAL NOT NULL,
	final_equity REAL NOT NULL,
	total_return REAL NOT NULL,
	annualized_return REAL NOT NULL,
	annualized_vol REAL NOT NULL,
	sharpe REAL NOT NULL,
	max_drawdown REAL NOT NULL,
	trades INTEGER NOT NULL,
	win_rate REAL NOT NULL,
	profit_factor REAL NOT NULL
);
`

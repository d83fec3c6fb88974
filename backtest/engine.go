// Package backtest drives a portfolio simulation over an aligned price and
// signal table, one timestamp at a time, and reports the results.
package backtest

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/quantlab/folio/journal"
	"github.com/quantlab/folio/market"
	"github.com/quantlab/folio/metrics"
	"github.com/quantlab/folio/portfolio"
)

// ErrInconsistent signals an internal-consistency failure: the recomputed
// equity disagrees with the snapshot beyond floating tolerance. The run is
// aborted; history is never silently patched.
var ErrInconsistent = errors.New("backtest: internal consistency failure")

// equityTolerance is the relative tolerance for the per-step equity
// reconciliation check.
const equityTolerance = 1e-6

// Engine walks the timeline in strict timestamp order. Per step, for each
// symbol: size the target weight, plan the trade against the ledger's
// current position, apply it; after all symbols, mark to market and record
// a snapshot. Portfolio-level sizing always uses the previous step's
// equity, never the one still being computed.
type Engine struct {
	cfg      portfolio.Config
	prices   *market.Table
	signals  *market.Table
	sizer    *portfolio.Sizer
	executor *portfolio.Executor
	journal  journal.Journal
}

// Result is the full output of one run.
type Result struct {
	Snapshots []portfolio.Snapshot
	Fills     []portfolio.Fill
	Report    metrics.Report

	// Gaps counts (step, symbol) cells skipped for missing price data.
	Gaps  int
	Start time.Time
	End   time.Time
}

// New validates the configuration and data and builds an engine. j may be
// nil when no journaling is wanted.
func New(cfg portfolio.Config, prices, signals *market.Table, j journal.Journal) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}
	if prices == nil || prices.Len() == 0 {
		return nil, fmt.Errorf("backtest: empty price table")
	}
	if signals == nil {
		return nil, fmt.Errorf("backtest: nil signal table")
	}
	if signals.Len() != prices.Len() {
		return nil, fmt.Errorf("backtest: signal index length %d != price index length %d",
			signals.Len(), prices.Len())
	}
	if j == nil {
		j = journal.Discard{}
	}
	return &Engine{
		cfg:      cfg,
		prices:   prices,
		signals:  signals,
		sizer:    portfolio.NewSizer(cfg),
		executor: portfolio.NewExecutor(cfg),
		journal:  j,
	}, nil
}

// Run executes the whole timeline. It either completes a full pass or
// fails atomically; partial results are not valid for reporting. Per-asset
// price gaps are recoverable: the asset is skipped for the step and its
// position carried unchanged.
func (e *Engine) Run() (*Result, error) {
	ledger := portfolio.NewLedger(e.cfg.InitialCapital, e.cfg.AllowShort, e.cfg.AllowMargin)

	times := e.prices.Times()
	symbols := e.prices.Symbols()

	res := &Result{
		Snapshots: make([]portfolio.Snapshot, 0, len(times)),
		Start:     times[0],
		End:       times[len(times)-1],
	}

	prevEquity := e.cfg.InitialCapital
	prevTarget := make(map[string]float64, len(symbols))
	lastPrice := make(map[string]float64, len(symbols))
	seq := 0

	for i, ts := range times {
		for _, sym := range symbols {
			price, ok := e.prices.At(i, sym)
			if !ok {
				// Price gap: hold the position, leave the target alone,
				// and keep the step going for the other symbols.
				res.Gaps++
				continue
			}
			lastPrice[sym] = price

			sig, sigOK := e.signals.At(i, sym)
			target := e.sizer.Target(prevTarget[sym], sig, sigOK)
			prevTarget[sym] = target

			tr, trade := e.executor.Plan(ts, sym, target, ledger.Position(sym), price, prevEquity, ledger.Cash())
			if !trade {
				continue
			}

			seq++
			tr.ID = fmt.Sprintf("%06d", seq)

			realized, err := ledger.Apply(tr)
			if err != nil {
				return nil, fmt.Errorf("backtest: step %s: %w", ts.Format(time.RFC3339), err)
			}
			fill := portfolio.Fill{Trade: tr, RealizedPL: realized}
			res.Fills = append(res.Fills, fill)

			if err := e.journal.RecordTrade(journal.TradeRecord{
				TradeID:    tr.ID,
				Time:       tr.Time,
				Symbol:     tr.Symbol,
				Quantity:   tr.Quantity,
				Price:      tr.Price,
				Commission: tr.Commission,
				CashDelta:  tr.CashDelta,
				RealizedPL: realized,
			}); err != nil {
				return nil, fmt.Errorf("backtest: journal trade: %w", err)
			}
		}

		snap, err := ledger.MarkToMarket(ts, lastPrice)
		if err != nil {
			return nil, fmt.Errorf("backtest: step %s: %w", ts.Format(time.RFC3339), err)
		}
		if err := reconcile(snap); err != nil {
			return nil, err
		}
		res.Snapshots = append(res.Snapshots, snap)

		positionsValue := snap.Equity - snap.Cash
		if err := e.journal.RecordEquity(journal.EquitySnapshot{
			Time:           snap.Time,
			Cash:           snap.Cash,
			PositionsValue: positionsValue,
			Equity:         snap.Equity,
		}); err != nil {
			return nil, fmt.Errorf("backtest: journal equity: %w", err)
		}

		prevEquity = snap.Equity
	}

	res.Report = metrics.Compute(res.Snapshots, res.Fills, e.cfg.RiskFreeRateAnnual, e.cfg.PeriodsPerYear)
	return res, nil
}

// reconcile re-derives equity from the snapshot's own cash and position
// values and compares against the stored equity.
func reconcile(snap portfolio.Snapshot) error {
	sum := snap.Cash
	for _, v := range snap.Values {
		sum += v
	}
	scale := math.Max(1, math.Abs(snap.Equity))
	if math.Abs(sum-snap.Equity) > equityTolerance*scale {
		return fmt.Errorf("%w: equity %.6f != cash+positions %.6f at %s",
			ErrInconsistent, snap.Equity, sum, snap.Time.Format(time.RFC3339))
	}
	return nil
}

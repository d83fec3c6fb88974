package portfolio

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	// ErrShortNotAllowed is returned when applying a trade would leave a
	// negative quantity under a long-only configuration.
	ErrShortNotAllowed = errors.New("ledger: short position not allowed")

	// ErrNegativeCash is returned when applying a trade would drive cash
	// negative under a non-margin configuration.
	ErrNegativeCash = errors.New("ledger: negative cash not allowed")

	// ErrMissingMark is returned when mark-to-market lacks a price for an
	// open position.
	ErrMissingMark = errors.New("ledger: missing mark price for open position")
)

// quantity below this magnitude is treated as flat; it absorbs float noise
// when a position is sold down to zero.
const qtyEpsilon = 1e-9

// Ledger is the single owner of mutable portfolio state: cash and one
// position per symbol. Its state at step t is a pure function of its state
// at t-1 and the trades applied at t.
type Ledger struct {
	cash        float64
	positions   map[string]Position
	realizedPL  float64
	allowShort  bool
	allowMargin bool
}

// NewLedger starts a ledger with the given cash and no positions.
func NewLedger(initialCash float64, allowShort, allowMargin bool) *Ledger {
	return &Ledger{
		cash:        initialCash,
		positions:   make(map[string]Position),
		allowShort:  allowShort,
		allowMargin: allowMargin,
	}
}

// Cash returns current cash.
func (l *Ledger) Cash() float64 { return l.cash }

// RealizedPL returns the cumulative realized profit and loss.
func (l *Ledger) RealizedPL() float64 { return l.realizedPL }

// Position returns the current position for a symbol (zero value when flat).
func (l *Ledger) Position(symbol string) Position {
	p, ok := l.positions[symbol]
	if !ok {
		return Position{Symbol: symbol}
	}
	return p
}

// Positions returns all non-flat positions, sorted by symbol.
func (l *Ledger) Positions() []Position {
	out := make([]Position, 0, len(l.positions))
	for _, p := range l.positions {
		if p.Quantity != 0 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Apply commits an executed trade: cash moves by the trade's cash delta
// and the symbol's position quantity and average cost are updated.
// Average cost is the weighted average on buys; the closing portion of a
// trade realizes quantity_closed * (execution_price - average_cost),
// returned to the caller and accumulated for profit-factor computation.
//
// Apply rejects trades that would violate the ledger's invariants: a
// resulting short under long-only, or negative cash under non-margin.
// Those indicate an executor bug, so the caller should abort the run.
func (l *Ledger) Apply(tr Trade) (float64, error) {
	if tr.Quantity == 0 {
		return 0, fmt.Errorf("ledger: zero-quantity trade %s %s", tr.Symbol, tr.ID)
	}

	pos := l.Position(tr.Symbol)
	newQty := pos.Quantity + tr.Quantity
	if math.Abs(newQty) < qtyEpsilon {
		newQty = 0
	}
	if newQty < 0 && !l.allowShort {
		return 0, fmt.Errorf("%w: %s quantity %.9f", ErrShortNotAllowed, tr.Symbol, newQty)
	}

	newCash := l.cash + tr.CashDelta
	if newCash < -cashTolerance(math.Abs(l.cash)+math.Abs(tr.CashDelta)) && !l.allowMargin {
		return 0, fmt.Errorf("%w: %s cash %.9f", ErrNegativeCash, tr.Symbol, newCash)
	}

	realized := 0.0
	sameSide := pos.Quantity == 0 || pos.Quantity*tr.Quantity > 0

	switch {
	case sameSide:
		// Opening or adding: weighted-average cost.
		total := math.Abs(pos.Quantity) + math.Abs(tr.Quantity)
		pos.AvgCost = (math.Abs(pos.Quantity)*pos.AvgCost + math.Abs(tr.Quantity)*tr.Price) / total
		pos.Quantity = newQty

	default:
		// Reducing, closing, or crossing through zero.
		closed := math.Min(math.Abs(tr.Quantity), math.Abs(pos.Quantity))
		realized = closed * (tr.Price - pos.AvgCost) * sign(pos.Quantity)
		pos.Quantity = newQty
		if newQty == 0 {
			pos.AvgCost = 0
		} else if pos.Quantity*sign(tr.Quantity) > 0 {
			// Crossed zero: the remainder opens at the execution price.
			pos.AvgCost = tr.Price
		}
	}

	l.cash = newCash
	l.positions[tr.Symbol] = pos
	l.realizedPL += realized
	return realized, nil
}

// MarkToMarket revalues open positions at the given prices without
// altering quantities and returns the step's snapshot. Every open
// position must have a mark.
func (l *Ledger) MarkToMarket(now time.Time, marks map[string]float64) (Snapshot, error) {
	values := make(map[string]float64, len(l.positions))
	equity := l.cash
	for sym, p := range l.positions {
		if p.Quantity == 0 {
			continue
		}
		mark, ok := marks[sym]
		if !ok || mark <= 0 {
			return Snapshot{}, fmt.Errorf("%w: %s at %s", ErrMissingMark, sym, now.Format(time.RFC3339))
		}
		v := p.Quantity * mark
		values[sym] = v
		equity += v
	}
	return Snapshot{
		Time:   now,
		Cash:   l.cash,
		Values: values,
		Equity: equity,
	}, nil
}

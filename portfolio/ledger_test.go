package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ledgerTime = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func buy(sym string, qty, price float64) Trade {
	return Trade{Time: ledgerTime, Symbol: sym, Quantity: qty, Price: price, CashDelta: -qty * price}
}

func sell(sym string, qty, price float64) Trade {
	return Trade{Time: ledgerTime, Symbol: sym, Quantity: -qty, Price: price, CashDelta: qty * price}
}

func TestLedgerOpenAndAdd(t *testing.T) {
	t.Parallel()

	l := NewLedger(10_000, false, false)

	realized, err := l.Apply(buy("AAA", 50, 100))
	require.NoError(t, err)
	assert.Zero(t, realized)
	assert.InDelta(t, 5_000.0, l.Cash(), 1e-9)

	pos := l.Position("AAA")
	assert.InDelta(t, 50.0, pos.Quantity, 1e-9)
	assert.InDelta(t, 100.0, pos.AvgCost, 1e-9)

	// Adding at a higher price moves the average cost.
	realized, err = l.Apply(buy("AAA", 25, 106))
	require.NoError(t, err)
	assert.Zero(t, realized)

	pos = l.Position("AAA")
	assert.InDelta(t, 75.0, pos.Quantity, 1e-9)
	assert.InDelta(t, 102.0, pos.AvgCost, 1e-9)
	assert.InDelta(t, 2_350.0, l.Cash(), 1e-9)
}

func TestLedgerReduceRealizesPL(t *testing.T) {
	t.Parallel()

	l := NewLedger(10_000, false, false)
	_, err := l.Apply(buy("AAA", 50, 100))
	require.NoError(t, err)

	realized, err := l.Apply(sell("AAA", 20, 110))
	require.NoError(t, err)
	assert.InDelta(t, 200.0, realized, 1e-9)

	pos := l.Position("AAA")
	assert.InDelta(t, 30.0, pos.Quantity, 1e-9)
	// Average cost is untouched by a partial close.
	assert.InDelta(t, 100.0, pos.AvgCost, 1e-9)
	assert.InDelta(t, 200.0, l.RealizedPL(), 1e-9)
}

func TestLedgerCloseToZeroResetsCost(t *testing.T) {
	t.Parallel()

	l := NewLedger(10_000, false, false)
	_, err := l.Apply(buy("AAA", 50, 100))
	require.NoError(t, err)

	realized, err := l.Apply(sell("AAA", 50, 90))
	require.NoError(t, err)
	assert.InDelta(t, -500.0, realized, 1e-9)

	pos := l.Position("AAA")
	assert.Zero(t, pos.Quantity)
	assert.Zero(t, pos.AvgCost)
	assert.Empty(t, l.Positions())
}

func TestLedgerCloseAbsorbsFloatNoise(t *testing.T) {
	t.Parallel()

	l := NewLedger(10_000, false, false)
	_, err := l.Apply(buy("AAA", 50, 100))
	require.NoError(t, err)

	// Selling a hair more than held, within epsilon, lands exactly flat
	// instead of tripping the short check.
	_, err = l.Apply(sell("AAA", 50+1e-12, 100))
	require.NoError(t, err)
	assert.Zero(t, l.Position("AAA").Quantity)
}

func TestLedgerCrossThroughZero(t *testing.T) {
	t.Parallel()

	l := NewLedger(10_000, true, true)
	_, err := l.Apply(buy("AAA", 10, 100))
	require.NoError(t, err)

	// Sell 15: closes 10 at a 10-point gain, opens 5 short at 110.
	realized, err := l.Apply(sell("AAA", 15, 110))
	require.NoError(t, err)
	assert.InDelta(t, 100.0, realized, 1e-9)

	pos := l.Position("AAA")
	assert.InDelta(t, -5.0, pos.Quantity, 1e-9)
	assert.InDelta(t, 110.0, pos.AvgCost, 1e-9)
}

func TestLedgerRejectsShort(t *testing.T) {
	t.Parallel()

	l := NewLedger(10_000, false, false)
	_, err := l.Apply(buy("AAA", 10, 100))
	require.NoError(t, err)

	_, err = l.Apply(sell("AAA", 15, 100))
	assert.ErrorIs(t, err, ErrShortNotAllowed)
}

func TestLedgerRejectsNegativeCash(t *testing.T) {
	t.Parallel()

	l := NewLedger(1_000, false, false)
	_, err := l.Apply(buy("AAA", 20, 100))
	assert.ErrorIs(t, err, ErrNegativeCash)

	// The same trade passes under margin.
	l = NewLedger(1_000, false, true)
	_, err = l.Apply(buy("AAA", 20, 100))
	assert.NoError(t, err)
	assert.InDelta(t, -1_000.0, l.Cash(), 1e-9)
}

func TestLedgerRejectsZeroQuantity(t *testing.T) {
	t.Parallel()

	l := NewLedger(1_000, false, false)
	_, err := l.Apply(Trade{Symbol: "AAA"})
	assert.Error(t, err)
}

func TestLedgerMarkToMarket(t *testing.T) {
	t.Parallel()

	l := NewLedger(10_000, false, false)
	_, err := l.Apply(buy("AAA", 50, 100))
	require.NoError(t, err)
	_, err = l.Apply(buy("BBB", 10, 200))
	require.NoError(t, err)

	snap, err := l.MarkToMarket(ledgerTime, map[string]float64{"AAA": 110, "BBB": 190})
	require.NoError(t, err)

	assert.Equal(t, ledgerTime, snap.Time)
	assert.InDelta(t, 3_000.0, snap.Cash, 1e-9)
	assert.InDelta(t, 5_500.0, snap.Values["AAA"], 1e-9)
	assert.InDelta(t, 1_900.0, snap.Values["BBB"], 1e-9)
	assert.InDelta(t, 10_400.0, snap.Equity, 1e-9)
}

func TestLedgerMarkToMarketMissingPrice(t *testing.T) {
	t.Parallel()

	l := NewLedger(10_000, false, false)
	_, err := l.Apply(buy("AAA", 50, 100))
	require.NoError(t, err)

	_, err = l.MarkToMarket(ledgerTime, map[string]float64{"BBB": 100})
	assert.ErrorIs(t, err, ErrMissingMark)
}

func TestLedgerPositionsSorted(t *testing.T) {
	t.Parallel()

	l := NewLedger(100_000, false, false)
	for _, sym := range []string{"CCC", "AAA", "BBB"} {
		_, err := l.Apply(buy(sym, 1, 100))
		require.NoError(t, err)
	}

	got := l.Positions()
	require.Len(t, got, 3)
	assert.Equal(t, "AAA", got[0].Symbol)
	assert.Equal(t, "BBB", got[1].Symbol)
	assert.Equal(t, "CCC", got[2].Symbol)
}

package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/folio/metrics"
)

func testTrade(id string, n int) TradeRecord {
	return TradeRecord{
		TradeID:    id,
		Time:       time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC),
		Symbol:     "AAA",
		Quantity:   float64(10 * n),
		Price:      100.5,
		Commission: 1.25,
		CashDelta:  -1006.25,
		RealizedPL: float64(n),
	}
}

func openTestDB(t *testing.T, runID string) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.sqlite"), runID)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSQLiteTradeRoundtrip(t *testing.T) {
	t.Parallel()

	j := openTestDB(t, "RUN1")
	assert.Equal(t, "RUN1", j.RunID())

	require.NoError(t, j.RecordTrade(testTrade("000001", 1)))
	require.NoError(t, j.RecordTrade(testTrade("000002", 2)))

	got, err := j.ListTrades()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "000001", got[0].TradeID)
	assert.Equal(t, "000002", got[1].TradeID)

	one, err := j.GetTrade("000001")
	require.NoError(t, err)
	assert.Equal(t, "AAA", one.Symbol)
	assert.InDelta(t, 10.0, one.Quantity, 1e-9)
	assert.InDelta(t, 100.5, one.Price, 1e-9)
	assert.InDelta(t, 1.25, one.Commission, 1e-9)
	assert.InDelta(t, -1006.25, one.CashDelta, 1e-9)
	assert.InDelta(t, 1.0, one.RealizedPL, 1e-9)
	assert.True(t, one.Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	_, err = j.GetTrade("999999")
	assert.Error(t, err)
}

func TestSQLiteEquityRoundtrip(t *testing.T) {
	t.Parallel()

	j := openTestDB(t, "RUN1")

	for n := 1; n <= 3; n++ {
		require.NoError(t, j.RecordEquity(EquitySnapshot{
			Time:           time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC),
			Cash:           float64(100 * n),
			PositionsValue: float64(50 * n),
			Equity:         float64(150 * n),
		}))
	}

	got, err := j.ListEquity()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InDelta(t, 100.0, got[0].Cash, 1e-9)
	assert.InDelta(t, 450.0, got[2].Equity, 1e-9)
	assert.True(t, got[1].Time.Before(got[2].Time))
}

func TestSQLiteRunSummaries(t *testing.T) {
	t.Parallel()

	j := openTestDB(t, "RUN-B")

	mk := func(id string, ret float64) RunSummary {
		return RunSummary{
			RunID:    id,
			Created:  time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
			Strategy: "ema-cross(20,50)",
			Symbols:  []string{"AAA", "BBB"},
			Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			Steps:    31,
			Gaps:     2,
			Report: metrics.Report{
				StartEquity: 100_000,
				FinalEquity: 100_000 * (1 + ret),
				TotalReturn: ret,
				NumTrades:   7,
				WinRate:     0.6,
			},
		}
	}

	require.NoError(t, j.RecordRun(mk("RUN-A", 0.05)))
	require.NoError(t, j.RecordRun(mk("RUN-B", -0.02)))

	s, err := j.GetRun("RUN-A")
	require.NoError(t, err)
	assert.Equal(t, "ema-cross(20,50)", s.Strategy)
	assert.Equal(t, []string{"AAA", "BBB"}, s.Symbols)
	assert.Equal(t, 31, s.Steps)
	assert.Equal(t, 2, s.Gaps)
	assert.InDelta(t, 0.05, s.Report.TotalReturn, 1e-9)
	assert.Equal(t, 7, s.Report.NumTrades)

	ids, err := j.ListRuns()
	require.NoError(t, err)
	assert.Equal(t, []string{"RUN-B", "RUN-A"}, ids)

	latest, err := j.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, "RUN-B", latest.RunID)

	_, err = j.GetRun("RUN-Z")
	assert.Error(t, err)
}

func TestSQLiteIsolatesRuns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.sqlite")

	j1, err := NewSQLite(path, "RUN1")
	require.NoError(t, err)
	require.NoError(t, j1.RecordTrade(testTrade("000001", 1)))
	require.NoError(t, j1.Close())

	j2, err := NewSQLite(path, "RUN2")
	require.NoError(t, err)
	defer j2.Close()
	require.NoError(t, j2.RecordTrade(testTrade("000001", 2)))

	// Same trade ID in a different run; each journal sees only its own.
	got, err := j2.ListTrades()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 20.0, got[0].Quantity, 1e-9)
}

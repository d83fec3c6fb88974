package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquetJournalRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.parquet")
	equityPath := filepath.Join(dir, "equity.parquet")

	j := NewParquet(tradesPath, equityPath)

	want := []TradeRecord{
		{
			TradeID:    "000001",
			Time:       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Symbol:     "AAA",
			Quantity:   100,
			Price:      100.5,
			Commission: 1.25,
			CashDelta:  -10051.25,
		},
		{
			TradeID:    "000002",
			Time:       time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Symbol:     "AAA",
			Quantity:   -100,
			Price:      102,
			CashDelta:  10200,
			RealizedPL: 150,
		},
	}
	for _, tr := range want {
		require.NoError(t, j.RecordTrade(tr))
	}
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Time:           time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Cash:           500,
		PositionsValue: 10050,
		Equity:         10550,
	}))
	require.NoError(t, j.Close())

	trades, err := ReadParquetTrades(tradesPath)
	require.NoError(t, err)
	assert.Equal(t, want, trades)

	equity, err := ReadParquetEquity(equityPath)
	require.NoError(t, err)
	require.Len(t, equity, 1)
	assert.InDelta(t, 10550.0, equity[0].Equity, 1e-9)
	assert.True(t, equity[0].Time.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestParquetJournalEmptyRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j := NewParquet(filepath.Join(dir, "t.parquet"), filepath.Join(dir, "e.parquet"))
	require.NoError(t, j.Close())

	trades, err := ReadParquetTrades(filepath.Join(dir, "t.parquet"))
	require.NoError(t, err)
	assert.Empty(t, trades)
}

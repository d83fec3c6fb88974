package journal

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/folio/metrics"
)

func TestWriteOrg(t *testing.T) {
	t.Parallel()

	s := RunSummary{
		RunID:    "01HZXW0TESTRUN",
		Created:  time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC),
		Strategy: "macd(12,26,9)",
		Symbols:  []string{"AAA", "BBB"},
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Steps:    31,
		Report: metrics.Report{
			StartEquity:   100_000,
			FinalEquity:   104_500,
			TotalReturn:   0.045,
			SharpeRatio:   1.3,
			MaxDrawdown:   -0.08,
			NumTrades:     6,
			WinningTrades: 4,
			LosingTrades:  2,
			WinRate:       4.0 / 6.0,
			ProfitFactor:  2.5,
		},
	}

	path := filepath.Join(t.TempDir(), "run.org")
	require.NoError(t, s.WriteOrg(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, ":RUN_ID:      01HZXW0TESTRUN")
	assert.Contains(t, out, "macd(12,26,9) [AAA, BBB]")
	assert.Contains(t, out, ":START_DATE:  2024-01-01")
	assert.Contains(t, out, "Total Return:       *4.50%*")
	assert.Contains(t, out, "Max Drawdown:       *-8.00%*")
	assert.Contains(t, out, "Profit Factor:      *2.50*")
	assert.Contains(t, out, "| Wins    | 4 |")
}

func TestWriteOrgInfiniteProfitFactor(t *testing.T) {
	t.Parallel()

	s := RunSummary{
		RunID:    "01HZXW0TESTRUN",
		Created:  time.Now().UTC(),
		Strategy: "ema-cross(20,50)",
		Symbols:  []string{"AAA"},
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Report:   metrics.Report{ProfitFactor: math.Inf(1)},
	}

	path := filepath.Join(t.TempDir(), "run.org")
	require.NoError(t, s.WriteOrg(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "inf (no losing trades)")
}

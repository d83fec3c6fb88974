package journal

import (
	"bytes"
	"math"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/quantlab/folio/metrics"
)

// RunSummary mirrors a row of the runs table: what was run, over what
// range, and the metrics it produced.
type RunSummary struct {
	RunID    string
	Created  time.Time
	Strategy string
	Symbols  []string

	Start time.Time
	End   time.Time
	Steps int
	Gaps  int

	Report metrics.Report
}

var orgFuncs = template.FuncMap{
	"pct": func(x float64) float64 { return x * 100.0 },
	"join": func(xs []string) string {
		return strings.Join(xs, ", ")
	},
	"pf": func(x float64) string {
		if math.IsInf(x, 1) {
			return "inf (no losing trades)"
		}
		return strconv.FormatFloat(x, 'f', 2, 64)
	},
}

// WriteOrg renders the run summary as an Org document at path.
func (s *RunSummary) WriteOrg(path string) error {
	t, err := template.New("run").Funcs(orgFuncs).Parse(runOrgTemplate)
	if err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	if err := t.Execute(buf, s); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

const runOrgTemplate = `
* BACKTEST: {{.Strategy}} [{{join .Symbols}}]
:PROPERTIES:
:RUN_ID:      {{.RunID}}
:STRATEGY:    {{.Strategy}}
:SYMBOLS:     {{join .Symbols}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:STEPS:       {{.Steps}}
:GAPS:        {{.Gaps}}
:START_EQ:    {{printf "%.2f" .Report.StartEquity}}
:FINAL_EQ:    {{printf "%.2f" .Report.FinalEquity}}
:TRADES:      {{.Report.NumTrades}}
:CREATED:     [{{.Created.Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Total Return:       *{{printf "%.2f" (pct .Report.TotalReturn)}}%*
- Annualized Return:  *{{printf "%.2f" (pct .Report.AnnualizedReturn)}}%*
- Annualized Vol:     *{{printf "%.2f" (pct .Report.AnnualizedVol)}}%*
- Sharpe Ratio:       *{{printf "%.2f" .Report.SharpeRatio}}*
- Sortino Ratio:      *{{printf "%.2f" .Report.SortinoRatio}}*
- Calmar Ratio:       *{{printf "%.2f" .Report.CalmarRatio}}*
- Max Drawdown:       *{{printf "%.2f" (pct .Report.MaxDrawdown)}}%*
- Profit Factor:      *{{pf .Report.ProfitFactor}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Report.WinningTrades}} |
| Losses  | {{.Report.LosingTrades}} |
| Total   | {{.Report.NumTrades}} |

- Win Rate: {{printf "%.1f" (pct .Report.WinRate)}}%
- Avg Win:  {{printf "%.2f" .Report.AvgWin}}
- Avg Loss: {{printf "%.2f" .Report.AvgLoss}}
`

package cli

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantlab/folio/backtest"
	"github.com/quantlab/folio/config"
	"github.com/quantlab/folio/dataset"
	"github.com/quantlab/folio/internal/id"
	"github.com/quantlab/folio/journal"
	"github.com/quantlab/folio/market"
	"github.com/quantlab/folio/signals"
)

func newBacktestCmd() *cobra.Command {
	var (
		cfgPath  string
		strategy string
		prices   string
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run a backtest and journal the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(cfgPath)
			if err != nil {
				return err
			}
			if strategy != "" {
				cfg.Strategy.Name = strategy
			}
			if prices != "" {
				cfg.Data.PricesFile = prices
			}
			return runBacktest(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "folio.yaml", "config file (YAML or JSON)")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "override strategy name from config")
	cmd.Flags().StringVarP(&prices, "prices", "p", "", "override prices file from config")

	return cmd
}

// runBacktest is the full pipeline: load, align, signal, simulate, journal,
// report.
func runBacktest(w io.Writer, cfg *config.Config) error {
	series, err := dataset.LoadBars(cfg.Data.PricesFile)
	if err != nil {
		return err
	}

	prices, err := market.Align(series, market.GapPolicy(cfg.Data.GapPolicy))
	if err != nil {
		return err
	}

	strategyName := "external"
	var points map[string][]market.SignalPoint
	if cfg.Data.SignalsFile != "" {
		points, err = dataset.LoadSignals(cfg.Data.SignalsFile)
		if err != nil {
			return err
		}
	} else {
		gen, err := signals.ByName(cfg.Strategy.Name, cfg.Strategy.Params)
		if err != nil {
			return err
		}
		strategyName = gen.Name()
		points = signals.Table(gen, series)
	}

	sigTable, dropped, err := market.AlignSignals(prices.Times(), points)
	if err != nil {
		return err
	}
	if dropped > 0 {
		fmt.Fprintf(w, "warning: %d signal points fell outside the price index and were dropped\n", dropped)
	}

	runID := id.New()

	j, sqlj, err := openJournal(cfg, runID)
	if err != nil {
		return err
	}
	defer j.Close()

	engine, err := backtest.New(cfg.Portfolio, prices, sigTable, j)
	if err != nil {
		return err
	}

	res, err := engine.Run()
	if err != nil {
		return err
	}

	summary := journal.RunSummary{
		RunID:    runID,
		Created:  time.Now().UTC(),
		Strategy: strategyName,
		Symbols:  prices.Symbols(),
		Start:    res.Start,
		End:      res.End,
		Steps:    prices.Len(),
		Gaps:     res.Gaps,
		Report:   res.Report,
	}

	if sqlj != nil {
		if err := sqlj.RecordRun(summary); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}
	if cfg.Journal.OrgFile != "" {
		if err := summary.WriteOrg(cfg.Journal.OrgFile); err != nil {
			return fmt.Errorf("write org summary: %w", err)
		}
	}

	printSummary(w, summary)
	return nil
}

// openJournal builds the journal named by the config. The second return is
// non-nil only for the sqlite journal, which additionally records run
// summaries.
func openJournal(cfg *config.Config, runID string) (journal.Journal, *journal.SQLite, error) {
	switch cfg.Journal.Type {
	case "none":
		return journal.Discard{}, nil, nil
	case "csv":
		j, err := journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
		return j, nil, err
	case "parquet":
		return journal.NewParquet(cfg.Journal.TradesFile, cfg.Journal.EquityFile), nil, nil
	case "sqlite":
		j, err := journal.NewSQLite(cfg.Journal.DBPath, runID)
		return j, j, err
	default:
		return nil, nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}

func printSummary(w io.Writer, s journal.RunSummary) {
	fmt.Fprintf(w, "Run        %s\n", s.RunID)
	fmt.Fprintf(w, "Strategy   %s\n", s.Strategy)
	fmt.Fprintf(w, "Range      %s .. %s (%d steps, %d gaps)\n",
		s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"), s.Steps, s.Gaps)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Start Equity       %12.2f\n", s.Report.StartEquity)
	fmt.Fprintf(w, "Final Equity       %12.2f\n", s.Report.FinalEquity)
	fmt.Fprintf(w, "Total Return       %11.2f%%\n", s.Report.TotalReturn*100)
	fmt.Fprintf(w, "Annualized Return  %11.2f%%\n", s.Report.AnnualizedReturn*100)
	fmt.Fprintf(w, "Annualized Vol     %11.2f%%\n", s.Report.AnnualizedVol*100)
	fmt.Fprintf(w, "Sharpe Ratio       %12.2f\n", s.Report.SharpeRatio)
	fmt.Fprintf(w, "Sortino Ratio      %12.2f\n", s.Report.SortinoRatio)
	fmt.Fprintf(w, "Max Drawdown       %11.2f%%\n", s.Report.MaxDrawdown*100)
	fmt.Fprintf(w, "Trades             %12d\n", s.Report.NumTrades)
	fmt.Fprintf(w, "Win Rate           %11.1f%%\n", s.Report.WinRate*100)
	if math.IsInf(s.Report.ProfitFactor, 1) {
		fmt.Fprintf(w, "Profit Factor      %12s\n", "inf")
	} else {
		fmt.Fprintf(w, "Profit Factor      %12.2f\n", s.Report.ProfitFactor)
	}
}

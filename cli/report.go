package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantlab/folio/journal"
)

func newReportCmd() *cobra.Command {
	var (
		dbPath  string
		runID   string
		orgFile string
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show past runs from a sqlite journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.NewSQLite(dbPath, "")
			if err != nil {
				return err
			}
			defer j.Close()

			w := cmd.OutOrStdout()

			if list {
				ids, err := j.ListRuns()
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					fmt.Fprintln(w, "no runs recorded")
					return nil
				}
				for _, id := range ids {
					s, err := j.GetRun(id)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s  %-24s  %s..%s  return %7.2f%%  trades %d\n",
						s.RunID, s.Strategy,
						s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"),
						s.Report.TotalReturn*100, s.Report.NumTrades)
				}
				return nil
			}

			var s journal.RunSummary
			if runID != "" {
				s, err = j.GetRun(runID)
			} else {
				s, err = j.LatestRun()
			}
			if err != nil {
				return err
			}

			if orgFile != "" {
				if err := s.WriteOrg(orgFile); err != nil {
					return err
				}
				fmt.Fprintf(w, "wrote %s\n", orgFile)
				return nil
			}

			printSummary(w, s)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "./folio.sqlite", "journal database path")
	cmd.Flags().StringVar(&runID, "run", "", "run ID (default: latest)")
	cmd.Flags().StringVar(&orgFile, "org", "", "export the run summary as an Org file")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list all recorded runs")

	return cmd
}

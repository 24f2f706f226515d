package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/walletscan/enrich"
)

func newHistoryCmd(a *app) *cobra.Command {
	var configPath, journalPath, runID string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs from the journal, or the wallets of one run.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if journalPath == "" {
				cfg, err := enrich.LoadConfig(configPath)
				if err != nil {
					return err
				}
				journalPath = cfg.Run.JournalPath
			}
			if journalPath == "" {
				return fmt.Errorf("%w: journal is disabled", enrich.ErrConfig)
			}
			j, err := enrich.OpenJournal(journalPath, a.logger())
			if err != nil {
				return fmt.Errorf("walletscan: %w", err)
			}
			defer j.Close()

			if runID != "" {
				outs, err := j.Outcomes(cmd.Context(), runID)
				if err != nil {
					return err
				}
				a.printOutcomes(outs)
				return nil
			}
			runs, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			a.printRuns(runs)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to walletscan.yaml (for journal_path)")
	cmd.Flags().StringVar(&journalPath, "journal", "", "journal database (overrides config)")
	cmd.Flags().StringVar(&runID, "run", "", "show the wallet outcomes of this run")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")
	return cmd
}

func (a *app) printRuns(runs []enrich.JournalRun) {
	t := table.NewWriter()
	t.SetOutputMirror(a.out)
	t.AppendHeader(table.Row{"Run", "Started", "Took", "Source", "Status", "Written", "Skipped", "Failed", "Error"})
	for _, r := range runs {
		took := "-"
		if !r.FinishedAt.IsZero() {
			took = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		t.AppendRow(table.Row{r.ID, r.StartedAt.Format(time.DateTime), took, r.Source, r.Status,
			r.Totals.Processed, r.Totals.Skipped, r.Totals.Failed, r.Error})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func (a *app) printOutcomes(outs []enrich.JournalOutcome) {
	t := table.NewWriter()
	t.SetOutputMirror(a.out)
	t.AppendHeader(table.Row{"Row", "Wallet", "Status", "Activities", "Holdings PnL", "Error", "Screenshot"})
	for _, o := range outs {
		t.AppendRow(table.Row{o.Row, o.Wallet, o.Status, o.Activities, o.HoldingsPnL, o.Error, o.Screenshot})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/walletscan/enrich"
	"github.com/hazyhaar/walletscan/sheets"
	"github.com/hazyhaar/walletscan/walletfile"
)

type runFlags struct {
	config          string
	wallets         string
	dryRun          bool
	headless        bool
	continueOnError bool
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch the metrics of every incomplete wallet and write them back.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, f)
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&f.config, "config", "", "path to walletscan.yaml")
	cmd.Flags().StringVar(&f.wallets, "wallets", "", "read wallets from this CSV file instead of the sheet")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "log results instead of writing them to the sheet")
	cmd.Flags().BoolVar(&f.headless, "headless", true, "run Chrome without a window")
	cmd.Flags().BoolVar(&f.continueOnError, "continue-on-error", false, "keep going after a wallet fails")
	return cmd
}

// loadRunConfig applies flag overrides on top of file and environment.
func loadRunConfig(cmd *cobra.Command, f runFlags) (enrich.Config, error) {
	cfg, err := enrich.LoadConfig(f.config)
	if err != nil {
		return cfg, err
	}
	if f.wallets != "" {
		cfg.Run.WalletsFile = f.wallets
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = f.headless
	}
	if f.dryRun {
		cfg.Run.DryRun = true
	}
	if f.continueOnError {
		cfg.Run.ContinueOnError = true
	}
	return cfg, enrich.ValidateConfig(cfg)
}

func (a *app) run(ctx context.Context, cfg enrich.Config) error {
	log := a.logger()

	src, sink, err := a.openStores(ctx, cfg)
	if err != nil {
		return err
	}

	opts := []enrich.Option{enrich.WithLogger(log), enrich.WithGate(a.gate(cfg))}
	if cfg.Run.JournalPath != "" {
		j, err := enrich.OpenJournal(cfg.Run.JournalPath, log)
		if err != nil {
			return fmt.Errorf("walletscan: %w", err)
		}
		defer j.Close()
		opts = append(opts, enrich.WithJournal(j))
	}

	b, err := enrich.StartBrowser(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn("walletscan: close browser", "error", err)
		}
	}()

	sum, runErr := enrich.New(cfg, b.Page(), sink, opts...).Run(ctx, src)
	a.printSummary(sum)
	return runErr
}

// openStores picks the wallet source and result sink. A wallets file wins
// over the sheet as source; a dry run never writes.
func (a *app) openStores(ctx context.Context, cfg enrich.Config) (enrich.WalletSource, enrich.ResultSink, error) {
	var store *sheets.Store
	if cfg.NeedsSheet() {
		s, err := sheets.Open(ctx, sheets.Config{
			SpreadsheetID:   cfg.Sheet.SpreadsheetID,
			SheetName:       cfg.Sheet.Name,
			StartRow:        cfg.Sheet.StartRow,
			CredentialsFile: cfg.Sheet.CredentialsFile,
			CredentialsJSON: cfg.Sheet.CredentialsJSON,
			Logger:          a.logger(),
		})
		if err != nil {
			return nil, nil, err
		}
		store = s
	}

	var src enrich.WalletSource = store
	if cfg.Run.WalletsFile != "" {
		src = walletfile.New(cfg.Run.WalletsFile, cfg.Sheet.StartRow)
	}
	var sink enrich.ResultSink = store
	if cfg.Run.DryRun {
		sink = enrich.LogSink{Logger: a.logger()}
	}
	return src, sink, nil
}

func (a *app) gate(cfg enrich.Config) enrich.Gate {
	if cfg.Run.ResumeFile != "" {
		return enrich.NewFileGate(cfg.Run.ResumeFile, time.Second, a.logger())
	}
	return enrich.NewConsoleGate(a.in, a.errOut)
}

func (a *app) printSummary(sum enrich.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(a.out)
	t.AppendHeader(table.Row{"Row", "Wallet", "Status", "Activities", "Holdings PnL", "Detail", "Time"})
	for _, o := range sum.Outcomes {
		detail := o.Reason
		if o.Err != nil {
			detail = o.Err.Error()
		}
		if o.Screenshot != "" {
			detail += " [" + o.Screenshot + "]"
		}
		t.AppendRow(table.Row{o.Row, shorten(o.Wallet), o.Status, o.Activities, o.HoldingsPnL,
			detail, o.Duration.Round(time.Millisecond)})
	}
	t.AppendFooter(table.Row{"", "", "", "written", sum.Processed, "skipped / failed",
		fmt.Sprintf("%d / %d", sum.Skipped, sum.Failed)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// shorten keeps long addresses readable in the table.
func shorten(wallet string) string {
	if len(wallet) <= 14 {
		return wallet
	}
	return wallet[:6] + "…" + wallet[len(wallet)-6:]
}

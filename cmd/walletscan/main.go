// CLAUDE:SUMMARY CLI entry point for walletscan: run the enrichment pipeline, test extraction on saved pages, list journaled runs.
// Command walletscan fills the Activities and Holdings PnL columns of a
// wallet spreadsheet by reading each wallet's portfolio pages in Chrome.
//
// Usage:
//
//	walletscan run --config walletscan.yaml          # full pipeline
//	walletscan run --wallets wallets.csv --dry-run   # no sheet writes
//	walletscan extract --metric pnl --file page.html # offline extraction
//	walletscan history --limit 10                    # recent runs
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		a.logger().Error("walletscan: fatal", "error", err)
		os.Exit(1)
	}
}

// app carries the process streams and the logger shared by the commands.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	logLevel  string
	logFormat string
	log       *slog.Logger
}

func (a *app) logger() *slog.Logger {
	if a.log == nil {
		a.log = slog.New(slog.NewJSONHandler(a.errOut, nil))
	}
	return a.log
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "walletscan",
		Short:         "walletscan enriches a wallet spreadsheet with portfolio metrics read in a browser.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(a.errOut, a.logLevel, a.logFormat)
			if err != nil {
				return err
			}
			a.log = l
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "json", "log format: json, text")

	root.AddCommand(newRunCmd(a), newExtractCmd(a), newHistoryCmd(a))
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	return root
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("walletscan: unknown log level %q", s)
}

// newLogger builds the JSON handler, or a tint console handler for "text".
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	switch format {
	case "json", "":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	case "text":
		noColor := true
		if f, ok := w.(*os.File); ok {
			noColor = !isatty.IsTerminal(f.Fd())
		}
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
			NoColor:    noColor,
		})), nil
	}
	return nil, fmt.Errorf("walletscan: unknown log format %q", format)
}

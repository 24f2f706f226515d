package enrich

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/hazyhaar/walletscan/enrich/internal/verify"
)

// Gate suspends the run until an operator has solved a verification
// challenge. Re-exported from internal.
type Gate = verify.Gate

// ErrGateClosed is returned by a gate whose resume source has gone away.
var ErrGateClosed = verify.ErrGateClosed

// NewConsoleGate prompts on out and resumes on a line read from in.
func NewConsoleGate(in io.Reader, out io.Writer) Gate {
	return verify.NewConsoleGate(in, out)
}

// NewFileGate resumes when the file at path appears, then deletes it.
func NewFileGate(path string, interval time.Duration, logger *slog.Logger) Gate {
	return verify.NewFileGate(path, interval, logger)
}

// LogSink logs results instead of persisting them. Used for dry runs.
type LogSink struct {
	Logger *slog.Logger
}

// WriteResult logs the row at info level.
func (s LogSink) WriteResult(ctx context.Context, row int, activities, holdingsPnL string) error {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "enrich: dry run, not written",
		"row", row, "activities", activities, "holdings_pnl", holdingsPnL)
	return nil
}

// CLAUDE:SUMMARY Orchestrates the per-wallet pipeline: navigate, verify, extract with retries, pace, and write both metrics in one sink call.
// Package enrich fills the Activities and Holdings PnL columns of a wallet
// list by reading two portfolio pages per wallet in a real browser.
//
// One Enricher owns one page and processes wallets strictly in order. For
// each wallet it loads the activities view, waits out any human
// verification challenge, extracts the count, pauses, does the same for the
// holdings PnL view, and writes both values in a single sink call. Each
// metric fetch is retried with linear backoff; when a fetch exhausts its
// attempts a screenshot is saved and the wallet fails.
//
// Usage:
//
//	e := enrich.New(cfg, page, sink, enrich.WithLogger(logger))
//	summary, err := e.Run(ctx, source)
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hazyhaar/walletscan/enrich/internal/journal"
	"github.com/hazyhaar/walletscan/enrich/internal/pace"
	"github.com/hazyhaar/walletscan/enrich/internal/retry"
	"github.com/hazyhaar/walletscan/enrich/internal/snapshot"
	"github.com/hazyhaar/walletscan/enrich/internal/verify"
)

// Recorder receives run bookkeeping. Implementations must not fail the
// run: errors are theirs to log.
type Recorder interface {
	StartRun(ctx context.Context, source string) string
	RecordOutcome(ctx context.Context, runID string, o journal.Outcome)
	FinishRun(ctx context.Context, runID string, t journal.Totals, err error)
}

type nopRecorder struct{}

func (nopRecorder) StartRun(context.Context, string) string { return "" }
func (nopRecorder) RecordOutcome(context.Context, string, journal.Outcome) {}
func (nopRecorder) FinishRun(context.Context, string, journal.Totals, error) {}

// Enricher runs the pipeline over one page.
type Enricher struct {
	cfg      Config
	page     Page
	sink     ResultSink
	gate     Gate
	detector *verify.Detector
	pacer    Pacer
	retry    *retry.Controller
	shots    *snapshot.Capturer
	journal  Recorder
	logger   *slog.Logger
	settle   func(ctx context.Context, d time.Duration) error
	now      func() time.Time
}

// Pacer is the pause taken after each metric fetch and each written row.
// *pace.Pacer built from Run.RateLimit is the default.
type Pacer interface {
	Pause(ctx context.Context) error
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Enricher) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithGate sets the human verification gate. Default: a console gate on
// stdin/stderr.
func WithGate(g Gate) Option {
	return func(e *Enricher) { e.gate = g }
}

// WithPacer replaces the rate-limit pause.
func WithPacer(p Pacer) Option {
	return func(e *Enricher) {
		if p != nil {
			e.pacer = p
		}
	}
}

// WithJournal records runs and outcomes in r.
func WithJournal(r Recorder) Option {
	return func(e *Enricher) {
		if r != nil {
			e.journal = r
		}
	}
}

// New creates an Enricher. cfg is expected to be validated.
func New(cfg Config, page Page, sink ResultSink, opts ...Option) *Enricher {
	e := &Enricher{
		cfg:      cfg,
		page:     page,
		sink:     sink,
		detector: verify.NewDetector(verify.DefaultHeuristics()),
		journal:  nopRecorder{},
		logger:   slog.Default(),
		settle:   sleep,
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	if e.gate == nil {
		e.gate = verify.NewConsoleGate(os.Stdin, os.Stderr)
	}
	if e.pacer == nil {
		e.pacer = pace.New(cfg.Run.RateLimit, e.logger)
	}
	e.retry = retry.New(retry.Policy{
		MaxAttempts: cfg.Run.MaxRetries,
		Backoff:     cfg.Run.Backoff,
	}, retry.WithLogger(e.logger))
	e.shots = snapshot.New(cfg.Run.ScreenshotDir)
	return e
}

// Run loads the wallets from src and processes them in order. By default
// the first failed wallet stops the run; with ContinueOnError the failure
// is logged and the next wallet is processed. Sink errors and context
// cancellation always stop the run. Rows written before an abort stay
// written.
func (e *Enricher) Run(ctx context.Context, src WalletSource) (Summary, error) {
	var sum Summary
	records, err := src.Wallets(ctx)
	if err != nil {
		return sum, fmt.Errorf("enrich: load wallets: %w", err)
	}

	// Bookkeeping must survive the cancellation that may end the run.
	bg := context.WithoutCancel(ctx)
	runID := e.journal.StartRun(bg, describe(src))
	e.logger.Info("enrich: run started", "run_id", runID, "wallets", len(records))

	runErr := e.loop(ctx, bg, runID, records, &sum)

	e.journal.FinishRun(bg, runID, journal.Totals{
		Processed: sum.Processed,
		Skipped:   sum.Skipped,
		Failed:    sum.Failed,
	}, runErr)
	e.logger.Info("enrich: run finished",
		"run_id", runID,
		"processed", sum.Processed,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"aborted", runErr != nil)
	return sum, runErr
}

func (e *Enricher) loop(ctx, bg context.Context, runID string, records []WalletRecord, sum *Summary) error {
	for _, rec := range records {
		out, err := e.ProcessWallet(ctx, rec)
		sum.add(out)
		e.journal.RecordOutcome(bg, runID, journalOutcome(out))
		if err == nil {
			continue
		}
		if !e.cfg.Run.ContinueOnError || errors.Is(err, ErrSinkWrite) || ctx.Err() != nil {
			return err
		}
		e.logger.Error("enrich: wallet failed, continuing",
			"row", rec.Row, "wallet", rec.Wallet, "error", err)
	}
	return nil
}

// ProcessWallet runs the per-wallet state machine for rec. A skipped
// wallet returns a nil error. The returned Outcome is always filled.
func (e *Enricher) ProcessWallet(ctx context.Context, rec WalletRecord) (Outcome, error) {
	start := e.now()
	out := Outcome{Row: rec.Row, Wallet: rec.Wallet}

	wallet := strings.TrimSpace(rec.Wallet)
	switch {
	case wallet == "":
		return e.skip(out, "blank wallet"), nil
	case rec.Complete():
		return e.skip(out, "already populated"), nil
	}
	e.logger.Info("enrich: processing wallet", "row", rec.Row, "wallet", wallet)

	act, err := e.fetchPaced(ctx, wallet, Activities, &out)
	if err != nil {
		return e.fail(out, start, err)
	}
	out.Activities = act

	pnl, err := e.fetchPaced(ctx, wallet, HoldingsPnL, &out)
	if err != nil {
		return e.fail(out, start, err)
	}
	out.HoldingsPnL = pnl

	e.trace(ctx, wallet, "write-result")
	if err := e.sink.WriteResult(ctx, rec.Row, act, pnl); err != nil {
		return e.fail(out, start, fmt.Errorf("%w: row %d: %w", ErrSinkWrite, rec.Row, err))
	}
	out.Status = StatusWritten
	out.Duration = e.now().Sub(start)
	e.logger.Info("enrich: row written",
		"row", rec.Row,
		"wallet", wallet,
		"activities", act,
		"holdings_pnl", pnl,
		"duration_ms", out.Duration.Milliseconds())

	if err := e.pacer.Pause(ctx); err != nil {
		return out, fmt.Errorf("enrich: pause after row %d: %w", rec.Row, err)
	}
	return out, nil
}

func (e *Enricher) skip(out Outcome, reason string) Outcome {
	out.Status = StatusSkipped
	out.Reason = reason
	e.logger.Info("enrich: skipping row", "row", out.Row, "wallet", out.Wallet, "reason", reason)
	return out
}

func (e *Enricher) fail(out Outcome, start time.Time, err error) (Outcome, error) {
	out.Status = StatusFailed
	out.Err = err
	out.Duration = e.now().Sub(start)
	e.logger.Error("enrich: wallet failed", "row", out.Row, "wallet", out.Wallet, "error", err)
	return out, err
}

// fetchPaced fetches one metric and then pauses, whatever the outcome.
func (e *Enricher) fetchPaced(ctx context.Context, wallet string, kind MetricKind, out *Outcome) (string, error) {
	v, err := e.fetch(ctx, wallet, kind, out)
	if perr := e.pacer.Pause(ctx); perr != nil && err == nil {
		err = fmt.Errorf("enrich: pause after %s: %w", kind, perr)
	}
	return v, err
}

// fetch wraps navigate, verify and extract in the retry controller. On
// exhaustion the current page is captured into the screenshot directory,
// with a markdown dump when the page can serialise its DOM.
func (e *Enricher) fetch(ctx context.Context, wallet string, kind MetricKind, out *Outcome) (string, error) {
	target := SourceURL(e.cfg, kind, wallet)
	task := retry.Task{Wallet: wallet, Metric: kind.String()}

	op := func(ctx context.Context, attempt int) (string, error) {
		e.logger.DebugContext(ctx, "enrich: fetching metric",
			"wallet", wallet, "metric", kind.String(), "attempt", attempt, "url", target)
		if err := e.navigate(ctx, wallet, kind, target); err != nil {
			return "", err
		}
		return e.extract(ctx, wallet, kind, target)
	}
	onExhausted := func(ctx context.Context, _ error) {
		art, err := e.shots.Capture(ctx, e.page, kind.String(), wallet)
		if err != nil {
			e.logger.Warn("enrich: screenshot failed", "wallet", wallet, "metric", kind.String(), "error", err)
			return
		}
		out.Screenshot = art.Path
		e.logger.Info("enrich: screenshot saved", "wallet", wallet, "metric", kind.String(), "path", art.Path)
		if hp, ok := e.page.(snapshot.HTMLSource); ok {
			dump, err := e.shots.Dump(ctx, hp, kind.String(), wallet)
			if err != nil {
				e.logger.Warn("enrich: page dump failed", "wallet", wallet, "metric", kind.String(), "error", err)
				return
			}
			e.logger.Info("enrich: page dump saved", "wallet", wallet, "metric", kind.String(), "path", dump.Path)
		}
	}
	return retry.Do(ctx, e.retry, task, op, onExhausted)
}

// navigate loads target and holds while a verification challenge is shown.
// Each resume re-navigates and re-checks. Time spent waiting does not
// count as an attempt.
func (e *Enricher) navigate(ctx context.Context, wallet string, kind MetricKind, target string) error {
	for {
		e.trace(ctx, wallet, "navigate-"+kind.String())
		if err := e.page.Navigate(ctx, target); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrNavigation, kind, err)
		}

		e.trace(ctx, wallet, "verify-"+kind.String())
		verdict, err := e.detector.Detect(ctx, e.page)
		if err != nil {
			return fmt.Errorf("%w: %s: verification check: %w", ErrNavigation, kind, err)
		}
		if !verdict.Challenged {
			return nil
		}

		e.logger.Warn("enrich: human verification required",
			"wallet", wallet, "metric", kind.String(), "reason", verdict.Reason())
		reason := fmt.Sprintf("%s page of %s, %s", kind, wallet, verdict.Reason())
		if err := e.gate.Await(ctx, reason); err != nil {
			return retry.Permanent(fmt.Errorf("enrich: %s: awaiting verification: %w", kind, err))
		}
		e.logger.Info("enrich: verification resumed", "wallet", wallet, "metric", kind.String())
	}
}

// extract waits for the page to settle and reads kind from its text.
func (e *Enricher) extract(ctx context.Context, wallet string, kind MetricKind, target string) (string, error) {
	if err := e.settle(ctx, e.cfg.Run.Settle); err != nil {
		return "", err
	}
	e.trace(ctx, wallet, "extract-"+kind.String())
	body, err := e.page.BodyText(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %s: read page text: %w", ErrNavigation, kind, err)
	}

	m, err := readMetric(kind, body, target)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExtraction, kind, err)
	}
	e.logger.DebugContext(ctx, "enrich: metric extracted",
		"wallet", wallet, "metric", kind.String(), "value", m.Value, "strategy", m.Strategy)
	return m.Value, nil
}

func (e *Enricher) trace(ctx context.Context, wallet, state string) {
	e.logger.DebugContext(ctx, "enrich: state", "wallet", wallet, "state", state)
}

func journalOutcome(o Outcome) journal.Outcome {
	jo := journal.Outcome{
		Row:         o.Row,
		Wallet:      o.Wallet,
		Status:      string(o.Status),
		Activities:  o.Activities,
		HoldingsPnL: o.HoldingsPnL,
		Screenshot:  o.Screenshot,
		Duration:    o.Duration,
	}
	switch {
	case o.Err != nil:
		jo.Error = o.Err.Error()
	case o.Reason != "":
		jo.Error = o.Reason
	}
	return jo
}

func describe(src WalletSource) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", src)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

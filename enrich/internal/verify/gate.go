package verify

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// ErrGateClosed is returned when a gate can no longer deliver a resume
// signal (e.g. stdin reached EOF).
var ErrGateClosed = errors.New("verify: resume source closed")

// Gate suspends the pipeline until an operator signals that a challenge
// was solved. Await has no timeout of its own: it returns when the signal
// arrives or ctx is done.
type Gate interface {
	Await(ctx context.Context, reason string) error
}

// ConsoleGate waits for a line on an input stream, normally stdin.
//
// Each line is tagged with the Await that was waiting when it was read. A
// line typed while no Await was waiting, or a second Enter during one
// challenge, never releases a later challenge.
type ConsoleGate struct {
	out io.Writer
	in  io.Reader

	once  sync.Once
	lines chan consoleLine
	read  atomic.Int64

	mu  sync.Mutex
	gen uint64
}

type consoleLine struct{ gen uint64 }

// NewConsoleGate prompts on out and reads resume lines from in.
func NewConsoleGate(in io.Reader, out io.Writer) *ConsoleGate {
	return &ConsoleGate{in: in, out: out}
}

// A single reader goroutine owns the input so that an Await abandoned on
// ctx cancellation cannot race the next one. EOF closes lines.
func (g *ConsoleGate) start() {
	g.lines = make(chan consoleLine, 16)
	go func() {
		r := bufio.NewReader(g.in)
		for {
			if _, err := r.ReadString('\n'); err != nil {
				close(g.lines)
				return
			}
			g.mu.Lock()
			l := consoleLine{gen: g.gen}
			g.mu.Unlock()
			select {
			case g.lines <- l:
			default: // full of stale lines
			}
			g.read.Add(1)
		}
	}()
}

// Await prints the reason and blocks until Enter is pressed.
func (g *ConsoleGate) Await(ctx context.Context, reason string) error {
	g.mu.Lock()
	g.gen++
	gen := g.gen
	g.mu.Unlock()
	g.once.Do(g.start)

	fmt.Fprintf(g.out, "\n>>> Human verification required (%s).\n>>> Solve it in the browser window, then press Enter to continue... ", reason)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-g.lines:
			if !ok {
				return ErrGateClosed
			}
			if l.gen == gen {
				return nil
			}
		}
	}
}

// FileGate waits for a marker file to appear, then removes it. Used when
// the process runs detached from a terminal.
type FileGate struct {
	path     string
	interval time.Duration
	logger   *slog.Logger
}

// NewFileGate polls for path every interval (default 1s).
func NewFileGate(path string, interval time.Duration, logger *slog.Logger) *FileGate {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileGate{path: path, interval: interval, logger: logger}
}

// Await removes any stale marker, then blocks until the marker is created.
func (g *FileGate) Await(ctx context.Context, reason string) error {
	if err := os.Remove(g.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("verify: clear resume file: %w", err)
	}
	g.logger.WarnContext(ctx, "verify: waiting for resume file", "path", g.path, "reason", reason)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, err := os.Stat(g.path)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				g.logger.Warn("verify: stat resume file", "path", g.path, "error", err)
				continue
			}
			if err := os.Remove(g.path); err != nil {
				return fmt.Errorf("verify: consume resume file: %w", err)
			}
			return nil
		}
	}
}

// ManualGate is resumed programmatically via Resume.
type ManualGate struct {
	resume chan struct{}

	mu      sync.Mutex
	reasons []string
}

// NewManualGate creates a ManualGate.
func NewManualGate() *ManualGate {
	return &ManualGate{resume: make(chan struct{}, 1)}
}

// Resume releases the current or next Await. At most one signal is held.
func (g *ManualGate) Resume() {
	select {
	case g.resume <- struct{}{}:
	default:
	}
}

// Reasons returns the reasons passed to Await so far.
func (g *ManualGate) Reasons() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.reasons...)
}

// Await blocks until Resume or ctx is done.
func (g *ManualGate) Await(ctx context.Context, reason string) error {
	g.mu.Lock()
	g.reasons = append(g.reasons, reason)
	g.mu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.resume:
		return nil
	}
}

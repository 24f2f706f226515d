package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRunLifecycle(t *testing.T) {
	j := openMemory(t)
	ctx := context.Background()
	clock := time.UnixMilli(1_700_000_000_000)
	j.now = func() time.Time { return clock }

	id := j.StartRun(ctx, "sheet")
	assert.Contains(t, id, "run_")

	j.RecordOutcome(ctx, id, Outcome{Row: 2, Wallet: "w1", Status: "skipped"})
	j.RecordOutcome(ctx, id, Outcome{Row: 3, Wallet: "w2", Status: "written",
		Activities: "12", HoldingsPnL: "-3.5", Duration: 1500 * time.Millisecond})

	runs, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "running", runs[0].Status)
	assert.True(t, runs[0].FinishedAt.IsZero())

	clock = clock.Add(time.Minute)
	j.FinishRun(ctx, id, Totals{Processed: 1, Skipped: 1}, nil)

	runs, err = j.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "done", runs[0].Status)
	assert.Equal(t, "sheet", runs[0].Source)
	assert.Equal(t, Totals{Processed: 1, Skipped: 1}, runs[0].Totals)
	assert.True(t, clock.Equal(runs[0].FinishedAt))

	outs, err := j.Outcomes(ctx, id)
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Equal(t, "skipped", outs[0].Status)
	assert.Empty(t, outs[0].Activities)
	assert.Equal(t, "-3.5", outs[1].HoldingsPnL)
	assert.Equal(t, 1500*time.Millisecond, outs[1].Duration)
}

func TestFinishRunFailed(t *testing.T) {
	j := openMemory(t)
	ctx := context.Background()
	id := j.StartRun(ctx, "file")
	j.FinishRun(ctx, id, Totals{Failed: 1}, errors.New("activities: exhausted"))

	runs, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "failed", runs[0].Status)
	assert.Equal(t, "activities: exhausted", runs[0].Error)
}

func TestRecordOutcomeUnknownRunIsSwallowed(t *testing.T) {
	j := openMemory(t)
	// Foreign key violation: logged, not returned.
	j.RecordOutcome(context.Background(), "run_missing", Outcome{Row: 1, Wallet: "w", Status: "failed"})
	outs, err := j.Outcomes(context.Background(), "run_missing")
	require.NoError(t, err)
	assert.Empty(t, outs)
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "walletscan.db")
	j, err := Open(path, nil)
	require.NoError(t, err)
	defer j.Close()
	assert.FileExists(t, path)
}

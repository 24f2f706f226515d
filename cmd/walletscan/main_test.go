package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/walletscan/enrich"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := &app{in: strings.NewReader(""), out: &out, errOut: &errOut}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := parseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := parseLevel("loud")
	assert.Error(t, err)
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "info", "text")
	require.NoError(t, err)
	l.Info("hello", "row", 2)
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), "\x1b[", "no colour when not a terminal")

	_, err = newLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "pnl.html")
	require.NoError(t, os.WriteFile(page,
		[]byte(`<html><body><span>Holdings PnL:</span> <b>$12,000.5</b></body></html>`), 0o644))

	out, err := execute(t, "extract", "--metric", "pnl", "--file", page)
	require.NoError(t, err)
	assert.Equal(t, "12,000.5\n", out)

	_, err = execute(t, "extract", "--metric", "volume", "--file", page)
	assert.Error(t, err)
}

func TestExtractCommand_ActivitiesViewWithoutSection(t *testing.T) {
	page := filepath.Join(t.TempDir(), "act.html")
	require.NoError(t, os.WriteFile(page, []byte(`<html><body><p>Portfolio</p></body></html>`), 0o644))

	out, err := execute(t, "extract", "--file", page)
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)

	_, err = execute(t, "extract", "--file", page, "--url", "https://jup.ag/portfolio/w")
	assert.ErrorIs(t, err, enrich.ErrExtraction)
}

func TestHistoryCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walletscan.db")
	j, err := enrich.OpenJournal(path, nil)
	require.NoError(t, err)
	ctx := context.Background()
	id := j.StartRun(ctx, "file:wallets.csv")
	j.RecordOutcome(ctx, id, enrich.JournalOutcome{Row: 2, Wallet: "w1", Status: "written", Activities: "4"})
	j.FinishRun(ctx, id, enrich.JournalTotals{Processed: 1}, nil)
	require.NoError(t, j.Close())

	out, err := execute(t, "history", "--journal", path)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "file:wallets.csv")
	assert.Contains(t, out, "done")

	out, err = execute(t, "history", "--journal", path, "--run", id)
	require.NoError(t, err)
	assert.Contains(t, out, "w1")
	assert.Contains(t, out, "written")
}

func TestRunCommand_ConfigErrorBeforeBrowser(t *testing.T) {
	t.Setenv("SPREADSHEET_ID", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("WALLETS_FILE", "")

	_, err := execute(t, "run")
	require.ErrorIs(t, err, enrich.ErrConfig)
	assert.Contains(t, err.Error(), "SPREADSHEET_ID")
}

func TestExtractCommand_Dump(t *testing.T) {
	page := filepath.Join(t.TempDir(), "act.html")
	require.NoError(t, os.WriteFile(page,
		[]byte(`<html><body><h2>Activities</h2><p>Total 3 activities</p></body></html>`), 0o644))

	out, err := execute(t, "extract", "--file", page, "--dump")
	require.NoError(t, err)
	assert.Contains(t, out, "## Activities")
	assert.Contains(t, out, "Total 3 activities")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "Sheet1", cfg.Sheet.Name)
	assert.Equal(t, 2, cfg.Sheet.StartRow)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 2*time.Second, cfg.Run.RateLimit)
	assert.Equal(t, 3, cfg.Run.MaxRetries)
	assert.Equal(t, 45*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, "screenshots", cfg.Run.ScreenshotDir)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, mapLookup(map[string]string{
		"SPREADSHEET_ID":    " 1AbC ",
		"SHEET_NAME":        "Wallets",
		"START_ROW":         "5",
		"HEADLESS":          "false",
		"RATE_LIMIT_MS":     "500",
		"MAX_RETRIES":       "4",
		"TIMEOUT_MS":        "10000",
		"BLOCK_RESOURCES":   "images, fonts,,",
		"CONTINUE_ON_ERROR": "true",
		"JOURNAL_PATH":      "",
	}))
	require.NoError(t, err)
	assert.Equal(t, "1AbC", cfg.Sheet.SpreadsheetID)
	assert.Equal(t, "Wallets", cfg.Sheet.Name)
	assert.Equal(t, 5, cfg.Sheet.StartRow)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 500*time.Millisecond, cfg.Run.RateLimit)
	assert.Equal(t, 4, cfg.Run.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, []string{"images", "fonts"}, cfg.Browser.ResourceBlocking)
	assert.True(t, cfg.Run.ContinueOnError)
	assert.Empty(t, cfg.Run.JournalPath)
}

func TestApplyEnv_BadNumber(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, mapLookup(map[string]string{"MAX_RETRIES": "three"}))
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "MAX_RETRIES")
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walletscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sheet:
  spreadsheet_id: from-yaml
  name: Tab
run:
  rate_limit: 750ms
  max_retries: 2
browser:
  headless: false
`), 0o644))
	t.Setenv("SHEET_NAME", "FromEnv")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", cfg.Sheet.SpreadsheetID)
	assert.Equal(t, "FromEnv", cfg.Sheet.Name)
	assert.Equal(t, 750*time.Millisecond, cfg.Run.RateLimit)
	assert.Equal(t, 2, cfg.Run.MaxRetries)
	assert.False(t, cfg.Browser.Headless)
	// Untouched keys keep their defaults.
	assert.Equal(t, 2, cfg.Sheet.StartRow)
	assert.Equal(t, "screenshots", cfg.Run.ScreenshotDir)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"flat key", "spreadsheet_id: abc\n"},
		{"legacy millis key", "run:\n  rate_limit_ms: 750\n"},
		{"misspelt nested key", "browser:\n  chrome_url: ws://127.0.0.1:9222\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "walletscan.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := Load(path)
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), "not found")
		})
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walletscan.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Run.MaxRetries, cfg.Run.MaxRetries)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Sheet.SpreadsheetID = "sheet"
	valid.Sheet.CredentialsFile = "sa.json"
	require.NoError(t, valid.Validate())

	noID := Default()
	err := noID.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "SPREADSHEET_ID")

	noCreds := valid
	noCreds.Sheet.CredentialsFile = ""
	assert.ErrorIs(t, noCreds.Validate(), ErrInvalid)

	dry := Default()
	dry.Run.DryRun = true
	dry.Run.WalletsFile = "wallets.csv"
	assert.NoError(t, dry.Validate())

	badTmpl := valid
	badTmpl.Sources.PnLURL = "https://jup.ag/portfolio"
	assert.ErrorIs(t, badTmpl.Validate(), ErrInvalid)

	badRetries := valid
	badRetries.Run.MaxRetries = 0
	assert.ErrorIs(t, badRetries.Validate(), ErrInvalid)
}

func TestURLFor(t *testing.T) {
	assert.Equal(t, "https://jup.ag/portfolio/abc?tab=activities",
		URLFor("https://jup.ag/portfolio/{wallet}?tab=activities", "abc"))
}

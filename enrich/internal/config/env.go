package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// lookupFunc matches os.LookupEnv.
type lookupFunc func(key string) (string, bool)

// applyEnv overlays environment variables onto cfg. Millisecond settings
// keep the _MS suffix used by existing deployments.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	e := envReader{lookup: lookup}

	e.str("SPREADSHEET_ID", &cfg.Sheet.SpreadsheetID)
	e.str("SHEET_NAME", &cfg.Sheet.Name)
	e.str("GOOGLE_APPLICATION_CREDENTIALS", &cfg.Sheet.CredentialsFile)
	e.str("GOOGLE_SERVICE_ACCOUNT_JSON", &cfg.Sheet.CredentialsJSON)
	e.integer("START_ROW", &cfg.Sheet.StartRow)

	e.str("CHROME_URL", &cfg.Browser.Remote)
	e.boolean("HEADLESS", &cfg.Browser.Headless)
	e.millis("TIMEOUT_MS", &cfg.Browser.Timeout)
	e.list("BLOCK_RESOURCES", &cfg.Browser.ResourceBlocking)

	e.str("ACTIVITIES_URL", &cfg.Sources.ActivitiesURL)
	e.str("PNL_URL", &cfg.Sources.PnLURL)

	e.str("WALLETS_FILE", &cfg.Run.WalletsFile)
	e.millis("RATE_LIMIT_MS", &cfg.Run.RateLimit)
	e.integer("MAX_RETRIES", &cfg.Run.MaxRetries)
	e.millis("BACKOFF_MS", &cfg.Run.Backoff)
	e.millis("SETTLE_MS", &cfg.Run.Settle)
	e.str("SCREENSHOT_DIR", &cfg.Run.ScreenshotDir)
	e.str("JOURNAL_PATH", &cfg.Run.JournalPath)
	e.str("RESUME_FILE", &cfg.Run.ResumeFile)
	e.boolean("CONTINUE_ON_ERROR", &cfg.Run.ContinueOnError)

	return e.err
}

type envReader struct {
	lookup lookupFunc
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) fail(key, v string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
	}
}

// str sets dst when key is present, even to the empty string, so an env
// var can clear a value set in the YAML file.
func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) integer(key string, dst *int) {
	v, ok := e.get(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) boolean(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = b
}

func (e *envReader) millis(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = time.Duration(n) * time.Millisecond
}

func (e *envReader) list(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

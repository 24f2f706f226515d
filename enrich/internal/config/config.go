// CLAUDE:SUMMARY Defines the walletscan configuration, loads it from YAML and environment with defaults, and validates it.
// Package config builds the immutable run configuration: defaults, then an
// optional YAML file, then environment variables. Callers apply flag
// overrides on the returned value before calling Validate.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid marks configuration errors. Wrapped by Validate and Load.
var ErrInvalid = errors.New("config: invalid")

// WalletPlaceholder is replaced by the wallet address in URL templates.
const WalletPlaceholder = "{wallet}"

// Config is the top-level walletscan configuration.
type Config struct {
	Sheet   SheetConfig   `yaml:"sheet"`
	Browser BrowserConfig `yaml:"browser"`
	Sources SourcesConfig `yaml:"sources"`
	Run     RunConfig     `yaml:"run"`
}

// SheetConfig locates the spreadsheet and its credentials.
type SheetConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	Name            string `yaml:"name"`
	CredentialsFile string `yaml:"credentials_file"`
	CredentialsJSON string `yaml:"credentials_json"`
	StartRow        int    `yaml:"start_row"`
}

// BrowserConfig controls Chrome.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`
	Headless         bool          `yaml:"headless"`
	Timeout          time.Duration `yaml:"timeout"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
}

// SourcesConfig holds the two metric page URL templates.
type SourcesConfig struct {
	ActivitiesURL string `yaml:"activities_url"`
	PnLURL        string `yaml:"pnl_url"`
}

// RunConfig tunes the pipeline.
type RunConfig struct {
	WalletsFile     string        `yaml:"wallets_file"`
	RateLimit       time.Duration `yaml:"rate_limit"`
	MaxRetries      int           `yaml:"max_retries"`
	Backoff         time.Duration `yaml:"backoff"`
	Settle          time.Duration `yaml:"settle"`
	ScreenshotDir   string        `yaml:"screenshot_dir"`
	JournalPath     string        `yaml:"journal_path"`
	ResumeFile      string        `yaml:"resume_file"`
	ContinueOnError bool          `yaml:"continue_on_error"`
	DryRun          bool          `yaml:"dry_run"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Sheet: SheetConfig{
			Name:     "Sheet1",
			StartRow: 2,
		},
		Browser: BrowserConfig{
			Headless:         true,
			Timeout:          45 * time.Second,
			ResourceBlocking: []string{"media", "fonts"},
		},
		Sources: SourcesConfig{
			ActivitiesURL: "https://jup.ag/portfolio/{wallet}?tab=activities",
			PnLURL:        "https://jup.ag/portfolio/{wallet}",
		},
		Run: RunConfig{
			RateLimit:     2 * time.Second,
			MaxRetries:    3,
			Backoff:       3 * time.Second,
			Settle:        5 * time.Second,
			ScreenshotDir: "screenshots",
			JournalPath:   "walletscan.db",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the process environment. It does not validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode overlays YAML onto cfg. Unknown keys are rejected so a misplaced
// or misspelt setting fails loudly instead of leaving the default in place.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks required fields and ranges.
func (c Config) Validate() error {
	var errs []error
	if c.NeedsSheet() {
		if c.Sheet.SpreadsheetID == "" {
			errs = append(errs, errors.New("SPREADSHEET_ID is required"))
		}
		if c.Sheet.CredentialsFile == "" && c.Sheet.CredentialsJSON == "" {
			errs = append(errs, errors.New("GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_SERVICE_ACCOUNT_JSON is required"))
		}
	}
	if c.Sheet.Name == "" {
		errs = append(errs, errors.New("sheet name is empty"))
	}
	if c.Sheet.StartRow < 1 {
		errs = append(errs, fmt.Errorf("start row %d < 1", c.Sheet.StartRow))
	}
	if c.Run.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("max retries %d < 1", c.Run.MaxRetries))
	}
	if c.Run.Backoff < 0 || c.Run.RateLimit < 0 || c.Run.Settle < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if c.Browser.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	for name, tmpl := range map[string]string{"activities_url": c.Sources.ActivitiesURL, "pnl_url": c.Sources.PnLURL} {
		if !strings.Contains(tmpl, WalletPlaceholder) {
			errs = append(errs, fmt.Errorf("%s %q lacks %s", name, tmpl, WalletPlaceholder))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// NeedsSheet reports whether the run reads from or writes to the
// spreadsheet. Only a dry run fed from a wallets file does neither.
func (c Config) NeedsSheet() bool {
	return !c.Run.DryRun || c.Run.WalletsFile == ""
}

// URLFor renders a source URL template for wallet.
func URLFor(tmpl, wallet string) string {
	return strings.ReplaceAll(tmpl, WalletPlaceholder, wallet)
}

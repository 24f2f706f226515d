package enrich

import (
	"fmt"

	"github.com/hazyhaar/walletscan/enrich/internal/config"
)

// Config is the top-level walletscan configuration. Re-exported from internal.
type Config = config.Config

// SheetConfig locates the spreadsheet and its credentials.
type SheetConfig = config.SheetConfig

// BrowserConfig controls Chrome.
type BrowserConfig = config.BrowserConfig

// SourcesConfig holds the metric page URL templates.
type SourcesConfig = config.SourcesConfig

// RunConfig tunes the pipeline.
type RunConfig = config.RunConfig

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads defaults, the optional YAML file at path and the
// environment. Flag overrides go on the result before ValidateConfig.
func LoadConfig(path string) (Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return cfg, nil
}

// ValidateConfig checks cfg and wraps failures in ErrConfig.
func ValidateConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}

// SourceURL renders the page URL of kind for wallet.
func SourceURL(cfg Config, kind MetricKind, wallet string) string {
	if kind == HoldingsPnL {
		return config.URLFor(cfg.Sources.PnLURL, wallet)
	}
	return config.URLFor(cfg.Sources.ActivitiesURL, wallet)
}

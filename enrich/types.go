package enrich

import (
	"context"
	"time"
)

// WalletRecord is one row of the wallet store. Activities and HoldingsPnL
// hold the existing cell values; empty means absent.
type WalletRecord struct {
	Wallet      string
	Row         int
	Label       string
	Activities  string
	HoldingsPnL string
}

// Complete reports whether both metric fields already hold a value.
func (r WalletRecord) Complete() bool {
	return r.Activities != "" && r.HoldingsPnL != ""
}

// MetricKind names one of the two metrics fetched per wallet.
type MetricKind int

const (
	Activities MetricKind = iota
	HoldingsPnL
)

func (k MetricKind) String() string {
	switch k {
	case Activities:
		return "activities"
	case HoldingsPnL:
		return "holdings-pnl"
	default:
		return "unknown"
	}
}

// ParseMetricKind accepts "activities" and "pnl" / "holdings-pnl".
func ParseMetricKind(s string) (MetricKind, bool) {
	switch s {
	case "activities", "activity":
		return Activities, true
	case "pnl", "holdings-pnl", "holdings_pnl":
		return HoldingsPnL, true
	}
	return 0, false
}

// Status is the fate of one wallet within a run.
type Status string

const (
	StatusWritten Status = "written"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome records what happened to one wallet.
type Outcome struct {
	Row         int
	Wallet      string
	Status      Status
	Reason      string // skip reason
	Activities  string
	HoldingsPnL string
	Err         error
	Screenshot  string
	Duration    time.Duration
}

// Summary aggregates a run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
	Outcomes  []Outcome
}

func (s *Summary) add(o Outcome) {
	switch o.Status {
	case StatusWritten:
		s.Processed++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
	s.Outcomes = append(s.Outcomes, o)
}

// WalletSource yields the wallet records of a run, in row order.
type WalletSource interface {
	Wallets(ctx context.Context) ([]WalletRecord, error)
}

// ResultSink persists both metric values of a row in one call.
type ResultSink interface {
	WriteResult(ctx context.Context, row int, activities, holdingsPnL string) error
}

// Page is the single browser page the pipeline drives.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
	BodyText(ctx context.Context) (string, error)
	CountMarkers(ctx context.Context, selector, text string) (int, error)
	Screenshot(ctx context.Context) ([]byte, error)
}

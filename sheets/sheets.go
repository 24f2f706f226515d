// CLAUDE:SUMMARY Google Sheets wallet store: reads wallet rows (A:D) and writes both metrics of a row (C:D) in one update.
// Package sheets reads wallet rows from and writes metric values to a
// Google Sheets worksheet.
//
// Column layout, from the configured start row down:
//
//	A wallet address   B label   C Activities   D Holdings PnL
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/hazyhaar/walletscan/enrich"
)

// valuesAPI is the subset of the Sheets values API the store uses.
type valuesAPI interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
	Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
}

// Config locates the worksheet.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	StartRow        int
	CredentialsFile string
	CredentialsJSON string
	Logger          *slog.Logger
}

// Store is both the wallet source and the result sink of a run.
type Store struct {
	api    valuesAPI
	id     string
	sheet  string
	start  int
	logger *slog.Logger
}

// Open resolves service account credentials and connects to the Sheets API.
// Credential problems are reported as enrich.ErrConfig.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	data, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}
	creds, err := google.CredentialsFromJSON(ctx, data, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%w: sheets: parse credentials: %w", enrich.ErrConfig, err)
	}
	svc, err := gsheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("sheets: new service: %w", err)
	}
	return newStore(serviceAPI{svc: svc}, cfg), nil
}

func newStore(api valuesAPI, cfg Config) *Store {
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Store{api: api, id: cfg.SpreadsheetID, sheet: cfg.SheetName, start: cfg.StartRow, logger: cfg.Logger}
}

func credentialsJSON(cfg Config) ([]byte, error) {
	switch {
	case cfg.CredentialsJSON != "":
		return []byte(cfg.CredentialsJSON), nil
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("%w: sheets: read credentials: %w", enrich.ErrConfig, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: sheets: no credentials configured", enrich.ErrConfig)
}

func (s *Store) String() string { return "sheet:" + s.sheet }

// Wallets reads A<start>:D. Response row i maps to sheet row start+i.
func (s *Store) Wallets(ctx context.Context) ([]enrich.WalletRecord, error) {
	rng := fmt.Sprintf("%s!A%d:D", quoteSheet(s.sheet), s.start)
	rows, err := s.api.Get(ctx, s.id, rng)
	if err != nil {
		return nil, fmt.Errorf("sheets: read %s: %w", rng, err)
	}
	records := make([]enrich.WalletRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, enrich.WalletRecord{
			Row:         s.start + i,
			Wallet:      cell(row, 0),
			Label:       cell(row, 1),
			Activities:  cell(row, 2),
			HoldingsPnL: cell(row, 3),
		})
	}
	s.logger.Info("sheets: wallets loaded", "range", rng, "rows", len(records))
	return records, nil
}

// WriteResult sets C<row>:D<row> to the two values, stored as entered.
func (s *Store) WriteResult(ctx context.Context, row int, activities, holdingsPnL string) error {
	rng := fmt.Sprintf("%s!C%d:D%d", quoteSheet(s.sheet), row, row)
	if err := s.api.Update(ctx, s.id, rng, [][]interface{}{{activities, holdingsPnL}}); err != nil {
		return fmt.Errorf("sheets: update %s: %w", rng, err)
	}
	return nil
}

// quoteSheet renders a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

// serviceAPI adapts the generated client.
type serviceAPI struct {
	svc *gsheets.Service
}

func (a serviceAPI) Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (a serviceAPI) Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := a.svc.Spreadsheets.Values.Update(spreadsheetID, rng, &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

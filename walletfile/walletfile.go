// Package walletfile reads wallet records from a local CSV file, for runs
// that take their wallet list from disk instead of the spreadsheet.
//
// The header row names the columns case-insensitively: "wallet" or
// "address" is required, "label", "activities" and "holdings pnl" are
// optional. A file whose first row has no wallet column is read as a bare
// list with the wallet in the first column.
package walletfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hazyhaar/walletscan/enrich"
)

// Source reads wallets from a CSV file. Data line i (0-based, blank lines
// included) becomes row StartRow+i.
type Source struct {
	Path     string
	StartRow int
}

// New creates a Source.
func New(path string, startRow int) *Source {
	return &Source{Path: path, StartRow: startRow}
}

func (s *Source) String() string { return "file:" + s.Path }

// Wallets reads the file.
func (s *Source) Wallets(ctx context.Context) ([]enrich.WalletRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("walletfile: open: %w", err)
	}
	defer f.Close()
	recs, err := Parse(f, s.StartRow)
	if err != nil {
		return nil, fmt.Errorf("walletfile: %s: %w", s.Path, err)
	}
	return recs, nil
}

// lastLine is the line the current record ends on. A quoted field may span
// lines, and the record still fills a single sheet row.
func lastLine(cr *csv.Reader, fields []string) int {
	last := len(fields) - 1
	line, _ := cr.FieldPos(last)
	return line + strings.Count(fields[last], "\n")
}

type columns struct {
	wallet, label, activities, pnl int
}

func headerColumns(header []string) (columns, bool) {
	c := columns{wallet: -1, label: -1, activities: -1, pnl: -1}
	for i, h := range header {
		switch strings.Join(strings.Fields(strings.ToLower(h)), " ") {
		case "wallet", "address", "wallet address":
			if c.wallet < 0 {
				c.wallet = i
			}
		case "label", "name":
			c.label = i
		case "activities":
			c.activities = i
		case "holdings pnl", "holdings_pnl", "pnl":
			c.pnl = i
		}
	}
	return c, c.wallet >= 0
}

// Parse reads CSV from r. Blank lines yield records with an empty wallet so
// that row numbers keep matching line positions.
func Parse(r io.Reader, startRow int) ([]enrich.WalletRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		recs     []enrich.WalletRecord
		cols     columns
		nextLine int // first line not yet turned into a record
		header   = true
	)
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		line, _ := cr.FieldPos(0)
		end := lastLine(cr, fields)

		if header {
			header = false
			var ok bool
			if cols, ok = headerColumns(fields); ok {
				nextLine = end + 1
				continue
			}
			cols = columns{wallet: 0, label: -1, activities: -1, pnl: -1}
			nextLine = line
		}

		// csv.Reader drops blank lines; restore them as empty records.
		for ; nextLine < line; nextLine++ {
			recs = append(recs, enrich.WalletRecord{Row: startRow + len(recs)})
		}
		nextLine = end + 1

		recs = append(recs, enrich.WalletRecord{
			Row:         startRow + len(recs),
			Wallet:      field(fields, cols.wallet),
			Label:       field(fields, cols.label),
			Activities:  field(fields, cols.activities),
			HoldingsPnL: field(fields, cols.pnl),
		})
	}
	return recs, nil
}

func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

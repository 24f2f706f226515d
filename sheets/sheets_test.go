package sheets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/walletscan/enrich"
)

type update struct {
	rng    string
	values [][]interface{}
}

type fakeAPI struct {
	rows    [][]interface{}
	getErr  error
	gets    []string
	updates []update
}

func (f *fakeAPI) Get(_ context.Context, id, rng string) ([][]interface{}, error) {
	f.gets = append(f.gets, id+" "+rng)
	return f.rows, f.getErr
}

func (f *fakeAPI) Update(_ context.Context, id, rng string, values [][]interface{}) error {
	f.updates = append(f.updates, update{rng, values})
	return nil
}

func testStore(api valuesAPI, sheet string, start int) *Store {
	return newStore(api, Config{
		SpreadsheetID: "sid",
		SheetName:     sheet,
		StartRow:      start,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestWallets(t *testing.T) {
	api := &fakeAPI{rows: [][]interface{}{
		{"w1", "main", "12", "3.5"},
		{},
		{" w3 ", "", "", ""},
		{"w4", "cold", float64(7)},
	}}
	s := testStore(api, "Sheet1", 2)

	got, err := s.Wallets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sid 'Sheet1'!A2:D"}, api.gets)
	assert.Equal(t, []enrich.WalletRecord{
		{Row: 2, Wallet: "w1", Label: "main", Activities: "12", HoldingsPnL: "3.5"},
		{Row: 3},
		{Row: 4, Wallet: "w3"},
		{Row: 5, Wallet: "w4", Label: "cold", Activities: "7"},
	}, got)
	assert.Equal(t, "sheet:Sheet1", s.String())
}

func TestWalletsError(t *testing.T) {
	api := &fakeAPI{getErr: errors.New("403")}
	_, err := testStore(api, "Sheet1", 2).Wallets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'Sheet1'!A2:D")
}

func TestWriteResult(t *testing.T) {
	api := &fakeAPI{}
	s := testStore(api, "Bob's wallets", 2)

	require.NoError(t, s.WriteResult(context.Background(), 9, "1234", "-1,234.56"))
	require.Len(t, api.updates, 1)
	assert.Equal(t, "'Bob''s wallets'!C9:D9", api.updates[0].rng)
	assert.Equal(t, [][]interface{}{{"1234", "-1,234.56"}}, api.updates[0].values)
}

func TestOpen_CredentialErrorsAreConfigErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, Config{SpreadsheetID: "sid", SheetName: "Sheet1"})
	assert.ErrorIs(t, err, enrich.ErrConfig)

	_, err = Open(ctx, Config{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")})
	assert.ErrorIs(t, err, enrich.ErrConfig)

	_, err = Open(ctx, Config{CredentialsJSON: "{not json"})
	assert.ErrorIs(t, err, enrich.ErrConfig)
}

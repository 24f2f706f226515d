package walletfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/walletscan/enrich"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []enrich.WalletRecord
	}{
		{
			name:  "header with optional columns",
			input: "Label,Wallet,Activities,Holdings PnL\nmain,w1,12,3.5\ncold,w2,,\n",
			want: []enrich.WalletRecord{
				{Row: 2, Wallet: "w1", Label: "main", Activities: "12", HoldingsPnL: "3.5"},
				{Row: 3, Wallet: "w2", Label: "cold"},
			},
		},
		{
			name:  "address header and blank line",
			input: "address\nw1\n\nw3\n",
			want: []enrich.WalletRecord{
				{Row: 2, Wallet: "w1"},
				{Row: 3},
				{Row: 4, Wallet: "w3"},
			},
		},
		{
			name:  "quoted label spanning lines",
			input: "wallet,label\nw1,\"first line\nsecond line\"\nw2,plain\n\nw4,\"a\r\nb\"\n",
			want: []enrich.WalletRecord{
				{Row: 2, Wallet: "w1", Label: "first line\nsecond line"},
				{Row: 3, Wallet: "w2", Label: "plain"},
				{Row: 4},
				{Row: 5, Wallet: "w4", Label: "a\nb"},
			},
		},
		{
			name:  "bare list",
			input: "w1\nw2\n",
			want: []enrich.WalletRecord{
				{Row: 2, Wallet: "w1"},
				{Row: 3, Wallet: "w2"},
			},
		},
		{
			name:  "header only",
			input: "wallet\n",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input), 2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader("wallet\n\"unterminated\n"), 2)
	assert.Error(t, err)
}

func TestSource_Wallets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.csv")
	require.NoError(t, os.WriteFile(path, []byte("wallet\nw1\n"), 0o644))

	s := New(path, 5)
	got, err := s.Wallets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []enrich.WalletRecord{{Row: 5, Wallet: "w1"}}, got)
	assert.Equal(t, "file:"+path, s.String())

	_, err = New(filepath.Join(t.TempDir(), "none.csv"), 2).Wallets(context.Background())
	assert.Error(t, err)
}

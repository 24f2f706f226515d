package metric

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const activitiesURL = "https://jup.ag/portfolio/9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin?tab=activities"

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "Total 12 activities", NormalizeSpace("  Total\n\t12   activities \n"))
	assert.Equal(t, "", NormalizeSpace(" \n\t "))
	assert.Equal(t, "Total 12 activities", NormalizeSpace("Total\u00a012 \u00a0activities"))
	assert.Equal(t, "Holdings PnL $5", NormalizeSpace("\u2009Holdings\u202fPnL\u00a0$5\u00a0"))
}

func TestActivities(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		url      string
		want     string
		strategy string
	}{
		{"total with separators", "Portfolio\nTotal 1,234 activities\nLoad more", activitiesURL, "1234", "total"},
		{"total singular zero", "Total 0 activity", "https://example.com/other", "0", "total"},
		{"total split across lines", "Total\n  56\n activities", "", "56", "total"},
		{"more than", "Showing More than 10,000 activities", "", "10000", "more-than"},
		{"zero phrase", "History No activities found for this wallet", "", "0", "zero-phrase"},
		{"missing section on activities view", "Connect wallet Portfolio Tokens", activitiesURL, "0", "missing-section"},
		{"case insensitive", "TOTAL 7 ACTIVITIES", "", "7", "total"},
		{"no-break spaces", "Activities Total\u00a01,234\u00a0activities", activitiesURL, "1234", "total"},
		{"no-break more than", "More\u00a0than\u00a0200 activities", "", "200", "more-than"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Activities(tc.body, tc.url)
			require.NoError(t, err)
			assert.Equal(t, tc.want, m.Value)
			assert.Equal(t, tc.strategy, m.Strategy)
		})
	}
}

func TestActivities_TotalBeatsMoreThan(t *testing.T) {
	m, err := Activities("More than 500 activities ... Total 612 activities", "")
	require.NoError(t, err)
	assert.Equal(t, "612", m.Value)
	assert.Equal(t, "total", m.Strategy)
}

func TestActivities_NotFound(t *testing.T) {
	_, err := Activities("Portfolio Tokens NFTs", "https://jup.ag/portfolio/abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "activities section not located")
}

func TestActivities_SectionWithoutCount(t *testing.T) {
	// The section rendered but its count did not: not the same as "none".
	_, err := Activities("Activities Loading...", activitiesURL)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsActivitiesView(t *testing.T) {
	assert.True(t, IsActivitiesView(activitiesURL))
	assert.True(t, IsActivitiesView("https://site.io/wallet/abc/Activity"))
	assert.False(t, IsActivitiesView("https://jup.ag/portfolio/abc"))
}

func TestHoldingsPnL(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{"Holdings PnL $-1,234.56", "-1,234.56"},
		{"Net worth $10 Holdings PnL\n$ 98,765.4 (3.1%)", "98,765.4"},
		{"Holdings PnL: +12.00", "+12.00"},
		{"holdings pnl 0", "0"},
		{"Holdings PnL\u00a0$-1,234.56", "-1,234.56"},
		{"Holdings\u00a0PnL:\u00a0$\u00a042", "42"},
		{"Holdings PnL $1,234, since listing", "1,234"},
		{"Holdings PnL $1234567.8", "1234567.8"},
	}
	for _, tc := range cases {
		m, err := HoldingsPnL(tc.body)
		require.NoError(t, err, tc.body)
		assert.Equal(t, tc.want, m.Value, tc.body)
	}
}

func TestHoldingsPnL_Missing(t *testing.T) {
	for _, body := range []string{"Net worth $1,000", "Holdings PnL --", ""} {
		_, err := HoldingsPnL(body)
		assert.ErrorIs(t, err, ErrNotFound, body)
	}
}

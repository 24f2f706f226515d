package metric

import (
	"fmt"
	"regexp"
)

// The number is returned verbatim: sign, decimal point and thousands
// separators are kept as rendered.
var holdingsPnL = regexp.MustCompile(`(?i)Holdings\s*PnL\s*:?\s*\$?\s*([-+]?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?)`)

// PnLStrategies is the priority order used by HoldingsPnL.
var PnLStrategies = []Strategy{
	{Name: "holdings-pnl", Match: capture(holdingsPnL, nil)},
}

// HoldingsPnL reads the portfolio profit/loss figure from page body text.
func HoldingsPnL(body string) (Match, error) {
	if m, ok := First(NormalizeSpace(body), PnLStrategies); ok {
		return m, nil
	}
	return Match{}, fmt.Errorf("%w: holdings pnl label or value missing", ErrNotFound)
}

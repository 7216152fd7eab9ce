package helpers

import "github.com/dustin/go-humanize"

// FormatLots renders a lot count (1 lot = 100 shares) with a humanized
// thousands separator for log lines, e.g. 12,345.
func FormatLots(lots float64) string {
	return humanize.CommafWithDigits(lots, 0)
}

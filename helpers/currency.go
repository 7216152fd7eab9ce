// Package helpers holds small formatting utilities shared across the
// notification and logging paths.
package helpers

import "fmt"

// FormatRupiah formats a number as Indonesian Rupiah currency with
// dot thousand separators.
func FormatRupiah(amount float64) string {
	value := int64(amount)

	negative := value < 0
	if negative {
		value = -value
	}

	str := fmt.Sprintf("%d", value)
	length := len(str)

	if length <= 3 {
		if negative {
			return fmt.Sprintf("Rp -%s", str)
		}
		return fmt.Sprintf("Rp %s", str)
	}

	var result string
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result += "."
		}
		result += string(digit)
	}

	if negative {
		return fmt.Sprintf("Rp -%s", result)
	}
	return fmt.Sprintf("Rp %s", result)
}

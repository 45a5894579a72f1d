package bot

import "strings"

// NormalizeNumber trims the typed value and drops a leading currency symbol
// so "R$ 10,50" is stored as "10,50". Anything else is kept as typed; values
// that do not parse compute to zero.
func NormalizeNumber(text, currency string) string {
	s := strings.TrimSpace(text)
	if currency != "" {
		s = strings.TrimSpace(strings.TrimPrefix(s, currency))
	}
	return s
}

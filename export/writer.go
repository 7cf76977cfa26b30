// Package export renders dashboard views as delimited text.
package export

import "strings"

const (
	delimiter = ","
	quote     = `"`
)

// Escape returns v bare, or wrapped in quotes with inner quotes doubled
// when v contains the delimiter or a quote.
func Escape(v string) string {
	if !strings.Contains(v, delimiter) && !strings.Contains(v, quote) {
		return v
	}
	return quote + strings.ReplaceAll(v, quote, quote+quote) + quote
}

// Encode joins the header row (emitted as is) and the escaped value rows
// with newlines. There is no trailing newline.
func Encode(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(headers, delimiter))
	for _, row := range rows {
		b.WriteByte('\n')
		for i, v := range row {
			if i > 0 {
				b.WriteString(delimiter)
			}
			b.WriteString(Escape(v))
		}
	}
	return b.String()
}

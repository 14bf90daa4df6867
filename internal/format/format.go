package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Date layouts used in rendered reports.
const (
	ShortDate = "Jan 02, 2006"
	LongStamp = "January 02, 2006 15:04"
	FileStamp = "20060102_150405"
)

// Number formats d with two decimals and comma separators: "1,234.50"
func Number(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, decPart := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(decPart)

	if d.IsNegative() && !d.Round(2).IsZero() {
		return "-" + b.String()
	}
	return b.String()
}

// Money formats d as dollars: "$1,234.50"
func Money(d decimal.Decimal) string {
	n := Number(d)
	if strings.HasPrefix(n, "-") {
		return "-$" + n[1:]
	}
	return "$" + n
}

// Hours formats fractional hours as "Xh Ym"
func Hours(d decimal.Decimal) string {
	total := d.Mul(decimal.NewFromInt(60)).Round(0).IntPart()
	h, m := total/60, total%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// Date renders t as "Jan 02, 2006", or fallback when t is nil
func Date(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format(ShortDate)
}

// Truncate shortens s to max runes with an ellipsis
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

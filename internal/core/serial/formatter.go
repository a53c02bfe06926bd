package serial

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Separator joins the non-empty parts of a serial number.
const Separator = "/"

// Pattern is the part of a setting needed to render a serial number.
type Pattern struct {
	Prefix      string      `json:"prefix"`
	DatePattern DatePattern `json:"datePattern"`
	Suffix      string      `json:"suffix"`
	PadLength   int         `json:"padLength"`
	NextNumber  int64       `json:"nextNumber"`
}

// Format renders the serial number p would produce at asOf.
//
// Format never fails: unknown date patterns render no date token, and
// padLength / nextNumber are clamped before use. Empty parts are dropped so
// the result never contains a doubled separator.
func Format(p Pattern, asOf time.Time) string {
	parts := []string{
		p.Prefix,
		DateToken(p.DatePattern, asOf),
		CounterToken(p.NextNumber, p.PadLength),
		p.Suffix,
	}
	return strings.Join(lo.Compact(parts), Separator)
}

// DateToken renders the date-derived part of a serial number.
func DateToken(pattern DatePattern, t time.Time) string {
	year, month, day := t.Date()
	switch DatePattern(strings.ToUpper(strings.TrimSpace(string(pattern)))) {
	case DatePatternYYYY:
		return fmt.Sprintf("%04d", year)
	case DatePatternYY:
		return fmt.Sprintf("%02d", year%100)
	case DatePatternYYYYMM:
		return fmt.Sprintf("%04d%02d", year, int(month))
	case DatePatternYYYYMMDD:
		return fmt.Sprintf("%04d%02d%02d", year, int(month), day)
	case DatePatternMMYY:
		return fmt.Sprintf("%02d%02d", int(month), year%100)
	case DatePatternFY:
		start := FiscalYearStart(t)
		return fmt.Sprintf("%02d-%02d", start%100, (start+1)%100)
	default:
		return ""
	}
}

// FiscalYearStart returns the calendar year in which the April–March fiscal
// year containing t began.
func FiscalYearStart(t time.Time) int {
	if t.Month() <= time.March {
		return t.Year() - 1
	}
	return t.Year()
}

// CounterToken left-pads n with zeros to the clamped width. Numbers wider
// than the pad are kept whole.
func CounterToken(n int64, padLength int) string {
	digits := strconv.FormatInt(ClampNextNumber(n), 10)
	width := ClampPadLength(padLength)
	if len(digits) >= width {
		return digits
	}
	return strings.Repeat("0", width-len(digits)) + digits
}

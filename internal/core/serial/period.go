package serial

import (
	"fmt"
	"time"
)

// PeriodKey identifies the reset period containing t. Two issuances share a
// counter sequence only while their period keys are equal.
//
// YEARLY follows the fiscal year when the setting renders an FY token, so a
// sequence never spans two different "YY-YY" prefixes.
func PeriodKey(freq ResetFrequency, pattern DatePattern, t time.Time) string {
	switch freq {
	case ResetDaily:
		return t.Format("2006-01-02")
	case ResetMonthly:
		return t.Format("2006-01")
	case ResetYearly:
		if pattern == DatePatternFY {
			return fmt.Sprintf("FY%04d", FiscalYearStart(t))
		}
		return fmt.Sprintf("%04d", t.Year())
	default:
		return ""
	}
}

// EffectiveNextNumber returns the number the next issuance at t would use.
func EffectiveNextNumber(s Setting, t time.Time) int64 {
	if s.PeriodKey != "" && s.PeriodKey != PeriodKey(s.ResetFrequency, s.DatePattern, t) {
		return 1
	}
	return ClampNextNumber(s.NextNumber)
}

// Preview renders the number the next issuance of s at t would produce.
func Preview(s Setting, t time.Time) string {
	p := s.Pattern()
	p.NextNumber = EffectiveNextNumber(s, t)
	return Format(p, t)
}

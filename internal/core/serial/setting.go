package serial

import (
	"regexp"
	"strings"
	"time"
)

// DatePattern selects the date-derived token inserted into a serial number.
type DatePattern string

const (
	DatePatternNone     DatePattern = "NONE"
	DatePatternYYYY     DatePattern = "YYYY"
	DatePatternYY       DatePattern = "YY"
	DatePatternYYYYMM   DatePattern = "YYYYMM"
	DatePatternYYYYMMDD DatePattern = "YYYYMMDD"
	DatePatternMMYY     DatePattern = "MMYY"
	// DatePatternFY renders the April–March fiscal year as "YY-YY".
	DatePatternFY DatePattern = "FY"
)

// DatePatterns lists every supported date pattern.
var DatePatterns = []DatePattern{
	DatePatternNone,
	DatePatternYYYY,
	DatePatternYY,
	DatePatternYYYYMM,
	DatePatternYYYYMMDD,
	DatePatternMMYY,
	DatePatternFY,
}

// IsValid reports whether p is one of the supported patterns.
func (p DatePattern) IsValid() bool {
	for _, known := range DatePatterns {
		if p == known {
			return true
		}
	}
	return false
}

// ResetFrequency governs when the issuing counter restarts at 1.
type ResetFrequency string

const (
	ResetNever   ResetFrequency = "NEVER"
	ResetDaily   ResetFrequency = "DAILY"
	ResetMonthly ResetFrequency = "MONTHLY"
	ResetYearly  ResetFrequency = "YEARLY"
)

// ResetFrequencies lists every supported reset frequency.
var ResetFrequencies = []ResetFrequency{ResetNever, ResetDaily, ResetMonthly, ResetYearly}

// IsValid reports whether f is one of the supported frequencies.
func (f ResetFrequency) IsValid() bool {
	for _, known := range ResetFrequencies {
		if f == known {
			return true
		}
	}
	return false
}

// Common document types. Any code matching docCodePattern is accepted.
const (
	DocTypeInvoice     = "INVOICE"
	DocTypeReservation = "RESERVATION"
	DocTypeKOT         = "KOT"
	DocTypeGRN         = "GRN"
	DocTypeIssue       = "ISSUE"
	DocTypeTransfer    = "TRANSFER"
	DocTypeAdjustment  = "ADJUSTMENT"
	DocTypeReceipt     = "RECEIPT"
	DocTypePayment     = "PAYMENT"
	DocTypeVoucher     = "VOUCHER"
)

const (
	DefaultPadLength  = 4
	MinPadLength      = 1
	MaxPadLength      = 12
	DefaultNextNumber = int64(1)
)

var codePattern = regexp.MustCompile(`^[A-Z0-9_\-]{1,30}$`)

// Scope identifies the counter a setting owns.
type Scope struct {
	PropertyCode string `json:"propertyCode"`
	DocType      string `json:"docType"`
	StoreCode    string `json:"storeCode"`
}

// Normalize upper-cases and trims every code in the scope.
func (s Scope) Normalize() Scope {
	return Scope{
		PropertyCode: normalizeCode(s.PropertyCode),
		DocType:      normalizeCode(s.DocType),
		StoreCode:    normalizeCode(s.StoreCode),
	}
}

// Validate checks the scope's required codes and their syntax.
func (s Scope) Validate() error {
	verr := &ValidationError{}
	checkScope(s, verr)
	return verr.OrNil()
}

// Setting is the numbering configuration for one scope.
type Setting struct {
	ID             string         `json:"id"`
	PropertyCode   string         `json:"propertyCode"`
	DocType        string         `json:"docType"`
	StoreCode      string         `json:"storeCode"`
	Prefix         string         `json:"prefix"`
	DatePattern    DatePattern    `json:"datePattern"`
	Suffix         string         `json:"suffix"`
	PadLength      int            `json:"padLength"`
	NextNumber     int64          `json:"nextNumber"`
	ResetFrequency ResetFrequency `json:"resetFrequency"`
	IsActive       bool           `json:"isActive"`
	PeriodKey      string         `json:"periodKey"`
	LastIssuedAt   *time.Time     `json:"lastIssuedAt"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Scope returns the (propertyCode, docType, storeCode) tuple of the setting.
func (s Setting) Scope() Scope {
	return Scope{PropertyCode: s.PropertyCode, DocType: s.DocType, StoreCode: s.StoreCode}
}

// Pattern returns the formatting-relevant subset of the setting.
func (s Setting) Pattern() Pattern {
	return Pattern{
		Prefix:      s.Prefix,
		DatePattern: s.DatePattern,
		Suffix:      s.Suffix,
		PadLength:   s.PadLength,
		NextNumber:  s.NextNumber,
	}
}

// Normalize returns a copy with codes and enums upper-cased, literals trimmed,
// empty enums defaulted and numeric fields clamped.
func (s Setting) Normalize() Setting {
	scope := s.Scope().Normalize()
	s.PropertyCode = scope.PropertyCode
	s.DocType = scope.DocType
	s.StoreCode = scope.StoreCode
	s.Prefix = strings.TrimSpace(s.Prefix)
	s.Suffix = strings.TrimSpace(s.Suffix)

	s.DatePattern = DatePattern(normalizeCode(string(s.DatePattern)))
	if s.DatePattern == "" {
		s.DatePattern = DatePatternNone
	}
	s.ResetFrequency = ResetFrequency(normalizeCode(string(s.ResetFrequency)))
	if s.ResetFrequency == "" {
		s.ResetFrequency = ResetNever
	}

	s.PadLength = ClampPadLength(s.PadLength)
	s.NextNumber = ClampNextNumber(s.NextNumber)
	return s
}

// Validate enforces the business rules the formatter deliberately ignores.
// It expects a normalized setting.
func (s Setting) Validate() error {
	verr := &ValidationError{}
	checkScope(s.Scope(), verr)
	if !s.DatePattern.IsValid() {
		verr.Add("datePattern", "must be one of NONE, YYYY, YY, YYYYMM, YYYYMMDD, MMYY, FY")
	}
	if !s.ResetFrequency.IsValid() {
		verr.Add("resetFrequency", "must be one of NEVER, DAILY, MONTHLY, YEARLY")
	}
	if len(s.Prefix) > 20 {
		verr.Add("prefix", "must be at most 20 characters")
	}
	if len(s.Suffix) > 20 {
		verr.Add("suffix", "must be at most 20 characters")
	}
	return verr.OrNil()
}

// ClampPadLength bounds a counter width to [MinPadLength, MaxPadLength].
func ClampPadLength(n int) int {
	if n < MinPadLength {
		return MinPadLength
	}
	if n > MaxPadLength {
		return MaxPadLength
	}
	return n
}

// ClampNextNumber floors a counter value at 1.
func ClampNextNumber(n int64) int64 {
	if n < 1 {
		return 1
	}
	return n
}

func checkScope(s Scope, verr *ValidationError) {
	if s.PropertyCode == "" {
		verr.Add("propertyCode", "is required")
	} else if !codePattern.MatchString(s.PropertyCode) {
		verr.Add("propertyCode", "must contain only letters, digits, '-' or '_' (max 30)")
	}
	if s.DocType == "" {
		verr.Add("docType", "is required")
	} else if !codePattern.MatchString(s.DocType) {
		verr.Add("docType", "must contain only letters, digits, '-' or '_' (max 30)")
	}
	if s.StoreCode != "" && !codePattern.MatchString(s.StoreCode) {
		verr.Add("storeCode", "must contain only letters, digits, '-' or '_' (max 30)")
	}
}

func normalizeCode(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

package serial

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"3tcapital/ms_numeracion_core/internal/core/audit"
	"3tcapital/ms_numeracion_core/internal/core/serial"
)

// LooseInt accepts a JSON number or a numeric string. Anything else is kept
// as present but invalid so callers can choose between defaulting and
// rejecting.
type LooseInt struct {
	Value   int64
	Present bool
	Valid   bool
}

// Int returns a valid LooseInt holding v.
func Int(v int64) LooseInt {
	return LooseInt{Value: v, Present: true, Valid: true}
}

// UnmarshalJSON never fails; malformed values are flagged as invalid.
func (n *LooseInt) UnmarshalJSON(data []byte) error {
	*n = LooseInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	n.Present = true

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		n.Value, n.Valid = v, true
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) &&
		f >= math.MinInt64 && f < math.MaxInt64 {
		n.Value, n.Valid = int64(f), true
	}
	return nil
}

// MarshalJSON renders the value, or null when absent or invalid.
func (n LooseInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(n.Value, 10)), nil
}

// Or returns the value when valid, def otherwise.
func (n LooseInt) Or(def int64) int64 {
	if n.Valid {
		return n.Value
	}
	return def
}

// LooseString accepts a JSON string, number or boolean.
type LooseString struct {
	Value   string
	Present bool
	Valid   bool
}

// String returns a valid LooseString holding v.
func String(v string) LooseString {
	return LooseString{Value: v, Present: true, Valid: true}
}

// UnmarshalJSON never fails; objects and arrays are flagged as invalid.
func (s *LooseString) UnmarshalJSON(data []byte) error {
	*s = LooseString{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	s.Present = true

	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &s.Value); err == nil {
			s.Valid = true
		}
	case '{', '[':
	default:
		s.Value, s.Valid = string(data), true
	}
	return nil
}

// MarshalJSON renders the value, or null when absent or invalid.
func (s LooseString) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// Or returns the value when valid, def otherwise.
func (s LooseString) Or(def string) string {
	if s.Valid {
		return s.Value
	}
	return def
}

// LooseBool accepts a JSON boolean, 0/1, or a string parsable by strconv.ParseBool.
type LooseBool struct {
	Value   bool
	Present bool
	Valid   bool
}

// Bool returns a valid LooseBool holding v.
func Bool(v bool) LooseBool {
	return LooseBool{Value: v, Present: true, Valid: true}
}

// UnmarshalJSON never fails; unparsable values are flagged as invalid.
func (b *LooseBool) UnmarshalJSON(data []byte) error {
	*b = LooseBool{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	b.Present = true

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		b.Value, b.Valid = v, true
	}
	return nil
}

// MarshalJSON renders the value, or null when absent or invalid.
func (b LooseBool) MarshalJSON() ([]byte, error) {
	if !b.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatBool(b.Value)), nil
}

// SettingInput is the body of create, update and draft-preview requests.
// Every field is optional at the decoding level; absent fields are left
// untouched on PATCH and defaulted on create.
type SettingInput struct {
	PropertyCode   LooseString `json:"propertyCode"`
	DocType        LooseString `json:"docType"`
	StoreCode      LooseString `json:"storeCode"`
	Prefix         LooseString `json:"prefix"`
	DatePattern    LooseString `json:"datePattern"`
	Suffix         LooseString `json:"suffix"`
	PadLength      LooseInt    `json:"padLength"`
	NextNumber     LooseInt    `json:"nextNumber"`
	ResetFrequency LooseString `json:"resetFrequency"`
	IsActive       LooseBool   `json:"isActive"`
}

// Pattern coerces the draft into formatter input. Missing or non-numeric
// counters fall back to the defaults.
func (in SettingInput) Pattern() serial.Pattern {
	return serial.Pattern{
		Prefix:      in.Prefix.Or(""),
		DatePattern: serial.DatePattern(in.DatePattern.Or("")),
		Suffix:      in.Suffix.Or(""),
		PadLength:   int(clampInt(in.PadLength.Or(serial.DefaultPadLength))),
		NextNumber:  in.NextNumber.Or(serial.DefaultNextNumber),
	}
}

// apply overlays the present fields of in onto base and records the fields
// that were sent with an unusable type.
func (in SettingInput) apply(base serial.Setting, verr *serial.ValidationError) serial.Setting {
	applyString(&base.PropertyCode, in.PropertyCode, "propertyCode", verr)
	applyString(&base.DocType, in.DocType, "docType", verr)
	applyString(&base.StoreCode, in.StoreCode, "storeCode", verr)
	applyString(&base.Prefix, in.Prefix, "prefix", verr)
	applyString(&base.Suffix, in.Suffix, "suffix", verr)

	var pattern, freq string
	pattern, freq = string(base.DatePattern), string(base.ResetFrequency)
	applyString(&pattern, in.DatePattern, "datePattern", verr)
	applyString(&freq, in.ResetFrequency, "resetFrequency", verr)
	base.DatePattern, base.ResetFrequency = serial.DatePattern(pattern), serial.ResetFrequency(freq)

	if in.PadLength.Present {
		if in.PadLength.Valid {
			base.PadLength = int(clampInt(in.PadLength.Value))
		} else {
			verr.Add("padLength", "must be a number")
		}
	}
	if in.NextNumber.Present && !in.NextNumber.Valid {
		verr.Add("nextNumber", "must be a number")
	}
	if in.IsActive.Present {
		if in.IsActive.Valid {
			base.IsActive = in.IsActive.Value
		} else {
			verr.Add("isActive", "must be a boolean")
		}
	}
	return base
}

func applyString(dst *string, in LooseString, field string, verr *serial.ValidationError) {
	if !in.Present {
		return
	}
	if !in.Valid {
		verr.Add(field, "must be a string")
		return
	}
	*dst = in.Value
}

// clampInt keeps an int64 inside the int range used for pad lengths before
// the domain clamp applies.
func clampInt(v int64) int64 {
	if v > serial.MaxPadLength {
		return serial.MaxPadLength
	}
	if v < 0 {
		return 0
	}
	return v
}

// IssueRequest asks for the next number of a scope.
type IssueRequest struct {
	PropertyCode string `json:"propertyCode" validate:"required,max=30"`
	DocType      string `json:"docType" validate:"required,max=30"`
	StoreCode    string `json:"storeCode" validate:"omitempty,max=30"`
}

// Scope returns the normalized scope of the request.
func (r IssueRequest) Scope() serial.Scope {
	return serial.Scope{PropertyCode: r.PropertyCode, DocType: r.DocType, StoreCode: r.StoreCode}.Normalize()
}

// IssueResponse is returned by a successful issuance.
type IssueResponse struct {
	SettingID    string    `json:"settingId"`
	PropertyCode string    `json:"propertyCode"`
	DocType      string    `json:"docType"`
	StoreCode    string    `json:"storeCode"`
	Number       int64     `json:"number"`
	Serial       string    `json:"serial"`
	PeriodKey    string    `json:"periodKey"`
	IssuedAt     time.Time `json:"issuedAt"`
}

func toIssueResponse(n *serial.IssuedNumber) *IssueResponse {
	return &IssueResponse{
		SettingID:    n.SettingID,
		PropertyCode: n.Scope.PropertyCode,
		DocType:      n.Scope.DocType,
		StoreCode:    n.Scope.StoreCode,
		Number:       n.Number,
		Serial:       n.Serial,
		PeriodKey:    n.PeriodKey,
		IssuedAt:     n.IssuedAt,
	}
}

// ListRequest carries the DataTables-style listing parameters.
type ListRequest struct {
	Start          int    `json:"start" validate:"min=0"`
	Length         int    `json:"length" validate:"min=-1,max=1000"`
	Buscar         string `json:"buscar" validate:"max=100"`
	ColumnaOrden   string `json:"columnaOrden" validate:"omitempty,oneof=propertyCode docType storeCode prefix datePattern resetFrequency nextNumber isActive createdAt updatedAt"`
	OrdenDireccion string `json:"ordenDireccion" validate:"omitempty,oneof=asc desc"`
	PropertyCode   string `json:"propertyCode" validate:"max=30"`
	DocType        string `json:"docType" validate:"max=30"`
	IsActive       *bool  `json:"isActive"`
}

func (r ListRequest) query() serial.ListQuery {
	q := serial.ListQuery{
		Start:          r.Start,
		Length:         r.Length,
		Search:         strings.TrimSpace(r.Buscar),
		OrderColumn:    r.ColumnaOrden,
		OrderDirection: r.OrdenDireccion,
		PropertyCode:   strings.ToUpper(strings.TrimSpace(r.PropertyCode)),
		DocType:        strings.ToUpper(strings.TrimSpace(r.DocType)),
		IsActive:       r.IsActive,
	}
	if q.OrderColumn == "" {
		q.OrderColumn = "propertyCode"
	}
	if q.OrderDirection == "" {
		q.OrderDirection = "asc"
	}
	return q
}

// ListSettingsResponse mirrors the paginated listing format used by the
// back-office grids.
type ListSettingsResponse struct {
	Total     int              `json:"total"`
	Filtrados int              `json:"filtrados"`
	Data      []serial.Setting `json:"data"`
}

// PreviewResponse carries a rendered serial number.
type PreviewResponse struct {
	Preview string    `json:"preview"`
	AsOf    time.Time `json:"asOf"`
}

// ListIssuesResponse wraps the issuance ledger of one setting.
type ListIssuesResponse struct {
	SettingID string              `json:"settingId"`
	Data      []audit.IssueRecord `json:"data"`
}

package serial

import (
	"encoding/json"
	"testing"
)

func TestLooseInt_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want LooseInt
	}{
		{name: "number", raw: `5`, want: LooseInt{Value: 5, Present: true, Valid: true}},
		{name: "numeric string", raw: `" 12 "`, want: LooseInt{Value: 12, Present: true, Valid: true}},
		{name: "float truncates", raw: `7.9`, want: LooseInt{Value: 7, Present: true, Valid: true}},
		{name: "negative", raw: `-3`, want: LooseInt{Value: -3, Present: true, Valid: true}},
		{name: "null is absent", raw: `null`, want: LooseInt{}},
		{name: "word", raw: `"abc"`, want: LooseInt{Present: true}},
		{name: "boolean", raw: `true`, want: LooseInt{Present: true}},
		{name: "object", raw: `{"a":1}`, want: LooseInt{Present: true}},
		{name: "out of range", raw: `1e30`, want: LooseInt{Present: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got LooseInt
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestLooseString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want LooseString
	}{
		{name: "string", raw: `"INV"`, want: LooseString{Value: "INV", Present: true, Valid: true}},
		{name: "number kept verbatim", raw: `42`, want: LooseString{Value: "42", Present: true, Valid: true}},
		{name: "boolean kept verbatim", raw: `false`, want: LooseString{Value: "false", Present: true, Valid: true}},
		{name: "null is absent", raw: `null`, want: LooseString{}},
		{name: "array", raw: `["a"]`, want: LooseString{Present: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got LooseString
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestLooseBool_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want LooseBool
	}{
		{name: "true", raw: `true`, want: LooseBool{Value: true, Present: true, Valid: true}},
		{name: "zero", raw: `0`, want: LooseBool{Value: false, Present: true, Valid: true}},
		{name: "string", raw: `"TRUE"`, want: LooseBool{Value: true, Present: true, Valid: true}},
		{name: "null is absent", raw: `null`, want: LooseBool{}},
		{name: "word", raw: `"yes please"`, want: LooseBool{Present: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got LooseBool
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestSettingInput_Pattern(t *testing.T) {
	in := decodeInput(t, `{"prefix":"KOT","datePattern":"mmyy","padLength":"99","nextNumber":"x"}`)
	p := in.Pattern()

	if p.Prefix != "KOT" || p.DatePattern != "mmyy" {
		t.Errorf("unexpected literals %+v", p)
	}
	if p.PadLength != 12 {
		t.Errorf("expected pad length clamped to 12, got %d", p.PadLength)
	}
	if p.NextNumber != 1 {
		t.Errorf("expected default next number 1, got %d", p.NextNumber)
	}
}

func TestLoose_MarshalJSON(t *testing.T) {
	in := SettingInput{PadLength: Int(6), Prefix: String("R"), IsActive: Bool(false)}
	out, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var round SettingInput
	if err := json.Unmarshal(out, &round); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if round.PadLength.Or(0) != 6 || round.Prefix.Or("") != "R" || !round.IsActive.Valid || round.IsActive.Value {
		t.Errorf("unexpected round trip %+v", round)
	}
	if round.DocType.Present {
		t.Error("absent fields must stay absent")
	}
}

package errors

import (
	"strings"
	"testing"
)

type outletRecord struct {
	Circuit string  `json:"circuit_id" validate:"required"`
	Tap     float64 `json:"tap_capacity" validate:"gte=0"`
	Kind    string  `json:"kind" validate:"oneof=power dmx"`
	Patch   struct {
		Address int `json:"address" validate:"min=1,max=512"`
	} `json:"patch"`
}

func TestValidateStruct(t *testing.T) {
	valid := func() outletRecord {
		r := outletRecord{Circuit: "A-1", Tap: 1500, Kind: "power"}
		r.Patch.Address = 1
		return r
	}

	tests := []struct {
		name    string
		mutate  func(*outletRecord)
		wantMsg string
	}{
		{"valid", func(*outletRecord) {}, ""},
		{"missing circuit", func(r *outletRecord) { r.Circuit = "" }, "circuit_id: field is required"},
		{"negative tap", func(r *outletRecord) { r.Tap = -1 }, "tap_capacity: must be at least 0"},
		{"bad kind", func(r *outletRecord) { r.Kind = "audio" }, "kind: must be one of [power dmx]"},
		{"nested address", func(r *outletRecord) { r.Patch.Address = 513 }, "patch.address: must not exceed 512"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := ValidateStruct(ErrCodeInvalidCapacity, r)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", err)
				}
				return
			}
			if !Is(err, ErrCodeInvalidCapacity) {
				t.Fatalf("ValidateStruct() = %v, want INVALID_CAPACITY", err)
			}
			if !strings.Contains(UserMessage(err), tt.wantMsg) {
				t.Errorf("message = %q, want %q", UserMessage(err), tt.wantMsg)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"equipment", "inst_1a2b3c4d", false},
		{"outlet", "outlet_deadbeef", false},
		{"legacy", "equip_1", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"space", "inst 1", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput, ErrCodeInvalidLayout, ErrCodeInvalidCatalog,
		ErrCodeInvalidCapacity, ErrCodeInvalidPatch, ErrCodeInvalidWire,
		ErrCodeInvalidConfig, ErrCodeInvalidFormat,
		ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeTypeNotFound,
		ErrCodeInternal, ErrCodeUnsupported,
	}
	seen := make(map[Code]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("duplicate error code: %s", c)
		}
		seen[c] = true
	}
}

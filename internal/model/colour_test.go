package model

import (
	"encoding/json"
	"errors"
	"testing"
)

// TestParseColour tests colour parsing from hex strings.
func TestParseColour(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Colour
		wantErr bool
	}{
		{name: "rgb with hash", input: "#ff8000", want: Colour{R: 0xff, G: 0x80, B: 0x00, A: 0xff}},
		{name: "rgb without hash", input: "ff8000", want: Colour{R: 0xff, G: 0x80, B: 0x00, A: 0xff}},
		{name: "rgba", input: "#01020304", want: Colour{R: 1, G: 2, B: 3, A: 4}},
		{name: "uppercase hex", input: "#ABCDEF", want: Colour{R: 0xab, G: 0xcd, B: 0xef, A: 0xff}},
		{name: "empty string", input: "", wantErr: true},
		{name: "too short", input: "#fff", wantErr: true},
		{name: "not hex", input: "#gggggg", wantErr: true},
		{name: "trailing garbage", input: "#ff8000zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseColour(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidColour) {
					t.Errorf("expected ErrInvalidColour, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestColourString tests colour formatting.
func TestColourString(t *testing.T) {
	t.Parallel()

	if got := RGB(0xab, 0x01, 0xff).String(); got != "#ab01ffff" {
		t.Errorf("expected #ab01ffff, got %q", got)
	}
	if got := (Colour{}).String(); got != "#00000000" {
		t.Errorf("expected #00000000, got %q", got)
	}
}

// TestColourInt32 tests the packed integer representation.
func TestColourInt32(t *testing.T) {
	t.Parallel()

	t.Run("red channel is the lowest byte", func(t *testing.T) {
		t.Parallel()

		c := Colour{R: 0x01, G: 0x00, B: 0x00, A: 0x00}
		if c.Int32() != 1 {
			t.Errorf("expected 1, got %d", c.Int32())
		}
	})

	t.Run("round trips through int32", func(t *testing.T) {
		t.Parallel()

		for _, c := range []Colour{{}, RGB(1, 2, 3), {R: 0xff, G: 0xff, B: 0xff, A: 0xff}, {R: 0x80, G: 0x7f, B: 0x10, A: 0xfe}} {
			if got := ColourFromInt32(c.Int32()); got != c {
				t.Errorf("expected %v, got %v", c, got)
			}
		}
	})
}

// TestColourJSON tests that colours are encoded as hex strings.
func TestColourJSON(t *testing.T) {
	t.Parallel()

	tag := Tag{Name: "Victorian", Colour: &Colour{R: 0x12, G: 0x34, B: 0x56, A: 0x78}}
	data, err := json.Marshal(tag)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if string(data) != `{"name":"Victorian","colour":"#12345678"}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var decoded Tag
	if err := json.Unmarshal([]byte(`{"name":"x","colour":"#zz"}`), &decoded); err == nil {
		t.Error("expected error decoding invalid colour")
	}
}

package model

import (
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidColour is returned when a colour string cannot be parsed.
var ErrInvalidColour = errors.New("invalid colour: expected #RRGGBB or #RRGGBBAA")

var colourRegex = regexp.MustCompile(`(?i)^#?([0-9a-f]{2})([0-9a-f]{2})([0-9a-f]{2})([0-9a-f]{2})?$`)

// Colour is an RGBA colour used to display a tag.
type Colour struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Colour {
	return Colour{R: r, G: g, B: b, A: 0xff}
}

// ParseColour parses "#RRGGBB" or "#RRGGBBAA". The leading '#' is optional
// and hex digits are case-insensitive. A missing alpha channel means opaque.
func ParseColour(s string) (Colour, error) {
	m := colourRegex.FindStringSubmatch(s)
	if m == nil {
		return Colour{}, fmt.Errorf("%w: %q", ErrInvalidColour, s)
	}

	channels := [4]uint8{0, 0, 0, 0xff}
	for i, hex := range m[1:] {
		if hex == "" {
			continue
		}
		v, err := strconv.ParseUint(hex, 16, 8)
		if err != nil {
			return Colour{}, fmt.Errorf("%w: %q", ErrInvalidColour, s)
		}
		channels[i] = uint8(v)
	}

	return Colour{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}, nil
}

// String formats the colour as "#rrggbbaa".
func (c Colour) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Int32 packs the colour into a little-endian 32-bit integer (R in the lowest
// byte). This is the representation used by the store.
func (c Colour) Int32() int32 {
	return int32(binary.LittleEndian.Uint32([]byte{c.R, c.G, c.B, c.A})) //nolint:gosec // bit reinterpretation
}

// ColourFromInt32 is the inverse of Colour.Int32.
func ColourFromInt32(v int32) Colour {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v)) //nolint:gosec // bit reinterpretation
	return Colour{R: buf[0], G: buf[1], B: buf[2], A: buf[3]}
}

// MarshalText implements encoding.TextMarshaler.
func (c Colour) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Colour) UnmarshalText(text []byte) error {
	parsed, err := ParseColour(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

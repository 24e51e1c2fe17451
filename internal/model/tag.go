package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// Tag describes a single taxonomy entry as extracted from its wiki page.
// No persistent identifier is assigned during crawling.
type Tag struct {
	// Name is the display name of the tag. It is the only required field.
	Name string `json:"name"`

	// Shorthand is an optional short form for quick referencing.
	Shorthand string `json:"shorthand,omitempty"`

	// Colour is an optional display colour.
	Colour *Colour `json:"colour,omitempty"`

	// Hidden marks tags that should be excluded from searches while still
	// being usable as parents (for example category meta tags).
	Hidden bool `json:"hidden,omitempty"`
}

// Key returns the case-folded, whitespace-trimmed name used to identify the
// tag in storage. Two tags with the same key are the same tag.
//
// Design decision: We use Unicode case folding rather than strings.ToLower
// because tag names on fan wikis are frequently non-ASCII and folding gives
// caseless matching that ToLower does not (e.g. German sharp s).
func (t Tag) Key() string {
	// Casers are stateful, so a fresh one is created per call.
	return cases.Fold().String(strings.TrimSpace(t.Name))
}

// String returns the tag name.
func (t Tag) String() string {
	return t.Name
}

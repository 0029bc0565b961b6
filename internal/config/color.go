package config

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseHex parses a "#rrggbb" colour string.
func ParseHex(s string) (colorful.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	return c, nil
}

// MustHex is ParseHex for values already checked by Validate. Unparseable
// input yields black.
func MustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

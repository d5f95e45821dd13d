// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package color defines the fixed catalog of display colors a nickname may use.
package color

import (
	"strings"
)

// Color is a canonical display color name, stored upper case (e.g. "DARK_AQUA").
type Color string

// The sixteen catalog colors.
const (
	Black       Color = "BLACK"
	DarkBlue    Color = "DARK_BLUE"
	DarkGreen   Color = "DARK_GREEN"
	DarkAqua    Color = "DARK_AQUA"
	DarkRed     Color = "DARK_RED"
	DarkPurple  Color = "DARK_PURPLE"
	Gold        Color = "GOLD"
	Gray        Color = "GRAY"
	DarkGray    Color = "DARK_GRAY"
	Blue        Color = "BLUE"
	Green       Color = "GREEN"
	Aqua        Color = "AQUA"
	Red         Color = "RED"
	LightPurple Color = "LIGHT_PURPLE"
	Yellow      Color = "YELLOW"
	White       Color = "WHITE"
)

// Default is the color given to users who never picked one.
const Default = White

// catalog is the fixed enumeration order used for help text.
var catalog = [...]Color{
	Black, DarkBlue, DarkGreen, DarkAqua, DarkRed, DarkPurple, Gold, Gray,
	DarkGray, Blue, Green, Aqua, Red, LightPurple, Yellow, White,
}

var byName = func() map[string]Color {
	m := make(map[string]Color, len(catalog))
	for _, c := range catalog {
		m[string(c)] = c
	}
	return m
}()

// Normalize matches token case-insensitively against the catalog.
// Surrounding whitespace is ignored.
func Normalize(token string) (Color, bool) {
	c, ok := byName[strings.ToUpper(strings.TrimSpace(token))]
	return c, ok
}

// IsValid reports whether token names a catalog color.
func IsValid(token string) bool {
	_, ok := Normalize(token)
	return ok
}

// All returns the catalog in its fixed order. The slice is a copy.
func All() []Color {
	out := make([]Color, len(catalog))
	copy(out, catalog[:])
	return out
}

// Name returns the lower-case token users type, e.g. "light_purple".
func (c Color) Name() string {
	return strings.ToLower(string(c))
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Name()
}

// HelpText lists every color name, comma separated, in catalog order.
func HelpText() string {
	names := make([]string, len(catalog))
	for i, c := range catalog {
		names[i] = c.Name()
	}
	return strings.Join(names, ", ")
}

// Package charmap turns style definitions into per-rune Unicode mappings.
// Mapping is pure arithmetic over codepoint ranges plus an override table;
// runes outside every range pass through unchanged, so styling never drops
// input.
package charmap

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/mdfx-dev/mdfx/internal/registry"
)

type compiledRange struct {
	lo   rune
	hi   rune
	base rune
}

// Mapper is a compiled style mapping, safe for concurrent use.
type Mapper struct {
	ranges    []compiledRange
	overrides map[rune]rune
}

// Compile validates a style definition and builds its mapper.
func Compile(def *registry.StyleDef) (*Mapper, error) {
	m := &Mapper{overrides: make(map[rune]rune, len(def.Overrides))}

	for _, r := range def.Ranges {
		lo, err := singleRune(r.Lo)
		if err != nil {
			return nil, fmt.Errorf("style %s: range lo: %w", def.ID, err)
		}
		hi, err := singleRune(r.Hi)
		if err != nil {
			return nil, fmt.Errorf("style %s: range hi: %w", def.ID, err)
		}
		if hi < lo {
			return nil, fmt.Errorf("style %s: range %q-%q is inverted", def.ID, r.Lo, r.Hi)
		}
		base, err := hexRune(r.Base)
		if err != nil {
			return nil, fmt.Errorf("style %s: range base: %w", def.ID, err)
		}
		m.ranges = append(m.ranges, compiledRange{lo: lo, hi: hi, base: base})
	}

	for char, hex := range def.Overrides {
		src, err := singleRune(char)
		if err != nil {
			return nil, fmt.Errorf("style %s: override key: %w", def.ID, err)
		}
		dst, err := hexRune(hex)
		if err != nil {
			return nil, fmt.Errorf("style %s: override %q: %w", def.ID, char, err)
		}
		m.overrides[src] = dst
	}

	return m, nil
}

// Map substitutes one rune. Overrides win over ranges; unmapped runes come
// back unchanged.
func (m *Mapper) Map(r rune) rune {
	if mapped, ok := m.overrides[r]; ok {
		return mapped
	}
	for _, cr := range m.ranges {
		if r >= cr.lo && r <= cr.hi {
			return cr.base + (r - cr.lo)
		}
	}
	return r
}

// Maps reports whether the rune has an explicit mapping.
func (m *Mapper) Maps(r rune) bool {
	if _, ok := m.overrides[r]; ok {
		return true
	}
	for _, cr := range m.ranges {
		if r >= cr.lo && r <= cr.hi {
			return true
		}
	}
	return false
}

func singleRune(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("%q is not a single character", s)
	}
	return r, nil
}

func hexRune(s string) (rune, error) {
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not a hex codepoint", s)
	}
	if !utf8.ValidRune(rune(n)) {
		return 0, fmt.Errorf("%q is outside the Unicode range", s)
	}
	return rune(n), nil
}

// Package registry holds the style, frame, badge, glyph, separator,
// component, and palette definitions the pipeline resolves tags against.
//
// A Registry is an explicitly constructed immutable value: defaults are
// built from JSON embedded in the binary, optionally overlaid with
// project-local definition files, and then passed by reference into every
// pipeline stage. Nothing in this package mutates a Registry after
// construction, so one instance is safe to share across concurrent
// document runs.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Namespace identifies one definition table.
type Namespace string

const (
	NamespaceStyle     Namespace = "style"
	NamespaceFrame     Namespace = "frame"
	NamespaceBadge     Namespace = "badge"
	NamespaceGlyph     Namespace = "glyph"
	NamespaceSeparator Namespace = "separator"
	NamespaceComponent Namespace = "component"
	NamespacePalette   Namespace = "palette"
)

// CharRange maps a contiguous run of source codepoints onto a styled
// alphabet. Lo and Hi are literal characters; Base is the hex codepoint the
// run starts at in the styled alphabet.
type CharRange struct {
	Lo   string `json:"lo"`
	Hi   string `json:"hi"`
	Base string `json:"base"`
}

// StyleDef is a per-character Unicode substitution style.
type StyleDef struct {
	ID        string            `json:"id"`
	Aliases   []string          `json:"aliases,omitempty"`
	Ranges    []CharRange       `json:"ranges,omitempty"`
	Overrides map[string]string `json:"overrides,omitempty"` // char -> hex codepoint
}

// FrameDef wraps rendered content in fixed prefix/suffix runs.
type FrameDef struct {
	ID      string   `json:"id"`
	Aliases []string `json:"aliases,omitempty"`
	Prefix  string   `json:"prefix"`
	Suffix  string   `json:"suffix"`
}

// BadgeDef renders a short run of characters as enclosed glyphs. Charset is
// "number" (Min..Max, Zero handling the irregular zero codepoint) or
// "letter" (a..z).
type BadgeDef struct {
	ID      string   `json:"id"`
	Aliases []string `json:"aliases,omitempty"`
	Charset string   `json:"charset"`
	Min     int      `json:"min,omitempty"`
	Max     int      `json:"max,omitempty"`
	Zero    string   `json:"zero,omitempty"` // hex codepoint for 0
	Base    string   `json:"base"`           // hex codepoint for Min (numbers) or 'a' (letters)
}

// GlyphDef is a named symbol with enough metadata for every backend: the
// literal character for text targets, and a label/color pair for shields
// images and generated SVG chips.
type GlyphDef struct {
	ID      string   `json:"id"`
	Aliases []string `json:"aliases,omitempty"`
	Char    string   `json:"char"`
	Label   string   `json:"label,omitempty"`
	Color   string   `json:"color"`
}

// SeparatorDef is a named single-character separator.
type SeparatorDef struct {
	ID      string   `json:"id"`
	Aliases []string `json:"aliases,omitempty"`
	Char    string   `json:"char"`
}

// ComponentParam declares one keyword parameter of a component template.
type ComponentParam struct {
	Name     string `json:"name"`
	Default  string `json:"default,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// ComponentDef is an expansion template. Template text may reference
// $content (the component's rendered children), $1..$n (positional
// arguments) and ${name} (keyword parameters, falling back to defaults).
type ComponentDef struct {
	ID       string           `json:"id"`
	Aliases  []string         `json:"aliases,omitempty"`
	Template string           `json:"template"`
	Params   []ComponentParam `json:"params,omitempty"`
}

// PaletteEntry names a hex color usable anywhere a color parameter appears.
type PaletteEntry struct {
	ID      string   `json:"id"`
	Aliases []string `json:"aliases,omitempty"`
	Hex     string   `json:"hex"`
}

// Registry is the immutable definition store.
type Registry struct {
	styles     map[string]*StyleDef
	frames     map[string]*FrameDef
	badges     map[string]*BadgeDef
	glyphs     map[string]*GlyphDef
	separators map[string]*SeparatorDef
	components map[string]*ComponentDef
	palette    map[string]*PaletteEntry

	// aliases maps namespace -> alias -> canonical id.
	aliases map[Namespace]map[string]string
}

func newRegistry() *Registry {
	r := &Registry{
		styles:     make(map[string]*StyleDef),
		frames:     make(map[string]*FrameDef),
		badges:     make(map[string]*BadgeDef),
		glyphs:     make(map[string]*GlyphDef),
		separators: make(map[string]*SeparatorDef),
		components: make(map[string]*ComponentDef),
		palette:    make(map[string]*PaletteEntry),
		aliases:    make(map[Namespace]map[string]string),
	}
	for _, ns := range []Namespace{
		NamespaceStyle, NamespaceFrame, NamespaceBadge, NamespaceGlyph,
		NamespaceSeparator, NamespaceComponent, NamespacePalette,
	} {
		r.aliases[ns] = make(map[string]string)
	}
	return r
}

func (r *Registry) canonical(ns Namespace, id string) string {
	id = strings.ToLower(id)
	if canon, ok := r.aliases[ns][id]; ok {
		return canon
	}
	return id
}

// Style resolves a style definition by id or alias.
func (r *Registry) Style(id string) (*StyleDef, bool) {
	def, ok := r.styles[r.canonical(NamespaceStyle, id)]
	return def, ok
}

// Frame resolves a frame definition by id or alias.
func (r *Registry) Frame(id string) (*FrameDef, bool) {
	def, ok := r.frames[r.canonical(NamespaceFrame, id)]
	return def, ok
}

// Badge resolves a badge definition by id or alias.
func (r *Registry) Badge(id string) (*BadgeDef, bool) {
	def, ok := r.badges[r.canonical(NamespaceBadge, id)]
	return def, ok
}

// Glyph resolves a glyph definition by id or alias.
func (r *Registry) Glyph(id string) (*GlyphDef, bool) {
	def, ok := r.glyphs[r.canonical(NamespaceGlyph, id)]
	return def, ok
}

// Separator resolves a named separator by id or alias.
func (r *Registry) Separator(id string) (*SeparatorDef, bool) {
	def, ok := r.separators[r.canonical(NamespaceSeparator, id)]
	return def, ok
}

// Component resolves a component definition by id or alias.
func (r *Registry) Component(id string) (*ComponentDef, bool) {
	def, ok := r.components[r.canonical(NamespaceComponent, id)]
	return def, ok
}

// Color resolves a palette name to its hex value. Literal hex values
// (3 or 6 hex digits, optional leading '#') pass through unchanged.
func (r *Registry) Color(name string) (string, bool) {
	if entry, ok := r.palette[r.canonical(NamespacePalette, name)]; ok {
		return entry.Hex, true
	}
	hex := strings.TrimPrefix(name, "#")
	if isHexColor(hex) {
		return hex, true
	}
	return "", false
}

func isHexColor(s string) bool {
	if len(s) != 3 && len(s) != 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// Has reports whether id resolves in the given namespace.
func (r *Registry) Has(ns Namespace, id string) bool {
	switch ns {
	case NamespaceStyle:
		_, ok := r.Style(id)
		return ok
	case NamespaceFrame:
		_, ok := r.Frame(id)
		return ok
	case NamespaceBadge:
		_, ok := r.Badge(id)
		return ok
	case NamespaceGlyph:
		_, ok := r.Glyph(id)
		return ok
	case NamespaceSeparator:
		_, ok := r.Separator(id)
		return ok
	case NamespaceComponent:
		_, ok := r.Component(id)
		return ok
	case NamespacePalette:
		_, ok := r.Color(id)
		return ok
	}
	return false
}

// IDs returns the canonical ids of a namespace, sorted.
func (r *Registry) IDs(ns Namespace) []string {
	var ids []string
	switch ns {
	case NamespaceStyle:
		for id := range r.styles {
			ids = append(ids, id)
		}
	case NamespaceFrame:
		for id := range r.frames {
			ids = append(ids, id)
		}
	case NamespaceBadge:
		for id := range r.badges {
			ids = append(ids, id)
		}
	case NamespaceGlyph:
		for id := range r.glyphs {
			ids = append(ids, id)
		}
	case NamespaceSeparator:
		for id := range r.separators {
			ids = append(ids, id)
		}
	case NamespaceComponent:
		for id := range r.components {
			ids = append(ids, id)
		}
	case NamespacePalette:
		for id := range r.palette {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Aliases returns the alias list of a canonical id, sorted.
func (r *Registry) Aliases(ns Namespace, id string) []string {
	var aliases []string
	for alias, canon := range r.aliases[ns] {
		if canon == id {
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)
	return aliases
}

type definitionFile struct {
	Styles     []*StyleDef     `json:"styles,omitempty"`
	Frames     []*FrameDef     `json:"frames,omitempty"`
	Badges     []*BadgeDef     `json:"badges,omitempty"`
	Glyphs     []*GlyphDef     `json:"glyphs,omitempty"`
	Separators []*SeparatorDef `json:"separators,omitempty"`
	Components []*ComponentDef `json:"components,omitempty"`
	Palette    []*PaletteEntry `json:"palette,omitempty"`
}

func (r *Registry) merge(f *definitionFile) error {
	for _, d := range f.Styles {
		if err := r.add(NamespaceStyle, d.ID, d.Aliases, func() { r.styles[d.ID] = d }); err != nil {
			return err
		}
	}
	for _, d := range f.Frames {
		if err := r.add(NamespaceFrame, d.ID, d.Aliases, func() { r.frames[d.ID] = d }); err != nil {
			return err
		}
	}
	for _, d := range f.Badges {
		if err := r.add(NamespaceBadge, d.ID, d.Aliases, func() { r.badges[d.ID] = d }); err != nil {
			return err
		}
	}
	for _, d := range f.Glyphs {
		if err := r.add(NamespaceGlyph, d.ID, d.Aliases, func() { r.glyphs[d.ID] = d }); err != nil {
			return err
		}
	}
	for _, d := range f.Separators {
		if err := r.add(NamespaceSeparator, d.ID, d.Aliases, func() { r.separators[d.ID] = d }); err != nil {
			return err
		}
	}
	for _, d := range f.Components {
		if err := r.add(NamespaceComponent, d.ID, d.Aliases, func() { r.components[d.ID] = d }); err != nil {
			return err
		}
	}
	for _, d := range f.Palette {
		if err := r.add(NamespacePalette, d.ID, d.Aliases, func() { r.palette[d.ID] = d }); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) add(ns Namespace, id string, aliases []string, insert func()) error {
	if id == "" {
		return fmt.Errorf("%s definition with empty id", ns)
	}
	if id != strings.ToLower(id) {
		return fmt.Errorf("%s id %q must be lowercase", ns, id)
	}
	insert()
	for _, alias := range aliases {
		alias = strings.ToLower(alias)
		if existing, taken := r.aliases[ns][alias]; taken && existing != id {
			return fmt.Errorf("%s alias %q already bound to %q", ns, alias, existing)
		}
		r.aliases[ns][alias] = id
	}
	return nil
}

// LoadDir overlays definition files from a directory onto the registry.
// Every *.json file in the directory is parsed with the same schema as the
// embedded defaults; later definitions replace earlier ones with the same
// id. The receiver must not be shared with running pipelines while loading.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading registry dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		var f definitionFile
		if err := json.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if err := r.merge(&f); err != nil {
			return fmt.Errorf("merging %s: %w", path, err)
		}
	}
	return nil
}

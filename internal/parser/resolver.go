package parser

import (
	"strings"

	"github.com/mdfx-dev/mdfx/internal/errors"
	"github.com/mdfx-dev/mdfx/internal/registry"
	"github.com/mdfx-dev/mdfx/internal/types"
)

// kind is the resolved classification of a tag occurrence.
type kind int

const (
	kindLiteral kind = iota // coincidental braces, emit as text
	kindStyle
	kindFrame
	kindBadge
	kindComponent
	kindShield
	kindGlyph
)

func (k kind) String() string {
	switch k {
	case kindStyle:
		return "style"
	case kindFrame:
		return "frame"
	case kindBadge:
		return "badge"
	case kindComponent:
		return "component"
	case kindShield:
		return "shield"
	case kindGlyph:
		return "glyph"
	default:
		return "literal"
	}
}

// resolve classifies an occurrence against the registry. Priority is fixed:
// frame, badge, bare style, ui, shields, glyph. Namespaced prefixes are
// checked before bare lookups so a bare style alias can never shadow a
// namespaced tag.
//
// A miss is not an error in lenient mode: the occurrence becomes literal
// text. In strict mode it is a resolution error carrying near-miss
// suggestions. The canonical id is returned alongside the kind.
func (p *Parser) resolve(occ *types.TagOccurrence) (kind, string, *errors.Error) {
	switch occ.Namespace {
	case "frame":
		if def, ok := p.reg.Frame(occ.ID); ok {
			return kindFrame, def.ID, nil
		}
		return p.miss(kindFrame, errors.CodeUnknownFrame, registry.NamespaceFrame, occ)
	case "badge":
		if def, ok := p.reg.Badge(occ.ID); ok {
			return kindBadge, def.ID, nil
		}
		return p.miss(kindBadge, errors.CodeUnknownBadge, registry.NamespaceBadge, occ)
	case "ui":
		if def, ok := p.reg.Component(occ.ID); ok {
			return kindComponent, def.ID, nil
		}
		return p.miss(kindComponent, errors.CodeUnknownComponent, registry.NamespaceComponent, occ)
	case "shields":
		// The escape hatch takes any kind name; the renderer decides what
		// it can draw.
		return kindShield, strings.ToLower(occ.ID), nil
	case "glyph":
		if def, ok := p.reg.Glyph(occ.ID); ok {
			return kindGlyph, def.ID, nil
		}
		return p.miss(kindGlyph, errors.CodeUnknownGlyph, registry.NamespaceGlyph, occ)
	}

	// Bare identifier: walk the same priority order, so an id registered
	// as both a frame alias and a style alias is always the frame.
	if def, ok := p.reg.Frame(occ.ID); ok {
		return kindFrame, def.ID, nil
	}
	if def, ok := p.reg.Badge(occ.ID); ok {
		return kindBadge, def.ID, nil
	}
	if def, ok := p.reg.Style(occ.ID); ok {
		return kindStyle, def.ID, nil
	}
	return p.miss(kindStyle, errors.CodeUnknownStyle, registry.NamespaceStyle, occ)
}

func (p *Parser) miss(k kind, code string, ns registry.Namespace, occ *types.TagOccurrence) (kind, string, *errors.Error) {
	if !p.opts.Strict {
		return kindLiteral, "", nil
	}
	err := errors.UnknownID(code, k.String(), occ.ID, occ.Start).
		WithSuggestions(p.reg.Suggest(ns, occ.ID))
	return kindLiteral, "", err
}

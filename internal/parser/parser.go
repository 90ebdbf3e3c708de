// Package parser turns scanner output into the primitive AST. It is a
// recursive-descent pass over the segment stream: block-open tags push a
// frame, closers must match the innermost open frame, and self-closing tags
// never push at all. Resolution misses degrade to literal text in lenient
// mode and fail with suggestions in strict mode.
package parser

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/mdfx-dev/mdfx/internal/errors"
	"github.com/mdfx-dev/mdfx/internal/registry"
	"github.com/mdfx-dev/mdfx/internal/scanner"
	"github.com/mdfx-dev/mdfx/internal/types"
)

// DefaultMaxNesting bounds block-tag depth. It also caps how far component
// expansion can recurse, since expansion re-enters the parser.
const DefaultMaxNesting = 64

// Options configures a Parser.
type Options struct {
	// Strict makes unresolved tags hard errors instead of literal text.
	Strict bool
	// MaxNesting overrides DefaultMaxNesting when positive.
	MaxNesting int
}

// Parser resolves and parses documents against one registry. It is
// stateless across calls and safe for concurrent use.
type Parser struct {
	reg  *registry.Registry
	opts Options
}

// Result is a parsed document plus non-fatal diagnostics.
type Result struct {
	Nodes       []types.Node
	Diagnostics []*errors.Error
}

// New creates a Parser over the given registry.
func New(reg *registry.Registry, opts Options) *Parser {
	return &Parser{reg: reg, opts: opts}
}

// Registry returns the registry the parser resolves against.
func (p *Parser) Registry() *registry.Registry { return p.reg }

// Strict reports whether the parser fails on unresolved tags.
func (p *Parser) Strict() bool { return p.opts.Strict }

func (p *Parser) maxNesting() int {
	if p.opts.MaxNesting > 0 {
		return p.opts.MaxNesting
	}
	return DefaultMaxNesting
}

// openFrame is one entry of the block-tag stack.
type openFrame struct {
	kind     kind
	id       string // canonical id
	node     types.Node
	offset   int
	children []types.Node
}

// Parse scans and parses one document.
func (p *Parser) Parse(input string) (*Result, error) {
	scanned := scanner.Scan(input)
	res := &Result{Diagnostics: scanned.Diagnostics}

	var stack []*openFrame
	var top []types.Node

	appendNode := func(n types.Node) {
		if len(stack) == 0 {
			top = appendChild(top, n)
		} else {
			f := stack[len(stack)-1]
			f.children = appendChild(f.children, n)
		}
	}

	for _, seg := range scanned.Segments {
		if !seg.IsTag() {
			appendNode(&types.TextNode{Text: seg.Text})
			continue
		}
		occ := seg.Tag

		if occ.Form == types.FormBlockClose {
			frame, err := p.closeTag(occ, &stack)
			if err != nil {
				return nil, err
			}
			if frame == nil {
				// Stray closer demoted to literal.
				appendNode(&types.TextNode{Text: rawTag(occ)})
				continue
			}
			finishFrame(frame)
			appendNode(frame.node)
			continue
		}

		k, canon, err := p.resolve(occ)
		if err != nil {
			return nil, err
		}
		if k == kindLiteral {
			appendNode(&types.TextNode{Text: rawTag(occ)})
			continue
		}

		node, diags, buildErr := p.buildNode(k, canon, occ)
		if buildErr != nil {
			return nil, buildErr
		}
		res.Diagnostics = append(res.Diagnostics, diags...)

		if occ.Form == types.FormBlockOpen && blockKind(k) {
			if len(stack) >= p.maxNesting() {
				return nil, errors.NestingTooDeep(p.maxNesting(), occ.Start)
			}
			stack = append(stack, &openFrame{kind: k, id: canon, node: node, offset: occ.Start})
			continue
		}
		appendNode(node)
	}

	if len(stack) > 0 {
		innermost := stack[len(stack)-1]
		return nil, errors.UnclosedTag(displayID(innermost.kind, innermost.id), innermost.offset)
	}

	res.Nodes = top
	return res, nil
}

// blockKind reports whether this kind takes children. Glyphs and shields
// complete immediately regardless of the written form.
func blockKind(k kind) bool {
	switch k {
	case kindStyle, kindFrame, kindBadge, kindComponent:
		return true
	}
	return false
}

// buildNode creates the AST node for an open or self-closing occurrence and
// validates its parameters. Unrecognized keys are soft diagnostics; values
// that fail type or range checks are hard errors.
func (p *Parser) buildNode(k kind, canon string, occ *types.TagOccurrence) (types.Node, []*errors.Error, error) {
	switch k {
	case kindStyle:
		node := &types.StyleNode{ID: canon, Offset: occ.Start}
		var diags []*errors.Error
		for _, param := range occ.Params {
			switch param.Key {
			case "spacing":
				n, err := strconv.Atoi(param.Value)
				if err != nil || n < 0 {
					return nil, nil, errors.InvalidParameter("spacing", param.Value,
						"must be a non-negative integer", occ.Start)
				}
				node.Spacing = &n
			case "separator":
				spec, err := p.resolveSeparator(param.Value, occ.Start)
				if err != nil {
					return nil, nil, err
				}
				node.Separator = spec
			default:
				diags = append(diags, p.unrecognized(param, occ))
			}
		}
		return node, diags, nil

	case kindFrame:
		node := &types.FrameNode{ID: canon, Offset: occ.Start}
		return node, p.rejectParams(occ), nil

	case kindBadge:
		node := &types.BadgeNode{ID: canon, Offset: occ.Start}
		return node, p.rejectParams(occ), nil

	case kindGlyph:
		node := &types.GlyphNode{ID: canon, Offset: occ.Start}
		return node, p.rejectParams(occ), nil

	case kindShield:
		node := &types.ShieldNode{Kind: canon, Params: map[string]string{}, Offset: occ.Start}
		var diags []*errors.Error
		for _, param := range occ.Params {
			if param.Key == "" {
				diags = append(diags, p.unrecognized(param, occ))
				continue
			}
			node.Params[param.Key] = param.Value
		}
		return node, diags, nil

	case kindComponent:
		node := &types.ComponentNode{
			ID:          canon,
			Kwargs:      map[string]string{},
			SelfClosing: occ.Form == types.FormSelfClosing,
			Offset:      occ.Start,
		}
		for _, param := range occ.Params {
			if param.Key == "" {
				node.Args = append(node.Args, param.Value)
			} else {
				node.Kwargs[param.Key] = param.Value
			}
		}
		return node, nil, nil
	}

	return nil, nil, fmt.Errorf("unreachable tag kind %v", k)
}

// Separator resolves a separator value outside a document parse, for
// callers that build style nodes programmatically. Same rules as the
// separator parameter, without a source position.
func (p *Parser) Separator(value string) (*types.SeparatorSpec, error) {
	spec, err := p.resolveSeparator(value, -1)
	if err != nil {
		return nil, err
	}
	return spec, nil
}

// resolveSeparator applies the name-or-literal rule: a registry name wins,
// otherwise the value must be one rune and must not collide with tag
// delimiter characters.
func (p *Parser) resolveSeparator(value string, offset int) (*types.SeparatorSpec, *errors.Error) {
	if def, ok := p.reg.Separator(value); ok {
		r, _ := utf8.DecodeRuneInString(def.Char)
		return &types.SeparatorSpec{Name: def.ID, Rune: r}, nil
	}

	r, size := utf8.DecodeRuneInString(value)
	if value == "" || size != len(value) {
		err := errors.InvalidParameter("separator", value,
			"must be a named separator or a single character", offset)
		return nil, err.WithSuggestions(p.reg.Suggest(registry.NamespaceSeparator, value))
	}
	switch r {
	case ':', '/', '}':
		return nil, errors.InvalidParameter("separator", value,
			"collides with tag delimiter characters", offset)
	}
	return &types.SeparatorSpec{Rune: r}, nil
}

func (p *Parser) unrecognized(param types.Param, occ *types.TagOccurrence) *errors.Error {
	name := param.Key
	if name == "" {
		name = param.Value
	}
	return errors.InvalidParameter(name, param.Value,
		fmt.Sprintf("not recognized by {{%s}}, ignored", tagName(occ)), occ.Start)
}

func (p *Parser) rejectParams(occ *types.TagOccurrence) []*errors.Error {
	var diags []*errors.Error
	for _, param := range occ.Params {
		diags = append(diags, p.unrecognized(param, occ))
	}
	return diags
}

// closeTag matches a closer against the innermost open frame. It returns
// the completed frame, or nil when a stray closer should fall back to
// literal text (lenient mode, closer naming nothing we know).
func (p *Parser) closeTag(occ *types.TagOccurrence, stack *[]*openFrame) (*openFrame, error) {
	if len(*stack) == 0 {
		if !p.opts.Strict && !p.closerIsKnown(occ) {
			return nil, nil
		}
		return nil, errors.MismatchedTag("", closerName(occ), occ.Start)
	}

	top := (*stack)[len(*stack)-1]
	if !p.closerMatches(occ, top) {
		return nil, errors.MismatchedTag(displayID(top.kind, top.id), closerName(occ), occ.Start)
	}

	*stack = (*stack)[:len(*stack)-1]
	return top, nil
}

func (p *Parser) closerMatches(occ *types.TagOccurrence, top *openFrame) bool {
	switch top.kind {
	case kindStyle:
		if occ.Namespace != "" {
			return false
		}
		def, ok := p.reg.Style(occ.ID)
		return ok && def.ID == top.id
	case kindFrame:
		if occ.Namespace == "frame" {
			if occ.ID == "" {
				return true
			}
			def, ok := p.reg.Frame(occ.ID)
			return ok && def.ID == top.id
		}
		// Bare closer for a frame opened by bare alias.
		if occ.Namespace == "" {
			def, ok := p.reg.Frame(occ.ID)
			return ok && def.ID == top.id
		}
		return false
	case kindBadge:
		if occ.Namespace == "badge" {
			if occ.ID == "" {
				return true
			}
			def, ok := p.reg.Badge(occ.ID)
			return ok && def.ID == top.id
		}
		if occ.Namespace == "" {
			def, ok := p.reg.Badge(occ.ID)
			return ok && def.ID == top.id
		}
		return false
	case kindComponent:
		// The generic {{/ui}} closer matches any open component.
		return occ.Namespace == "ui"
	}
	return false
}

// closerIsKnown reports whether a stray closer names a reserved namespace
// or a known bare id. Unknown stray closers are coincidental braces.
func (p *Parser) closerIsKnown(occ *types.TagOccurrence) bool {
	if occ.Namespace != "" {
		return true
	}
	return p.reg.Has(registry.NamespaceFrame, occ.ID) ||
		p.reg.Has(registry.NamespaceBadge, occ.ID) ||
		p.reg.Has(registry.NamespaceStyle, occ.ID)
}

func finishFrame(f *openFrame) {
	switch n := f.node.(type) {
	case *types.StyleNode:
		n.Children = f.children
	case *types.FrameNode:
		n.Children = f.children
	case *types.BadgeNode:
		n.Children = f.children
	case *types.ComponentNode:
		n.Children = f.children
	}
}

// appendChild adds a node to a child list, coalescing adjacent text runs.
func appendChild(children []types.Node, n types.Node) []types.Node {
	if text, ok := n.(*types.TextNode); ok && len(children) > 0 {
		if prev, ok := children[len(children)-1].(*types.TextNode); ok {
			prev.Text += text.Text
			return children
		}
	}
	return append(children, n)
}

func displayID(k kind, id string) string {
	switch k {
	case kindFrame:
		return "frame:" + id
	case kindBadge:
		return "badge:" + id
	case kindComponent:
		return "ui:" + id
	default:
		return id
	}
}

func closerName(occ *types.TagOccurrence) string {
	if occ.Namespace != "" && occ.ID != "" {
		return occ.Namespace + ":" + occ.ID
	}
	if occ.Namespace != "" {
		return occ.Namespace
	}
	return occ.ID
}

func tagName(occ *types.TagOccurrence) string {
	return closerName(occ)
}

func rawTag(occ *types.TagOccurrence) string {
	return "{{" + occ.Raw + "}}"
}

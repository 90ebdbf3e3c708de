// Package renderer walks a fully expanded primitive tree and emits
// backend-specific output: styled Unicode text everywhere, plus shields.io
// Markdown images for hosted targets, plaintext fallbacks for package
// registries, and locally generated SVG references for the local target.
//
// Every target is a pure function of the same tree, which is what lets a
// single parse feed build --all-targets.
package renderer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mdfx-dev/mdfx/internal/assets"
	"github.com/mdfx-dev/mdfx/internal/charmap"
	mdfxerrors "github.com/mdfx-dev/mdfx/internal/errors"
	"github.com/mdfx-dev/mdfx/internal/registry"
	"github.com/mdfx-dev/mdfx/internal/types"
)

// Renderer renders primitive trees against one registry. Safe for
// concurrent use; compiled style mappers are memoized across documents.
type Renderer struct {
	reg *registry.Registry

	// cache is required for the local target only. Other targets never
	// touch it.
	cache *assets.Cache
	// assetsPrefix is prepended to cache-relative paths in emitted
	// Markdown, typically the assets directory name.
	assetsPrefix string

	mu      sync.RWMutex
	mappers map[string]*charmap.Mapper
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithAssets wires the content-addressed asset cache used by the local
// target. prefix is the path prefix emitted in image references.
func WithAssets(cache *assets.Cache, prefix string) Option {
	return func(r *Renderer) {
		r.cache = cache
		r.assetsPrefix = prefix
	}
}

// New creates a Renderer.
func New(reg *registry.Registry, opts ...Option) *Renderer {
	r := &Renderer{
		reg:          reg,
		assetsPrefix: "assets",
		mappers:      make(map[string]*charmap.Mapper),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render emits the document for one target. The tree must be fully
// expanded; a surviving component node is a programming error upstream.
// Asset write failures come back as diagnostics rather than an error: the
// emitted text keeps its reference to the intended path either way.
func (r *Renderer) Render(nodes []types.Node, target types.Target) (string, []*mdfxerrors.Error, error) {
	var b strings.Builder
	var diags []*mdfxerrors.Error
	if err := r.renderNodes(&b, nodes, target, &diags); err != nil {
		return "", nil, err
	}
	return b.String(), diags, nil
}

func (r *Renderer) renderNodes(b *strings.Builder, nodes []types.Node, target types.Target, diags *[]*mdfxerrors.Error) error {
	for _, n := range nodes {
		err := r.renderNode(b, n, target, diags)
		if err == nil {
			continue
		}
		// The image reference is already written when an asset write
		// fails, so the document text survives; only the decorative
		// file is missing. Demote to a diagnostic and keep going.
		var assetErr *mdfxerrors.Error
		if errors.As(err, &assetErr) && assetErr.Kind == mdfxerrors.KindAsset {
			*diags = append(*diags, assetErr)
			continue
		}
		return err
	}
	return nil
}

func (r *Renderer) renderNode(b *strings.Builder, n types.Node, target types.Target, diags *[]*mdfxerrors.Error) error {
	switch v := n.(type) {
	case *types.TextNode:
		b.WriteString(v.Text)
		return nil
	case *types.StyleNode:
		return r.renderStyle(b, v, target, diags)
	case *types.FrameNode:
		return r.renderFrame(b, v, target, diags)
	case *types.BadgeNode:
		return r.renderBadge(b, v)
	case *types.GlyphNode:
		return r.renderGlyph(b, v, target)
	case *types.ShieldNode:
		return r.renderShield(b, v, target)
	case *types.ComponentNode:
		return fmt.Errorf("unexpanded component %q reached the renderer", v.ID)
	}
	return fmt.Errorf("unknown node type %T", n)
}

// renderStyle maps the rendered children rune by rune and interleaves
// spacing/separator between transformed output units. Counting happens on
// output units, not raw input: what the reader sees is what gets spaced.
func (r *Renderer) renderStyle(b *strings.Builder, node *types.StyleNode, target types.Target, diags *[]*mdfxerrors.Error) error {
	var inner strings.Builder
	if err := r.renderNodes(&inner, node.Children, target, diags); err != nil {
		return err
	}

	mapper, err := r.mapper(node.ID)
	if err != nil {
		return err
	}

	interleave := styleInterleave(node)
	var prev rune
	first := true
	for _, raw := range inner.String() {
		// Whitespace already separates; interleaving applies between
		// adjacent visible units only.
		if interleave != "" && !first && !isSpace(prev) && !isSpace(raw) {
			b.WriteString(interleave)
		}
		b.WriteRune(mapper.Map(raw))
		prev = raw
		first = false
	}
	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// styleInterleave builds the run inserted between output units: spacing
// spaces, a separator rune, or the separator padded by spacing when both
// are set.
func styleInterleave(node *types.StyleNode) string {
	pad := ""
	if node.Spacing != nil {
		pad = strings.Repeat(" ", *node.Spacing)
	}
	if node.Separator != nil {
		return pad + string(node.Separator.Rune) + pad
	}
	return pad
}

func (r *Renderer) renderFrame(b *strings.Builder, node *types.FrameNode, target types.Target, diags *[]*mdfxerrors.Error) error {
	def, ok := r.reg.Frame(node.ID)
	if !ok {
		return mdfxerrors.UnknownID(mdfxerrors.CodeUnknownFrame, "frame", node.ID, node.Offset)
	}
	b.WriteString(def.Prefix)
	if err := r.renderNodes(b, node.Children, target, diags); err != nil {
		return err
	}
	b.WriteString(def.Suffix)
	return nil
}

func (r *Renderer) mapper(styleID string) (*charmap.Mapper, error) {
	r.mu.RLock()
	m, ok := r.mappers[styleID]
	r.mu.RUnlock()
	if ok {
		return m, nil
	}

	def, found := r.reg.Style(styleID)
	if !found {
		return nil, mdfxerrors.UnknownID(mdfxerrors.CodeUnknownStyle, "style", styleID, -1)
	}
	compiled, err := charmap.Compile(def)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.mappers[styleID] = compiled
	r.mu.Unlock()
	return compiled, nil
}

// flattenText collapses a badge's children to their single text run.
func flattenText(nodes []types.Node) (string, bool) {
	var b strings.Builder
	for _, n := range nodes {
		text, ok := n.(*types.TextNode)
		if !ok {
			return "", false
		}
		b.WriteString(text.Text)
	}
	return b.String(), true
}

// renderBadge emits enclosed glyphs for the badge's charset. Content the
// charset cannot express is a hard error: silently dropping or passing
// through half a badge would be worse than failing.
func (r *Renderer) renderBadge(b *strings.Builder, node *types.BadgeNode) error {
	def, ok := r.reg.Badge(node.ID)
	if !ok {
		return mdfxerrors.UnknownID(mdfxerrors.CodeUnknownBadge, "badge", node.ID, node.Offset)
	}

	content, ok := flattenText(node.Children)
	if !ok {
		return mdfxerrors.UnsupportedBadgeChar(node.ID, "<nested markup>", node.Offset)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return mdfxerrors.UnsupportedBadgeChar(node.ID, content, node.Offset)
	}

	switch def.Charset {
	case "number":
		n := 0
		for _, c := range content {
			if c < '0' || c > '9' {
				return mdfxerrors.UnsupportedBadgeChar(node.ID, content, node.Offset)
			}
			n = n*10 + int(c-'0')
		}
		if n < def.Min || n > def.Max {
			return mdfxerrors.UnsupportedBadgeChar(node.ID, content, node.Offset)
		}
		if n == 0 {
			zero, err := hexToRune(def.Zero)
			if err != nil {
				return mdfxerrors.UnsupportedBadgeChar(node.ID, content, node.Offset)
			}
			b.WriteRune(zero)
			return nil
		}
		base, err := hexToRune(def.Base)
		if err != nil {
			return fmt.Errorf("badge %s: %w", def.ID, err)
		}
		b.WriteRune(base + rune(n-1))
		return nil

	case "letter":
		base, err := hexToRune(def.Base)
		if err != nil {
			return fmt.Errorf("badge %s: %w", def.ID, err)
		}
		for _, c := range strings.ToLower(content) {
			if c < 'a' || c > 'z' {
				return mdfxerrors.UnsupportedBadgeChar(node.ID, content, node.Offset)
			}
			b.WriteRune(base + (c - 'a'))
		}
		return nil
	}
	return fmt.Errorf("badge %s: unknown charset %q", def.ID, def.Charset)
}

func hexToRune(hex string) (rune, error) {
	var n uint32
	if _, err := fmt.Sscanf(hex, "%x", &n); err != nil || hex == "" {
		return 0, fmt.Errorf("%q is not a hex codepoint", hex)
	}
	if !utf8.ValidRune(rune(n)) {
		return 0, fmt.Errorf("%q is outside the Unicode range", hex)
	}
	return rune(n), nil
}

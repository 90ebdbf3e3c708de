package expander

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdfxerrors "github.com/mdfx-dev/mdfx/internal/errors"
	"github.com/mdfx-dev/mdfx/internal/parser"
	"github.com/mdfx-dev/mdfx/internal/registry"
	"github.com/mdfx-dev/mdfx/internal/types"
)

func writeOverlay(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "overlay.json"), []byte(content), 0o644))
}

func expand(t *testing.T, input string) []types.Node {
	t.Helper()
	p := parser.New(registry.MustDefault(), parser.Options{})
	parsed, err := p.Parse(input)
	require.NoError(t, err)

	nodes, _, err := New(p, 0).Expand(parsed.Nodes)
	require.NoError(t, err)
	require.False(t, types.HasComponents(nodes), "expansion must leave no component nodes")
	return nodes
}

func TestExpandSelfClosingComponent(t *testing.T) {
	nodes := expand(t, "{{ui:swatch:accent/}}")

	require.Len(t, nodes, 1)
	shield, ok := nodes[0].(*types.ShieldNode)
	require.True(t, ok)
	assert.Equal(t, "swatch", shield.Kind)
	assert.Equal(t, "accent", shield.Params["color"])
}

func TestExpandKwargDefaults(t *testing.T) {
	nodes := expand(t, "{{ui:bar:7:10/}}")

	shield := nodes[0].(*types.ShieldNode)
	assert.Equal(t, "bar", shield.Kind)
	assert.Equal(t, "7", shield.Params["value"])
	assert.Equal(t, "10", shield.Params["max"])
	assert.Equal(t, "accent", shield.Params["color"], "default kwarg applies")
	assert.Equal(t, "120", shield.Params["width"])
}

func TestExpandKwargOverride(t *testing.T) {
	nodes := expand(t, "{{ui:bar:7:10:color=danger/}}")

	shield := nodes[0].(*types.ShieldNode)
	assert.Equal(t, "danger", shield.Params["color"])
}

func TestExpandBlockComponentContent(t *testing.T) {
	nodes := expand(t, "{{ui:title}}HELLO{{/ui}}")

	require.Len(t, nodes, 1)
	frame, ok := nodes[0].(*types.FrameNode)
	require.True(t, ok)
	assert.Equal(t, "gradient", frame.ID)
	require.Len(t, frame.Children, 1)
	style, ok := frame.Children[0].(*types.StyleNode)
	require.True(t, ok)
	assert.Equal(t, "mathbold", style.ID)
	require.NotNil(t, style.Separator)
	assert.Equal(t, "dot", style.Separator.Name)
	require.Len(t, style.Children, 1)
	assert.Equal(t, "HELLO", style.Children[0].(*types.TextNode).Text)
}

func TestExpandComponentCallingComponent(t *testing.T) {
	// banner's template calls ui:title.
	nodes := expand(t, "{{ui:banner}}GO{{/ui}}")

	var sawGlyph, sawFrame bool
	for _, n := range nodes {
		switch n.(type) {
		case *types.GlyphNode:
			sawGlyph = true
		case *types.FrameNode:
			sawFrame = true
		}
	}
	assert.True(t, sawGlyph, "banner should contribute star glyphs")
	assert.True(t, sawFrame, "nested title should contribute a frame")
}

func TestExpandAlreadyExpandedChildrenSurvive(t *testing.T) {
	nodes := expand(t, "{{ui:title}}{{glyph:check/}}OK{{/ui}}")

	frame := nodes[0].(*types.FrameNode)
	style := frame.Children[0].(*types.StyleNode)
	require.Len(t, style.Children, 2)
	_, ok := style.Children[0].(*types.GlyphNode)
	assert.True(t, ok)
	assert.Equal(t, "OK", style.Children[1].(*types.TextNode).Text)
}

func TestExpandMissingRequiredArg(t *testing.T) {
	p := parser.New(registry.MustDefault(), parser.Options{})
	parsed, err := p.Parse("{{ui:swatch/}}")
	require.NoError(t, err)

	_, _, err = New(p, 0).Expand(parsed.Nodes)
	var perr *mdfxerrors.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, mdfxerrors.KindExpansion, perr.Kind)
}

func TestExpandDepthLimit(t *testing.T) {
	dir := t.TempDir()
	writeOverlay(t, dir, `{"components": [
		{"id": "loop-a", "template": "{{ui:loop-b/}}"},
		{"id": "loop-b", "template": "{{ui:loop-a/}}"}
	]}`)

	reg := registry.MustDefault()
	require.NoError(t, reg.LoadDir(dir))
	p := parser.New(reg, parser.Options{})
	parsed, err := p.Parse("{{ui:loop-a/}}")
	require.NoError(t, err)

	_, _, err = New(p, 8).Expand(parsed.Nodes)
	var perr *mdfxerrors.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, mdfxerrors.CodeExpansionTooDeep, perr.Code)
}

func TestSerializeRoundTrip(t *testing.T) {
	input := "pre {{frame:box}}{{mathbold:separator=dot:spacing=1}}AB{{/mathbold}}{{/frame}} {{glyph:check/}} post"
	p := parser.New(registry.MustDefault(), parser.Options{})
	parsed, err := p.Parse(input)
	require.NoError(t, err)

	serialized := Serialize(parsed.Nodes)
	reparsed, err := p.Parse(serialized)
	require.NoError(t, err)
	assert.Equal(t, Serialize(reparsed.Nodes), serialized)
}

func TestSerializeShieldIsDeterministic(t *testing.T) {
	shield := &types.ShieldNode{Kind: "bar", Params: map[string]string{
		"width": "120", "color": "accent", "max": "10", "value": "7",
	}}
	want := "{{shields:bar:color=accent:max=10:value=7:width=120/}}"
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, Serialize([]types.Node{shield}))
	}
}

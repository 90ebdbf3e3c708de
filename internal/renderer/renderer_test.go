package renderer_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdfx-dev/mdfx/internal/assets"
	mdfxerrors "github.com/mdfx-dev/mdfx/internal/errors"
	"github.com/mdfx-dev/mdfx/internal/expander"
	"github.com/mdfx-dev/mdfx/internal/logging"
	"github.com/mdfx-dev/mdfx/internal/parser"
	"github.com/mdfx-dev/mdfx/internal/registry"
	"github.com/mdfx-dev/mdfx/internal/renderer"
	"github.com/mdfx-dev/mdfx/internal/types"
)

func renderDoc(t *testing.T, input string, target types.Target, opts ...renderer.Option) (string, error) {
	t.Helper()
	reg := registry.MustDefault()
	p := parser.New(reg, parser.Options{})
	parsed, err := p.Parse(input)
	require.NoError(t, err)
	nodes, _, err := expander.New(p, 16).Expand(parsed.Nodes)
	require.NoError(t, err)
	out, diags, err := renderer.New(reg, opts...).Render(nodes, target)
	require.Empty(t, diags)
	return out, err
}

func TestRenderPlainTextPassthrough(t *testing.T) {
	input := "no markup here, just prose with `inline code` and a dash-ed word.\n"
	out, err := renderDoc(t, input, types.TargetGitHub)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

func TestRenderStyleMathbold(t *testing.T) {
	out, err := renderDoc(t, "{{mathbold}}Hello{{/mathbold}}", types.TargetGitHub)
	require.NoError(t, err)
	assert.Equal(t, "𝐇𝐞𝐥𝐥𝐨", out)
}

func TestRenderStyleSeparator(t *testing.T) {
	out, err := renderDoc(t, "{{mathbold:separator=dot}}TITLE{{/mathbold}}", types.TargetGitHub)
	require.NoError(t, err)
	assert.Equal(t, "𝐓·𝐈·𝐓·𝐋·𝐄", out)
}

func TestRenderStyleSpacing(t *testing.T) {
	out, err := renderDoc(t, "{{mathbold:spacing=1}}AB{{/mathbold}}", types.TargetGitHub)
	require.NoError(t, err)
	assert.Equal(t, "𝐀 𝐁", out)
}

func TestRenderStyleSeparatorSkipsWhitespace(t *testing.T) {
	// Separators go between visible units only, never beside a space.
	out, err := renderDoc(t, "{{mathbold:separator=dot}}AB CD{{/mathbold}}", types.TargetGitHub)
	require.NoError(t, err)
	assert.Equal(t, "𝐀·𝐁 𝐂·𝐃", out)
}

func TestRenderStyleUnmappedRunePassthrough(t *testing.T) {
	// mathbold covers letters and digits; punctuation passes through.
	out, err := renderDoc(t, "{{mathbold}}v1.2{{/mathbold}}", types.TargetGitHub)
	require.NoError(t, err)
	assert.Equal(t, "𝐯𝟏.𝟐", out)
}

func TestRenderFrame(t *testing.T) {
	out, err := renderDoc(t, "{{frame:gradient}}RELEASE{{/frame}}", types.TargetGitHub)
	require.NoError(t, err)
	assert.Equal(t, "▓▒░ RELEASE ░▒▓", out)
}

func TestRenderFrameWrapsStyledContent(t *testing.T) {
	out, err := renderDoc(t, "{{frame:gradient}}{{mathbold}}HI{{/mathbold}}{{/frame}}", types.TargetGitHub)
	require.NoError(t, err)
	assert.Equal(t, "▓▒░ 𝐇𝐈 ░▒▓", out)
}

func TestRenderBadgeCircleNumbers(t *testing.T) {
	cases := map[string]string{
		"{{badge:circle}}0{{/badge}}":  "⓪",
		"{{badge:circle}}1{{/badge}}":  "①",
		"{{badge:circle}}7{{/badge}}":  "⑦",
		"{{badge:circle}}20{{/badge}}": "⑳",
	}
	for input, want := range cases {
		out, err := renderDoc(t, input, types.TargetGitHub)
		require.NoError(t, err, input)
		assert.Equal(t, want, out, input)
	}
}

func TestRenderBadgeCircleLetters(t *testing.T) {
	out, err := renderDoc(t, "{{badge:circle-letter}}abc{{/badge}}", types.TargetGitHub)
	require.NoError(t, err)
	assert.Equal(t, "ⓐⓑⓒ", out)

	// Letter badges fold case rather than reject uppercase.
	out, err = renderDoc(t, "{{badge:circle-letter}}OK{{/badge}}", types.TargetGitHub)
	require.NoError(t, err)
	assert.Equal(t, "ⓞⓚ", out)
}

func TestRenderBadgeOutOfRange(t *testing.T) {
	_, err := renderDoc(t, "{{badge:circle}}99{{/badge}}", types.TargetGitHub)
	require.Error(t, err)
	var mdfxErr *mdfxerrors.Error
	require.ErrorAs(t, err, &mdfxErr)
	assert.Equal(t, mdfxerrors.CodeUnsupportedChar, mdfxErr.Code)
}

func TestRenderBadgeRejectsNonLetters(t *testing.T) {
	_, err := renderDoc(t, "{{badge:circle-letter}}a1{{/badge}}", types.TargetGitHub)
	require.Error(t, err)
	var mdfxErr *mdfxerrors.Error
	require.ErrorAs(t, err, &mdfxErr)
	assert.Equal(t, mdfxerrors.CodeUnsupportedChar, mdfxErr.Code)
}

func TestRenderGlyphPerTarget(t *testing.T) {
	for _, target := range []types.Target{types.TargetNpm, types.TargetPypi} {
		out, err := renderDoc(t, "{{glyph:check}}", target)
		require.NoError(t, err)
		assert.Equal(t, "✓", out, target)
	}

	out, err := renderDoc(t, "{{glyph:check}}", types.TargetGitHub)
	require.NoError(t, err)
	assert.Equal(t, "![check](https://img.shields.io/badge/ok-%E2%9C%93-16a34a)", out)
}

func TestRenderShieldBadgeImage(t *testing.T) {
	input := "{{shields:badge:label=build:message=passing:color=success}}"
	out, err := renderDoc(t, input, types.TargetGitHub)
	require.NoError(t, err)
	assert.Equal(t, "![badge](https://img.shields.io/badge/build-passing-16a34a)", out)
}

func TestRenderShieldEscaping(t *testing.T) {
	// shields.io wants literal dashes doubled and spaces escaped.
	input := "{{shields:badge:label=unit tests:message=all-green}}"
	out, err := renderDoc(t, input, types.TargetGitHub)
	require.NoError(t, err)
	assert.Equal(t, "![badge](https://img.shields.io/badge/unit%20tests-all--green-7c3aed)", out)
}

func TestRenderShieldTextFallbacks(t *testing.T) {
	cases := map[string]string{
		"{{shields:badge:label=build:message=passing}}": "[build: passing]",
		"{{shields:bar:value=7:max=10}}":                "▰▰▰▰▰▰▰▱▱▱",
		"{{shields:donut:value=3:max=4}}":               "75%",
		"{{shields:gauge:value=1:max=2}}":               "50%",
		"{{shields:rating:value=4:max=5}}":              "★★★★☆",
		"{{shields:swatch:color=accent}}":               "■",
	}
	for input, want := range cases {
		out, err := renderDoc(t, input, types.TargetNpm)
		require.NoError(t, err, input)
		assert.Equal(t, want, out, input)
	}
}

func TestRenderShieldInvalidParams(t *testing.T) {
	_, err := renderDoc(t, "{{shields:bar:value=oops:max=10}}", types.TargetNpm)
	require.Error(t, err)
	var mdfxErr *mdfxerrors.Error
	require.ErrorAs(t, err, &mdfxErr)
	assert.Equal(t, mdfxerrors.CodeInvalidParameter, mdfxErr.Code)

	_, err = renderDoc(t, "{{shields:swatch:color=nope}}", types.TargetGitHub)
	require.Error(t, err)
}

func TestRenderLocalTargetWritesAsset(t *testing.T) {
	dir := t.TempDir()
	cache, err := assets.Open(dir, logging.Discard())
	require.NoError(t, err)

	out, err := renderDoc(t, "{{shields:swatch:color=accent}}", types.TargetLocal,
		renderer.WithAssets(cache, "assets"))
	require.NoError(t, err)

	hash := assets.Hash("swatch", map[string]string{"color": "7c3aed"})
	name := fmt.Sprintf("swatch_%016x.svg", hash)
	assert.Equal(t, fmt.Sprintf("![swatch](assets/%s)", name), out)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
	assert.Contains(t, string(data), "7c3aed")
}

func TestRenderLocalAssetIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	cache, err := assets.Open(dir, logging.Discard())
	require.NoError(t, err)
	opts := renderer.WithAssets(cache, "img")

	first, err := renderDoc(t, "{{shields:donut:value=3:max=4:color=info}}", types.TargetLocal, opts)
	require.NoError(t, err)
	second, err := renderDoc(t, "{{shields:donut:value=3:max=4:color=info}}", types.TargetLocal, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestRenderLocalWithoutCacheFails(t *testing.T) {
	_, err := renderDoc(t, "{{shields:swatch:color=accent}}", types.TargetLocal)
	require.Error(t, err)
}

func TestRenderUnexpandedComponentIsError(t *testing.T) {
	reg := registry.MustDefault()
	nodes := []types.Node{&types.ComponentNode{ID: "swatch"}}
	_, _, err := renderer.New(reg).Render(nodes, types.TargetGitHub)
	require.Error(t, err)
}

func TestRenderAssetWriteFailureKeepsOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "assets")
	cache, err := assets.Open(dir, logging.Discard())
	require.NoError(t, err)
	// Yank the directory out from under the cache so the SVG write fails.
	require.NoError(t, os.RemoveAll(dir))

	reg := registry.MustDefault()
	p := parser.New(reg, parser.Options{})
	parsed, err := p.Parse("before {{glyph:check}} after")
	require.NoError(t, err)
	nodes, _, err := expander.New(p, 16).Expand(parsed.Nodes)
	require.NoError(t, err)

	out, diags, err := renderer.New(reg, renderer.WithAssets(cache, "assets")).
		Render(nodes, types.TargetLocal)
	require.NoError(t, err)

	hash := assets.Hash("glyph", map[string]string{"char": "✓", "color": "16a34a"})
	want := fmt.Sprintf("before ![check](assets/glyph_%016x.svg) after", hash)
	assert.Equal(t, want, out)
	require.Len(t, diags, 1)
	assert.Equal(t, mdfxerrors.CodeIOFailure, diags[0].Code)
}

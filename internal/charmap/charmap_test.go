package charmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdfx-dev/mdfx/internal/registry"
)

func compileStyle(t *testing.T, id string) *Mapper {
	t.Helper()
	def, ok := registry.MustDefault().Style(id)
	require.True(t, ok, "style %s not in defaults", id)
	m, err := Compile(def)
	require.NoError(t, err)
	return m
}

func TestMathboldMapping(t *testing.T) {
	m := compileStyle(t, "mathbold")

	assert.Equal(t, '𝐓', m.Map('T'))
	assert.Equal(t, '𝐈', m.Map('I'))
	assert.Equal(t, '𝐋', m.Map('L'))
	assert.Equal(t, '𝐄', m.Map('E'))
	assert.Equal(t, '𝐚', m.Map('a'))
	assert.Equal(t, '𝟎', m.Map('0'))
}

func TestUnmappedPassThrough(t *testing.T) {
	m := compileStyle(t, "mathbold")

	for _, r := range []rune{' ', '!', 'é', '日', '·'} {
		assert.Equal(t, r, m.Map(r))
		assert.False(t, m.Maps(r))
	}
	assert.True(t, m.Maps('A'))
}

func TestOverridesWinOverRanges(t *testing.T) {
	// mathitalic 'h' is the Planck constant, not 0x1D44E+7.
	m := compileStyle(t, "mathitalic")
	assert.Equal(t, 'ℎ', m.Map('h'))
	assert.Equal(t, '𝑖', m.Map('i'))
}

func TestOverrideOnlyStyle(t *testing.T) {
	m := compileStyle(t, "smallcaps")
	assert.Equal(t, 'ᴀ', m.Map('a'))
	assert.Equal(t, 'A', m.Map('A')) // uppercase unmapped
}

func TestCompileRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name string
		def  *registry.StyleDef
	}{
		{"multi-char lo", &registry.StyleDef{ID: "bad", Ranges: []registry.CharRange{{Lo: "ab", Hi: "z", Base: "1D400"}}}},
		{"inverted range", &registry.StyleDef{ID: "bad", Ranges: []registry.CharRange{{Lo: "z", Hi: "a", Base: "1D400"}}}},
		{"bad base", &registry.StyleDef{ID: "bad", Ranges: []registry.CharRange{{Lo: "a", Hi: "z", Base: "xyz"}}}},
		{"bad override", &registry.StyleDef{ID: "bad", Overrides: map[string]string{"a": "nothex"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.def)
			assert.Error(t, err)
		})
	}
}

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := UnclosedTag("mathbold", 2).WithDocument("README.md").WithPosition("# {{mathbold}}TITLE")

	msg := err.Error()
	assert.Contains(t, msg, "[unclosed_tag]")
	assert.Contains(t, msg, "README.md:1:3")
	assert.Contains(t, msg, "{{mathbold}}")
}

func TestError_Suggestions(t *testing.T) {
	err := UnknownID(CodeUnknownStyle, "style", "mathbld", 0).
		WithSuggestions([]string{"mathbold", "mathbb"})

	assert.Contains(t, err.Error(), "did you mean: mathbold, mathbb?")
}

func TestError_Is(t *testing.T) {
	err := MismatchedTag("mathbold", "frame", 10)

	assert.True(t, errors.Is(err, &Error{Kind: KindParse, Code: CodeMismatchedTag}))
	assert.False(t, errors.Is(err, &Error{Kind: KindParse, Code: CodeUnclosedTag}))
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := IOFailure("writing asset", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "disk full")
}

func TestWithPosition(t *testing.T) {
	tests := []struct {
		name   string
		source string
		offset int
		line   int
		column int
	}{
		{"start of input", "abc", 0, 1, 1},
		{"same line", "abcdef", 4, 1, 5},
		{"after newline", "ab\ncd", 3, 2, 1},
		{"second line interior", "ab\ncdef", 5, 2, 3},
		{"offset past end clamps", "ab", 99, 1, 3},
		{"multibyte runes count as one column", "é{{x}}", 2, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newError(KindParse, CodeUnclosedTag, "x", tt.offset).WithPosition(tt.source)
			require.Equal(t, tt.line, err.Line)
			require.Equal(t, tt.column, err.Column)
		})
	}
}

func TestUnknownOffsetKeepsNoPosition(t *testing.T) {
	err := ExpansionTooDeep("banner", 16).WithPosition("whatever")

	assert.Equal(t, 0, err.Line)
	assert.NotContains(t, err.Error(), ":0:0")
}

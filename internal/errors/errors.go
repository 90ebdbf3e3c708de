// Package errors defines the structured error type used across the mdfx
// pipeline. Every failure mode is a typed Error carrying a kind, a stable
// code, position context, and optional did-you-mean suggestions; nothing in
// the pipeline panics on well-formed UTF-8 input.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes errors by the pipeline stage that produced them.
type Kind string

const (
	KindScan       Kind = "scan"
	KindParse      Kind = "parse"
	KindResolution Kind = "resolution"
	KindExpansion  Kind = "expansion"
	KindRender     Kind = "render"
	KindAsset      Kind = "asset"
	KindConfig     Kind = "config"
)

// Stable error codes, one per taxonomy entry.
const (
	CodeUnterminatedFence   = "unterminated_fence"
	CodeUnclosedTag         = "unclosed_tag"
	CodeMismatchedTag       = "mismatched_tag"
	CodeNestingTooDeep      = "nesting_too_deep"
	CodeInvalidParameter    = "invalid_parameter"
	CodeUnknownStyle        = "unknown_style"
	CodeUnknownFrame        = "unknown_frame"
	CodeUnknownBadge        = "unknown_badge"
	CodeUnknownComponent    = "unknown_component"
	CodeUnknownGlyph        = "unknown_glyph"
	CodeExpansionTooDeep    = "expansion_too_deep"
	CodeUnknownComponentRef = "unknown_component_reference"
	CodeUnsupportedChar     = "unsupported_badge_char"
	CodeUnsupportedTarget   = "unsupported_target_feature"
	CodeIOFailure           = "io_failure"
	CodeManifestCorrupt     = "manifest_corrupt"
	CodeInvalidConfig       = "invalid_config"
)

// Error is a structured pipeline error with position context.
type Error struct {
	Kind        Kind
	Code        string
	Message     string
	Cause       error
	Offset      int // byte offset into the source document, -1 if unknown
	Line        int // 1-based, 0 if unknown
	Column      int // 1-based, 0 if unknown
	Document    string
	Suggestions []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Document != "" || e.Line > 0 {
		location := e.Document
		if e.Line > 0 {
			location += fmt.Sprintf(":%d:%d", e.Line, e.Column)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)
	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	if len(e.Suggestions) > 0 {
		result += " (did you mean: " + strings.Join(e.Suggestions, ", ") + "?)"
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by kind and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind && e.Code == t.Code
	}
	return false
}

// WithPosition resolves Line/Column for the error's byte offset against the
// source text. Offsets past the end clamp to the final position.
func (e *Error) WithPosition(source string) *Error {
	if e.Offset < 0 {
		return e
	}
	line, col := 1, 1
	limit := e.Offset
	if limit > len(source) {
		limit = len(source)
	}
	for _, r := range source[:limit] {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	e.Line, e.Column = line, col
	return e
}

// WithDocument attaches the document name shown in error locations.
func (e *Error) WithDocument(name string) *Error {
	e.Document = name
	return e
}

// WithSuggestions attaches did-you-mean candidates.
func (e *Error) WithSuggestions(suggestions []string) *Error {
	e.Suggestions = suggestions
	return e
}

func newError(kind Kind, code, message string, offset int) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Offset: offset}
}

// UnclosedTag reports a block tag with no closer, positioned at the opener.
func UnclosedTag(id string, openerOffset int) *Error {
	return newError(KindParse, CodeUnclosedTag,
		fmt.Sprintf("tag {{%s}} is never closed", id), openerOffset)
}

// MismatchedTag reports a closer that does not match the innermost open
// tag. An empty expected id means no tag was open at all.
func MismatchedTag(expected, found string, offset int) *Error {
	if expected == "" {
		return newError(KindParse, CodeMismatchedTag,
			fmt.Sprintf("closer {{/%s}} has no matching open tag", found), offset)
	}
	return newError(KindParse, CodeMismatchedTag,
		fmt.Sprintf("expected closer for {{%s}}, found {{/%s}}", expected, found), offset)
}

// NestingTooDeep reports block nesting past the configured limit.
func NestingTooDeep(limit, offset int) *Error {
	return newError(KindParse, CodeNestingTooDeep,
		fmt.Sprintf("tag nesting exceeds limit of %d", limit), offset)
}

// InvalidParameter reports a parameter value that failed validation.
func InvalidParameter(key, value, reason string, offset int) *Error {
	return newError(KindParse, CodeInvalidParameter,
		fmt.Sprintf("invalid %s=%q: %s", key, value, reason), offset)
}

// UnknownID reports a strict-mode resolution miss for the given namespace.
func UnknownID(code, namespace, id string, offset int) *Error {
	return newError(KindResolution, code,
		fmt.Sprintf("unknown %s %q", namespace, id), offset)
}

// ExpansionTooDeep reports component expansion recursion past the limit.
func ExpansionTooDeep(id string, limit int) *Error {
	return newError(KindExpansion, CodeExpansionTooDeep,
		fmt.Sprintf("expanding component %q exceeds depth limit of %d", id, limit), -1)
}

// UnknownComponentReference reports a component node whose definition
// vanished between parsing and expansion.
func UnknownComponentReference(id string, offset int) *Error {
	return newError(KindExpansion, CodeUnknownComponentRef,
		fmt.Sprintf("component %q has no definition", id), offset)
}

// MissingComponentArg reports a required component parameter with no value.
func MissingComponentArg(componentID, param string, offset int) *Error {
	return newError(KindExpansion, CodeInvalidParameter,
		fmt.Sprintf("component %q requires parameter %q", componentID, param), offset)
}

// UnsupportedBadgeChar reports badge content outside the badge's charset.
func UnsupportedBadgeChar(badgeID, content string, offset int) *Error {
	return newError(KindRender, CodeUnsupportedChar,
		fmt.Sprintf("badge %q cannot render %q", badgeID, content), offset)
}

// UnsupportedTargetFeature reports a primitive the selected backend cannot
// emit, such as an unknown shield kind.
func UnsupportedTargetFeature(feature, target string, offset int) *Error {
	return newError(KindRender, CodeUnsupportedTarget,
		fmt.Sprintf("%s cannot be rendered for target %q", feature, target), offset)
}

// InvalidShieldParams reports shield parameters that failed render-time
// validation.
func InvalidShieldParams(kind, reason string, offset int) *Error {
	return newError(KindRender, CodeInvalidParameter,
		fmt.Sprintf("shields:%s: %s", kind, reason), offset)
}

// UnterminatedFence reports a fenced code block still open at end of input.
// Non-fatal: the scanner emits the trailing text as literal regardless.
func UnterminatedFence(offset int) *Error {
	return newError(KindScan, CodeUnterminatedFence,
		"fenced code block is never closed", offset)
}

// IOFailure wraps an underlying I/O error from the asset layer.
func IOFailure(message string, cause error) *Error {
	e := newError(KindAsset, CodeIOFailure, message, -1)
	e.Cause = cause
	return e
}

// ManifestCorrupt reports an unparsable manifest file. Callers treat this as
// "start empty" with a warning rather than a hard failure.
func ManifestCorrupt(path string, cause error) *Error {
	e := newError(KindAsset, CodeManifestCorrupt,
		fmt.Sprintf("manifest %s is not valid JSON", path), -1)
	e.Cause = cause
	return e
}

// InvalidConfig reports a rejected configuration value.
func InvalidConfig(message string) *Error {
	return newError(KindConfig, CodeInvalidConfig, message, -1)
}

// Package scanner walks a document and splits it into literal text and
// candidate template tags. It is Markdown-code aware: fenced blocks and
// inline code spans suppress tag recognition entirely, so template syntax
// can be quoted in documentation without being compiled.
package scanner

import (
	"strings"

	"github.com/mdfx-dev/mdfx/internal/errors"
	"github.com/mdfx-dev/mdfx/internal/types"
)

// reservedNamespaces are the grammar-level tag prefixes. Anything else
// before the first colon is a bare identifier (currently always a style).
var reservedNamespaces = map[string]bool{
	"frame":   true,
	"badge":   true,
	"ui":      true,
	"shields": true,
	"glyph":   true,
}

// Result is the scanner output for one document.
type Result struct {
	Segments []types.Segment
	// Diagnostics are non-fatal findings, currently only unterminated
	// fences. The text is still emitted as literal.
	Diagnostics []*errors.Error
}

// Scan splits input into literal and tag segments.
//
// Fence rule: a line whose first character run is three or more backticks
// opens a fenced block; the block closes at the next line starting with at
// least as many backticks. Inside a fence every line is literal.
//
// Inline-code rule: within a single line outside a fence, backticks pair up
// left to right and tag recognition is suspended inside each pair. A line's
// trailing unpaired backtick opens no span; backtick state never carries
// across lines.
func Scan(input string) *Result {
	res := &Result{}
	var literal strings.Builder
	literalStart := 0

	flush := func(end int) {
		if literal.Len() > 0 {
			res.Segments = append(res.Segments, types.Segment{Start: literalStart, Text: literal.String()})
			literal.Reset()
		}
		literalStart = end
	}

	inFence := false
	fenceLen := 0
	fenceStart := 0

	offset := 0
	for offset <= len(input) {
		lineEnd := strings.IndexByte(input[offset:], '\n')
		var line string
		var next int
		if lineEnd < 0 {
			line = input[offset:]
			next = len(input) + 1 // terminate loop
		} else {
			line = input[offset : offset+lineEnd+1] // keep the newline
			next = offset + lineEnd + 1
		}

		if ticks := leadingBackticks(line); ticks >= 3 {
			if !inFence {
				inFence = true
				fenceLen = ticks
				fenceStart = offset
			} else if ticks >= fenceLen {
				inFence = false
			}
			literal.WriteString(line)
			offset = next
			continue
		}

		if inFence {
			literal.WriteString(line)
			offset = next
			continue
		}

		scanLine(res, &literal, flush, line, offset)
		offset = next
	}

	flush(len(input))

	if inFence {
		res.Diagnostics = append(res.Diagnostics, errors.UnterminatedFence(fenceStart))
	}
	return res
}

// scanLine handles one line outside any fence: resolves inline-code spans,
// then extracts tag candidates from the uncovered stretches.
func scanLine(res *Result, literal *strings.Builder, flush func(int), line string, base int) {
	spans := inlineCodeSpans(line)

	i := 0
	for i < len(line) {
		if span, ok := spanAt(spans, i); ok {
			literal.WriteString(line[i:span.end])
			i = span.end
			continue
		}

		open := strings.Index(line[i:], "{{")
		if open < 0 {
			literal.WriteString(line[i:])
			break
		}
		open += i

		// Copy everything up to the candidate, minding spans in between.
		if covered := firstSpanBetween(spans, i, open); covered >= 0 {
			literal.WriteString(line[i:covered])
			i = covered
			continue
		}

		tag, bodyEnd := readTag(line, open)
		if tag == nil {
			// Coincidental braces: emit them as literal and rescan right
			// after, so a nested "{{" gets its own chance.
			literal.WriteString(line[i : open+2])
			i = open + 2
			continue
		}

		literal.WriteString(line[i:open])
		flush(base + open)
		tag.Start = base + open
		tag.End = base + bodyEnd
		res.Segments = append(res.Segments, types.Segment{Start: base + open, Tag: tag})
		flush(base + bodyEnd)
		i = bodyEnd
	}
}

type codeSpan struct {
	start int // index of the opening backtick
	end   int // index one past the closing backtick
}

// inlineCodeSpans pairs up backticks on a line, left to right. An unpaired
// trailing backtick opens no span.
func inlineCodeSpans(line string) []codeSpan {
	var spans []codeSpan
	open := -1
	for i := 0; i < len(line); i++ {
		if line[i] != '`' {
			continue
		}
		if open < 0 {
			open = i
		} else {
			spans = append(spans, codeSpan{start: open, end: i + 1})
			open = -1
		}
	}
	return spans
}

func spanAt(spans []codeSpan, i int) (codeSpan, bool) {
	for _, s := range spans {
		if i >= s.start && i < s.end {
			return s, true
		}
	}
	return codeSpan{}, false
}

// firstSpanBetween returns the start of the first span beginning in [from,
// to), or -1. A candidate tag opener inside such a span is not a tag.
func firstSpanBetween(spans []codeSpan, from, to int) int {
	for _, s := range spans {
		if s.start >= from && s.start < to {
			return s.start
		}
	}
	return -1
}

// readTag parses a candidate starting at the "{{" at open. It returns nil
// if no well-formed body terminates on this line: a nested "{{", a line end,
// or an empty body all demote the candidate to literal text.
func readTag(line string, open int) (*types.TagOccurrence, int) {
	rest := line[open+2:]
	end := strings.Index(rest, "}}")
	if end < 0 {
		return nil, 0
	}
	if nested := strings.Index(rest[:end], "{{"); nested >= 0 {
		return nil, 0
	}
	body := rest[:end]
	if body == "" {
		return nil, 0
	}

	occ := &types.TagOccurrence{Raw: body, Form: types.FormBlockOpen}

	switch {
	case strings.HasPrefix(body, "/"):
		occ.Form = types.FormBlockClose
		body = body[1:]
	case strings.HasSuffix(body, "/"):
		occ.Form = types.FormSelfClosing
		body = strings.TrimSuffix(body, "/")
	}
	if body == "" {
		return nil, 0
	}

	tokens := strings.Split(body, ":")
	head := tokens[0]
	params := tokens[1:]

	if reservedNamespaces[strings.ToLower(head)] && len(params) > 0 {
		occ.Namespace = strings.ToLower(head)
		occ.ID = params[0]
		params = params[1:]
	} else if reservedNamespaces[strings.ToLower(head)] && occ.Form == types.FormBlockClose {
		// Generic closers like {{/ui}} carry the namespace alone.
		occ.Namespace = strings.ToLower(head)
	} else {
		occ.ID = head
	}

	for _, tok := range params {
		if k, v, found := strings.Cut(tok, "="); found {
			occ.Params = append(occ.Params, types.Param{Key: k, Value: v})
		} else {
			occ.Params = append(occ.Params, types.Param{Value: tok})
		}
	}

	return occ, open + 2 + end + 2
}

func leadingBackticks(line string) int {
	n := 0
	for n < len(line) && line[n] == '`' {
		n++
	}
	return n
}

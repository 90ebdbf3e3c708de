// Package types defines the core data model shared by every pipeline stage:
// scanner segments, tag occurrences, the primitive AST, and render targets.
package types

// Target identifies an output backend. The same primitive AST renders
// against every target; no target-specific AST variants exist.
type Target string

const (
	TargetGitHub Target = "github"
	TargetGitLab Target = "gitlab"
	TargetNpm    Target = "npm"
	TargetPypi   Target = "pypi"
	TargetLocal  Target = "local"
)

// AllTargets lists every supported target in a stable order.
func AllTargets() []Target {
	return []Target{TargetGitHub, TargetGitLab, TargetNpm, TargetPypi, TargetLocal}
}

// ParseTarget validates a target name from CLI or config input.
func ParseTarget(s string) (Target, bool) {
	switch Target(s) {
	case TargetGitHub, TargetGitLab, TargetNpm, TargetPypi, TargetLocal:
		return Target(s), true
	}
	return "", false
}

// Backend selects how visual primitives are emitted.
type Backend string

const (
	BackendShields Backend = "shields"
	BackendSVG     Backend = "svg"
)

// TagForm classifies a tag occurrence by its delimiters.
type TagForm int

const (
	FormBlockOpen TagForm = iota
	FormBlockClose
	FormSelfClosing
)

// String returns the string representation of the TagForm.
func (f TagForm) String() string {
	switch f {
	case FormBlockOpen:
		return "block-open"
	case FormBlockClose:
		return "block-close"
	case FormSelfClosing:
		return "self-closing"
	default:
		return "unknown"
	}
}

// Param is a single colon-separated tag parameter. Key is empty for
// positional parameters.
type Param struct {
	Key   string
	Value string
}

// TagOccurrence is a transient candidate tag identified by the scanner.
// Offsets are byte offsets into the original document.
type TagOccurrence struct {
	Start     int
	End       int
	Namespace string // empty for bare identifiers
	ID        string
	Params    []Param
	Form      TagForm
	Raw       string // body between the braces, unmodified
}

// Segment is one unit of scanner output: either literal passthrough text
// or a candidate tag. Exactly one of Text/Tag is meaningful.
type Segment struct {
	Start int
	Text  string
	Tag   *TagOccurrence
}

// IsTag reports whether the segment carries a tag occurrence.
func (s Segment) IsTag() bool { return s.Tag != nil }

// SeparatorSpec is a resolved separator: either a named registry entry or a
// single literal rune supplied inline.
type SeparatorSpec struct {
	Name string
	Rune rune
}

// Node is the primitive AST. It is a closed sum: every variant lives in this
// package so the expander and renderers can switch exhaustively.
type Node interface {
	node()
}

// TextNode is literal passthrough content, including preserved code spans
// and fenced blocks.
type TextNode struct {
	Text string
}

// StyleNode applies a per-character Unicode style to its children.
type StyleNode struct {
	ID        string
	Separator *SeparatorSpec
	Spacing   *int
	Children  []Node
	Offset    int
}

// FrameNode wraps rendered children in registry-defined prefix/suffix runs.
type FrameNode struct {
	ID       string
	Children []Node
	Offset   int
}

// BadgeNode renders a single limited-charset text run as enclosed glyphs.
type BadgeNode struct {
	ID       string
	Children []Node
	Offset   int
}

// GlyphNode is a self-closing named symbol.
type GlyphNode struct {
	ID     string
	Offset int
}

// ShieldNode is the self-closing primitive escape hatch for visual elements:
// shields.io images on hosted targets, generated SVG assets locally.
type ShieldNode struct {
	Kind   string
	Params map[string]string
	Offset int
}

// ComponentNode is a higher-level template call. It exists only between
// parsing and expansion; a fully expanded tree contains none.
type ComponentNode struct {
	ID          string
	Args        []string
	Kwargs      map[string]string
	Children    []Node
	SelfClosing bool
	Offset      int
}

func (*TextNode) node()      {}
func (*StyleNode) node()     {}
func (*FrameNode) node()     {}
func (*BadgeNode) node()     {}
func (*GlyphNode) node()     {}
func (*ShieldNode) node()    {}
func (*ComponentNode) node() {}

// HasComponents reports whether any node in the tree is still a component.
// Renderers require this to be false.
func HasComponents(nodes []Node) bool {
	for _, n := range nodes {
		switch v := n.(type) {
		case *ComponentNode:
			return true
		case *StyleNode:
			if HasComponents(v.Children) {
				return true
			}
		case *FrameNode:
			if HasComponents(v.Children) {
				return true
			}
		case *BadgeNode:
			if HasComponents(v.Children) {
				return true
			}
		}
	}
	return false
}

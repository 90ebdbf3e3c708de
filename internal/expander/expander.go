// Package expander rewrites component nodes into compositions of
// primitives. A component's stored template is substituted with the call's
// arguments and the already-expanded children, then re-tokenized and
// re-parsed as a fresh sub-document whose nodes splice in place of the
// component. Templates may reference other components, so expansion is
// depth-bounded.
package expander

import (
	"regexp"
	"strconv"

	"github.com/mdfx-dev/mdfx/internal/errors"
	"github.com/mdfx-dev/mdfx/internal/parser"
	"github.com/mdfx-dev/mdfx/internal/registry"
	"github.com/mdfx-dev/mdfx/internal/types"
)

// DefaultMaxDepth bounds recursive component expansion.
const DefaultMaxDepth = 16

// Expander expands component nodes using one parser's registry and modes.
type Expander struct {
	parser   *parser.Parser
	maxDepth int
}

// New creates an Expander. maxDepth <= 0 selects DefaultMaxDepth.
func New(p *parser.Parser, maxDepth int) *Expander {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Expander{parser: p, maxDepth: maxDepth}
}

// Expand returns a tree with every component node replaced by primitives,
// plus any diagnostics surfaced while re-parsing templates. The returned
// tree satisfies types.HasComponents == false.
func (e *Expander) Expand(nodes []types.Node) ([]types.Node, []*errors.Error, error) {
	var diags []*errors.Error
	out, err := e.expandNodes(nodes, 0, &diags)
	return out, diags, err
}

func (e *Expander) expandNodes(nodes []types.Node, depth int, diags *[]*errors.Error) ([]types.Node, error) {
	var out []types.Node
	for _, n := range nodes {
		expanded, err := e.expandNode(n, depth, diags)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

func (e *Expander) expandNode(n types.Node, depth int, diags *[]*errors.Error) ([]types.Node, error) {
	switch v := n.(type) {
	case *types.StyleNode:
		children, err := e.expandNodes(v.Children, depth, diags)
		if err != nil {
			return nil, err
		}
		v.Children = children
		return []types.Node{v}, nil
	case *types.FrameNode:
		children, err := e.expandNodes(v.Children, depth, diags)
		if err != nil {
			return nil, err
		}
		v.Children = children
		return []types.Node{v}, nil
	case *types.BadgeNode:
		children, err := e.expandNodes(v.Children, depth, diags)
		if err != nil {
			return nil, err
		}
		v.Children = children
		return []types.Node{v}, nil
	case *types.ComponentNode:
		return e.expandComponent(v, depth, diags)
	default:
		return []types.Node{n}, nil
	}
}

func (e *Expander) expandComponent(node *types.ComponentNode, depth int, diags *[]*errors.Error) ([]types.Node, error) {
	if depth >= e.maxDepth {
		return nil, errors.ExpansionTooDeep(node.ID, e.maxDepth)
	}

	def, ok := e.parser.Registry().Component(node.ID)
	if !ok {
		return nil, errors.UnknownComponentReference(node.ID, node.Offset)
	}

	// Children expand first so $content is already fully primitive.
	children, err := e.expandNodes(node.Children, depth, diags)
	if err != nil {
		return nil, err
	}
	content := Serialize(children)

	source, err := e.substitute(def, node, content)
	if err != nil {
		return nil, err
	}

	sub, err := e.parser.Parse(source)
	if err != nil {
		return nil, err
	}
	*diags = append(*diags, sub.Diagnostics...)

	// The template may itself call components.
	return e.expandNodes(sub.Nodes, depth+1, diags)
}

// placeholderPattern matches $content, ${name} and $N references.
var placeholderPattern = regexp.MustCompile(`\$(?:content\b|\{([a-zA-Z0-9_-]+)\}|([0-9]+))`)

func (e *Expander) substitute(def *registry.ComponentDef, node *types.ComponentNode, content string) (string, error) {
	defaults := make(map[string]string, len(def.Params))
	required := make(map[string]bool, len(def.Params))
	for _, p := range def.Params {
		defaults[p.Name] = p.Default
		if p.Required {
			required[p.Name] = true
		}
	}

	var missing *errors.Error
	result := placeholderPattern.ReplaceAllStringFunc(def.Template, func(match string) string {
		groups := placeholderPattern.FindStringSubmatch(match)
		switch {
		case groups[1] != "": // ${name}
			name := groups[1]
			if v, ok := node.Kwargs[name]; ok {
				return v
			}
			if v, ok := defaults[name]; ok && v != "" {
				return v
			}
			if required[name] && missing == nil {
				missing = errors.MissingComponentArg(node.ID, name, node.Offset)
			}
			return ""
		case groups[2] != "": // $N, 1-based
			idx, _ := strconv.Atoi(groups[2])
			if idx >= 1 && idx <= len(node.Args) {
				return node.Args[idx-1]
			}
			name := groups[2]
			if v, ok := defaults[name]; ok && v != "" {
				return v
			}
			if required[name] && missing == nil {
				missing = errors.MissingComponentArg(node.ID, name, node.Offset)
			}
			return ""
		default: // $content
			return content
		}
	})
	if missing != nil {
		return "", missing
	}
	return result, nil
}

package expander

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mdfx-dev/mdfx/internal/types"
)

// Serialize renders a primitive tree back to template source. The expander
// uses it to splice already-expanded children into $content before the
// template re-parse; parameter order is normalized so the output is
// deterministic for identical trees.
func Serialize(nodes []types.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		serializeNode(&b, n)
	}
	return b.String()
}

func serializeNode(b *strings.Builder, n types.Node) {
	switch v := n.(type) {
	case *types.TextNode:
		b.WriteString(v.Text)

	case *types.StyleNode:
		b.WriteString("{{")
		b.WriteString(v.ID)
		if v.Separator != nil {
			if v.Separator.Name != "" {
				fmt.Fprintf(b, ":separator=%s", v.Separator.Name)
			} else {
				fmt.Fprintf(b, ":separator=%c", v.Separator.Rune)
			}
		}
		if v.Spacing != nil {
			fmt.Fprintf(b, ":spacing=%d", *v.Spacing)
		}
		b.WriteString("}}")
		b.WriteString(Serialize(v.Children))
		fmt.Fprintf(b, "{{/%s}}", v.ID)

	case *types.FrameNode:
		fmt.Fprintf(b, "{{frame:%s}}", v.ID)
		b.WriteString(Serialize(v.Children))
		b.WriteString("{{/frame}}")

	case *types.BadgeNode:
		fmt.Fprintf(b, "{{badge:%s}}", v.ID)
		b.WriteString(Serialize(v.Children))
		b.WriteString("{{/badge}}")

	case *types.GlyphNode:
		fmt.Fprintf(b, "{{glyph:%s/}}", v.ID)

	case *types.ShieldNode:
		fmt.Fprintf(b, "{{shields:%s", v.Kind)
		for _, key := range sortedKeys(v.Params) {
			fmt.Fprintf(b, ":%s=%s", key, v.Params[key])
		}
		b.WriteString("/}}")

	case *types.ComponentNode:
		fmt.Fprintf(b, "{{ui:%s", v.ID)
		for _, arg := range v.Args {
			b.WriteString(":")
			b.WriteString(arg)
		}
		for _, key := range sortedKeys(v.Kwargs) {
			fmt.Fprintf(b, ":%s=%s", key, v.Kwargs[key])
		}
		if v.SelfClosing {
			b.WriteString("/}}")
		} else {
			b.WriteString("}}")
			b.WriteString(Serialize(v.Children))
			b.WriteString("{{/ui}}")
		}
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

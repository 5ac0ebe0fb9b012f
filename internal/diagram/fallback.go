package diagram

import (
	"fmt"
	"strings"
)

const maxFallbackComponents = 8

// Fallback renders a minimal component diagram from scan-derived component
// names. The result is always a valid graph with at least one edge.
func Fallback(project string, components []string) string {
	if project == "" {
		project = "Repository"
	}
	var b strings.Builder
	b.WriteString(declaration + "\n")
	fmt.Fprintf(&b, "  root[%s]\n", label(project))
	if len(components) > maxFallbackComponents {
		components = components[:maxFallbackComponents]
	}
	for i, c := range components {
		fmt.Fprintf(&b, "  root --> c%d[%s]\n", i, label(c))
	}
	if len(components) == 0 {
		b.WriteString("  root --> docs[Onboarding artifacts]\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// label strips characters that would break the node markup.
func label(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '(', ')', '{', '}', '|', '"', '\n':
			return -1
		default:
			return r
		}
	}, s)
}

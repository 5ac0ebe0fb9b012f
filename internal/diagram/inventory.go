package diagram

import (
	"regexp"
	"strings"

	"github.com/dominikbraun/graph"
)

var (
	edgeIDs = regexp.MustCompile(`^\s*([A-Za-z0-9_.-]+)\s*(?:\[[^\]]*\]|\(\([^()]*\)\)|\([^()]*\)|\{[^{}]*\})?\s*` + arrowPart + `\s*([A-Za-z0-9_.-]+)`)
	nodeIDs = regexp.MustCompile(`^\s*([A-Za-z0-9_.-]+)\s*(?:\[[^\]]*\]|\(\([^()]*\)\)|\([^()]*\)|\{[^{}]*\})\s*;?\s*$`)
)

// Inventory counts the distinct nodes and edges in sanitized diagram text.
// The pipeline treats zero edges as insufficient structure and falls back to
// the deterministic diagram.
func Inventory(text string) (nodes, edges int) {
	g := graph.New(graph.StringHash, graph.Directed())
	for _, line := range strings.Split(text, "\n") {
		if m := edgeIDs.FindStringSubmatch(line); m != nil {
			_ = g.AddVertex(m[1])
			_ = g.AddVertex(m[2])
			_ = g.AddEdge(m[1], m[2])
			continue
		}
		if m := nodeIDs.FindStringSubmatch(line); m != nil {
			_ = g.AddVertex(m[1])
		}
	}
	nodes, _ = g.Order()
	edges, _ = g.Size()
	return nodes, edges
}

// Package diagram filters free-text diagram output down to a restricted
// mermaid-style line grammar and provides a deterministic fallback built
// from scan data.
package diagram

import (
	"regexp"
	"strings"
)

const declaration = "graph TD"

var (
	fenceLine = regexp.MustCompile("^\\s*(```|~~~)")
	declLine  = regexp.MustCompile(`^\s*(graph|flowchart)\b`)

	subgraphLine = regexp.MustCompile(`^\s*subgraph\b`)
	endLine      = regexp.MustCompile(`^\s*end\s*;?\s*$`)
	styleLine    = regexp.MustCompile(`^\s*(style|classDef|class|linkStyle)\b`)

	nodePart  = `[A-Za-z0-9_.-]+\s*(?:\[[^\]]*\]|\(\([^()]*\)\)|\([^()]*\)|\{[^{}]*\})?`
	arrowPart = `(?:-->\|[^|]*\||--[^>]*-->|-\.[^.]*\.->|-\.->|-->|---|===>|==>)`

	nodeLine = regexp.MustCompile(`^\s*` + nodePart + `\s*;?\s*$`)
	edgeLine = regexp.MustCompile(`^\s*` + nodePart + `\s*` + arrowPart + `\s*` + nodePart)
)

// Sanitize reduces raw model output to valid graph description lines. Fences
// are stripped, everything before the graph declaration is discarded, and
// only declaration, node, edge, subgraph, style, and blank lines survive.
// The result always begins with a graph declaration, prepended if the model
// never emitted one.
func Sanitize(raw string) string {
	lines := strings.Split(raw, "\n")

	kept := make([]string, 0, len(lines))
	seen := false
	hasDecl := hasDeclaration(lines)
	for _, line := range lines {
		if fenceLine.MatchString(line) {
			continue
		}
		if declLine.MatchString(line) {
			seen = true
			kept = append(kept, strings.TrimSpace(line))
			continue
		}
		// with a declaration present, everything before it is preamble prose
		if hasDecl && !seen {
			continue
		}
		if keepLine(line) {
			kept = append(kept, strings.TrimRight(line, " \t"))
		}
	}

	out := strings.TrimSpace(strings.Join(kept, "\n"))
	if out == "" {
		return declaration
	}
	if !declLine.MatchString(out) {
		out = declaration + "\n" + out
	}
	return out
}

func hasDeclaration(lines []string) bool {
	for _, line := range lines {
		if declLine.MatchString(line) {
			return true
		}
	}
	return false
}

func keepLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	switch {
	case edgeLine.MatchString(line),
		subgraphLine.MatchString(line),
		endLine.MatchString(line),
		styleLine.MatchString(line),
		nodeLine.MatchString(line):
		return true
	}
	return false
}

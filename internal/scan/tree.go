package scan

import (
	"sort"
	"strings"
)

type treeNode map[string]treeNode

// Tree renders file paths as an ASCII directory tree, directories
// before files at each level.
//
//	cmd
//	└── app
//	    └── main.go
//	go.mod
func Tree(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	root := treeNode{}
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		cur := root
		for _, part := range strings.Split(p, "/") {
			if part == "" || part == "." {
				continue
			}
			next, ok := cur[part]
			if !ok {
				next = treeNode{}
				cur[part] = next
			}
			cur = next
		}
	}

	var sb strings.Builder
	// top level prints bare names, children get branch glyphs
	for _, k := range sortedKeys(root) {
		sb.WriteString(k)
		sb.WriteByte('\n')
		writeBranches(&sb, root[k], "")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeBranches(sb *strings.Builder, node treeNode, prefix string) {
	keys := sortedKeys(node)
	for i, k := range keys {
		last := i == len(keys)-1
		sb.WriteString(prefix)
		if last {
			sb.WriteString("└── ")
		} else {
			sb.WriteString("├── ")
		}
		sb.WriteString(k)
		sb.WriteByte('\n')

		if len(node[k]) > 0 {
			childPrefix := prefix + "│   "
			if last {
				childPrefix = prefix + "    "
			}
			writeBranches(sb, node[k], childPrefix)
		}
	}
}

// sortedKeys orders directories before files, then alphabetically.
func sortedKeys(node treeNode) []string {
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		di, dj := len(node[keys[i]]) > 0, len(node[keys[j]]) > 0
		if di != dj {
			return di
		}
		return keys[i] < keys[j]
	})
	return keys
}

package sgf

import (
	"sort"
	"strings"
)

// GameTree is one SGF tree: the main line plus its variations.
type GameTree struct {
	Nodes    []Node
	Children []*GameTree
}

// Node is a set of properties such as B[aa] or C[...]. A property may carry
// several values.
type Node struct {
	Properties map[string][]string
}

type SGF struct {
	Root *GameTree
}

// root properties come first in this order; the rest are sorted.
var orderedKeys = []string{"FF", "GM", "SZ", "PB", "PW", "DT", "RE", "RU", "C", "B", "W"}

func (s *SGF) String() string {
	var b strings.Builder
	b.WriteString("(")
	if s.Root != nil {
		writeTree(&b, s.Root)
	}
	b.WriteString(")")
	return b.String()
}

func writeTree(b *strings.Builder, tree *GameTree) {
	for _, node := range tree.Nodes {
		b.WriteString(";")
		writeNode(b, node)
	}
	for _, child := range tree.Children {
		b.WriteString("(")
		writeTree(b, child)
		b.WriteString(")")
	}
}

func writeNode(b *strings.Builder, node Node) {
	used := make(map[string]bool, len(node.Properties))
	for _, key := range orderedKeys {
		if values, ok := node.Properties[key]; ok {
			used[key] = true
			writeProperty(b, key, values)
		}
	}
	rest := make([]string, 0, len(node.Properties))
	for key := range node.Properties {
		if !used[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		writeProperty(b, key, node.Properties[key])
	}
}

func writeProperty(b *strings.Builder, key string, values []string) {
	b.WriteString(key)
	for _, v := range values {
		b.WriteString("[")
		b.WriteString(escape(v))
		b.WriteString("]")
	}
}

func escape(v string) string {
	return strings.NewReplacer(`\`, `\\`, `]`, `\]`).Replace(v)
}

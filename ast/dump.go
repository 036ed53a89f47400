package ast

import (
	"fmt"
	"strings"

	"github.com/Anglebase/zpeg/corpus"
)

// Walk visits n and every descendant in pre-order, depth first, calling
// visit for each. If visit returns false the node's children are skipped
// but its siblings are still visited.
func Walk(n Node, visit func(Node, int) bool) {
	walk(n, 0, visit)
}

func walk(n Node, depth int, visit func(Node, int) bool) {
	if !n.IsValid() {
		return
	}
	if !visit(n, depth) {
		return
	}
	for i := 0; i < n.NumChildren(); i++ {
		walk(n.Child(i), depth+1, visit)
	}
}

// Dump renders n as an indented tree, one line per node, in the style used
// by package checker and package emit's tests and by diagnostics that need
// to show the grammar's shape. Leaf nodes show their source text quoted;
// Value nodes show only their kind and child count.
func Dump(n Node, src *corpus.Source) string {
	var b strings.Builder
	Walk(n, func(n Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		if n.IsLeaf() {
			fmt.Fprintf(&b, "%s %q\n", n.Kind(), n.Text(src))
		} else {
			fmt.Fprintf(&b, "%s (%d)\n", n.Kind(), n.NumChildren())
		}
		return true
	})
	return b.String()
}

// Find returns the first descendant of n (including n itself) whose kind
// matches, or an invalid Node if none does. Search is pre-order depth
// first, matching Walk.
func Find(n Node, kind Kind) (Node, bool) {
	var found Node
	ok := false
	Walk(n, func(n Node, _ int) bool {
		if ok {
			return false
		}
		if n.Kind() == kind {
			found = n
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

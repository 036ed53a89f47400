// Package checker statically analyzes a parsed grammar AST: it computes
// per-rule nullability and rejects grammars containing undefined rule
// references, left recursion, or greedy repetition over a nullable operand.
// Grounded on the teacher's own langdef package, which threads a similar
// accumulate-and-continue diagnostic pipeline over a parsed tree
// (assignTokenGroups -> findUndefinedNodes -> ... -> buildGrammar) before
// the teacher hands its own tree to code generation.
package checker

import (
	"sort"
	"strings"

	"github.com/Anglebase/zpeg/ast"
	"github.com/Anglebase/zpeg/combinator"
	"github.com/Anglebase/zpeg/corpus"
	"github.com/Anglebase/zpeg/diag"
	"github.com/Anglebase/zpeg/rules"
)

var propertyNames = func() map[string]bool {
	m := make(map[string]bool, len(combinator.PropertyNames()))
	for _, n := range combinator.PropertyNames() {
		m[n] = true
	}
	return m
}()

// NullSet is the set of rule names whose expression may match the empty
// string, as determined by Check. The emitter sorts it for deterministic
// output; NullSet itself makes no ordering guarantee.
type NullSet map[string]bool

// IsNullable reports whether name is in the set.
func (s NullSet) IsNullable(name string) bool {
	return s[name]
}

// Names returns every nullable rule name, sorted lexicographically.
func (s NullSet) Names() []string {
	names := make([]string, 0, len(s))
	for n, nullable := range s {
		if nullable {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

type checker struct {
	table   *rules.Table
	src     *corpus.Source
	diags   diag.Bag
	onStack map[string]int
	stack   []string
	nulls   NullSet
	failed  map[string]bool
}

// Check runs the nullability/undefined-reference/left-recursion/
// greedy-empty analysis over grammar, starting the DFS from the header's
// declared start rule, per spec.md section 4.3's algorithm. It returns the
// computed nullable-rule set plus every diagnostic accumulated along the
// way; a non-empty diagnostic list means the grammar must not be emitted.
func Check(grammar ast.Node, table *rules.Table, src *corpus.Source) (NullSet, []diag.Diagnostic) {
	c := &checker{
		table:   table,
		src:     src,
		onStack: map[string]int{},
		nulls:   NullSet{},
		failed:  map[string]bool{},
	}

	header := grammar.Child(0)
	startName := string(header.Child(0).Text(src))
	c.resolveIdent(startName, header.Child(0), true)

	return c.nulls, c.diags.Items()
}

// resolveIdent computes the nullability of the rule bound to name,
// detecting left recursion via the accessing stack and caching completed
// results. span anchors any diagnostic raised for this particular
// reference. ok is false when this DFS path hit an unrecoverable error
// (undefined reference, or a left-recursion cycle reported with the flag
// set) and must not be trusted by its caller.
func (c *checker) resolveIdent(name string, span ast.Node, checkLeftRecursion bool) (nullable, ok bool) {
	if idx, onPath := c.onStack[name]; onPath {
		if checkLeftRecursion {
			cycle := append(append([]string{}, c.stack[idx:]...), name)
			c.diags.AddSpan(diag.LeftRecursion, span.Start(), span.End(),
				"left recursion: "+strings.Join(cycle, " -> "))
			return false, false
		}
		return false, true
	}

	if nb, done := c.nulls[name]; done {
		return nb, !c.failed[name]
	}
	if c.failed[name] {
		return false, true
	}

	expr, defined := c.table.Lookup([]byte(name))
	if !defined {
		if propertyNames[name] {
			return false, true
		}
		c.diags.AddSpan(diag.UndefinedIdent, span.Start(), span.End(), "undefined rule: "+name)
		c.failed[name] = true
		return false, false
	}

	c.onStack[name] = len(c.stack)
	c.stack = append(c.stack, name)

	nb, rok := c.nullableExpr(expr, checkLeftRecursion)

	c.stack = c.stack[:len(c.stack)-1]
	delete(c.onStack, name)

	c.nulls[name] = nb
	if !rok {
		c.failed[name] = true
	}
	return nb, rok
}

func (c *checker) nullableExpr(n ast.Node, checkLeftRecursion bool) (bool, bool) {
	anyNullable, ok := false, true
	for i := 0; i < n.NumChildren(); i++ {
		nb, k := c.nullableSequence(n.Child(i), checkLeftRecursion)
		if !k {
			ok = false
			continue
		}
		if nb {
			anyNullable = true
		}
	}
	return anyNullable, ok
}

func (c *checker) nullableSequence(n ast.Node, checkLeftRecursion bool) (bool, bool) {
	allNullable, ok := true, true
	flag := checkLeftRecursion
	for i := 0; i < n.NumChildren(); i++ {
		nb, k := c.nullablePrefix(n.Child(i), flag)
		if !k {
			ok = false
			continue
		}
		if !nb {
			allNullable = false
			flag = false
		}
	}
	return allNullable, ok
}

func (c *checker) nullablePrefix(n ast.Node, checkLeftRecursion bool) (bool, bool) {
	if n.NumChildren() == 2 {
		_, ok := c.nullableSuffix(n.Child(1), false)
		return true, ok
	}
	return c.nullableSuffix(n.Child(0), checkLeftRecursion)
}

func (c *checker) nullableSuffix(n ast.Node, checkLeftRecursion bool) (bool, bool) {
	prim := n.Child(0)
	if n.NumChildren() == 1 {
		return c.nullablePrimary(prim, checkLeftRecursion)
	}

	marker := n.Child(1)
	switch marker.Kind() {
	case ast.Plus:
		nb, ok := c.nullablePrimary(prim, checkLeftRecursion)
		if nb {
			c.diags.AddSpan(diag.Unnullable, marker.Start(), marker.End(),
				"Greedy matches are not allowed to be empty")
			ok = false
		}
		return nb, ok
	default: // Question, Star: always nullable themselves
		nb, ok := c.nullablePrimary(prim, checkLeftRecursion)
		if marker.Kind() == ast.Star && nb {
			c.diags.AddSpan(diag.Unnullable, marker.Start(), marker.End(),
				"Greedy matches are not allowed to be empty")
			ok = false
		}
		return true, ok
	}
}

func (c *checker) nullablePrimary(n ast.Node, checkLeftRecursion bool) (bool, bool) {
	child := n.Child(0)
	switch child.Kind() {
	case ast.Identifier:
		return c.resolveIdent(string(child.Text(c.src)), child, checkLeftRecursion)
	case ast.Expression:
		return c.nullableExpr(child, checkLeftRecursion)
	default: // Literal, Class, Dot
		return false, true
	}
}

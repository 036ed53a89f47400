// Package rules derives the name -> defining-expression table from a parsed
// grammar AST, grounded on spec.md section 3's "Rule table (derived)" and
// backed by internal/bmap.BMap for the []byte-keyed lookups both package
// checker and package emit perform once per identifier reference.
package rules

import (
	"github.com/Anglebase/zpeg/ast"
	"github.com/Anglebase/zpeg/corpus"
	"github.com/Anglebase/zpeg/internal/bmap"
)

// Table maps a rule name to the expression node of whichever definition
// last bound that name. Duplicate definitions are not an error at this
// layer; last-definition-wins, matching spec.md's decided resolution for
// the rule table's construction (see DESIGN.md).
type Table struct {
	m   *bmap.BMap[ast.Node]
	src *corpus.Source
}

// Build walks grammar's header and definitions, inserting the header's
// declared start rule under its own name (bound to its startExpr's
// expression child) and then every definition's identifier -> expression
// pair, later definitions overwriting earlier ones with the same name.
func Build(grammar ast.Node, src *corpus.Source) *Table {
	t := &Table{m: bmap.New[ast.Node](grammar.NumChildren()), src: src}

	header := grammar.Child(0)
	startIdent := header.Child(0)
	startExpr := header.Child(1)
	t.m.Set(startIdent.Text(src), startExpr.Child(0))

	for i := 1; i < grammar.NumChildren(); i++ {
		def := grammar.Child(i)
		ident, expr := definitionParts(def)
		t.m.Set(ident.Text(src), expr)
	}

	return t
}

// definitionParts returns a definition node's identifier and expression
// children, skipping the optional leading attribute child.
func definitionParts(def ast.Node) (ast.Node, ast.Node) {
	n := def.NumChildren()
	if n == 3 {
		return def.Child(1), def.Child(2)
	}
	return def.Child(0), def.Child(1)
}

// Lookup returns the expression bound to name and whether it was found.
func (t *Table) Lookup(name []byte) (ast.Node, bool) {
	return t.m.Get(name)
}

// Has reports whether name is defined.
func (t *Table) Has(name []byte) bool {
	_, ok := t.m.Get(name)
	return ok
}

// Len returns the number of distinct rule names in the table.
func (t *Table) Len() int {
	return t.m.Len()
}

// Names returns every rule name in the table, in unspecified order.
func (t *Table) Names() [][]byte {
	return t.m.Keys()
}

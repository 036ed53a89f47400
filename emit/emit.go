// Package emit walks a checked grammar AST and generates a standalone Go
// source file implementing a recursive-descent parser for the described
// language, per spec.md section 4.4: a fixed combinator-runtime prologue,
// a nullability table, a sum-typed AST node declaration, and one parser
// function per rule. The generated file imports nothing from this module
// -- it is dropped into whatever project needs the generated parser.
package emit

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/Anglebase/zpeg/ast"
	"github.com/Anglebase/zpeg/checker"
	"github.com/Anglebase/zpeg/combinator"
	"github.com/Anglebase/zpeg/corpus"
	"github.com/Anglebase/zpeg/rules"
)

//go:embed prologue/runtime.go.tmpl
var prologue string

// attribute classifies a rule's generated shape.
type attribute int

const (
	attrValue attribute = iota
	attrLeaf
	attrVoid
)

type definition struct {
	name string
	attr attribute
	expr ast.Node
}

// Options controls the generated file's package clause and character
// dialect; the zero value is package main with the ASCII dialect.
type Options struct {
	Package string
	Unicode bool
}

// Emit renders grammar as a complete Go source file. table and nulls must
// come from rules.Build and a prior, error-free checker.Check over the same
// grammar -- Emit does not re-run validation and assumes the grammar is
// well-formed.
func Emit(grammar ast.Node, table *rules.Table, nulls checker.NullSet, src *corpus.Source, opts Options) (string, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = "main"
	}
	dialect := combinator.ASCIIDialect()
	if opts.Unicode {
		dialect = combinator.UnicodeDialect()
	}
	tr := &translator{src: src, table: table, dialect: dialect}

	defs := collectDefinitions(grammar, src)

	var b strings.Builder
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	b.WriteString("import (\n\t\"bytes\"\n\t\"unicode/utf8\"\n)\n\n")
	b.WriteString(prologue)
	b.WriteString("\n")

	writeNodeKinds(&b, defs)
	writeNullabilityTable(&b, nulls)
	for _, def := range defs {
		writeRuleFunc(&b, def, tr)
	}
	writeParseEntry(&b, grammar, tr)

	return b.String(), nil
}

// collectDefinitions walks grammar's definition children (skipping the
// header) into an ordered slice, applying last-definition-wins for
// duplicate names the same way rules.Table does.
func collectDefinitions(grammar ast.Node, src *corpus.Source) []definition {
	order := make([]string, 0, grammar.NumChildren()-1)
	byName := map[string]definition{}

	for i := 1; i < grammar.NumChildren(); i++ {
		def := grammar.Child(i)
		var attrNode, ident, expr ast.Node
		if def.NumChildren() == 3 {
			attrNode, ident, expr = def.Child(0), def.Child(1), def.Child(2)
		} else {
			ident, expr = def.Child(0), def.Child(1)
		}

		name := string(ident.Text(src))
		attr := attrValue
		if attrNode.IsValid() {
			switch attrNode.Child(0).Kind() {
			case ast.Void:
				attr = attrVoid
			case ast.LeafAttr:
				attr = attrLeaf
			}
		}

		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}
		byName[name] = definition{name: name, attr: attr, expr: expr}
	}

	defs := make([]definition, len(order))
	for i, name := range order {
		defs[i] = byName[name]
	}
	return defs
}

func writeNodeKinds(b *strings.Builder, defs []definition) {
	b.WriteString("const (\n\tkindInvalid pegNodeKind = iota\n")
	for _, def := range defs {
		if def.attr == attrVoid {
			continue
		}
		fmt.Fprintf(b, "\t%s\n", nodeKindConstName(def.name))
	}
	b.WriteString(")\n\n")
}

func writeNullabilityTable(b *strings.Builder, nulls checker.NullSet) {
	names := nulls.Names()
	b.WriteString("// pegNullableRules lists, in sorted order, every rule whose expression\n")
	b.WriteString("// may match the empty string.\n")
	b.WriteString("var pegNullableRules = []string{")
	for i, n := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Quote(mangle(n)))
	}
	b.WriteString("}\n\n")
}

func writeRuleFunc(b *strings.Builder, def definition, tr *translator) {
	fn := ruleFuncName(def.name)
	body := tr.expr(def.expr)

	fmt.Fprintf(b, "func %s(st *pegState) (*pegNode, bool) {\n", fn)
	fmt.Fprintf(b, "\tpop := st.enterRule(%s)\n", strconv.Quote(def.name))
	b.WriteString("\tdefer pop()\n")
	b.WriteString("\tmark := st.cur.mark()\n")
	fmt.Fprintf(b, "\tr, ok := (%s)(st)\n", body)
	b.WriteString("\tif !ok {\n\t\tst.cur.reset(mark)\n\t\treturn nil, false\n\t}\n")

	switch def.attr {
	case attrVoid:
		b.WriteString("\t_ = r\n\treturn nil, true\n")
	case attrLeaf:
		b.WriteString("\t_ = r\n")
		fmt.Fprintf(b, "\treturn &pegNode{kind: %s, start: mark, end: st.cur.mark()}, true\n", nodeKindConstName(def.name))
	default:
		fmt.Fprintf(b, "\treturn &pegNode{kind: %s, start: mark, end: st.cur.mark(), children: r.appendTo(nil)}, true\n", nodeKindConstName(def.name))
	}
	b.WriteString("}\n\n")
}

func writeParseEntry(b *strings.Builder, grammar ast.Node, tr *translator) {
	header := grammar.Child(0)
	startExpr := header.Child(1).Child(0)
	body := tr.expr(startExpr)

	b.WriteString("// Parse parses src from the beginning and returns the root node of the\n")
	b.WriteString("// described language, or an error reporting the furthest position reached\n")
	b.WriteString("// on failure.\n")
	b.WriteString("func Parse(src []byte) (*pegNode, error) {\n")
	b.WriteString("\tst := newPegState(src)\n")
	b.WriteString("\tmark := st.cur.mark()\n")
	fmt.Fprintf(b, "\tr, ok := (%s)(st)\n", body)
	b.WriteString("\tif !ok {\n\t\treturn nil, pegBuildError(st)\n\t}\n")
	b.WriteString("\tnodes := r.appendTo(nil)\n")
	b.WriteString("\tif len(nodes) == 1 {\n\t\treturn nodes[0], nil\n\t}\n")
	b.WriteString("\treturn &pegNode{start: mark, end: st.cur.mark(), children: nodes}, nil\n")
	b.WriteString("}\n")
}

// Package ast defines the sum-typed grammar AST produced by package
// bootstrap and consumed, without mutation, by packages checker and emit.
//
// Node is a tagged variant, not a class hierarchy (see design note in
// SPEC_FULL.md section 9): a Leaf kind carries only a span, a Value kind
// additionally carries an ordered list of children. Every Node is a small
// value handle into an Arena; the Arena owns all storage for one parse and
// is released as a whole when the parse's own owner drops it.
package ast

import "github.com/Anglebase/zpeg/corpus"

// Kind tags the ≈30 grammar-AST node shapes named in the tree-shape table.
type Kind uint8

const (
	Invalid Kind = iota

	// Composite (Value) kinds: carry an ordered list of children.
	Grammar
	Header
	Definition
	Attribute
	Expression
	Sequence
	Prefix
	Suffix
	Primary
	Literal
	Class
	Range
	StartExpr
	Identifier
	Char

	// Leaf kinds: carry only a span.
	Ident
	CharUnescaped
	CharSpecial
	CharOctalFull
	CharOctalPart
	CharUnicode
	Void
	LeafAttr
	And
	Not
	Question
	Star
	Plus
	Dot
)

var kindNames = [...]string{
	Invalid:       "invalid",
	Grammar:       "grammar",
	Header:        "header",
	Definition:    "definition",
	Attribute:     "attribute",
	Expression:    "expression",
	Sequence:      "sequence",
	Prefix:        "prefix",
	Suffix:        "suffix",
	Primary:       "primary",
	Literal:       "literal",
	Class:         "class",
	Range:         "range",
	StartExpr:     "startExpr",
	Identifier:    "identifier",
	Char:          "char",
	Ident:         "ident",
	CharUnescaped: "charUnescaped",
	CharSpecial:   "charSpecial",
	CharOctalFull: "charOctalFull",
	CharOctalPart: "charOctalPart",
	CharUnicode:   "charUnicode",
	Void:          "void",
	LeafAttr:      "leaf",
	And:           "and",
	Not:           "not",
	Question:      "question",
	Star:          "star",
	Plus:          "plus",
	Dot:           "dot",
}

// String returns the grammar-vocabulary name of the kind, e.g. "sequence".
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "invalid"
}

// IsLeaf reports whether kind is one of the Leaf variants (carries no
// children). Char is a Value kind even though every child it can have is
// itself a Leaf: it wraps exactly one of the CharXxx subkinds (see the
// DESIGN.md note on the char/Char naming overlap).
func (k Kind) IsLeaf() bool {
	return k >= Ident
}

// Node is a lightweight handle into an Arena. The zero Node is invalid;
// always construct nodes via Arena.Leaf / Arena.Value.
type Node struct {
	arena *Arena
	id    int32
}

// IsValid reports whether n refers to a real node.
func (n Node) IsValid() bool {
	return n.arena != nil
}

func (n Node) rec() *nodeRec {
	return &n.arena.recs[n.id]
}

// Kind returns the node's variant tag.
func (n Node) Kind() Kind {
	return n.rec().kind
}

// Start returns the inclusive byte offset where the node begins.
func (n Node) Start() int {
	return n.rec().start
}

// End returns the exclusive byte offset where the node ends.
func (n Node) End() int {
	return n.rec().end
}

// Text returns the sub-slice of src spanned by the node. No bytes are
// copied.
func (n Node) Text(src *corpus.Source) []byte {
	return src.Slice(n.Start(), n.End())
}

// IsLeaf reports whether n is a Leaf-shaped node (equivalent to
// n.Kind().IsLeaf(), provided for symmetry with Children).
func (n Node) IsLeaf() bool {
	return n.Kind().IsLeaf()
}

// NumChildren returns the number of children, 0 for Leaf nodes.
func (n Node) NumChildren() int {
	r := n.rec()
	return int(r.childHi - r.childLo)
}

// Child returns the i-th child. Panics if i is out of range.
func (n Node) Child(i int) Node {
	r := n.rec()
	id := n.arena.children[int(r.childLo)+i]
	return Node{n.arena, id}
}

// Children materializes the node's children as a slice. Returns nil for
// Leaf nodes or nodes with no children.
func (n Node) Children() []Node {
	r := n.rec()
	count := int(r.childHi - r.childLo)
	if count == 0 {
		return nil
	}
	result := make([]Node, count)
	for i := 0; i < count; i++ {
		result[i] = Node{n.arena, n.arena.children[int(r.childLo)+i]}
	}
	return result
}

type nodeRec struct {
	kind             Kind
	start, end       int
	childLo, childHi int32
}

// Arena bulk-allocates node storage for exactly one parse. It is owned by
// the bootstrap parser that populates it; checkers and emitters borrow
// Node handles into it non-destructively and never mutate or free
// individual nodes -- the whole Arena is released at once when its owner
// goes out of scope.
type Arena struct {
	recs     []nodeRec
	children []int32
}

// NewArena creates an empty Arena. sizeHint, if positive, pre-sizes the
// backing storage to reduce reallocation for grammars of roughly that many
// bytes.
func NewArena(sizeHint int) *Arena {
	a := &Arena{}
	if sizeHint > 0 {
		a.recs = make([]nodeRec, 0, sizeHint/4+16)
		a.children = make([]int32, 0, sizeHint/4+16)
	}
	return a
}

// Leaf allocates a Leaf-shaped node with the given span.
func (a *Arena) Leaf(kind Kind, start, end int) Node {
	id := int32(len(a.recs))
	a.recs = append(a.recs, nodeRec{kind: kind, start: start, end: end})
	return Node{a, id}
}

// Value allocates a Value-shaped (composite) node with the given span and
// ordered children. children are copied into the arena's flat child pool;
// the caller's slice is not retained.
func (a *Arena) Value(kind Kind, start, end int, children ...Node) Node {
	lo := int32(len(a.children))
	for _, c := range children {
		a.children = append(a.children, c.id)
	}
	hi := int32(len(a.children))
	id := int32(len(a.recs))
	a.recs = append(a.recs, nodeRec{kind, start, end, lo, hi})
	return Node{a, id}
}

// Len returns the number of nodes allocated so far, mostly useful for
// tests and diagnostics about arena growth.
func (a *Arena) Len() int {
	return len(a.recs)
}

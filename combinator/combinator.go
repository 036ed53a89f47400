// Package combinator implements the primitive matchers and combinators
// spec.md §4.1 specifies: the runtime the bootstrap parser is built from.
// Emitted parsers do not import it; they carry their own copy of the same
// combinators (package emit's prologue).
package combinator

import (
	"bytes"

	"github.com/Anglebase/zpeg/ast"
	"github.com/Anglebase/zpeg/corpus"
)

// ResultKind tags the shape of a Result: no AST contribution, one node, or
// several -- the MatcherResult sum type spec.md §9 "Combinator variadism"
// calls for.
type ResultKind uint8

const (
	Void ResultKind = iota
	One
	Many
)

// Result is the value combinators pass up the call chain. Only rule calls
// (a rule function invoked through Call) ever
// produce One or Many; every primitive matcher in this package always
// succeeds with Void, since deciding whether recognized input becomes an
// AST node is the calling rule function's job, not the primitive's.
type Result struct {
	Kind  ResultKind
	Node  ast.Node
	Nodes []ast.Node
}

// AppendTo normalizes r into dst, the way every combinator concatenates
// its children's contributions into one flat, ordered list.
func (r Result) AppendTo(dst []ast.Node) []ast.Node {
	switch r.Kind {
	case One:
		return append(dst, r.Node)
	case Many:
		return append(dst, r.Nodes...)
	default:
		return dst
	}
}

func normalize(nodes []ast.Node) Result {
	switch len(nodes) {
	case 0:
		return Result{Kind: Void}
	case 1:
		return Result{Kind: One, Node: nodes[0]}
	default:
		return Result{Kind: Many, Nodes: nodes}
	}
}

// OneResult wraps a single node as a Result.
func OneResult(n ast.Node) Result { return Result{Kind: One, Node: n} }

// ManyResult wraps a slice of nodes as a Result.
func ManyResult(ns []ast.Node) Result { return normalize(ns) }

// VoidResult is the empty contribution.
func VoidResult() Result { return Result{Kind: Void} }

// State bundles the mutable cursor, the arena new nodes are allocated
// from, and the rule-name/error stack, for the lifetime of one parse.
type State struct {
	Cur   *corpus.Cursor
	Arena *ast.Arena
	Stack *Stack
}

// NewState creates a State ready to parse src from the start.
func NewState(src *corpus.Source, arena *ast.Arena) *State {
	return &State{
		Cur:   corpus.NewCursor(src),
		Arena: arena,
		Stack: NewStack(),
	}
}

// Fail records a backtrackable failure at pos.
func (st *State) Fail(kind FailureKind, pos int) {
	st.Stack.Record(kind, pos)
}

// EnterRule pushes name onto the rule stack and returns a function that
// pops it; every bootstrap rule function calls this first and defers the
// returned function (generated parsers do the same through their own
// pegState.enterRule).
func (st *State) EnterRule(name string) func() {
	st.Stack.Push(name)
	return func() { st.Stack.Pop() }
}

// Matcher recognizes some portion of input starting at the cursor. On
// success it advances the cursor and returns (Result, true). On failure it
// restores the cursor to its position at entry and returns (Result{}, false)
// -- the backtracking discipline is total, per spec.md §4.1.
type Matcher func(st *State) (Result, bool)

// Literal succeeds iff the input at the cursor has prefix b, and advances
// by len(b).
func Literal(b []byte) Matcher {
	return func(st *State) (Result, bool) {
		mark := st.Cur.Mark()
		rem := st.Cur.Remaining()
		if len(rem) < len(b) {
			st.Fail(UnexpectedEOF, mark)
			return Result{}, false
		}
		if !bytes.Equal(rem[:len(b)], b) {
			st.Fail(UnexpectedChar, mark)
			return Result{}, false
		}
		st.Cur.Pos += len(b)
		return VoidResult(), true
	}
}

// CharClass succeeds iff the codepoint at the cursor is a member of set,
// and advances by its UTF-8 length.
func CharClass(set *RuneSet) Matcher {
	return func(st *State) (Result, bool) {
		mark := st.Cur.Mark()
		r, size := st.Cur.DecodeRune()
		if size == 0 {
			st.Fail(UnexpectedEOF, mark)
			return Result{}, false
		}
		if !set.Contains(r) {
			st.Fail(UnexpectedChar, mark)
			return Result{}, false
		}
		st.Cur.Pos += size
		return VoidResult(), true
	}
}

// Any (".") succeeds iff the cursor is not at end of input, and advances
// by one codepoint.
func Any(st *State) (Result, bool) {
	mark := st.Cur.Mark()
	_, size := st.Cur.DecodeRune()
	if size == 0 {
		st.Fail(UnexpectedEOF, mark)
		return Result{}, false
	}
	st.Cur.Pos += size
	return VoidResult(), true
}

// Sequence applies each matcher in order, failing (and restoring the
// cursor to its entry position) if any of them fails; on success it
// returns the concatenation of their node contributions.
func Sequence(ms ...Matcher) Matcher {
	return func(st *State) (Result, bool) {
		mark := st.Cur.Mark()
		var nodes []ast.Node
		for _, m := range ms {
			r, ok := m(st)
			if !ok {
				st.Cur.Reset(mark)
				return Result{}, false
			}
			nodes = r.AppendTo(nodes)
		}
		return normalize(nodes), true
	}
}

// Choice tries each matcher in order, restoring the cursor before each
// attempt, and returns the first success. Fails with NoMatches only if
// every alternative fails.
func Choice(ms ...Matcher) Matcher {
	return func(st *State) (Result, bool) {
		mark := st.Cur.Mark()
		for _, m := range ms {
			st.Cur.Reset(mark)
			r, ok := m(st)
			if ok {
				return r, true
			}
		}
		st.Cur.Reset(mark)
		st.Fail(NoMatches, mark)
		return Result{}, false
	}
}

// Optional ("?") returns m's contribution on success, or Void on failure;
// it never itself fails.
func Optional(m Matcher) Matcher {
	return func(st *State) (Result, bool) {
		mark := st.Cur.Mark()
		r, ok := m(st)
		if !ok {
			st.Cur.Reset(mark)
			return VoidResult(), true
		}
		return r, true
	}
}

// Repeat ("*") applies m until it fails, concatenating contributions; it
// never itself fails.
func Repeat(m Matcher) Matcher {
	return func(st *State) (Result, bool) {
		var nodes []ast.Node
		for {
			mark := st.Cur.Mark()
			r, ok := m(st)
			if !ok {
				st.Cur.Reset(mark)
				break
			}
			nodes = r.AppendTo(nodes)
		}
		return normalize(nodes), true
	}
}

// RepeatPlus ("+") requires at least one success of m, then behaves as
// Repeat.
func RepeatPlus(m Matcher) Matcher {
	return func(st *State) (Result, bool) {
		mark := st.Cur.Mark()
		r, ok := m(st)
		if !ok {
			st.Cur.Reset(mark)
			return Result{}, false
		}

		nodes := r.AppendTo(nil)
		rest, _ := Repeat(m)(st)
		nodes = rest.AppendTo(nodes)
		return normalize(nodes), true
	}
}

// And ("&") succeeds, contributing nothing and leaving the cursor
// unchanged, iff m would succeed.
func And(m Matcher) Matcher {
	return func(st *State) (Result, bool) {
		mark := st.Cur.Mark()
		_, ok := m(st)
		st.Cur.Reset(mark)
		if !ok {
			return Result{}, false
		}
		return VoidResult(), true
	}
}

// Not ("!") succeeds, contributing nothing and leaving the cursor
// unchanged, iff m would fail.
func Not(m Matcher) Matcher {
	return func(st *State) (Result, bool) {
		mark := st.Cur.Mark()
		_, ok := m(st)
		st.Cur.Reset(mark)
		if ok {
			st.Fail(NoMatches, mark)
			return Result{}, false
		}
		return VoidResult(), true
	}
}

// Call invokes a named rule function (an Identifier reference in the
// grammar) that takes a *State. It
// exists only to give Choice/Sequence a uniform Matcher signature for rule
// calls that already push/pop their own stack frame; most rule functions
// can be passed directly wherever a Matcher is expected.
func Call(fn func(st *State) (ast.Node, bool)) Matcher {
	return func(st *State) (Result, bool) {
		n, ok := fn(st)
		if !ok {
			return Result{}, false
		}
		if !n.IsValid() {
			return VoidResult(), true
		}
		return OneResult(n), true
	}
}

package bootstrap

import (
	"testing"

	"github.com/Anglebase/zpeg/ast"
	"github.com/Anglebase/zpeg/corpus"
)

func mustParse(t *testing.T, text string) (ast.Node, *corpus.Source) {
	t.Helper()
	src := corpus.New("t.peg", []byte(text))
	root, _, _, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return root, src
}

func TestParseTrivialIdentity(t *testing.T) {
	root, _ := mustParse(t, `PEG G (A) A <- "x"; END ;`)
	if root.Kind() != ast.Grammar {
		t.Fatalf("expected grammar root, got %v", root.Kind())
	}
	if root.NumChildren() != 2 {
		t.Fatalf("expected header + 1 definition, got %d children", root.NumChildren())
	}

	header := root.Child(0)
	if header.Kind() != ast.Header {
		t.Fatalf("expected header, got %v", header.Kind())
	}

	def := root.Child(1)
	if def.Kind() != ast.Definition {
		t.Fatalf("expected definition, got %v", def.Kind())
	}
	if def.NumChildren() != 2 {
		t.Fatalf("expected ident+expression (no attribute), got %d", def.NumChildren())
	}
}

func TestParseLeftRecursionShapeUnchanged(t *testing.T) {
	root, _ := mustParse(t, `PEG G (A) A <- A "x" / "y"; END ;`)
	def := root.Child(1)
	expr := def.Child(1)
	if expr.Kind() != ast.Expression {
		t.Fatalf("expected expression child, got %v", expr.Kind())
	}
	if expr.NumChildren() != 2 {
		t.Fatalf("expected 2 alternatives, got %d", expr.NumChildren())
	}
}

func TestParseAttributeVariants(t *testing.T) {
	root, _ := mustParse(t, `PEG G (A) void: A <- "x"; leaf: B <- "y"; END ;`)
	a := root.Child(1)
	if a.NumChildren() != 3 {
		t.Fatalf("expected attribute+ident+expression, got %d", a.NumChildren())
	}
	if a.Child(0).Kind() != ast.Attribute {
		t.Fatalf("expected attribute first child, got %v", a.Child(0).Kind())
	}
	if a.Child(0).Child(0).Kind() != ast.Void {
		t.Fatalf("expected void marker, got %v", a.Child(0).Child(0).Kind())
	}

	b := root.Child(2)
	if b.Child(0).Child(0).Kind() != ast.LeafAttr {
		t.Fatalf("expected leaf marker, got %v", b.Child(0).Child(0).Kind())
	}
}

func TestParseCharacterClassRange(t *testing.T) {
	root, src := mustParse(t, `PEG G (A) A <- [a-c0-9]; END ;`)
	def := root.Child(1)
	expr := def.Child(1)
	class, ok := ast.Find(expr, ast.Class)
	if !ok {
		t.Fatalf("expected a class node")
	}
	if class.NumChildren() != 2 {
		t.Fatalf("expected 2 ranges, got %d", class.NumChildren())
	}
	r0 := class.Child(0)
	if r0.NumChildren() != 2 {
		t.Fatalf("expected lo/hi range, got %d children", r0.NumChildren())
	}
	if string(r0.Child(0).Text(src)) != "a" || string(r0.Child(1).Text(src)) != "c" {
		t.Fatalf("unexpected range bounds: %q-%q", r0.Child(0).Text(src), r0.Child(1).Text(src))
	}
}

func TestParseEscapesAndOctalLongestMatch(t *testing.T) {
	root, _ := mustParse(t, `PEG G (A) A <- "\n\012\1\u41"; END ;`)
	def := root.Child(1)
	lit, ok := ast.Find(def.Child(1), ast.Literal)
	if !ok {
		t.Fatalf("expected a literal node")
	}
	if lit.NumChildren() != 4 {
		t.Fatalf("expected 4 chars, got %d", lit.NumChildren())
	}
	kinds := []ast.Kind{ast.CharSpecial, ast.CharOctalFull, ast.CharOctalPart, ast.CharUnicode}
	for i, want := range kinds {
		got := lit.Child(i).Child(0).Kind()
		if got != want {
			t.Fatalf("char %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestParsePredicateMarkersAndSuffixes(t *testing.T) {
	root, _ := mustParse(t, `PEG G (A) A <- &"x" !"y" "z"? "w"* "v"+; END ;`)
	def := root.Child(1)
	seq := def.Child(1).Child(0)
	if seq.Kind() != ast.Sequence {
		t.Fatalf("expected sequence, got %v", seq.Kind())
	}
	if seq.NumChildren() != 5 {
		t.Fatalf("expected 5 prefixes, got %d", seq.NumChildren())
	}
	if seq.Child(0).Child(0).Kind() != ast.And {
		t.Fatalf("expected and marker, got %v", seq.Child(0).Child(0).Kind())
	}
	if seq.Child(1).Child(0).Kind() != ast.Not {
		t.Fatalf("expected not marker, got %v", seq.Child(1).Child(0).Kind())
	}
	if seq.Child(2).Child(0).NumChildren() != 2 {
		t.Fatalf("expected primary and question marker as suffix children")
	}
	suf3 := seq.Child(2).Child(0)
	if suf3.Child(1).Kind() != ast.Question {
		t.Fatalf("expected question suffix, got %v", suf3.Child(1).Kind())
	}
	suf4 := seq.Child(3).Child(0)
	if suf4.Child(1).Kind() != ast.Star {
		t.Fatalf("expected star suffix, got %v", suf4.Child(1).Kind())
	}
	suf5 := seq.Child(4).Child(0)
	if suf5.Child(1).Kind() != ast.Plus {
		t.Fatalf("expected plus suffix, got %v", suf5.Child(1).Kind())
	}
}

func TestParseComment(t *testing.T) {
	root, _ := mustParse(t, "PEG G (A) # a comment\nA <- \"x\"; END ;")
	if root.NumChildren() != 2 {
		t.Fatalf("expected comment to be skipped as trivia, got %d children", root.NumChildren())
	}
}

func TestParseUndefinedSyntaxFails(t *testing.T) {
	src := corpus.New("bad.peg", []byte(`PEG G (A) A <- ; END ;`))
	_, _, diags, err := Parse(src)
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	if len(diags) == 0 {
		t.Fatalf("expected at least one diagnostic")
	}
}

// TestLeafSpansAreOrderedAndNonOverlapping is the practical form of the
// round-trip property this tree shape supports: identifier and char leaves
// never overlap and appear in the same left-to-right order as the source
// they were scanned from. (Punctuation and keyword tokens -- "(", "<-",
// ";" -- carry no node of their own per the tree-shape table, so a literal
// full-text round trip from leaf concatenation alone isn't this grammar's
// invariant.)
func TestLeafSpansAreOrderedAndNonOverlapping(t *testing.T) {
	text := `PEG G (A) A <- "x" / [a-z]; END ;`
	root, src := mustParse(t, text)

	prevEnd := -1
	ast.Walk(root, func(n ast.Node, _ int) bool {
		if n.IsLeaf() {
			if n.Start() < prevEnd {
				t.Fatalf("leaf out of order: start %d < previous end %d", n.Start(), prevEnd)
			}
			prevEnd = n.End()
			if len(n.Text(src)) == 0 {
				t.Fatalf("unexpected empty leaf span for %v", n.Kind())
			}
		}
		return true
	})
}

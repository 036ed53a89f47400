package diag

import (
	"strings"
	"testing"

	"github.com/Anglebase/zpeg/corpus"
)

func TestRenderCaretAndTildes(t *testing.T) {
	src := corpus.New("g.peg", []byte("A <- B;\nB <- 'x';\n"))
	d := Diagnostic{Start: 5, End: 6, Message: "undefined identifier: B", Tag: UndefinedIdent}
	out := Render(d, src)
	lines := strings.Split(out, "\n")
	if lines[0] != "A <- B;" {
		t.Fatalf("expected source line, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "     ^") {
		t.Fatalf("expected caret under B, got %q", lines[1])
	}
	if lines[2] != "undefined identifier: B" {
		t.Fatalf("expected message line, got %q", lines[2])
	}
}

func TestBagAccumulates(t *testing.T) {
	var b Bag
	if b.HasErrors() {
		t.Fatalf("expected empty bag")
	}
	b.Add(Unnullable, 0, 1, "greedy match %s", "cannot be empty")
	b.Add(LeftRecursion, 2, 3, "cycle")
	if !b.HasErrors() || len(b.Items()) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(b.Items()))
	}
	if b.Items()[0].Message != "greedy match cannot be empty" {
		t.Fatalf("unexpected message: %q", b.Items()[0].Message)
	}
}

package bootstrap

import (
	"testing"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/alecthomas/participle/v2/lexer/stateful"

	"github.com/Anglebase/zpeg/ast"
	"github.com/Anglebase/zpeg/corpus"
)

// identScan is an independent, structurally naive lexical scan used only
// to cross-check bootstrap.Parse's identifier count for a curated set of
// fixture grammars -- a belt-and-suspenders differential test, not a
// second grammar implementation. The shipped bootstrap package never
// imports participle; this file is test-only, grounded on
// nyiyui-go-coa's own participle.MustBuild(&Nodes{}, participle.Lexer(...))
// usage (try2/parser/main.go), including its stateful.NewSimple lexer
// construction.
type identScan struct {
	Items []string `parser:"( @Ident | String | Other )*"`
}

var fixtureLexer = lexer.Must(stateful.NewSimple([]stateful.Rule{
	{Name: "Ident", Pattern: `[_:A-Za-z][_:A-Za-z0-9]*`},
	{Name: "String", Pattern: `'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"`},
	{Name: "space", Pattern: `[ \t\r\n]+`}, // lowercase name: elided by stateful lexer
	{Name: "Other", Pattern: `(?s).`},
}))

var fixtureParser = participle.MustBuild(&identScan{}, participle.Lexer(fixtureLexer))

// keywordOnlyFixtures are curated grammars using no "void"/"leaf" attribute
// keywords, so the only identifier-shaped lexemes that are NOT genuine
// ast.Identifier nodes are the fixed "PEG" and "END" keywords -- exactly
// two per fixture.
var keywordOnlyFixtures = []string{
	`PEG G (A) A <- "x"; END ;`,
	`PEG G (A) A <- A "x" / "y"; END ;`,
	`PEG G (A) A <- B; B <- A; END ;`,
	`PEG Trivial (Start) Start <- Middle Middle; Middle <- "m"?; END ;`,
}

func TestParticipleIdentifierCountCrossCheck(t *testing.T) {
	for _, text := range keywordOnlyFixtures {
		var scan identScan
		if err := fixtureParser.ParseString("fixture", text, &scan); err != nil {
			t.Fatalf("participle scan failed on %q: %v", text, err)
		}

		src := corpus.New("fixture", []byte(text))
		root, _, _, err := Parse(src)
		if err != nil {
			t.Fatalf("bootstrap.Parse failed on %q: %v", text, err)
		}

		bootstrapCount := 0
		ast.Walk(root, func(n ast.Node, _ int) bool {
			if n.Kind() == ast.Identifier {
				bootstrapCount++
			}
			return true
		})

		naiveCount := len(scan.Items)
		const keywordOverhead = 2 // "PEG" and "END"
		if naiveCount-keywordOverhead != bootstrapCount {
			t.Fatalf("%q: participle saw %d identifier-shaped lexemes (minus %d keywords) but bootstrap produced %d Identifier nodes",
				text, naiveCount, keywordOverhead, bootstrapCount)
		}
	}
}

package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anglebase/zpeg/bootstrap"
	"github.com/Anglebase/zpeg/checker"
	"github.com/Anglebase/zpeg/corpus"
	"github.com/Anglebase/zpeg/rules"
)

func mustEmit(t *testing.T, text string, opts Options) string {
	t.Helper()
	src := corpus.New("t.peg", []byte(text))
	root, _, _, err := bootstrap.Parse(src)
	require.NoError(t, err)
	tbl := rules.Build(root, src)
	nulls, diags := checker.Check(root, tbl, src)
	require.Empty(t, diags)
	out, err := Emit(root, tbl, nulls, src, opts)
	require.NoError(t, err)
	return out
}

func TestEmitIncludesPrologueAndPackageClause(t *testing.T) {
	out := mustEmit(t, `PEG G (A) A <- "x"; END ;`, Options{Package: "gen"})
	assert.Contains(t, out, "package gen")
	assert.Contains(t, out, "func pegSequence(")
	assert.Contains(t, out, "func Parse(src []byte) (*pegNode, error) {")
}

func TestEmitDefaultsToPackageMain(t *testing.T) {
	out := mustEmit(t, `PEG G (A) A <- "x"; END ;`, Options{})
	assert.Contains(t, out, "package main")
}

func TestEmitGeneratesOneFuncPerRule(t *testing.T) {
	out := mustEmit(t, `PEG G (A) A <- B "x"; B <- "y"; END ;`, Options{})
	assert.Contains(t, out, "func parseA(st *pegState) (*pegNode, bool) {")
	assert.Contains(t, out, "func parseB(st *pegState) (*pegNode, bool) {")
	assert.Contains(t, out, `pegCall(parseB)`)
}

func TestEmitVoidRuleReturnsNilNode(t *testing.T) {
	out := mustEmit(t, `PEG G (A) A <- skip "x"; void: skip <- " "*; END ;`, Options{})
	assert.Contains(t, out, "func parseSkip(st *pegState) (*pegNode, bool) {")
	assert.Contains(t, out, "return nil, true")
}

func TestEmitLeafRuleOmitsChildren(t *testing.T) {
	out := mustEmit(t, `PEG G (A) A <- word; leaf: word <- "x"+; END ;`, Options{})
	assert.Contains(t, out, "kindWord")
	assert.Contains(t, out, "return &pegNode{kind: kindWord, start: mark, end: st.cur.mark()}, true")

	fn := out[strings.Index(out, "func parseWord"):]
	fn = fn[:strings.Index(fn, "\n}\n")]
	assert.Contains(t, fn, "_ = r", "leaf rule must discharge the unused sequence result r, or the generated file fails to compile")
}

func TestEmitNullabilityTableListsNullableRules(t *testing.T) {
	out := mustEmit(t, `PEG G (A) A <- "y" opt; opt <- "x"?; END ;`, Options{})
	assert.Contains(t, out, `pegNullableRules = []string{"opt"}`)
}

func TestEmitClassTranslatesToRuneSetRanges(t *testing.T) {
	out := mustEmit(t, `PEG G (A) A <- [a-z]; END ;`, Options{})
	assert.Contains(t, out, "newPegRuneSet().addRange('a', 'z')")
}

func TestEmitLiteralDecodesEscapes(t *testing.T) {
	out := mustEmit(t, `PEG G (A) A <- "\n"; END ;`, Options{})
	assert.Contains(t, out, `pegLiteral([]byte("\n"))`)
}

func TestEmitCharacterPropertyResolvesToBuiltinSet(t *testing.T) {
	out := mustEmit(t, `PEG G (A) A <- digit; END ;`, Options{})
	assert.Contains(t, out, "pegCharClass(newPegRuneSet()")
	assert.NotContains(t, out, "pegCall(parseDigit)")
}

func TestEmitUserRuleShadowsCharacterProperty(t *testing.T) {
	out := mustEmit(t, `PEG G (A) A <- digit; digit <- "7"; END ;`, Options{})
	assert.Contains(t, out, "pegCall(parseDigit)")
}

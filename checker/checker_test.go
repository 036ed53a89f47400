package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anglebase/zpeg/bootstrap"
	"github.com/Anglebase/zpeg/corpus"
	"github.com/Anglebase/zpeg/diag"
	"github.com/Anglebase/zpeg/rules"
)

func check(t *testing.T, text string) (NullSet, []diag.Diagnostic) {
	t.Helper()
	src := corpus.New("t.peg", []byte(text))
	root, _, _, err := bootstrap.Parse(src)
	require.NoError(t, err)
	tbl := rules.Build(root, src)
	return Check(root, tbl, src)
}

func TestTrivialGrammarHasNoDiagnostics(t *testing.T) {
	_, diags := check(t, `PEG G (A) A <- "x"; END ;`)
	assert.Empty(t, diags)
}

func TestDirectLeftRecursionReported(t *testing.T) {
	_, diags := check(t, `PEG G (A) A <- A "x" / "y"; END ;`)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.LeftRecursion, diags[0].Tag)
	assert.Contains(t, diags[0].Message, "A -> A")
}

func TestIndirectLeftRecursionReportsFullCycle(t *testing.T) {
	_, diags := check(t, `PEG G (A) A <- B; B <- A; END ;`)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.LeftRecursion, diags[0].Tag)
	assert.Contains(t, diags[0].Message, "A -> B -> A")
}

func TestNullableStarRejected(t *testing.T) {
	nulls, diags := check(t, `PEG G (A) A <- (B)*; B <- "x"?; END ;`)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.Unnullable, diags[0].Tag)
	assert.True(t, nulls.IsNullable("B"))
}

func TestUndefinedIdentifierReported(t *testing.T) {
	_, diags := check(t, `PEG G (A) A <- B; END ;`)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.UndefinedIdent, diags[0].Tag)
	assert.Contains(t, diags[0].Message, "B")
}

func TestLeftRecursionClearedAfterProgress(t *testing.T) {
	_, diags := check(t, `PEG G (A) A <- "x" A; END ;`)
	assert.Empty(t, diags)
}

func TestLeftRecursionClearedInsidePredicate(t *testing.T) {
	_, diags := check(t, `PEG G (A) A <- &A "x"; END ;`)
	assert.Empty(t, diags)
}

func TestCharacterPropertyIdentifierNotUndefined(t *testing.T) {
	_, diags := check(t, `PEG G (A) A <- alpha; END ;`)
	assert.Empty(t, diags)
}

func TestSequenceNullabilityRequiresAllChildren(t *testing.T) {
	nulls, diags := check(t, `PEG G (A) A <- "x"? "y"?; END ;`)
	assert.Empty(t, diags)
	assert.True(t, nulls.IsNullable("A"))
}

func TestPlusWithNonNullableOperandPasses(t *testing.T) {
	_, diags := check(t, `PEG G (A) A <- "x"+; END ;`)
	assert.Empty(t, diags)
}

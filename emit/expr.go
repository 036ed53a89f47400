package emit

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Anglebase/zpeg/ast"
	"github.com/Anglebase/zpeg/combinator"
	"github.com/Anglebase/zpeg/corpus"
	"github.com/Anglebase/zpeg/rules"
)

// translator holds the shared, read-only context expression translation
// needs: the source buffer (for char/literal decoding), the rule table
// (to tell a user-defined rule apart from a character-property identifier)
// and the character property dialect (for the latter).
type translator struct {
	src     *corpus.Source
	table   *rules.Table
	dialect *combinator.Dialect
}

// expr translates an `expression` node into a Go source expression
// evaluating to a pegMatcher, per spec.md section 4.4's expression
// translation table.
func (t *translator) expr(n ast.Node) string {
	if n.NumChildren() == 1 {
		return t.sequence(n.Child(0))
	}
	parts := make([]string, n.NumChildren())
	for i := 0; i < n.NumChildren(); i++ {
		parts[i] = t.sequence(n.Child(i))
	}
	return "pegChoice(" + strings.Join(parts, ", ") + ")"
}

func (t *translator) sequence(n ast.Node) string {
	if n.NumChildren() == 1 {
		return t.prefix(n.Child(0))
	}
	parts := make([]string, n.NumChildren())
	for i := 0; i < n.NumChildren(); i++ {
		parts[i] = t.prefix(n.Child(i))
	}
	return "pegSequence(" + strings.Join(parts, ", ") + ")"
}

func (t *translator) prefix(n ast.Node) string {
	if n.NumChildren() == 2 {
		inner := t.suffix(n.Child(1))
		if n.Child(0).Kind() == ast.And {
			return "pegAnd(" + inner + ")"
		}
		return "pegNot(" + inner + ")"
	}
	return t.suffix(n.Child(0))
}

func (t *translator) suffix(n ast.Node) string {
	prim := t.primary(n.Child(0))
	if n.NumChildren() == 1 {
		return prim
	}
	switch n.Child(1).Kind() {
	case ast.Question:
		return "pegOptional(" + prim + ")"
	case ast.Star:
		return "pegRepeat(" + prim + ")"
	default: // Plus
		return "pegRepeatPlus(" + prim + ")"
	}
}

func (t *translator) primary(n ast.Node) string {
	child := n.Child(0)
	switch child.Kind() {
	case ast.Identifier:
		name := string(child.Text(t.src))
		if !t.table.Has([]byte(name)) {
			if set, ok := t.dialect.Set(name); ok {
				return "pegCharClass(" + runeSetLiteral(set) + ")"
			}
		}
		return "pegCall(" + ruleFuncName(name) + ")"
	case ast.Expression:
		return t.expr(child)
	case ast.Literal:
		return t.literal(child)
	case ast.Class:
		return t.class(child)
	default: // Dot
		return "pegAny"
	}
}

func (t *translator) literal(n ast.Node) string {
	var sb strings.Builder
	for i := 0; i < n.NumChildren(); i++ {
		sb.WriteRune(decodeChar(n.Child(i), t.src))
	}
	return "pegLiteral([]byte(" + strconv.Quote(sb.String()) + "))"
}

func (t *translator) class(n ast.Node) string {
	set := combinator.NewRuneSet()
	for i := 0; i < n.NumChildren(); i++ {
		rng := n.Child(i)
		lo := decodeChar(rng.Child(0), t.src)
		hi := lo
		if rng.NumChildren() == 2 {
			hi = decodeChar(rng.Child(1), t.src)
		}
		set.AddRange(lo, hi)
	}
	return "pegCharClass(" + runeSetLiteral(set) + ")"
}

// runeSetLiteral renders set as a chained newPegRuneSet().addRange(...)...
// Go expression, in the generated file's own pegRuneSet vocabulary.
func runeSetLiteral(set *combinator.RuneSet) string {
	var sb strings.Builder
	sb.WriteString("newPegRuneSet()")
	for _, r := range set.SortedRanges() {
		fmt.Fprintf(&sb, ".addRange(%s, %s)", runeLiteral(r[0]), runeLiteral(r[1]))
	}
	return sb.String()
}

func runeLiteral(r rune) string {
	return strconv.QuoteRune(r)
}

// decodeChar decodes an ast.Char composite node (one leaf child, one of
// the four char subkinds) to its scalar value, mirroring the decoding the
// bootstrap parser's own parseChar performs in reverse.
func decodeChar(n ast.Node, src *corpus.Source) rune {
	leaf := n.Child(0)
	text := leaf.Text(src)
	switch leaf.Kind() {
	case ast.CharSpecial:
		switch text[1] {
		case 'n':
			return '\n'
		case 'r':
			return '\r'
		case 't':
			return '\t'
		default:
			return rune(text[1])
		}
	case ast.CharOctalFull, ast.CharOctalPart:
		v := 0
		for _, d := range text[1:] {
			v = v*8 + int(d-'0')
		}
		return rune(v)
	case ast.CharUnicode:
		v, _ := strconv.ParseInt(string(text[2:]), 16, 32)
		return rune(v)
	default: // CharUnescaped
		r, _ := utf8.DecodeRune(text)
		return r
	}
}

// Package bootstrap implements the hand-written recursive-descent parser
// for the grammar description language itself. One method per production
// named in the tree-shape table; each wraps its recognized span in the
// matching ast.Node variant and, for token-producing rules, consumes
// trailing whitespace via skipTrivia -- leading whitespace is consumed
// once, by Parse, before the first production runs.
package bootstrap

import (
	"sort"
	"strings"

	"github.com/Anglebase/zpeg"
	"github.com/Anglebase/zpeg/ast"
	"github.com/Anglebase/zpeg/combinator"
	"github.com/Anglebase/zpeg/corpus"
	"github.com/Anglebase/zpeg/diag"
)

// Parser holds the shared state (combinator runtime, arena, diagnostics)
// for one grammar-file parse.
type Parser struct {
	st    *combinator.State
	arena *ast.Arena
	src   *corpus.Source
	diags diag.Bag
}

// Parse recognizes src as a complete grammar file and returns its root
// ast.Node together with the arena it lives in. On failure it returns an
// invalid Node, the arena (which may hold nodes from abandoned attempts), any diagnostics
// accumulated so far, and a non-nil *zpeg.Error describing the furthest
// parse failure and the set of rule names expected there.
func Parse(src *corpus.Source) (ast.Node, *ast.Arena, []diag.Diagnostic, error) {
	arena := ast.NewArena(src.Len())
	p := &Parser{
		st:    combinator.NewState(src, arena),
		arena: arena,
		src:   src,
	}

	p.skipTrivia()
	root, ok := p.parseGrammar()
	if !ok {
		err := p.failureError()
		return ast.Node{}, arena, p.diags.Items(), err
	}
	return root, arena, p.diags.Items(), nil
}

// failureError builds a *zpeg.Error from the furthest recorded failures,
// per spec.md §7: map each retained error-stack entry through
// expectationFor, dedupe, and report.
func (p *Parser) failureError() error {
	furthest := p.st.Stack.Furthest()
	if len(furthest) == 0 {
		return zpeg.FormatError(zpeg.BootstrapErrors, "parse failed at start of input")
	}

	pos := furthest[0].Pos
	seen := map[string]bool{}
	var expected []string
	for _, f := range furthest {
		name := ""
		if len(f.Rules) > 0 {
			name = f.Rules[len(f.Rules)-1]
		}
		exp := expectationFor(name)
		if !seen[exp] {
			seen[exp] = true
			expected = append(expected, exp)
		}
	}
	sort.Strings(expected)

	msg := "expected " + strings.Join(expected, " or ")
	d := diag.Diagnostic{Start: pos, End: pos + 1, Message: msg, Tag: diag.ParseError}
	p.diags.AddSpan(d.Tag, d.Start, d.End, d.Message)

	return zpeg.FromDiagnostic(d, p.src, zpeg.BootstrapErrors)
}

// --- lexical helpers -------------------------------------------------

func isIdStart(r rune) bool {
	return r == '_' || r == ':' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isIdCont(r rune) bool {
	return isIdStart(r) || (r >= '0' && r <= '9')
}

func isNamedEscape(b byte) bool {
	switch b {
	case 'n', 'r', 't', '\'', '"', '[', ']', '\\', '-':
		return true
	}
	return false
}

// skipTrivia consumes spaces, tabs, line endings, and "#" line comments.
func (p *Parser) skipTrivia() {
	for {
		r, size := p.st.Cur.DecodeRune()
		if size == 0 {
			return
		}
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			p.st.Cur.Pos += size
		case r == '#':
			for {
				r2, size2 := p.st.Cur.DecodeRune()
				if size2 == 0 || r2 == '\n' {
					break
				}
				p.st.Cur.Pos += size2
			}
		default:
			return
		}
	}
}

func (p *Parser) mark() int      { return p.st.Cur.Mark() }
func (p *Parser) reset(m int)    { p.st.Cur.Reset(m) }
func (p *Parser) peekByte() (byte, bool) {
	if p.st.Cur.AtEnd() {
		return 0, false
	}
	return p.st.Cur.Remaining()[0], true
}

// rawByte matches one literal ASCII byte with no trivia handling.
func (p *Parser) rawByte(b byte) (int, bool) {
	cb, ok := p.peekByte()
	if !ok || cb != b {
		return 0, false
	}
	p.st.Cur.Pos++
	return p.st.Cur.Pos, true
}

// rawLiteral matches a literal byte string with no trivia handling.
func (p *Parser) rawLiteral(s string) (int, bool) {
	if _, ok := combinator.Literal([]byte(s))(p.st); !ok {
		return 0, false
	}
	return p.st.Cur.Pos, true
}

// tok matches a literal punctuation/keyword token and consumes any
// trailing trivia, the "token-producing rule" discipline spec.md §4.2
// requires.
func (p *Parser) tok(s string) (int, bool) {
	end, ok := p.rawLiteral(s)
	if !ok {
		return 0, false
	}
	p.skipTrivia()
	return end, true
}

// matchOctalFull matches [0-2][0-7][0-7], all-or-nothing.
func (p *Parser) matchOctalFull() bool {
	m := p.mark()
	for i, lo, hi := 0, byte('0'), byte('2'); i < 3; i++ {
		b, ok := p.peekByte()
		if !ok || b < lo || b > hi {
			p.reset(m)
			return false
		}
		p.st.Cur.Pos++
		lo, hi = '0', '7'
	}
	return true
}

// matchOctalPart matches [0-7][0-7]?, requiring at least one digit.
func (p *Parser) matchOctalPart() bool {
	b, ok := p.peekByte()
	if !ok || b < '0' || b > '7' {
		return false
	}
	p.st.Cur.Pos++
	if b2, ok2 := p.peekByte(); ok2 && b2 >= '0' && b2 <= '7' {
		p.st.Cur.Pos++
	}
	return true
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// matchHexDigits matches between min and max hex digits, greedily.
func (p *Parser) matchHexDigits(min, max int) bool {
	n := 0
	for n < max {
		b, ok := p.peekByte()
		if !ok || !isHexDigit(b) {
			break
		}
		p.st.Cur.Pos++
		n++
	}
	return n >= min
}

// keywordPEG matches "PEG" not followed by an identifier-continuation
// character, per spec.md §4.2's tie-break note.
func (p *Parser) keywordPEG() bool {
	m := p.mark()
	if _, ok := p.rawLiteral("PEG"); !ok {
		return false
	}
	if r, size := p.st.Cur.DecodeRune(); size > 0 && isIdCont(r) {
		p.reset(m)
		p.st.Fail(combinator.NoMatches, m)
		return false
	}
	p.skipTrivia()
	return true
}

// --- grammar productions ----------------------------------------------

func (p *Parser) parseGrammar() (ast.Node, bool) {
	pop := p.st.EnterRule("Grammar")
	defer pop()
	start := p.mark()

	header, ok := p.parseHeader()
	if !ok {
		return ast.Node{}, false
	}

	children := []ast.Node{header}
	for {
		m := p.mark()
		def, ok := p.parseDefinition()
		if !ok {
			p.reset(m)
			break
		}
		children = append(children, def)
	}

	if _, ok := p.tok("END"); !ok {
		p.reset(start)
		return ast.Node{}, false
	}
	if _, ok := p.tok(";"); !ok {
		p.reset(start)
		return ast.Node{}, false
	}
	if !p.st.Cur.AtEnd() {
		p.st.Fail(combinator.NoMatches, p.mark())
		p.reset(start)
		return ast.Node{}, false
	}

	end := p.st.Cur.Pos
	return p.arena.Value(ast.Grammar, start, end, children...), true
}

func (p *Parser) parseHeader() (ast.Node, bool) {
	pop := p.st.EnterRule("Header")
	defer pop()
	start := p.mark()

	if !p.keywordPEG() {
		return ast.Node{}, false
	}
	ident, ok := p.parseIdentifier()
	if !ok {
		p.reset(start)
		return ast.Node{}, false
	}
	if _, ok := p.tok("("); !ok {
		p.reset(start)
		return ast.Node{}, false
	}
	expr, ok := p.parseExpression()
	if !ok {
		p.reset(start)
		return ast.Node{}, false
	}
	end, ok := p.tok(")")
	if !ok {
		p.reset(start)
		return ast.Node{}, false
	}

	startExpr := p.arena.Value(ast.StartExpr, expr.Start(), expr.End(), expr)
	return p.arena.Value(ast.Header, start, end, ident, startExpr), true
}

func (p *Parser) parseDefinition() (ast.Node, bool) {
	pop := p.st.EnterRule("Definition")
	defer pop()
	start := p.mark()

	attr, hasAttr := p.parseAttribute()

	ident, ok := p.parseIdentifier()
	if !ok {
		p.reset(start)
		return ast.Node{}, false
	}

	popArrow := p.st.EnterRule("Arrow")
	_, arrowOK := p.tok("<-")
	popArrow()
	if !arrowOK {
		p.reset(start)
		return ast.Node{}, false
	}

	expr, ok := p.parseExpression()
	if !ok {
		p.reset(start)
		return ast.Node{}, false
	}
	end, ok := p.tok(";")
	if !ok {
		p.reset(start)
		return ast.Node{}, false
	}

	var children []ast.Node
	if hasAttr {
		children = []ast.Node{attr, ident, expr}
	} else {
		children = []ast.Node{ident, expr}
	}
	return p.arena.Value(ast.Definition, start, end, children...), true
}

func (p *Parser) parseAttribute() (ast.Node, bool) {
	pop := p.st.EnterRule("Attribute")
	defer pop()
	start := p.mark()

	var marker ast.Node
	if end, ok := p.tok("void"); ok {
		marker = p.arena.Leaf(ast.Void, start, end)
	} else if end, ok := p.tok("leaf"); ok {
		marker = p.arena.Leaf(ast.LeafAttr, start, end)
	} else {
		return ast.Node{}, false
	}

	end, ok := p.tok(":")
	if !ok {
		p.reset(start)
		return ast.Node{}, false
	}
	return p.arena.Value(ast.Attribute, start, end, marker), true
}

func (p *Parser) parseExpression() (ast.Node, bool) {
	pop := p.st.EnterRule("Expression")
	defer pop()
	start := p.mark()

	first, ok := p.parseSequence()
	if !ok {
		return ast.Node{}, false
	}
	seqs := []ast.Node{first}
	for {
		m := p.mark()
		if _, ok := p.tok("/"); !ok {
			p.reset(m)
			break
		}
		s, ok := p.parseSequence()
		if !ok {
			p.reset(m)
			break
		}
		seqs = append(seqs, s)
	}

	end := seqs[len(seqs)-1].End()
	return p.arena.Value(ast.Expression, start, end, seqs...), true
}

func (p *Parser) parseSequence() (ast.Node, bool) {
	pop := p.st.EnterRule("Sequence")
	defer pop()
	start := p.mark()

	first, ok := p.parsePrefix()
	if !ok {
		return ast.Node{}, false
	}
	prefixes := []ast.Node{first}
	for {
		m := p.mark()
		pr, ok := p.parsePrefix()
		if !ok {
			p.reset(m)
			break
		}
		prefixes = append(prefixes, pr)
	}

	end := prefixes[len(prefixes)-1].End()
	return p.arena.Value(ast.Sequence, start, end, prefixes...), true
}

func (p *Parser) parsePrefix() (ast.Node, bool) {
	pop := p.st.EnterRule("Prefix")
	defer pop()
	start := p.mark()

	var marker ast.Node
	hasMarker := false
	if end, ok := p.tok("&"); ok {
		marker = p.arena.Leaf(ast.And, start, end)
		hasMarker = true
	} else if end, ok := p.tok("!"); ok {
		marker = p.arena.Leaf(ast.Not, start, end)
		hasMarker = true
	}

	suf, ok := p.parseSuffix()
	if !ok {
		p.reset(start)
		return ast.Node{}, false
	}

	end := suf.End()
	if hasMarker {
		return p.arena.Value(ast.Prefix, start, end, marker, suf), true
	}
	return p.arena.Value(ast.Prefix, start, end, suf), true
}

func (p *Parser) parseSuffix() (ast.Node, bool) {
	pop := p.st.EnterRule("Suffix")
	defer pop()
	start := p.mark()

	prim, ok := p.parsePrimary()
	if !ok {
		return ast.Node{}, false
	}

	markerStart := p.mark()
	var marker ast.Node
	hasMarker := false
	if end, ok := p.tok("?"); ok {
		marker = p.arena.Leaf(ast.Question, markerStart, end)
		hasMarker = true
	} else if end, ok := p.tok("*"); ok {
		marker = p.arena.Leaf(ast.Star, markerStart, end)
		hasMarker = true
	} else if end, ok := p.tok("+"); ok {
		marker = p.arena.Leaf(ast.Plus, markerStart, end)
		hasMarker = true
	}

	end := prim.End()
	if hasMarker {
		end = marker.End()
		return p.arena.Value(ast.Suffix, start, end, prim, marker), true
	}
	return p.arena.Value(ast.Suffix, start, end, prim), true
}

func (p *Parser) parsePrimary() (ast.Node, bool) {
	pop := p.st.EnterRule("Primary")
	defer pop()
	start := p.mark()

	if ident, ok := p.parseIdentifier(); ok {
		return p.arena.Value(ast.Primary, start, ident.End(), ident), true
	}

	m := p.mark()
	if _, ok := p.tok("("); ok {
		if expr, ok := p.parseExpression(); ok {
			if end, ok := p.tok(")"); ok {
				return p.arena.Value(ast.Primary, start, end, expr), true
			}
		}
	}
	p.reset(m)

	if lit, ok := p.parseLiteral(); ok {
		return p.arena.Value(ast.Primary, start, lit.End(), lit), true
	}

	if cls, ok := p.parseClass(); ok {
		return p.arena.Value(ast.Primary, start, cls.End(), cls), true
	}

	if end, ok := p.tok("."); ok {
		dot := p.arena.Leaf(ast.Dot, start, end)
		return p.arena.Value(ast.Primary, start, end, dot), true
	}

	p.st.Fail(combinator.NoMatches, start)
	return ast.Node{}, false
}

func (p *Parser) parseLiteral() (ast.Node, bool) {
	pop := p.st.EnterRule("Literal")
	defer pop()
	start := p.mark()

	var quote byte
	if _, ok := p.rawByte('\''); ok {
		quote = '\''
	} else if _, ok := p.rawByte('"'); ok {
		quote = '"'
	} else {
		return ast.Node{}, false
	}

	var chars []ast.Node
	for {
		m := p.mark()
		if b, ok := p.peekByte(); ok && b == quote {
			break
		}
		c, ok := p.parseChar()
		if !ok {
			p.reset(m)
			break
		}
		chars = append(chars, c)
	}

	end, ok := p.tok(string(quote))
	if !ok {
		p.reset(start)
		return ast.Node{}, false
	}
	return p.arena.Value(ast.Literal, start, end, chars...), true
}

func (p *Parser) parseClass() (ast.Node, bool) {
	pop := p.st.EnterRule("Class")
	defer pop()
	start := p.mark()

	if _, ok := p.rawByte('['); !ok {
		return ast.Node{}, false
	}

	var ranges []ast.Node
	for {
		m := p.mark()
		if b, ok := p.peekByte(); ok && b == ']' {
			break
		}
		r, ok := p.parseRange()
		if !ok {
			p.reset(m)
			break
		}
		ranges = append(ranges, r)
	}

	end, ok := p.tok("]")
	if !ok {
		p.reset(start)
		return ast.Node{}, false
	}
	return p.arena.Value(ast.Class, start, end, ranges...), true
}

func (p *Parser) parseRange() (ast.Node, bool) {
	pop := p.st.EnterRule("Range")
	defer pop()
	start := p.mark()

	c1, ok := p.parseChar()
	if !ok {
		return ast.Node{}, false
	}

	m := p.mark()
	if _, ok := p.rawByte('-'); ok {
		if c2, ok := p.parseChar(); ok {
			return p.arena.Value(ast.Range, start, c2.End(), c1, c2), true
		}
		p.reset(m)
	}
	return p.arena.Value(ast.Range, start, c1.End(), c1), true
}

func (p *Parser) parseChar() (ast.Node, bool) {
	pop := p.st.EnterRule("Char")
	defer pop()
	start := p.mark()

	if _, ok := p.rawByte('\\'); ok {
		if b, ok := p.peekByte(); ok && isNamedEscape(b) {
			p.st.Cur.Pos++
			leaf := p.arena.Leaf(ast.CharSpecial, start, p.st.Cur.Pos)
			return p.arena.Value(ast.Char, start, p.st.Cur.Pos, leaf), true
		}
		if p.matchOctalFull() {
			leaf := p.arena.Leaf(ast.CharOctalFull, start, p.st.Cur.Pos)
			return p.arena.Value(ast.Char, start, p.st.Cur.Pos, leaf), true
		}
		if p.matchOctalPart() {
			leaf := p.arena.Leaf(ast.CharOctalPart, start, p.st.Cur.Pos)
			return p.arena.Value(ast.Char, start, p.st.Cur.Pos, leaf), true
		}
		if _, ok := p.rawByte('u'); ok {
			if p.matchHexDigits(1, 5) {
				leaf := p.arena.Leaf(ast.CharUnicode, start, p.st.Cur.Pos)
				return p.arena.Value(ast.Char, start, p.st.Cur.Pos, leaf), true
			}
		}
		p.reset(start)
		p.st.Fail(combinator.UnexpectedChar, start)
		return ast.Node{}, false
	}

	_, size := p.st.Cur.DecodeRune()
	if size == 0 {
		p.st.Fail(combinator.UnexpectedEOF, start)
		return ast.Node{}, false
	}
	p.st.Cur.Pos += size
	leaf := p.arena.Leaf(ast.CharUnescaped, start, p.st.Cur.Pos)
	return p.arena.Value(ast.Char, start, p.st.Cur.Pos, leaf), true
}

func (p *Parser) parseIdentifier() (ast.Node, bool) {
	pop := p.st.EnterRule("Identifier")
	defer pop()
	start := p.mark()

	r, size := p.st.Cur.DecodeRune()
	if size == 0 || !isIdStart(r) {
		p.st.Fail(combinator.UnexpectedChar, start)
		return ast.Node{}, false
	}
	p.st.Cur.Pos += size
	for {
		r2, size2 := p.st.Cur.DecodeRune()
		if size2 == 0 || !isIdCont(r2) {
			break
		}
		p.st.Cur.Pos += size2
	}

	end := p.st.Cur.Pos
	ident := p.arena.Leaf(ast.Ident, start, end)
	p.skipTrivia()
	return p.arena.Value(ast.Identifier, start, end, ident), true
}

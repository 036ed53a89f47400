// Package diag implements the diagnostic value and renderer shared by
// package bootstrap (parse errors) and package checker (check errors).
//
// Rendering is specified as a pure function (span, source) -> formatted
// text: it never touches a file or a terminal directly, so cmd/zpegc and
// tests can both call it the same way.
package diag

import (
	"fmt"
	"strings"

	"github.com/Anglebase/zpeg/corpus"
)

// Tag classifies a Diagnostic's origin, per the four tags spec.md §6
// names.
type Tag string

const (
	UndefinedIdent Tag = "undefined_ident"
	Unnullable     Tag = "unnullable"
	LeftRecursion  Tag = "left_recursion"
	ParseError     Tag = "parse_error"
)

// Diagnostic carries a span into the source, a human-readable message, and
// a Tag identifying which analysis produced it.
type Diagnostic struct {
	Start, End int
	Message    string
	Tag        Tag
}

// Bag accumulates diagnostics produced by one phase (bootstrap or
// checker). It plays the role spec.md §3 assigns to "a second arena owned
// by whichever pass produced them": a single owner collects every
// diagnostic for a phase and hands the whole slice to its caller at once.
type Bag struct {
	items []Diagnostic
}

// Add appends a diagnostic built from a span and a printf-style message.
func (b *Bag) Add(tag Tag, start, end int, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	b.items = append(b.items, Diagnostic{Start: start, End: end, Message: msg, Tag: tag})
}

// AddSpan is a convenience for the common case of anchoring a diagnostic to
// an ast.Node's span; it takes start/end directly to avoid an import cycle
// with package ast.
func (b *Bag) AddSpan(tag Tag, start, end int, msg string) {
	b.items = append(b.items, Diagnostic{Start: start, End: end, Message: msg, Tag: tag})
}

// Items returns every diagnostic collected so far.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// HasErrors reports whether any diagnostic has been recorded.
func (b *Bag) HasErrors() bool {
	return len(b.items) > 0
}

// Render formats a diagnostic against its source the way spec.md §6
// specifies: the source line, a caret at Start, tildes through
// min(End, line-end), then the message, each on its own line.
func Render(d Diagnostic, src *corpus.Source) string {
	lineStart, lineEnd := src.LineBounds(d.Start)
	line := string(src.Slice(lineStart, lineEnd))

	_, col := src.LineCol(d.Start)
	caretCol := col - 1
	if caretCol < 0 {
		caretCol = 0
	}

	tildeEnd := d.End
	if tildeEnd > lineEnd {
		tildeEnd = lineEnd
	}
	tildeCount := tildeEnd - d.Start - 1
	if tildeCount < 0 {
		tildeCount = 0
	}

	var b strings.Builder
	b.WriteString(line)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", caretCol))
	b.WriteByte('^')
	b.WriteString(strings.Repeat("~", tildeCount))
	b.WriteByte('\n')
	b.WriteString(d.Message)
	return b.String()
}

// RenderAll renders every diagnostic in ds, separated by blank lines, and
// prefixes each with its source name and 1-based line:col.
func RenderAll(ds []Diagnostic, name string, src *corpus.Source) string {
	var b strings.Builder
	for i, d := range ds {
		if i > 0 {
			b.WriteString("\n\n")
		}
		line, col := src.LineCol(d.Start)
		fmt.Fprintf(&b, "%s:%d:%d: %s\n", name, line, col, d.Tag)
		b.WriteString(Render(d, src))
	}
	return b.String()
}

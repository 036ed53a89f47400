/*
Package zpeg is a parser-generator for a dialect of Parsing Expression
Grammars (PEG).

Consists of subpackages:
  - cmd/zpegc: console utility translating a grammar description into a Go
    source file containing a recursive-descent parser;
  - corpus: the byte-slice source and cursor shared by every phase;
  - ast: the sum-typed grammar AST and its arena;
  - combinator: the primitive matchers and combinators the bootstrap parser
    is built from (emitted parsers carry their own copy in emit's prologue);
  - bootstrap: the hand-written recursive-descent parser for the grammar
    description language itself;
  - rules: the derived rule table (name -> defining expression);
  - checker: nullability, left-recursion, and greedy-empty-repetition
    analysis;
  - diag: diagnostics (span, message, tag) and their rendering;
  - emit: the code generator.

Typical usage is:

1. Describe a grammar in the zpeg grammar language (see bootstrap package
docs). The description carries no target-language code.

2. Parse the description with bootstrap.Parse, check it with checker.Check,
and emit a parser with emit.Emit -- or simply run the cmd/zpegc driver.

3. Compile the generated output alongside your own code and call its Parse
entry point.
*/
package zpeg

import (
	"fmt"

	"github.com/Anglebase/zpeg/corpus"
	"github.com/Anglebase/zpeg/diag"
)

// Error classes used by subpackages, each class owns up to 99 error codes.
// A subsystem that only ever surfaces diagnostics through diag.Bag (checker
// does) still owns a class here; cmd/zpegc uses it for the terminal *Error
// it reports when that subsystem returns diagnostics.
const (
	BootstrapErrors = 1   // used by bootstrap
	CheckerErrors   = 101 // used by checker
	EmitErrors      = 201 // used by emit
	DriverErrors    = 301 // used by cmd/zpegc
)

// Error is the error value bootstrap.Parse and cmd/zpegc return. It is
// deliberately thinner than a diag.Diagnostic: Go callers
// that just want an `error` to check get one, while callers that want the
// full span-and-tag picture (cmd/zpegc rendering output to a terminal) read
// the []diag.Diagnostic most entry points return alongside it. FromDiagnostic
// bridges the two when a single diagnostic needs to become the terminal
// error -- bootstrap.Parse's furthest-failure diagnostic is the current
// example.
type Error struct {
	// Code contains a non-zero error code, see the *Errors constants.
	Code int

	// Message contains a non-empty error message, including source name and
	// position information if provided.
	Message string

	// SourceName contains the source name that caused this error, or "".
	SourceName string

	// Line contains a line number in the source file, or 0.
	Line int

	// Col contains a column number in the source file, or 0.
	Col int
}

// NewError creates a new Error. name, line, and col are appended to the
// message if provided (non-zero).
func NewError(code int, msg, name string, line, col int) *Error {
	if name != "" && line != 0 && col != 0 {
		msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
	}
	return &Error{code, msg, name, line, col}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// FormatError creates an Error with no source and position information.
// params are applied to msg with fmt.Sprintf.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates an Error with source and position information.
// pos supplies the source name, line and column. params are applied to msg
// with fmt.Sprintf.
func FormatErrorPos(pos corpus.Pos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}

// FromDiagnostic builds an Error carrying d's message and source position,
// for a phase whose exported entry point hands the caller a full
// []diag.Diagnostic but still needs to return one *Error as its terminal
// failure -- bootstrap.Parse's furthest-parse-failure diagnostic is the
// only current caller.
func FromDiagnostic(d diag.Diagnostic, src *corpus.Source, code int) *Error {
	line, col := src.LineCol(d.Start)
	return NewError(code, d.Message, src.Name(), line, col)
}

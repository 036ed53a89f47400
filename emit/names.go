package emit

import "strings"

// goReserved carries Go's reserved words and predeclared identifiers, per
// SPEC_FULL.md's concrete resolution of the target-language-left-open
// "raw-identifier syntax" question: Go has no raw-identifier escape, so
// every rule name is lower-cased, its ':' namespace separators replaced
// with '_', and an underscore appended if the result collides.
var goReserved = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
	"any": true, "bool": true, "byte": true, "comparable": true, "complex64": true,
	"complex128": true, "error": true, "float32": true, "float64": true, "int": true,
	"int8": true, "int16": true, "int32": true, "int64": true, "rune": true,
	"string": true, "uint": true, "uint8": true, "uint16": true, "uint32": true,
	"uint64": true, "uintptr": true, "true": true, "false": true, "iota": true,
	"nil": true, "append": true, "cap": true, "close": true, "complex": true,
	"copy": true, "delete": true, "imag": true, "len": true, "make": true,
	"new": true, "panic": true, "print": true, "println": true, "real": true,
	"recover": true,
}

// mangle turns a grammar rule name into a safe, lower-cased Go identifier
// fragment. The original spelling is never lost -- callers keep it in the
// rule-name stack pushed via pegState.enterRule, for diagnostics.
func mangle(name string) string {
	out := strings.ToLower(strings.ReplaceAll(name, ":", "_"))
	if goReserved[out] {
		out += "_"
	}
	return out
}

// ruleFuncName returns the generated parser function's name for rule name.
func ruleFuncName(name string) string {
	return "parse" + capitalize(mangle(name))
}

// nodeKindConstName returns the generated pegNodeKind constant's name for
// rule name.
func nodeKindConstName(name string) string {
	return "kind" + capitalize(mangle(name))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

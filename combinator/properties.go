package combinator

import (
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// Property names reserved by the grammar language, per spec.md §6.
const (
	PropAlnum    = "alnum"
	PropAlpha    = "alpha"
	PropAscii    = "ascii"
	PropControl  = "control"
	PropDdigit   = "ddigit"
	PropDigit    = "digit"
	PropGraph    = "graph"
	PropLower    = "lower"
	PropPrint    = "print"
	PropPunct    = "punct"
	PropSpace    = "space"
	PropUpper    = "upper"
	PropWordchar = "wordchar"
	PropXdigit   = "xdigit"
)

var propertyNames = []string{
	PropAlnum, PropAlpha, PropAscii, PropControl, PropDdigit, PropDigit,
	PropGraph, PropLower, PropPrint, PropPunct, PropSpace, PropUpper,
	PropWordchar, PropXdigit,
}

// PropertyNames returns the fixed, reserved set of character-property
// identifiers the grammar language recognizes.
func PropertyNames() []string {
	return propertyNames
}

// Dialect resolves a character-property name to the RuneSet it denotes.
// The default ("ASCII dialect", spec.md §6) uses hardcoded 7-bit ranges;
// an alternative Unicode dialect widens letter/digit/space/etc. properties
// to their full Unicode category, for callers that pass -unicode to
// cmd/zpegc.
type Dialect struct {
	props map[string]*RuneSet
}

// Predicate returns the matcher for a reserved property name, or false if
// name isn't one of the fourteen reserved identifiers.
func (d *Dialect) Predicate(name string) (Matcher, bool) {
	set, ok := d.props[name]
	if !ok {
		return nil, false
	}
	return CharClass(set), true
}

// Set returns the raw RuneSet for a reserved property name, for callers
// (package emit) that need to serialize it rather than match with it.
func (d *Dialect) Set(name string) (*RuneSet, bool) {
	set, ok := d.props[name]
	return set, ok
}

// ASCIIDialect builds the default 7-bit dialect: every property is defined
// over the ASCII subset, matching traditional C-locale ctype semantics.
func ASCIIDialect() *Dialect {
	lower := NewRuneSet().AddRange('a', 'z')
	upper := NewRuneSet().AddRange('A', 'Z')
	alpha := NewRuneSet().Union(lower).Union(upper)
	digit := NewRuneSet().AddRange('0', '9')
	alnum := NewRuneSet().Union(alpha).Union(digit)
	xdigit := NewRuneSet().Union(digit).AddRange('a', 'f').AddRange('A', 'F')
	space := NewRuneSet().AddRune(' ').AddRune('\t').AddRune('\n').AddRune('\r').AddRune('\v').AddRune('\f')
	control := NewRuneSet().AddRange(0, 0x1f).AddRune(0x7f)
	graph := NewRuneSet().AddRange('!', '~')
	print := NewRuneSet().Union(graph).AddRune(' ')
	wordchar := NewRuneSet().Union(alnum).AddRune('_')
	punct := NewRuneSet().Union(graph).Subtract(alnum)
	ascii := NewRuneSet().AddRange(0, 127)

	return &Dialect{props: map[string]*RuneSet{
		PropAlnum:    alnum,
		PropAlpha:    alpha,
		PropAscii:    ascii,
		PropControl:  control,
		PropDdigit:   digit,
		PropDigit:    digit,
		PropGraph:    graph,
		PropLower:    lower,
		PropPrint:    print,
		PropPunct:    punct,
		PropSpace:    space,
		PropUpper:    upper,
		PropWordchar: wordchar,
		PropXdigit:   xdigit,
	}}
}

// UnicodeDialect widens every property (except ddigit/xdigit, which stay
// ASCII decimal/hex digits by convention) to its full Unicode category,
// built by visiting the stdlib unicode range tables with
// golang.org/x/text/unicode/rangetable -- the one library in the whole
// example pack whose API (Visit over sorted (lo, hi, stride) runs) speaks
// directly in the same "sorted list of scalar-value ranges" vocabulary
// spec.md §4.1 specifies for RuneSet, rather than merely wrapping
// unicode.Is* predicates one codepoint at a time.
func UnicodeDialect() *Dialect {
	fromTable := func(tabs ...*unicode.RangeTable) *RuneSet {
		set := NewRuneSet()
		merged := rangetable.Merge(tabs...)
		rangetable.Visit(merged, func(r rune) {
			set.AddRange(r, r)
		})
		return set
	}

	ascii := ASCIIDialect()
	alpha := fromTable(unicode.Letter)
	digit := ascii.props[PropDdigit]
	alnum := fromTable(unicode.Letter, unicode.Digit, unicode.Nd)
	space := fromTable(unicode.Space, unicode.White_Space)
	control := fromTable(unicode.Cc, unicode.Cf)
	lower := fromTable(unicode.Lower)
	upper := fromTable(unicode.Upper)
	punct := fromTable(unicode.Punct, unicode.Symbol)
	graph := NewRuneSet().Union(alnum).Union(punct)
	print := NewRuneSet().Union(graph).Union(space)
	wordchar := NewRuneSet().Union(alnum).AddRune('_')

	return &Dialect{props: map[string]*RuneSet{
		PropAlnum:    alnum,
		PropAlpha:    alpha,
		PropAscii:    ascii.props[PropAscii],
		PropControl:  control,
		PropDdigit:   digit,
		PropDigit:    fromTable(unicode.Digit, unicode.Nd),
		PropGraph:    graph,
		PropLower:    lower,
		PropPrint:    print,
		PropPunct:    punct,
		PropSpace:    space,
		PropUpper:    upper,
		PropWordchar: wordchar,
		PropXdigit:   ascii.props[PropXdigit],
	}}
}

package bootstrap

// expectationFor maps a rule-stack frame name to the human-readable
// expectation phrase spec.md §7 calls for ("e.g. Grammar/Header -> 'PEG'",
// "Definition -> 'void', 'leaf' or identifier"), grounded on the teacher's
// langdef/errors.go style of one small fixed-message helper per
// distinguishable parse failure rather than a generic "unexpected token"
// message.
func expectationFor(rule string) string {
	switch rule {
	case "Grammar", "Header":
		return "'PEG'"
	case "Definition":
		return "'void', 'leaf' or identifier"
	case "Attribute":
		return "'void' or 'leaf'"
	case "Arrow":
		return "'<-'"
	case "Expression", "Sequence", "Prefix", "Suffix", "Primary":
		return "an expression"
	case "Literal":
		return "a quoted literal"
	case "Class":
		return "a character class"
	case "Range", "Char":
		return "a character"
	case "Identifier":
		return "an identifier"
	default:
		return "more input"
	}
}

package match

// StringExpr is a poly-query string-expression parameter (spec.md §4.5):
// a list of name patterns, each matched literally, by glob, or by
// regex, joined by OR.
type StringExpr struct {
	Mode     Mode
	Patterns []string
}

// placeholderToken is the poly-query placeholder spec.md §4.5 item 5
// defines: "the name of the element currently being considered".
const placeholderToken = "X"

// ResolvePlaceholder substitutes every literal placeholderToken pattern
// with elementName, leaving other patterns untouched. Callers do this
// once per evaluated element, immediately before compiling selectors.
func (e StringExpr) ResolvePlaceholder(elementName string) []string {
	out := make([]string, len(e.Patterns))
	for i, p := range e.Patterns {
		if p == placeholderToken {
			out[i] = elementName
		} else {
			out[i] = p
		}
	}
	return out
}

// Match reports whether name satisfies any pattern in e (after
// placeholder substitution against elementName).
func (e StringExpr) Match(name, elementName string) (bool, error) {
	for _, p := range e.ResolvePlaceholder(elementName) {
		sel, err := NewSelector(e.Mode, p)
		if err != nil {
			return false, err
		}
		if sel.Match(name) {
			return true, nil
		}
	}
	return false, nil
}

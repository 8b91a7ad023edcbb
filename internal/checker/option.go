package checker

// Option is a named list of string values a Module consults to
// configure its behavior (spec.md §4.7 "Option"). It keeps the
// default/current split original_source/sechecker/option.hh models
// (referenced from module.hh) but spec.md §4.7's one-line description
// loses: SetOption with override=false appends to the current value
// list rather than replacing it (SPEC_FULL.md §5 "Option default/
// override split").
type Option struct {
	Name        string
	Description string
	Default     []string
	current     []string
	overridden  bool
}

// NewOption creates an Option with the given default values.
func NewOption(name, description string, defaults ...string) *Option {
	return &Option{Name: name, Description: description, Default: defaults}
}

// Values returns the option's effective value list: the overridden
// current list if SetOption was ever called, else Default.
func (o *Option) Values() []string {
	if o.overridden {
		return o.current
	}
	return o.Default
}

// SetOption updates o's current values. override=true replaces the
// current list outright; override=false appends to it (starting from
// Default the first time it's called), per the original's
// default/current distinction.
func (o *Option) SetOption(values []string, override bool) {
	if override || !o.overridden {
		if override {
			o.current = append([]string(nil), values...)
		} else {
			o.current = append(append([]string(nil), o.Default...), values...)
		}
	} else {
		o.current = append(o.current, values...)
	}
	o.overridden = true
}

// Reset restores o to its default values, discarding any override.
func (o *Option) Reset() {
	o.current = nil
	o.overridden = false
}

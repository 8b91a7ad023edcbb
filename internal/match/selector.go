// Package match implements the name-selector primitives shared by the
// query engine (C7), poly-query (C8), and file-context list (C9):
// exact, glob (github.com/gobwas/glob), and extended-regex matching
// against a symbol's primary name (spec.md §4.4 "name | regex flag").
package match

import (
	"fmt"
	"regexp"

	"github.com/gobwas/glob"

	"github.com/sepolicy/sechecker/internal/policy"
)

// Mode selects how Selector.Match interprets its pattern.
type Mode int

const (
	Exact Mode = iota
	Glob
	Regex
)

// Selector matches candidate names against a compiled pattern.
type Selector struct {
	mode    Mode
	literal string
	g       glob.Glob
	re      *regexp.Regexp
}

// NewSelector compiles pattern under mode. An invalid glob or regex
// surfaces QuerySyntax (spec.md §7).
func NewSelector(mode Mode, pattern string) (*Selector, error) {
	s := &Selector{mode: mode, literal: pattern}
	switch mode {
	case Exact:
		return s, nil
	case Glob:
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid glob %q: %v", policy.ErrQuerySyntax, pattern, err)
		}
		s.g = g
		return s, nil
	case Regex:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid regex %q: %v", policy.ErrQuerySyntax, pattern, err)
		}
		s.re = re
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown selector mode %d", policy.ErrQuerySyntax, mode)
	}
}

// Match reports whether name satisfies the selector.
func (s *Selector) Match(name string) bool {
	switch s.mode {
	case Exact:
		return name == s.literal
	case Glob:
		return s.g.Match(name)
	case Regex:
		return s.re.MatchString(name)
	default:
		return false
	}
}

// Pattern returns the selector's original pattern text.
func (s *Selector) Pattern() string { return s.literal }

package domain

import (
	"errors"
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

// Pattern matches file identifiers either by substring containment or by regular expression.
type Pattern struct {
	substring string
	re        *regexp.Regexp
}

// Substring returns a pattern that matches any id containing s.
func Substring(s string) Pattern {
	return Pattern{substring: s}
}

// Regex compiles expr into a pattern.
func Regex(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, zerr.With(errors.Join(ErrInvalidPattern, err), "pattern", expr)
	}
	return Pattern{re: re}, nil
}

// MustRegex is like Regex but panics on an invalid expression.
func MustRegex(expr string) Pattern {
	return Pattern{re: regexp.MustCompile(expr)}
}

// FromRegexp wraps an already compiled expression.
func FromRegexp(re *regexp.Regexp) Pattern {
	return Pattern{re: re}
}

// Match reports whether id satisfies the pattern.
func (p Pattern) Match(id string) bool {
	if p.re != nil {
		return p.re.MatchString(id)
	}
	return strings.Contains(id, p.substring)
}

// IsRegex reports whether the pattern is a regular expression.
func (p Pattern) IsRegex() bool {
	return p.re != nil
}

func (p Pattern) String() string {
	if p.re != nil {
		return "/" + p.re.String() + "/"
	}
	return p.substring
}

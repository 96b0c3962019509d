// Package filter decides which module ids the pipeline transforms.
package filter

import "go.trai.ch/kiln/internal/core/domain"

// Filter is a compiled include/exclude predicate over module ids.
type Filter struct {
	include []domain.Pattern
	exclude []domain.Pattern
}

// New builds a filter. Patterns are copied so later changes to the slices have no effect.
func New(include, exclude []domain.Pattern) *Filter {
	return &Filter{
		include: append([]domain.Pattern(nil), include...),
		exclude: append([]domain.Pattern(nil), exclude...),
	}
}

// Match reports whether id is selected.
// Any exclude match rejects the id; otherwise an empty include list accepts everything
// and a non-empty one requires at least one match.
func (f *Filter) Match(id string) bool {
	for _, p := range f.exclude {
		if p.Match(id) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for _, p := range f.include {
		if p.Match(id) {
			return true
		}
	}

	return false
}

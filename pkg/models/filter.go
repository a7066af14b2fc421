package models

import (
	"regexp"
	"strings"
)

// FilterKind selects which FilterSpec variant is active
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterText
	FilterPattern
	FilterPredicate
)

// FilterSpec is the console's text filter: none, substring, regexp or predicate
type FilterSpec struct {
	Kind      FilterKind
	Text      string
	Pattern   *regexp.Regexp
	Predicate func(*Entry) bool
}

// NoFilter matches everything
func NoFilter() FilterSpec {
	return FilterSpec{Kind: FilterNone}
}

// TextFilter matches a case-insensitive substring of the entry's plain text
func TextFilter(text string) FilterSpec {
	text = strings.TrimSpace(text)
	if text == "" {
		return NoFilter()
	}
	return FilterSpec{Kind: FilterText, Text: text}
}

// PatternFilter matches a regexp against the lowercased plain text
func PatternFilter(re *regexp.Regexp) FilterSpec {
	if re == nil {
		return NoFilter()
	}
	return FilterSpec{Kind: FilterPattern, Pattern: re}
}

// PredicateFilter delegates matching to fn
func PredicateFilter(fn func(*Entry) bool) FilterSpec {
	if fn == nil {
		return NoFilter()
	}
	return FilterSpec{Kind: FilterPredicate, Predicate: fn}
}

// Match reports whether e passes the filter
func (f FilterSpec) Match(e *Entry) bool {
	switch f.Kind {
	case FilterText:
		return strings.Contains(strings.ToLower(e.Text), strings.ToLower(f.Text))
	case FilterPattern:
		return f.Pattern.MatchString(strings.ToLower(e.Text))
	case FilterPredicate:
		return f.Predicate(e)
	default:
		return true
	}
}

// String describes the filter for status lines
func (f FilterSpec) String() string {
	switch f.Kind {
	case FilterText:
		return f.Text
	case FilterPattern:
		return "/" + f.Pattern.String() + "/"
	case FilterPredicate:
		return "<predicate>"
	default:
		return ""
	}
}

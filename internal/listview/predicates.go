package listview

import (
	"strings"
	"time"
)

// Equals accepts items whose field equals want. It returns nil, meaning no
// filtering, when want is empty or the All sentinel.
func Equals[T any](want string, field func(T) string) Predicate[T] {
	want = strings.TrimSpace(want)
	if want == "" || want == All {
		return nil
	}
	return func(it T) bool { return field(it) == want }
}

// Since accepts items whose date is on or after from. A zero from disables the
// filter; items with a zero date never match an active filter.
func Since[T any](from time.Time, date func(T) time.Time) Predicate[T] {
	if from.IsZero() {
		return nil
	}
	return func(it T) bool {
		d := date(it)
		return !d.IsZero() && !d.Before(from)
	}
}

// Between accepts items whose date lies in [from, to]. Either bound may be
// zero to leave that side open.
func Between[T any](from, to time.Time, date func(T) time.Time) Predicate[T] {
	if from.IsZero() && to.IsZero() {
		return nil
	}
	return func(it T) bool {
		d := date(it)
		if d.IsZero() {
			return false
		}
		if !from.IsZero() && d.Before(from) {
			return false
		}
		if !to.IsZero() && d.After(to) {
			return false
		}
		return true
	}
}

// ContainsFold accepts items where any of the given fields contains term,
// ignoring case and surrounding whitespace.
func ContainsFold[T any](term string, fields ...func(T) string) Predicate[T] {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	return func(it T) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(it)), term) {
				return true
			}
		}
		return false
	}
}

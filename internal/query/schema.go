package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownAttribute is wrapped by Schema.Validate.
var ErrUnknownAttribute = errors.New("unknown query attribute")

// Schema is the queryable attribute set of one entity kind plus the sentinel
// returned when a first-match query finds nothing.
type Schema[T any] struct {
	kind   string
	fields Fields[T]
	unset  func() T
}

// NewSchema declares the attributes of an entity kind.
//
// Precondition: unset must be non-nil and return a usable sentinel value.
// Postcondition: the schema owns a copy of fields.
func NewSchema[T any](kind string, unset func() T, fields Fields[T]) *Schema[T] {
	if unset == nil {
		panic("query.NewSchema: precondition violated: unset must be non-nil")
	}
	own := make(Fields[T], len(fields))
	for k, f := range fields {
		own[k] = f
	}
	return &Schema[T]{kind: kind, fields: own, unset: unset}
}

// Kind returns the entity kind name.
func (s *Schema[T]) Kind() string { return s.kind }

// Keys returns the attribute names in sorted order.
func (s *Schema[T]) Keys() []string {
	keys := make([]string, 0, len(s.fields))
	for k := range s.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is a declared attribute.
func (s *Schema[T]) Has(key string) bool {
	_, ok := s.fields[key]
	return ok
}

// Unset returns a fresh sentinel.
func (s *Schema[T]) Unset() T { return s.unset() }

// Validate reports every constraint key the schema does not declare. Queries
// themselves treat unknown keys as non-matching; Validate is for callers that
// want to reject them up front.
func (s *Schema[T]) Validate(w Where) error {
	var unknown []string
	for k := range w {
		if !s.Has(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%s: %w: %s", s.kind, ErrUnknownAttribute, strings.Join(unknown, ", "))
}

// Match reports whether item satisfies every constraint in w.
func (s *Schema[T]) Match(item T, w Where) bool {
	for key, want := range w {
		f, ok := s.fields[key]
		if !ok {
			return false
		}
		if !f.matches(item, want) {
			return false
		}
	}
	return true
}

// First returns the first item in list order that satisfies w.
//
// Postcondition: never returns the zero value of T when nothing matches; the
// schema's sentinel is returned instead.
func First[T any](s *Schema[T], items []T, w Where) T {
	for _, item := range items {
		if s.Match(item, w) {
			return item
		}
	}
	return s.unset()
}

// All returns every item that satisfies w, in list order. An empty w matches
// every item.
//
// Postcondition: the result is a new slice; it is empty, not nil, when nothing matches.
func All[T any](s *Schema[T], items []T, w Where) []T {
	out := make([]T, 0)
	for _, item := range items {
		if s.Match(item, w) {
			out = append(out, item)
		}
	}
	return out
}

// Lift re-targets every attribute of s through the accessor through, so a
// wrapper kind can be queried by the attributes of the value it wraps.
func Lift[T, U any](s *Schema[U], through func(T) U) Fields[T] {
	out := make(Fields[T], len(s.fields))
	for name, f := range s.fields {
		f := f
		lifted := Field[T]{kind: f.kind}
		switch f.kind {
		case enumField:
			lifted.enum = func(item T) Enumerated { return f.enum(through(item)) }
		case listField:
			lifted.list = func(item T) []any { return f.list(through(item)) }
		default:
			lifted.scalar = func(item T) any { return f.scalar(through(item)) }
		}
		out[name] = lifted
	}
	return out
}

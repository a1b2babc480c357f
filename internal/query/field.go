// Package query resolves structural "match every given attribute" queries
// against entity lists.
//
// Each entity kind declares a Schema: an explicit map from attribute name to an
// accessor. Three accessor kinds exist and each compares differently:
//
//   - Scalar: exact equality. Integer-valued numbers compare by value across
//     Go numeric types, and an entity-valued attribute also matches its
//     template string.
//   - Enum: matches a member with the same name and value, the member's exact
//     name, or the member's integer value.
//   - List: the constraint is a collection that must be a subset of the
//     candidate's collection, ignoring order and duplicates. A non-collection
//     constraint is treated as a one-element collection.
//
// Unknown attribute names never match. Queries do not mutate their input and
// are safe to run concurrently.
package query

import (
	"encoding/json"
	"math"
	"reflect"
)

// Where is a set of attribute constraints keyed by attribute name.
type Where map[string]any

// Enumerated is implemented by enumeration members.
type Enumerated interface {
	EnumName() string
	EnumValue() int
}

// Templated is implemented by entities so collection elements and
// entity-valued attributes can be matched by template string.
type Templated interface {
	TemplateID() string
}

type fieldKind int

const (
	scalarField fieldKind = iota
	enumField
	listField
)

// Field is an accessor for one attribute of T.
type Field[T any] struct {
	kind   fieldKind
	scalar func(T) any
	enum   func(T) Enumerated
	list   func(T) []any
}

// Fields maps attribute names to accessors.
type Fields[T any] map[string]Field[T]

// Scalar declares an attribute compared by equality.
func Scalar[T any, V comparable](get func(T) V) Field[T] {
	return Field[T]{kind: scalarField, scalar: func(item T) any { return get(item) }}
}

// Enum declares an enumeration-valued attribute.
func Enum[T any, E Enumerated](get func(T) E) Field[T] {
	return Field[T]{kind: enumField, enum: func(item T) Enumerated { return get(item) }}
}

// List declares a collection-valued attribute compared with subset semantics.
func List[T any, E comparable](get func(T) []E) Field[T] {
	return Field[T]{kind: listField, list: func(item T) []any {
		items := get(item)
		out := make([]any, len(items))
		for i := range items {
			out[i] = items[i]
		}
		return out
	}}
}

// Set builds a list constraint from typed elements.
func Set[E any](items ...E) []any {
	out := make([]any, len(items))
	for i := range items {
		out[i] = items[i]
	}
	return out
}

func (f Field[T]) matches(item T, want any) bool {
	switch f.kind {
	case enumField:
		return enumMatches(f.enum(item), want)
	case listField:
		return subset(f.list(item), want)
	default:
		return scalarEqual(f.scalar(item), want)
	}
}

// normalize folds every integral number to int64 so that constraints decoded
// from JSON (float64) compare equal to int attributes.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x)
		}
		return x
	case float32:
		return normalize(float64(x))
	case float64:
		if x == math.Trunc(x) && x >= math.MinInt64 && x <= math.MaxInt64 {
			return int64(x)
		}
		return x
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return normalize(f)
		}
		return x.String()
	}
	return v
}

// scalarEqual compares an attribute value with a constraint. have always
// holds a comparable dynamic type, so == cannot panic: interface comparison
// only inspects the values when both dynamic types are identical.
func scalarEqual(have, want any) bool {
	if want == nil {
		return have == nil
	}
	if isCollection(want) {
		return false
	}
	if normalize(have) == normalize(want) {
		return true
	}
	if t, ok := have.(Templated); ok {
		if s, ok := want.(string); ok {
			return t.TemplateID() == s
		}
	}
	if e, ok := have.(Enumerated); ok {
		return enumMatches(e, want)
	}
	return false
}

func enumMatches(have Enumerated, want any) bool {
	if have == nil {
		return false
	}
	switch w := want.(type) {
	case Enumerated:
		return w.EnumName() == have.EnumName() && w.EnumValue() == have.EnumValue()
	case string:
		return w == have.EnumName()
	}
	return normalize(want) == int64(have.EnumValue())
}

func subset(items []any, want any) bool {
	for _, w := range asList(want) {
		found := false
		for _, item := range items {
			if elementEqual(item, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func elementEqual(item, want any) bool {
	if isCollection(want) {
		return false
	}
	return scalarEqual(item, want)
}

// asList spreads a collection constraint into its elements. Any slice or
// array qualifies, so typed lists such as []*Move or []protoenum.Member work
// as well as []any. Only the constraint is inspected this way; attributes are
// always read through their accessors.
func asList(v any) []any {
	switch x := v.(type) {
	case []any:
		return x
	case []string:
		return Set(x...)
	case []int:
		return Set(x...)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}

func isCollection(v any) bool {
	switch v.(type) {
	case []any, []string, []int, map[string]any, Where:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

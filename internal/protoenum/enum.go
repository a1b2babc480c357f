// Package protoenum extracts enumerations from protocol-definition text.
//
// The grammar is the enum subset of a proto file: `enum Name { IDENT = int; }`
// blocks, optionally nested inside `message Name { ... }` blocks. Parsed
// enumerations are plain name/value tables; no Go types are generated.
package protoenum

import (
	"strconv"
	"strings"
)

// Member is one enumeration entry carried by value.
type Member struct {
	Name  string
	Value int
}

// EnumName returns the symbolic name of the member.
func (m Member) EnumName() string { return m.Name }

// EnumValue returns the integer value of the member.
func (m Member) EnumValue() int { return m.Value }

// String returns the symbolic name, or the value when the name is unknown.
func (m Member) String() string {
	if m.Name == "" {
		return strconv.Itoa(m.Value)
	}
	return m.Name
}

// Enum is an insertion-ordered enumeration.
// An Enum is immutable after Parse returns it.
type Enum struct {
	name    string
	members []Member
	byName  map[string]int
	byValue map[int]string
}

func newEnum(name string) *Enum {
	return &Enum{
		name:    name,
		byName:  make(map[string]int),
		byValue: make(map[int]string),
	}
}

func (e *Enum) add(name string, value int) {
	if _, dup := e.byName[name]; dup {
		// A redeclared name keeps its position and takes the later value.
		for i := range e.members {
			if e.members[i].Name == name {
				e.members[i].Value = value
			}
		}
	} else {
		e.members = append(e.members, Member{Name: name, Value: value})
	}
	e.byName[name] = value
	if _, ok := e.byValue[value]; !ok {
		e.byValue[value] = name
	}
}

// Name returns the enum name that was requested.
func (e *Enum) Name() string { return e.name }

// Len returns the number of distinct names.
func (e *Enum) Len() int { return len(e.members) }

// Empty reports whether the enum block was missing or had no entries.
func (e *Enum) Empty() bool { return len(e.members) == 0 }

// Members returns the entries in declaration order.
//
// Postcondition: the returned slice is a copy.
func (e *Enum) Members() []Member {
	out := make([]Member, len(e.members))
	copy(out, e.members)
	return out
}

// Names returns the name→value mapping.
func (e *Enum) Names() map[string]int {
	out := make(map[string]int, len(e.byName))
	for k, v := range e.byName {
		out[k] = v
	}
	return out
}

// Values returns the reverse value→name mapping. Where several names alias one
// value the first declared name wins.
func (e *Enum) Values() map[int]string {
	out := make(map[int]string, len(e.byValue))
	for k, v := range e.byValue {
		out[k] = v
	}
	return out
}

// Value returns the value declared for name.
//
// Postcondition: ok is false and value is 0 when name is not declared.
func (e *Enum) Value(name string) (value int, ok bool) {
	value, ok = e.byName[name]
	return value, ok
}

// Get returns the value declared for name, or 0.
func (e *Enum) Get(name string) int {
	return e.byName[name]
}

// Lookup returns the member declared as name.
func (e *Enum) Lookup(name string) (Member, bool) {
	v, ok := e.byName[name]
	if !ok {
		return Member{}, false
	}
	return Member{Name: name, Value: v}, true
}

// Member returns the member for value. Unknown values yield a member with an
// empty name so the value is never lost.
func (e *Enum) Member(value int) Member {
	return Member{Name: e.byValue[value], Value: value}
}

// Match resolves v against the enum: strings match names case-insensitively,
// integers and integral floats match values, and a Member matches itself when
// its value is declared.
//
// Postcondition: ok is false when nothing matches; the zero Member is returned.
func (e *Enum) Match(v any) (Member, bool) {
	switch x := v.(type) {
	case Member:
		if name, ok := e.byValue[x.Value]; ok {
			return Member{Name: name, Value: x.Value}, true
		}
	case string:
		if m, ok := e.Lookup(x); ok {
			return m, true
		}
		upper := strings.ToUpper(x)
		for _, m := range e.members {
			if strings.ToUpper(m.Name) == upper {
				return m, true
			}
		}
		if n, err := strconv.Atoi(x); err == nil {
			return e.Match(n)
		}
	case int:
		if name, ok := e.byValue[x]; ok {
			return Member{Name: name, Value: x}, true
		}
	case int64:
		return e.Match(int(x))
	case float64:
		if x == float64(int(x)) {
			return e.Match(int(x))
		}
	}
	return Member{}, false
}

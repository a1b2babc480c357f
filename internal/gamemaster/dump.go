// Package gamemaster exposes the raw configuration dump as an ordered list of
// records addressed by their templateId.
package gamemaster

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/tidwall/gjson"
)

// ErrNotArray is returned when the dump is valid JSON but not an array.
var ErrNotArray = errors.New("game master dump is not a JSON array")

// Record is one `{templateId, data}` entry of the dump.
type Record struct {
	TemplateID string
	// Data is the record's "data" object. Individual settings blocks are
	// reached through Settings.
	Data gjson.Result
}

// Settings returns the named settings block of the record, e.g. "pokemonSettings".
// An empty name returns the whole data object.
//
// Postcondition: a missing block yields a Result whose Exists() is false.
func (r Record) Settings(name string) gjson.Result {
	if name == "" {
		return r.Data
	}
	return r.Data.Get(gjson.Escape(name))
}

// Dump is the parsed configuration dump. It is immutable after Parse.
type Dump struct {
	records []Record
}

// Parse decodes a dump.
//
// Postcondition: Returns a Dump preserving record order, or an error when the
// payload is not a JSON array. Entries without a templateId are skipped.
func Parse(data []byte) (*Dump, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("game master dump is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, ErrNotArray
	}

	d := &Dump{}
	root.ForEach(func(_, entry gjson.Result) bool {
		id := entry.Get("templateId").String()
		if id == "" {
			return true
		}
		d.records = append(d.records, Record{TemplateID: id, Data: entry.Get("data")})
		return true
	})
	return d, nil
}

// Len returns the number of records.
func (d *Dump) Len() int { return len(d.records) }

// Records returns every record in dump order.
func (d *Dump) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Select returns the records whose templateId matches pattern, in dump order.
func (d *Dump) Select(pattern *regexp.Regexp) []Record {
	var out []Record
	for _, r := range d.records {
		if pattern.MatchString(r.TemplateID) {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the first record with exactly templateID.
func (d *Dump) Find(templateID string) (Record, bool) {
	for _, r := range d.records {
		if r.TemplateID == templateID {
			return r, true
		}
	}
	return Record{}, false
}

// MustCompile is regexp.MustCompile with the pattern named in the panic, for
// package-level routing tables.
func MustCompile(pattern string) *regexp.Regexp {
	re, err := regexp.Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("gamemaster: invalid route %q: %v", pattern, err))
	}
	return re
}

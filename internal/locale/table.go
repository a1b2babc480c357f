// Package locale builds the flat key→text lookup used to name catalog
// entities.
package locale

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Missing is returned by Table.Get for unknown keys.
const Missing = "?"

// Format identifies the layout of a locale resource.
type Format string

const (
	// FormatJSON is an object whose "data" field is a flat [k0, v0, k1, v1, ...] array.
	FormatJSON Format = "json"
	// FormatText is line-tagged text: "RESOURCE ID: key" lines paired
	// positionally with "TEXT: value" lines.
	FormatText Format = "text"
)

const (
	resourceIDMarker = "RESOURCE ID:"
	textMarker       = "TEXT:"
)

// Resource is one raw locale payload.
type Resource struct {
	Format Format
	Body   []byte
}

// Table is a case-insensitive key→text lookup. It is immutable after Build.
type Table struct {
	entries map[string]string
}

// Build merges resources in order into one table. Later resources override
// earlier ones on key collisions.
//
// Postcondition: Returns a table whose keys are lowercased, or the first
// resource decoding error.
func Build(resources ...Resource) (*Table, error) {
	t := &Table{entries: make(map[string]string)}
	for i, r := range resources {
		var err error
		switch r.Format {
		case FormatJSON:
			err = t.mergeJSON(r.Body)
		case FormatText:
			err = t.mergeText(r.Body)
		default:
			err = fmt.Errorf("unknown locale format %q", r.Format)
		}
		if err != nil {
			return nil, fmt.Errorf("locale resource %d: %w", i, err)
		}
	}
	return t, nil
}

func (t *Table) mergeJSON(body []byte) error {
	if !gjson.ValidBytes(body) {
		return errors.New("invalid JSON")
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return errors.New(`missing "data" array`)
	}
	items := data.Array()
	for i := 0; i+1 < len(items); i += 2 {
		t.entries[strings.ToLower(items[i].String())] = items[i+1].String()
	}
	return nil
}

func (t *Table) mergeText(body []byte) error {
	var keys, values []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if _, after, ok := strings.Cut(line, resourceIDMarker); ok {
			keys = append(keys, strings.TrimSpace(after))
		} else if _, after, ok := strings.Cut(line, textMarker); ok {
			values = append(values, strings.TrimSpace(after))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning text resource: %w", err)
	}
	for i := 0; i < len(keys) && i < len(values); i++ {
		t.entries[strings.ToLower(keys[i])] = values[i]
	}
	return nil
}

// Get returns the text for key, ignoring case.
//
// Postcondition: Returns Missing when key is unknown; never fails.
func (t *Table) Get(key string) string {
	if t == nil {
		return Missing
	}
	if v, ok := t.entries[strings.ToLower(key)]; ok {
		return v
	}
	return Missing
}

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	if t == nil {
		return false
	}
	_, ok := t.entries[strings.ToLower(key)]
	return ok
}

// Len returns the number of keys.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

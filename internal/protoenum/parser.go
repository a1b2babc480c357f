package protoenum

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LineError reports an entry inside a located enum block that does not have
// the form `NAME = int;`. It aborts the parse of that enum only.
type LineError struct {
	Enum string
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("enum %s: line %d %q: %v", e.Enum, e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("enum %s: line %d %q: expected NAME = int;", e.Enum, e.Line, e.Text)
}

func (e *LineError) Unwrap() error { return e.Err }

var topLevelMessage = regexp.MustCompile(`(?m)^message\s`)

// Parse extracts enumName from text. When message is non-empty the search is
// confined to that message's block, which runs from `message <message> {` to
// the next top-level `message` keyword or the end of text.
//
// Postcondition: A missing message or enum block yields an empty Enum and a nil
// error. A malformed entry inside a located block yields a *LineError.
func Parse(text, enumName, message string) (*Enum, error) {
	out := newEnum(enumName)

	if message != "" {
		scoped, ok := narrowToMessage(text, message)
		if !ok {
			return out, nil
		}
		text = scoped
	}

	body, ok := enumBody(text, enumName)
	if !ok {
		return out, nil
	}

	for _, st := range statements(body) {
		line := st.text
		if strings.Trim(line, "{}") == "" {
			continue
		}
		if strings.HasPrefix(line, "option ") || strings.HasPrefix(line, "reserved ") {
			continue
		}

		name, value, found := strings.Cut(line, "=")
		if !found {
			return nil, &LineError{Enum: enumName, Line: st.line, Text: line}
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if idx := strings.IndexByte(value, '['); idx >= 0 {
			value = strings.TrimSpace(value[:idx])
		}
		if name == "" {
			return nil, &LineError{Enum: enumName, Line: st.line, Text: line}
		}
		n, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return nil, &LineError{Enum: enumName, Line: st.line, Text: line, Err: err}
		}
		out.add(name, int(n))
	}
	return out, nil
}

// ParseReverse is Parse in reverse mode: the result maps value to name.
func ParseReverse(text, enumName, message string) (map[int]string, error) {
	e, err := Parse(text, enumName, message)
	if err != nil {
		return nil, err
	}
	return e.Values(), nil
}

type statement struct {
	text string
	line int
}

// statements splits an enum body on ';' after dropping tabs and line
// comments. A statement may span lines; line is where it starts. A trailing
// statement without ';' is kept.
func statements(body string) []statement {
	var out []statement
	var pending strings.Builder
	start := 0
	flush := func() {
		if text := strings.TrimSpace(pending.String()); text != "" {
			out = append(out, statement{text: text, line: start})
		}
		pending.Reset()
		start = 0
	}
	for i, raw := range strings.Split(body, "\n") {
		line := strings.ReplaceAll(raw, "\t", " ")
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		parts := strings.Split(line, ";")
		for j, part := range parts {
			if start == 0 && strings.TrimSpace(part) != "" {
				start = i + 1
			}
			pending.WriteString(part)
			pending.WriteByte(' ')
			if j < len(parts)-1 {
				flush()
			}
		}
	}
	flush()
	return out
}

func narrowToMessage(text, message string) (string, bool) {
	open := regexp.MustCompile(`(?i)\bmessage\s+` + regexp.QuoteMeta(message) + `\s*\{`)
	loc := open.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	if next := topLevelMessage.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}
	return rest, true
}

func enumBody(text, enumName string) (string, bool) {
	block := regexp.MustCompile(`(?is)\benum\s+` + regexp.QuoteMeta(enumName) + `\s*\{(.*?)\}`)
	m := block.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

package protoenum

import "sync"

type cacheKey struct {
	enum    string
	message string
}

// Registry parses enumerations out of one source text and caches each
// (enum, message) pair. It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	text   string
	cache  map[cacheKey]*Enum
	parses int
}

// NewRegistry returns a Registry over text.
//
// Postcondition: the cache is empty.
func NewRegistry(text string) *Registry {
	return &Registry{text: text, cache: make(map[cacheKey]*Enum)}
}

// Enum returns the named enumeration, parsing it on first use.
//
// Postcondition: repeated calls with the same pair return the same *Enum
// without re-parsing. Parse errors are not cached.
func (r *Registry) Enum(name, message string) (*Enum, error) {
	key := cacheKey{enum: name, message: message}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.cache[key]; ok {
		return e, nil
	}
	r.parses++
	e, err := Parse(r.text, name, message)
	if err != nil {
		return nil, err
	}
	r.cache[key] = e
	return e, nil
}

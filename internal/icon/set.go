// Package icon turns catalog entities into icon URLs for a chosen icon set and
// reads the icon asset manifest.
package icon

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknownSet is returned by Lookup for an undeclared icon set name.
var ErrUnknownSet = errors.New("unknown icon set")

// Convention is the file naming scheme of an icon set.
type Convention string

const (
	// ConventionPokeMiners addresses creature icons directly by asset key.
	ConventionPokeMiners Convention = "pokeminers"
	// ConventionPMSF finds creature icons by searching the set's manifest.
	ConventionPMSF Convention = "pmsf"
)

// Set is one icon set.
type Set struct {
	Name       string     `yaml:"name"`
	ID         int        `yaml:"id"`
	Convention Convention `yaml:"convention"`
	URL        string     `yaml:"url"`
}

type setFile struct {
	Sets []Set `yaml:"sets"`
}

//go:embed iconsets.yaml
var setsYAML []byte

var (
	loadOnce sync.Once
	loaded   []Set
	loadErr  error
)

// Sets returns every declared icon set in declaration order.
//
// Postcondition: Returns a copy of the declared sets or the decoding error.
func Sets() ([]Set, error) {
	loadOnce.Do(func() {
		loaded, loadErr = decodeSets(setsYAML)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return append([]Set(nil), loaded...), nil
}

func decodeSets(data []byte) ([]Set, error) {
	var f setFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding icon sets: %w", err)
	}
	for i, s := range f.Sets {
		if s.Name == "" || s.URL == "" {
			return nil, fmt.Errorf("icon set %d: name and url must not be empty", i)
		}
		switch s.Convention {
		case ConventionPokeMiners, ConventionPMSF:
		default:
			return nil, fmt.Errorf("icon set %s: unknown convention %q", s.Name, s.Convention)
		}
	}
	return f.Sets, nil
}

// Lookup returns the set with the given name, ignoring case.
func Lookup(name string) (Set, error) {
	sets, err := Sets()
	if err != nil {
		return Set{}, err
	}
	for _, s := range sets {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return Set{}, fmt.Errorf("%w: %q", ErrUnknownSet, name)
}

// Package catalog builds the cross-referenced entity graph from a resource
// bundle and publishes it as immutable snapshots.
//
// A Snapshot owns every entity list. Entities reference each other through
// plain pointers that never leave their snapshot. A Catalog holds the
// currently published snapshot and rebuilds it when it goes stale.
package catalog

import (
	"github.com/cory-johannsen/pogodata/internal/locale"
)

// Unset is the template of every sentinel entity.
const Unset = "UNSET"

// Base holds the identity shared by every entity kind.
type Base struct {
	ID       int    `json:"id" yaml:"id"`
	Template string `json:"template" yaml:"template"`
	Name     string `json:"name" yaml:"name"`
}

func unsetBase() Base {
	return Base{ID: 0, Template: Unset, Name: locale.Missing}
}

// TemplateID returns the symbolic key of the entity.
func (b Base) TemplateID() string { return b.Template }

// Found reports whether the entity is a real catalog entry rather than a
// sentinel.
func (b Base) Found() bool { return b.Template != Unset }

func (b Base) String() string { return b.Template }

// Entity is implemented by everything a quest reward can point at.
type Entity interface {
	TemplateID() string
	Found() bool
}

// GenericReward marks a reward that has no entity behind it, e.g. stardust.
type GenericReward struct{}

// TemplateID returns "GENERIC".
func (GenericReward) TemplateID() string { return "GENERIC" }

// Found is always true: a generic reward is present, it just has no entity.
func (GenericReward) Found() bool { return true }

func (GenericReward) String() string { return "GenericReward" }

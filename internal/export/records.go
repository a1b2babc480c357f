package export

import (
	"time"

	"github.com/cory-johannsen/pogodata/internal/catalog"
	"github.com/cory-johannsen/pogodata/internal/icon"
)

// CreatureRecord is the exported form of a creature.
type CreatureRecord struct {
	catalog.Base   `yaml:",inline"`
	BaseTemplate   string        `yaml:"base_template"`
	Kind           string        `yaml:"kind"`
	Form           int           `yaml:"form,omitempty"`
	Costume        string        `yaml:"costume,omitempty"`
	TempEvolution  string        `yaml:"temp_evolution,omitempty"`
	Family         string        `yaml:"family,omitempty"`
	Stats          catalog.Stats `yaml:"stats"`
	Types          []string      `yaml:"types"`
	QuickMoves     []string      `yaml:"quick_moves,omitempty"`
	ChargeMoves    []string      `yaml:"charge_moves,omitempty"`
	Evolutions     []string      `yaml:"evolutions,omitempty"`
	TempEvolutions []string      `yaml:"temp_evolutions,omitempty"`
	Asset          string        `yaml:"asset"`
	Icon           string        `yaml:"icon,omitempty"`
}

// MoveRecord is the exported form of a move.
type MoveRecord struct {
	catalog.Base  `yaml:",inline"`
	Type          string  `yaml:"type"`
	Power         float64 `yaml:"power"`
	Energy        int     `yaml:"energy"`
	DurationTurns int     `yaml:"duration_turns,omitempty"`
}

// TypeRecord is the exported form of a type.
type TypeRecord struct {
	catalog.Base `yaml:",inline"`
	Icon         string `yaml:"icon,omitempty"`
}

// ItemRecord is the exported form of an item.
type ItemRecord struct {
	catalog.Base `yaml:",inline"`
	Type         string               `yaml:"type"`
	Category     string               `yaml:"category"`
	MinLevel     int                  `yaml:"min_level"`
	FoodEffects  []catalog.FoodEffect `yaml:"food_effects,omitempty"`
	Icon         string               `yaml:"icon"`
}

// WeatherRecord is the exported form of a weather condition.
type WeatherRecord struct {
	catalog.Base `yaml:",inline"`
	Boosts       []string `yaml:"boosts"`
	Icon         string   `yaml:"icon,omitempty"`
}

// GuardRecord is the exported form of a guard character.
type GuardRecord struct {
	catalog.Base `yaml:",inline"`
	Gender       string     `yaml:"gender"`
	Boss         bool       `yaml:"boss"`
	Type         string     `yaml:"type,omitempty"`
	Active       bool       `yaml:"active"`
	Team         [][]string `yaml:"team,omitempty"`
	Rewards      []string   `yaml:"rewards,omitempty"`
}

// RewardRecord is the exported form of a quest reward.
type RewardRecord struct {
	Kind   string `yaml:"kind"`
	Entity string `yaml:"entity,omitempty"`
	Amount int    `yaml:"amount,omitempty"`
}

// QuestRecord is the exported form of a quest.
type QuestRecord struct {
	catalog.Base `yaml:",inline"`
	Task         string         `yaml:"task"`
	Type         string         `yaml:"type"`
	Rewards      []RewardRecord `yaml:"rewards"`
}

// RaidRecord is the exported form of a raid entry.
type RaidRecord struct {
	Level    int    `yaml:"level"`
	Creature string `yaml:"creature"`
	Name     string `yaml:"name"`
	Icon     string `yaml:"icon,omitempty"`
}

// EventRecord is the exported form of an event.
type EventRecord struct {
	catalog.Base `yaml:",inline"`
	Type         string     `yaml:"type"`
	Start        *time.Time `yaml:"start,omitempty"`
	End          *time.Time `yaml:"end,omitempty"`
	Spawns       []string   `yaml:"spawns,omitempty"`
	Eggs         []string   `yaml:"eggs,omitempty"`
	Raids        []string   `yaml:"raids,omitempty"`
	Shinies      []string   `yaml:"shinies,omitempty"`
	Bonuses      []string   `yaml:"bonuses,omitempty"`
	Features     []string   `yaml:"features,omitempty"`
}

// creatureRef names a creature unambiguously within an export.
func creatureRef(c *catalog.Creature) string {
	if c.Kind == catalog.VariantTempEvolution {
		return c.Template + "@" + c.TempEvolution.Name
	}
	if c.CostumeID() != 0 {
		return c.Template + "@" + c.Costume().Name
	}
	return c.Template
}

func creatureRefs(cs []*catalog.Creature) []string {
	if len(cs) == 0 {
		return nil
	}
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = creatureRef(c)
	}
	return out
}

func templates[E interface{ TemplateID() string }](es []E) []string {
	if len(es) == 0 {
		return nil
	}
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.TemplateID()
	}
	return out
}

func creatureRecord(c *catalog.Creature, icons *icon.Resolver) CreatureRecord {
	rec := CreatureRecord{
		Base:           c.Base,
		BaseTemplate:   c.BaseTemplate,
		Kind:           c.Kind.String(),
		Form:           c.Form,
		Family:         c.Family,
		Stats:          c.Stats,
		Types:          templates(c.Types()),
		QuickMoves:     templates(c.QuickMoves()),
		ChargeMoves:    templates(c.ChargeMoves()),
		Evolutions:     creatureRefs(c.Evolutions()),
		TempEvolutions: creatureRefs(c.TempEvolutions()),
		Asset:          c.Asset(),
	}
	if c.CostumeID() != 0 {
		rec.Costume = c.Costume().Name
	}
	if c.TempEvolution.Value != 0 {
		rec.TempEvolution = c.TempEvolution.Name
	}
	if icons != nil {
		rec.Icon = icons.Creature(c)
	}
	return rec
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/pogodata/internal/locale"
	"github.com/cory-johannsen/pogodata/internal/protoenum"
	"github.com/cory-johannsen/pogodata/internal/query"
	"github.com/cory-johannsen/pogodata/internal/source"
)

// Snapshot is one fully built catalog generation. It is never mutated after
// Build returns it, so any number of goroutines may read it.
type Snapshot struct {
	// ID identifies the build generation.
	ID uuid.UUID
	// BuiltAt is when the build finished.
	BuiltAt time.Time

	bundle *source.Bundle
	enums  *protoenum.Registry
	text   *locale.Table

	types     []*Type
	items     []*Item
	weather   []*Weather
	moves     []*Move
	creatures []*Creature
	quests    []*Quest
	raids     *Raids
	guards    []*GuardCharacter
	events    []*Event
}

// emptySnapshot answers every query with a sentinel. It stands in for a
// catalog that has never been built.
func emptySnapshot() *Snapshot {
	return &Snapshot{
		bundle: &source.Bundle{},
		enums:  protoenum.NewRegistry(""),
		text:   &locale.Table{},
		raids:  newRaids(),
	}
}

// Bundle returns the raw inputs the snapshot was built from.
func (s *Snapshot) Bundle() *source.Bundle { return s.bundle }

// Encode returns the snapshot's byte form: the encoded bundle.
func (s *Snapshot) Encode() ([]byte, error) { return s.bundle.Encode() }

// Counts returns the size of every entity list keyed by kind.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		"types":     len(s.types),
		"items":     len(s.items),
		"weather":   len(s.weather),
		"moves":     len(s.moves),
		"creatures": len(s.creatures),
		"quests":    len(s.quests),
		"raids":     s.raids.Len(),
		"guards":    len(s.guards),
		"events":    len(s.events),
	}
}

// Locale returns the text for key, or "?".
func (s *Snapshot) Locale(key string) string { return s.text.Get(key) }

// Enum returns an enumeration parsed from the snapshot's protocol source.
// message scopes the search to one message block when non-empty.
func (s *Snapshot) Enum(name, message string) (*protoenum.Enum, error) {
	return s.enums.Enum(name, message)
}

// Creature returns the first creature matching w, or the sentinel.
func (s *Snapshot) Creature(w query.Where) *Creature {
	return query.First(CreatureSchema, s.creatures, w)
}

// AllCreatures returns every creature matching w.
func (s *Snapshot) AllCreatures(w query.Where) []*Creature {
	return query.All(CreatureSchema, s.creatures, w)
}

// Move returns the first move matching w, or the sentinel.
func (s *Snapshot) Move(w query.Where) *Move { return query.First(MoveSchema, s.moves, w) }

// AllMoves returns every move matching w.
func (s *Snapshot) AllMoves(w query.Where) []*Move { return query.All(MoveSchema, s.moves, w) }

// Type returns the first type matching w, or the sentinel.
func (s *Snapshot) Type(w query.Where) *Type { return query.First(TypeSchema, s.types, w) }

// AllTypes returns every type matching w.
func (s *Snapshot) AllTypes(w query.Where) []*Type { return query.All(TypeSchema, s.types, w) }

// Item returns the first item matching w, or the sentinel.
func (s *Snapshot) Item(w query.Where) *Item { return query.First(ItemSchema, s.items, w) }

// AllItems returns every item matching w.
func (s *Snapshot) AllItems(w query.Where) []*Item { return query.All(ItemSchema, s.items, w) }

// Weather returns the first weather condition matching w, or the sentinel.
func (s *Snapshot) Weather(w query.Where) *Weather {
	return query.First(WeatherSchema, s.weather, w)
}

// AllWeather returns every weather condition matching w.
func (s *Snapshot) AllWeather(w query.Where) []*Weather {
	return query.All(WeatherSchema, s.weather, w)
}

// Guard returns the first guard character matching w, or the sentinel.
func (s *Snapshot) Guard(w query.Where) *GuardCharacter {
	return query.First(GuardSchema, s.guards, w)
}

// AllGuards returns every guard character matching w.
func (s *Snapshot) AllGuards(w query.Where) []*GuardCharacter {
	return query.All(GuardSchema, s.guards, w)
}

// Quest returns the first quest matching w, or the sentinel.
func (s *Snapshot) Quest(w query.Where) *Quest { return query.First(QuestSchema, s.quests, w) }

// AllQuests returns every quest matching w.
func (s *Snapshot) AllQuests(w query.Where) []*Quest { return query.All(QuestSchema, s.quests, w) }

// Raid returns the first raid entry matching w, or the sentinel.
func (s *Snapshot) Raid(w query.Where) *RaidEntry {
	return query.First(RaidSchema, s.raids.Entries(), w)
}

// AllRaids returns every raid entry matching w, level by level.
func (s *Snapshot) AllRaids(w query.Where) []*RaidEntry {
	return query.All(RaidSchema, s.raids.Entries(), w)
}

// Raids returns the raid roster grouped by level.
func (s *Snapshot) Raids() *Raids { return s.raids }

// Event returns the first event matching w, or the sentinel.
func (s *Snapshot) Event(w query.Where) *Event { return query.First(EventSchema, s.events, w) }

// AllEvents returns every event matching w.
func (s *Snapshot) AllEvents(w query.Where) []*Event { return query.All(EventSchema, s.events, w) }

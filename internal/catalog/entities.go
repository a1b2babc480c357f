package catalog

import (
	"time"

	"github.com/tidwall/gjson"

	"github.com/cory-johannsen/pogodata/internal/protoenum"
)

// Type is a creature/move type.
type Type struct {
	Base
	// attack maps a defending type template to the damage multiplier this type
	// deals against it.
	attack map[string]float64
}

func unsetType() *Type { return &Type{Base: unsetBase()} }

// Multiplier returns the damage multiplier of this type attacking defender.
// Pairs with no recorded scalar are neutral.
func (t *Type) Multiplier(defender *Type) float64 {
	if defender == nil {
		return 1
	}
	if m, ok := t.attack[defender.Template]; ok {
		return m
	}
	return 1
}

// Move is a combat move.
type Move struct {
	Base
	Type          *Type
	Power         float64
	Energy        int
	DurationTurns int
	raw           gjson.Result
}

func unsetMove() *Move { return &Move{Base: unsetBase(), Type: unsetType()} }

// Raw returns the move's settings block.
func (m *Move) Raw() gjson.Result { return m.raw }

// FoodEffect is one effect of a berry-like item.
type FoodEffect struct {
	Effect  string
	Percent float64
}

// Item is an inventory item.
type Item struct {
	Base
	Type        protoenum.Member
	Category    protoenum.Member
	MinLevel    int
	FoodEffects []FoodEffect
	raw         gjson.Result
}

func unsetItem() *Item { return &Item{Base: unsetBase()} }

// Raw returns the item's settings block.
func (i *Item) Raw() gjson.Result { return i.raw }

// Weather is a weather condition and the types it boosts.
type Weather struct {
	Base
	Boosts []*Type
	raw    gjson.Result
}

func unsetWeather() *Weather { return &Weather{Base: unsetBase()} }

// GuardCharacter is an invasion NPC with its current roster.
type GuardCharacter struct {
	Base
	Gender Gender
	Boss   bool
	Type   *Type
	Active bool
	// Team holds the candidate creatures of each lineup slot.
	Team            [][]*Creature
	RewardPositions []int
	// Rewards are the creatures of every reward slot, in slot order.
	Rewards []*Creature
	raw     gjson.Result
}

func unsetGuard() *GuardCharacter {
	return &GuardCharacter{Base: unsetBase(), Type: unsetType()}
}

// Reward is one quest reward.
type Reward struct {
	// Kind is the reward member of the Type enum scoped to QuestRewardProto.
	Kind protoenum.Member
	// Entity is a *Creature, an *Item or GenericReward.
	Entity Entity
	// Amount is set for countable rewards and 0 otherwise.
	Amount int
}

// Quest is a field research task and its rewards. Quests have no upstream
// key: ID is the feed position from 1, Template is "QUEST_<ID>" and Name is
// the task text.
type Quest struct {
	Base
	Task    string
	Type    QuestType
	Rewards []Reward
}

func unsetQuest() *Quest { return &Quest{Base: unsetBase()} }

// Found reports whether the quest is a real catalog entry.
func (q *Quest) Found() bool { return q.Type != QuestUnset }

func (q *Quest) String() string { return q.Task }

// RaidEntry is a raid boss at one level.
type RaidEntry struct {
	Level    int
	Creature *Creature
}

func unsetRaid() *RaidEntry { return &RaidEntry{Creature: unsetCreature()} }

// Found reports whether the entry is a real catalog entry.
func (r *RaidEntry) Found() bool { return r.Creature.Found() }

// Raids is the raid roster: levels in feed order, each with its bosses.
type Raids struct {
	levels  []int
	byLevel map[int][]*RaidEntry
}

func newRaids() *Raids { return &Raids{byLevel: make(map[int][]*RaidEntry)} }

func (r *Raids) add(level int, c *Creature) {
	if _, ok := r.byLevel[level]; !ok {
		r.levels = append(r.levels, level)
	}
	r.byLevel[level] = append(r.byLevel[level], &RaidEntry{Level: level, Creature: c})
}

// Levels returns the levels in order of first appearance.
func (r *Raids) Levels() []int { return append([]int(nil), r.levels...) }

// Level returns the bosses of one level, or an empty slice.
func (r *Raids) Level(level int) []*RaidEntry {
	return append([]*RaidEntry{}, r.byLevel[level]...)
}

// Entries flattens the roster level by level.
func (r *Raids) Entries() []*RaidEntry {
	var out []*RaidEntry
	for _, l := range r.levels {
		out = append(out, r.byLevel[l]...)
	}
	return out
}

// Len returns the number of entries across all levels.
func (r *Raids) Len() int {
	n := 0
	for _, entries := range r.byLevel {
		n += len(entries)
	}
	return n
}

// EventBonus is one bonus active during an event.
type EventBonus struct {
	Text  string
	Type  EventBonusType
	Value float64
}

// Event is a time-limited in-game event. ID is the feed position from 1 and
// Template is derived from the name, e.g. "EVENT_FIRE_WEEK".
type Event struct {
	Base
	Type EventType
	// Start and End are zero when the feed omits them.
	Start time.Time
	End   time.Time

	Spawns  []*Creature
	Eggs    []*Creature
	Raids   []*Creature
	Shinies []*Creature

	Bonuses        []EventBonus
	Features       []string
	HasQuests      bool
	HasSpawnpoints bool
}

func unsetEvent() *Event { return &Event{Base: unsetBase()} }

// Active reports whether t lies within the event. Open bounds are unbounded.
func (e *Event) Active(t time.Time) bool {
	if !e.Start.IsZero() && t.Before(e.Start) {
		return false
	}
	if !e.End.IsZero() && !t.Before(e.End) {
		return false
	}
	return true
}

func (e *Event) String() string { return e.Name }

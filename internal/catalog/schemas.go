package catalog

import (
	"github.com/cory-johannsen/pogodata/internal/protoenum"
	"github.com/cory-johannsen/pogodata/internal/query"
)

func baseFields[T any](get func(T) Base) query.Fields[T] {
	return query.Fields[T]{
		"id":       query.Scalar(func(v T) int { return get(v).ID }),
		"template": query.Scalar(func(v T) string { return get(v).Template }),
		"name":     query.Scalar(func(v T) string { return get(v).Name }),
	}
}

func withFields[T any](fields query.Fields[T], extra query.Fields[T]) query.Fields[T] {
	for k, f := range extra {
		fields[k] = f
	}
	return fields
}

// TypeSchema declares the queryable attributes of types.
var TypeSchema = query.NewSchema("type", unsetType,
	baseFields(func(t *Type) Base { return t.Base }))

// MoveSchema declares the queryable attributes of moves.
var MoveSchema = query.NewSchema("move", unsetMove, withFields(
	baseFields(func(m *Move) Base { return m.Base }),
	query.Fields[*Move]{
		"type":           query.Scalar(func(m *Move) *Type { return m.Type }),
		"power":          query.Scalar(func(m *Move) float64 { return m.Power }),
		"energy":         query.Scalar(func(m *Move) int { return m.Energy }),
		"duration_turns": query.Scalar(func(m *Move) int { return m.DurationTurns }),
	},
))

// ItemSchema declares the queryable attributes of items.
var ItemSchema = query.NewSchema("item", unsetItem, withFields(
	baseFields(func(i *Item) Base { return i.Base }),
	query.Fields[*Item]{
		"type":      query.Enum(func(i *Item) protoenum.Member { return i.Type }),
		"category":  query.Enum(func(i *Item) protoenum.Member { return i.Category }),
		"min_level": query.Scalar(func(i *Item) int { return i.MinLevel }),
	},
))

// WeatherSchema declares the queryable attributes of weather conditions.
var WeatherSchema = query.NewSchema("weather", unsetWeather, withFields(
	baseFields(func(w *Weather) Base { return w.Base }),
	query.Fields[*Weather]{
		"boosts": query.List(func(w *Weather) []*Type { return w.Boosts }),
	},
))

func tempEvolution(c *Creature) protoenum.Member { return c.TempEvolution }

// CreatureSchema declares the queryable attributes of creatures. "evolution"
// is an alias of "temp_evolution" as spelled by the raid feed.
var CreatureSchema = query.NewSchema("creature", unsetCreature, withFields(
	baseFields(func(c *Creature) Base { return c.Base }),
	query.Fields[*Creature]{
		"form":            query.Scalar(func(c *Creature) int { return c.Form }),
		"base_template":   query.Scalar(func(c *Creature) string { return c.BaseTemplate }),
		"family":          query.Scalar(func(c *Creature) string { return c.Family }),
		"variant_kind":    query.Enum(func(c *Creature) VariantKind { return c.Kind }),
		"costume":         query.Enum(func(c *Creature) protoenum.Member { return c.costume }),
		"temp_evolution":  query.Enum(tempEvolution),
		"evolution":       query.Enum(tempEvolution),
		"asset":           query.Scalar(func(c *Creature) string { return c.asset }),
		"asset_value":     query.Scalar(func(c *Creature) string { return c.assetValue }),
		"asset_suffix":    query.Scalar(func(c *Creature) string { return c.assetSuffix }),
		"attack":          query.Scalar(func(c *Creature) int { return c.Stats.Attack }),
		"defense":         query.Scalar(func(c *Creature) int { return c.Stats.Defense }),
		"stamina":         query.Scalar(func(c *Creature) int { return c.Stats.Stamina }),
		"stat_total":      query.Scalar(func(c *Creature) int { return c.Stats.Total() }),
		"types":           query.List(func(c *Creature) []*Type { return c.links.Types }),
		"quick_moves":     query.List(func(c *Creature) []*Move { return c.links.QuickMoves }),
		"charge_moves":    query.List(func(c *Creature) []*Move { return c.links.ChargeMoves }),
		"moves":           query.List((*Creature).Moves),
		"evolutions":      query.List(func(c *Creature) []*Creature { return c.links.Evolutions }),
		"temp_evolutions": query.List(func(c *Creature) []*Creature { return c.links.TempEvolutions }),
	},
))

// GuardSchema declares the queryable attributes of guard characters.
var GuardSchema = query.NewSchema("guard", unsetGuard, withFields(
	baseFields(func(g *GuardCharacter) Base { return g.Base }),
	query.Fields[*GuardCharacter]{
		"gender":  query.Enum(func(g *GuardCharacter) Gender { return g.Gender }),
		"boss":    query.Scalar(func(g *GuardCharacter) bool { return g.Boss }),
		"type":    query.Scalar(func(g *GuardCharacter) *Type { return g.Type }),
		"active":  query.Scalar(func(g *GuardCharacter) bool { return g.Active }),
		"rewards": query.List(func(g *GuardCharacter) []*Creature { return g.Rewards }),
	},
))

// QuestSchema declares the queryable attributes of quests.
var QuestSchema = query.NewSchema("quest", unsetQuest, withFields(
	baseFields(func(q *Quest) Base { return q.Base }),
	query.Fields[*Quest]{
		"task": query.Scalar(func(q *Quest) string { return q.Task }),
		"type": query.Enum(func(q *Quest) QuestType { return q.Type }),
		"reward_types": query.List(func(q *Quest) []protoenum.Member {
			out := make([]protoenum.Member, len(q.Rewards))
			for i, r := range q.Rewards {
				out[i] = r.Kind
			}
			return out
		}),
		"rewards": query.List(func(q *Quest) []Entity {
			out := make([]Entity, len(q.Rewards))
			for i, r := range q.Rewards {
				out[i] = r.Entity
			}
			return out
		}),
	},
))

// RaidSchema exposes every creature attribute of the boss plus "level".
var RaidSchema = query.NewSchema("raid", unsetRaid, withFields(
	query.Lift(CreatureSchema, func(r *RaidEntry) *Creature { return r.Creature }),
	query.Fields[*RaidEntry]{
		"level": query.Scalar(func(r *RaidEntry) int { return r.Level }),
	},
))

// EventSchema declares the queryable attributes of events.
var EventSchema = query.NewSchema("event", unsetEvent, withFields(
	baseFields(func(e *Event) Base { return e.Base }),
	query.Fields[*Event]{
		"type":            query.Enum(func(e *Event) EventType { return e.Type }),
		"has_quests":      query.Scalar(func(e *Event) bool { return e.HasQuests }),
		"has_spawnpoints": query.Scalar(func(e *Event) bool { return e.HasSpawnpoints }),
		"features":        query.List(func(e *Event) []string { return e.Features }),
		"spawns":          query.List(func(e *Event) []*Creature { return e.Spawns }),
		"eggs":            query.List(func(e *Event) []*Creature { return e.Eggs }),
		"raids":           query.List(func(e *Event) []*Creature { return e.Raids }),
		"shinies":         query.List(func(e *Event) []*Creature { return e.Shinies }),
	},
))

package catalog

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/cory-johannsen/pogodata/internal/protoenum"
)

// assetPrefix starts every creature asset key.
const assetPrefix = "pokemon_icon_"

// Stats are a creature's base combat values.
type Stats struct {
	Attack  int `json:"attack" yaml:"attack"`
	Defense int `json:"defense" yaml:"defense"`
	Stamina int `json:"stamina" yaml:"stamina"`
}

// Total returns the sum of the three base values.
func (s Stats) Total() int { return s.Attack + s.Defense + s.Stamina }

func (s Stats) String() string {
	return fmt.Sprintf("%d/%d/%d", s.Attack, s.Defense, s.Stamina)
}

func statsFrom(raw gjson.Result) Stats {
	return Stats{
		Attack:  int(raw.Get("baseAttack").Int()),
		Defense: int(raw.Get("baseDefense").Int()),
		Stamina: int(raw.Get("baseStamina").Int()),
	}
}

// Links holds a creature's references to other entities. Form and costume
// variants share their base's *Links, so a change made through the base is
// visible in every such variant. Temporary evolutions own a separate copy.
type Links struct {
	QuickMoves     []*Move
	ChargeMoves    []*Move
	Types          []*Type
	Evolutions     []*Creature
	TempEvolutions []*Creature
}

func (l *Links) clone() *Links {
	return &Links{
		QuickMoves:     append([]*Move(nil), l.QuickMoves...),
		ChargeMoves:    append([]*Move(nil), l.ChargeMoves...),
		Types:          append([]*Type(nil), l.Types...),
		Evolutions:     append([]*Creature(nil), l.Evolutions...),
		TempEvolutions: append([]*Creature(nil), l.TempEvolutions...),
	}
}

// Creature is one catalog creature: a base record or one of its variants.
type Creature struct {
	Base
	// Form is the Form enum value, 0 when the record names no form.
	Form int
	// BaseTemplate is the template of the non-variant ancestor.
	BaseTemplate string
	Family       string
	Kind         VariantKind
	// TempEvolution is the HoloTemporaryEvolutionId member; zero for every
	// kind except VariantTempEvolution.
	TempEvolution protoenum.Member
	Stats         Stats

	links       *Links
	costume     protoenum.Member
	assetValue  string
	assetSuffix string
	asset       string
	raw         gjson.Result
}

func newCreature(base Base) *Creature {
	c := &Creature{Base: base, links: &Links{}}
	c.recomputeAsset()
	return c
}

func unsetCreature() *Creature {
	return newCreature(unsetBase())
}

// Links returns the shared reference handle.
func (c *Creature) Links() *Links { return c.links }

// QuickMoves returns the fast moves in record order.
func (c *Creature) QuickMoves() []*Move { return c.links.QuickMoves }

// ChargeMoves returns the charged moves in record order.
func (c *Creature) ChargeMoves() []*Move { return c.links.ChargeMoves }

// Moves returns quick moves followed by charge moves.
func (c *Creature) Moves() []*Move {
	out := make([]*Move, 0, len(c.links.QuickMoves)+len(c.links.ChargeMoves))
	out = append(out, c.links.QuickMoves...)
	return append(out, c.links.ChargeMoves...)
}

// Types returns the one or two types of the creature.
func (c *Creature) Types() []*Type { return c.links.Types }

// Evolutions returns every creature reachable through evolution branches,
// depth first.
func (c *Creature) Evolutions() []*Creature { return c.links.Evolutions }

// TempEvolutions returns the temporary evolution variants of the creature.
func (c *Creature) TempEvolutions() []*Creature { return c.links.TempEvolutions }

// Raw returns the creature's settings block.
func (c *Creature) Raw() gjson.Result { return c.raw }

// Costume returns the Costume enum member.
func (c *Creature) Costume() protoenum.Member { return c.costume }

// SetCostume replaces the costume and recomputes the asset key. The setters
// exist for variant expansion; entities of a published snapshot must not be
// modified.
func (c *Creature) SetCostume(m protoenum.Member) {
	c.costume = m
	c.recomputeAsset()
}

// AssetValue returns the explicit asset value override, or "".
func (c *Creature) AssetValue() string { return c.assetValue }

// SetAssetValue replaces the asset value override and recomputes the asset key.
func (c *Creature) SetAssetValue(v string) {
	c.assetValue = v
	c.recomputeAsset()
}

// AssetSuffix returns the explicit asset suffix override, or "".
func (c *Creature) AssetSuffix() string { return c.assetSuffix }

// SetAssetSuffix replaces the asset suffix override and recomputes the asset key.
func (c *Creature) SetAssetSuffix(s string) {
	c.assetSuffix = s
	c.recomputeAsset()
}

// Asset returns the derived asset key, e.g. "pokemon_icon_025_00_05".
func (c *Creature) Asset() string { return c.asset }

// recomputeAsset derives the asset key from the id and the three asset
// inputs. A suffix override replaces everything after the prefix; the costume
// is appended only without one.
func (c *Creature) recomputeAsset() {
	var b strings.Builder
	b.WriteString(assetPrefix)
	if c.assetSuffix != "" {
		b.WriteString(c.assetSuffix)
		c.asset = b.String()
		return
	}
	fmt.Fprintf(&b, "%03d_", c.ID)
	if c.assetValue != "" {
		b.WriteString(c.assetValue)
	} else {
		b.WriteString("00")
	}
	if c.costume.Value != 0 {
		fmt.Fprintf(&b, "_%02d", c.costume.Value)
	}
	c.asset = b.String()
}

// DexID returns the creature's dex number.
func (c *Creature) DexID() int { return c.ID }

// FormID returns the Form enum value.
func (c *Creature) FormID() int { return c.Form }

// CostumeID returns the Costume enum value.
func (c *Creature) CostumeID() int { return c.costume.Value }

// variant returns a shallow copy sharing the receiver's links.
func (c *Creature) variant(kind VariantKind) *Creature {
	cp := *c
	cp.Kind = kind
	return &cp
}

// deepVariant returns a copy owning its own links and raw block.
func (c *Creature) deepVariant(kind VariantKind, raw gjson.Result) *Creature {
	cp := *c
	cp.Kind = kind
	cp.links = c.links.clone()
	cp.links.Evolutions = nil
	cp.links.TempEvolutions = nil
	cp.raw = gjson.Parse(raw.Raw)
	return &cp
}

// variantKey identifies a creature for the one-per-combination invariant.
type variantKey struct {
	base    string
	form    int
	costume int
	temp    int
}

func (c *Creature) key() variantKey {
	return variantKey{base: c.BaseTemplate, form: c.Form, costume: c.costume.Value, temp: c.TempEvolution.Value}
}

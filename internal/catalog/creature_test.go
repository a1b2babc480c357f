package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/pogodata/internal/protoenum"
)

func TestCreature_AssetKey(t *testing.T) {
	c := newCreature(Base{ID: 25, Template: "PIKACHU"})
	assert.Equal(t, "pokemon_icon_025_00", c.Asset())

	c.SetCostume(protoenum.Member{Name: "SUMMER_2018", Value: 5})
	assert.Equal(t, "pokemon_icon_025_00_05", c.Asset())

	c.SetAssetValue("11")
	assert.Equal(t, "pokemon_icon_025_11_05", c.Asset())

	c.SetAssetSuffix("pikachu_cosplay")
	assert.Equal(t, "pokemon_icon_pikachu_cosplay", c.Asset(), "a suffix replaces the costume too")
}

func TestCreature_AssetKeyProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.IntRange(1, 999).Draw(rt, "id")
		costume := rapid.IntRange(0, 99).Draw(rt, "costume")
		c := newCreature(Base{ID: id})
		c.SetCostume(protoenum.Member{Value: costume})

		asset := c.Asset()
		assert.Regexp(rt, `^pokemon_icon_\d{3}_00(_\d{2})?$`, asset)
		if costume == 0 {
			assert.Len(rt, asset, len("pokemon_icon_000_00"))
		} else {
			assert.Len(rt, asset, len("pokemon_icon_000_00_00"))
		}
	})
}

func TestCreature_VariantsShareOrCopyLinks(t *testing.T) {
	base := newCreature(Base{ID: 6, Template: "CHARIZARD"})
	base.links.Types = []*Type{{Base: Base{Template: "POKEMON_TYPE_FIRE"}}}
	base.links.Evolutions = []*Creature{unsetCreature()}
	base.raw = gjson.Parse(`{"stats": {"baseAttack": 1}}`)

	shallow := base.variant(VariantCostume)
	assert.Same(t, base.Links(), shallow.Links())
	assert.Equal(t, VariantCostume, shallow.Kind)
	assert.Equal(t, VariantUnset, base.Kind)

	deep := base.deepVariant(VariantTempEvolution, gjson.Parse(`{"tempEvoId": 2}`))
	assert.NotSame(t, base.Links(), deep.Links())
	require.Len(t, deep.Types(), 1)
	assert.Empty(t, deep.Evolutions())
	assert.Equal(t, int64(2), deep.Raw().Get("tempEvoId").Int())

	deep.links.Types[0] = unsetType()
	assert.Equal(t, "POKEMON_TYPE_FIRE", base.Types()[0].Template)
}

func TestCreature_Sentinel(t *testing.T) {
	c := unsetCreature()
	assert.False(t, c.Found())
	assert.Equal(t, Unset, c.TemplateID())
	assert.Empty(t, c.Moves())
	assert.NotNil(t, c.Links())
}

func TestStats(t *testing.T) {
	s := statsFrom(gjson.Parse(`{"baseAttack": 223, "baseDefense": 173, "baseStamina": 186}`))
	assert.Equal(t, 582, s.Total())
	assert.Equal(t, "223/173/186", s.String())
}

func TestParseEventType(t *testing.T) {
	assert.Equal(t, EventCommunityDay, ParseEventType("community-day"))
	assert.Equal(t, EventCommunityDay, ParseEventType("COMMUNITY_DAY"))
	assert.Equal(t, EventRaidHour, ParseEventType(" raid-hour "))
	assert.Equal(t, EventUnknown, ParseEventType("go-fest"))
	assert.Equal(t, "UNKNOWN", EventType(42).EnumName())
}

func TestParseEventBonusType(t *testing.T) {
	assert.Equal(t, BonusStardust, ParseEventBonusType("increased-stardust"))
	assert.Equal(t, BonusHatch, ParseEventBonusType("hatch"))
	assert.Equal(t, BonusUnknown, ParseEventBonusType(""))
	assert.Equal(t, "longer-incense", BonusIncense.Template())
	assert.Equal(t, "", EventBonusType(-1).Template())
}

func TestKindsEnumerated(t *testing.T) {
	assert.Equal(t, "TEMP_EVOLUTION", VariantTempEvolution.EnumName())
	assert.Equal(t, 3, VariantTempEvolution.EnumValue())
	assert.Equal(t, "FEMALE", GenderFemale.String())
	assert.Equal(t, "SPONSORED", QuestSponsored.String())
	assert.Equal(t, "UNSET", QuestType(99).EnumName())
}

func TestEventTemplate(t *testing.T) {
	cases := []struct {
		name string
		id   int
		want string
	}{
		{"Fire Week", 1, "EVENT_FIRE_WEEK"},
		{"Pokémon GO Fest: Day 2", 2, "EVENT_POKÉMON_GO_FEST_DAY_2"},
		{"  --  ", 3, "EVENT_3"},
		{"", 4, "EVENT_4"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, eventTemplate(tc.name, tc.id), tc.name)
	}
}

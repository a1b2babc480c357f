package gamemaster_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/pogodata/internal/gamemaster"
)

const sample = `[
  {"templateId": "V0001_POKEMON_BULBASAUR", "data": {"templateId": "V0001_POKEMON_BULBASAUR", "pokemonSettings": {"pokemonId": "BULBASAUR", "type": "POKEMON_TYPE_GRASS"}}},
  {"templateId": "COMBAT_V0013_MOVE_WRAP", "data": {"combatMove": {"type": "POKEMON_TYPE_NORMAL", "power": 5}}},
  {"data": {"orphan": true}},
  {"templateId": "V0002_POKEMON_IVYSAUR", "data": {"pokemonSettings": {"pokemonId": "IVYSAUR"}}}
]`

func TestParse_PreservesOrderAndSkipsUntemplated(t *testing.T) {
	d, err := gamemaster.Parse([]byte(sample))
	require.NoError(t, err)
	require.Equal(t, 3, d.Len())

	recs := d.Records()
	assert.Equal(t, "V0001_POKEMON_BULBASAUR", recs[0].TemplateID)
	assert.Equal(t, "COMBAT_V0013_MOVE_WRAP", recs[1].TemplateID)
	assert.Equal(t, "V0002_POKEMON_IVYSAUR", recs[2].TemplateID)
}

func TestSelect_ByPattern(t *testing.T) {
	d, err := gamemaster.Parse([]byte(sample))
	require.NoError(t, err)

	mons := d.Select(regexp.MustCompile(`^V\d{4}_POKEMON_`))
	require.Len(t, mons, 2)
	assert.Equal(t, "BULBASAUR", mons[0].Settings("pokemonSettings").Get("pokemonId").String())
	assert.Equal(t, "IVYSAUR", mons[1].Settings("pokemonSettings").Get("pokemonId").String())
}

func TestSettings_Missing(t *testing.T) {
	d, err := gamemaster.Parse([]byte(sample))
	require.NoError(t, err)
	rec, ok := d.Find("COMBAT_V0013_MOVE_WRAP")
	require.True(t, ok)
	assert.False(t, rec.Settings("pokemonSettings").Exists())
	assert.Equal(t, int64(5), rec.Settings("combatMove").Get("power").Int())
	assert.True(t, rec.Settings("").Get("combatMove").Exists())
}

func TestParse_Invalid(t *testing.T) {
	_, err := gamemaster.Parse([]byte(`{"templateId": "x"}`))
	assert.ErrorIs(t, err, gamemaster.ErrNotArray)

	_, err = gamemaster.Parse([]byte(`[{`))
	assert.Error(t, err)
}

func TestMustCompile_PanicsOnBadPattern(t *testing.T) {
	assert.Panics(t, func() { gamemaster.MustCompile(`(`) })
	assert.NotPanics(t, func() { gamemaster.MustCompile(`^ITEM_`) })
}

package catalog

import (
	"context"
	"sync/atomic"

	"github.com/cory-johannsen/pogodata/internal/source"
)

const fixtureProto = `syntax = "proto3";

enum HoloPokemonType {
	POKEMON_TYPE_NONE = 0;
	POKEMON_TYPE_NORMAL = 1;
	POKEMON_TYPE_FIRE = 2;
	POKEMON_TYPE_WATER = 3;
	POKEMON_TYPE_FLYING = 4;
	POKEMON_TYPE_ELECTRIC = 5;
	POKEMON_TYPE_DRAGON = 6;
}

enum HoloItemType {
	ITEM_TYPE_NONE = 0;
	ITEM_TYPE_POKEBALL = 1;
	ITEM_TYPE_FOOD = 7;
	ITEM_TYPE_CANDY = 12;
}

enum HoloItemCategory {
	ITEM_CATEGORY_NONE = 0;
	ITEM_CATEGORY_POKEBALL = 1;
	ITEM_CATEGORY_FOOD = 2;
	ITEM_CATEGORY_CANDY = 11;
}

enum Item {
	ITEM_UNKNOWN = 0;
	ITEM_POKE_BALL = 1;
	ITEM_RAZZ_BERRY = 701;
	ITEM_RARE_CANDY = 1301;
}

enum WeatherCondition {
	NONE = 0;
	CLEAR = 1;
	RAINY = 2;
}

enum HoloTemporaryEvolutionId {
	TEMP_EVOLUTION_UNSET = 0;
	TEMP_EVOLUTION_MEGA = 1;
	TEMP_EVOLUTION_MEGA_X = 2;
	TEMP_EVOLUTION_MEGA_Y = 3;
}

enum InvasionCharacter {
	CHARACTER_UNSET = 0;
	CHARACTER_FIRE_GRUNT_MALE = 11;
	CHARACTER_EXECUTIVE_CLIFF = 41;
}

message PokemonDisplayProto {
	enum Costume {
		UNSET = 0;
		HOLIDAY_2016 = 1;
		ANNIVERSARY = 2;
		ONE_YEAR_ANNIVERSARY = 3;
		HALLOWEEN_2017 = 4;
		SUMMER_2018 = 5;
	}
	enum Form {
		FORM_UNSET = 0;
		PIKACHU_NORMAL = 598;
		CHARIZARD_NORMAL = 950;
		PIKACHU_COSPLAY = 2340;
	}
}

message QuestRewardProto {
	enum Type {
		UNSET = 0;
		EXPERIENCE = 1;
		ITEM = 2;
		STARDUST = 3;
		CANDY = 4;
		POKEMON_ENCOUNTER = 7;
		MEGA_RESOURCE = 12;
	}
}
`

const fixtureGameMaster = `[
  {"templateId": "POKEMON_TYPE_FIRE", "data": {"templateId": "POKEMON_TYPE_FIRE",
    "typeEffective": {"attackScalar": [1.0, 0.625, 0.625, 1.0, 1.0, 0.625], "attackType": "POKEMON_TYPE_FIRE"}}},
  {"templateId": "COMBAT_V0209_MOVE_EMBER_FAST", "data": {
    "combatMove": {"uniqueId": "EMBER_FAST", "type": "POKEMON_TYPE_FIRE", "power": 6, "energyDelta": 6, "durationTurns": 1}}},
  {"templateId": "COMBAT_V0024_MOVE_FLAMETHROWER", "data": {
    "combatMove": {"uniqueId": "FLAMETHROWER", "type": "POKEMON_TYPE_FIRE", "power": 90, "energyDelta": -55}}},
  {"templateId": "COMBAT_V0219_MOVE_THUNDER_SHOCK_FAST", "data": {
    "combatMove": {"uniqueId": "THUNDER_SHOCK_FAST", "type": "POKEMON_TYPE_ELECTRIC", "power": 3, "energyDelta": 9, "durationTurns": 1}}},
  {"templateId": "COMBAT_V0079_MOVE_THUNDERBOLT", "data": {
    "combatMove": {"uniqueId": "THUNDERBOLT", "type": "POKEMON_TYPE_ELECTRIC", "power": 90, "energyDelta": -55}}},
  {"templateId": "V0004_POKEMON_CHARMANDER", "data": {"pokemonSettings": {
    "pokemonId": "CHARMANDER", "type": "POKEMON_TYPE_FIRE", "familyId": "FAMILY_CHARMANDER",
    "stats": {"baseStamina": 118, "baseAttack": 116, "baseDefense": 93},
    "quickMoves": ["EMBER_FAST"], "cinematicMoves": ["FLAMETHROWER"],
    "evolutionBranch": [{"evolution": "CHARMELEON", "candyCost": 25}]}}},
  {"templateId": "V0005_POKEMON_CHARMELEON", "data": {"pokemonSettings": {
    "pokemonId": "CHARMELEON", "type": "POKEMON_TYPE_FIRE", "familyId": "FAMILY_CHARMANDER",
    "stats": {"baseStamina": 151, "baseAttack": 158, "baseDefense": 126},
    "quickMoves": ["EMBER_FAST"], "cinematicMoves": ["FLAMETHROWER"],
    "evolutionBranch": [{"evolution": "CHARIZARD", "candyCost": 100}]}}},
  {"templateId": "V0006_POKEMON_CHARIZARD", "data": {"pokemonSettings": {
    "pokemonId": "CHARIZARD", "type": "POKEMON_TYPE_FIRE", "type2": "POKEMON_TYPE_FLYING", "familyId": "FAMILY_CHARMANDER",
    "stats": {"baseStamina": 186, "baseAttack": 223, "baseDefense": 173},
    "quickMoves": ["EMBER_FAST", "NOT_A_MOVE"], "cinematicMoves": ["FLAMETHROWER"],
    "tempEvoOverrides": [
      {"tempEvoId": "TEMP_EVOLUTION_MEGA_X", "stats": {"baseStamina": 186, "baseAttack": 273, "baseDefense": 213},
       "typeOverride1": "POKEMON_TYPE_FIRE", "typeOverride2": "POKEMON_TYPE_DRAGON"},
      {"tempEvoId": "TEMP_EVOLUTION_MEGA_Y", "stats": {"baseStamina": 186, "baseAttack": 319, "baseDefense": 212}}
    ]}}},
  {"templateId": "V0025_POKEMON_PIKACHU", "data": {"pokemonSettings": {
    "pokemonId": "PIKACHU", "type": "POKEMON_TYPE_ELECTRIC", "familyId": "FAMILY_PIKACHU",
    "stats": {"baseStamina": 111, "baseAttack": 112, "baseDefense": 96},
    "quickMoves": ["THUNDER_SHOCK_FAST"], "cinematicMoves": ["THUNDERBOLT"]}}},
  {"templateId": "V0025_POKEMON_PIKACHU_NORMAL", "data": {"pokemonSettings": {
    "pokemonId": "PIKACHU", "type": "POKEMON_TYPE_ELECTRIC", "familyId": "FAMILY_PIKACHU",
    "stats": {"baseStamina": 111, "baseAttack": 112, "baseDefense": 96},
    "quickMoves": ["THUNDER_SHOCK_FAST"], "cinematicMoves": ["THUNDERBOLT"]}}},
  {"templateId": "V0132_POKEMON_DITTO", "data": {"pokemonSettings": {
    "pokemonId": "DITTO", "type": "POKEMON_TYPE_NORMAL",
    "evolutionBranch": [{"evolution": "DITTO"}]}}},
  {"templateId": "FORMS_V0025_POKEMON_PIKACHU", "data": {"formSettings": {"pokemon": "PIKACHU", "forms": [
    {"form": "PIKACHU_NORMAL"},
    {"form": "PIKACHU_COSPLAY", "assetBundleSuffix": "pikachu_cosplay"}]}}},
  {"templateId": "FORMS_V0006_POKEMON_CHARIZARD", "data": {"formSettings": {"pokemon": "CHARIZARD", "forms": [
    {"form": "CHARIZARD_NORMAL", "assetBundleValue": 11}]}}},
  {"templateId": "ITEM_POKE_BALL", "data": {"itemSettings": {
    "itemId": "ITEM_POKE_BALL", "itemType": "ITEM_TYPE_POKEBALL", "category": "ITEM_CATEGORY_POKEBALL", "dropTrainerLevel": 1}}},
  {"templateId": "ITEM_RAZZ_BERRY", "data": {"itemSettings": {
    "itemId": "ITEM_RAZZ_BERRY", "itemType": "ITEM_TYPE_FOOD", "category": "ITEM_CATEGORY_FOOD", "dropTrainerLevel": 8,
    "food": {"itemEffect": ["ITEM_EFFECT_CAP_CHANCE_MULTIPLY"], "itemEffectPercent": [1.5]}}}},
  {"templateId": "ITEM_RARE_CANDY", "data": {"itemSettings": {
    "itemId": "ITEM_RARE_CANDY", "itemType": "ITEM_TYPE_CANDY", "category": "ITEM_CATEGORY_CANDY", "dropTrainerLevel": 5,
    "food": {"growthPercent": 1}}}},
  {"templateId": "ITEM_BADGE_NOT_AN_ITEM", "data": {"badgeSettings": {}}},
  {"templateId": "WEATHER_AFFINITY_CLEAR", "data": {"weatherAffinities": {
    "weatherCondition": "CLEAR", "pokemonType": ["POKEMON_TYPE_FIRE", "POKEMON_TYPE_NORMAL"]}}},
  {"templateId": "CHARACTER_FIRE_GRUNT_MALE", "data": {"invasionNpcDisplaySettings": {
    "trainerName": "combat_grunt_name", "isMale": true}}},
  {"templateId": "CHARACTER_EXECUTIVE_CLIFF", "data": {"invasionNpcDisplaySettings": {
    "trainerName": "combat_cliff_name", "isMale": true}}},
  {"data": {"orphan": true}}
]`

const fixtureLocaleJSON = `{"data": [
  "pokemon_name_0004", "Charmander",
  "pokemon_name_0005", "Charmeleon",
  "pokemon_name_0006", "Charizard",
  "pokemon_name_0006_0002", "Mega Charizard X",
  "pokemon_name_0006_0003", "Mega Charizard Y",
  "pokemon_name_0025", "Pika",
  "pokemon_name_0132", "Ditto",
  "move_name_0209", "Ember",
  "move_name_0024", "Flamethrower",
  "POKEMON_TYPE_FIRE", "Fire",
  "ITEM_POKE_BALL_name", "Poke Ball",
  "rarecandy.1_title", "Rare Candy",
  "weather_CLEAR", "Clear",
  "combat_grunt_name", "Team GO Rocket Grunt",
  "combat_cliff_name", "Cliff"
]}`

const fixtureLocaleText = "RESOURCE ID: pokemon_name_0025\nTEXT: Pikachu\n"

const fixtureRaids = `{
  "1": [{"template": "CHARMANDER"}, {}],
  "x": [{"template": "PIKACHU"}],
  "5": [{"id": 6, "evolution": 2}],
  "3": [{"template": "MISSINGNO"}]
}`

const fixtureQuests = `{
  "quests": [{"task": "Catch 5 Pokemon", "rewards": [
    {"type": "item", "id": 1, "amount": 5},
    {"type": "stardust", "amount": 500}]}],
  "event": [{"task": "Win a raid", "rewards": [
    {"type": "pokemon", "reward": {"template": "PIKACHU"}}]}],
  "ar": [{"task": "Take a snapshot", "rewards": [
    {"type": "energy", "reward": {"id": 6}, "amount": 10}]}]
}`

const fixtureGuards = `{
  "11": {"active": true, "lineup": {"rewards": [0, 7], "team": [
    [{"template": "CHARMANDER"}],
    [{"template": "CHARMELEON"}, {"template": "MISSINGNO"}],
    [{"template": "CHARIZARD"}]]}}
}`

const fixtureEvents = `[
  {"name": "Fire Week", "type": "event", "start": "2021-01-01 10:00", "end": "2021-01-08 20:00",
   "spawns": [{"template": "CHARMANDER"}], "eggs": [], "raids": [{"id": 6, "evolution": 2}],
   "shinies": [{"template": "MISSINGNO"}],
   "bonuses": [{"text": "2x Stardust", "template": "increased-stardust", "value": 2}],
   "features": ["quests"], "has_quests": true, "has_spawnpoints": false},
  {"name": "Spotlight", "type": "spotlight-hour", "start": "not a time"}
]`

const fixtureManifest = `[
  "Images/Pokemon/pokemon_icon_025_00_05.png",
  "Images/Pokemon/pokemon_icon_025_00_05_shiny.png",
  "Images/Pokemon/pokemon_icon_006_11_01.png",
  "Images/Pokemon/pokemon_icon_999_00_01.png"
]`

func fixtureBundle() *source.Bundle {
	return &source.Bundle{
		GameMaster: []byte(fixtureGameMaster),
		Protos:     []byte(fixtureProto),
		Locales: []source.Locale{
			{Format: "json", Body: []byte(fixtureLocaleJSON)},
			{Format: "text", Body: []byte(fixtureLocaleText)},
		},
		Raids:        []byte(fixtureRaids),
		Guards:       []byte(fixtureGuards),
		Quests:       []byte(fixtureQuests),
		Events:       []byte(fixtureEvents),
		IconManifest: []byte(fixtureManifest),
	}
}

// scriptedSource serves bundles from a function and counts loads.
type scriptedSource struct {
	loads atomic.Int32
	next  func(n int32) (*source.Bundle, error)
}

func (s *scriptedSource) Load(ctx context.Context) (*source.Bundle, error) {
	n := s.loads.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.next(n)
}

func fixedSource(b *source.Bundle) *scriptedSource {
	return &scriptedSource{next: func(int32) (*source.Bundle, error) { return b, nil }}
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pogodata/internal/gamemaster"
	"github.com/cory-johannsen/pogodata/internal/locale"
	"github.com/cory-johannsen/pogodata/internal/protoenum"
	"github.com/cory-johannsen/pogodata/internal/query"
	"github.com/cory-johannsen/pogodata/internal/source"
)

// Record routes. Each route names the settings block its records carry.
var (
	creatureRoute = gamemaster.MustCompile(`^V(\d{4})_POKEMON_`)
	moveRoute     = gamemaster.MustCompile(`^COMBAT_V(\d{4})_MOVE_`)
	itemRoute     = gamemaster.MustCompile(`^ITEM_`)
	weatherRoute  = gamemaster.MustCompile(`^WEATHER_AFFINITY_`)
	guardRoute    = gamemaster.MustCompile(`^CHARACTER_`)
	typeRoute     = gamemaster.MustCompile(`^POKEMON_TYPE_`)
	formRoute     = gamemaster.MustCompile(`^FORMS_V\d{4}_POKEMON_`)
)

const (
	creatureSettings = "pokemonSettings"
	moveSettings     = "combatMove"
	itemSettings     = "itemSettings"
	weatherSettings  = "weatherAffinities"
	guardSettings    = "invasionNpcDisplaySettings"
	typeSettings     = "typeEffective"
	formSettings     = "formSettings"

	// candyItemType is the HoloItemType value of candy items, which are
	// named by a different locale key.
	candyItemType = 12

	eventTimeLayout = "2006-01-02 15:04"
)

// questRewardAliases maps feed reward spellings onto QuestRewardProto names.
var questRewardAliases = map[string]string{
	"pokemon": "pokemon_encounter",
	"energy":  "mega_resource",
}

// ErrNoGameMaster is returned by Build when the bundle carries no dump.
var ErrNoGameMaster = errors.New("bundle has no game master dump")

// Build constructs a snapshot from raw inputs. Stages run in dependency order
// and the context is checked between stages.
//
// Precondition: b must be non-nil.
// Postcondition: Returns a complete snapshot or the first stage error; a
// failed build has no observable effect.
func Build(ctx context.Context, b *source.Bundle, logger *zap.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(b.GameMaster) == 0 {
		return nil, ErrNoGameMaster
	}
	dump, err := gamemaster.Parse(b.GameMaster)
	if err != nil {
		return nil, fmt.Errorf("parsing game master: %w", err)
	}
	text, err := locale.Build(b.LocaleResources()...)
	if err != nil {
		return nil, fmt.Errorf("building locale table: %w", err)
	}

	bld := &builder{
		logger: logger,
		bundle: b,
		dump:   dump,
		enums:  protoenum.NewRegistry(string(b.Protos)),
		text:   text,
		seen:   make(map[variantKey]bool),
	}
	bld.snap = &Snapshot{
		ID:     uuid.New(),
		bundle: b,
		enums:  bld.enums,
		text:   text,
		raids:  newRaids(),
	}

	stages := []struct {
		name string
		run  func() error
	}{
		{"types", bld.buildTypes},
		{"items", bld.buildItems},
		{"weather", bld.buildWeather},
		{"moves", bld.buildMoves},
		{"creatures", bld.buildCreatures},
		{"quests", bld.buildQuests},
		{"raids", bld.buildRaids},
		{"guards", bld.buildGuards},
		{"events", bld.buildEvents},
	}
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build aborted before %s: %w", st.name, err)
		}
		start := time.Now()
		if err := st.run(); err != nil {
			return nil, fmt.Errorf("building %s: %w", st.name, err)
		}
		logger.Debug("build stage complete",
			zap.String("stage", st.name),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	bld.snap.BuiltAt = time.Now().UTC()
	return bld.snap, nil
}

type builder struct {
	logger *zap.Logger
	bundle *source.Bundle
	dump   *gamemaster.Dump
	enums  *protoenum.Registry
	text   *locale.Table
	snap   *Snapshot
	seen   map[variantKey]bool
}

func (b *builder) enum(name, message string) (*protoenum.Enum, error) {
	e, err := b.enums.Enum(name, message)
	if err != nil {
		return nil, fmt.Errorf("enum %s: %w", name, err)
	}
	if e.Empty() {
		b.logger.Debug("enum not found", zap.String("enum", name), zap.String("message", message))
	}
	return e, nil
}

// member resolves a raw enum reference, a name or a number, falling back to
// the member with value 0.
func member(e *protoenum.Enum, raw gjson.Result) protoenum.Member {
	if raw.Exists() {
		if m, ok := e.Match(raw.Value()); ok {
			return m
		}
	}
	return e.Member(0)
}

// records returns the routed records that carry the named settings block.
func (b *builder) records(route *regexp.Regexp, settings string) []gamemaster.Record {
	var out []gamemaster.Record
	for _, r := range b.dump.Select(route) {
		if r.Settings(settings).Exists() {
			out = append(out, r)
		}
	}
	return out
}

func (b *builder) unresolved(kind, ref string) {
	b.logger.Debug("unresolved reference", zap.String("kind", kind), zap.String("ref", ref))
}

func (b *builder) typeByTemplate(template string) *Type {
	t := query.First(TypeSchema, b.snap.types, query.Where{"template": template})
	if !t.Found() {
		b.unresolved("type", template)
	}
	return t
}

func (b *builder) moveByTemplate(template string) *Move {
	m := query.First(MoveSchema, b.snap.moves, query.Where{"template": template})
	if !m.Found() {
		b.unresolved("move", template)
	}
	return m
}

func (b *builder) creatureWhere(w query.Where) *Creature {
	return query.First(CreatureSchema, b.snap.creatures, w)
}

// constraints turns a feed object into a creature query. ok is false for
// anything but a non-empty object.
func constraints(raw gjson.Result) (query.Where, bool) {
	if !raw.IsObject() {
		return nil, false
	}
	m, _ := raw.Value().(map[string]any)
	if len(m) == 0 {
		return nil, false
	}
	return query.Where(m), true
}

// feed parses an optional auxiliary feed. An absent feed yields a
// non-existent Result and no error.
func feed(name string, data []byte) (gjson.Result, error) {
	if len(data) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%s feed is not valid JSON", name)
	}
	return gjson.ParseBytes(data), nil
}

func (b *builder) buildTypes() error {
	holo, err := b.enum("HoloPokemonType", "")
	if err != nil {
		return err
	}
	for _, m := range holo.Members() {
		b.snap.types = append(b.snap.types, &Type{
			Base:   Base{ID: m.Value, Template: m.Name, Name: b.text.Get(m.Name)},
			attack: make(map[string]float64),
		})
	}

	// attackScalar[i] is the multiplier against the type with enum value i+1.
	for _, r := range b.records(typeRoute, typeSettings) {
		s := r.Settings(typeSettings)
		attacker := s.Get("attackType").String()
		if attacker == "" {
			attacker = r.TemplateID
		}
		t := b.typeByTemplate(attacker)
		if !t.Found() {
			continue
		}
		for i, scalar := range s.Get("attackScalar").Array() {
			defender := holo.Member(i + 1)
			if defender.Name == "" {
				continue
			}
			t.attack[defender.Name] = scalar.Float()
		}
	}
	return nil
}

func (b *builder) buildItems() error {
	ids, err := b.enum("Item", "")
	if err != nil {
		return err
	}
	itemTypes, err := b.enum("HoloItemType", "")
	if err != nil {
		return err
	}
	categories, err := b.enum("HoloItemCategory", "")
	if err != nil {
		return err
	}

	for _, r := range b.records(itemRoute, itemSettings) {
		s := r.Settings(itemSettings)
		item := &Item{
			Base:     Base{ID: ids.Get(r.TemplateID), Template: r.TemplateID},
			Type:     member(itemTypes, s.Get("itemType")),
			Category: member(categories, s.Get("category")),
			MinLevel: int(s.Get("dropTrainerLevel").Int()),
			raw:      s,
		}
		item.Name = b.text.Get(itemNameKey(item))

		food := s.Get("food")
		percents := food.Get("itemEffectPercent").Array()
		for i, effect := range food.Get("itemEffect").Array() {
			fe := FoodEffect{Effect: effect.String()}
			if i < len(percents) {
				fe.Percent = percents[i].Float()
			}
			item.FoodEffects = append(item.FoodEffects, fe)
		}
		b.snap.items = append(b.snap.items, item)
	}
	return nil
}

// itemNameKey returns the locale key of an item. Candy items drop the ITEM_
// prefix and every underscore and take a ".1_title" suffix.
func itemNameKey(item *Item) string {
	if item.Type.Value == candyItemType {
		key := strings.TrimPrefix(item.Template, "ITEM_")
		return strings.ReplaceAll(key, "_", "") + ".1_title"
	}
	return item.Template + "_name"
}

func (b *builder) buildWeather() error {
	conditions, err := b.enum("WeatherCondition", "")
	if err != nil {
		return err
	}
	for _, r := range b.records(weatherRoute, weatherSettings) {
		s := r.Settings(weatherSettings)
		template := s.Get("weatherCondition").String()
		w := &Weather{
			Base: Base{ID: conditions.Get(template), Template: template, Name: b.text.Get("weather_" + template)},
			raw:  s,
		}
		for _, t := range s.Get("pokemonType").Array() {
			w.Boosts = append(w.Boosts, b.typeByTemplate(t.String()))
		}
		b.snap.weather = append(b.snap.weather, w)
	}
	return nil
}

func (b *builder) buildMoves() error {
	for _, r := range b.records(moveRoute, moveSettings) {
		s := r.Settings(moveSettings)
		m := moveRoute.FindStringSubmatch(r.TemplateID)
		id, _ := strconv.Atoi(m[1])
		move := &Move{
			Base: Base{
				ID:       id,
				Template: strings.TrimPrefix(r.TemplateID, m[0]),
				Name:     b.text.Get(fmt.Sprintf("move_name_%04d", id)),
			},
			Type:          b.typeByTemplate(s.Get("type").String()),
			Power:         s.Get("power").Float(),
			Energy:        int(s.Get("energyDelta").Int()),
			DurationTurns: int(s.Get("durationTurns").Int()),
			raw:           s,
		}
		b.snap.moves = append(b.snap.moves, move)
	}
	return nil
}

func (b *builder) buildCreatures() error {
	forms, err := b.enum("Form", "")
	if err != nil {
		return err
	}
	costumes, err := b.enum("Costume", "")
	if err != nil {
		return err
	}
	temps, err := b.enum("HoloTemporaryEvolutionId", "")
	if err != nil {
		return err
	}

	var fromRecords []*Creature
	for _, r := range b.records(creatureRoute, creatureSettings) {
		s := r.Settings(creatureSettings)
		m := creatureRoute.FindStringSubmatch(r.TemplateID)
		id, _ := strconv.Atoi(m[1])
		template := strings.TrimPrefix(r.TemplateID, m[0])

		c := newCreature(Base{
			ID:       id,
			Template: template,
			Name:     b.text.Get(fmt.Sprintf("pokemon_name_%04d", id)),
		})
		c.Form = forms.Get(template)
		c.BaseTemplate = s.Get("pokemonId").String()
		if c.BaseTemplate == "" {
			c.BaseTemplate = template
		}
		c.Family = s.Get("familyId").String()
		c.Kind = VariantBase
		if c.Form != 0 {
			c.Kind = VariantForm
		}
		c.Stats = statsFrom(s.Get("stats"))
		c.raw = s
		c.SetCostume(costumes.Member(0))
		c.TempEvolution = temps.Member(0)

		for _, mv := range s.Get("quickMoves").Array() {
			c.links.QuickMoves = append(c.links.QuickMoves, b.moveByTemplate(mv.String()))
		}
		for _, mv := range s.Get("cinematicMoves").Array() {
			c.links.ChargeMoves = append(c.links.ChargeMoves, b.moveByTemplate(mv.String()))
		}
		c.links.Types = b.typing(s, "type", "type2")

		if !b.admit(c) {
			continue
		}
		fromRecords = append(fromRecords, c)
	}

	if err := b.expandForms(forms); err != nil {
		return err
	}
	b.expandTempEvolutions(fromRecords, temps)
	if err := b.expandCostumes(costumes); err != nil {
		return err
	}
	b.linkEvolutions()
	return nil
}

// typing resolves the one or two type references of a settings block.
func (b *builder) typing(s gjson.Result, first, second string) []*Type {
	var out []*Type
	for _, key := range []string{first, second} {
		if t := s.Get(key).String(); t != "" {
			out = append(out, b.typeByTemplate(t))
		}
	}
	return out
}

// admit appends c to the creature list unless its variant combination is
// already present.
func (b *builder) admit(c *Creature) bool {
	k := c.key()
	if b.seen[k] {
		b.logger.Debug("duplicate creature variant skipped",
			zap.String("template", c.Template),
			zap.Int("form", c.Form),
			zap.Int("costume", c.costume.Value),
			zap.Int("temp_evolution", c.TempEvolution.Value),
		)
		return false
	}
	b.seen[k] = true
	b.snap.creatures = append(b.snap.creatures, c)
	return true
}

func (b *builder) buildQuests() error {
	root, err := feed("quests", b.bundle.Quests)
	if err != nil || !root.Exists() {
		return err
	}
	if !root.IsObject() {
		return errors.New("quests feed is not an object")
	}
	rewardTypes, err := b.enum("Type", "QuestRewardProto")
	if err != nil {
		return err
	}

	root.ForEach(func(section, quests gjson.Result) bool {
		qt := questSections[section.String()]
		for _, raw := range quests.Array() {
			id := len(b.snap.quests) + 1
			q := &Quest{
				Base: Base{ID: id, Template: fmt.Sprintf("QUEST_%d", id), Name: raw.Get("task").String()},
				Task: raw.Get("task").String(),
				Type: qt,
			}
			if q.Name == "" {
				q.Name = locale.Missing
			}
			for _, rr := range raw.Get("rewards").Array() {
				q.Rewards = append(q.Rewards, b.reward(rewardTypes, rr))
			}
			b.snap.quests = append(b.snap.quests, q)
		}
		return true
	})
	return nil
}

func (b *builder) reward(rewardTypes *protoenum.Enum, raw gjson.Result) Reward {
	spelled := raw.Get("type").String()
	if alias, ok := questRewardAliases[spelled]; ok {
		spelled = alias
	}
	kind, ok := rewardTypes.Match(spelled)
	if !ok {
		kind = protoenum.Member{Name: strings.ToUpper(spelled)}
	}

	r := Reward{Kind: kind, Entity: GenericReward{}}
	switch kind.Name {
	case "POKEMON_ENCOUNTER", "MEGA_RESOURCE":
		c := unsetCreature()
		if w, ok := constraints(raw.Get("reward")); ok {
			c = b.creatureWhere(w)
		}
		if !c.Found() {
			b.unresolved("creature", raw.Get("reward").Raw)
		}
		r.Entity = c
	case "ITEM":
		item := query.First(ItemSchema, b.snap.items, query.Where{"id": raw.Get("id").Int()})
		if !item.Found() {
			b.unresolved("item", raw.Get("id").String())
		}
		r.Entity = item
	}
	switch kind.Name {
	case "STARDUST", "ITEM":
		r.Amount = int(raw.Get("amount").Int())
	}
	return r
}

func (b *builder) buildRaids() error {
	root, err := feed("raids", b.bundle.Raids)
	if err != nil || !root.Exists() {
		return err
	}
	if !root.IsObject() {
		return errors.New("raids feed is not an object")
	}
	root.ForEach(func(key, bosses gjson.Result) bool {
		level, err := strconv.Atoi(key.String())
		if err != nil {
			b.logger.Warn("raid level is not an integer", zap.String("level", key.String()))
			return true
		}
		for _, raw := range bosses.Array() {
			w, ok := constraints(raw)
			if !ok {
				continue
			}
			c := b.creatureWhere(w)
			if !c.Found() {
				b.unresolved("raid boss", raw.Raw)
				continue
			}
			b.snap.raids.add(level, c)
		}
		return true
	})
	return nil
}

func (b *builder) buildGuards() error {
	root, err := feed("guards", b.bundle.Guards)
	if err != nil {
		return err
	}
	characters, err := b.enum("InvasionCharacter", "")
	if err != nil {
		return err
	}

	for _, r := range b.records(guardRoute, guardSettings) {
		s := r.Settings(guardSettings)
		nameKey := s.Get("trainerName").String()
		if nameKey == "" {
			nameKey = "combat_grunt_name"
		}
		g := &GuardCharacter{
			Base: Base{
				ID:       characters.Get(r.TemplateID),
				Template: r.TemplateID,
				Name:     b.text.Get(nameKey),
			},
			Gender: GenderFemale,
			raw:    s,
		}
		if s.Get("isMale").Bool() {
			g.Gender = GenderMale
		}

		tokens := strings.Split(g.Template, "_")
		for _, tok := range tokens {
			if tok == "EXECUTIVE" || tok == "GIOVANNI" {
				g.Boss = true
			}
		}
		g.Type = unsetType()
		if len(tokens) > 1 {
			g.Type = query.First(TypeSchema, b.snap.types, query.Where{"template": "POKEMON_TYPE_" + tokens[1]})
		}

		if root.Exists() {
			info := root.Get(strconv.Itoa(g.ID))
			g.Active = info.Get("active").Bool()
			for _, slot := range info.Get("lineup.team").Array() {
				var team []*Creature
				for _, raw := range slot.Array() {
					c := b.creatureWhere(query.Where{"template": raw.Get("template").String()})
					if !c.Found() {
						b.unresolved("guard team", raw.Raw)
					}
					team = append(team, c)
				}
				g.Team = append(g.Team, team)
			}
			for _, pos := range info.Get("lineup.rewards").Array() {
				i := int(pos.Int())
				g.RewardPositions = append(g.RewardPositions, i)
				if i >= 0 && i < len(g.Team) {
					g.Rewards = append(g.Rewards, g.Team[i]...)
				}
			}
		}
		b.snap.guards = append(b.snap.guards, g)
	}
	return nil
}

func (b *builder) buildEvents() error {
	root, err := feed("events", b.bundle.Events)
	if err != nil || !root.Exists() {
		return err
	}
	if !root.IsArray() {
		return errors.New("events feed is not an array")
	}
	for i, raw := range root.Array() {
		name := raw.Get("name").String()
		e := &Event{
			Base:           Base{ID: i + 1, Template: eventTemplate(name, i+1), Name: name},
			Type:           ParseEventType(raw.Get("type").String()),
			Start:          b.eventTime(raw, "start"),
			End:            b.eventTime(raw, "end"),
			Spawns:         b.creatureList(raw.Get("spawns")),
			Eggs:           b.creatureList(raw.Get("eggs")),
			Raids:          b.creatureList(raw.Get("raids")),
			Shinies:        b.creatureList(raw.Get("shinies")),
			HasQuests:      raw.Get("has_quests").Bool(),
			HasSpawnpoints: raw.Get("has_spawnpoints").Bool(),
		}
		if e.Name == "" {
			e.Name = locale.Missing
		}
		for _, bonus := range raw.Get("bonuses").Array() {
			e.Bonuses = append(e.Bonuses, EventBonus{
				Text:  bonus.Get("text").String(),
				Type:  ParseEventBonusType(bonus.Get("template").String()),
				Value: bonus.Get("value").Float(),
			})
		}
		for _, f := range raw.Get("features").Array() {
			e.Features = append(e.Features, f.String())
		}
		b.snap.events = append(b.snap.events, e)
	}
	return nil
}

// eventTemplate upper-cases name and joins its alphanumeric runs with '_'.
// A name with no alphanumerics falls back to the feed position.
func eventTemplate(name string, id int) string {
	words := strings.FieldsFunc(strings.ToUpper(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return fmt.Sprintf("EVENT_%d", id)
	}
	return "EVENT_" + strings.Join(words, "_")
}

func (b *builder) eventTime(raw gjson.Result, field string) time.Time {
	v := raw.Get(field)
	if v.Type != gjson.String {
		return time.Time{}
	}
	t, err := time.Parse(eventTimeLayout, v.String())
	if err != nil {
		b.logger.Warn("unparseable event time",
			zap.String("event", raw.Get("name").String()),
			zap.String("field", field),
			zap.Error(err),
		)
		return time.Time{}
	}
	return t
}

// creatureList resolves feed constraint objects, dropping unresolved ones.
func (b *builder) creatureList(raw gjson.Result) []*Creature {
	var out []*Creature
	for _, item := range raw.Array() {
		w, ok := constraints(item)
		if !ok {
			continue
		}
		c := b.creatureWhere(w)
		if !c.Found() {
			b.unresolved("creature", item.Raw)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Package export writes catalog snapshots as YAML, one document per entity
// kind.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/pogodata/internal/catalog"
	"github.com/cory-johannsen/pogodata/internal/icon"
	"github.com/cory-johannsen/pogodata/internal/query"
)

// Kinds lists every exportable entity kind in file order.
var Kinds = []string{"types", "moves", "items", "weather", "creatures", "quests", "raids", "guards", "events"}

// Exporter renders snapshots. Icon URLs come from the resolver; a nil
// resolver omits them.
type Exporter struct {
	icons  *icon.Resolver
	logger *zap.Logger
}

// New constructs an Exporter.
//
// Postcondition: returns a non-nil Exporter.
func New(icons *icon.Resolver, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{icons: icons, logger: logger}
}

// Records returns the exported records of every entity of one kind.
func (e *Exporter) Records(snap *catalog.Snapshot, kind string) (any, error) {
	return e.Select(snap, kind, nil)
}

// Select returns the exported records of the entities of one kind matching w.
//
// Postcondition: the result is a slice of the kind's record type, or an
// error for an unknown kind.
func (e *Exporter) Select(snap *catalog.Snapshot, kind string, w query.Where) (any, error) {
	switch kind {
	case "types":
		var out []TypeRecord
		for _, t := range snap.AllTypes(w) {
			rec := TypeRecord{Base: t.Base}
			if e.icons != nil {
				rec.Icon = e.icons.Type(t.Template)
			}
			out = append(out, rec)
		}
		return out, nil
	case "moves":
		var out []MoveRecord
		for _, m := range snap.AllMoves(w) {
			out = append(out, MoveRecord{
				Base:          m.Base,
				Type:          m.Type.Template,
				Power:         m.Power,
				Energy:        m.Energy,
				DurationTurns: m.DurationTurns,
			})
		}
		return out, nil
	case "items":
		var out []ItemRecord
		for _, i := range snap.AllItems(w) {
			rec := ItemRecord{
				Base:        i.Base,
				Type:        i.Type.String(),
				Category:    i.Category.String(),
				MinLevel:    i.MinLevel,
				FoodEffects: i.FoodEffects,
			}
			if e.icons != nil {
				rec.Icon = e.icons.Item(i.ID, 1)
			}
			out = append(out, rec)
		}
		return out, nil
	case "weather":
		var out []WeatherRecord
		for _, wx := range snap.AllWeather(w) {
			rec := WeatherRecord{Base: wx.Base, Boosts: templates(wx.Boosts)}
			if e.icons != nil {
				rec.Icon = e.icons.Weather(wx.ID, wx.Template, true)
			}
			out = append(out, rec)
		}
		return out, nil
	case "creatures":
		var out []CreatureRecord
		for _, c := range snap.AllCreatures(w) {
			out = append(out, creatureRecord(c, e.icons))
		}
		return out, nil
	case "quests":
		var out []QuestRecord
		for _, q := range snap.AllQuests(w) {
			rec := QuestRecord{Base: q.Base, Task: q.Task, Type: q.Type.String()}
			for _, r := range q.Rewards {
				rr := RewardRecord{Kind: r.Kind.String(), Amount: r.Amount}
				switch ent := r.Entity.(type) {
				case *catalog.Creature:
					rr.Entity = creatureRef(ent)
				case *catalog.Item:
					rr.Entity = ent.Template
				}
				rec.Rewards = append(rec.Rewards, rr)
			}
			out = append(out, rec)
		}
		return out, nil
	case "raids":
		var out []RaidRecord
		for _, r := range snap.AllRaids(w) {
			rec := RaidRecord{Level: r.Level, Creature: creatureRef(r.Creature), Name: r.Creature.Name}
			if e.icons != nil {
				rec.Icon = e.icons.Creature(r.Creature)
			}
			out = append(out, rec)
		}
		return out, nil
	case "guards":
		var out []GuardRecord
		for _, g := range snap.AllGuards(w) {
			rec := GuardRecord{
				Base:    g.Base,
				Gender:  g.Gender.String(),
				Boss:    g.Boss,
				Active:  g.Active,
				Rewards: creatureRefs(g.Rewards),
			}
			if g.Type.Found() {
				rec.Type = g.Type.Template
			}
			for _, slot := range g.Team {
				rec.Team = append(rec.Team, creatureRefs(slot))
			}
			out = append(out, rec)
		}
		return out, nil
	case "events":
		var out []EventRecord
		for _, ev := range snap.AllEvents(w) {
			rec := EventRecord{
				Base:     ev.Base,
				Type:     ev.Type.String(),
				Start:    optionalTime(ev.Start),
				End:      optionalTime(ev.End),
				Spawns:   creatureRefs(ev.Spawns),
				Eggs:     creatureRefs(ev.Eggs),
				Raids:    creatureRefs(ev.Raids),
				Shinies:  creatureRefs(ev.Shinies),
				Features: ev.Features,
			}
			for _, b := range ev.Bonuses {
				rec.Bonuses = append(rec.Bonuses, b.Text)
			}
			out = append(out, rec)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown export kind %q (known: %v)", kind, Kinds)
}

// Marshal renders the entities of one kind matching w as a YAML document.
func (e *Exporter) Marshal(snap *catalog.Snapshot, kind string, w query.Where) ([]byte, error) {
	recs, err := e.Select(snap, kind, w)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("serialising %s: %w", kind, err)
	}
	return data, nil
}

// Write renders every kind into outputDir as <kind>.yaml.
//
// Precondition: outputDir must exist or be creatable.
// Postcondition: one YAML file per kind is written, each verified to decode
// back into the same number of records, or an error is returned.
func (e *Exporter) Write(snap *catalog.Snapshot, outputDir string) ([]string, error) {
	overall := time.Now()
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	var written []string
	for _, kind := range Kinds {
		t0 := time.Now()
		recs, err := e.Records(snap, kind)
		if err != nil {
			return written, err
		}
		data, err := yaml.Marshal(recs)
		if err != nil {
			return written, fmt.Errorf("serialising %s: %w", kind, err)
		}

		// Validate output decodes before writing.
		n := reflect.ValueOf(recs).Len()
		var back []map[string]any
		if err := yaml.Unmarshal(data, &back); err != nil {
			return written, fmt.Errorf("%s failed validation: %w", kind, err)
		}
		if len(back) != n {
			return written, fmt.Errorf("%s failed validation: wrote %d records, read %d", kind, n, len(back))
		}

		outPath := filepath.Join(outputDir, kind+".yaml")
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return written, fmt.Errorf("writing %s to %s: %w", kind, outPath, err)
		}
		written = append(written, outPath)
		e.logger.Info("exported",
			zap.String("kind", kind),
			zap.String("path", outPath),
			zap.Int("records", n),
			zap.Duration("elapsed", time.Since(t0)),
		)
	}
	e.logger.Info("export complete",
		zap.Int("files", len(written)),
		zap.Duration("elapsed", time.Since(overall)),
	)
	return written, nil
}

var validators = map[string]func(query.Where) error{
	"types":     catalog.TypeSchema.Validate,
	"moves":     catalog.MoveSchema.Validate,
	"items":     catalog.ItemSchema.Validate,
	"weather":   catalog.WeatherSchema.Validate,
	"creatures": catalog.CreatureSchema.Validate,
	"quests":    catalog.QuestSchema.Validate,
	"raids":     catalog.RaidSchema.Validate,
	"guards":    catalog.GuardSchema.Validate,
	"events":    catalog.EventSchema.Validate,
}

// ValidateWhere rejects constraint keys the kind's schema does not declare.
func ValidateWhere(kind string, w query.Where) error {
	validate, ok := validators[kind]
	if !ok {
		return fmt.Errorf("unknown kind %q", kind)
	}
	return validate(w)
}

package catalog

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pogodata/internal/icon"
	"github.com/cory-johannsen/pogodata/internal/protoenum"
	"github.com/cory-johannsen/pogodata/internal/query"
)

// expandForms applies form settings records. A listed form that has no record
// of its own becomes a shallow copy of the form-0 base. Asset overrides apply
// to both existing and new form creatures.
func (b *builder) expandForms(forms *protoenum.Enum) error {
	for _, r := range b.records(formRoute, formSettings) {
		s := r.Settings(formSettings)
		species := s.Get("pokemon").String()
		base := b.creatureWhere(query.Where{"base_template": species, "form": 0})
		if !base.Found() {
			b.unresolved("form base", species)
			continue
		}

		for _, f := range s.Get("forms").Array() {
			name := f.Get("form").String()
			if name == "" {
				continue
			}
			target := b.creatureWhere(query.Where{"template": name})
			if !target.Found() {
				target = base.variant(VariantForm)
				target.Template = name
				target.Form = forms.Get(name)
				if !b.admit(target) {
					continue
				}
			}
			if v := f.Get("assetBundleValue"); v.Exists() {
				target.SetAssetValue(fmt.Sprintf("%02d", v.Int()))
			}
			if sfx := f.Get("assetBundleSuffix").String(); sfx != "" {
				target.SetAssetSuffix(sfx)
			}
		}
	}
	return nil
}

// expandTempEvolutions adds one deep copy per temporary evolution override of
// every record-backed creature.
func (b *builder) expandTempEvolutions(records []*Creature, temps *protoenum.Enum) {
	for _, c := range records {
		for _, o := range c.raw.Get("tempEvoOverrides").Array() {
			id := o.Get("tempEvoId")
			if !id.Exists() {
				continue
			}
			m := member(temps, id)
			evo := c.deepVariant(VariantTempEvolution, o)
			evo.TempEvolution = m
			evo.Name = b.text.Get(fmt.Sprintf("pokemon_name_%04d_%04d", c.ID, m.Value))
			if st := o.Get("stats"); st.Exists() {
				evo.Stats = statsFrom(st)
			}
			if types := b.typing(o, "typeOverride1", "typeOverride2"); len(types) > 0 {
				evo.links.Types = types
			}
			if b.admit(evo) {
				c.links.TempEvolutions = append(c.links.TempEvolutions, evo)
			}
		}
	}
}

// expandCostumes adds a shallow copy per costume icon in the manifest. The
// copy's base is the costume-less creature whose asset the icon extends.
func (b *builder) expandCostumes(costumes *protoenum.Enum) error {
	paths, err := icon.ParseManifest(b.bundle.IconManifest)
	if err != nil {
		return err
	}
	added := 0
	for _, a := range icon.CostumeAssets(paths) {
		base := b.creatureWhere(query.Where{"asset": a.BaseAsset(), "costume": 0, "temp_evolution": 0})
		if !base.Found() {
			b.unresolved("costume base", a.BaseAsset())
			continue
		}
		v := base.variant(VariantCostume)
		v.SetCostume(costumes.Member(a.Costume))
		if b.admit(v) {
			added++
		}
	}
	b.logger.Debug("costume variants added", zap.Int("count", added))
	return nil
}

// linkEvolutions resolves every evolution branch and flattens the chains depth
// first. A visited set guards against cycles in the raw data.
func (b *builder) linkEvolutions() {
	direct := make(map[*Links][]*Creature)
	for _, c := range b.snap.creatures {
		if c.Kind == VariantTempEvolution {
			continue
		}
		if _, done := direct[c.links]; done {
			continue
		}
		var targets []*Creature
		for _, br := range c.raw.Get("evolutionBranch").Array() {
			evo := br.Get("evolution").String()
			if evo == "" {
				continue
			}
			t := unsetCreature()
			if form := br.Get("form").String(); form != "" {
				t = b.creatureWhere(query.Where{"template": form})
			}
			if !t.Found() {
				t = b.creatureWhere(query.Where{"template": evo})
			}
			if !t.Found() {
				b.unresolved("evolution", evo)
				continue
			}
			targets = append(targets, t)
		}
		direct[c.links] = targets
	}

	flattened := make(map[*Links]bool)
	for _, c := range b.snap.creatures {
		if c.Kind == VariantTempEvolution || flattened[c.links] {
			continue
		}
		flattened[c.links] = true
		c.links.Evolutions = flatten(c.links, direct, map[*Creature]bool{c: true}, nil)
	}
}

func flatten(l *Links, direct map[*Links][]*Creature, visited map[*Creature]bool, out []*Creature) []*Creature {
	for _, t := range direct[l] {
		if visited[t] {
			continue
		}
		visited[t] = true
		out = append(out, t)
		out = flatten(t.links, direct, visited, out)
	}
	return out
}

package catalog

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/cory-johannsen/pogodata/internal/locale"
)

// minSuggestScore drops candidates that share little more than a first letter.
const minSuggestScore = 0.7

// Suggestion is a creature whose name resembles a misspelled query.
type Suggestion struct {
	Creature *Creature
	Score    float64
}

// Suggest ranks base creatures by Jaro-Winkler similarity between their
// display name and name, best first. limit <= 0 returns every candidate above
// the score floor.
func (s *Snapshot) Suggest(name string, limit int) []Suggestion {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []Suggestion
	for _, c := range s.creatures {
		if c.Kind != VariantBase || seen[c.Name] || c.Name == locale.Missing {
			continue
		}
		seen[c.Name] = true
		score := matchr.JaroWinkler(want, strings.ToLower(c.Name), false)
		if score < minSuggestScore {
			continue
		}
		out = append(out, Suggestion{Creature: c, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Creature.ID < out[j].Creature.ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

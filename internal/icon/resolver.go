package icon

import (
	"fmt"
	"path"
	"strings"
)

// Creature is the view of a creature needed to name its icon.
type Creature interface {
	DexID() int
	FormID() int
	CostumeID() int
	Asset() string
}

// Resolver builds icon URLs for one set.
type Resolver struct {
	set   Set
	items string
	files map[string]bool
}

// NewResolver creates a Resolver for set. manifest lists the set's files and
// is only consulted by manifest-searching conventions.
//
// Postcondition: the resolver never mutates manifest.
func NewResolver(set Set, manifest []string) *Resolver {
	r := &Resolver{set: set, items: set.URL, files: make(map[string]bool, len(manifest))}
	for _, p := range manifest {
		r.files[path.Base(p)] = true
	}
	if set.Convention == ConventionPokeMiners {
		// Item rewards are only published in the optimized layout.
		for _, s := range mustSets() {
			if s.Convention == ConventionPMSF {
				r.items = s.URL
				break
			}
		}
	}
	return r
}

func mustSets() []Set {
	sets, err := Sets()
	if err != nil {
		return nil
	}
	return sets
}

// Set returns the icon set of the resolver.
func (r *Resolver) Set() Set { return r.set }

// Creature returns the icon URL of c, or "" when the manifest holds no
// candidate.
func (r *Resolver) Creature(c Creature) string {
	if r.set.Convention == ConventionPokeMiners {
		return r.set.URL + "Images/Pokemon/" + c.Asset() + ".png"
	}
	for _, dex := range []int{c.DexID(), 0} {
		for _, form := range []int{c.FormID(), 0} {
			for _, costume := range []int{c.CostumeID(), 0} {
				name := pmsfName(dex, form, costume)
				if r.files[name] {
					return r.set.URL + name
				}
			}
		}
	}
	return ""
}

func pmsfName(dex, form, costume int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "pokemon_icon_%03d", dex)
	if form == 0 {
		b.WriteString("_00")
	} else {
		fmt.Fprintf(&b, "_%d", form)
	}
	if costume > 0 {
		fmt.Fprintf(&b, "_%d", costume)
	}
	b.WriteString(".png")
	return b.String()
}

// Item returns the reward icon URL of an item stack.
func (r *Resolver) Item(id, amount int) string {
	return fmt.Sprintf("%srewards/reward_%d_%d.png", r.items, id, amount)
}

// Type returns the icon URL of a type, or "" when the set has no type icons.
func (r *Resolver) Type(template string) string {
	if r.set.Convention != ConventionPokeMiners {
		return ""
	}
	return r.set.URL + "Images/Types/" + template + ".png"
}

// Weather returns the icon URL of a weather condition, or "" when the set has
// no weather icons. Conditions 1 to 4 use the day/night art of the set.
func (r *Resolver) Weather(id int, template string, day bool) string {
	if r.set.Convention != ConventionPokeMiners {
		return ""
	}
	name := strings.ToLower(template)
	switch {
	case id == 1 && day:
		name = "sunny"
	case id == 2:
		name = "rain"
	case id == 3 && day:
		name = "partlycloudy_day"
	case id == 3:
		name = "partlycloudy_night"
	case id == 4:
		name = "cloudy"
	}
	return r.set.URL + "Images/Weather/weatherIcon_small_" + name + ".png"
}

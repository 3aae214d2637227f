package extract

import (
	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/slices"
)

// References are the entities an automation config touches, split by where
// they appear. HasTemplates marks the sets as incomplete.
type References struct {
	Triggers   mapset.Set[string]
	Conditions mapset.Set[string]
	Actions    mapset.Set[string]

	HasTemplates bool

	// Reasons explain HasTemplates, for server-side logs only.
	Reasons []string
}

// NewReferences returns empty references.
func NewReferences() *References {
	return &References{
		Triggers:   mapset.NewSet[string](),
		Conditions: mapset.NewSet[string](),
		Actions:    mapset.NewSet[string](),
	}
}

// All returns the union of the three buckets.
func (r *References) All() mapset.Set[string] {
	return r.Triggers.Union(r.Conditions).Union(r.Actions)
}

// Sorted returns the entities of a bucket in a stable order.
func Sorted(set mapset.Set[string]) []string {
	entities := set.ToSlice()
	slices.Sort(entities)

	return entities
}

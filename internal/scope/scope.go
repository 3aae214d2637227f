// Package scope decides which automations a caller may see, edit or write,
// based on the entities the caller's areas contain.
package scope

import (
	"strings"

	"github.com/benleb/autoscope/internal/extract"
	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/models/device"
	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
)

// Caller is the acting user with their grants.
type Caller struct {
	Name  string
	Admin bool

	// Areas are area names or area ids granted to a non-admin caller.
	Areas []string
}

// AllowedSet is the set of entities a caller may act on, built per request.
type AllowedSet struct {
	entities mapset.Set[string]
}

// NewAllowedSet returns an allowed set of exactly the given entities.
func NewAllowedSet(entityIDs ...string) AllowedSet {
	return AllowedSet{entities: mapset.NewSet(entityIDs...)}
}

// ForCaller builds the caller's allowed set from the snapshot: every entity
// for an admin, otherwise the entities located in one of the caller's areas.
func ForCaller(caller Caller, snapshot *device.Snapshot) AllowedSet {
	allowed := NewAllowedSet()

	if caller.Admin {
		for _, dev := range snapshot.Devices() {
			allowed.entities.Add(dev.EntityID)
		}

		return allowed
	}

	areas := mapset.NewSet[string]()

	for _, area := range caller.Areas {
		if area = strings.ToLower(strings.TrimSpace(area)); area != "" {
			areas.Add(area)
		}
	}

	if areas.Cardinality() == 0 {
		return allowed
	}

	for _, dev := range snapshot.Devices() {
		if areas.Contains(strings.ToLower(dev.Area)) || areas.Contains(strings.ToLower(dev.AreaID)) {
			allowed.entities.Add(dev.EntityID)
		}
	}

	return allowed
}

// Contains reports whether the entity is allowed.
func (a AllowedSet) Contains(entityID string) bool {
	return a.entities != nil && a.entities.Contains(entityID)
}

// Len returns the number of allowed entities.
func (a AllowedSet) Len() int {
	if a.entities == nil {
		return 0
	}

	return a.entities.Cardinality()
}

// IsEmpty reports whether nothing is allowed.
func (a AllowedSet) IsEmpty() bool { return a.Len() == 0 }

// Union returns a new set allowing the entities of both.
func (a AllowedSet) Union(other AllowedSet) AllowedSet {
	union := NewAllowedSet()

	for _, set := range []mapset.Set[string]{a.entities, other.entities} {
		if set != nil {
			union.entities = union.entities.Union(set)
		}
	}

	return union
}

// IsAllowed reports whether every referenced entity, from all three buckets, is allowed.
func IsAllowed(refs *extract.References, allowed AllowedSet) bool {
	all := refs.All()
	if all.Cardinality() == 0 {
		return true
	}

	if allowed.entities == nil {
		return false
	}

	return all.IsSubset(allowed.entities)
}

// CanEdit reports whether the config may be changed by the caller. Templated
// configs are never editable: their references are incomplete.
func CanEdit(refs *extract.References, allowed AllowedSet) bool {
	return IsAllowed(refs, allowed) && !refs.HasTemplates
}

// Denied returns the referenced entities outside the allowed set, for server-side logs.
func Denied(refs *extract.References, allowed AllowedSet) []string {
	denied := refs.All()
	if allowed.entities != nil {
		denied = denied.Difference(allowed.entities)
	}

	return extract.Sorted(denied)
}

// AuthorizeWrite checks a config about to be written. The error never says
// which entity was out of scope.
func AuthorizeWrite(logger *log.Logger, caller Caller, refs *extract.References, allowed AllowedSet) error {
	if IsAllowed(refs, allowed) {
		return nil
	}

	logger.Debug("write denied", "user", caller.Name, "entities", Denied(refs, allowed))

	return models.ErrOutOfScope
}

// AuthorizeEdit checks an existing config before it is overwritten, deleted or toggled.
func AuthorizeEdit(logger *log.Logger, caller Caller, refs *extract.References, allowed AllowedSet) error {
	if CanEdit(refs, allowed) {
		return nil
	}

	logger.Debug("edit denied", "user", caller.Name, "templated", refs.HasTemplates, "entities", Denied(refs, allowed))

	return models.ErrOutOfScope
}

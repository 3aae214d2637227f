package autoscope

import (
	"context"
	"fmt"
	"strings"

	"github.com/benleb/autoscope/internal/automation"
	"github.com/benleb/autoscope/internal/capability"
	"github.com/benleb/autoscope/internal/extract"
	"github.com/benleb/autoscope/internal/homeassistant"
	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/models/device"
	"github.com/benleb/autoscope/internal/scope"
	"golang.org/x/exp/slices"
)

// ListItem is an automation as shown to one caller.
type ListItem struct {
	ID          string          `json:"id"          yaml:"id"`
	Alias       string          `json:"alias"       yaml:"alias"`
	Description string          `json:"description" yaml:"description,omitempty"`
	Mode        automation.Mode `json:"mode"        yaml:"mode"`

	// EntityID is the automation entity on the hub.
	EntityID string `json:"entity_id" yaml:"entity_id"`

	ActionEntities []string `json:"action_entities" yaml:"action_entities"`
	HasTemplates   bool     `json:"has_templates"   yaml:"has_templates"`
	CanEdit        bool     `json:"can_edit"        yaml:"can_edit"`
	Enabled        bool     `json:"enabled"         yaml:"enabled"`
}

// List returns the automations the caller may see: all of them for an admin,
// otherwise those whose every referenced entity is allowed. A non-empty target
// keeps the items acting on that entity plus the templated items without any
// detected action entity.
func (s *Service) List(ctx context.Context, caller scope.Caller, target string) ([]ListItem, error) {
	_, allowed, err := s.allowed(ctx, caller)
	if err != nil {
		return nil, err
	}

	automations, err := s.hub.ListAutomations(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(automations))

	for _, auto := range automations {
		refs := extract.Extract(auto.Config)

		if !caller.Admin && !scope.IsAllowed(refs, allowed) {
			continue
		}

		if target != "" && !matchesTarget(refs, target) {
			continue
		}

		if refs.HasTemplates {
			s.pr.Debug("templated automation", "id", auto.Config.ID, "reasons", refs.Reasons)
		}

		items = append(items, newListItem(auto, refs, allowed))
	}

	slices.SortFunc(items, func(a, b ListItem) int {
		if c := strings.Compare(strings.ToLower(a.Alias), strings.ToLower(b.Alias)); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})

	return items, nil
}

func newListItem(auto homeassistant.Automation, refs *extract.References, allowed scope.AllowedSet) ListItem {
	return ListItem{
		ID:             auto.Config.ID,
		Alias:          auto.Config.Alias,
		Description:    auto.Config.Description,
		Mode:           auto.Config.Mode,
		EntityID:       auto.EntityID,
		ActionEntities: extract.Sorted(refs.Actions),
		HasTemplates:   refs.HasTemplates,
		CanEdit:        scope.CanEdit(refs, allowed),
		Enabled:        auto.Enabled,
	}
}

func matchesTarget(refs *extract.References, target string) bool {
	if refs.Actions.Contains(target) {
		return true
	}

	return refs.Actions.Cardinality() == 0 && refs.HasTemplates
}

// Capabilities are the trigger and action shapes offered for one device.
type Capabilities struct {
	Device   device.Device            `json:"device"   yaml:"device"`
	Rule     string                   `json:"rule"     yaml:"rule"`
	Excluded bool                     `json:"excluded" yaml:"excluded"`
	Triggers []capability.TriggerSpec `json:"triggers" yaml:"triggers"`
	Actions  []capability.ActionSpec  `json:"actions"  yaml:"actions"`
}

// Capabilities returns what the caller can build for an entity in their scope.
func (s *Service) Capabilities(ctx context.Context, caller scope.Caller, entityID string, capCtx capability.Context) (*Capabilities, error) {
	snapshot, allowed, err := s.allowed(ctx, caller)
	if err != nil {
		return nil, err
	}

	// unknown and foreign entities look the same to a tenant
	if !caller.Admin && !allowed.Contains(entityID) {
		s.pr.Debug("capabilities denied", "user", caller.Name, "entity", entityID)

		return nil, models.ErrOutOfScope
	}

	dev, ok := snapshot.Lookup(entityID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidEntityID, entityID)
	}

	return &Capabilities{
		Device:   dev,
		Rule:     capability.RuleName(dev),
		Excluded: capability.IsAutomationExcluded(dev),
		Triggers: capability.TriggersFor(dev, capCtx),
		Actions:  capability.ActionsFor(dev, capCtx),
	}, nil
}

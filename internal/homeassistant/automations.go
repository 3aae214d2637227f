package homeassistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/benleb/autoscope/internal/automation"
	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/models/domain"
	"github.com/benleb/autoscope/internal/models/service"
)

// Automation is an automation known to the hub.
type Automation struct {
	EntityID string
	Enabled  bool
	Config   *automation.Config
}

// automationEntities maps config ids to the automation entities, from the
// "id" attribute of automation.* states. Automations without one are not
// stored in the config API and are skipped.
func (c *Client) automationEntities(ctx context.Context) (map[string]State, error) {
	states, err := c.GetStates(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]State)

	for _, state := range states {
		if state.EntityID.Domain() != domain.Automation {
			continue
		}

		id, ok := state.Attributes["id"].(string)
		if !ok || id == "" {
			c.pr.Debugf("skipping %s without config id", state.EntityID.ID)

			continue
		}

		byID[id] = state
	}

	return byID, nil
}

// ListAutomations returns every automation stored in the hub's config API.
func (c *Client) ListAutomations(ctx context.Context) ([]Automation, error) {
	byID, err := c.automationEntities(ctx)
	if err != nil {
		return nil, err
	}

	automations := make([]Automation, 0, len(byID))

	for id, state := range byID {
		cfg, err := c.GetAutomation(ctx, id)
		if errors.Is(err, models.ErrAutomationNotFound) {
			// removed between the two requests
			continue
		} else if err != nil {
			return nil, err
		}

		automations = append(automations, Automation{
			EntityID: state.EntityID.ID,
			Enabled:  state.State == "on",
			Config:   cfg,
		})
	}

	return automations, nil
}

// SetAutomationEnabled turns the automation with the given config id on or off.
func (c *Client) SetAutomationEnabled(ctx context.Context, id string, enabled bool) error {
	byID, err := c.automationEntities(ctx)
	if err != nil {
		return err
	}

	state, ok := byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrAutomationNotFound, id)
	}

	svc := service.TurnOff
	if enabled {
		svc = service.TurnOn
	}

	return c.CallService(ctx, domain.Automation, svc, nil, state.EntityID.ID)
}

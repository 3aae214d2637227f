package homeassistant

import (
	"context"
	"fmt"

	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/models/device"
)

func (c *Client) AreaRegistry(ctx context.Context) ([]AreaEntry, error) {
	var areas []AreaEntry

	return areas, c.list(ctx, "config/area_registry/list", &areas)
}

func (c *Client) DeviceRegistry(ctx context.Context) ([]DeviceEntry, error) {
	var devices []DeviceEntry

	return devices, c.list(ctx, "config/device_registry/list", &devices)
}

func (c *Client) EntityRegistry(ctx context.Context) ([]EntityEntry, error) {
	var entities []EntityEntry

	return entities, c.list(ctx, "config/entity_registry/list", &entities)
}

func (c *Client) list(ctx context.Context, msgType string, out any) error {
	result, err := c.call(ctx, newMessage(msgType))
	if err != nil {
		return err
	}

	if err := decode(result.Result, out); err != nil {
		return fmt.Errorf("%w: decoding %s result: %w", models.ErrHubRequest, msgType, err)
	}

	return nil
}

// Devices returns every entity with its area, resolved through the registries.
// An entity's own area overrides the area of its device.
func (c *Client) Devices(ctx context.Context) ([]device.Device, error) {
	states, err := c.GetStates(ctx)
	if err != nil {
		return nil, err
	}

	areas, err := c.AreaRegistry(ctx)
	if err != nil {
		return nil, err
	}

	devices, err := c.DeviceRegistry(ctx)
	if err != nil {
		return nil, err
	}

	entities, err := c.EntityRegistry(ctx)
	if err != nil {
		return nil, err
	}

	return joinRegistries(states, areas, devices, entities), nil
}

func joinRegistries(states []State, areas []AreaEntry, devices []DeviceEntry, entities []EntityEntry) []device.Device {
	areaNames := make(map[string]string, len(areas))
	for _, area := range areas {
		areaNames[area.AreaID] = area.Name
	}

	deviceAreas := make(map[string]string, len(devices))
	for _, dev := range devices {
		deviceAreas[dev.ID] = dev.AreaID
	}

	registry := make(map[string]EntityEntry, len(entities))
	for _, entry := range entities {
		registry[entry.EntityID] = entry
	}

	out := make([]device.Device, 0, len(states))

	for _, state := range states {
		dev := device.Device{
			EntityID:   state.EntityID.ID,
			Domain:     state.EntityID.Domain(),
			Attributes: state.Attributes,
		}

		if entry, ok := registry[dev.EntityID]; ok {
			dev.EntityCategory = entry.EntityCategory

			dev.AreaID = entry.AreaID
			if dev.AreaID == "" {
				dev.AreaID = deviceAreas[entry.DeviceID]
			}

			dev.Area = areaNames[dev.AreaID]
		}

		out = append(out, dev)
	}

	return out
}

package homeassistant

import (
	"time"

	"github.com/benleb/autoscope/internal/models/entity"
)

type State struct {
	EntityID    entity.EntityID `json:"entity_id"    mapstructure:"entity_id"`
	State       string          `json:"state"        mapstructure:"state"`
	LastChanged time.Time       `json:"last_changed" mapstructure:"last_changed"`
	LastUpdated time.Time       `json:"last_updated" mapstructure:"last_updated"`
	Context     StateContext    `json:"context"      mapstructure:"context"`
	Attributes  map[string]any  `json:"attributes"   mapstructure:"attributes"`
}

type StateContext struct {
	ID       string `json:"id"        mapstructure:"id"`
	ParentID string `json:"parent_id" mapstructure:"parent_id"`
	UserID   string `json:"user_id"   mapstructure:"user_id"`
}

// AreaEntry is an item of the area registry.
type AreaEntry struct {
	AreaID string `json:"area_id" mapstructure:"area_id"`
	Name   string `json:"name"    mapstructure:"name"`
}

// DeviceEntry is an item of the device registry.
type DeviceEntry struct {
	ID     string `json:"id"      mapstructure:"id"`
	AreaID string `json:"area_id" mapstructure:"area_id"`
	Name   string `json:"name"    mapstructure:"name"`
}

// EntityEntry is an item of the entity registry.
type EntityEntry struct {
	EntityID       string   `json:"entity_id"       mapstructure:"entity_id"`
	AreaID         string   `json:"area_id"         mapstructure:"area_id"`
	DeviceID       string   `json:"device_id"       mapstructure:"device_id"`
	EntityCategory string   `json:"entity_category" mapstructure:"entity_category"`
	Labels         []string `json:"labels"          mapstructure:"labels"`
}

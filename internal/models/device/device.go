package device

import (
	"strings"

	"github.com/benleb/autoscope/internal/models/domain"
	"golang.org/x/exp/slices"
)

// Device is one entity of the hub's device snapshot.
type Device struct {
	EntityID string        `json:"entity_id" mapstructure:"entity_id"`
	Domain   domain.Domain `json:"domain"    mapstructure:"domain"`

	// Area is the area name, AreaID the hub's registry id for it.
	Area   string `json:"area,omitempty"    mapstructure:"area"`
	AreaID string `json:"area_id,omitempty" mapstructure:"area_id"`

	// Category is an assigned label such as "Light", "Blind" or "Boiler".
	Category string `json:"category,omitempty" mapstructure:"category"`

	// EntityCategory is the registry's entity category ("config", "diagnostic" or empty).
	EntityCategory string `json:"entity_category,omitempty" mapstructure:"entity_category"`

	Attributes map[string]any `json:"attributes,omitempty" mapstructure:"attributes"`
}

// ObjectID returns the part of the entity id after the domain.
func (d Device) ObjectID() string {
	_, objectID, _ := strings.Cut(d.EntityID, ".")

	return objectID
}

// FriendlyName returns the friendly_name attribute or the entity id.
func (d Device) FriendlyName() string {
	if name, ok := d.Attributes["friendly_name"].(string); ok && name != "" {
		return name
	}

	return d.EntityID
}

// StringAttr returns a string attribute.
func (d Device) StringAttr(key string) (string, bool) {
	value, ok := d.Attributes[key].(string)

	return value, ok
}

// NumberAttr returns a numeric attribute regardless of its decoded number type.
func (d Device) NumberAttr(key string) (float64, bool) {
	switch value := d.Attributes[key].(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	}

	return 0, false
}

// StringsAttr returns a list attribute of strings, skipping non-string elements.
func (d Device) StringsAttr(key string) []string {
	switch values := d.Attributes[key].(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))

		for _, value := range values {
			if s, ok := value.(string); ok {
				out = append(out, s)
			}
		}

		return out
	}

	return nil
}

// HasAttr reports whether the device reports the given attribute at all.
func (d Device) HasAttr(key string) bool {
	_, ok := d.Attributes[key]

	return ok
}

// SupportsFeature checks a bit of the supported_features bitmask.
func (d Device) SupportsFeature(feature int64) bool {
	features, ok := d.NumberAttr("supported_features")

	return ok && int64(features)&feature != 0
}

// Snapshot is the device inventory of the active hub connection.
type Snapshot struct {
	devices []Device
	index   map[string]int
}

// NewSnapshot indexes the given devices by entity id. Later duplicates win.
func NewSnapshot(devices ...Device) *Snapshot {
	snap := &Snapshot{
		devices: make([]Device, 0, len(devices)),
		index:   make(map[string]int, len(devices)),
	}

	for _, dev := range devices {
		if idx, ok := snap.index[dev.EntityID]; ok {
			snap.devices[idx] = dev

			continue
		}

		snap.index[dev.EntityID] = len(snap.devices)
		snap.devices = append(snap.devices, dev)
	}

	return snap
}

// Lookup returns the device with the given entity id.
func (s *Snapshot) Lookup(entityID string) (Device, bool) {
	if s == nil {
		return Device{}, false
	}

	idx, ok := s.index[entityID]
	if !ok {
		return Device{}, false
	}

	return s.devices[idx], true
}

// Devices returns the devices sorted by entity id.
func (s *Snapshot) Devices() []Device {
	if s == nil {
		return nil
	}

	devices := slices.Clone(s.devices)
	slices.SortFunc(devices, func(a, b Device) int { return strings.Compare(a.EntityID, b.EntityID) })

	return devices
}

// Len returns the number of devices in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}

	return len(s.devices)
}

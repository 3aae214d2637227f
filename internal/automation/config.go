package automation

import (
	"fmt"
	"strings"

	"github.com/benleb/autoscope/internal/models"
)

// Config is the hub's native automation configuration. Triggers, conditions
// and actions stay loosely typed: the hub's schema is richer than what the
// compiler emits and foreign configs must survive a round trip untouched.
type Config struct {
	ID          string `json:"id"                    mapstructure:"id"          yaml:"id"`
	Alias       string `json:"alias"                 mapstructure:"alias"       yaml:"alias"`
	Description string `json:"description,omitempty" mapstructure:"description" yaml:"description,omitempty"`
	Mode        Mode   `json:"mode"                  mapstructure:"mode"        yaml:"mode"`
	Triggers    []any  `json:"triggers"              mapstructure:"triggers"    yaml:"triggers"`
	Conditions  []any  `json:"conditions"            mapstructure:"conditions"  yaml:"conditions"`
	Actions     []any  `json:"actions"               mapstructure:"actions"     yaml:"actions"`
}

// ParseConfig normalizes a configuration as returned by the hub or read from a
// file. Both the current plural keys and the legacy singular keys are
// accepted, each as a single object or a list.
func ParseConfig(raw map[string]any) (*Config, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty automation config", models.ErrHubRequest)
	}

	cfg := &Config{
		ID:          scalarString(raw["id"]),
		Alias:       scalarString(raw["alias"]),
		Description: scalarString(raw["description"]),
		Mode:        Mode(scalarString(raw["mode"])),
		Triggers:    asList(firstOf(raw, "triggers", "trigger")),
		Conditions:  asList(firstOf(raw, "conditions", "condition")),
		Actions:     asList(firstOf(raw, "actions", "action")),
	}

	if cfg.Mode == "" {
		cfg.Mode = ModeSingle
	}

	return cfg, nil
}

func (c *Config) String() string {
	return fmt.Sprintf("%s (%s) %d triggers, %d conditions, %d actions",
		c.Alias, c.ID, len(c.Triggers), len(c.Conditions), len(c.Actions))
}

func firstOf(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := raw[key]; ok && value != nil {
			return value
		}
	}

	return nil
}

func asList(value any) []any {
	switch v := value.(type) {
	case nil:
		return []any{}
	case []any:
		return v
	case []map[string]any:
		list := make([]any, 0, len(v))
		for _, item := range v {
			list = append(list, item)
		}

		return list
	}

	return []any{value}
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	}

	return fmt.Sprint(value)
}

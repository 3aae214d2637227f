package automation

import (
	"reflect"
	"testing"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want *Config
	}{
		{
			name: "modern keys",
			raw: map[string]any{
				"id": "wake_up", "alias": "Wake up", "mode": "queued",
				"triggers":   []any{map[string]any{"trigger": "time", "at": "07:30:00"}},
				"conditions": []any{},
				"actions":    []any{map[string]any{"action": "light.turn_on", "target": map[string]any{"entity_id": "light.bedroom"}}},
			},
			want: &Config{
				ID: "wake_up", Alias: "Wake up", Mode: ModeQueued,
				Triggers:   []any{map[string]any{"trigger": "time", "at": "07:30:00"}},
				Conditions: []any{},
				Actions:    []any{map[string]any{"action": "light.turn_on", "target": map[string]any{"entity_id": "light.bedroom"}}},
			},
		},
		{
			name: "legacy singular keys and numeric id",
			raw: map[string]any{
				"id": 1600000000000, "alias": "Old one", "description": " from the ui ",
				"trigger":   map[string]any{"platform": "state", "entity_id": "binary_sensor.door"},
				"condition": "{{ is_state('sun.sun', 'below_horizon') }}",
				"action":    []any{map[string]any{"service": "light.turn_on", "entity_id": "light.porch"}},
			},
			want: &Config{
				ID: "1600000000000", Alias: "Old one", Description: "from the ui", Mode: ModeSingle,
				Triggers:   []any{map[string]any{"platform": "state", "entity_id": "binary_sensor.door"}},
				Conditions: []any{"{{ is_state('sun.sun', 'below_horizon') }}"},
				Actions:    []any{map[string]any{"service": "light.turn_on", "entity_id": "light.porch"}},
			},
		},
		{
			name: "empty",
			raw:  map[string]any{"alias": "nothing"},
			want: &Config{Alias: "nothing", Mode: ModeSingle, Triggers: []any{}, Conditions: []any{}, Actions: []any{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfig(tt.raw)
			if err != nil {
				t.Fatalf("ParseConfig() unexpected error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseConfig() = %#v, want %#v", got, tt.want)
			}
		})
	}

	if _, err := ParseConfig(nil); err == nil {
		t.Error("ParseConfig(nil) expected an error")
	}
}

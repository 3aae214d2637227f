package extract

import (
	"reflect"
	"testing"

	"github.com/benleb/autoscope/internal/automation"
)

func TestExtract_CompiledDrafts(t *testing.T) {
	tests := []struct {
		name    string
		trigger map[string]any
		action  map[string]any
	}{
		{
			name:    "state trigger and power action",
			trigger: map[string]any{"type": "state", "entityId": "sensor.kitchen_motion", "to": "on", "forSeconds": 5},
			action:  map[string]any{"type": "turn_on", "entityId": "light.kitchen"},
		},
		{
			name:    "state equals and brightness",
			trigger: map[string]any{"type": "device", "entityId": "binary_sensor.door", "mode": "state_equals", "to": "on", "weekdays": []any{"mon"}},
			action:  map[string]any{"type": "set_brightness", "entityId": "light.hall", "value": 70},
		},
		{
			name:    "attribute delta and temperature",
			trigger: map[string]any{"type": "device", "entityId": "climate.boiler", "mode": "attribute_delta", "attribute": "current_temperature", "direction": "decreased"},
			action:  map[string]any{"type": "set_temperature", "entityId": "climate.boiler", "value": 22},
		},
		{
			name:    "position equals and cover command",
			trigger: map[string]any{"type": "device", "entityId": "cover.bedroom", "mode": "position_equals", "to": 100},
			action:  map[string]any{"type": "device_command", "entityId": "cover.kitchen", "command": "blind/set_position", "value": 20},
		},
		{
			name:    "weekly schedule and volume",
			trigger: map[string]any{"type": "schedule", "scheduleType": "weekly", "at": "07:30", "weekdays": []any{"mon", "wed", "fri"}},
			action:  map[string]any{"type": "device_command", "entityId": "media_player.tv", "command": "media/volume_set", "value": 15},
		},
		{
			name:    "monthly schedule and cover position",
			trigger: map[string]any{"type": "schedule", "scheduleType": "monthly", "at": "12:00", "day": 15},
			action:  map[string]any{"type": "set_cover_position", "entityId": "cover.garage", "value": 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := automation.Validate(map[string]any{"alias": tt.name, "trigger": tt.trigger, "action": tt.action})
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}

			cfg, err := automation.Compile(draft, "")
			if err != nil {
				t.Fatalf("Compile() unexpected error: %v", err)
			}

			refs := Extract(cfg)

			if refs.HasTemplates {
				t.Errorf("Extract() flagged compiled config: %v", refs.Reasons)
			}

			wantTriggers := []string{}
			if id := draft.Trigger.EntityID(); id != "" {
				wantTriggers = []string{id}
			}

			if got := Sorted(refs.Triggers); !reflect.DeepEqual(got, wantTriggers) {
				t.Errorf("Extract() triggers = %v, want %v", got, wantTriggers)
			}

			if got := Sorted(refs.Actions); !reflect.DeepEqual(got, []string{draft.Action.EntityID()}) {
				t.Errorf("Extract() actions = %v, want [%s]", got, draft.Action.EntityID())
			}

			if refs.Conditions.Cardinality() != 0 {
				t.Errorf("Extract() conditions = %v, want none", Sorted(refs.Conditions))
			}
		})
	}
}

func TestExtract_ForeignConfigs(t *testing.T) {
	tests := []struct {
		name           string
		raw            map[string]any
		wantTriggers   []string
		wantConditions []string
		wantActions    []string
		wantTemplates  bool
	}{
		{
			name: "templated area target",
			raw: map[string]any{
				"alias":    "Heat the kitchen",
				"triggers": []any{map[string]any{"trigger": "time", "at": "06:00:00"}},
				"actions": []any{map[string]any{
					"action": "climate.set_temperature",
					"target": map[string]any{"entity_id": "{{ area_entities('kitchen') }}"},
					"data":   map[string]any{"temperature": 21},
				}},
			},
			wantTriggers:   []string{},
			wantConditions: []string{},
			wantActions:    []string{},
			wantTemplates:  true,
		},
		{
			name: "legacy keys with comma list and list ids",
			raw: map[string]any{
				"trigger":   map[string]any{"platform": "state", "entity_id": []any{"binary_sensor.a", "binary_sensor.b"}},
				"condition": map[string]any{"condition": "state", "entity_id": "sun.sun", "state": "below_horizon"},
				"action":    map[string]any{"service": "light.turn_on", "entity_id": "light.a, light.b"},
			},
			wantTriggers:   []string{"binary_sensor.a", "binary_sensor.b"},
			wantConditions: []string{"sun.sun"},
			wantActions:    []string{"light.a", "light.b"},
		},
		{
			name: "nested control flow",
			raw: map[string]any{
				"triggers": []any{
					map[string]any{"trigger": "numeric_state", "entity_id": "sensor.temp", "above": "input_number.limit"},
					map[string]any{"trigger": "time", "at": "input_datetime.alarm"},
				},
				"conditions": []any{map[string]any{"condition": "or", "conditions": []any{
					map[string]any{"condition": "state", "entity_id": "person.alice", "state": "home"},
					map[string]any{"not": []any{map[string]any{"condition": "state", "entity_id": "input_boolean.away", "state": "on"}}},
				}}},
				"actions": []any{
					map[string]any{"choose": []any{map[string]any{
						"conditions": []any{map[string]any{"condition": "numeric_state", "entity_id": "sensor.lux", "below": 10}},
						"sequence":   []any{map[string]any{"action": "light.turn_on", "target": map[string]any{"entity_id": "light.hall"}}},
					}}, "default": []any{map[string]any{"scene": "scene.evening"}}},
					map[string]any{"if": []any{map[string]any{"condition": "time", "after": "input_datetime.night"}},
						"then": []any{map[string]any{"wait_for_trigger": []any{map[string]any{"trigger": "state", "entity_id": "binary_sensor.door"}}}},
						"else": []any{map[string]any{"delay": "00:01:00"}}},
					map[string]any{"repeat": map[string]any{
						"while":    []any{map[string]any{"condition": "state", "entity_id": "switch.pump", "state": "on"}},
						"sequence": []any{map[string]any{"action": "switch.turn_off", "target": map[string]any{"entity_id": []any{"switch.pump"}}}},
					}},
					map[string]any{"parallel": []any{
						map[string]any{"sequence": []any{map[string]any{"event": "custom", "event_data": map[string]any{"entity_id": "light.x"}}}},
						map[string]any{"action": "notify.mobile_app_phone", "data": map[string]any{"message": "done"}},
					}},
					map[string]any{"stop": "finished"},
				},
			},
			wantTriggers:   []string{"binary_sensor.door", "input_datetime.alarm", "input_number.limit", "sensor.temp"},
			wantConditions: []string{"input_boolean.away", "input_datetime.night", "person.alice", "sensor.lux", "switch.pump"},
			wantActions:    []string{"light.hall", "light.x", "scene.evening", "switch.pump"},
		},
		{
			name: "area target is opaque",
			raw: map[string]any{
				"triggers": []any{map[string]any{"trigger": "sun", "event": "sunset"}},
				"actions":  []any{map[string]any{"action": "light.turn_off", "target": map[string]any{"area_id": "kitchen", "entity_id": "light.porch"}}},
			},
			wantTriggers:   []string{},
			wantConditions: []string{},
			wantActions:    []string{"light.porch"},
			wantTemplates:  true,
		},
		{
			name: "all target is opaque",
			raw: map[string]any{
				"triggers": []any{map[string]any{"trigger": "homeassistant", "event": "shutdown"}},
				"actions":  []any{map[string]any{"action": "light.turn_off", "target": map[string]any{"entity_id": "all"}}},
			},
			wantTriggers:   []string{},
			wantConditions: []string{},
			wantActions:    []string{},
			wantTemplates:  true,
		},
		{
			name: "device trigger without entity is opaque",
			raw: map[string]any{
				"triggers": []any{map[string]any{"trigger": "device", "device_id": "abc123", "domain": "zha", "type": "remote_button_short_press"}},
				"actions":  []any{map[string]any{"action": "light.toggle", "target": map[string]any{"entity_id": "light.desk"}}},
			},
			wantTriggers:   []string{},
			wantConditions: []string{},
			wantActions:    []string{"light.desk"},
			wantTemplates:  true,
		},
		{
			name: "unknown platform still yields its entities",
			raw: map[string]any{
				"triggers": []any{map[string]any{"platform": "fancy_custom", "entity_id": "sensor.thing"}},
				"actions":  []any{map[string]any{"action": "switch.turn_on", "entity_id": "switch.a"}},
			},
			wantTriggers:   []string{"sensor.thing"},
			wantConditions: []string{},
			wantActions:    []string{"switch.a"},
			wantTemplates:  true,
		},
		{
			name: "unknown service domain is opaque",
			raw: map[string]any{
				"triggers": []any{map[string]any{"trigger": "state", "entity_id": "sensor.a"}},
				"actions":  []any{map[string]any{"action": "pyscript.do_anything"}},
			},
			wantTriggers:   []string{"sensor.a"},
			wantConditions: []string{},
			wantActions:    []string{},
			wantTemplates:  true,
		},
		{
			name: "script call is opaque",
			raw: map[string]any{
				"triggers": []any{map[string]any{"trigger": "state", "entity_id": "light.kitchen"}},
				"actions":  []any{map[string]any{"action": "script.unlock_front_door"}},
			},
			wantTriggers:   []string{"light.kitchen"},
			wantConditions: []string{},
			wantActions:    []string{},
			wantTemplates:  true,
		},
		{
			name: "triggering another automation is opaque",
			raw: map[string]any{
				"triggers": []any{map[string]any{"trigger": "state", "entity_id": "light.kitchen"}},
				"actions":  []any{map[string]any{"action": "automation.trigger", "target": map[string]any{"entity_id": "automation.door"}}},
			},
			wantTriggers:   []string{"light.kitchen"},
			wantConditions: []string{},
			wantActions:    []string{"automation.door"},
			wantTemplates:  true,
		},
		{
			name: "scene apply collects the scene's entities",
			raw: map[string]any{
				"triggers": []any{map[string]any{"trigger": "state", "entity_id": "light.kitchen"}},
				"actions": []any{map[string]any{
					"action": "scene.apply",
					"data":   map[string]any{"entities": map[string]any{"lock.front_door": "unlocked", "light.hall": map[string]any{"state": "on"}}},
				}},
			},
			wantTriggers:   []string{"light.kitchen"},
			wantConditions: []string{},
			wantActions:    []string{"light.hall", "lock.front_door"},
		},
		{
			name: "scene create collects snapshot entities",
			raw: map[string]any{
				"triggers": []any{map[string]any{"trigger": "state", "entity_id": "light.kitchen"}},
				"actions": []any{map[string]any{
					"service": "scene.create",
					"data":    map[string]any{"scene_id": "before", "snapshot_entities": []any{"lock.front_door"}},
				}},
			},
			wantTriggers:   []string{"light.kitchen"},
			wantConditions: []string{},
			wantActions:    []string{"lock.front_door"},
		},
		{
			name: "group set collects its members",
			raw: map[string]any{
				"triggers": []any{map[string]any{"trigger": "state", "entity_id": "light.kitchen"}},
				"actions": []any{map[string]any{
					"action": "group.set",
					"data":   map[string]any{"object_id": "doors", "entities": []any{"lock.front_door"}, "add_entities": "lock.back_door"},
				}},
			},
			wantTriggers:   []string{"light.kitchen"},
			wantConditions: []string{},
			wantActions:    []string{"lock.back_door", "lock.front_door"},
		},
		{
			name: "data_template is opaque",
			raw: map[string]any{
				"triggers": []any{map[string]any{"trigger": "state", "entity_id": "sensor.a"}},
				"actions":  []any{map[string]any{"service": "light.turn_on", "data_template": map[string]any{"entity_id": "light.a"}}},
			},
			wantTriggers:   []string{"sensor.a"},
			wantConditions: []string{},
			wantActions:    []string{"light.a"},
			wantTemplates:  true,
		},
		{
			name: "template shorthand condition is opaque",
			raw: map[string]any{
				"triggers":   []any{map[string]any{"trigger": "state", "entity_id": "sensor.a"}},
				"conditions": []any{"{{ is_state('lock.front', 'unlocked') }}"},
				"actions":    []any{map[string]any{"action": "light.turn_on", "target": map[string]any{"entity_id": "light.a"}}},
			},
			wantTriggers:   []string{"sensor.a"},
			wantConditions: []string{},
			wantActions:    []string{"light.a"},
			wantTemplates:  true,
		},
		{
			name: "safe month day template is not opaque",
			raw: map[string]any{
				"triggers":   []any{map[string]any{"trigger": "time", "at": "06:00:00"}},
				"conditions": []any{map[string]any{"condition": "template", "value_template": "{{ now().day == 1 }}"}},
				"actions":    []any{map[string]any{"action": "light.turn_on", "target": map[string]any{"entity_id": "light.a"}}},
			},
			wantTriggers:   []string{},
			wantConditions: []string{},
			wantActions:    []string{"light.a"},
		},
		{
			name: "malformed entity id is opaque",
			raw: map[string]any{
				"triggers": []any{map[string]any{"trigger": "state", "entity_id": "Kitchen Light"}},
				"actions":  []any{map[string]any{"action": "light.turn_on", "target": map[string]any{"entity_id": "light.a"}}},
			},
			wantTriggers:   []string{},
			wantConditions: []string{},
			wantActions:    []string{"light.a"},
			wantTemplates:  true,
		},
		{
			name: "unknown step is opaque",
			raw: map[string]any{
				"triggers": []any{map[string]any{"trigger": "state", "entity_id": "sensor.a"}},
				"actions":  []any{map[string]any{"python": "print(1)"}, "light.a"},
			},
			wantTriggers:   []string{"sensor.a"},
			wantConditions: []string{},
			wantActions:    []string{},
			wantTemplates:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, refs, err := ExtractRaw(tt.raw)
			if err != nil {
				t.Fatalf("ExtractRaw() unexpected error: %v", err)
			}

			if got := Sorted(refs.Triggers); !reflect.DeepEqual(got, tt.wantTriggers) {
				t.Errorf("triggers = %v, want %v", got, tt.wantTriggers)
			}

			if got := Sorted(refs.Conditions); !reflect.DeepEqual(got, tt.wantConditions) {
				t.Errorf("conditions = %v, want %v", got, tt.wantConditions)
			}

			if got := Sorted(refs.Actions); !reflect.DeepEqual(got, tt.wantActions) {
				t.Errorf("actions = %v, want %v", got, tt.wantActions)
			}

			if refs.HasTemplates != tt.wantTemplates {
				t.Errorf("HasTemplates = %t, want %t (reasons %v)", refs.HasTemplates, tt.wantTemplates, refs.Reasons)
			}
		})
	}
}

func TestExtract_DeepNestingIsOpaque(t *testing.T) {
	var step any = map[string]any{"action": "light.turn_on", "target": map[string]any{"entity_id": "light.a"}}
	for i := 0; i < 2*maxDepth; i++ {
		step = map[string]any{"sequence": []any{step}}
	}

	refs := Extract(&automation.Config{Actions: []any{step}})
	if !refs.HasTemplates {
		t.Error("Extract() did not flag a config nested beyond the walk limit")
	}
}

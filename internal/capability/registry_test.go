package capability

import (
	"reflect"
	"testing"

	"github.com/benleb/autoscope/internal/automation"
	"github.com/benleb/autoscope/internal/models/device"
	"github.com/benleb/autoscope/internal/models/domain"
)

func kinds(specs []ActionSpec) []string {
	out := make([]string, 0, len(specs))
	for _, spec := range specs {
		name := string(spec.Action)
		if spec.Command != "" {
			name = string(spec.Command)
		}

		out = append(out, string(spec.Kind)+":"+name)
	}

	return out
}

func TestActionsFor(t *testing.T) {
	tests := []struct {
		name string
		dev  device.Device
		ctx  Context
		want []string
	}{
		{
			name: "light",
			dev:  device.Device{EntityID: "light.kitchen", Domain: domain.Light},
			ctx:  ContextAutomation,
			want: []string{"command:toggle", "command:turn_on", "command:turn_off", "slider:set_brightness"},
		},
		{
			name: "light on the dashboard",
			dev:  device.Device{EntityID: "light.kitchen", Domain: domain.Light},
			ctx:  ContextDashboard,
			want: []string{"command:toggle"},
		},
		{
			name: "cover reporting its position",
			dev:  device.Device{EntityID: "cover.bedroom", Domain: domain.Cover, Attributes: map[string]any{"current_position": 30}},
			ctx:  ContextAutomation,
			want: []string{"slider:set_cover_position", "command:blind/open", "command:blind/close", "command:blind/stop"},
		},
		{
			name: "cover without position",
			dev:  device.Device{EntityID: "cover.garage", Domain: domain.Cover},
			ctx:  ContextAutomation,
			want: []string{"fixed_position:set_cover_position", "command:blind/open", "command:blind/close", "command:blind/stop"},
		},
		{
			name: "switch labeled as blind by category",
			dev:  device.Device{EntityID: "shelly.kitchen_blind", Domain: "shelly", Category: "Blind"},
			ctx:  ContextDashboard,
			want: []string{"fixed_position:set_cover_position"},
		},
		{
			name: "climate",
			dev:  device.Device{EntityID: "climate.boiler", Domain: domain.Climate},
			ctx:  ContextAutomation,
			want: []string{"slider:set_temperature"},
		},
		{
			name: "media player",
			dev:  device.Device{EntityID: "media_player.tv", Domain: domain.MediaPlayer},
			ctx:  ContextAutomation,
			want: []string{"command:toggle", "command:media/play_pause", "slider:media/volume_set"},
		},
		{
			name: "switch",
			dev:  device.Device{EntityID: "switch.fan", Domain: domain.Switch},
			ctx:  ContextDashboard,
			want: []string{"command:toggle"},
		},
		{
			name: "motion sensor is never an action target",
			dev:  device.Device{EntityID: "binary_sensor.hall_motion", Domain: domain.BinarySensor},
			ctx:  ContextAutomation,
			want: []string{},
		},
		{
			name: "unknown domain falls back to toggle",
			dev:  device.Device{EntityID: "siren.alarm", Domain: domain.Siren},
			ctx:  ContextDashboard,
			want: []string{"command:toggle"},
		},
		{
			name: "diagnostic entity is vetoed",
			dev:  device.Device{EntityID: "switch.router_reboot", Domain: domain.Switch, EntityCategory: "config"},
			ctx:  ContextAutomation,
			want: []string{},
		},
		{
			name: "address entity is vetoed",
			dev:  device.Device{EntityID: "sensor.router_ip_address", Domain: domain.Sensor},
			ctx:  ContextAutomation,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := kinds(ActionsFor(tt.dev, tt.ctx)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ActionsFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActionsFor_Ranges(t *testing.T) {
	tests := []struct {
		name     string
		dev      device.Device
		action   automation.ActionType
		wantMin  float64
		wantMax  float64
		wantStep float64
	}{
		{name: "brightness", dev: device.Device{EntityID: "light.a", Domain: domain.Light}, action: automation.ActionSetBrightness, wantMax: 100, wantStep: 1},
		{name: "temperature", dev: device.Device{EntityID: "climate.a", Domain: domain.Climate}, action: automation.ActionSetTemperature, wantMin: 5, wantMax: 35, wantStep: 0.5},
		{name: "boiler by category", dev: device.Device{EntityID: "tado.a", Domain: "tado", Category: "Boiler"}, action: automation.ActionSetTemperature, wantMin: 5, wantMax: 35, wantStep: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := findAction(ActionsFor(tt.dev, ContextAutomation), tt.action, "")
			if spec == nil {
				t.Fatalf("ActionsFor() does not offer %s", tt.action)
			}

			if spec.Kind != KindSlider || spec.Min != tt.wantMin || spec.Max != tt.wantMax || spec.Step != tt.wantStep {
				t.Errorf("ActionsFor() %s = %+v", tt.action, spec)
			}
		})
	}
}

func TestTriggersFor(t *testing.T) {
	cover := device.Device{EntityID: "cover.bedroom", Domain: domain.Cover, Attributes: map[string]any{"current_position": 0}}

	specs := TriggersFor(cover, ContextAutomation)
	if len(specs) != 2 || specs[0].Type != automation.StateEquals || specs[1].Type != automation.PositionEquals {
		t.Fatalf("TriggersFor(cover) = %+v", specs)
	}

	if !reflect.DeepEqual(specs[1].Waypoints, blindWaypoints) {
		t.Errorf("TriggersFor(cover) waypoints = %+v", specs[1].Waypoints)
	}

	if got := TriggersFor(cover, ContextDashboard); got != nil {
		t.Errorf("TriggersFor(dashboard) = %+v, want none", got)
	}

	motion := device.Device{EntityID: "binary_sensor.hall_motion", Domain: domain.BinarySensor}
	if got := TriggersFor(motion, ContextAutomation); len(got) != 1 || !reflect.DeepEqual(got[0].Options, []string{"on", "off"}) {
		t.Errorf("TriggersFor(motion) = %+v", got)
	}

	climate := device.Device{EntityID: "climate.boiler", Domain: domain.Climate, Attributes: map[string]any{"hvac_modes": []any{"off", "heat", "auto"}}}
	if got := TriggersFor(climate, ContextAutomation); len(got) != 2 || len(got[0].Options) != 3 || got[1].Attribute != "current_temperature" {
		t.Errorf("TriggersFor(climate) = %+v", got)
	}

	if got := TriggersFor(device.Device{EntityID: "sun.sun", Domain: domain.Sun}, ContextAutomation); got != nil {
		t.Errorf("TriggersFor(sun) = %+v, want none", got)
	}
}

func TestIsAutomationExcluded(t *testing.T) {
	tests := []struct {
		dev  device.Device
		want bool
	}{
		{dev: device.Device{EntityID: "light.kitchen", Domain: domain.Light}},
		{dev: device.Device{EntityID: "update.core", Domain: domain.Update}, want: true},
		{dev: device.Device{EntityID: "person.alice", Domain: domain.Person}, want: true},
		{dev: device.Device{EntityID: "sensor.phone_wifi_ssid", Domain: domain.Sensor}, want: true},
		{dev: device.Device{EntityID: "sensor.plug_mac", Domain: domain.Sensor}, want: true},
		{dev: device.Device{EntityID: "sensor.plug_power", Domain: domain.Sensor, EntityCategory: "diagnostic"}, want: true},
		{dev: device.Device{EntityID: "sensor.living_room_temperature", Domain: domain.Sensor}},
	}
	for _, tt := range tests {
		t.Run(tt.dev.EntityID, func(t *testing.T) {
			if got := IsAutomationExcluded(tt.dev); got != tt.want {
				t.Errorf("IsAutomationExcluded() = %t, want %t", got, tt.want)
			}
		})
	}
}

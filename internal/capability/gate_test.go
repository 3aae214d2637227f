package capability

import (
	"errors"
	"testing"

	"github.com/benleb/autoscope/internal/automation"
	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/models/device"
	"github.com/benleb/autoscope/internal/models/domain"
)

var snapshot = device.NewSnapshot(
	device.Device{EntityID: "light.kitchen", Domain: domain.Light},
	device.Device{EntityID: "switch.fan", Domain: domain.Switch},
	device.Device{EntityID: "binary_sensor.kitchen_motion", Domain: domain.BinarySensor},
	device.Device{EntityID: "cover.bedroom", Domain: domain.Cover, Attributes: map[string]any{"current_position": 100}},
	device.Device{EntityID: "cover.garage", Domain: domain.Cover},
	device.Device{EntityID: "climate.boiler", Domain: domain.Climate},
	device.Device{EntityID: "media_player.tv", Domain: domain.MediaPlayer},
	device.Device{EntityID: "sensor.router_ip", Domain: domain.Sensor},
)

func TestCheckDraft(t *testing.T) {
	motion := automation.StateTrigger{Entity: "binary_sensor.kitchen_motion", To: "on"}
	kitchenOn := automation.PowerAction{Type: automation.ActionTurnOn, Entity: "light.kitchen"}

	tests := []struct {
		name    string
		trigger automation.Trigger
		action  automation.Action
		wantErr bool
	}{
		{name: "motion turns on the light", trigger: motion, action: kitchenOn},
		{name: "brightness on a light", trigger: motion, action: automation.ValueAction{Type: automation.ActionSetBrightness, Entity: "light.kitchen", Value: 40}},
		{name: "brightness on a switch", trigger: motion, action: automation.ValueAction{Type: automation.ActionSetBrightness, Entity: "switch.fan", Value: 40}, wantErr: true},
		{name: "brightness out of range", trigger: motion, action: automation.ValueAction{Type: automation.ActionSetBrightness, Entity: "light.kitchen", Value: 140}, wantErr: true},
		{name: "temperature on the grid", trigger: motion, action: automation.ValueAction{Type: automation.ActionSetTemperature, Entity: "climate.boiler", Value: 21.5}},
		{name: "temperature off the grid", trigger: motion, action: automation.ValueAction{Type: automation.ActionSetTemperature, Entity: "climate.boiler", Value: 21.3}, wantErr: true},
		{name: "temperature below range", trigger: motion, action: automation.ValueAction{Type: automation.ActionSetTemperature, Entity: "climate.boiler", Value: 4}, wantErr: true},
		{name: "sensor as action target", trigger: motion, action: automation.PowerAction{Type: automation.ActionToggle, Entity: "binary_sensor.kitchen_motion"}, wantErr: true},
		{name: "unknown action device", trigger: motion, action: automation.PowerAction{Type: automation.ActionToggle, Entity: "light.attic"}, wantErr: true},
		{name: "unknown trigger device", trigger: automation.StateTrigger{Entity: "sensor.nowhere"}, action: kitchenOn, wantErr: true},
		{name: "excluded trigger device", trigger: automation.StateTrigger{Entity: "sensor.router_ip"}, action: kitchenOn, wantErr: true},
		{name: "fixed cover position waypoint", trigger: motion, action: automation.ValueAction{Type: automation.ActionSetCoverPosition, Entity: "cover.garage", Value: 50}},
		{name: "fixed cover position off waypoint", trigger: motion, action: automation.ValueAction{Type: automation.ActionSetCoverPosition, Entity: "cover.garage", Value: 30}, wantErr: true},
		{name: "set position command on slider cover", trigger: motion, action: automation.CommandAction{Entity: "cover.bedroom", Command: automation.BlindSetPosition, Value: float64(30)}},
		{name: "blind command on a light", trigger: motion, action: automation.CommandAction{Entity: "light.kitchen", Command: automation.BlindOpen}, wantErr: true},
		{name: "volume command", trigger: motion, action: automation.CommandAction{Entity: "media_player.tv", Command: automation.MediaVolumeSet, Value: float64(35)}},
		{
			name:    "position trigger on a waypoint",
			trigger: automation.DeviceTrigger{Entity: "cover.bedroom", Mode: automation.PositionEquals, To: float64(50), Attribute: "current_position"},
			action:  kitchenOn,
		},
		{
			name:    "position trigger off the waypoints",
			trigger: automation.DeviceTrigger{Entity: "cover.bedroom", Mode: automation.PositionEquals, To: float64(42), Attribute: "current_position"},
			action:  kitchenOn,
			wantErr: true,
		},
		{
			name:    "position trigger on cover without position",
			trigger: automation.DeviceTrigger{Entity: "cover.garage", Mode: automation.PositionEquals, To: float64(50), Attribute: "current_position"},
			action:  kitchenOn,
			wantErr: true,
		},
		{
			name:    "state equals option",
			trigger: automation.DeviceTrigger{Entity: "cover.garage", Mode: automation.StateEquals, To: "closed"},
			action:  kitchenOn,
		},
		{
			name:    "state equals unknown option",
			trigger: automation.DeviceTrigger{Entity: "cover.garage", Mode: automation.StateEquals, To: "ajar"},
			action:  kitchenOn,
			wantErr: true,
		},
		{
			name:    "attribute delta on the offered attribute",
			trigger: automation.DeviceTrigger{Entity: "media_player.tv", Mode: automation.AttributeDelta, Attribute: "volume_level", Direction: automation.Decreased},
			action:  kitchenOn,
		},
		{
			name:    "attribute delta on another attribute",
			trigger: automation.DeviceTrigger{Entity: "media_player.tv", Mode: automation.AttributeDelta, Attribute: "media_position", Direction: automation.Decreased},
			action:  kitchenOn,
			wantErr: true,
		},
		{
			name:    "schedules reference no device",
			trigger: automation.ScheduleTrigger{Type: automation.Daily, At: "07:00"},
			action:  kitchenOn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDraft(&automation.Draft{Alias: tt.name, Trigger: tt.trigger, Action: tt.action}, snapshot)

			if tt.wantErr && !errors.Is(err, models.ErrInvalidDraft) {
				t.Errorf("CheckDraft() error = %v, want %v", err, models.ErrInvalidDraft)
			} else if !tt.wantErr && err != nil {
				t.Errorf("CheckDraft() unexpected error: %v", err)
			}
		})
	}
}

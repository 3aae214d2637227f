// Package capability maps devices to the trigger and action shapes that are
// meaningful for them. It is the safety boundary between what a user can
// draft and what the compiler will ever emit.
package capability

import (
	"strings"

	"github.com/benleb/autoscope/internal/automation"
	"github.com/benleb/autoscope/internal/models/device"
	"github.com/benleb/autoscope/internal/models/domain"
)

// Context distinguishes the full automation editor from the dashboard's one-tap controls.
type Context string

const (
	ContextAutomation Context = "automation"
	ContextDashboard  Context = "dashboard"
)

// Waypoint is a named numeric value, e.g. a blind position.
type Waypoint struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// TriggerSpec is one device trigger shape offered for a device.
type TriggerSpec struct {
	Type automation.DeviceTriggerMode `json:"type"`

	// Options are the selectable states of a state_equals trigger.
	Options []string `json:"options,omitempty"`

	// Attribute is the attribute an attribute_delta or position_equals trigger watches.
	Attribute        string                 `json:"attribute,omitempty"`
	DirectionOptions []automation.Direction `json:"direction_options,omitempty"`
	Waypoints        []Waypoint             `json:"waypoints,omitempty"`
}

// ActionKind is the parameter shape of an action.
type ActionKind string

const (
	KindCommand       ActionKind = "command"
	KindSlider        ActionKind = "slider"
	KindFixedPosition ActionKind = "fixed_position"
)

// ActionSpec is one action shape offered for a device.
type ActionSpec struct {
	Kind   ActionKind            `json:"kind"`
	Action automation.ActionType `json:"action"`

	// Command is set for device_command actions.
	Command automation.Command `json:"command,omitempty"`
	Label   string             `json:"label"`

	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Step float64 `json:"step,omitempty"`

	Positions []Waypoint `json:"positions,omitempty"`
}

// rule is one variant of the registry.
type rule struct {
	name     string
	triggers func(dev device.Device) []TriggerSpec
	actions  func(dev device.Device, ctx Context) []ActionSpec
}

var (
	coverStates = []string{"open", "closed", "opening", "closing"}
	onOff       = []string{"on", "off"}
	mediaStates = []string{"on", "off", "playing", "paused", "idle"}
	bothWays    = []automation.Direction{automation.Increased, automation.Decreased}

	blindWaypoints = []Waypoint{{Value: 0, Label: "Closed"}, {Value: 50, Label: "Half"}, {Value: 100, Label: "Open"}}
)

const (
	brightnessMin, brightnessMax, brightnessStep    = 0, 100, 1
	positionMin, positionMax, positionStep          = 0, 100, 1
	temperatureMin, temperatureMax, temperatureStep = 5, 35, 0.5
	volumeMin, volumeMax, volumeStep                = 0, 100, 1

	// coverSupportSetPosition is the cover's SET_POSITION feature bit.
	coverSupportSetPosition = 4
)

var (
	lightRule = rule{
		name:     "light",
		triggers: func(device.Device) []TriggerSpec { return []TriggerSpec{stateEquals(onOff)} },
		actions: func(_ device.Device, ctx Context) []ActionSpec {
			if ctx == ContextDashboard {
				return []ActionSpec{command(automation.ActionToggle, "", "Toggle")}
			}

			return append(powerCommands(), slider(automation.ActionSetBrightness, "", "Brightness", brightnessMin, brightnessMax, brightnessStep))
		},
	}

	coverRule = rule{
		name: "cover",
		triggers: func(dev device.Device) []TriggerSpec {
			specs := []TriggerSpec{stateEquals(coverStates)}

			if reportsPosition(dev) {
				specs = append(specs, TriggerSpec{
					Type:      automation.PositionEquals,
					Attribute: automation.DefaultPositionAttribute,
					Waypoints: blindWaypoints,
				})
			}

			return specs
		},
		actions: func(dev device.Device, ctx Context) []ActionSpec {
			position := ActionSpec{Kind: KindFixedPosition, Action: automation.ActionSetCoverPosition, Label: "Position", Positions: blindWaypoints}
			if reportsPosition(dev) {
				position = slider(automation.ActionSetCoverPosition, "", "Position", positionMin, positionMax, positionStep)
			}

			if ctx == ContextDashboard {
				return []ActionSpec{position}
			}

			return []ActionSpec{
				position,
				command(automation.ActionDeviceCommand, automation.BlindOpen, "Open"),
				command(automation.ActionDeviceCommand, automation.BlindClose, "Close"),
				command(automation.ActionDeviceCommand, automation.BlindStop, "Stop"),
			}
		},
	}

	climateRule = rule{
		name: "climate",
		triggers: func(dev device.Device) []TriggerSpec {
			modes := dev.StringsAttr("hvac_modes")
			if len(modes) == 0 {
				modes = []string{"off", "heat"}
			}

			return []TriggerSpec{
				stateEquals(modes),
				{Type: automation.AttributeDelta, Attribute: "current_temperature", DirectionOptions: bothWays},
			}
		},
		actions: func(device.Device, Context) []ActionSpec {
			return []ActionSpec{slider(automation.ActionSetTemperature, "", "Temperature", temperatureMin, temperatureMax, temperatureStep)}
		},
	}

	mediaRule = rule{
		name: "media",
		triggers: func(device.Device) []TriggerSpec {
			return []TriggerSpec{
				stateEquals(mediaStates),
				{Type: automation.AttributeDelta, Attribute: "volume_level", DirectionOptions: bothWays},
			}
		},
		actions: func(_ device.Device, ctx Context) []ActionSpec {
			specs := []ActionSpec{
				command(automation.ActionToggle, "", "Toggle"),
				command(automation.ActionDeviceCommand, automation.MediaPlayPause, "Play/Pause"),
			}

			if ctx == ContextDashboard {
				return specs
			}

			return append(specs, slider(automation.ActionDeviceCommand, automation.MediaVolumeSet, "Volume", volumeMin, volumeMax, volumeStep))
		},
	}

	switchRule = rule{
		name:     "switch",
		triggers: func(device.Device) []TriggerSpec { return []TriggerSpec{stateEquals(onOff)} },
		actions:  toggleActions,
	}

	sensorRule = rule{
		name: "sensor",
		triggers: func(dev device.Device) []TriggerSpec {
			if options := dev.StringsAttr("options"); len(options) > 0 {
				return []TriggerSpec{stateEquals(options)}
			}

			if dev.Domain == domain.BinarySensor || isOnOff(dev) {
				return []TriggerSpec{stateEquals(onOff)}
			}

			return nil
		},
		actions: func(device.Device, Context) []ActionSpec { return nil },
	}

	fallbackRule = rule{
		name:     "generic",
		triggers: func(device.Device) []TriggerSpec { return []TriggerSpec{stateEquals(onOff)} },
		actions:  toggleActions,
	}
)

// byDomain is consulted first, byCategory second.
var byDomain = map[domain.Domain]rule{
	domain.Light:        lightRule,
	domain.Cover:        coverRule,
	domain.Climate:      climateRule,
	domain.WaterHeater:  climateRule,
	domain.MediaPlayer:  mediaRule,
	domain.Switch:       switchRule,
	domain.InputBoolean: switchRule,
	domain.Fan:          switchRule,
	domain.BinarySensor: sensorRule,
	domain.Sensor:       sensorRule,
}

var byCategory = map[string]rule{
	"light":   lightRule,
	"lamp":    lightRule,
	"blind":   coverRule,
	"shutter": coverRule,
	"curtain": coverRule,
	"boiler":  climateRule,
	"heating": climateRule,
	"tv":      mediaRule,
	"speaker": mediaRule,
	"spotify": mediaRule,
	"switch":  switchRule,
	"plug":    switchRule,
	"motion":  sensorRule,
	"sensor":  sensorRule,
}

func ruleFor(dev device.Device) rule {
	if r, ok := byDomain[dev.Domain]; ok {
		return r
	}

	if r, ok := byCategory[strings.ToLower(strings.TrimSpace(dev.Category))]; ok {
		return r
	}

	return fallbackRule
}

// RuleName returns the name of the registry variant that serves dev.
func RuleName(dev device.Device) string {
	if IsAutomationExcluded(dev) {
		return "excluded"
	}

	return ruleFor(dev).name
}

// TriggersFor returns the device trigger shapes offered for dev. The dashboard
// offers no triggers.
func TriggersFor(dev device.Device, ctx Context) []TriggerSpec {
	if ctx != ContextAutomation || IsAutomationExcluded(dev) {
		return nil
	}

	return ruleFor(dev).triggers(dev)
}

// ActionsFor returns the action shapes offered for dev.
func ActionsFor(dev device.Device, ctx Context) []ActionSpec {
	if IsAutomationExcluded(dev) {
		return nil
	}

	return ruleFor(dev).actions(dev, ctx)
}

func toggleActions(_ device.Device, ctx Context) []ActionSpec {
	if ctx == ContextDashboard {
		return []ActionSpec{command(automation.ActionToggle, "", "Toggle")}
	}

	return powerCommands()
}

func powerCommands() []ActionSpec {
	return []ActionSpec{
		command(automation.ActionToggle, "", "Toggle"),
		command(automation.ActionTurnOn, "", "Turn on"),
		command(automation.ActionTurnOff, "", "Turn off"),
	}
}

func command(action automation.ActionType, cmd automation.Command, label string) ActionSpec {
	return ActionSpec{Kind: KindCommand, Action: action, Command: cmd, Label: label}
}

func slider(action automation.ActionType, cmd automation.Command, label string, lower, upper, step float64) ActionSpec {
	return ActionSpec{Kind: KindSlider, Action: action, Command: cmd, Label: label, Min: lower, Max: upper, Step: step}
}

func stateEquals(options []string) TriggerSpec {
	return TriggerSpec{Type: automation.StateEquals, Options: options}
}

// reportsPosition tells position-capable covers apart from open/close-only ones.
func reportsPosition(dev device.Device) bool {
	return dev.HasAttr(automation.DefaultPositionAttribute) || dev.SupportsFeature(coverSupportSetPosition)
}

func isOnOff(dev device.Device) bool {
	class, _ := dev.StringAttr("device_class")

	return class == "motion" || class == "occupancy" || class == "presence"
}

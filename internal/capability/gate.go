package capability

import (
	"math"

	"github.com/benleb/autoscope/internal/automation"
	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/models/device"
)

// stepTolerance absorbs float noise when checking a value against a slider grid.
const stepTolerance = 1e-9

// CheckDraft verifies that every device a draft references is known, not
// excluded, and offers the trigger and action shapes the draft uses.
func CheckDraft(draft *automation.Draft, snapshot *device.Snapshot) error {
	if err := checkTrigger(draft.Trigger, snapshot); err != nil {
		return err
	}

	return checkAction(draft.Action, snapshot)
}

func lookup(field, entityID string, snapshot *device.Snapshot) (device.Device, error) {
	dev, ok := snapshot.Lookup(entityID)
	if !ok {
		return device.Device{}, models.InvalidDraftErr(field, "unknown device %s", entityID)
	}

	if IsAutomationExcluded(dev) {
		return device.Device{}, models.InvalidDraftErr(field, "%s cannot be used in automations", entityID)
	}

	return dev, nil
}

func checkTrigger(trigger automation.Trigger, snapshot *device.Snapshot) error {
	switch t := trigger.(type) {
	case automation.StateTrigger:
		_, err := lookup("trigger.entityId", t.Entity, snapshot)

		return err

	case automation.DeviceTrigger:
		dev, err := lookup("trigger.entityId", t.Entity, snapshot)
		if err != nil {
			return err
		}

		for _, spec := range TriggersFor(dev, ContextAutomation) {
			if spec.Type == t.Mode && triggerMatches(spec, t) {
				return nil
			}
		}

		return models.InvalidDraftErr("trigger", "%s trigger not offered for %s", t.Mode, t.Entity)

	case automation.ScheduleTrigger:
		return nil
	}

	return models.InvalidDraftErr("trigger", "unsupported trigger %T", trigger)
}

func triggerMatches(spec TriggerSpec, trigger automation.DeviceTrigger) bool {
	switch trigger.Mode {
	case automation.StateEquals:
		option, ok := trigger.To.(string)
		if !ok {
			return false
		}

		for _, candidate := range spec.Options {
			if candidate == option {
				return true
			}
		}

	case automation.AttributeDelta:
		if spec.Attribute != trigger.Attribute {
			return false
		}

		for _, direction := range spec.DirectionOptions {
			if direction == trigger.Direction {
				return true
			}
		}

	case automation.PositionEquals:
		position, ok := trigger.To.(float64)
		if !ok || spec.Attribute != trigger.Attribute {
			return false
		}

		return isWaypoint(spec.Waypoints, position)
	}

	return false
}

func checkAction(action automation.Action, snapshot *device.Snapshot) error {
	dev, err := lookup("action.entityId", action.EntityID(), snapshot)
	if err != nil {
		return err
	}

	specs := ActionsFor(dev, ContextAutomation)

	switch a := action.(type) {
	case automation.PowerAction:
		if findAction(specs, a.Type, "") != nil {
			return nil
		}

	case automation.ValueAction:
		if spec := findAction(specs, a.Type, ""); spec != nil {
			return checkValue(spec, a.Value)
		}

	case automation.CommandAction:
		spec := findAction(specs, automation.ActionDeviceCommand, a.Command)

		// blind/set_position is the command form of set_cover_position.
		if spec == nil && a.Command == automation.BlindSetPosition {
			spec = findAction(specs, automation.ActionSetCoverPosition, "")
		}

		if spec != nil {
			if value, ok := a.Value.(float64); ok {
				return checkValue(spec, value)
			}

			return nil
		}
	}

	return models.InvalidDraftErr("action", "%s not offered for %s", describeAction(action), action.EntityID())
}

func findAction(specs []ActionSpec, actionType automation.ActionType, cmd automation.Command) *ActionSpec {
	for i := range specs {
		if specs[i].Action == actionType && specs[i].Command == cmd {
			return &specs[i]
		}
	}

	return nil
}

func checkValue(spec *ActionSpec, value float64) error {
	switch spec.Kind {
	case KindSlider:
		if value < spec.Min || value > spec.Max {
			return models.InvalidDraftErr("action.value", "%g outside %g..%g", value, spec.Min, spec.Max)
		}

		if steps := (value - spec.Min) / spec.Step; math.Abs(steps-math.Round(steps)) > stepTolerance {
			return models.InvalidDraftErr("action.value", "%g is not a multiple of %g", value, spec.Step)
		}

	case KindFixedPosition:
		if !isWaypoint(spec.Positions, value) {
			return models.InvalidDraftErr("action.value", "%g is not one of the fixed positions", value)
		}

	case KindCommand:
	}

	return nil
}

func isWaypoint(waypoints []Waypoint, value float64) bool {
	for _, waypoint := range waypoints {
		if waypoint.Value == value {
			return true
		}
	}

	return false
}

func describeAction(action automation.Action) string {
	if a, ok := action.(automation.CommandAction); ok {
		return string(a.Command)
	}

	return string(action.ActionType())
}

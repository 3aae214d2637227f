package automation

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/models/entity"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/mapstructure"
)

var (
	// clockPattern matches "HH:MM" on a 24h clock.
	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

	// attributePattern restricts attribute names; they end up inside compiled templates.
	attributePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)
)

const maxAliasLength = 255

type rawDraft struct {
	Alias       *string        `mapstructure:"alias"`
	Description *string        `mapstructure:"description"`
	Mode        *string        `mapstructure:"mode"`
	Enabled     *bool          `mapstructure:"enabled"`
	Trigger     map[string]any `mapstructure:"trigger"`
	Action      map[string]any `mapstructure:"action"`
}

type rawTrigger struct {
	Type         *string  `mapstructure:"type"`
	EntityID     *string  `mapstructure:"entityId"`
	To           any      `mapstructure:"to"`
	From         *string  `mapstructure:"from"`
	ForSeconds   *float64 `mapstructure:"forSeconds"`
	Mode         *string  `mapstructure:"mode"`
	Direction    *string  `mapstructure:"direction"`
	Attribute    *string  `mapstructure:"attribute"`
	Weekdays     []string `mapstructure:"weekdays"`
	ScheduleType *string  `mapstructure:"scheduleType"`
	At           *string  `mapstructure:"at"`
	Day          *float64 `mapstructure:"day"`
}

type rawAction struct {
	Type     *string `mapstructure:"type"`
	EntityID *string `mapstructure:"entityId"`
	Value    any     `mapstructure:"value"`
	Command  *string `mapstructure:"command"`
}

// Validate checks an untyped draft payload (as decoded from JSON or YAML) and
// returns the typed draft. It fails closed: any wrong runtime type, unknown
// discriminator or missing required field rejects the whole draft with an
// error wrapping models.ErrInvalidDraft.
func Validate(raw any) (*Draft, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, models.InvalidDraftErr("draft", "expected an object, got %T", raw)
	}

	var rd rawDraft
	if err := strictDecode(obj, &rd); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidDraft, err)
	}

	draft := &Draft{Mode: ModeSingle, Enabled: rd.Enabled}

	// alias
	if rd.Alias == nil || strings.TrimSpace(*rd.Alias) == "" {
		return nil, models.InvalidDraftErr("alias", "must not be empty")
	} else if len(strings.TrimSpace(*rd.Alias)) > maxAliasLength {
		return nil, models.InvalidDraftErr("alias", "exceeds %d characters", maxAliasLength)
	}

	draft.Alias = strings.TrimSpace(*rd.Alias)

	if rd.Description != nil {
		draft.Description = strings.TrimSpace(*rd.Description)
	}

	// mode
	if rd.Mode != nil {
		if mode := Mode(*rd.Mode); validModes.Contains(mode) {
			draft.Mode = mode
		} else {
			return nil, models.InvalidDraftErr("mode", "unknown mode %q", *rd.Mode)
		}
	}

	trigger, err := validateTrigger(rd.Trigger)
	if err != nil {
		return nil, err
	}

	action, err := validateAction(rd.Action)
	if err != nil {
		return nil, err
	}

	draft.Trigger = trigger
	draft.Action = action

	return draft, nil
}

func validateTrigger(raw map[string]any) (Trigger, error) {
	if raw == nil {
		return nil, models.InvalidDraftErr("trigger", "is required")
	}

	var rt rawTrigger
	if err := strictDecode(raw, &rt); err != nil {
		return nil, fmt.Errorf("%w: trigger: %w", models.ErrInvalidDraft, err)
	}

	if rt.Type == nil {
		return nil, models.InvalidDraftErr("trigger.type", "is required")
	}

	switch TriggerType(*rt.Type) {
	case TriggerState:
		return validateStateTrigger(&rt)

	case TriggerDevice:
		return validateDeviceTrigger(&rt)

	case TriggerSchedule:
		return validateScheduleTrigger(&rt)
	}

	return nil, models.InvalidDraftErr("trigger.type", "unknown trigger type %q", *rt.Type)
}

func validateStateTrigger(rt *rawTrigger) (Trigger, error) {
	entityID, err := requireEntityID("trigger.entityId", rt.EntityID)
	if err != nil {
		return nil, err
	}

	to, ok := normalizeScalar(rt.To)
	if !ok {
		return nil, models.InvalidDraftErr("trigger.to", "expected a string or number, got %T", rt.To)
	}

	if rt.ForSeconds != nil && !(isFinite(*rt.ForSeconds) && *rt.ForSeconds > 0) {
		return nil, models.InvalidDraftErr("trigger.forSeconds", "must be > 0")
	}

	return StateTrigger{Entity: entityID, To: to, From: rt.From, ForSeconds: rt.ForSeconds}, nil
}

func validateDeviceTrigger(rt *rawTrigger) (Trigger, error) {
	entityID, err := requireEntityID("trigger.entityId", rt.EntityID)
	if err != nil {
		return nil, err
	}

	if rt.Mode == nil {
		return nil, models.InvalidDraftErr("trigger.mode", "is required")
	}

	trigger := DeviceTrigger{
		Entity:   entityID,
		Mode:     DeviceTriggerMode(*rt.Mode),
		Weekdays: parseWeekdays(rt.Weekdays),
	}

	if !validDeviceTriggerModes.Contains(trigger.Mode) {
		return nil, models.InvalidDraftErr("trigger.mode", "unknown mode %q", *rt.Mode)
	}

	switch trigger.Mode {
	case StateEquals:
		to, ok := normalizeScalar(rt.To)
		if !ok || to == nil {
			return nil, models.InvalidDraftErr("trigger.to", "expected a string or number")
		}

		trigger.To = to

	case AttributeDelta:
		if rt.Attribute == nil || !attributePattern.MatchString(*rt.Attribute) {
			return nil, models.InvalidDraftErr("trigger.attribute", "expected an attribute name")
		}

		if rt.Direction == nil || !validDirections.Contains(Direction(*rt.Direction)) {
			return nil, models.InvalidDraftErr("trigger.direction", "expected one of %v", validDirections.ToSlice())
		}

		trigger.Attribute = *rt.Attribute
		trigger.Direction = Direction(*rt.Direction)

	case PositionEquals:
		position, ok := toFloat(rt.To)
		if !ok || !isFinite(position) || position < 0 || position > 100 {
			return nil, models.InvalidDraftErr("trigger.to", "expected a position between 0 and 100")
		}

		trigger.To = position
		trigger.Attribute = DefaultPositionAttribute

		if rt.Attribute != nil {
			if !attributePattern.MatchString(*rt.Attribute) {
				return nil, models.InvalidDraftErr("trigger.attribute", "expected an attribute name")
			}

			trigger.Attribute = *rt.Attribute
		}
	}

	return trigger, nil
}

func validateScheduleTrigger(rt *rawTrigger) (Trigger, error) {
	if rt.ScheduleType == nil || !validScheduleTypes.Contains(ScheduleType(*rt.ScheduleType)) {
		return nil, models.InvalidDraftErr("trigger.scheduleType", "expected one of %v", validScheduleTypes.ToSlice())
	}

	if rt.At == nil || !clockPattern.MatchString(*rt.At) {
		return nil, models.InvalidDraftErr("trigger.at", "expected HH:MM")
	}

	trigger := ScheduleTrigger{Type: ScheduleType(*rt.ScheduleType), At: *rt.At}

	switch trigger.Type {
	case Weekly:
		trigger.Weekdays = parseWeekdays(rt.Weekdays)

		if len(trigger.Weekdays) == 0 {
			return nil, models.InvalidDraftErr("trigger.weekdays", "weekly schedules need at least one weekday")
		}

	case Monthly:
		if rt.Day == nil || *rt.Day != math.Trunc(*rt.Day) || *rt.Day < 1 || *rt.Day > 31 {
			return nil, models.InvalidDraftErr("trigger.day", "expected a day between 1 and 31")
		}

		trigger.Day = int(*rt.Day)

	case Daily:
	}

	return trigger, nil
}

func validateAction(raw map[string]any) (Action, error) {
	if raw == nil {
		return nil, models.InvalidDraftErr("action", "is required")
	}

	var ra rawAction
	if err := strictDecode(raw, &ra); err != nil {
		return nil, fmt.Errorf("%w: action: %w", models.ErrInvalidDraft, err)
	}

	if ra.Type == nil {
		return nil, models.InvalidDraftErr("action.type", "is required")
	}

	actionType := ActionType(*ra.Type)

	switch actionType {
	case ActionToggle, ActionTurnOn, ActionTurnOff:
		entityID, err := requireEntityID("action.entityId", ra.EntityID)
		if err != nil {
			return nil, err
		}

		return PowerAction{Type: actionType, Entity: entityID}, nil

	case ActionSetBrightness, ActionSetTemperature, ActionSetCoverPosition:
		entityID, err := requireEntityID("action.entityId", ra.EntityID)
		if err != nil {
			return nil, err
		}

		value, ok := toFloat(ra.Value)
		if !ok || !isFinite(value) {
			return nil, models.InvalidDraftErr("action.value", "expected a finite number")
		}

		return ValueAction{Type: actionType, Entity: entityID, Value: value}, nil

	case ActionDeviceCommand:
		return validateCommandAction(&ra)
	}

	return nil, models.InvalidDraftErr("action.type", "unknown action type %q", *ra.Type)
}

func validateCommandAction(ra *rawAction) (Action, error) {
	entityID, err := requireEntityID("action.entityId", ra.EntityID)
	if err != nil {
		return nil, err
	}

	if ra.Command == nil {
		return nil, models.InvalidDraftErr("action.command", "is required")
	}

	command := Command(*ra.Command)

	spec, ok := LookupCommand(command)
	if !ok {
		return nil, models.InvalidDraftErr("action.command", "command %q is not allowed", *ra.Command)
	}

	action := CommandAction{Entity: entityID, Command: command}

	switch spec.Value {
	case NoValue:
		if ra.Value != nil {
			return nil, models.InvalidDraftErr("action.value", "command %s takes no value", command)
		}

	case NumberValue:
		value, ok := toFloat(ra.Value)
		if !ok || !isFinite(value) || value < spec.Min || value > spec.Max {
			return nil, models.InvalidDraftErr("action.value", "command %s expects a number between %g and %g", command, spec.Min, spec.Max)
		}

		action.Value = value
	}

	return action, nil
}

// parseWeekdays keeps the recognized three-letter weekdays in input order and
// drops everything else.
func parseWeekdays(rawWeekdays []string) []Weekday {
	weekdays := make([]Weekday, 0, len(rawWeekdays))
	seen := make(map[Weekday]bool, len(rawWeekdays))

	for _, raw := range rawWeekdays {
		weekday := Weekday(strings.ToLower(strings.TrimSpace(raw)))

		if !validWeekdays.Contains(weekday) {
			log.Debugf("dropping unknown weekday %q", raw)

			continue
		}

		if !seen[weekday] {
			seen[weekday] = true
			weekdays = append(weekdays, weekday)
		}
	}

	return weekdays
}

func requireEntityID(field string, raw *string) (string, error) {
	if raw == nil {
		return "", models.InvalidDraftErr(field, "is required")
	}

	entityID, err := entity.NewEntityID(*raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", models.ErrInvalidDraft, field, err)
	}

	return entityID.ID, nil
}

// strictDecode maps untyped input onto out without weak type conversion, so a
// value of the wrong runtime type is an error.
func strictDecode(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

// normalizeScalar accepts nil, strings and finite numbers (as float64).
func normalizeScalar(value any) (any, bool) {
	if value == nil {
		return nil, true
	}

	if s, ok := value.(string); ok {
		return s, true
	}

	if f, ok := toFloat(value); ok && isFinite(f) {
		return f, true
	}

	return nil, false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}

	return 0, false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

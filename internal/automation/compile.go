package automation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/models/domain"
	"github.com/benleb/autoscope/internal/models/service"
	"github.com/google/uuid"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugLength = 32

// Compile converts a validated draft into the hub's configuration format. With
// an empty existingID a fresh id is generated, so compiling the same draft
// twice yields two configs. The output is all-or-nothing: a draft variant the
// compiler does not know returns models.ErrCompilerInvariant and no config.
func Compile(draft *Draft, existingID string) (*Config, error) {
	if draft == nil {
		return nil, fmt.Errorf("%w: nil draft", models.ErrCompilerInvariant)
	}

	triggers, conditions, err := compileTrigger(draft.Trigger)
	if err != nil {
		return nil, err
	}

	action, err := compileAction(draft.Action)
	if err != nil {
		return nil, err
	}

	id := existingID
	if id == "" {
		id = NewID(draft.Alias)
	}

	mode := draft.Mode
	if mode == "" {
		mode = ModeSingle
	}

	return &Config{
		ID:          id,
		Alias:       draft.Alias,
		Description: draft.Description,
		Mode:        mode,
		Triggers:    triggers,
		Conditions:  conditions,
		Actions:     []any{action},
	}, nil
}

// NewID returns a new automation id derived from the alias plus a random suffix.
func NewID(alias string) string {
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(alias), "_"), "_")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "_")
	}

	if slug == "" {
		slug = "automation"
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	return slug + "_" + suffix
}

func compileTrigger(trigger Trigger) ([]any, []any, error) {
	conditions := []any{}

	switch t := trigger.(type) {
	case StateTrigger:
		raw := stateTrigger(t.Entity)

		if t.To != nil {
			raw["to"] = t.To
		}

		if t.From != nil {
			raw["from"] = *t.From
		}

		if t.ForSeconds != nil {
			raw["for"] = map[string]any{"seconds": *t.ForSeconds}
		}

		return []any{raw}, conditions, nil

	case DeviceTrigger:
		raw := stateTrigger(t.Entity)

		switch t.Mode {
		case StateEquals:
			raw["to"] = t.To

		case AttributeDelta:
			raw["attribute"] = t.Attribute

			conditions = append(conditions, templateCondition(AttributeDeltaTemplate(t.Attribute, t.Direction)))

		case PositionEquals:
			raw["attribute"] = t.Attribute
			raw["to"] = t.To

		default:
			return nil, nil, fmt.Errorf("%w: device trigger mode %q", models.ErrCompilerInvariant, t.Mode)
		}

		if len(t.Weekdays) > 0 {
			conditions = append(conditions, weekdayCondition(t.Weekdays))
		}

		return []any{raw}, conditions, nil

	case ScheduleTrigger:
		raw := map[string]any{"trigger": "time", "at": t.At + ":00"}

		switch t.Type {
		case Daily:

		case Weekly:
			conditions = append(conditions, weekdayCondition(t.Weekdays))

		case Monthly:
			conditions = append(conditions, templateCondition(MonthDayTemplate(t.Day)))

		default:
			return nil, nil, fmt.Errorf("%w: schedule type %q", models.ErrCompilerInvariant, t.Type)
		}

		return []any{raw}, conditions, nil
	}

	return nil, nil, fmt.Errorf("%w: trigger %T", models.ErrCompilerInvariant, trigger)
}

func compileAction(action Action) (map[string]any, error) {
	switch a := action.(type) {
	case PowerAction:
		var svc service.Service

		switch a.Type {
		case ActionToggle:
			svc = service.Toggle
		case ActionTurnOn:
			svc = service.TurnOn
		case ActionTurnOff:
			svc = service.TurnOff
		default:
			return nil, fmt.Errorf("%w: power action %q", models.ErrCompilerInvariant, a.Type)
		}

		return serviceCall(svc.On(domain.HomeAssistant), a.Entity, nil), nil

	case ValueAction:
		switch a.Type {
		case ActionSetBrightness:
			return serviceCall(service.TurnOn.On(domain.Light), a.Entity, map[string]any{"brightness_pct": a.Value}), nil
		case ActionSetTemperature:
			return serviceCall(service.SetTemperature.On(domain.Climate), a.Entity, map[string]any{"temperature": a.Value}), nil
		case ActionSetCoverPosition:
			return serviceCall(service.SetCoverPosition.On(domain.Cover), a.Entity, map[string]any{"position": a.Value}), nil
		}

		return nil, fmt.Errorf("%w: value action %q", models.ErrCompilerInvariant, a.Type)

	case CommandAction:
		spec, ok := LookupCommand(a.Command)
		if !ok {
			return nil, fmt.Errorf("%w: device command %q", models.ErrCompilerInvariant, a.Command)
		}

		var data map[string]any

		if spec.Value == NumberValue {
			value, ok := a.Value.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: device command %q without value", models.ErrCompilerInvariant, a.Command)
			}

			data = map[string]any{spec.Param: value / spec.Divisor}
		}

		return serviceCall(spec.Service.On(spec.Domain), a.Entity, data), nil
	}

	return nil, fmt.Errorf("%w: action %T", models.ErrCompilerInvariant, action)
}

func stateTrigger(entityID string) map[string]any {
	return map[string]any{"trigger": "state", "entity_id": entityID}
}

func serviceCall(action, entityID string, data map[string]any) map[string]any {
	call := map[string]any{
		"action": action,
		"target": map[string]any{"entity_id": entityID},
	}

	if len(data) > 0 {
		call["data"] = data
	}

	return call
}

func templateCondition(template string) map[string]any {
	return map[string]any{"condition": "template", "value_template": template}
}

func weekdayCondition(weekdays []Weekday) map[string]any {
	days := make([]any, 0, len(weekdays))
	for _, weekday := range weekdays {
		days = append(days, string(weekday))
	}

	return map[string]any{"condition": "time", "weekday": days}
}

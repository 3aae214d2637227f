package automation

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Mode is the hub's run mode for an automation that is triggered while still running.
type Mode string

const (
	ModeSingle   Mode = "single"
	ModeRestart  Mode = "restart"
	ModeQueued   Mode = "queued"
	ModeParallel Mode = "parallel"
)

var validModes = mapset.NewSet(ModeSingle, ModeRestart, ModeQueued, ModeParallel)

// Draft is the user's intent for one automation. It only lives for the
// duration of a single request.
type Draft struct {
	Alias       string
	Description string
	Mode        Mode

	// Enabled is nil when the draft does not say.
	Enabled *bool

	Trigger Trigger
	Action  Action
}

// TriggerType is the discriminator of a draft trigger.
type TriggerType string

const (
	TriggerState    TriggerType = "state"
	TriggerDevice   TriggerType = "device"
	TriggerSchedule TriggerType = "schedule"
)

// Trigger is one of StateTrigger, DeviceTrigger or ScheduleTrigger.
type Trigger interface {
	TriggerType() TriggerType
	// EntityID returns the entity the trigger watches, empty for schedules.
	EntityID() string
}

// StateTrigger fires when an entity changes state.
type StateTrigger struct {
	Entity string

	// To is a string or a float64, nil if unset.
	To   any
	From *string

	// ForSeconds is how long the new state must hold, nil if unset.
	ForSeconds *float64
}

func (t StateTrigger) TriggerType() TriggerType { return TriggerState }
func (t StateTrigger) EntityID() string         { return t.Entity }

// DeviceTriggerMode selects the shape of a device trigger.
type DeviceTriggerMode string

const (
	StateEquals    DeviceTriggerMode = "state_equals"
	AttributeDelta DeviceTriggerMode = "attribute_delta"
	PositionEquals DeviceTriggerMode = "position_equals"
)

var validDeviceTriggerModes = mapset.NewSet(StateEquals, AttributeDelta, PositionEquals)

// Direction of an attribute change.
type Direction string

const (
	Increased Direction = "increased"
	Decreased Direction = "decreased"
)

var validDirections = mapset.NewSet(Increased, Decreased)

// DefaultPositionAttribute is the attribute position_equals triggers watch when none is given.
const DefaultPositionAttribute = "current_position"

// DeviceTrigger is a capability-shaped trigger offered by the registry for a device.
type DeviceTrigger struct {
	Entity string
	Mode   DeviceTriggerMode

	// To is the selected option (state_equals) or waypoint (position_equals).
	To        any
	Direction Direction
	Attribute string

	// Weekdays restricts firing to these days, empty means every day.
	Weekdays []Weekday
}

func (t DeviceTrigger) TriggerType() TriggerType { return TriggerDevice }
func (t DeviceTrigger) EntityID() string         { return t.Entity }

// ScheduleType selects the recurrence of a schedule trigger.
type ScheduleType string

const (
	Daily   ScheduleType = "daily"
	Weekly  ScheduleType = "weekly"
	Monthly ScheduleType = "monthly"
)

var validScheduleTypes = mapset.NewSet(Daily, Weekly, Monthly)

// ScheduleTrigger fires at a wall clock time.
type ScheduleTrigger struct {
	Type ScheduleType

	// At is "HH:MM".
	At       string
	Weekdays []Weekday

	// Day of month for monthly schedules.
	Day int
}

func (t ScheduleTrigger) TriggerType() TriggerType { return TriggerSchedule }
func (t ScheduleTrigger) EntityID() string         { return "" }

// Weekday is the hub's three-letter lowercase weekday.
type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

// weekdayOrder indexes weekdays the way time.Weekday does.
var weekdayOrder = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var validWeekdays = mapset.NewSet(weekdayOrder...)

// ActionType is the discriminator of a draft action.
type ActionType string

const (
	ActionToggle           ActionType = "toggle"
	ActionTurnOn           ActionType = "turn_on"
	ActionTurnOff          ActionType = "turn_off"
	ActionSetBrightness    ActionType = "set_brightness"
	ActionSetTemperature   ActionType = "set_temperature"
	ActionSetCoverPosition ActionType = "set_cover_position"
	ActionDeviceCommand    ActionType = "device_command"
)

// Action is one of PowerAction, ValueAction or CommandAction.
type Action interface {
	ActionType() ActionType
	EntityID() string
}

// PowerAction switches an entity on, off or toggles it.
type PowerAction struct {
	Type   ActionType
	Entity string
}

func (a PowerAction) ActionType() ActionType { return a.Type }
func (a PowerAction) EntityID() string       { return a.Entity }

// ValueAction sets brightness, temperature or cover position.
type ValueAction struct {
	Type   ActionType
	Entity string
	Value  float64
}

func (a ValueAction) ActionType() ActionType { return a.Type }
func (a ValueAction) EntityID() string       { return a.Entity }

// CommandAction runs an allow-listed device command.
type CommandAction struct {
	Entity  string
	Command Command

	// Value is a float64, a string or nil.
	Value any
}

func (a CommandAction) ActionType() ActionType { return ActionDeviceCommand }
func (a CommandAction) EntityID() string       { return a.Entity }

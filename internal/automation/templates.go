package automation

import (
	"fmt"
	"regexp"
	"strconv"
)

// The compiler emits exactly two template forms. Both only read trigger data or
// the clock, so they never widen the set of entities an automation touches.
var (
	attributeDeltaPattern = regexp.MustCompile(
		`^\{\{ \(trigger\.to_state\.attributes\.([a-z0-9_]{1,64}) \| float\(0\)\) ([<>]) \(trigger\.from_state\.attributes\.([a-z0-9_]{1,64}) \| float\(0\)\) \}\}$`,
	)
	monthDayPattern = regexp.MustCompile(`^\{\{ now\(\)\.day == ([1-9]|[12]\d|3[01]) \}\}$`)
)

// AttributeDeltaTemplate renders the condition comparing an attribute before
// and after a state change.
func AttributeDeltaTemplate(attribute string, direction Direction) string {
	operator := ">"
	if direction == Decreased {
		operator = "<"
	}

	return fmt.Sprintf(
		"{{ (trigger.to_state.attributes.%s | float(0)) %s (trigger.from_state.attributes.%s | float(0)) }}",
		attribute, operator, attribute,
	)
}

// MonthDayTemplate renders the condition restricting a time trigger to one day of the month.
func MonthDayTemplate(day int) string {
	return fmt.Sprintf("{{ now().day == %d }}", day)
}

// ParseAttributeDeltaTemplate recognizes a template rendered by AttributeDeltaTemplate.
func ParseAttributeDeltaTemplate(template string) (string, Direction, bool) {
	match := attributeDeltaPattern.FindStringSubmatch(template)
	if match == nil || match[1] != match[3] {
		return "", "", false
	}

	if match[2] == "<" {
		return match[1], Decreased, true
	}

	return match[1], Increased, true
}

// ParseMonthDayTemplate recognizes a template rendered by MonthDayTemplate.
func ParseMonthDayTemplate(template string) (int, bool) {
	match := monthDayPattern.FindStringSubmatch(template)
	if match == nil {
		return 0, false
	}

	day, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}

	return day, true
}

// IsSafeTemplate reports whether template is one of the compiler's own forms.
func IsSafeTemplate(template string) bool {
	if _, _, ok := ParseAttributeDeltaTemplate(template); ok {
		return true
	}

	_, ok := ParseMonthDayTemplate(template)

	return ok
}

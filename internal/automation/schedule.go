package automation

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/slices"
)

// previewHorizon bounds the search for fire times; day 31 schedules skip short months.
const previewHorizon = 4 * 366

type clock struct {
	hour, minute, second int
}

// NextRuns lists the next n times after from at which cfg fires. Only configs
// made of fixed-time triggers gated by weekday or day-of-month conditions can
// be previewed; anything else returns false.
func NextRuns(cfg *Config, from time.Time, n int) ([]time.Time, bool) {
	if cfg == nil || n <= 0 || len(cfg.Triggers) == 0 {
		return nil, false
	}

	clocks := make([]clock, 0, len(cfg.Triggers))

	for _, rawTrigger := range cfg.Triggers {
		trigger, ok := rawTrigger.(map[string]any)
		if !ok || platformOf(trigger) != "time" {
			return nil, false
		}

		at, ok := trigger["at"].(string)
		if !ok {
			return nil, false
		}

		c, ok := parseClock(at)
		if !ok {
			return nil, false
		}

		clocks = append(clocks, c)
	}

	slices.SortFunc(clocks, func(a, b clock) int {
		return (a.hour*3600 + a.minute*60 + a.second) - (b.hour*3600 + b.minute*60 + b.second)
	})

	var weekdays mapset.Set[Weekday]

	monthDay := 0

	for _, rawCondition := range cfg.Conditions {
		condition, ok := rawCondition.(map[string]any)
		if !ok {
			return nil, false
		}

		switch condition["condition"] {
		case "time":
			days, ok := conditionWeekdays(condition)
			if !ok {
				return nil, false
			}

			if weekdays == nil {
				weekdays = days
			} else {
				weekdays = weekdays.Intersect(days)
			}

		case "template":
			template, _ := condition["value_template"].(string)

			day, ok := ParseMonthDayTemplate(template)
			if !ok || (monthDay != 0 && monthDay != day) {
				return nil, false
			}

			monthDay = day

		default:
			return nil, false
		}
	}

	runs := make([]time.Time, 0, n)
	year, month, day := from.Date()

	for offset := 0; offset < previewHorizon && len(runs) < n; offset++ {
		date := time.Date(year, month, day+offset, 0, 0, 0, 0, from.Location())

		if weekdays != nil && !weekdays.Contains(weekdayOrder[date.Weekday()]) {
			continue
		}

		if monthDay != 0 && date.Day() != monthDay {
			continue
		}

		for _, c := range clocks {
			run := time.Date(date.Year(), date.Month(), date.Day(), c.hour, c.minute, c.second, 0, from.Location())
			if run.After(from) && len(runs) < n {
				runs = append(runs, run)
			}
		}
	}

	return runs, true
}

func platformOf(trigger map[string]any) string {
	if platform, ok := trigger["trigger"].(string); ok {
		return platform
	}

	platform, _ := trigger["platform"].(string)

	return platform
}

func parseClock(at string) (clock, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, at); err == nil {
			return clock{hour: t.Hour(), minute: t.Minute(), second: t.Second()}, true
		}
	}

	return clock{}, false
}

// conditionWeekdays reads a pure weekday time condition.
func conditionWeekdays(condition map[string]any) (mapset.Set[Weekday], bool) {
	if _, ok := condition["after"]; ok {
		return nil, false
	}

	if _, ok := condition["before"]; ok {
		return nil, false
	}

	days := mapset.NewSet[Weekday]()

	switch weekday := condition["weekday"].(type) {
	case string:
		days.Add(Weekday(weekday))
	case []any:
		for _, day := range weekday {
			if s, ok := day.(string); ok {
				days.Add(Weekday(s))
			}
		}
	case []string:
		for _, day := range weekday {
			days.Add(Weekday(day))
		}
	default:
		return nil, false
	}

	return days, true
}

package automation

import (
	"testing"
	"time"
)

func TestNextRuns(t *testing.T) {
	from := time.Date(2024, time.January, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		cfg    *Config
		n      int
		want   []time.Time
		wantOk bool
	}{
		{
			name: "daily skips a time already passed today",
			cfg:  &Config{Triggers: []any{map[string]any{"trigger": "time", "at": "07:30:00"}}},
			n:    2,
			want: []time.Time{
				time.Date(2024, time.January, 31, 7, 30, 0, 0, time.UTC),
				time.Date(2024, time.February, 1, 7, 30, 0, 0, time.UTC),
			},
			wantOk: true,
		},
		{
			name: "monthly day 31 skips february",
			cfg: &Config{
				Triggers:   []any{map[string]any{"trigger": "time", "at": "06:00:00"}},
				Conditions: []any{map[string]any{"condition": "template", "value_template": MonthDayTemplate(31)}},
			},
			n: 2,
			want: []time.Time{
				time.Date(2024, time.January, 31, 6, 0, 0, 0, time.UTC),
				time.Date(2024, time.March, 31, 6, 0, 0, 0, time.UTC),
			},
			wantOk: true,
		},
		{
			name: "legacy platform key and weekday string",
			cfg: &Config{
				Triggers:   []any{map[string]any{"platform": "time", "at": "18:00"}},
				Conditions: []any{map[string]any{"condition": "time", "weekday": "sat"}},
			},
			n:      1,
			want:   []time.Time{time.Date(2024, time.February, 3, 18, 0, 0, 0, time.UTC)},
			wantOk: true,
		},
		{
			name: "state trigger has no preview",
			cfg:  &Config{Triggers: []any{map[string]any{"trigger": "state", "entity_id": "light.a"}}},
			n:    1,
		},
		{
			name: "entity valued at has no preview",
			cfg:  &Config{Triggers: []any{map[string]any{"trigger": "time", "at": "input_datetime.alarm"}}},
			n:    1,
		},
		{
			name: "foreign template condition has no preview",
			cfg: &Config{
				Triggers:   []any{map[string]any{"trigger": "time", "at": "06:00:00"}},
				Conditions: []any{map[string]any{"condition": "template", "value_template": "{{ is_state('sun.sun', 'above_horizon') }}"}},
			},
			n: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextRuns(tt.cfg, from, tt.n)
			if ok != tt.wantOk {
				t.Fatalf("NextRuns() ok = %t, want %t", ok, tt.wantOk)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("NextRuns() = %v, want %v", got, tt.want)
			}

			for i := range got {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("NextRuns()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

package autoscope

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benleb/autoscope/internal/automation"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAuditor_Run(t *testing.T) {
	hub := newFakeHub()
	svc := New(hub, nil)
	auditor := NewAuditor(svc, 0)
	ctx := context.Background()

	first, err := auditor.Run(ctx)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if first.Total != 3 || first.Editable != 2 || strings.Join(first.Templated, ",") != "templated_heat" {
		t.Errorf("Run() = %+v", first)
	}

	if len(first.Added)+len(first.Changed)+len(first.Removed) != 0 {
		t.Errorf("first Run() reported changes: %+v", first)
	}

	if got := testutil.ToFloat64(svc.Metrics.Automations.WithLabelValues("templated")); got != 1 {
		t.Errorf("templated gauge = %v, want 1", got)
	}

	// change one, remove one, add one
	hub.configs["kitchen_light"] = &automation.Config{
		ID: "kitchen_light", Alias: "Kitchen light", Mode: automation.ModeRestart,
		Triggers: hub.configs["kitchen_light"].Triggers,
		Actions:  hub.configs["kitchen_light"].Actions,
	}
	delete(hub.configs, "boiler_night")
	hub.configs["new_one"] = &automation.Config{ID: "new_one", Alias: "New", Mode: automation.ModeSingle}

	second, err := auditor.Run(ctx)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if strings.Join(second.Added, ",") != "new_one" ||
		strings.Join(second.Changed, ",") != "kitchen_light" ||
		strings.Join(second.Removed, ",") != "boiler_night" {
		t.Errorf("second Run() = %+v", second)
	}

	if got := testutil.ToFloat64(svc.Metrics.Automations.WithLabelValues("total")); got != 3 {
		t.Errorf("total gauge = %v, want 3", got)
	}
}

func TestFingerprint(t *testing.T) {
	cfg := func(to string) *automation.Config {
		return &automation.Config{
			ID: "a", Alias: "A", Mode: automation.ModeSingle,
			Triggers: []any{map[string]any{"trigger": "state", "entity_id": "sensor.a", "to": to, "from": "off"}},
		}
	}

	a, err := Fingerprint(cfg("on"))
	if err != nil {
		t.Fatalf("Fingerprint() unexpected error: %v", err)
	}

	b, _ := Fingerprint(cfg("on"))
	c, _ := Fingerprint(cfg("off"))

	if a != b {
		t.Error("Fingerprint() differs for equal configs")
	}

	if a == c {
		t.Error("Fingerprint() equal for different configs")
	}
}

func TestMetrics_Handler(t *testing.T) {
	metrics := NewMetrics()
	metrics.DenialsTotal.WithLabelValues(opDelete).Inc()

	recorder := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	if body := recorder.Body.String(); !strings.Contains(body, `autoscope_denials_total{operation="delete"} 1`) {
		t.Errorf("Handler() body misses the denial counter:\n%s", body)
	}
}

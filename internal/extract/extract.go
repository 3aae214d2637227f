// Package extract recovers the entities an automation config references,
// without trusting the config to be in any shape this project produces.
package extract

import (
	"fmt"
	"strings"

	"github.com/benleb/autoscope/internal/automation"
	"github.com/benleb/autoscope/internal/models/domain"
	"github.com/benleb/autoscope/internal/models/entity"
	mapset "github.com/deckarep/golang-set/v2"
)

// maxDepth stops walking pathologically nested configs; deeper parts count as opaque.
const maxDepth = 64

var (
	knownTriggerPlatforms = mapset.NewSet(
		"state", "numeric_state", "time", "time_pattern", "sun", "homeassistant", "event", "zone",
		"geo_location", "device", "template", "mqtt", "webhook", "tag", "calendar", "conversation",
	)

	knownConditions = mapset.NewSet(
		"and", "or", "not", "state", "numeric_state", "time", "sun", "zone", "template", "trigger", "device",
	)

	// service domains that are not entity domains.
	extraServiceDomains = mapset.NewSet("logbook", "system_log", "frontend", "group", "recorder")

	// targets that cannot be resolved to entities without the hub's registries.
	opaqueTargets = []string{"area_id", "device_id", "floor_id", "label_id"}

	// services running actions stored elsewhere; their reach is unknown here.
	delegatingServices = mapset.NewSet("automation.trigger", "python_script", "shell_command", "rest_command")

	// services naming entities outside entity_id, as a list or as entity -> state map.
	entityListServices = mapset.NewSet("scene.apply", "scene.create", "group.set")
	entityListFields   = []string{"entities", "snapshot_entities", "add_entities", "remove_entities"}

	templateDelimiters = []string{"{{", "{%", "{#"}
)

type bucket int

const (
	triggerBucket bucket = iota
	conditionBucket
	actionBucket
)

type extractor struct {
	refs *References
}

// Extract walks cfg and collects its entity references. It is best-effort:
// anything it cannot analyze sets HasTemplates, and whatever concrete
// references were found are still returned.
func Extract(cfg *automation.Config) *References {
	x := &extractor{refs: NewReferences()}

	if cfg == nil {
		return x.refs
	}

	for _, trigger := range cfg.Triggers {
		x.trigger(trigger, 0)
	}

	for _, condition := range cfg.Conditions {
		x.condition(condition, conditionBucket, 0)
	}

	for _, step := range cfg.Actions {
		x.step(step, 0)
	}

	x.scanTemplates(cfg.Triggers, 0)
	x.scanTemplates(cfg.Conditions, 0)
	x.scanTemplates(cfg.Actions, 0)

	return x.refs
}

// ExtractRaw parses a raw hub config and extracts it.
func ExtractRaw(raw map[string]any) (*automation.Config, *References, error) {
	cfg, err := automation.ParseConfig(raw)
	if err != nil {
		return nil, nil, err
	}

	return cfg, Extract(cfg), nil
}

func (x *extractor) opaque(format string, args ...any) {
	x.refs.HasTemplates = true
	x.refs.Reasons = append(x.refs.Reasons, fmt.Sprintf(format, args...))
}

func (x *extractor) add(b bucket, entityID string) {
	switch b {
	case triggerBucket:
		x.refs.Triggers.Add(entityID)
	case conditionBucket:
		x.refs.Conditions.Add(entityID)
	case actionBucket:
		x.refs.Actions.Add(entityID)
	}
}

func (x *extractor) trigger(raw any, depth int) {
	if depth > maxDepth {
		x.opaque("trigger nested too deep")

		return
	}

	item, ok := raw.(map[string]any)
	if !ok {
		x.opaque("trigger of type %T", raw)

		return
	}

	platform := stringField(item, "trigger", "platform")
	if !knownTriggerPlatforms.Contains(platform) {
		x.opaque("unknown trigger platform %q", platform)
	}

	x.entityField(triggerBucket, item["entity_id"])
	x.entityField(triggerBucket, nested(item, "event_data", "entity_id"))
	x.entityField(triggerBucket, item["zone"])

	switch platform {
	case "time":
		x.entityValues(triggerBucket, item["at"])
	case "numeric_state":
		x.entityValues(triggerBucket, item["above"])
		x.entityValues(triggerBucket, item["below"])
	case "device":
		x.requireEntity(item, "device trigger")
	}
}

func (x *extractor) condition(raw any, b bucket, depth int) {
	if depth > maxDepth {
		x.opaque("condition nested too deep")

		return
	}

	switch item := raw.(type) {
	case string:
		// shorthand template condition, judged by the template scan
		if !hasTemplate(item) {
			x.opaque("condition string %q", item)
		}

		return

	case []any:
		for _, sub := range item {
			x.condition(sub, b, depth+1)
		}

		return

	case map[string]any:
		kind, _ := item["condition"].(string)

		if kind == "" {
			// shorthand logic: {and: [...]}, {or: [...]}, {not: [...]}
			for _, logic := range []string{"and", "or", "not"} {
				if sub, ok := item[logic]; ok {
					x.condition(sub, b, depth+1)

					return
				}
			}

			x.opaque("condition without kind")

			return
		}

		if !knownConditions.Contains(kind) {
			x.opaque("unknown condition %q", kind)
		}

		switch kind {
		case "and", "or", "not":
			x.condition(item["conditions"], b, depth+1)

			return
		case "numeric_state":
			x.entityValues(b, item["above"])
			x.entityValues(b, item["below"])
		case "time":
			x.entityValues(b, item["after"])
			x.entityValues(b, item["before"])
		case "device":
			x.requireEntity(item, "device condition")
		}

		x.entityField(b, item["entity_id"])
		x.entityField(b, item["zone"])

	case nil:

	default:
		x.opaque("condition of type %T", raw)
	}
}

func (x *extractor) sequence(raw any, depth int) {
	switch steps := raw.(type) {
	case nil:
	case []any:
		for _, step := range steps {
			x.step(step, depth+1)
		}
	default:
		x.step(raw, depth+1)
	}
}

func (x *extractor) step(raw any, depth int) {
	if depth > maxDepth {
		x.opaque("action nested too deep")

		return
	}

	item, ok := raw.(map[string]any)
	if !ok {
		x.opaque("action of type %T", raw)

		return
	}

	switch {
	case has(item, "action") || has(item, "service") || has(item, "service_template"):
		x.serviceCall(item)

	case has(item, "scene"):
		x.entityField(actionBucket, item["scene"])

	case has(item, "wait_for_trigger"):
		for _, trigger := range asList(item["wait_for_trigger"]) {
			x.trigger(trigger, depth+1)
		}

	case has(item, "choose"):
		for _, option := range asList(item["choose"]) {
			choice, ok := option.(map[string]any)
			if !ok {
				x.opaque("choose option of type %T", option)

				continue
			}

			x.condition(choice["conditions"], conditionBucket, depth+1)
			x.sequence(choice["sequence"], depth)
		}

		x.sequence(item["default"], depth)

	case has(item, "if"):
		x.condition(item["if"], conditionBucket, depth+1)
		x.sequence(item["then"], depth)
		x.sequence(item["else"], depth)

	case has(item, "repeat"):
		repeat, ok := item["repeat"].(map[string]any)
		if !ok {
			x.opaque("repeat of type %T", item["repeat"])

			return
		}

		x.condition(repeat["while"], conditionBucket, depth+1)
		x.condition(repeat["until"], conditionBucket, depth+1)
		x.sequence(repeat["sequence"], depth)

	case has(item, "parallel"):
		for _, branch := range asList(item["parallel"]) {
			if wrapped, ok := branch.(map[string]any); ok && has(wrapped, "sequence") {
				x.sequence(wrapped["sequence"], depth)

				continue
			}

			x.step(branch, depth+1)
		}

	case has(item, "sequence"):
		x.sequence(item["sequence"], depth)

	case has(item, "condition"):
		x.condition(item, conditionBucket, depth+1)

	case has(item, "event"):
		x.entityField(actionBucket, nested(item, "event_data", "entity_id"))

	case has(item, "device_id"):
		x.requireEntity(item, "device action")
		x.entityField(actionBucket, item["entity_id"])

	case has(item, "delay"), has(item, "wait_template"), has(item, "stop"), has(item, "variables"):
		// no entities; templates are caught by the scan

	default:
		x.opaque("unknown action step")
	}
}

func (x *extractor) serviceCall(item map[string]any) {
	if has(item, "service_template") || has(item, "data_template") {
		x.opaque("templated service call")
	}

	name := stringField(item, "action", "service")

	serviceDomain, serviceName, found := strings.Cut(name, ".")
	if !found || serviceName == "" || hasTemplate(name) {
		x.opaque("service %q", name)
	} else if !domain.Domain(serviceDomain).IsValid() && !extraServiceDomains.Contains(serviceDomain) {
		x.opaque("unknown service domain %q", serviceDomain)
	}

	switch {
	case serviceDomain == string(domain.Script) || delegatingServices.Contains(name) || delegatingServices.Contains(serviceDomain):
		x.opaque("service %q runs actions stored elsewhere", name)

	case entityListServices.Contains(name):
		for _, wrapper := range []string{"data", "service_data"} {
			for _, field := range entityListFields {
				x.entityKeys(actionBucket, nested(item, wrapper, field))
			}
		}

		for _, field := range entityListFields {
			x.entityKeys(actionBucket, item[field])
		}
	}

	x.entityField(actionBucket, item["entity_id"])

	for _, wrapper := range []string{"target", "data", "service_data", "data_template"} {
		x.entityField(actionBucket, nested(item, wrapper, "entity_id"))
	}

	for _, key := range opaqueTargets {
		if has(item, key) || nested(item, "target", key) != nil || nested(item, "data", key) != nil {
			x.opaque("service call targets %s", key)
		}
	}
}

// requireEntity flags device-only references: a device id says nothing about which entities it drives.
func (x *extractor) requireEntity(item map[string]any, what string) {
	if item["entity_id"] == nil {
		x.opaque("%s without entity", what)
	}
}

// entityField collects an entity_id-like field: a string, a comma separated list or a list.
func (x *extractor) entityField(b bucket, value any) {
	switch v := value.(type) {
	case nil:

	case string:
		if hasTemplate(v) {
			return
		}

		for _, part := range strings.Split(v, ",") {
			x.entityID(b, strings.TrimSpace(part))
		}

	case []any:
		for _, item := range v {
			x.entityField(b, item)
		}

	case []string:
		for _, item := range v {
			x.entityField(b, item)
		}

	default:
		x.opaque("entity reference of type %T", value)
	}
}

// entityKeys collects the keys of an entity -> state map, anything else is an entity field.
func (x *extractor) entityKeys(b bucket, value any) {
	states, ok := value.(map[string]any)
	if !ok {
		x.entityField(b, value)

		return
	}

	for entityID := range states {
		if hasTemplate(entityID) {
			x.opaque("template key %q", entityID)

			continue
		}

		x.entityID(b, strings.TrimSpace(entityID))
	}
}

func (x *extractor) entityID(b bucket, raw string) {
	switch {
	case raw == "all" || raw == "none":
		x.opaque("entity_id %q", raw)
	case entity.IsValid(raw):
		x.add(b, raw)
	default:
		x.opaque("malformed entity id %q", raw)
	}
}

// entityValues collects values that may be either literals or entity ids (at, after, above, ...).
func (x *extractor) entityValues(b bucket, value any) {
	for _, item := range asList(value) {
		switch v := item.(type) {
		case string:
			if entity.IsValid(v) {
				x.add(b, v)
			}
		case map[string]any:
			// {entity_id: sensor.next_alarm, offset: ...}
			x.entityField(b, v["entity_id"])
		}
	}
}

// scanTemplates flags every template-bearing string except the compiler's own forms.
func (x *extractor) scanTemplates(value any, depth int) {
	if depth > maxDepth {
		x.opaque("config nested too deep")

		return
	}

	switch v := value.(type) {
	case string:
		if hasTemplate(v) && !automation.IsSafeTemplate(strings.TrimSpace(v)) {
			x.opaque("template %q", v)
		}

	case []any:
		for _, item := range v {
			x.scanTemplates(item, depth+1)
		}

	case map[string]any:
		for key, item := range v {
			if hasTemplate(key) {
				x.opaque("template key %q", key)
			}

			x.scanTemplates(item, depth+1)
		}
	}
}

func hasTemplate(s string) bool {
	for _, delimiter := range templateDelimiters {
		if strings.Contains(s, delimiter) {
			return true
		}
	}

	return false
}

func has(item map[string]any, key string) bool {
	_, ok := item[key]

	return ok
}

func stringField(item map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := item[key].(string); ok {
			return s
		}
	}

	return ""
}

func nested(item map[string]any, wrapper, key string) any {
	inner, ok := item[wrapper].(map[string]any)
	if !ok {
		return nil
	}

	return inner[key]
}

func asList(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	}

	return []any{value}
}

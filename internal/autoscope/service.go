// Package autoscope runs automation requests through validation, the
// capability gate, the compiler, entity extraction and scope authorization
// before anything is written to the hub.
package autoscope

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benleb/autoscope/internal/automation"
	"github.com/benleb/autoscope/internal/capability"
	"github.com/benleb/autoscope/internal/extract"
	"github.com/benleb/autoscope/internal/homeassistant"
	"github.com/benleb/autoscope/internal/icons"
	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/models/device"
	"github.com/benleb/autoscope/internal/scope"
	"github.com/benleb/autoscope/internal/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/kr/pretty"
)

// Hub is the part of the hub client the pipeline needs.
type Hub interface {
	Devices(ctx context.Context) ([]device.Device, error)
	ListAutomations(ctx context.Context) ([]homeassistant.Automation, error)
	GetAutomation(ctx context.Context, id string) (*automation.Config, error)
	SaveAutomation(ctx context.Context, cfg *automation.Config) error
	DeleteAutomation(ctx context.Context, id string) error
	SetAutomationEnabled(ctx context.Context, id string, enabled bool) error
}

// operations, used as metric labels
const (
	opCreate     = "create"
	opUpdate     = "update"
	opDelete     = "delete"
	opSetEnabled = "set_enabled"
)

var (
	// a freshly saved automation shows up as entity only after the hub reloaded
	enableAttempts = 5
	enableBackoff  = 500 * time.Millisecond
)

// Service is the request pipeline for one hub.
type Service struct {
	hub        Hub
	categories map[string]string

	Metrics *Metrics

	pr *log.Logger
}

func New(hub Hub, cfg *Config) *Service {
	if cfg == nil {
		cfg = &Config{}
	}

	return &Service{
		hub:        hub,
		categories: cfg.entityCategories(),

		Metrics: NewMetrics(),

		pr: models.Printer.WithPrefix(lipgloss.NewStyle().Foreground(style.HABlue).Faint(true).Render(models.AppName)),
	}
}

// Snapshot returns the hub's devices with their assigned categories.
func (s *Service) Snapshot(ctx context.Context) (*device.Snapshot, error) {
	devices, err := s.hub.Devices(ctx)
	if err != nil {
		return nil, err
	}

	for idx := range devices {
		if label, ok := s.categories[devices[idx].EntityID]; ok {
			devices[idx].Category = label
		}
	}

	return device.NewSnapshot(devices...), nil
}

func (s *Service) allowed(ctx context.Context, caller scope.Caller) (*device.Snapshot, scope.AllowedSet, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, scope.AllowedSet{}, err
	}

	allowed := scope.ForCaller(caller, snapshot)

	s.pr.Debug("allowed set", "user", caller.Name, "admin", caller.Admin, "entities", allowed.Len())

	return snapshot, allowed, nil
}

// Create compiles the draft and writes it as a new automation. It returns the assigned id.
func (s *Service) Create(ctx context.Context, caller scope.Caller, raw any) (string, error) {
	snapshot, allowed, err := s.allowed(ctx, caller)
	if err != nil {
		return "", err
	}

	draft, cfg, err := s.prepare(opCreate, caller, snapshot, allowed, raw, "")
	if err != nil {
		return "", err
	}

	return s.write(ctx, opCreate, draft, cfg, nil)
}

// Update replaces the automation with the given id by the compiled draft.
// Both the existing and the new config must be within the caller's scope.
func (s *Service) Update(ctx context.Context, caller scope.Caller, id string, raw any) (string, error) {
	if id == "" {
		return "", models.InvalidDraftErr("id", "required for an update")
	}

	snapshot, allowed, err := s.allowed(ctx, caller)
	if err != nil {
		return "", err
	}

	draft, cfg, err := s.prepare(opUpdate, caller, snapshot, allowed, raw, id)
	if err != nil {
		return "", err
	}

	previous, err := s.authorizeExisting(ctx, opUpdate, caller, allowed, id)
	if err != nil {
		return "", err
	}

	return s.write(ctx, opUpdate, draft, cfg, previous)
}

// Delete removes an automation the caller may edit.
func (s *Service) Delete(ctx context.Context, caller scope.Caller, id string) error {
	if err := s.authorizeTarget(ctx, opDelete, caller, id); err != nil {
		return err
	}

	if err := s.hub.DeleteAutomation(ctx, id); err != nil {
		return err
	}

	s.Metrics.HubWritesTotal.WithLabelValues(opDelete).Inc()
	s.pr.Infof("%s deleted %s", icons.Broom, style.Bold(id))

	return nil
}

// SetEnabled turns an automation the caller may edit on or off.
func (s *Service) SetEnabled(ctx context.Context, caller scope.Caller, id string, enabled bool) error {
	if err := s.authorizeTarget(ctx, opSetEnabled, caller, id); err != nil {
		return err
	}

	if err := s.hub.SetAutomationEnabled(ctx, id, enabled); err != nil {
		return err
	}

	s.Metrics.HubWritesTotal.WithLabelValues(opSetEnabled).Inc()
	s.pr.Infof("%s %s enabled: %t", icons.Pen, style.Bold(id), enabled)

	return nil
}

// Compile runs a draft through validation, the capability gate, the compiler
// and extraction without writing anything. A nil snapshot skips the gate.
func Compile(raw any, id string, snapshot *device.Snapshot) (*automation.Draft, *automation.Config, *extract.References, error) {
	draft, err := automation.Validate(raw)
	if err != nil {
		return nil, nil, nil, err
	}

	cfg, refs, err := compileDraft(draft, id, snapshot)
	if err != nil {
		return nil, nil, nil, err
	}

	return draft, cfg, refs, nil
}

func compileDraft(draft *automation.Draft, id string, snapshot *device.Snapshot) (*automation.Config, *extract.References, error) {
	if snapshot != nil {
		if err := capability.CheckDraft(draft, snapshot); err != nil {
			return nil, nil, err
		}
	}

	cfg, err := automation.Compile(draft, id)
	if err != nil {
		return nil, nil, err
	}

	return cfg, extract.Extract(cfg), nil
}

// draftEntities returns the entities a validated draft names, in draft order.
func draftEntities(draft *automation.Draft) []string {
	entities := make([]string, 0, 2)

	if entityID := draft.Trigger.EntityID(); entityID != "" {
		entities = append(entities, entityID)
	}

	if entityID := draft.Action.EntityID(); entityID != "" {
		entities = append(entities, entityID)
	}

	return entities
}

// prepare compiles the draft and authorizes the result. Nothing is sent to the hub.
func (s *Service) prepare(op string, caller scope.Caller, snapshot *device.Snapshot, allowed scope.AllowedSet, raw any, id string) (*automation.Draft, *automation.Config, error) {
	draft, err := automation.Validate(raw)
	if err != nil {
		return nil, nil, s.rejected(caller, err)
	}

	// tenants learn nothing about entities outside their areas, known or not
	if !caller.Admin {
		for _, entityID := range draftEntities(draft) {
			if !allowed.Contains(entityID) {
				s.Metrics.DenialsTotal.WithLabelValues(op).Inc()
				s.pr.Debug("draft entity denied", "user", caller.Name, "entity", entityID)

				return nil, nil, models.ErrOutOfScope
			}
		}
	}

	cfg, refs, err := compileDraft(draft, id, snapshot)
	if err != nil {
		return nil, nil, s.rejected(caller, err)
	}

	if err := scope.AuthorizeWrite(s.pr, caller, refs, allowed); err != nil {
		s.Metrics.DenialsTotal.WithLabelValues(op).Inc()

		return nil, nil, err
	}

	s.Metrics.CompilesTotal.Inc()

	if s.pr.GetLevel() <= log.DebugLevel {
		s.pr.Debugf("%s compiled %s", icons.Compile, pretty.Sprint(cfg))
	}

	return draft, cfg, nil
}

// rejected counts and maps errors of the validator, the gate and the compiler.
func (s *Service) rejected(caller scope.Caller, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidDraft):
		s.Metrics.ValidationFailuresTotal.Inc()
		s.pr.Debug("draft rejected", "user", caller.Name, "err", err)

	case errors.Is(err, models.ErrCompilerInvariant):
		s.pr.Error("compiler and validator are out of sync", "err", err)

		return models.ErrInternal
	}

	return err
}

// authorizeTarget guards operations on an existing automation: a caller
// without any allowed entity is refused before the config is fetched.
func (s *Service) authorizeTarget(ctx context.Context, op string, caller scope.Caller, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty automation id", models.ErrAutomationNotFound)
	}

	_, allowed, err := s.allowed(ctx, caller)
	if err != nil {
		return err
	}

	if !caller.Admin && allowed.IsEmpty() {
		s.Metrics.DenialsTotal.WithLabelValues(op).Inc()
		s.pr.Debug("no allowed entities", "user", caller.Name, "operation", op)

		return models.ErrOutOfScope
	}

	_, err = s.authorizeExisting(ctx, op, caller, allowed, id)

	return err
}

// authorizeExisting fetches the stored config and checks the caller may edit it.
func (s *Service) authorizeExisting(ctx context.Context, op string, caller scope.Caller, allowed scope.AllowedSet, id string) (*automation.Config, error) {
	existing, err := s.hub.GetAutomation(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scope.AuthorizeEdit(s.pr, caller, extract.Extract(existing), allowed); err != nil {
		s.Metrics.DenialsTotal.WithLabelValues(op).Inc()

		return nil, err
	}

	return existing, nil
}

// write saves cfg and applies the draft's enabled flag. When the flag cannot
// be applied the save is undone: a created automation is deleted, an updated
// one gets its previous config back.
func (s *Service) write(ctx context.Context, op string, draft *automation.Draft, cfg, previous *automation.Config) (string, error) {
	if err := s.hub.SaveAutomation(ctx, cfg); err != nil {
		return "", err
	}

	s.Metrics.HubWritesTotal.WithLabelValues(op).Inc()
	s.pr.With("id", cfg.ID).Infof("%s %s %s", icons.Tick, op, style.Bold(cfg.Alias))

	if draft.Enabled == nil {
		return cfg.ID, nil
	}

	err := s.setEnabledAfterWrite(ctx, cfg.ID, *draft.Enabled)
	if err == nil {
		return cfg.ID, nil
	}

	s.pr.Warn(icons.RedCross.Render()+" setting enabled failed, rolling back", "id", cfg.ID, "err", err)

	if rollbackErr := s.rollback(context.WithoutCancel(ctx), cfg.ID, previous); rollbackErr != nil {
		s.pr.Error("rollback failed", "id", cfg.ID, "err", rollbackErr)

		return "", fmt.Errorf("%w: %w", err, rollbackErr)
	}

	return "", err
}

func (s *Service) rollback(ctx context.Context, id string, previous *automation.Config) error {
	if previous == nil {
		return s.hub.DeleteAutomation(ctx, id)
	}

	return s.hub.SaveAutomation(ctx, previous)
}

func (s *Service) setEnabledAfterWrite(ctx context.Context, id string, enabled bool) error {
	var err error

	for attempt := 1; attempt <= enableAttempts; attempt++ {
		err = s.hub.SetAutomationEnabled(ctx, id, enabled)
		if !errors.Is(err, models.ErrAutomationNotFound) {
			return err
		}

		s.pr.Debugf("%s %s not loaded yet, attempt %d/%d", icons.Stopwatch, id, attempt, enableAttempts)

		select {
		case <-time.After(enableBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return err
}

package autoscope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/benleb/autoscope/internal/automation"
	"github.com/benleb/autoscope/internal/extract"
	"github.com/benleb/autoscope/internal/icons"
	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/scope"
	"github.com/benleb/autoscope/internal/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron"
	"github.com/zeebo/blake3"
	"golang.org/x/exp/slices"
)

// AuditReport is the result of one audit run.
type AuditReport struct {
	Total     int
	Templated []string
	Editable  int

	// Added, Changed and Removed compare against the previous run.
	Added   []string
	Changed []string
	Removed []string
}

// Auditor periodically checks every automation of the hub as admin.
type Auditor struct {
	service *Service
	caller  scope.Caller
	every   time.Duration

	scheduler *gocron.Scheduler

	// fingerprints of the configs seen by the last run
	fingerprints   map[string][32]byte
	fingerprintsMu sync.Mutex

	pr *log.Logger
}

func NewAuditor(service *Service, every time.Duration) *Auditor {
	return &Auditor{
		service: service,
		caller:  scope.Caller{Name: "audit", Admin: true},
		every:   every,

		scheduler: gocron.NewScheduler(time.UTC),

		pr: models.Printer.WithPrefix(lipgloss.NewStyle().Foreground(lipgloss.Color("#CC99CC")).Render("audit")),
	}
}

// Start schedules the audit job, the first run starts immediately.
func (a *Auditor) Start(ctx context.Context) error {
	_, err := a.scheduler.Every(a.every).SingletonMode().Do(func() {
		if _, err := a.Run(ctx); err != nil {
			a.pr.Errorf("%s audit run failed: %+v", icons.RedCross.Render(), err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling audit failed: %w", err)
	}

	a.scheduler.StartAsync()

	a.pr.Infof("%s audit scheduled every %s", icons.Watchdog, style.Bold(a.every.String()))

	return nil
}

// Stop stops the scheduler, a running audit finishes.
func (a *Auditor) Stop() {
	a.scheduler.Stop()
}

// Run audits all automations once.
func (a *Auditor) Run(ctx context.Context) (*AuditReport, error) {
	_, allowed, err := a.service.allowed(ctx, a.caller)
	if err != nil {
		return nil, err
	}

	automations, err := a.service.hub.ListAutomations(ctx)
	if err != nil {
		return nil, err
	}

	report := &AuditReport{Total: len(automations)}
	current := make(map[string][32]byte, len(automations))

	for _, auto := range automations {
		refs := extract.Extract(auto.Config)

		if refs.HasTemplates {
			report.Templated = append(report.Templated, auto.Config.ID)

			a.pr.Info(icons.Template+" templated", "id", auto.Config.ID, "alias", auto.Config.Alias, "reasons", refs.Reasons)
		}

		if scope.CanEdit(refs, allowed) {
			report.Editable++
		}

		fingerprint, err := Fingerprint(auto.Config)
		if err != nil {
			a.pr.Warn("fingerprint failed", "id", auto.Config.ID, "err", err)

			continue
		}

		current[auto.Config.ID] = fingerprint
	}

	a.diff(report, current)

	metrics := a.service.Metrics
	metrics.Automations.WithLabelValues("total").Set(float64(report.Total))
	metrics.Automations.WithLabelValues("templated").Set(float64(len(report.Templated)))
	metrics.Automations.WithLabelValues("editable").Set(float64(report.Editable))

	a.pr.Infof("%s %s automations | %s templated | %s editable | %d added %d changed %d removed",
		icons.Detective, style.Bold(fmt.Sprint(report.Total)), style.Bold(fmt.Sprint(len(report.Templated))),
		style.Bold(fmt.Sprint(report.Editable)), len(report.Added), len(report.Changed), len(report.Removed))

	return report, nil
}

// diff compares the fingerprints with the previous run. The first run has nothing to compare.
func (a *Auditor) diff(report *AuditReport, current map[string][32]byte) {
	a.fingerprintsMu.Lock()
	defer a.fingerprintsMu.Unlock()

	previous := a.fingerprints
	a.fingerprints = current

	if previous == nil {
		return
	}

	for id, fingerprint := range current {
		before, ok := previous[id]

		switch {
		case !ok:
			report.Added = append(report.Added, id)
		case before != fingerprint:
			report.Changed = append(report.Changed, id)
			a.pr.Info(icons.Pen+" changed", "id", id)
		}
	}

	for id := range previous {
		if _, ok := current[id]; !ok {
			report.Removed = append(report.Removed, id)
		}
	}

	slices.Sort(report.Added)
	slices.Sort(report.Changed)
	slices.Sort(report.Removed)
}

// Fingerprint hashes the canonical JSON form of a config.
func Fingerprint(cfg *automation.Config) ([32]byte, error) {
	// maps are encoded with sorted keys
	canonical, err := json.Marshal(cfg)
	if err != nil {
		return [32]byte{}, err
	}

	return blake3.Sum256(canonical), nil
}

// ServeMetrics serves /metrics on addr until ctx is done.
func ServeMetrics(ctx context.Context, addr string, metrics *Metrics) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	appaudit "github.com/fixdesk/backend/internal/application/audit"
	"github.com/fixdesk/backend/internal/application/common"
	domainaudit "github.com/fixdesk/backend/internal/domain/audit"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/infrastructure/event"
	"github.com/fixdesk/backend/internal/infrastructure/persistence"
)

// Harness is a fully wired unit-of-work stack over an in-memory database
type Harness struct {
	DB     *gorm.DB
	Repos  common.Repositories
	Runner *common.Runner
	Trail  *appaudit.Trail
	Bus    *event.InMemoryEventBus
	Events *RecordingHandler
	Clock  *Clock
	Logger *zap.Logger
}

// HarnessOption configures NewHarness
type HarnessOption func(*harnessConfig)

type harnessConfig struct {
	auditMode appaudit.Mode
	start     time.Time
}

// WithAuditMode selects the audit sink mode
func WithAuditMode(mode appaudit.Mode) HarnessOption {
	return func(c *harnessConfig) { c.auditMode = mode }
}

// WithStartTime sets the initial clock value
func WithStartTime(t time.Time) HarnessOption {
	return func(c *harnessConfig) { c.start = t }
}

// NewHarness wires runner, audit trail and event bus over a fresh in-memory
// database. Every published domain event is captured in Events.
func NewHarness(t *testing.T, opts ...HarnessOption) *Harness {
	t.Helper()
	return NewHarnessWithDB(t, NewSQLiteDB(t), opts...)
}

// NewHarnessWithDB wires the same stack over an already migrated database
func NewHarnessWithDB(t *testing.T, db *gorm.DB, opts ...HarnessOption) *Harness {
	t.Helper()

	cfg := harnessConfig{
		auditMode: appaudit.ModeBestEffort,
		start:     time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := zap.NewNop()
	repos := persistence.NewRepositories(db)
	clock := NewClock(cfg.start)
	trail := appaudit.NewTrail(repos.AuditRepo(), cfg.auditMode, log)

	bus := event.NewInMemoryEventBus(log)
	recorder := &RecordingHandler{}
	bus.Subscribe(recorder)

	runner := common.NewRunner(persistence.NewGormTransactionScope(db), trail, log,
		common.WithEventPublisher(bus),
		common.WithClock(clock.Now),
	)

	return &Harness{
		DB:     db,
		Repos:  repos,
		Runner: runner,
		Trail:  trail,
		Bus:    bus,
		Events: recorder,
		Clock:  clock,
		Logger: log,
	}
}

// AuditEntries returns up to 200 stored audit entries of one table, newest
// first
func (h *Harness) AuditEntries(t *testing.T, table string) []domainaudit.Entry {
	t.Helper()
	filter := domainaudit.Filter{
		Filter:      shared.Filter{Page: 1, PageSize: 200}.Normalize(),
		EntityTable: table,
	}
	entries, _, err := h.Repos.AuditRepo().FindAll(context.Background(), filter)
	if err != nil {
		t.Fatalf("list audit entries: %v", err)
	}
	return entries
}

// RecordingHandler captures every event it receives
type RecordingHandler struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

// Handle records the event
func (h *RecordingHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return nil
}

// EventTypes is empty so the handler receives every event
func (h *RecordingHandler) EventTypes() []string { return nil }

// OfType returns the captured events of one type
func (h *RecordingHandler) OfType(eventType string) []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range h.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

package common

import (
	"context"
	"time"

	"github.com/fixdesk/backend/internal/domain/audit"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "github.com/fixdesk/backend/internal/application/common"

// AuditSink persists the audit entries of one unit of work. Stage runs
// inside the transaction and Commit after it has committed; a sink writes in
// exactly one of the two.
type AuditSink interface {
	Stage(ctx context.Context, repo audit.Repository, entries []*audit.Entry) error
	Commit(ctx context.Context, entries []*audit.Entry)
}

// Work is handed to every step of a unit of work. Besides the transactional
// repositories it collects the audit entries and domain events that are
// released once the transaction has committed.
type Work struct {
	Repos  Repositories
	Now    time.Time
	audit  []*audit.Entry
	events []shared.DomainEvent
	after  []func(ctx context.Context)
}

// Audit queues an entry
func (w *Work) Audit(actor string, action audit.Action, table string, entityID uuid.UUID, oldData, newData map[string]any) {
	entry := audit.NewEntry(actor, action, table, entityID, oldData, newData)
	entry.Timestamp = w.Now
	w.audit = append(w.audit, entry)
}

// Collect takes the pending domain events off an aggregate
func (w *Work) Collect(agg shared.AggregateRoot) {
	w.events = append(w.events, agg.GetDomainEvents()...)
	agg.ClearDomainEvents()
}

// AfterCommit registers fn to run once the transaction has committed. It is
// dropped on rollback.
func (w *Work) AfterCommit(fn func(ctx context.Context)) {
	w.after = append(w.after, fn)
}

// AuditEntries returns the queued audit entries
func (w *Work) AuditEntries() []*audit.Entry {
	return w.audit
}

// Runner executes units of work: one transaction per call, audit entries
// handed to the sink, domain events published after commit.
type Runner struct {
	scope     TransactionScope
	sink      AuditSink
	publisher shared.EventPublisher
	clock     func() time.Time
	logger    *zap.Logger
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithEventPublisher publishes collected domain events after commit
func WithEventPublisher(p shared.EventPublisher) RunnerOption {
	return func(r *Runner) {
		r.publisher = p
	}
}

// WithClock overrides time.Now
func WithClock(clock func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.clock = clock
	}
}

// NewRunner creates a Runner
func NewRunner(scope TransactionScope, sink AuditSink, logger *zap.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		scope:  scope,
		sink:   sink,
		clock:  time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the runner's notion of the current time
func (r *Runner) Now() time.Time {
	return r.clock()
}

// Run executes fn in a transaction. A failing fn or a failing Stage rolls
// everything back; nothing is audited or published in that case.
func (r *Runner) Run(ctx context.Context, fn func(w *Work) error) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "engine.unit_of_work")
	defer span.End()

	var work *Work
	err := r.scope.Execute(ctx, func(repos Repositories) error {
		work = &Work{Repos: repos, Now: r.clock()}
		if err := fn(work); err != nil {
			return err
		}
		return r.sink.Stage(ctx, repos.AuditRepo(), work.audit)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return err
	}
	span.SetAttributes(
		attribute.Int("engine.audit_entries", len(work.audit)),
		attribute.Int("engine.events", len(work.events)),
	)

	r.sink.Commit(ctx, work.audit)
	for _, hook := range work.after {
		hook(ctx)
	}

	if r.publisher != nil && len(work.events) > 0 {
		if err := r.publisher.Publish(ctx, work.events...); err != nil {
			r.logger.Warn("failed to publish domain events",
				zap.Int("count", len(work.events)),
				zap.Error(err),
			)
		}
	}
	return nil
}

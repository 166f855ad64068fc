package audit

import (
	"context"
	"fmt"

	"github.com/fixdesk/backend/internal/application/common"
	domainaudit "github.com/fixdesk/backend/internal/domain/audit"
	"github.com/fixdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Mode selects where audit entries are written
type Mode string

const (
	// ModeBestEffort writes after the business transaction commits. A failed
	// write is logged and the business mutation stands.
	ModeBestEffort Mode = "best_effort"
	// ModeTransactional writes inside the business transaction. A failed
	// write rolls the whole operation back.
	ModeTransactional Mode = "transactional"
)

// ParseMode maps a configuration string to a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBestEffort, "":
		return ModeBestEffort, nil
	case ModeTransactional:
		return ModeTransactional, nil
	}
	return "", fmt.Errorf("unknown audit mode %q", s)
}

// Trail is the append-only audit sink shared by every service
type Trail struct {
	repo   domainaudit.Repository
	mode   Mode
	logger *zap.Logger
}

// NewTrail creates a Trail. repo must not be bound to a transaction; it is
// used for best-effort writes and for queries.
func NewTrail(repo domainaudit.Repository, mode Mode, logger *zap.Logger) *Trail {
	return &Trail{
		repo:   repo,
		mode:   mode,
		logger: logger,
	}
}

// Mode returns the configured write mode
func (t *Trail) Mode() Mode {
	return t.mode
}

// Stage writes the entries inside the transaction in transactional mode
func (t *Trail) Stage(ctx context.Context, repo domainaudit.Repository, entries []*domainaudit.Entry) error {
	if t.mode != ModeTransactional || len(entries) == 0 {
		return nil
	}
	stampIP(ctx, entries)
	if err := repo.Append(ctx, entries...); err != nil {
		return fmt.Errorf("failed to write audit entries: %w", err)
	}
	return nil
}

// Commit writes the entries after commit in best-effort mode
func (t *Trail) Commit(ctx context.Context, entries []*domainaudit.Entry) {
	if t.mode != ModeBestEffort || len(entries) == 0 {
		return
	}
	stampIP(ctx, entries)
	if err := t.repo.Append(context.WithoutCancel(ctx), entries...); err != nil {
		fields := []zap.Field{
			zap.Int("count", len(entries)),
			zap.Error(err),
		}
		for _, e := range entries {
			fields = append(fields, zap.String(string(e.Action), e.EntityTable+"/"+e.EntityID.String()))
		}
		t.logger.Error("audit entries lost, business mutation kept", fields...)
	}
}

// List returns audit entries, newest first
func (t *Trail) List(ctx context.Context, filter domainaudit.Filter) (shared.Paginated[EntryResponse], error) {
	filter.Filter = filter.Filter.Normalize()
	entries, total, err := t.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[EntryResponse]{}, fmt.Errorf("failed to list audit entries: %w", err)
	}
	items := make([]EntryResponse, len(entries))
	for i := range entries {
		items[i] = ToEntryResponse(&entries[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func stampIP(ctx context.Context, entries []*domainaudit.Entry) {
	ip := IPAddressFromContext(ctx)
	if ip == "" {
		return
	}
	for _, e := range entries {
		if e.IPAddress == "" {
			e.IPAddress = ip
		}
	}
}

var _ common.AuditSink = (*Trail)(nil)

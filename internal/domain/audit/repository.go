package audit

import (
	"context"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter narrows audit queries
type Filter struct {
	shared.Filter
	EntityTable string
	EntityID    *uuid.UUID
	Actor       string
	Action      Action
}

// Repository appends and reads audit entries. There is no update or delete.
type Repository interface {
	Append(ctx context.Context, entries ...*Entry) error
	FindAll(ctx context.Context, filter Filter) ([]Entry, int64, error)
}

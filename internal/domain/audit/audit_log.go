package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names what a mutation did
type Action string

const (
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionStockAdjust Action = "stock_adjust"
	ActionCostChange  Action = "cost_change"
	ActionStatus      Action = "status_change"
	ActionPayment     Action = "payment"
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionComplete    Action = "complete"
	ActionReceive     Action = "receive"
	ActionIssueCredit Action = "issue_credit"
	ActionApplyCredit Action = "apply_credit"
	ActionExpire      Action = "expire"
)

// Snapshot is a before or after picture of an entity
type Snapshot map[string]any

// Entry is one append-only audit row
type Entry struct {
	ID          uuid.UUID
	Actor       string
	Action      Action
	EntityTable string
	EntityID    uuid.UUID
	OldData     Snapshot
	NewData     Snapshot
	IPAddress   string
	Timestamp   time.Time
}

// NewEntry builds an entry stamped with the current time. Either snapshot may
// be nil for creations and deletions.
func NewEntry(actor string, action Action, table string, entityID uuid.UUID, oldData, newData Snapshot) *Entry {
	return &Entry{
		ID:          uuid.New(),
		Actor:       actor,
		Action:      action,
		EntityTable: table,
		EntityID:    entityID,
		OldData:     oldData,
		NewData:     newData,
		Timestamp:   time.Now(),
	}
}

package audit

import (
	"time"

	domainaudit "github.com/fixdesk/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// EntryResponse is the read model of an audit entry
type EntryResponse struct {
	ID          uuid.UUID      `json:"id"`
	Actor       string         `json:"actor"`
	Action      string         `json:"action"`
	EntityTable string         `json:"entity_table"`
	EntityID    uuid.UUID      `json:"entity_id"`
	OldData     map[string]any `json:"old_data,omitempty"`
	NewData     map[string]any `json:"new_data,omitempty"`
	IPAddress   string         `json:"ip_address,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// ToEntryResponse converts a domain entry
func ToEntryResponse(e *domainaudit.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		Actor:       e.Actor,
		Action:      string(e.Action),
		EntityTable: e.EntityTable,
		EntityID:    e.EntityID,
		OldData:     e.OldData,
		NewData:     e.NewData,
		IPAddress:   e.IPAddress,
		Timestamp:   e.Timestamp,
	}
}

package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypePurchaseReturn is the aggregate type name for purchase returns
const AggregateTypePurchaseReturn = "PurchaseReturn"

// PurchaseReturnStatus represents the status of a purchase return
type PurchaseReturnStatus string

const (
	PurchaseReturnStatusDraft     PurchaseReturnStatus = "draft"
	PurchaseReturnStatusApproved  PurchaseReturnStatus = "approved"
	PurchaseReturnStatusRejected  PurchaseReturnStatus = "rejected"
	PurchaseReturnStatusCompleted PurchaseReturnStatus = "completed"
)

// IsValid checks if the status is a valid PurchaseReturnStatus
func (s PurchaseReturnStatus) IsValid() bool {
	switch s {
	case PurchaseReturnStatusDraft, PurchaseReturnStatusApproved,
		PurchaseReturnStatusRejected, PurchaseReturnStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of PurchaseReturnStatus
func (s PurchaseReturnStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Nothing leads back to draft; rejected and completed are terminal.
func (s PurchaseReturnStatus) CanTransitionTo(target PurchaseReturnStatus) bool {
	switch s {
	case PurchaseReturnStatusDraft:
		return target == PurchaseReturnStatusApproved || target == PurchaseReturnStatusRejected
	case PurchaseReturnStatusApproved:
		return target == PurchaseReturnStatusCompleted || target == PurchaseReturnStatusRejected
	case PurchaseReturnStatusRejected, PurchaseReturnStatusCompleted:
		return false
	}
	return false
}

// ItemCondition describes the state of a returned part
type ItemCondition string

const (
	ConditionDefective ItemCondition = "defective"
	ConditionDamaged   ItemCondition = "damaged"
	ConditionWrongItem ItemCondition = "wrong_item"
	ConditionExcess    ItemCondition = "excess"
	ConditionOther     ItemCondition = "other"
)

// IsValid checks if the condition is known
func (c ItemCondition) IsValid() bool {
	switch c {
	case ConditionDefective, ConditionDamaged, ConditionWrongItem, ConditionExcess, ConditionOther:
		return true
	}
	return false
}

// PurchaseReturnItem is one returned part
type PurchaseReturnItem struct {
	ID        uuid.UUID
	ReturnID  uuid.UUID
	PartID    uuid.UUID
	Quantity  int
	UnitCost  decimal.Decimal
	Condition ItemCondition
}

// LineTotal returns Quantity x UnitCost
func (i *PurchaseReturnItem) LineTotal() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PurchaseReturn sends parts back to a supplier. Approval takes the parts
// out of stock and makes the return eligible for a credit note.
type PurchaseReturn struct {
	shared.BaseAggregateRoot
	ReturnNumber    string
	SupplierID      uuid.UUID
	PurchaseOrderID *uuid.UUID
	Status          PurchaseReturnStatus
	Reason          string
	TotalAmount     decimal.Decimal
	ApprovedBy      string
	ApprovedAt      *time.Time
	RejectedBy      string
	RejectedAt      *time.Time
	RejectionReason string
	CompletedAt     *time.Time
	Items           []PurchaseReturnItem
}

// NewPurchaseReturn creates an empty draft return
func NewPurchaseReturn(returnNumber string, supplierID uuid.UUID, purchaseOrderID *uuid.UUID, reason string) (*PurchaseReturn, error) {
	if strings.TrimSpace(returnNumber) == "" {
		return nil, shared.NewValidationError("INVALID_RETURN_NUMBER", "Return number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	return &PurchaseReturn{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReturnNumber:      returnNumber,
		SupplierID:        supplierID,
		PurchaseOrderID:   purchaseOrderID,
		Status:            PurchaseReturnStatusDraft,
		Reason:            reason,
		TotalAmount:       decimal.Zero,
		Items:             make([]PurchaseReturnItem, 0),
	}, nil
}

// AddItem adds a returned part to a draft return
func (r *PurchaseReturn) AddItem(partID uuid.UUID, quantity int, unitCost decimal.Decimal, condition ItemCondition) (*PurchaseReturnItem, error) {
	if r.Status != PurchaseReturnStatusDraft {
		return nil, shared.NewInvalidStateError("INVALID_STATE", fmt.Sprintf("Cannot modify return in %s status", r.Status))
	}
	if partID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PART", "Part ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Return quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewValidationError("INVALID_COST", "Unit cost cannot be negative")
	}
	if condition == "" {
		condition = ConditionOther
	}
	if !condition.IsValid() {
		return nil, shared.NewValidationError("INVALID_CONDITION", "Unknown item condition: "+string(condition))
	}

	r.Items = append(r.Items, PurchaseReturnItem{
		ID:        uuid.New(),
		ReturnID:  r.ID,
		PartID:    partID,
		Quantity:  quantity,
		UnitCost:  unitCost,
		Condition: condition,
	})
	r.recalculateTotal()
	r.IncrementVersion()
	return &r.Items[len(r.Items)-1], nil
}

// QuantityByPart sums item quantities per part
func (r *PurchaseReturn) QuantityByPart() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(r.Items))
	for _, item := range r.Items {
		out[item.PartID] += item.Quantity
	}
	return out
}

// ValidateAgainstOrder checks that, together with quantities already
// returned on other returns, no part is returned beyond what the order
// received.
func (r *PurchaseReturn) ValidateAgainstOrder(order *PurchaseOrder, alreadyReturned map[uuid.UUID]int) error {
	if order.SupplierID != r.SupplierID {
		return shared.NewValidationError("SUPPLIER_MISMATCH", "Return supplier does not match the purchase order supplier")
	}
	for partID, qty := range r.QuantityByPart() {
		line := order.ItemForPart(partID)
		if line == nil {
			return shared.NewValidationError("PART_NOT_ON_ORDER",
				fmt.Sprintf("Part %s is not on purchase order %s", partID, order.OrderNumber))
		}
		if qty+alreadyReturned[partID] > line.ReceivedQuantity {
			return shared.NewValidationError("EXCEEDS_RECEIVED",
				fmt.Sprintf("Returning %d of part %s exceeds the %d received (%d already returned)",
					qty, partID, line.ReceivedQuantity, alreadyReturned[partID]))
		}
	}
	return nil
}

// Approve moves a draft return to approved. The caller books the stock.
func (r *PurchaseReturn) Approve(actor string, now time.Time) error {
	if !r.Status.CanTransitionTo(PurchaseReturnStatusApproved) {
		return shared.NewInvalidStateError("INVALID_STATE", fmt.Sprintf("Cannot approve return in %s status", r.Status))
	}
	if len(r.Items) == 0 {
		return shared.NewValidationError("NO_ITEMS", "Cannot approve return without items")
	}
	r.Status = PurchaseReturnStatusApproved
	r.ApprovedBy = actor
	r.ApprovedAt = &now
	r.IncrementVersion()
	return nil
}

// Reject ends the return. wasApproved tells the caller that stock taken out
// on approval must be put back.
func (r *PurchaseReturn) Reject(actor, reason string, now time.Time) (wasApproved bool, err error) {
	if !r.Status.CanTransitionTo(PurchaseReturnStatusRejected) {
		return false, shared.NewInvalidStateError("INVALID_STATE", fmt.Sprintf("Cannot reject return in %s status", r.Status))
	}
	if strings.TrimSpace(reason) == "" {
		return false, shared.NewValidationError("INVALID_REASON", "Rejection reason is required")
	}
	wasApproved = r.Status == PurchaseReturnStatusApproved
	r.Status = PurchaseReturnStatusRejected
	r.RejectedBy = actor
	r.RejectedAt = &now
	r.RejectionReason = reason
	r.IncrementVersion()
	return wasApproved, nil
}

// Complete closes an approved return
func (r *PurchaseReturn) Complete(now time.Time) error {
	if !r.Status.CanTransitionTo(PurchaseReturnStatusCompleted) {
		return shared.NewInvalidStateError("INVALID_STATE", fmt.Sprintf("Cannot complete return in %s status", r.Status))
	}
	r.Status = PurchaseReturnStatusCompleted
	r.CompletedAt = &now
	r.IncrementVersion()
	return nil
}

// CanIssueCredit reports whether a credit note may exist for this return
func (r *PurchaseReturn) CanIssueCredit() bool {
	return r.Status == PurchaseReturnStatusApproved || r.Status == PurchaseReturnStatusCompleted
}

// TotalQuantity sums the returned quantities
func (r *PurchaseReturn) TotalQuantity() int {
	total := 0
	for _, item := range r.Items {
		total += item.Quantity
	}
	return total
}

func (r *PurchaseReturn) recalculateTotal() {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.LineTotal())
	}
	r.TotalAmount = total
}

// AuditSnapshot returns the fields recorded in audit entries
func (r *PurchaseReturn) AuditSnapshot() map[string]any {
	snap := map[string]any{
		"return_number": r.ReturnNumber,
		"status":        string(r.Status),
		"total_amount":  r.TotalAmount.String(),
		"item_count":    len(r.Items),
	}
	if r.ApprovedBy != "" {
		snap["approved_by"] = r.ApprovedBy
	}
	return snap
}

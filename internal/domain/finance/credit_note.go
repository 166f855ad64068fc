package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeCreditNote is the aggregate type name for credit notes
const AggregateTypeCreditNote = "CreditNote"

// CreditNoteStatus is the lifecycle state of a supplier credit note
type CreditNoteStatus string

const (
	CreditNoteStatusPending CreditNoteStatus = "pending"
	CreditNoteStatusApplied CreditNoteStatus = "applied"
	CreditNoteStatusExpired CreditNoteStatus = "expired"
)

// IsValid checks if the status is a valid CreditNoteStatus
func (s CreditNoteStatus) IsValid() bool {
	switch s {
	case CreditNoteStatusPending, CreditNoteStatusApplied, CreditNoteStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of CreditNoteStatus
func (s CreditNoteStatus) String() string {
	return string(s)
}

// CreditApplication records one consumption of a credit note
type CreditApplication struct {
	ID                uuid.UUID
	CreditNoteID      uuid.UUID
	SupplierInvoiceID uuid.UUID
	Amount            decimal.Decimal
	AppliedBy         string
	AppliedAt         time.Time
}

// CreditNote is supplier credit issued for an approved purchase return.
// 0 <= AppliedAmount <= CreditAmount and RemainingCredit = CreditAmount -
// AppliedAmount hold after every method.
type CreditNote struct {
	shared.BaseAggregateRoot
	CreditNoteNumber  string
	SupplierID        uuid.UUID
	PurchaseReturnID  uuid.UUID
	SupplierInvoiceID *uuid.UUID
	CreditAmount      decimal.Decimal
	AppliedAmount     decimal.Decimal
	RemainingCredit   decimal.Decimal
	Status            CreditNoteStatus
	ExpiryDate        *time.Time
	Applications      []CreditApplication
}

// NewCreditNote issues a pending credit note with all credit remaining
func NewCreditNote(number string, supplierID, purchaseReturnID uuid.UUID, amount decimal.Decimal, expiryDate *time.Time) (*CreditNote, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("INVALID_CREDIT_NOTE_NUMBER", "Credit note number cannot be empty")
	}
	if purchaseReturnID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_RETURN", "Purchase return ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	return &CreditNote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CreditNoteNumber:  number,
		SupplierID:        supplierID,
		PurchaseReturnID:  purchaseReturnID,
		CreditAmount:      amount,
		AppliedAmount:     decimal.Zero,
		RemainingCredit:   amount,
		Status:            CreditNoteStatusPending,
		ExpiryDate:        expiryDate,
		Applications:      make([]CreditApplication, 0),
	}, nil
}

// Apply consumes amount of credit against a supplier invoice whose current
// outstanding balance is outstanding. Nothing is modified when it fails.
func (c *CreditNote) Apply(invoiceID uuid.UUID, amount, outstanding decimal.Decimal, actor string, now time.Time) (*CreditApplication, error) {
	if !amount.IsPositive() {
		return nil, shared.ErrNonPositiveAmount
	}
	if c.Status == CreditNoteStatusExpired || c.isPastExpiry(now) {
		return nil, shared.NewInvalidStateError("CREDIT_EXPIRED",
			fmt.Sprintf("Credit note %s has expired", c.CreditNoteNumber))
	}
	if amount.GreaterThan(c.RemainingCredit) {
		return nil, shared.NewValidationError("EXCEEDS_REMAINING",
			fmt.Sprintf("Amount %s exceeds remaining credit %s", amount, c.RemainingCredit))
	}
	if amount.GreaterThan(outstanding) {
		return nil, shared.NewValidationError("EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Amount %s exceeds invoice outstanding balance %s", amount, outstanding))
	}

	c.AppliedAmount = c.AppliedAmount.Add(amount)
	c.RemainingCredit = c.CreditAmount.Sub(c.AppliedAmount)
	c.SupplierInvoiceID = &invoiceID
	if c.RemainingCredit.IsZero() {
		c.Status = CreditNoteStatusApplied
	}
	c.IncrementVersion()

	app := CreditApplication{
		ID:                uuid.New(),
		CreditNoteID:      c.ID,
		SupplierInvoiceID: invoiceID,
		Amount:            amount,
		AppliedBy:         actor,
		AppliedAt:         now,
	}
	c.Applications = append(c.Applications, app)
	return &app, nil
}

func (c *CreditNote) isPastExpiry(now time.Time) bool {
	return c.ExpiryDate != nil && c.ExpiryDate.Before(now)
}

// Expire marks a pending note whose expiry date has passed. It reports
// whether the status changed.
func (c *CreditNote) Expire(now time.Time) bool {
	if c.Status != CreditNoteStatusPending || !c.isPastExpiry(now) {
		return false
	}
	c.Status = CreditNoteStatusExpired
	c.IncrementVersion()
	return true
}

// ExpiresWithin reports whether a pending note expires in (now, now+window]
func (c *CreditNote) ExpiresWithin(now time.Time, window time.Duration) bool {
	if c.Status != CreditNoteStatusPending || c.ExpiryDate == nil {
		return false
	}
	return !c.ExpiryDate.Before(now) && !c.ExpiryDate.After(now.Add(window))
}

// AuditSnapshot returns the fields recorded in audit entries
func (c *CreditNote) AuditSnapshot() map[string]any {
	snap := map[string]any{
		"credit_note_number": c.CreditNoteNumber,
		"purchase_return_id": c.PurchaseReturnID.String(),
		"credit_amount":      c.CreditAmount.String(),
		"applied_amount":     c.AppliedAmount.String(),
		"remaining_credit":   c.RemainingCredit.String(),
		"status":             string(c.Status),
	}
	if c.SupplierInvoiceID != nil {
		snap["supplier_invoice_id"] = c.SupplierInvoiceID.String()
	}
	return snap
}

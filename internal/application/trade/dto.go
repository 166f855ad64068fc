package trade

import (
	"time"

	"github.com/fixdesk/backend/internal/application/finance"
	domainfinance "github.com/fixdesk/backend/internal/domain/finance"
	"github.com/fixdesk/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Purchase Order DTOs ====================

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID uuid.UUID                      `json:"supplier_id" validate:"required"`
	Notes      string                         `json:"notes" validate:"max=2000"`
	Items      []CreatePurchaseOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// CreatePurchaseOrderItemInput represents an item in the create order request
type CreatePurchaseOrderItemInput struct {
	PartID   uuid.UUID       `json:"part_id" validate:"required"`
	Quantity int             `json:"quantity" validate:"gt=0"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// CancelPurchaseOrderRequest represents a request to cancel a purchase order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ReceivePurchaseOrderRequest represents a request to receive a purchase order
type ReceivePurchaseOrderRequest struct {
	OpenInvoice bool `json:"open_invoice"`
}

// PurchaseOrderItemResponse represents a purchase order item in API responses
type PurchaseOrderItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	PartID           uuid.UUID       `json:"part_id"`
	Quantity         int             `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	ReceivedQuantity int             `json:"received_quantity"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID          uuid.UUID                   `json:"id"`
	OrderNumber string                      `json:"order_number"`
	SupplierID  uuid.UUID                   `json:"supplier_id"`
	Status      string                      `json:"status"`
	TotalAmount decimal.Decimal             `json:"total_amount"`
	Notes       string                      `json:"notes"`
	SentAt      *time.Time                  `json:"sent_at,omitempty"`
	ReceivedAt  *time.Time                  `json:"received_at,omitempty"`
	ReceivedBy  string                      `json:"received_by,omitempty"`
	CancelledAt *time.Time                  `json:"cancelled_at,omitempty"`
	Items       []PurchaseOrderItemResponse `json:"items"`
	CreatedAt   time.Time                   `json:"created_at"`
	Version     int                         `json:"version"`
}

// ReceiveResultResponse is the outcome of receiving a purchase order
type ReceiveResultResponse struct {
	Order           PurchaseOrderResponse            `json:"order"`
	SupplierInvoice *finance.SupplierInvoiceResponse `json:"supplier_invoice,omitempty"`
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to PurchaseOrderResponse
func ToPurchaseOrderResponse(order *trade.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items[i] = PurchaseOrderItemResponse{
			ID:               item.ID,
			PartID:           item.PartID,
			Quantity:         item.Quantity,
			UnitCost:         item.UnitCost,
			ReceivedQuantity: item.ReceivedQuantity,
			LineTotal:        item.LineTotal(),
		}
	}
	return PurchaseOrderResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		SupplierID:  order.SupplierID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		Notes:       order.Notes,
		SentAt:      order.SentAt,
		ReceivedAt:  order.ReceivedAt,
		ReceivedBy:  order.ReceivedBy,
		CancelledAt: order.CancelledAt,
		Items:       items,
		CreatedAt:   order.CreatedAt,
		Version:     order.Version,
	}
}

// ==================== Purchase Return DTOs ====================

// CreatePurchaseReturnRequest represents a request to create a purchase return
type CreatePurchaseReturnRequest struct {
	SupplierID      uuid.UUID                       `json:"supplier_id" validate:"required"`
	PurchaseOrderID *uuid.UUID                      `json:"purchase_order_id"`
	Reason          string                          `json:"reason" validate:"max=500"`
	Items           []CreatePurchaseReturnItemInput `json:"items" validate:"required,min=1,dive"`
}

// CreatePurchaseReturnItemInput represents an item in the create return request.
// UnitCost defaults to the purchase order line cost, or the part's cost
// price when the return has no order.
type CreatePurchaseReturnItemInput struct {
	PartID    uuid.UUID        `json:"part_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"gt=0"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
	Condition string           `json:"condition" validate:"omitempty,oneof=defective damaged wrong_item excess other"`
}

// RejectPurchaseReturnRequest represents a request to reject a purchase return
type RejectPurchaseReturnRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// PurchaseReturnItemResponse represents a purchase return item in API responses
type PurchaseReturnItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	PartID    uuid.UUID       `json:"part_id"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Condition string          `json:"condition"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// PurchaseReturnResponse represents a purchase return in API responses
type PurchaseReturnResponse struct {
	ID              uuid.UUID                    `json:"id"`
	ReturnNumber    string                       `json:"return_number"`
	SupplierID      uuid.UUID                    `json:"supplier_id"`
	PurchaseOrderID *uuid.UUID                   `json:"purchase_order_id,omitempty"`
	Status          string                       `json:"status"`
	Reason          string                       `json:"reason"`
	TotalAmount     decimal.Decimal              `json:"total_amount"`
	ApprovedBy      string                       `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time                   `json:"approved_at,omitempty"`
	RejectedBy      string                       `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time                   `json:"rejected_at,omitempty"`
	RejectionReason string                       `json:"rejection_reason,omitempty"`
	CompletedAt     *time.Time                   `json:"completed_at,omitempty"`
	Items           []PurchaseReturnItemResponse `json:"items"`
	CreatedAt       time.Time                    `json:"created_at"`
	Version         int                          `json:"version"`
}

// ToPurchaseReturnResponse converts a domain PurchaseReturn to PurchaseReturnResponse
func ToPurchaseReturnResponse(ret *trade.PurchaseReturn) PurchaseReturnResponse {
	items := make([]PurchaseReturnItemResponse, len(ret.Items))
	for i := range ret.Items {
		item := &ret.Items[i]
		items[i] = PurchaseReturnItemResponse{
			ID:        item.ID,
			PartID:    item.PartID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
			Condition: string(item.Condition),
			LineTotal: item.LineTotal(),
		}
	}
	return PurchaseReturnResponse{
		ID:              ret.ID,
		ReturnNumber:    ret.ReturnNumber,
		SupplierID:      ret.SupplierID,
		PurchaseOrderID: ret.PurchaseOrderID,
		Status:          string(ret.Status),
		Reason:          ret.Reason,
		TotalAmount:     ret.TotalAmount,
		ApprovedBy:      ret.ApprovedBy,
		ApprovedAt:      ret.ApprovedAt,
		RejectedBy:      ret.RejectedBy,
		RejectedAt:      ret.RejectedAt,
		RejectionReason: ret.RejectionReason,
		CompletedAt:     ret.CompletedAt,
		Items:           items,
		CreatedAt:       ret.CreatedAt,
		Version:         ret.Version,
	}
}

// ==================== Credit Note DTOs ====================

// ApplyCreditRequest represents a request to apply credit to a supplier invoice
type ApplyCreditRequest struct {
	SupplierInvoiceID uuid.UUID       `json:"supplier_invoice_id" validate:"required"`
	Amount            decimal.Decimal `json:"amount"`
}

// CreditApplicationResponse represents one credit application
type CreditApplicationResponse struct {
	ID                uuid.UUID       `json:"id"`
	SupplierInvoiceID uuid.UUID       `json:"supplier_invoice_id"`
	Amount            decimal.Decimal `json:"amount"`
	AppliedBy         string          `json:"applied_by"`
	AppliedAt         time.Time       `json:"applied_at"`
}

// CreditNoteResponse represents a credit note in API responses
type CreditNoteResponse struct {
	ID                uuid.UUID                   `json:"id"`
	CreditNoteNumber  string                      `json:"credit_note_number"`
	SupplierID        uuid.UUID                   `json:"supplier_id"`
	PurchaseReturnID  uuid.UUID                   `json:"purchase_return_id"`
	SupplierInvoiceID *uuid.UUID                  `json:"supplier_invoice_id,omitempty"`
	CreditAmount      decimal.Decimal             `json:"credit_amount"`
	AppliedAmount     decimal.Decimal             `json:"applied_amount"`
	RemainingCredit   decimal.Decimal             `json:"remaining_credit"`
	Status            string                      `json:"status"`
	ExpiryDate        *time.Time                  `json:"expiry_date,omitempty"`
	Applications      []CreditApplicationResponse `json:"applications"`
	CreatedAt         time.Time                   `json:"created_at"`
}

// ToCreditNoteResponse converts a domain CreditNote to CreditNoteResponse
func ToCreditNoteResponse(note *domainfinance.CreditNote) CreditNoteResponse {
	apps := make([]CreditApplicationResponse, len(note.Applications))
	for i, app := range note.Applications {
		apps[i] = CreditApplicationResponse{
			ID:                app.ID,
			SupplierInvoiceID: app.SupplierInvoiceID,
			Amount:            app.Amount,
			AppliedBy:         app.AppliedBy,
			AppliedAt:         app.AppliedAt,
		}
	}
	return CreditNoteResponse{
		ID:                note.ID,
		CreditNoteNumber:  note.CreditNoteNumber,
		SupplierID:        note.SupplierID,
		PurchaseReturnID:  note.PurchaseReturnID,
		SupplierInvoiceID: note.SupplierInvoiceID,
		CreditAmount:      note.CreditAmount,
		AppliedAmount:     note.AppliedAmount,
		RemainingCredit:   note.RemainingCredit,
		Status:            string(note.Status),
		ExpiryDate:        note.ExpiryDate,
		Applications:      apps,
		CreatedAt:         note.CreatedAt,
	}
}

// ApplyCreditResponse reports both sides of a credit application
type ApplyCreditResponse struct {
	CreditNote      CreditNoteResponse              `json:"credit_note"`
	SupplierInvoice finance.SupplierInvoiceResponse `json:"supplier_invoice"`
}

package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/fixdesk/backend/internal/application/common"
	"github.com/fixdesk/backend/internal/domain/audit"
	"github.com/fixdesk/backend/internal/domain/finance"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	supplierInvoicesTable = "supplier_invoices"
	supplierPaymentsTable = "supplier_payments"
)

// SupplierInvoiceConfig holds the payment terms applied to new payables
type SupplierInvoiceConfig struct {
	// DueDays is added to the creation time when no due date is given.
	// Zero leaves such invoices without a due date.
	DueDays int
}

// SupplierInvoiceService tracks what the shop owes its suppliers.
// PaidAmount is moved by exactly the difference each payment write makes;
// it is never rebuilt from the payment rows.
type SupplierInvoiceService struct {
	runner  *common.Runner
	repos   common.Repositories
	config  SupplierInvoiceConfig
	logger  *zap.Logger
	metrics *telemetry.EngineMetrics
}

// NewSupplierInvoiceService creates a SupplierInvoiceService
func NewSupplierInvoiceService(runner *common.Runner, repos common.Repositories, config SupplierInvoiceConfig, logger *zap.Logger) *SupplierInvoiceService {
	return &SupplierInvoiceService{
		runner: runner,
		repos:  repos,
		config: config,
		logger: logger,
	}
}

// SetMetrics enables payment and sweep counters
func (s *SupplierInvoiceService) SetMetrics(m *telemetry.EngineMetrics) {
	s.metrics = m
}

// OpenInvoice is the input of Open
type OpenInvoice struct {
	SupplierID      uuid.UUID
	PurchaseOrderID *uuid.UUID
	TotalAmount     decimal.Decimal
	DueDate         *time.Time
	Notes           string
	Actor           string
}

// Open creates a pending invoice inside the caller's unit of work
func (s *SupplierInvoiceService) Open(ctx context.Context, w *common.Work, in OpenInvoice) (*finance.SupplierInvoice, error) {
	repo := w.Repos.SupplierInvoiceRepo()
	number, err := common.NextNumber(ctx, "SINV", w.Now, repo.CountByNumberPrefix)
	if err != nil {
		return nil, err
	}

	dueDate := in.DueDate
	if dueDate == nil && s.config.DueDays > 0 {
		due := w.Now.AddDate(0, 0, s.config.DueDays)
		dueDate = &due
	}

	inv, err := finance.NewSupplierInvoice(number, in.SupplierID, in.PurchaseOrderID, in.TotalAmount, dueDate)
	if err != nil {
		return nil, err
	}
	inv.Notes = in.Notes
	inv.CreatedAt = w.Now
	inv.UpdatedAt = w.Now
	if err := repo.Save(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save supplier invoice: %w", err)
	}
	w.Audit(in.Actor, audit.ActionCreate, supplierInvoicesTable, inv.ID, nil, inv.AuditSnapshot())
	return inv, nil
}

// CreateInvoice registers a payable
func (s *SupplierInvoiceService) CreateInvoice(ctx context.Context, req CreateSupplierInvoiceRequest, actor string) (*SupplierInvoiceResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var inv *finance.SupplierInvoice
	err := s.runner.Run(ctx, func(w *common.Work) error {
		var err error
		inv, err = s.Open(ctx, w, OpenInvoice{
			SupplierID:      req.SupplierID,
			PurchaseOrderID: req.PurchaseOrderID,
			TotalAmount:     req.TotalAmount,
			DueDate:         req.DueDate,
			Notes:           req.Notes,
			Actor:           actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := ToSupplierInvoiceResponse(inv)
	return &resp, nil
}

// RecordPayment books a payment and adds its amount to PaidAmount.
// Payments beyond the outstanding balance are accepted.
func (s *SupplierInvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, req RecordPaymentRequest, actor string) (*SupplierInvoiceResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var inv *finance.SupplierInvoice
	err := s.runner.Run(ctx, func(w *common.Work) error {
		var err error
		inv, err = w.Repos.SupplierInvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		paidAt := req.PaidAt
		if paidAt.IsZero() {
			paidAt = w.Now
		}
		payment, err := finance.NewSupplierPayment(inv.ID, req.Amount, finance.PaymentMethod(req.Method), paidAt, req.Reference, actor)
		if err != nil {
			return err
		}
		payment.CreatedAt = w.Now
		payment.UpdatedAt = w.Now
		if err := w.Repos.SupplierPaymentRepo().Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to save supplier payment: %w", err)
		}
		w.Audit(actor, audit.ActionPayment, supplierPaymentsTable, payment.ID, nil, payment.AuditSnapshot())

		return s.applyDelta(ctx, w, inv, payment.Amount, actor)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPayment(ctx, telemetry.LedgerSupplier, req.Method, string(inv.Status), req.Amount)
	s.logger.Info("supplier payment recorded",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("status", string(inv.Status)),
	)
	resp := ToSupplierInvoiceResponse(inv)
	return &resp, nil
}

// UpdatePayment changes a payment and applies new - old to PaidAmount
func (s *SupplierInvoiceService) UpdatePayment(ctx context.Context, paymentID uuid.UUID, req UpdatePaymentRequest, actor string) (*SupplierInvoiceResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var inv *finance.SupplierInvoice
	err := s.runner.Run(ctx, func(w *common.Work) error {
		payment, locked, err := s.lockPayment(ctx, w, paymentID)
		if err != nil {
			return err
		}
		inv = locked

		before := payment.AuditSnapshot()
		diff, err := payment.ChangeAmount(req.Amount, finance.PaymentMethod(req.Method), req.PaidAt, req.Reference)
		if err != nil {
			return err
		}
		payment.UpdatedAt = w.Now
		if err := w.Repos.SupplierPaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save supplier payment: %w", err)
		}
		w.Audit(actor, audit.ActionUpdate, supplierPaymentsTable, payment.ID, before, payment.AuditSnapshot())

		return s.applyDelta(ctx, w, inv, diff, actor)
	})
	if err != nil {
		return nil, err
	}
	resp := ToSupplierInvoiceResponse(inv)
	return &resp, nil
}

// DeletePayment removes a payment and subtracts its amount from PaidAmount
func (s *SupplierInvoiceService) DeletePayment(ctx context.Context, paymentID uuid.UUID, actor string) (*SupplierInvoiceResponse, error) {
	var inv *finance.SupplierInvoice
	err := s.runner.Run(ctx, func(w *common.Work) error {
		payment, locked, err := s.lockPayment(ctx, w, paymentID)
		if err != nil {
			return err
		}
		inv = locked

		if err := w.Repos.SupplierPaymentRepo().Delete(ctx, payment.ID); err != nil {
			return err
		}
		w.Audit(actor, audit.ActionDelete, supplierPaymentsTable, payment.ID, payment.AuditSnapshot(), nil)

		return s.applyDelta(ctx, w, inv, payment.Amount.Neg(), actor)
	})
	if err != nil {
		return nil, err
	}
	resp := ToSupplierInvoiceResponse(inv)
	return &resp, nil
}

func (s *SupplierInvoiceService) lockPayment(ctx context.Context, w *common.Work, paymentID uuid.UUID) (*finance.SupplierPayment, *finance.SupplierInvoice, error) {
	payment, err := w.Repos.SupplierPaymentRepo().FindByID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	inv, err := w.Repos.SupplierInvoiceRepo().FindByIDForUpdate(ctx, payment.SupplierInvoiceID)
	if err != nil {
		return nil, nil, err
	}
	return payment, inv, nil
}

// applyDelta moves PaidAmount of a locked invoice and persists it
func (s *SupplierInvoiceService) applyDelta(ctx context.Context, w *common.Work, inv *finance.SupplierInvoice, diff decimal.Decimal, actor string) error {
	before := inv.AuditSnapshot()
	if err := inv.ApplyPaymentDelta(diff, w.Now); err != nil {
		return err
	}
	if diff.IsZero() {
		return nil
	}
	inv.UpdatedAt = w.Now
	if err := w.Repos.SupplierInvoiceRepo().Save(ctx, inv); err != nil {
		return fmt.Errorf("failed to save supplier invoice: %w", err)
	}
	w.Audit(actor, audit.ActionUpdate, supplierInvoicesTable, inv.ID, before, inv.AuditSnapshot())
	return nil
}

// GetOutstanding returns TotalAmount - PaidAmount
func (s *SupplierInvoiceService) GetOutstanding(ctx context.Context, invoiceID uuid.UUID) (*OutstandingResponse, error) {
	inv, err := s.repos.SupplierInvoiceRepo().FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return &OutstandingResponse{
		InvoiceID:   inv.ID,
		TotalAmount: inv.TotalAmount,
		PaidAmount:  inv.PaidAmount,
		Outstanding: inv.Outstanding(),
		Status:      string(inv.Status),
	}, nil
}

// MarkOverdue flags every unpaid invoice whose due date is before asOf and
// returns how many changed
func (s *SupplierInvoiceService) MarkOverdue(ctx context.Context, asOf time.Time, actor string) (int, error) {
	candidates, err := s.repos.SupplierInvoiceRepo().FindPastDue(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to find past due invoices: %w", err)
	}

	marked := 0
	for _, candidate := range candidates {
		changed := false
		err := s.runner.Run(ctx, func(w *common.Work) error {
			inv, err := w.Repos.SupplierInvoiceRepo().FindByIDForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			before := inv.AuditSnapshot()
			if !inv.MarkOverdue(asOf) {
				return nil
			}
			inv.UpdatedAt = w.Now
			if err := w.Repos.SupplierInvoiceRepo().Save(ctx, inv); err != nil {
				return fmt.Errorf("failed to save supplier invoice: %w", err)
			}
			w.Audit(actor, audit.ActionStatus, supplierInvoicesTable, inv.ID, before, inv.AuditSnapshot())
			changed = true
			return nil
		})
		if err != nil {
			return marked, err
		}
		if changed {
			marked++
		}
	}

	s.metrics.RecordSweep(ctx, "supplier_overdue", marked)
	if marked > 0 {
		s.logger.Info("supplier invoices marked overdue",
			zap.Int("count", marked),
			zap.Time("as_of", asOf),
		)
	}
	return marked, nil
}

// ListOverdue returns overdue invoices, earliest due first
func (s *SupplierInvoiceService) ListOverdue(ctx context.Context, page, pageSize int) (shared.Paginated[SupplierInvoiceResponse], error) {
	return s.List(ctx, SupplierInvoiceListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   string(finance.SupplierInvoiceStatusOverdue),
	})
}

// List returns supplier invoices matching the filter
func (s *SupplierInvoiceService) List(ctx context.Context, filter SupplierInvoiceListFilter) (shared.Paginated[SupplierInvoiceResponse], error) {
	df := filter.toDomain()
	invoices, total, err := s.repos.SupplierInvoiceRepo().FindAll(ctx, df)
	if err != nil {
		return shared.Paginated[SupplierInvoiceResponse]{}, fmt.Errorf("failed to list supplier invoices: %w", err)
	}
	items := make([]SupplierInvoiceResponse, len(invoices))
	for i := range invoices {
		items[i] = ToSupplierInvoiceResponse(&invoices[i])
	}
	return shared.NewPaginated(items, total, df.Page, df.PageSize), nil
}

// GetInvoice returns a supplier invoice
func (s *SupplierInvoiceService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*SupplierInvoiceResponse, error) {
	inv, err := s.repos.SupplierInvoiceRepo().FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierInvoiceResponse(inv)
	return &resp, nil
}

// ListPayments returns a supplier invoice's payments
func (s *SupplierInvoiceService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]SupplierPaymentResponse, error) {
	if _, err := s.repos.SupplierInvoiceRepo().FindByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	payments, err := s.repos.SupplierPaymentRepo().FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplier payments: %w", err)
	}
	out := make([]SupplierPaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToSupplierPaymentResponse(&payments[i])
	}
	return out, nil
}

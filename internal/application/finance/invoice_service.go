package finance

import (
	"context"
	"fmt"

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
	invoicesTable = "customer_invoices"
	paymentsTable = "payments"
	devicesTable  = "devices"
)

// InvoiceService bills customers. An invoice's payment status is always
// derived from the sum of its payment rows, so every payment mutation ends
// with a recompute under the invoice's row lock.
type InvoiceService struct {
	runner  *common.Runner
	repos   common.Repositories
	logger  *zap.Logger
	metrics *telemetry.EngineMetrics
}

// NewInvoiceService creates an InvoiceService
func NewInvoiceService(runner *common.Runner, repos common.Repositories, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		runner: runner,
		repos:  repos,
		logger: logger,
	}
}

// SetMetrics enables payment counters
func (s *InvoiceService) SetMetrics(m *telemetry.EngineMetrics) {
	s.metrics = m
}

// CreateInvoice opens an invoice with its items, unpaid unless its total is
// zero. A device named on the invoice is marked returned in the same
// transaction.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest, actor string) (*InvoiceResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	items := make([]finance.InvoiceItem, 0, len(req.Items))
	for _, in := range req.Items {
		item, err := finance.NewInvoiceItem(in.Description, in.PartID, in.Quantity, in.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	var inv *finance.CustomerInvoice
	err := s.runner.Run(ctx, func(w *common.Work) error {
		repo := w.Repos.CustomerInvoiceRepo()
		number, err := common.NextNumber(ctx, "INV", w.Now, repo.CountByNumberPrefix)
		if err != nil {
			return err
		}

		inv, err = finance.NewCustomerInvoice(number, req.CustomerID, req.DeviceID, req.TicketID, finance.InvoiceTerms{
			Subtotal: req.Subtotal,
			Tax:      req.Tax,
			Discount: req.Discount,
			DueDate:  req.DueDate,
			Notes:    req.Notes,
		}, items)
		if err != nil {
			return err
		}
		inv.CreatedAt = w.Now
		inv.UpdatedAt = w.Now
		// a zero total is settled on creation
		inv.ApplyPaidTotal(decimal.Zero, w.Now)

		if req.DeviceID != nil {
			if err := s.returnDevice(ctx, w, *req.DeviceID, actor); err != nil {
				return err
			}
		}

		if err := repo.Save(ctx, inv); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		w.Audit(actor, audit.ActionCreate, invoicesTable, inv.ID, nil, inv.AuditSnapshot())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("total", inv.Total.String()),
	)
	resp := ToInvoiceResponse(inv, decimal.Zero)
	return &resp, nil
}

func (s *InvoiceService) returnDevice(ctx context.Context, w *common.Work, deviceID uuid.UUID, actor string) error {
	device, err := w.Repos.DeviceRepo().FindByIDForUpdate(ctx, deviceID)
	if err != nil {
		return err
	}
	previous := device.Status
	if !device.MarkReturned() {
		return nil
	}
	if err := w.Repos.DeviceRepo().Save(ctx, device); err != nil {
		return fmt.Errorf("failed to save device: %w", err)
	}
	w.Audit(actor, audit.ActionStatus, devicesTable, device.ID,
		map[string]any{"status": string(previous)},
		map[string]any{"status": string(device.Status)})
	return nil
}

// RecordPayment books a payment and recomputes the invoice status
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, req RecordPaymentRequest, actor string) (*InvoiceResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var resp InvoiceResponse
	err := s.runner.Run(ctx, func(w *common.Work) error {
		inv, err := w.Repos.CustomerInvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.PaymentStatus == finance.PaymentStatusRefunded {
			return shared.NewInvalidStateError("INVOICE_REFUNDED", "Cannot record a payment on a refunded invoice")
		}

		paidAt := req.PaidAt
		if paidAt.IsZero() {
			paidAt = w.Now
		}
		payment, err := finance.NewPayment(inv.ID, req.Amount, finance.PaymentMethod(req.Method), paidAt, req.Reference, actor)
		if err != nil {
			return err
		}
		payment.CreatedAt = w.Now
		payment.UpdatedAt = w.Now
		if err := w.Repos.PaymentRepo().Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		w.Audit(actor, audit.ActionPayment, paymentsTable, payment.ID, nil, payment.AuditSnapshot())

		resp, err = s.recompute(ctx, w, inv, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPayment(ctx, telemetry.LedgerCustomer, req.Method, resp.PaymentStatus, req.Amount)
	s.logger.Info("customer payment recorded",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("payment_status", resp.PaymentStatus),
	)
	return &resp, nil
}

// UpdatePayment changes a payment and recomputes its invoice
func (s *InvoiceService) UpdatePayment(ctx context.Context, paymentID uuid.UUID, req UpdatePaymentRequest, actor string) (*InvoiceResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var resp InvoiceResponse
	err := s.runner.Run(ctx, func(w *common.Work) error {
		payment, inv, err := s.lockPayment(ctx, w, paymentID)
		if err != nil {
			return err
		}

		before := payment.AuditSnapshot()
		if err := payment.Update(req.Amount, finance.PaymentMethod(req.Method), req.PaidAt, req.Reference); err != nil {
			return err
		}
		payment.UpdatedAt = w.Now
		if err := w.Repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		w.Audit(actor, audit.ActionUpdate, paymentsTable, payment.ID, before, payment.AuditSnapshot())

		resp, err = s.recompute(ctx, w, inv, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeletePayment removes a payment and recomputes its invoice
func (s *InvoiceService) DeletePayment(ctx context.Context, paymentID uuid.UUID, actor string) (*InvoiceResponse, error) {
	var resp InvoiceResponse
	err := s.runner.Run(ctx, func(w *common.Work) error {
		payment, inv, err := s.lockPayment(ctx, w, paymentID)
		if err != nil {
			return err
		}
		if err := w.Repos.PaymentRepo().Delete(ctx, payment.ID); err != nil {
			return err
		}
		w.Audit(actor, audit.ActionDelete, paymentsTable, payment.ID, payment.AuditSnapshot(), nil)

		resp, err = s.recompute(ctx, w, inv, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// lockPayment loads a payment and takes the lock on its invoice, which
// serializes every change to the invoice's payment set
func (s *InvoiceService) lockPayment(ctx context.Context, w *common.Work, paymentID uuid.UUID) (*finance.Payment, *finance.CustomerInvoice, error) {
	payment, err := w.Repos.PaymentRepo().FindByID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	inv, err := w.Repos.CustomerInvoiceRepo().FindByIDForUpdate(ctx, payment.InvoiceID)
	if err != nil {
		return nil, nil, err
	}
	if inv.PaymentStatus == finance.PaymentStatusRefunded {
		return nil, nil, shared.NewInvalidStateError("INVOICE_REFUNDED", "Cannot change payments of a refunded invoice")
	}
	return payment, inv, nil
}

// RecomputeStatus re-derives the payment status from the payment rows.
// Running it twice in a row changes nothing the second time.
func (s *InvoiceService) RecomputeStatus(ctx context.Context, invoiceID uuid.UUID, actor string) (*InvoiceResponse, error) {
	var resp InvoiceResponse
	err := s.runner.Run(ctx, func(w *common.Work) error {
		inv, err := w.Repos.CustomerInvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		resp, err = s.recompute(ctx, w, inv, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// recompute sums the payments of a locked invoice and persists a status
// change when there is one
func (s *InvoiceService) recompute(ctx context.Context, w *common.Work, inv *finance.CustomerInvoice, actor string) (InvoiceResponse, error) {
	paid, err := w.Repos.PaymentRepo().SumByInvoice(ctx, inv.ID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to sum payments: %w", err)
	}

	before := inv.AuditSnapshot()
	if inv.ApplyPaidTotal(paid, w.Now) {
		inv.UpdatedAt = w.Now
		if err := w.Repos.CustomerInvoiceRepo().Save(ctx, inv); err != nil {
			return InvoiceResponse{}, fmt.Errorf("failed to save invoice: %w", err)
		}
		w.Audit(actor, audit.ActionStatus, invoicesTable, inv.ID, before, inv.AuditSnapshot())
	}
	return ToInvoiceResponse(inv, paid), nil
}

// AddItem appends a line, recomputing totals and then the payment status
func (s *InvoiceService) AddItem(ctx context.Context, invoiceID uuid.UUID, req InvoiceItemInput, actor string) (*InvoiceResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	item, err := finance.NewInvoiceItem(req.Description, req.PartID, req.Quantity, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	return s.editItems(ctx, invoiceID, actor, func(inv *finance.CustomerInvoice) error {
		return inv.AddItem(*item)
	})
}

// RemoveItem drops a line, recomputing totals and then the payment status
func (s *InvoiceService) RemoveItem(ctx context.Context, invoiceID, itemID uuid.UUID, actor string) (*InvoiceResponse, error) {
	return s.editItems(ctx, invoiceID, actor, func(inv *finance.CustomerInvoice) error {
		return inv.RemoveItem(itemID)
	})
}

func (s *InvoiceService) editItems(ctx context.Context, invoiceID uuid.UUID, actor string, edit func(*finance.CustomerInvoice) error) (*InvoiceResponse, error) {
	var resp InvoiceResponse
	err := s.runner.Run(ctx, func(w *common.Work) error {
		inv, err := w.Repos.CustomerInvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		before := inv.AuditSnapshot()
		if err := edit(inv); err != nil {
			return err
		}
		inv.UpdatedAt = w.Now
		if err := w.Repos.CustomerInvoiceRepo().Save(ctx, inv); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		w.Audit(actor, audit.ActionUpdate, invoicesTable, inv.ID, before, inv.AuditSnapshot())

		resp, err = s.recompute(ctx, w, inv, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkRefunded moves a paid invoice to refunded. Later recomputes leave it
// there.
func (s *InvoiceService) MarkRefunded(ctx context.Context, invoiceID uuid.UUID, actor string) (*InvoiceResponse, error) {
	var resp InvoiceResponse
	err := s.runner.Run(ctx, func(w *common.Work) error {
		inv, err := w.Repos.CustomerInvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		before := inv.AuditSnapshot()
		if err := inv.MarkRefunded(); err != nil {
			return err
		}
		inv.UpdatedAt = w.Now
		if err := w.Repos.CustomerInvoiceRepo().Save(ctx, inv); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		w.Audit(actor, audit.ActionStatus, invoicesTable, inv.ID, before, inv.AuditSnapshot())

		paid, err := w.Repos.PaymentRepo().SumByInvoice(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("failed to sum payments: %w", err)
		}
		resp = ToInvoiceResponse(inv, paid)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetInvoice returns an invoice with its paid sum
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.repos.CustomerInvoiceRepo().FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	paid, err := s.repos.PaymentRepo().SumByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	resp := ToInvoiceResponse(inv, paid)
	return &resp, nil
}

// GetBalanceDue returns Total minus the sum of payments
func (s *InvoiceService) GetBalanceDue(ctx context.Context, invoiceID uuid.UUID) (*BalanceResponse, error) {
	inv, err := s.repos.CustomerInvoiceRepo().FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	paid, err := s.repos.PaymentRepo().SumByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	return &BalanceResponse{
		InvoiceID:     inv.ID,
		Total:         inv.Total,
		PaidAmount:    paid,
		BalanceDue:    inv.BalanceDue(paid),
		PaymentStatus: string(inv.PaymentStatus),
		Overdue:       inv.IsOverdue(s.runner.Now()),
	}, nil
}

// ListPayments returns an invoice's payments in payment order
func (s *InvoiceService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.repos.CustomerInvoiceRepo().FindByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	payments, err := s.repos.PaymentRepo().FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out, nil
}

// List returns invoices matching the filter
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) (shared.Paginated[InvoiceResponse], error) {
	df := filter.toDomain()
	invoices, total, err := s.repos.CustomerInvoiceRepo().FindAll(ctx, df)
	if err != nil {
		return shared.Paginated[InvoiceResponse]{}, fmt.Errorf("failed to list invoices: %w", err)
	}
	items := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		paid, err := s.repos.PaymentRepo().SumByInvoice(ctx, invoices[i].ID)
		if err != nil {
			return shared.Paginated[InvoiceResponse]{}, fmt.Errorf("failed to sum payments: %w", err)
		}
		items[i] = ToInvoiceResponse(&invoices[i], paid)
	}
	return shared.NewPaginated(items, total, df.Page, df.PageSize), nil
}

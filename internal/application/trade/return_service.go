package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fixdesk/backend/internal/application/common"
	"github.com/fixdesk/backend/internal/application/finance"
	"github.com/fixdesk/backend/internal/application/inventory"
	"github.com/fixdesk/backend/internal/domain/audit"
	domainfinance "github.com/fixdesk/backend/internal/domain/finance"
	domaininventory "github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/domain/trade"
	"github.com/fixdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	purchaseReturnsTable  = "purchase_returns"
	creditNotesTable      = "credit_notes"
	supplierInvoicesTable = "supplier_invoices"
)

// ReturnConfig holds credit note terms
type ReturnConfig struct {
	// CreditValidityDays sets the expiry of new credit notes. Zero issues
	// notes that never expire.
	CreditValidityDays int
}

// ReturnService runs purchase returns from approval through credit note
// issuance to the application of that credit on supplier invoices
type ReturnService struct {
	runner  *common.Runner
	ledger  *inventory.Ledger
	repos   common.Repositories
	config  ReturnConfig
	logger  *zap.Logger
	metrics *telemetry.EngineMetrics
}

// NewReturnService creates a new ReturnService
func NewReturnService(runner *common.Runner, ledger *inventory.Ledger, repos common.Repositories, config ReturnConfig, logger *zap.Logger) *ReturnService {
	return &ReturnService{
		runner: runner,
		ledger: ledger,
		repos:  repos,
		config: config,
		logger: logger,
	}
}

// SetMetrics enables credit counters
func (s *ReturnService) SetMetrics(m *telemetry.EngineMetrics) {
	s.metrics = m
}

// CreateReturn creates a draft return. When it names a purchase order, no
// part may be returned beyond what that order received, counting every
// earlier return that was not rejected.
func (s *ReturnService) CreateReturn(ctx context.Context, req CreatePurchaseReturnRequest, actor string) (*PurchaseReturnResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var ret *trade.PurchaseReturn
	err := s.runner.Run(ctx, func(w *common.Work) error {
		// the order row lock serializes returns against the same order, so
		// the received quantity check below sees every earlier return
		var order *trade.PurchaseOrder
		if req.PurchaseOrderID != nil {
			var err error
			order, err = w.Repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, *req.PurchaseOrderID)
			if err != nil {
				return err
			}
		}

		repo := w.Repos.PurchaseReturnRepo()
		number, err := common.NextNumber(ctx, "RET", w.Now, repo.CountByNumberPrefix)
		if err != nil {
			return err
		}
		ret, err = trade.NewPurchaseReturn(number, req.SupplierID, req.PurchaseOrderID, req.Reason)
		if err != nil {
			return err
		}

		for _, in := range req.Items {
			part, err := w.Repos.PartRepo().FindByID(ctx, in.PartID)
			if err != nil {
				return err
			}
			cost := part.CostPrice
			if order != nil {
				if line := order.ItemForPart(in.PartID); line != nil {
					cost = line.UnitCost
				}
			}
			if in.UnitCost != nil {
				cost = *in.UnitCost
			}
			if _, err := ret.AddItem(in.PartID, in.Quantity, cost, trade.ItemCondition(in.Condition)); err != nil {
				return err
			}
		}

		if order != nil {
			returned, err := s.returnedQuantities(ctx, w, order.ID)
			if err != nil {
				return err
			}
			if err := ret.ValidateAgainstOrder(order, returned); err != nil {
				return err
			}
		}

		ret.CreatedAt = w.Now
		ret.UpdatedAt = w.Now
		if err := repo.Save(ctx, ret); err != nil {
			return fmt.Errorf("failed to save purchase return: %w", err)
		}
		w.Audit(actor, audit.ActionCreate, purchaseReturnsTable, ret.ID, nil, ret.AuditSnapshot())
		return nil
	})
	if err != nil {
		return nil, err
	}

	response := ToPurchaseReturnResponse(ret)
	return &response, nil
}

func (s *ReturnService) returnedQuantities(ctx context.Context, w *common.Work, orderID uuid.UUID) (map[uuid.UUID]int, error) {
	existing, err := w.Repos.PurchaseReturnRepo().FindByPurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load earlier returns: %w", err)
	}
	out := make(map[uuid.UUID]int)
	for i := range existing {
		if existing[i].Status == trade.PurchaseReturnStatusRejected {
			continue
		}
		for partID, qty := range existing[i].QuantityByPart() {
			out[partID] += qty
		}
	}
	return out, nil
}

// Approve takes every returned part out of stock and marks the return
// approved. A return is approved at most once.
func (s *ReturnService) Approve(ctx context.Context, returnID uuid.UUID, actor string) (*PurchaseReturnResponse, error) {
	var ret *trade.PurchaseReturn
	err := s.runner.Run(ctx, func(w *common.Work) error {
		var err error
		ret, err = w.Repos.PurchaseReturnRepo().FindByIDForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		before := ret.AuditSnapshot()
		if err := ret.Approve(actor, w.Now); err != nil {
			return err
		}
		if err := s.ledger.ApplyAll(ctx, w, s.stockAdjustments(ret, -1, actor)); err != nil {
			return err
		}
		return s.save(ctx, w, ret, actor, audit.ActionApprove, before)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase return approved",
		zap.String("return_id", ret.ID.String()),
		zap.String("return_number", ret.ReturnNumber),
		zap.Int("quantity", ret.TotalQuantity()),
	)
	response := ToPurchaseReturnResponse(ret)
	return &response, nil
}

// Reject ends a return. An approved return puts its parts back into stock,
// which is refused once a credit note has been issued for it.
func (s *ReturnService) Reject(ctx context.Context, returnID uuid.UUID, req RejectPurchaseReturnRequest, actor string) (*PurchaseReturnResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var ret *trade.PurchaseReturn
	err := s.runner.Run(ctx, func(w *common.Work) error {
		var err error
		ret, err = w.Repos.PurchaseReturnRepo().FindByIDForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if ret.Status == trade.PurchaseReturnStatusApproved {
			_, err := w.Repos.CreditNoteRepo().FindByPurchaseReturn(ctx, ret.ID)
			switch {
			case err == nil:
				return shared.NewInvalidStateError("CREDIT_ISSUED",
					fmt.Sprintf("Return %s already has a credit note", ret.ReturnNumber))
			case !errors.Is(err, shared.ErrNotFound):
				return err
			}
		}

		before := ret.AuditSnapshot()
		wasApproved, err := ret.Reject(actor, req.Reason, w.Now)
		if err != nil {
			return err
		}
		if wasApproved {
			if err := s.ledger.ApplyAll(ctx, w, s.stockAdjustments(ret, 1, actor)); err != nil {
				return err
			}
		}
		return s.save(ctx, w, ret, actor, audit.ActionReject, before)
	})
	if err != nil {
		return nil, err
	}
	response := ToPurchaseReturnResponse(ret)
	return &response, nil
}

// Complete closes an approved return, issuing its credit note if that has
// not happened yet
func (s *ReturnService) Complete(ctx context.Context, returnID uuid.UUID, actor string) (*PurchaseReturnResponse, error) {
	var ret *trade.PurchaseReturn
	err := s.runner.Run(ctx, func(w *common.Work) error {
		var err error
		ret, err = w.Repos.PurchaseReturnRepo().FindByIDForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		before := ret.AuditSnapshot()
		if err := ret.Complete(w.Now); err != nil {
			return err
		}
		if _, err := s.creditNoteFor(ctx, w, ret, actor); err != nil {
			return err
		}
		return s.save(ctx, w, ret, actor, audit.ActionComplete, before)
	})
	if err != nil {
		return nil, err
	}
	response := ToPurchaseReturnResponse(ret)
	return &response, nil
}

func (s *ReturnService) stockAdjustments(ret *trade.PurchaseReturn, sign int, actor string) []inventory.Adjustment {
	note := "Returned on " + ret.ReturnNumber
	if sign > 0 {
		note = "Return " + ret.ReturnNumber + " rejected"
	}
	out := make([]inventory.Adjustment, len(ret.Items))
	for i, item := range ret.Items {
		out[i] = inventory.Adjustment{
			PartID:        item.PartID,
			Delta:         sign * item.Quantity,
			ReferenceType: domaininventory.ReferencePurchaseReturn,
			ReferenceID:   ret.ID,
			Note:          note,
			Actor:         actor,
		}
	}
	return out
}

func (s *ReturnService) save(ctx context.Context, w *common.Work, ret *trade.PurchaseReturn, actor string, action audit.Action, before map[string]any) error {
	ret.UpdatedAt = w.Now
	if err := w.Repos.PurchaseReturnRepo().Save(ctx, ret); err != nil {
		return fmt.Errorf("failed to save purchase return: %w", err)
	}
	w.Audit(actor, action, purchaseReturnsTable, ret.ID, before, ret.AuditSnapshot())
	return nil
}

// GenerateCreditNote issues the credit note of an approved or completed
// return for its total amount. Calling it again returns the same note.
func (s *ReturnService) GenerateCreditNote(ctx context.Context, returnID uuid.UUID, actor string) (*CreditNoteResponse, error) {
	var note *domainfinance.CreditNote
	err := s.runner.Run(ctx, func(w *common.Work) error {
		ret, err := w.Repos.PurchaseReturnRepo().FindByIDForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		note, err = s.creditNoteFor(ctx, w, ret, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToCreditNoteResponse(note)
	return &response, nil
}

// creditNoteFor returns the note of a locked return, issuing it first when
// there is none
func (s *ReturnService) creditNoteFor(ctx context.Context, w *common.Work, ret *trade.PurchaseReturn, actor string) (*domainfinance.CreditNote, error) {
	if !ret.CanIssueCredit() {
		return nil, shared.NewInvalidStateError("INVALID_STATE",
			fmt.Sprintf("Cannot issue credit for return in %s status", ret.Status))
	}

	repo := w.Repos.CreditNoteRepo()
	existing, err := repo.FindByPurchaseReturn(ctx, ret.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	number, err := common.NextNumber(ctx, "CN", w.Now, repo.CountByNumberPrefix)
	if err != nil {
		return nil, err
	}
	var expiry *time.Time
	if s.config.CreditValidityDays > 0 {
		t := w.Now.AddDate(0, 0, s.config.CreditValidityDays)
		expiry = &t
	}
	note, err := domainfinance.NewCreditNote(number, ret.SupplierID, ret.ID, ret.TotalAmount, expiry)
	if err != nil {
		return nil, err
	}
	note.CreatedAt = w.Now
	note.UpdatedAt = w.Now
	if err := repo.Save(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to save credit note: %w", err)
	}
	w.Audit(actor, audit.ActionIssueCredit, creditNotesTable, note.ID, nil, note.AuditSnapshot())

	w.AfterCommit(func(ctx context.Context) {
		s.metrics.RecordCreditIssued(ctx)
		s.logger.Info("credit note issued",
			zap.String("credit_note_number", note.CreditNoteNumber),
			zap.String("return_number", ret.ReturnNumber),
			zap.String("amount", note.CreditAmount.String()),
		)
	})
	return note, nil
}

// ApplyCredit consumes credit from a note against a supplier invoice of the
// same supplier. The amount may exceed neither the remaining credit nor the
// invoice's outstanding balance; on any failure neither side changes.
func (s *ReturnService) ApplyCredit(ctx context.Context, creditNoteID uuid.UUID, req ApplyCreditRequest, actor string) (*ApplyCreditResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, shared.ErrNonPositiveAmount
	}

	var (
		note *domainfinance.CreditNote
		inv  *domainfinance.SupplierInvoice
	)
	err := s.runner.Run(ctx, func(w *common.Work) error {
		var err error
		note, err = w.Repos.CreditNoteRepo().FindByIDForUpdate(ctx, creditNoteID)
		if err != nil {
			return err
		}
		inv, err = w.Repos.SupplierInvoiceRepo().FindByIDForUpdate(ctx, req.SupplierInvoiceID)
		if err != nil {
			return err
		}
		if note.SupplierID != inv.SupplierID {
			return shared.NewValidationError("SUPPLIER_MISMATCH",
				fmt.Sprintf("Credit note %s and invoice %s belong to different suppliers", note.CreditNoteNumber, inv.InvoiceNumber))
		}

		noteBefore := note.AuditSnapshot()
		invBefore := inv.AuditSnapshot()
		app, err := note.Apply(inv.ID, req.Amount, inv.Outstanding(), actor, w.Now)
		if err != nil {
			return err
		}
		if err := inv.ApplyCredit(req.Amount, w.Now); err != nil {
			return err
		}

		note.UpdatedAt = w.Now
		inv.UpdatedAt = w.Now
		if err := w.Repos.CreditNoteRepo().Save(ctx, note); err != nil {
			return fmt.Errorf("failed to save credit note: %w", err)
		}
		if err := w.Repos.CreditNoteRepo().CreateApplication(ctx, app); err != nil {
			return fmt.Errorf("failed to record credit application: %w", err)
		}
		if err := w.Repos.SupplierInvoiceRepo().Save(ctx, inv); err != nil {
			return fmt.Errorf("failed to save supplier invoice: %w", err)
		}
		w.Audit(actor, audit.ActionApplyCredit, creditNotesTable, note.ID, noteBefore, note.AuditSnapshot())
		w.Audit(actor, audit.ActionApplyCredit, supplierInvoicesTable, inv.ID, invBefore, inv.AuditSnapshot())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCreditApplied(ctx, req.Amount)
	s.logger.Info("credit applied",
		zap.String("credit_note_number", note.CreditNoteNumber),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("amount", req.Amount.String()),
		zap.String("remaining_credit", note.RemainingCredit.String()),
	)
	return &ApplyCreditResponse{
		CreditNote:      ToCreditNoteResponse(note),
		SupplierInvoice: finance.ToSupplierInvoiceResponse(inv),
	}, nil
}

// ExpireCreditNotes expires every pending note whose expiry date is before
// asOf and returns how many changed
func (s *ReturnService) ExpireCreditNotes(ctx context.Context, asOf time.Time, actor string) (int, error) {
	candidates, err := s.repos.CreditNoteRepo().FindExpiringBefore(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to find expiring credit notes: %w", err)
	}

	expired := 0
	for _, candidate := range candidates {
		changed := false
		err := s.runner.Run(ctx, func(w *common.Work) error {
			note, err := w.Repos.CreditNoteRepo().FindByIDForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			before := note.AuditSnapshot()
			if !note.Expire(asOf) {
				return nil
			}
			note.UpdatedAt = w.Now
			if err := w.Repos.CreditNoteRepo().Save(ctx, note); err != nil {
				return fmt.Errorf("failed to save credit note: %w", err)
			}
			w.Audit(actor, audit.ActionExpire, creditNotesTable, note.ID, before, note.AuditSnapshot())
			changed = true
			return nil
		})
		if err != nil {
			return expired, err
		}
		if changed {
			expired++
		}
	}

	s.metrics.RecordSweep(ctx, "credit_expiry", expired)
	if expired > 0 {
		s.logger.Info("credit notes expired", zap.Int("count", expired), zap.Time("as_of", asOf))
	}
	return expired, nil
}

// ListExpiringCredits returns pending notes that expire within the window
// from now, soonest first
func (s *ReturnService) ListExpiringCredits(ctx context.Context, within time.Duration) ([]CreditNoteResponse, error) {
	now := s.runner.Now()
	notes, err := s.repos.CreditNoteRepo().FindExpiringBefore(ctx, now.Add(within))
	if err != nil {
		return nil, fmt.Errorf("failed to find expiring credit notes: %w", err)
	}
	out := make([]CreditNoteResponse, 0, len(notes))
	for i := range notes {
		if notes[i].ExpiresWithin(now, within) {
			out = append(out, ToCreditNoteResponse(&notes[i]))
		}
	}
	return out, nil
}

// GetCreditNote retrieves a credit note by ID
func (s *ReturnService) GetCreditNote(ctx context.Context, creditNoteID uuid.UUID) (*CreditNoteResponse, error) {
	note, err := s.repos.CreditNoteRepo().FindByID(ctx, creditNoteID)
	if err != nil {
		return nil, err
	}
	response := ToCreditNoteResponse(note)
	return &response, nil
}

// GetReturn retrieves a purchase return by ID
func (s *ReturnService) GetReturn(ctx context.Context, returnID uuid.UUID) (*PurchaseReturnResponse, error) {
	ret, err := s.repos.PurchaseReturnRepo().FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseReturnResponse(ret)
	return &response, nil
}

// ListReturns retrieves purchase returns, newest first
func (s *ReturnService) ListReturns(ctx context.Context, page, pageSize int) (shared.Paginated[PurchaseReturnResponse], error) {
	filter := shared.DefaultFilter()
	filter.Page = page
	filter.PageSize = pageSize
	filter = filter.Normalize()

	returns, total, err := s.repos.PurchaseReturnRepo().FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[PurchaseReturnResponse]{}, fmt.Errorf("failed to list purchase returns: %w", err)
	}
	items := make([]PurchaseReturnResponse, len(returns))
	for i := range returns {
		items[i] = ToPurchaseReturnResponse(&returns[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

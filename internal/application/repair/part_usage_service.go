package repair

import (
	"context"
	"fmt"

	"github.com/fixdesk/backend/internal/application/common"
	"github.com/fixdesk/backend/internal/application/inventory"
	"github.com/fixdesk/backend/internal/domain/audit"
	domaininventory "github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/repair"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const usagesTable = "ticket_part_usages"

// PartUsageService keeps ticket part usage and part stock in step. Every
// change of a usage moves stock by exactly the difference it makes.
type PartUsageService struct {
	runner *common.Runner
	ledger *inventory.Ledger
	repos  common.Repositories
	logger *zap.Logger
}

// NewPartUsageService creates a PartUsageService
func NewPartUsageService(runner *common.Runner, ledger *inventory.Ledger, repos common.Repositories, logger *zap.Logger) *PartUsageService {
	return &PartUsageService{
		runner: runner,
		ledger: ledger,
		repos:  repos,
		logger: logger,
	}
}

// Consume takes parts out of stock for a ticket and records the usage
func (s *PartUsageService) Consume(ctx context.Context, req ConsumePartRequest, actor string) (*UsageResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var resp UsageResponse
	err := s.runner.Run(ctx, func(w *common.Work) error {
		part, err := s.ledger.Apply(ctx, w, inventory.Adjustment{
			PartID:        req.PartID,
			Delta:         -req.Quantity,
			ReferenceType: domaininventory.ReferenceRepairTicket,
			ReferenceID:   req.TicketID,
			Note:          "Used on ticket",
			Actor:         actor,
		})
		if err != nil {
			return err
		}

		price := part.SellingPrice
		if req.UnitPrice != nil {
			price = *req.UnitPrice
		}
		usage, err := repair.NewPartUsage(req.TicketID, req.PartID, req.Quantity, price, actor)
		if err != nil {
			return err
		}
		usage.CreatedAt = w.Now
		usage.UpdatedAt = w.Now
		if err := w.Repos.PartUsageRepo().Create(ctx, usage); err != nil {
			return fmt.Errorf("failed to save part usage: %w", err)
		}
		w.Audit(actor, audit.ActionCreate, usagesTable, usage.ID, nil, usage.AuditSnapshot())
		resp = ToUsageResponse(usage, part.CurrentStock)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("part consumed",
		zap.String("ticket_id", req.TicketID.String()),
		zap.String("part_id", req.PartID.String()),
		zap.Int("quantity", req.Quantity),
		zap.Int("stock_after", resp.StockAfter),
	)
	return &resp, nil
}

// ChangeQuantity changes a usage and moves stock by old - new
func (s *PartUsageService) ChangeQuantity(ctx context.Context, usageID uuid.UUID, req ChangeQuantityRequest, actor string) (*UsageResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var resp UsageResponse
	err := s.runner.Run(ctx, func(w *common.Work) error {
		usage, err := w.Repos.PartUsageRepo().FindByIDForUpdate(ctx, usageID)
		if err != nil {
			return err
		}
		before := usage.AuditSnapshot()
		delta, err := usage.ChangeQuantity(req.Quantity)
		if err != nil {
			return err
		}

		stock, err := s.move(ctx, w, usage, delta, "Usage quantity changed", actor)
		if err != nil {
			return err
		}
		if delta == 0 {
			resp = ToUsageResponse(usage, stock)
			return nil
		}

		usage.UpdatedAt = w.Now
		if err := w.Repos.PartUsageRepo().Save(ctx, usage); err != nil {
			return fmt.Errorf("failed to save part usage: %w", err)
		}
		w.Audit(actor, audit.ActionUpdate, usagesTable, usage.ID, before, usage.AuditSnapshot())
		resp = ToUsageResponse(usage, stock)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Remove deletes a usage and puts its parts back into stock
func (s *PartUsageService) Remove(ctx context.Context, usageID uuid.UUID, actor string) error {
	return s.runner.Run(ctx, func(w *common.Work) error {
		usage, err := w.Repos.PartUsageRepo().FindByIDForUpdate(ctx, usageID)
		if err != nil {
			return err
		}
		if _, err := s.move(ctx, w, usage, usage.Quantity, "Usage removed", actor); err != nil {
			return err
		}
		if err := w.Repos.PartUsageRepo().Delete(ctx, usage.ID); err != nil {
			return err
		}
		w.Audit(actor, audit.ActionDelete, usagesTable, usage.ID, usage.AuditSnapshot(), nil)
		return nil
	})
}

// move applies a usage-driven delta and returns the resulting stock. A zero
// delta only reads the current stock.
func (s *PartUsageService) move(ctx context.Context, w *common.Work, usage *repair.PartUsage, delta int, note, actor string) (int, error) {
	if delta == 0 {
		part, err := w.Repos.PartRepo().FindByID(ctx, usage.PartID)
		if err != nil {
			return 0, err
		}
		return part.CurrentStock, nil
	}
	part, err := s.ledger.Apply(ctx, w, inventory.Adjustment{
		PartID:        usage.PartID,
		Delta:         delta,
		ReferenceType: domaininventory.ReferenceRepairTicket,
		ReferenceID:   usage.TicketID,
		Note:          note,
		Actor:         actor,
	})
	if err != nil {
		return 0, err
	}
	return part.CurrentStock, nil
}

// ListByTicket returns the usages of a ticket
func (s *PartUsageService) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]UsageResponse, error) {
	usages, err := s.repos.PartUsageRepo().FindByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list part usages: %w", err)
	}
	out := make([]UsageResponse, len(usages))
	for i := range usages {
		out[i] = ToUsageResponse(&usages[i], 0)
	}
	return out, nil
}

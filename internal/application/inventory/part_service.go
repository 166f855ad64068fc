package inventory

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/fixdesk/backend/internal/application/common"
	"github.com/fixdesk/backend/internal/domain/audit"
	"github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBarcodeAttempts bounds the random suffixes tried per part
	DefaultBarcodeAttempts = 20
	// maxSKUProbe bounds how far past the counted sequence Create looks for
	// a free SKU
	maxSKUProbe = 99
)

// PartServiceConfig holds the tunables of PartService
type PartServiceConfig struct {
	BarcodeAttempts int
}

// PartService owns part stock and cost. Every stock change goes through the
// Ledger, so current_stock always equals the sum of the part's movements.
type PartService struct {
	runner *common.Runner
	ledger *Ledger
	repos  common.Repositories
	config PartServiceConfig
	intn   func(n int) int
	logger *zap.Logger

	// concurrent reconciliations of one part share a single read
	reconciles singleflight.Group
}

// NewPartService creates a PartService. repos is used for reads outside a
// transaction.
func NewPartService(runner *common.Runner, ledger *Ledger, repos common.Repositories, config PartServiceConfig, logger *zap.Logger) *PartService {
	if config.BarcodeAttempts <= 0 {
		config.BarcodeAttempts = DefaultBarcodeAttempts
	}
	return &PartService{
		runner: runner,
		ledger: ledger,
		repos:  repos,
		config: config,
		intn:   rand.IntN,
		logger: logger,
	}
}

// SetRandomSource replaces the generator of barcode suffixes
func (s *PartService) SetRandomSource(intn func(n int) int) {
	s.intn = intn
}

// Create registers a part. A missing SKU or barcode is generated; a non-zero
// initial stock is booked as an initial_stock movement.
func (s *PartService) Create(ctx context.Context, req CreatePartRequest, actor string) (*PartResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	part, err := inventory.NewPart(req.Name, req.Brand, req.Category, req.Model,
		req.CostPrice, req.SellingPrice, req.MinStockLevel)
	if err != nil {
		return nil, err
	}
	part.Description = req.Description

	err = s.runner.Run(ctx, func(w *common.Work) error {
		repo := w.Repos.PartRepo()

		sku, err := s.resolveSKU(ctx, repo, part, req.SKU)
		if err != nil {
			return err
		}
		barcode, err := s.resolveBarcode(ctx, repo, part, req.Barcode)
		if err != nil {
			return err
		}
		if err := part.AssignIdentifiers(sku, barcode); err != nil {
			return err
		}

		part.CreatedAt = w.Now
		part.UpdatedAt = w.Now
		if err := repo.Save(ctx, part); err != nil {
			return fmt.Errorf("failed to save part: %w", err)
		}
		w.Audit(actor, audit.ActionCreate, partsTable, part.ID, nil, part.AuditSnapshot())

		if req.InitialStock > 0 {
			stocked, err := s.ledger.Apply(ctx, w, Adjustment{
				PartID:        part.ID,
				Delta:         req.InitialStock,
				ReferenceType: inventory.ReferenceInitialStock,
				Note:          "initial stock",
				Actor:         actor,
			})
			if err != nil {
				return err
			}
			part = stocked
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("part created",
		zap.String("part_id", part.ID.String()),
		zap.String("sku", part.SKU),
		zap.Int("initial_stock", part.CurrentStock),
	)
	resp := ToPartResponse(part)
	return &resp, nil
}

// resolveSKU returns the supplied SKU after a uniqueness check, or derives
// prefix-NN where NN is the number of SKUs sharing the prefix plus one. Two
// concurrent creates may still compute the same sequence; the loser probes
// upward and the unique index settles whatever remains.
func (s *PartService) resolveSKU(ctx context.Context, repo inventory.PartRepository, part *inventory.Part, supplied string) (string, error) {
	if supplied != "" {
		exists, err := repo.ExistsBySKU(ctx, supplied)
		if err != nil {
			return "", fmt.Errorf("failed to check sku: %w", err)
		}
		if exists {
			return "", shared.NewConflictError("SKU_EXISTS", "SKU "+supplied+" is already in use")
		}
		return supplied, nil
	}

	prefix := inventory.SKUPrefix(part.Brand, part.Category, part.Name, part.Model)
	count, err := repo.CountBySKUPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count sku prefix: %w", err)
	}
	for seq := int(count) + 1; seq <= int(count)+maxSKUProbe; seq++ {
		sku := inventory.FormatSKU(prefix, seq)
		exists, err := repo.ExistsBySKU(ctx, sku)
		if err != nil {
			return "", fmt.Errorf("failed to check sku: %w", err)
		}
		if !exists {
			return sku, nil
		}
	}
	return "", shared.NewConflictError("SKU_EXHAUSTED", "No free SKU sequence for prefix "+prefix)
}

func (s *PartService) resolveBarcode(ctx context.Context, repo inventory.PartRepository, part *inventory.Part, supplied string) (string, error) {
	if supplied != "" {
		exists, err := repo.ExistsByBarcode(ctx, supplied)
		if err != nil {
			return "", fmt.Errorf("failed to check barcode: %w", err)
		}
		if exists {
			return "", shared.NewConflictError("BARCODE_EXISTS", "Barcode "+supplied+" is already in use")
		}
		return supplied, nil
	}

	stem := inventory.BarcodeStem(part.Brand, part.Name)
	for range s.config.BarcodeAttempts {
		barcode := inventory.FormatBarcode(stem, s.intn(10000))
		exists, err := repo.ExistsByBarcode(ctx, barcode)
		if err != nil {
			return "", fmt.Errorf("failed to check barcode: %w", err)
		}
		if !exists {
			return barcode, nil
		}
	}
	return "", shared.NewConflictError("BARCODE_EXHAUSTED",
		fmt.Sprintf("No free barcode for %s after %d attempts", stem, s.config.BarcodeAttempts))
}

// Adjust applies a signed stock delta and records it in the ledger
func (s *PartService) Adjust(ctx context.Context, partID uuid.UUID, req AdjustStockRequest, actor string) (*PartResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var part *inventory.Part
	err := s.runner.Run(ctx, func(w *common.Work) error {
		var err error
		part, err = s.ledger.Apply(ctx, w, Adjustment{
			PartID:        partID,
			Delta:         req.Delta,
			ReferenceType: inventory.ReferenceType(req.ReferenceType),
			ReferenceID:   req.ReferenceID,
			Note:          req.Note,
			Actor:         actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := ToPartResponse(part)
	return &resp, nil
}

// SetCost changes the unit cost, writing price history when it differs
func (s *PartService) SetCost(ctx context.Context, partID uuid.UUID, req SetCostRequest, actor string) (*PartResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var part *inventory.Part
	err := s.runner.Run(ctx, func(w *common.Work) error {
		var err error
		part, _, err = s.ledger.SetCost(ctx, w, partID, req.CostPrice, req.Reason, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := ToPartResponse(part)
	return &resp, nil
}

// Update changes descriptive fields. A cost in the request is routed through
// SetCost inside the same transaction.
func (s *PartService) Update(ctx context.Context, partID uuid.UUID, req UpdatePartRequest, actor string) (*PartResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var part *inventory.Part
	err := s.runner.Run(ctx, func(w *common.Work) error {
		if req.CostPrice != nil {
			reason := req.CostReason
			if reason == "" {
				reason = "manual update"
			}
			if _, _, err := s.ledger.SetCost(ctx, w, partID, *req.CostPrice, reason, actor); err != nil {
				return err
			}
		}

		var err error
		part, err = w.Repos.PartRepo().FindByIDForUpdate(ctx, partID)
		if err != nil {
			return err
		}
		before := part.AuditSnapshot()
		if err := part.UpdateDetails(req.Name, req.Description, req.SellingPrice, req.MinStockLevel); err != nil {
			return err
		}
		if err := w.Repos.PartRepo().Save(ctx, part); err != nil {
			return fmt.Errorf("failed to save part: %w", err)
		}
		w.Audit(actor, audit.ActionUpdate, partsTable, part.ID, before, part.AuditSnapshot())
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToPartResponse(part)
	return &resp, nil
}

// Deactivate soft-deletes a part. Its movements and history are kept.
func (s *PartService) Deactivate(ctx context.Context, partID uuid.UUID, actor string) error {
	return s.toggleActive(ctx, partID, actor, (*inventory.Part).Deactivate)
}

// Reactivate reverses Deactivate
func (s *PartService) Reactivate(ctx context.Context, partID uuid.UUID, actor string) error {
	return s.toggleActive(ctx, partID, actor, (*inventory.Part).Activate)
}

func (s *PartService) toggleActive(ctx context.Context, partID uuid.UUID, actor string, change func(*inventory.Part) error) error {
	return s.runner.Run(ctx, func(w *common.Work) error {
		part, err := w.Repos.PartRepo().FindByIDForUpdate(ctx, partID)
		if err != nil {
			return err
		}
		wasActive := part.IsActive
		if err := change(part); err != nil {
			return err
		}
		if err := w.Repos.PartRepo().Save(ctx, part); err != nil {
			return fmt.Errorf("failed to save part: %w", err)
		}
		w.Audit(actor, audit.ActionStatus, partsTable, part.ID,
			map[string]any{"is_active": wasActive},
			map[string]any{"is_active": part.IsActive})
		return nil
	})
}

// GetPart returns a part by id
func (s *PartService) GetPart(ctx context.Context, partID uuid.UUID) (*PartResponse, error) {
	part, err := s.repos.PartRepo().FindByID(ctx, partID)
	if err != nil {
		return nil, err
	}
	resp := ToPartResponse(part)
	return &resp, nil
}

// GetBySKU returns a part by SKU
func (s *PartService) GetBySKU(ctx context.Context, sku string) (*PartResponse, error) {
	part, err := s.repos.PartRepo().FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	resp := ToPartResponse(part)
	return &resp, nil
}

// List returns parts matching the filter
func (s *PartService) List(ctx context.Context, filter PartListFilter) (shared.Paginated[PartResponse], error) {
	df := filter.toDomain()
	parts, total, err := s.repos.PartRepo().FindAll(ctx, df)
	if err != nil {
		return shared.Paginated[PartResponse]{}, fmt.Errorf("failed to list parts: %w", err)
	}
	items := make([]PartResponse, len(parts))
	for i := range parts {
		items[i] = ToPartResponse(&parts[i])
	}
	return shared.NewPaginated(items, total, df.Page, df.PageSize), nil
}

// ListLowStock returns active parts under their minimum stock level
func (s *PartService) ListLowStock(ctx context.Context, page, pageSize int) (shared.Paginated[PartResponse], error) {
	return s.List(ctx, PartListFilter{
		Page:       page,
		PageSize:   pageSize,
		ActiveOnly: true,
		LowStock:   true,
	})
}

// ListMovements returns a part's ledger rows, newest first
func (s *PartService) ListMovements(ctx context.Context, partID uuid.UUID, page, pageSize int) (shared.Paginated[MovementResponse], error) {
	if _, err := s.repos.PartRepo().FindByID(ctx, partID); err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	filter := shared.DefaultFilter()
	filter.Page = page
	filter.PageSize = pageSize
	filter = filter.Normalize()

	movements, total, err := s.repos.MovementRepo().FindByPart(ctx, partID, filter)
	if err != nil {
		return shared.Paginated[MovementResponse]{}, fmt.Errorf("failed to list movements: %w", err)
	}
	items := make([]MovementResponse, len(movements))
	for i := range movements {
		items[i] = ToMovementResponse(&movements[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListPriceHistory returns a part's cost changes, newest first
func (s *PartService) ListPriceHistory(ctx context.Context, partID uuid.UUID) ([]PriceHistoryResponse, error) {
	if _, err := s.repos.PartRepo().FindByID(ctx, partID); err != nil {
		return nil, err
	}
	history, err := s.repos.PriceHistoryRepo().FindByPart(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("failed to list price history: %w", err)
	}
	out := make([]PriceHistoryResponse, len(history))
	for i := range history {
		out[i] = ToPriceHistoryResponse(&history[i])
	}
	return out, nil
}

// Reconcile compares current_stock with the sum of the part's movements
func (s *PartService) Reconcile(ctx context.Context, partID uuid.UUID) (*ReconciliationResult, error) {
	v, err, _ := s.reconciles.Do(partID.String(), func() (any, error) {
		part, err := s.repos.PartRepo().FindByID(ctx, partID)
		if err != nil {
			return nil, err
		}
		sum, err := s.repos.MovementRepo().SumDeltas(ctx, partID)
		if err != nil {
			return nil, fmt.Errorf("failed to sum movements: %w", err)
		}
		return reconciliation(part, sum), nil
	})
	if err != nil {
		return nil, err
	}
	result := *v.(*ReconciliationResult)
	return &result, nil
}

// Rebuild sets current_stock to the ledger sum. The correction is audited
// but not booked as a movement, since the movements already are the truth.
func (s *PartService) Rebuild(ctx context.Context, partID uuid.UUID, actor string) (*ReconciliationResult, error) {
	var result *ReconciliationResult
	err := s.runner.Run(ctx, func(w *common.Work) error {
		part, err := w.Repos.PartRepo().FindByIDForUpdate(ctx, partID)
		if err != nil {
			return err
		}
		sum, err := w.Repos.MovementRepo().SumDeltas(ctx, partID)
		if err != nil {
			return fmt.Errorf("failed to sum movements: %w", err)
		}
		result = reconciliation(part, sum)

		old, changed := part.RebuildStock(sum)
		if !changed {
			return nil
		}
		if err := w.Repos.PartRepo().Save(ctx, part); err != nil {
			return fmt.Errorf("failed to save part: %w", err)
		}
		w.Audit(actor, audit.ActionStockAdjust, partsTable, part.ID,
			map[string]any{"current_stock": old},
			map[string]any{"current_stock": sum, "note": "rebuilt from stock movements"})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Consistent {
		s.logger.Warn("part stock rebuilt from ledger",
			zap.String("part_id", partID.String()),
			zap.Int("stored", result.CurrentStock),
			zap.Int("ledger_sum", result.LedgerSum),
		)
	}
	return result, nil
}

func reconciliation(part *inventory.Part, sum int) *ReconciliationResult {
	return &ReconciliationResult{
		PartID:       part.ID,
		CurrentStock: part.CurrentStock,
		LedgerSum:    sum,
		Drift:        part.CurrentStock - sum,
		Consistent:   part.CurrentStock == sum,
	}
}

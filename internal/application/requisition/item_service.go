package requisition

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/skc/procurement/internal/domain/reference"
	domain "github.com/skc/procurement/internal/domain/requisition"
)

// ItemService owns item CRUD within a requisition: draft-only mutation,
// reference-data validation, duplicate prevention, delivery-date policy and
// optimistic-concurrency patches. It also hosts the reactivation side door
// and the summary aggregation.
type ItemService struct {
	repo          domain.Repository
	catalog       reference.Catalog
	logger        *zap.Logger
	slowThreshold time.Duration
}

// NewItemService creates an item engine service.
func NewItemService(repo domain.Repository, catalog reference.Catalog, logger *zap.Logger, slowThreshold time.Duration) *ItemService {
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowCallThreshold
	}
	return &ItemService{
		repo:          repo,
		catalog:       catalog,
		logger:        logger.Named("requisition_item"),
		slowThreshold: slowThreshold,
	}
}

// CreateItem validates and appends a line to a DRAFT requisition. The checks
// run in a fixed order and the first failure wins: catalog existence, name
// match, unit validity, duplicate nomenclature, delivery date.
func (s *ItemService) CreateItem(ctx context.Context, requisitionID int64, req CreateItemRequest) (*ItemResponse, error) {
	defer s.track("item.create")()

	r, err := s.repo.FindByID(ctx, requisitionID)
	if err != nil {
		return nil, err
	}
	if err := r.EnsureDraft(); err != nil {
		return nil, err
	}

	nom, ok := s.catalog.FindNomenclature(req.NomenclatureCode)
	if !ok {
		return nil, domain.NewNomenclatureNotFoundError(req.NomenclatureCode)
	}
	if req.NomenclatureName != nom.Name {
		return nil, domain.NewNameMismatchError(req.NomenclatureCode, req.NomenclatureName, nom.Name)
	}
	if !nom.AllowsUnit(req.UnitCode) {
		return nil, domain.NewUnitNotAllowedError(req.UnitCode, nom.Code, nom.AllowedUnitCodes)
	}

	date, err := parseDate(req.DesiredDeliveryDate, "desiredDeliveryDate")
	if err != nil {
		return nil, err
	}
	item, err := domain.NewItem(req.NomenclatureCode, req.NomenclatureName, req.Quantity,
		req.UnitCode, req.PriceWithoutVat, date, req.Comment)
	if err != nil {
		return nil, err
	}
	if err := r.AddItem(item, time.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}

	created := &r.Items[len(r.Items)-1]
	s.logger.Info("item created",
		zap.Int64("requisition_id", requisitionID),
		zap.Int64("item_id", created.ID),
		zap.Int("row_number", created.RowNumber),
		zap.String("nomenclature_code", created.NomenclatureCode),
	)
	resp := ToItemResponse(created)
	return &resp, nil
}

// PatchItem applies a version-checked update to a line of a DRAFT
// requisition. A stale version fails with OPTIMISTIC_LOCK_CONFLICT before
// any field is touched, and the store commit is itself a compare-and-swap on
// the version column.
func (s *ItemService) PatchItem(ctx context.Context, requisitionID, itemID int64, req PatchItemRequest) (*ItemResponse, error) {
	defer s.track("item.patch")()

	r, err := s.repo.FindByID(ctx, requisitionID)
	if err != nil {
		return nil, err
	}
	if err := r.EnsureDraft(); err != nil {
		return nil, err
	}
	item := r.FindItem(itemID)
	if item == nil {
		return nil, domain.NewItemNotFoundError(itemID)
	}

	if req.Version == nil {
		return nil, domain.NewInvalidInputError("version is required", "version", nil)
	}
	expected := *req.Version
	if expected != item.Version {
		return nil, domain.NewOptimisticLockError(itemID)
	}

	if req.Quantity != nil {
		if err := item.ChangeQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}
	if req.DesiredDeliveryDate != nil {
		date, err := parseDate(*req.DesiredDeliveryDate, "desiredDeliveryDate")
		if err != nil {
			return nil, err
		}
		if err := item.ChangeDeliveryDate(date, time.Now()); err != nil {
			return nil, err
		}
	}
	if req.Comment != nil {
		item.SetComment(*req.Comment)
	}
	r.RecalculateTotal()

	if err := s.repo.UpdateItemWithVersion(ctx, r, item, expected); err != nil {
		return nil, err
	}

	s.logger.Info("item patched",
		zap.Int64("requisition_id", requisitionID),
		zap.Int64("item_id", itemID),
		zap.Int64("version", item.Version),
	)
	resp := ToItemResponse(item)
	return &resp, nil
}

// DeleteItem removes a line from a DRAFT requisition. Deleting the sole
// remaining item is always rejected.
func (s *ItemService) DeleteItem(ctx context.Context, requisitionID, itemID int64) error {
	defer s.track("item.delete")()

	r, err := s.repo.FindByID(ctx, requisitionID)
	if err != nil {
		return err
	}
	if err := r.EnsureDraft(); err != nil {
		return err
	}
	if err := r.RemoveItem(itemID); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return err
	}

	s.logger.Info("item deleted",
		zap.Int64("requisition_id", requisitionID),
		zap.Int64("item_id", itemID),
	)
	return nil
}

// Reactivate reopens a CANCELLED requisition back to DRAFT.
func (s *ItemService) Reactivate(ctx context.Context, requisitionID int64) (*RequisitionResponse, error) {
	defer s.track("item.reactivate")()

	r, err := s.repo.FindByID(ctx, requisitionID)
	if err != nil {
		return nil, err
	}
	if err := r.Reactivate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("requisition reactivated", zap.Int64("id", requisitionID))
	return ToRequisitionResponse(r), nil
}

// GetSummary aggregates over the current item set. The total is recomputed
// from the items at read time rather than taken from the cached header value.
func (s *ItemService) GetSummary(ctx context.Context, requisitionID int64) (*SummaryResponse, error) {
	defer s.track("item.summary")()

	r, err := s.repo.FindByID(ctx, requisitionID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	totalQty := decimal.Zero
	var minDate, maxDate *time.Time
	for i := range r.Items {
		item := &r.Items[i]
		total = total.Add(item.Amount())
		totalQty = totalQty.Add(item.Quantity)

		d := item.DesiredDeliveryDate
		if d.IsZero() {
			continue
		}
		if minDate == nil || d.Before(*minDate) {
			dd := d
			minDate = &dd
		}
		if maxDate == nil || d.After(*maxDate) {
			dd := d
			maxDate = &dd
		}
	}

	return &SummaryResponse{
		RequisitionID:         r.ID,
		Number:                r.Number,
		Status:                r.Status.String(),
		TotalAmountWithoutVat: total.Round(2).StringFixed(2),
		TotalQuantity:         totalQty.String(),
		MinDeliveryDate:       formatDatePtr(minDate),
		MaxDeliveryDate:       formatDatePtr(maxDate),
		ItemCount:             len(r.Items),
		Currency:              SummaryCurrency,
	}, nil
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func (s *ItemService) track(operation string) func() {
	start := time.Now()
	return func() {
		elapsed := time.Since(start)
		if elapsed >= s.slowThreshold {
			s.logger.Warn("slow service call",
				zap.String("operation", operation),
				zap.Duration("elapsed", elapsed),
			)
		}
	}
}

package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/skc/procurement/internal/domain/requisition"
	"github.com/skc/procurement/internal/infrastructure/persistence/models"
)

// GormRequisitionRepository implements requisition.Repository on GORM.
// Every mutating method runs in a single transaction so header and item
// changes commit together.
type GormRequisitionRepository struct {
	db *gorm.DB
}

// NewGormRequisitionRepository creates a new repository instance.
func NewGormRequisitionRepository(db *gorm.DB) *GormRequisitionRepository {
	return &GormRequisitionRepository{db: db}
}

// FindByID loads a requisition with its items ordered by row number.
func (r *GormRequisitionRepository) FindByID(ctx context.Context, id int64) (*requisition.Requisition, error) {
	var model models.RequisitionModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("row_number ASC")
		}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requisition.NewNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to find requisition: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll returns all requisitions with their items.
func (r *GormRequisitionRepository) FindAll(ctx context.Context) ([]*requisition.Requisition, error) {
	var list []models.RequisitionModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("row_number ASC")
		}).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list requisitions: %w", err)
	}

	out := make([]*requisition.Requisition, len(list))
	for i := range list {
		out[i] = list[i].ToDomain()
	}
	return out, nil
}

// Count returns the total number of requisitions.
func (r *GormRequisitionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.RequisitionModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count requisitions: %w", err)
	}
	return count, nil
}

// Save persists the aggregate. New aggregates are inserted with their items;
// existing ones get a header update, inserts for new items and deletes for
// removed items. Existing item rows are left untouched here: field-level
// item updates go through UpdateItemWithVersion.
func (r *GormRequisitionRepository) Save(ctx context.Context, req *requisition.Requisition) error {
	var model models.RequisitionModel
	model.FromDomain(req)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if model.ID == 0 {
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("failed to create requisition: %w", err)
			}
			return nil
		}

		if err := tx.Model(&models.RequisitionModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]any{
				"organizer_id":             model.OrganizerID,
				"status":                   model.Status,
				"total_amount_without_vat": model.TotalAmountWithoutVat,
				"updated_at":               time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to update requisition: %w", err)
		}

		// Remove items no longer present in the aggregate.
		keptIDs := make([]int64, 0, len(model.Items))
		for i := range model.Items {
			if model.Items[i].ID != 0 {
				keptIDs = append(keptIDs, model.Items[i].ID)
			}
		}
		del := tx.Where("requisition_id = ?", model.ID)
		if len(keptIDs) > 0 {
			del = del.Where("id NOT IN ?", keptIDs)
		}
		if err := del.Delete(&models.RequisitionItemModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete removed items: %w", err)
		}

		// Insert new items.
		for i := range model.Items {
			if model.Items[i].ID != 0 {
				continue
			}
			model.Items[i].RequisitionID = model.ID
			if err := tx.Create(&model.Items[i]).Error; err != nil {
				return fmt.Errorf("failed to create item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Copy store-assigned identity and timestamps back to the domain.
	req.ID = model.ID
	req.CreatedAt = model.CreatedAt
	req.UpdatedAt = model.UpdatedAt
	for i := range model.Items {
		req.Items[i].ID = model.Items[i].ID
		req.Items[i].RequisitionID = model.Items[i].RequisitionID
		req.Items[i].CreatedAt = model.Items[i].CreatedAt
		req.Items[i].UpdatedAt = model.Items[i].UpdatedAt
	}
	return nil
}

// Delete removes a requisition and cascades item deletion.
func (r *GormRequisitionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("requisition_id = ?", id).
			Delete(&models.RequisitionItemModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete items: %w", err)
		}
		result := tx.Delete(&models.RequisitionModel{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete requisition: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return requisition.NewNotFoundError(id)
		}
		return nil
	})
}

// UpdateItemWithVersion commits an item patch with a conditional update on
// the version column. The write applies only if the stored version still
// equals expectedVersion; zero affected rows means a concurrent update won
// and the call fails with an optimistic-lock conflict, leaving all state
// unchanged. The recomputed header total is persisted in the same
// transaction.
func (r *GormRequisitionRepository) UpdateItemWithVersion(ctx context.Context, req *requisition.Requisition, item *requisition.Item, expectedVersion int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&models.RequisitionItemModel{}).
			Where("id = ? AND requisition_id = ? AND version = ?", item.ID, req.ID, expectedVersion).
			Updates(map[string]any{
				"quantity":              item.Quantity,
				"desired_delivery_date": item.DesiredDeliveryDate,
				"comment":               item.Comment,
				"version":               expectedVersion + 1,
				"updated_at":            now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return requisition.NewOptimisticLockError(item.ID)
		}

		if err := tx.Model(&models.RequisitionModel{}).
			Where("id = ?", req.ID).
			Updates(map[string]any{
				"total_amount_without_vat": req.TotalAmountWithoutVat,
				"updated_at":               now,
			}).Error; err != nil {
			return fmt.Errorf("failed to update requisition total: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	item.Version = expectedVersion + 1
	return nil
}

// Interface compliance check
var _ requisition.Repository = (*GormRequisitionRepository)(nil)

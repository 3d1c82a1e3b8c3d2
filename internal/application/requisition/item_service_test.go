package requisition

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/skc/procurement/internal/domain/requisition"
	"github.com/skc/procurement/internal/domain/shared"
)

func newTestItemService(repo *mockRepository) *ItemService {
	return NewItemService(repo, newStubCatalog(), zap.NewNop(), 0)
}

func validCreateItemRequest() CreateItemRequest {
	return CreateItemRequest{
		NomenclatureCode:    "TRU-001",
		NomenclatureName:    "Office paper A4",
		Quantity:            decimal.NewFromInt(10),
		UnitCode:            "PACK",
		PriceWithoutVat:     decimal.RequireFromString("350.00"),
		DesiredDeliveryDate: time.Now().AddDate(0, 0, 10).Format(dateLayout),
	}
}

// ============================================================================
// CreateItem
// ============================================================================

func TestItemService_CreateItem(t *testing.T) {
	repo := new(mockRepository)
	r := draftRequisition(t, 1)
	repo.On("FindByID", mock.Anything, int64(1)).Return(r, nil)
	repo.On("Save", mock.Anything, r).Return(nil)

	svc := newTestItemService(repo)
	resp, err := svc.CreateItem(context.Background(), 1, validCreateItemRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.RowNumber)
	assert.Equal(t, "TRU-001", resp.NomenclatureCode)
	assert.Equal(t, int64(0), resp.Version)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "3500.00", r.TotalAmountWithoutVat.StringFixed(2))
}

func TestItemService_CreateItem_ValidationOrder(t *testing.T) {
	// The first failing check wins; later violations are not reported.
	tests := []struct {
		name     string
		mutate   func(*CreateItemRequest)
		wantCode string
	}{
		{
			"unknown nomenclature wins over bad name and unit",
			func(r *CreateItemRequest) {
				r.NomenclatureCode = "TRU-999"
				r.NomenclatureName = "wrong"
				r.UnitCode = "KG"
			},
			domain.ErrCodeNomenclatureNotFound,
		},
		{
			"name mismatch wins over bad unit",
			func(r *CreateItemRequest) {
				r.NomenclatureName = "Office paper A5"
				r.UnitCode = "KG"
			},
			domain.ErrCodeNomenclatureNameMismatch,
		},
		{
			"unit not allowed",
			func(r *CreateItemRequest) { r.UnitCode = "PIECE" },
			domain.ErrCodeUnitNotAllowed,
		},
		{
			"delivery date too soon",
			func(r *CreateItemRequest) {
				r.DesiredDeliveryDate = time.Now().AddDate(0, 0, 1).Format(dateLayout)
			},
			domain.ErrCodeInvalidDeliveryDate,
		},
		{
			"malformed delivery date",
			func(r *CreateItemRequest) { r.DesiredDeliveryDate = "10.01.2026" },
			domain.ErrCodeInvalidInput,
		},
		{
			"zero quantity",
			func(r *CreateItemRequest) { r.Quantity = decimal.Zero },
			domain.ErrCodeInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepository)
			repo.On("FindByID", mock.Anything, int64(1)).Return(draftRequisition(t, 1), nil)

			req := validCreateItemRequest()
			tt.mutate(&req)

			svc := newTestItemService(repo)
			_, err := svc.CreateItem(context.Background(), 1, req)
			assert.True(t, shared.IsCode(err, tt.wantCode), "got %v", err)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestItemService_CreateItem_Duplicate(t *testing.T) {
	repo := new(mockRepository)
	repo.On("FindByID", mock.Anything, int64(1)).Return(draftRequisition(t, 1, "TRU-001"), nil)

	svc := newTestItemService(repo)
	_, err := svc.CreateItem(context.Background(), 1, validCreateItemRequest())
	assert.True(t, shared.IsCode(err, domain.ErrCodeDuplicateNomenclature))
}

func TestItemService_CreateItem_NotDraft(t *testing.T) {
	repo := new(mockRepository)
	r := draftRequisition(t, 1)
	r.Status = domain.StatusApproved
	repo.On("FindByID", mock.Anything, int64(1)).Return(r, nil)

	svc := newTestItemService(repo)
	_, err := svc.CreateItem(context.Background(), 1, validCreateItemRequest())
	assert.True(t, shared.IsCode(err, domain.ErrCodeRequisitionNotDraft))
}

func TestItemService_CreateItem_RowNumberAfterDelete(t *testing.T) {
	repo := new(mockRepository)
	r := draftRequisition(t, 1, "TRU-002")
	// Simulate a previous deletion: the highest row ever assigned was 4.
	r.Items[0].RowNumber = 4
	repo.On("FindByID", mock.Anything, int64(1)).Return(r, nil)
	repo.On("Save", mock.Anything, r).Return(nil)

	svc := newTestItemService(repo)
	resp, err := svc.CreateItem(context.Background(), 1, validCreateItemRequest())
	require.NoError(t, err)
	assert.Equal(t, 5, resp.RowNumber)
}

// ============================================================================
// PatchItem
// ============================================================================

func patchVersion(v int64) *int64 { return &v }

func TestItemService_PatchItem(t *testing.T) {
	repo := new(mockRepository)
	r := draftRequisition(t, 1, "TRU-001")
	repo.On("FindByID", mock.Anything, int64(1)).Return(r, nil)
	repo.On("UpdateItemWithVersion", mock.Anything, r, &r.Items[0], int64(0)).Return(nil)

	qty := decimal.NewFromInt(7)
	comment := "urgent"
	svc := newTestItemService(repo)
	resp, err := svc.PatchItem(context.Background(), 1, 1, PatchItemRequest{
		Quantity: &qty,
		Comment:  &comment,
		Version:  patchVersion(0),
	})
	require.NoError(t, err)

	assert.Equal(t, "7", resp.Quantity)
	assert.Equal(t, "urgent", resp.Comment)
	assert.Equal(t, int64(1), resp.Version)
	// Total follows the patched quantity: 7 x 100.00.
	assert.Equal(t, "700.00", r.TotalAmountWithoutVat.StringFixed(2))
}

func TestItemService_PatchItem_VersionConflict(t *testing.T) {
	repo := new(mockRepository)
	r := draftRequisition(t, 1, "TRU-001")
	r.Items[0].Version = 2
	repo.On("FindByID", mock.Anything, int64(1)).Return(r, nil)

	qty := decimal.NewFromInt(7)
	svc := newTestItemService(repo)
	_, err := svc.PatchItem(context.Background(), 1, 1, PatchItemRequest{
		Quantity: &qty,
		Version:  patchVersion(1),
	})
	assert.True(t, shared.IsCode(err, domain.ErrCodeOptimisticLockConflict))
	// The stale patch must not touch any field.
	assert.Equal(t, "2", r.Items[0].Quantity.String())
	repo.AssertNotCalled(t, "UpdateItemWithVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestItemService_PatchItem_InvalidQuantity(t *testing.T) {
	repo := new(mockRepository)
	r := draftRequisition(t, 1, "TRU-001")
	repo.On("FindByID", mock.Anything, int64(1)).Return(r, nil)

	qty := decimal.NewFromFloat(0.5)
	svc := newTestItemService(repo)
	_, err := svc.PatchItem(context.Background(), 1, 1, PatchItemRequest{
		Quantity: &qty,
		Version:  patchVersion(0),
	})
	assert.True(t, shared.IsCode(err, domain.ErrCodeInvalidQuantity))
}

func TestItemService_PatchItem_ItemNotFound(t *testing.T) {
	repo := new(mockRepository)
	repo.On("FindByID", mock.Anything, int64(1)).Return(draftRequisition(t, 1, "TRU-001"), nil)

	svc := newTestItemService(repo)
	_, err := svc.PatchItem(context.Background(), 1, 99, PatchItemRequest{Version: patchVersion(0)})
	assert.True(t, shared.IsCode(err, domain.ErrCodeItemNotFound))
}

func TestItemService_PatchItem_NotDraft(t *testing.T) {
	repo := new(mockRepository)
	r := draftRequisition(t, 1, "TRU-001")
	r.Status = domain.StatusSubmitted
	repo.On("FindByID", mock.Anything, int64(1)).Return(r, nil)

	svc := newTestItemService(repo)
	_, err := svc.PatchItem(context.Background(), 1, 1, PatchItemRequest{Version: patchVersion(0)})
	assert.True(t, shared.IsCode(err, domain.ErrCodeRequisitionNotDraft))
}

// ============================================================================
// DeleteItem
// ============================================================================

func TestItemService_DeleteItem(t *testing.T) {
	repo := new(mockRepository)
	r := draftRequisition(t, 1, "TRU-001", "TRU-002")
	repo.On("FindByID", mock.Anything, int64(1)).Return(r, nil)
	repo.On("Save", mock.Anything, r).Return(nil)

	svc := newTestItemService(repo)
	require.NoError(t, svc.DeleteItem(context.Background(), 1, 1))
	assert.Len(t, r.Items, 1)
	assert.Equal(t, "200.00", r.TotalAmountWithoutVat.StringFixed(2))
}

func TestItemService_DeleteItem_LastItem(t *testing.T) {
	repo := new(mockRepository)
	repo.On("FindByID", mock.Anything, int64(1)).Return(draftRequisition(t, 1, "TRU-001"), nil)

	svc := newTestItemService(repo)
	err := svc.DeleteItem(context.Background(), 1, 1)
	assert.True(t, shared.IsCode(err, domain.ErrCodeLastItemDeleteForbidden))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestItemService_DeleteItem_NotFound(t *testing.T) {
	repo := new(mockRepository)
	repo.On("FindByID", mock.Anything, int64(1)).Return(draftRequisition(t, 1, "TRU-001", "TRU-002"), nil)

	svc := newTestItemService(repo)
	err := svc.DeleteItem(context.Background(), 1, 99)
	assert.True(t, shared.IsCode(err, domain.ErrCodeItemNotFound))
}

// ============================================================================
// Reactivate
// ============================================================================

func TestItemService_Reactivate(t *testing.T) {
	repo := new(mockRepository)
	r := draftRequisition(t, 1, "TRU-001")
	r.Status = domain.StatusCancelled
	repo.On("FindByID", mock.Anything, int64(1)).Return(r, nil)
	repo.On("Save", mock.Anything, r).Return(nil)

	svc := newTestItemService(repo)
	resp, err := svc.Reactivate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", resp.Status)
	require.Len(t, resp.Items, 1)
}

func TestItemService_Reactivate_WrongStatus(t *testing.T) {
	repo := new(mockRepository)
	repo.On("FindByID", mock.Anything, int64(1)).Return(draftRequisition(t, 1, "TRU-001"), nil)

	svc := newTestItemService(repo)
	_, err := svc.Reactivate(context.Background(), 1)
	assert.True(t, shared.IsCode(err, domain.ErrCodeInvalidStatusTransition))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// ============================================================================
// GetSummary
// ============================================================================

func TestItemService_GetSummary(t *testing.T) {
	repo := new(mockRepository)
	r := draftRequisition(t, 1, "TRU-001", "TRU-002")
	r.Items[0].DesiredDeliveryDate = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	r.Items[1].DesiredDeliveryDate = time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	repo.On("FindByID", mock.Anything, int64(1)).Return(r, nil)

	svc := newTestItemService(repo)
	s, err := svc.GetSummary(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), s.RequisitionID)
	assert.Equal(t, "DRAFT", s.Status)
	assert.Equal(t, "400.00", s.TotalAmountWithoutVat)
	assert.Equal(t, "4", s.TotalQuantity)
	require.NotNil(t, s.MinDeliveryDate)
	require.NotNil(t, s.MaxDeliveryDate)
	assert.Equal(t, "2026-01-10", *s.MinDeliveryDate)
	assert.Equal(t, "2026-02-20", *s.MaxDeliveryDate)
	assert.Equal(t, 2, s.ItemCount)
	assert.Equal(t, "KZT", s.Currency)
}

func TestItemService_GetSummary_NoItems(t *testing.T) {
	repo := new(mockRepository)
	repo.On("FindByID", mock.Anything, int64(1)).Return(draftRequisition(t, 1), nil)

	svc := newTestItemService(repo)
	s, err := svc.GetSummary(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "0.00", s.TotalAmountWithoutVat)
	assert.Equal(t, "0", s.TotalQuantity)
	assert.Nil(t, s.MinDeliveryDate)
	assert.Nil(t, s.MaxDeliveryDate)
	assert.Zero(t, s.ItemCount)
}

func TestItemService_GetSummary_NotFound(t *testing.T) {
	repo := new(mockRepository)
	repo.On("FindByID", mock.Anything, int64(9)).Return(nil, domain.NewNotFoundError(9))

	svc := newTestItemService(repo)
	_, err := svc.GetSummary(context.Background(), 9)
	assert.True(t, shared.IsCode(err, domain.ErrCodeRequisitionNotFound))
}

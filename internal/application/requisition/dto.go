package requisition

import (
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/skc/procurement/internal/domain/requisition"
)

const dateLayout = "2006-01-02"

// SummaryCurrency is the fixed currency label reported by summaries.
const SummaryCurrency = "KZT"

// CreateRequisitionRequest creates a new DRAFT requisition.
type CreateRequisitionRequest struct {
	OrganizerID string `json:"organizerId" binding:"required"`
}

// UpdateRequisitionRequest patches the requisition header. A blank organizer
// id is a no-op.
type UpdateRequisitionRequest struct {
	OrganizerID string `json:"organizerId"`
}

// TransitionRequest moves a requisition to a target lifecycle status.
type TransitionRequest struct {
	TargetStatus string `json:"targetStatus" binding:"required"`
}

// CreateItemRequest adds a line to a DRAFT requisition.
type CreateItemRequest struct {
	NomenclatureCode    string          `json:"nomenclatureCode" binding:"required"`
	NomenclatureName    string          `json:"nomenclatureName" binding:"required"`
	Quantity            decimal.Decimal `json:"quantity"`
	UnitCode            string          `json:"unitCode" binding:"required"`
	PriceWithoutVat     decimal.Decimal `json:"priceWithoutVat"`
	DesiredDeliveryDate string          `json:"desiredDeliveryDate" binding:"required"`
	Comment             string          `json:"comment"`
}

// PatchItemRequest updates a line. Only the present fields are applied.
// Version carries the optimistic-lock counter the caller last read.
type PatchItemRequest struct {
	Quantity            *decimal.Decimal `json:"quantity"`
	DesiredDeliveryDate *string          `json:"desiredDeliveryDate"`
	Comment             *string          `json:"comment"`
	Version             *int64           `json:"version" binding:"required"`
}

// RequisitionResponse is the API representation of a requisition.
type RequisitionResponse struct {
	ID                    int64          `json:"id"`
	Number                string         `json:"number"`
	OrganizerID           string         `json:"organizerId"`
	Status                string         `json:"status"`
	TotalAmountWithoutVat string         `json:"totalAmountWithoutVat"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
	Items                 []ItemResponse `json:"items"`
}

// ItemResponse is the API representation of a requisition line.
type ItemResponse struct {
	ID                  int64  `json:"id"`
	RequisitionID       int64  `json:"requisitionId"`
	RowNumber           int    `json:"rowNumber"`
	NomenclatureCode    string `json:"nomenclatureCode"`
	NomenclatureName    string `json:"nomenclatureName"`
	Quantity            string `json:"quantity"`
	UnitCode            string `json:"unitCode"`
	PriceWithoutVat     string `json:"priceWithoutVat"`
	DesiredDeliveryDate string `json:"desiredDeliveryDate"`
	Comment             string `json:"comment,omitempty"`
	Version             int64  `json:"version"`
}

// SummaryResponse aggregates over the current item set of a requisition.
type SummaryResponse struct {
	RequisitionID         int64   `json:"requisitionId"`
	Number                string  `json:"number"`
	Status                string  `json:"status"`
	TotalAmountWithoutVat string  `json:"totalAmountWithoutVat"`
	TotalQuantity         string  `json:"totalQuantity"`
	MinDeliveryDate       *string `json:"minDeliveryDate"`
	MaxDeliveryDate       *string `json:"maxDeliveryDate"`
	ItemCount             int     `json:"itemCount"`
	Currency              string  `json:"currency"`
}

// ToRequisitionResponse maps a domain requisition to its API shape.
func ToRequisitionResponse(r *domain.Requisition) *RequisitionResponse {
	items := make([]ItemResponse, len(r.Items))
	for i := range r.Items {
		items[i] = ToItemResponse(&r.Items[i])
	}
	return &RequisitionResponse{
		ID:                    r.ID,
		Number:                r.Number,
		OrganizerID:           r.OrganizerID,
		Status:                r.Status.String(),
		TotalAmountWithoutVat: r.TotalAmountWithoutVat.StringFixed(2),
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
		Items:                 items,
	}
}

// ToItemResponse maps a domain item to its API shape.
func ToItemResponse(item *domain.Item) ItemResponse {
	return ItemResponse{
		ID:                  item.ID,
		RequisitionID:       item.RequisitionID,
		RowNumber:           item.RowNumber,
		NomenclatureCode:    item.NomenclatureCode,
		NomenclatureName:    item.NomenclatureName,
		Quantity:            item.Quantity.String(),
		UnitCode:            item.UnitCode,
		PriceWithoutVat:     item.PriceWithoutVat.StringFixed(2),
		DesiredDeliveryDate: item.DesiredDeliveryDate.Format(dateLayout),
		Comment:             item.Comment,
		Version:             item.Version,
	}
}

// parseDate parses an API date value (YYYY-MM-DD).
func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, domain.NewInvalidInputError("date must be in YYYY-MM-DD format", field, value)
	}
	return t, nil
}

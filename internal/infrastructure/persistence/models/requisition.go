// Package models contains the GORM persistence models, kept separate from
// the domain structs and converted explicitly at the repository boundary.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/skc/procurement/internal/domain/requisition"
)

// RequisitionModel is the persistence shape of a requisition header.
type RequisitionModel struct {
	ID                    int64           `gorm:"primaryKey;autoIncrement"`
	Number                string          `gorm:"size:32;not null;uniqueIndex:idx_requisitions_number"`
	OrganizerID           string          `gorm:"size:64;not null"`
	Status                string          `gorm:"size:32;not null;index"`
	TotalAmountWithoutVat decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Items                 []RequisitionItemModel `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name
func (RequisitionModel) TableName() string {
	return "requisitions"
}

// RequisitionItemModel is the persistence shape of a requisition line.
// A composite unique index backs the one-nomenclature-per-requisition rule,
// and the version column drives the optimistic-lock compare-and-swap.
type RequisitionItemModel struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement"`
	RequisitionID       int64           `gorm:"not null;index;uniqueIndex:idx_requisition_items_nomenclature"`
	RowNumber           int             `gorm:"not null"`
	NomenclatureCode    string          `gorm:"size:32;not null;uniqueIndex:idx_requisition_items_nomenclature"`
	NomenclatureName    string          `gorm:"size:255;not null"`
	Quantity            decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	UnitCode            string          `gorm:"size:16;not null"`
	PriceWithoutVat     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	DesiredDeliveryDate time.Time       `gorm:"type:date;not null"`
	Comment             string          `gorm:"size:1024"`
	Version             int64           `gorm:"not null;default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName overrides the table name
func (RequisitionItemModel) TableName() string {
	return "requisition_items"
}

// FromDomain converts a domain requisition into its persistence shape.
func (m *RequisitionModel) FromDomain(r *requisition.Requisition) {
	m.ID = r.ID
	m.Number = r.Number
	m.OrganizerID = r.OrganizerID
	m.Status = r.Status.String()
	m.TotalAmountWithoutVat = r.TotalAmountWithoutVat
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
	m.Items = make([]RequisitionItemModel, len(r.Items))
	for i := range r.Items {
		m.Items[i].FromDomain(&r.Items[i])
	}
}

// ToDomain converts the persistence shape back into a domain requisition.
func (m *RequisitionModel) ToDomain() *requisition.Requisition {
	r := &requisition.Requisition{
		ID:                    m.ID,
		Number:                m.Number,
		OrganizerID:           m.OrganizerID,
		Status:                requisition.Status(m.Status),
		TotalAmountWithoutVat: m.TotalAmountWithoutVat,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
		Items:                 make([]requisition.Item, len(m.Items)),
	}
	for i := range m.Items {
		r.Items[i] = *m.Items[i].ToDomain()
	}
	return r
}

// FromDomain converts a domain item into its persistence shape.
func (m *RequisitionItemModel) FromDomain(item *requisition.Item) {
	m.ID = item.ID
	m.RequisitionID = item.RequisitionID
	m.RowNumber = item.RowNumber
	m.NomenclatureCode = item.NomenclatureCode
	m.NomenclatureName = item.NomenclatureName
	m.Quantity = item.Quantity
	m.UnitCode = item.UnitCode
	m.PriceWithoutVat = item.PriceWithoutVat
	m.DesiredDeliveryDate = item.DesiredDeliveryDate
	m.Comment = item.Comment
	m.Version = item.Version
	m.CreatedAt = item.CreatedAt
	m.UpdatedAt = item.UpdatedAt
}

// ToDomain converts the persistence shape back into a domain item.
func (m *RequisitionItemModel) ToDomain() *requisition.Item {
	return &requisition.Item{
		ID:                  m.ID,
		RequisitionID:       m.RequisitionID,
		RowNumber:           m.RowNumber,
		NomenclatureCode:    m.NomenclatureCode,
		NomenclatureName:    m.NomenclatureName,
		Quantity:            m.Quantity,
		UnitCode:            m.UnitCode,
		PriceWithoutVat:     m.PriceWithoutVat,
		DesiredDeliveryDate: m.DesiredDeliveryDate,
		Comment:             m.Comment,
		Version:             m.Version,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

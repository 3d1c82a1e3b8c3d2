package requisition

import (
	"time"

	"github.com/shopspring/decimal"
)

// MinDeliveryLeadDays is the minimum number of days between today and the
// desired delivery date of an item.
const MinDeliveryLeadDays = 3

// Item is one priced, quantified line within a requisition, tied to a catalog
// nomenclature and unit of measure. Items may only be mutated while the
// owning requisition is in DRAFT, and field patches are guarded by the
// optimistic-concurrency Version counter.
type Item struct {
	ID                  int64
	RequisitionID       int64
	RowNumber           int
	NomenclatureCode    string
	NomenclatureName    string
	Quantity            decimal.Decimal
	UnitCode            string
	PriceWithoutVat     decimal.Decimal
	DesiredDeliveryDate time.Time
	Comment             string
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewItem validates the scalar fields of a new line. Catalog resolution,
// duplicate detection and row numbering happen in the owning aggregate.
func NewItem(nomenclatureCode, nomenclatureName string, quantity decimal.Decimal,
	unitCode string, priceWithoutVat decimal.Decimal, desiredDeliveryDate time.Time,
	comment string) (*Item, error) {

	if nomenclatureCode == "" {
		return nil, NewInvalidInputError("nomenclature code is required", "nomenclatureCode", nomenclatureCode)
	}
	if unitCode == "" {
		return nil, NewInvalidInputError("unit code is required", "unitCode", unitCode)
	}
	if !quantity.IsPositive() {
		return nil, NewQuantityNotPositiveError(quantity)
	}
	if priceWithoutVat.IsNegative() {
		return nil, NewInvalidInputError("price must not be negative", "priceWithoutVat", priceWithoutVat.String())
	}

	return &Item{
		NomenclatureCode:    nomenclatureCode,
		NomenclatureName:    nomenclatureName,
		Quantity:            quantity,
		UnitCode:            unitCode,
		PriceWithoutVat:     priceWithoutVat,
		DesiredDeliveryDate: normalizeDate(desiredDeliveryDate),
		Comment:             comment,
	}, nil
}

// Amount returns the exact line amount (price x quantity, unrounded).
func (i *Item) Amount() decimal.Decimal {
	return i.PriceWithoutVat.Mul(i.Quantity)
}

// ChangeQuantity updates the quantity of the line. Unlike creation, which
// accepts any positive quantity, patches enforce a floor of 1.
func (i *Item) ChangeQuantity(quantity decimal.Decimal) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	i.Quantity = quantity
	return nil
}

// ChangeDeliveryDate updates the desired delivery date, applying the same
// lead-time rule as at creation.
func (i *Item) ChangeDeliveryDate(date, now time.Time) error {
	if err := ValidateDeliveryDate(date, now); err != nil {
		return err
	}
	i.DesiredDeliveryDate = normalizeDate(date)
	return nil
}

// SetComment overwrites the free-text comment. An empty value clears it.
func (i *Item) SetComment(comment string) {
	i.Comment = comment
}

// ValidateDeliveryDate checks the desired delivery date against the earliest
// acceptable date (today + MinDeliveryLeadDays, date granularity).
func ValidateDeliveryDate(date, now time.Time) error {
	earliest := normalizeDate(now).AddDate(0, 0, MinDeliveryLeadDays)
	if normalizeDate(date).Before(earliest) {
		return NewInvalidDeliveryDateError(date, earliest)
	}
	return nil
}

func validateQuantity(quantity decimal.Decimal) error {
	if quantity.LessThan(decimal.NewFromInt(1)) {
		return NewInvalidQuantityError(quantity)
	}
	return nil
}

// normalizeDate truncates a timestamp to its calendar date in UTC.
func normalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

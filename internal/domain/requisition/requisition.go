package requisition

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Requisition is the aggregate root of a purchase request: a header record
// owning an ordered set of line items and progressing through the status
// lifecycle. The requisition and its items form a single consistency
// boundary; the derived total is recomputed on every item mutation.
type Requisition struct {
	ID                    int64
	Number                string
	OrganizerID           string
	Status                Status
	TotalAmountWithoutVat decimal.Decimal
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Items                 []Item
}

// NewRequisition creates a DRAFT requisition with no items and a zero total.
func NewRequisition(number, organizerID string) (*Requisition, error) {
	if organizerID == "" {
		return nil, NewInvalidInputError("organizer id is required", "organizerId", organizerID)
	}
	return &Requisition{
		Number:                number,
		OrganizerID:           organizerID,
		Status:                StatusDraft,
		TotalAmountWithoutVat: decimal.Zero.Round(2),
		Items:                 []Item{},
	}, nil
}

// FormatNumber renders the human-readable requisition number for a given
// year and sequence value, e.g. PR-2025-00042.
func FormatNumber(year int, sequence int64) string {
	return fmt.Sprintf("PR-%d-%05d", year, sequence)
}

// IsDraft reports whether the requisition is currently mutable.
func (r *Requisition) IsDraft() bool {
	return r.Status == StatusDraft
}

// EnsureDraft guards mutations: only DRAFT requisitions may be modified.
func (r *Requisition) EnsureDraft() error {
	if !r.IsDraft() {
		return NewNotDraftError(r.Status)
	}
	return nil
}

// ChangeOrganizer patches the organizer id. A blank value is a no-op rather
// than an error.
func (r *Requisition) ChangeOrganizer(organizerID string) error {
	if err := r.EnsureDraft(); err != nil {
		return err
	}
	if organizerID == "" {
		return nil
	}
	r.OrganizerID = organizerID
	return nil
}

// TransitionTo moves the requisition to the target status if the lifecycle
// table permits it. Submitting an item-less requisition is rejected.
func (r *Requisition) TransitionTo(target Status) error {
	if !r.Status.CanTransitionTo(target) {
		return NewInvalidTransitionError(r.Status, target)
	}
	if r.Status == StatusDraft && target == StatusSubmitted && len(r.Items) == 0 {
		return NewEmptyRequisitionError()
	}
	r.Status = target
	return nil
}

// Reactivate reopens a CANCELLED requisition back to DRAFT. Items and total
// are untouched.
func (r *Requisition) Reactivate() error {
	if r.Status != StatusCancelled {
		return NewReactivationError(r.Status)
	}
	r.Status = StatusDraft
	return nil
}

// EnsureDeletable guards requisition deletion: only DRAFT requisitions may be
// removed.
func (r *Requisition) EnsureDeletable() error {
	if !r.IsDraft() {
		return NewDeleteForbiddenError(r.Status)
	}
	return nil
}

// AddItem appends a validated line to a DRAFT requisition. It rejects
// duplicate nomenclatures and too-near delivery dates, assigns the next row
// number and recomputes the total.
func (r *Requisition) AddItem(item *Item, now time.Time) error {
	if err := r.EnsureDraft(); err != nil {
		return err
	}
	if r.HasNomenclature(item.NomenclatureCode) {
		return NewDuplicateNomenclatureError(item.NomenclatureCode)
	}
	if err := ValidateDeliveryDate(item.DesiredDeliveryDate, now); err != nil {
		return err
	}

	item.RowNumber = r.NextRowNumber()
	item.RequisitionID = r.ID
	r.Items = append(r.Items, *item)
	r.RecalculateTotal()
	return nil
}

// RemoveItem deletes a line by id. Row numbers of the surviving items are
// never renumbered. The last remaining item may not be removed.
func (r *Requisition) RemoveItem(itemID int64) error {
	if err := r.EnsureDraft(); err != nil {
		return err
	}
	if len(r.Items) <= 1 {
		return NewLastItemDeleteError()
	}
	for idx := range r.Items {
		if r.Items[idx].ID == itemID {
			r.Items = append(r.Items[:idx], r.Items[idx+1:]...)
			r.RecalculateTotal()
			return nil
		}
	}
	return NewItemNotFoundError(itemID)
}

// FindItem returns a pointer to the line with the given id, or nil.
func (r *Requisition) FindItem(itemID int64) *Item {
	for idx := range r.Items {
		if r.Items[idx].ID == itemID {
			return &r.Items[idx]
		}
	}
	return nil
}

// HasNomenclature reports whether any line already references the code.
func (r *Requisition) HasNomenclature(code string) bool {
	for idx := range r.Items {
		if r.Items[idx].NomenclatureCode == code {
			return true
		}
	}
	return false
}

// NextRowNumber returns max(existing row numbers)+1. Row numbers are never
// reused, so gaps remain after deletions.
func (r *Requisition) NextRowNumber() int {
	maxRow := 0
	for idx := range r.Items {
		if r.Items[idx].RowNumber > maxRow {
			maxRow = r.Items[idx].RowNumber
		}
	}
	return maxRow + 1
}

// RecalculateTotal recomputes the derived total: the exact sum of
// price x quantity over all current items, rounded half-up to 2 decimals.
func (r *Requisition) RecalculateTotal() {
	total := decimal.Zero
	for idx := range r.Items {
		total = total.Add(r.Items[idx].Amount())
	}
	r.TotalAmountWithoutVat = total.Round(2)
}

package requisition

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skc/procurement/internal/domain/shared"
)

// Error codes for requisition and item operations. These are stable
// identifiers exposed verbatim on the API surface.
const (
	ErrCodeRequisitionNotFound      = "REQUISITION_NOT_FOUND"
	ErrCodeItemNotFound             = "ITEM_NOT_FOUND"
	ErrCodeRequisitionNotDraft      = "REQUISITION_NOT_DRAFT"
	ErrCodeInvalidStatusTransition  = "INVALID_STATUS_TRANSITION"
	ErrCodeEmptyRequisition         = "EMPTY_REQUISITION"
	ErrCodeDeleteForbidden          = "DELETE_FORBIDDEN"
	ErrCodeNomenclatureNotFound     = "NOMENCLATURE_NOT_FOUND"
	ErrCodeNomenclatureNameMismatch = "NOMENCLATURE_NAME_MISMATCH"
	ErrCodeUnitNotAllowed           = "UNIT_NOT_ALLOWED"
	ErrCodeDuplicateNomenclature    = "DUPLICATE_NOMENCLATURE"
	ErrCodeInvalidDeliveryDate      = "INVALID_DELIVERY_DATE"
	ErrCodeInvalidQuantity          = "INVALID_QUANTITY"
	ErrCodeLastItemDeleteForbidden  = "LAST_ITEM_DELETE_FORBIDDEN"
	ErrCodeOptimisticLockConflict   = "OPTIMISTIC_LOCK_CONFLICT"
	ErrCodeInvalidInput             = "INVALID_INPUT"
)

// NewNotFoundError indicates the requisition does not exist.
func NewNotFoundError(id int64) *shared.DomainError {
	return shared.NewDomainError(ErrCodeRequisitionNotFound,
		fmt.Sprintf("requisition %d not found", id))
}

// NewItemNotFoundError indicates the item does not exist within the requisition.
func NewItemNotFoundError(itemID int64) *shared.DomainError {
	return shared.NewDomainError(ErrCodeItemNotFound,
		fmt.Sprintf("item %d not found", itemID))
}

// NewNotDraftError indicates a mutation was attempted outside the DRAFT status.
func NewNotDraftError(current Status) *shared.DomainError {
	return shared.NewDomainError(ErrCodeRequisitionNotDraft,
		fmt.Sprintf("requisition is in status %s, only DRAFT requisitions can be modified", current))
}

// NewInvalidTransitionError describes a rejected status transition. The
// message enumerates the allowed targets, or states that the current status
// is terminal.
func NewInvalidTransitionError(from, to Status) *shared.DomainError {
	var allowed string
	if from.IsTerminal() {
		allowed = "none (terminal status)"
	} else {
		targets := from.AllowedTargets()
		names := make([]string, len(targets))
		for i, t := range targets {
			names[i] = t.String()
		}
		allowed = strings.Join(names, ", ")
	}
	return shared.NewDomainError(ErrCodeInvalidStatusTransition,
		fmt.Sprintf("transition %s -> %s is not allowed; allowed targets: %s", from, to, allowed))
}

// NewReactivationError indicates a reactivation attempt on a requisition that
// is not CANCELLED.
func NewReactivationError(current Status) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInvalidStatusTransition,
		fmt.Sprintf("only CANCELLED requisitions can be reactivated, current status is %s", current))
}

// NewEmptyRequisitionError indicates a submit attempt with no items.
func NewEmptyRequisitionError() *shared.DomainError {
	return shared.NewDomainError(ErrCodeEmptyRequisition,
		"requisition must contain at least one item to be submitted")
}

// NewDeleteForbiddenError indicates a delete attempt outside the DRAFT status.
func NewDeleteForbiddenError(current Status) *shared.DomainError {
	return shared.NewDomainError(ErrCodeDeleteForbidden,
		fmt.Sprintf("requisition is in status %s, only DRAFT requisitions can be deleted", current))
}

// NewNomenclatureNotFoundError indicates an unknown catalog code.
func NewNomenclatureNotFoundError(code string) *shared.DomainError {
	return shared.NewFieldError(ErrCodeNomenclatureNotFound,
		fmt.Sprintf("nomenclature %s not found in the reference catalog", code),
		"nomenclatureCode", code)
}

// NewNameMismatchError indicates the supplied name does not match the catalog.
func NewNameMismatchError(code, supplied, expected string) *shared.DomainError {
	return shared.NewFieldError(ErrCodeNomenclatureNameMismatch,
		fmt.Sprintf("nomenclature name does not match the catalog entry for %s (expected %q)", code, expected),
		"nomenclatureName", supplied)
}

// NewUnitNotAllowedError indicates a unit outside the nomenclature's allowed set.
func NewUnitNotAllowedError(unitCode, nomenclatureCode string, allowed []string) *shared.DomainError {
	return shared.NewFieldError(ErrCodeUnitNotAllowed,
		fmt.Sprintf("unit %s is not allowed for nomenclature %s (allowed: %s)",
			unitCode, nomenclatureCode, strings.Join(allowed, ", ")),
		"unitCode", unitCode)
}

// NewDuplicateNomenclatureError indicates the requisition already holds an
// item with the same nomenclature code.
func NewDuplicateNomenclatureError(code string) *shared.DomainError {
	return shared.NewFieldError(ErrCodeDuplicateNomenclature,
		fmt.Sprintf("requisition already contains an item with nomenclature %s", code),
		"nomenclatureCode", code)
}

// NewInvalidDeliveryDateError states the earliest acceptable delivery date.
func NewInvalidDeliveryDateError(supplied, earliest time.Time) *shared.DomainError {
	return shared.NewFieldError(ErrCodeInvalidDeliveryDate,
		fmt.Sprintf("desired delivery date must be no earlier than %s", earliest.Format("2006-01-02")),
		"desiredDeliveryDate", supplied.Format("2006-01-02"))
}

// NewInvalidQuantityError indicates a quantity below the minimum of 1,
// enforced on quantity patches.
func NewInvalidQuantityError(quantity decimal.Decimal) *shared.DomainError {
	return shared.NewFieldError(ErrCodeInvalidQuantity,
		"quantity must be greater than or equal to 1",
		"quantity", quantity.String())
}

// NewQuantityNotPositiveError indicates a zero or negative creation quantity.
func NewQuantityNotPositiveError(quantity decimal.Decimal) *shared.DomainError {
	return shared.NewFieldError(ErrCodeInvalidQuantity,
		"quantity must be positive",
		"quantity", quantity.String())
}

// NewLastItemDeleteError indicates an attempt to delete the sole remaining item.
func NewLastItemDeleteError() *shared.DomainError {
	return shared.NewDomainError(ErrCodeLastItemDeleteForbidden,
		"the last remaining item of a requisition cannot be deleted")
}

// NewOptimisticLockError indicates a stale version on an item update.
func NewOptimisticLockError(itemID int64) *shared.DomainError {
	return shared.NewDomainError(ErrCodeOptimisticLockConflict,
		fmt.Sprintf("item %d was modified concurrently, re-read and retry", itemID))
}

// NewInvalidInputError flags a missing or malformed scalar input.
func NewInvalidInputError(message, field string, rejectedValue any) *shared.DomainError {
	return shared.NewFieldError(ErrCodeInvalidInput, message, field, rejectedValue)
}

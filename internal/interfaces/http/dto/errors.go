package dto

import (
	"net/http"

	"github.com/skc/procurement/internal/domain/requisition"
)

// Transport-level error codes. Domain codes pass through to the wire
// unchanged; these cover failures that never reach the domain.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes. Business rule
// violations are client errors, so they map to 400 rather than 422.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	requisition.ErrCodeRequisitionNotFound: http.StatusNotFound,
	requisition.ErrCodeItemNotFound:        http.StatusNotFound,

	requisition.ErrCodeOptimisticLockConflict: http.StatusConflict,

	requisition.ErrCodeRequisitionNotDraft:      http.StatusBadRequest,
	requisition.ErrCodeInvalidStatusTransition:  http.StatusBadRequest,
	requisition.ErrCodeEmptyRequisition:         http.StatusBadRequest,
	requisition.ErrCodeDeleteForbidden:          http.StatusBadRequest,
	requisition.ErrCodeNomenclatureNotFound:     http.StatusBadRequest,
	requisition.ErrCodeNomenclatureNameMismatch: http.StatusBadRequest,
	requisition.ErrCodeUnitNotAllowed:           http.StatusBadRequest,
	requisition.ErrCodeDuplicateNomenclature:    http.StatusBadRequest,
	requisition.ErrCodeInvalidDeliveryDate:      http.StatusBadRequest,
	requisition.ErrCodeInvalidQuantity:          http.StatusBadRequest,
	requisition.ErrCodeLastItemDeleteForbidden:  http.StatusBadRequest,
	requisition.ErrCodeInvalidInput:             http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to
// 500 for codes with no mapping.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Package dto defines the HTTP envelope shared by all endpoints and the
// mapping from domain error codes to HTTP status codes.
package dto

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo represents error details. Field and RejectedValue are populated
// for field-level validation failures.
type ErrorInfo struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	Field         string `json:"field,omitempty"`
	RejectedValue any    `json:"rejectedValue,omitempty"`
}

// Meta carries collection metadata.
type Meta struct {
	Total int64 `json:"total"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewListResponse creates a success response with a total count
func NewListResponse(data any, total int64) Response {
	return Response{
		Success: true,
		Data:    data,
		Meta:    &Meta{Total: total},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewFieldErrorResponse creates an error response for a field-level failure
func NewFieldErrorResponse(code, message, field string, rejectedValue any) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:          code,
			Message:       message,
			Field:         field,
			RejectedValue: rejectedValue,
		},
	}
}

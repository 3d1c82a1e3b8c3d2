package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/skc/procurement/internal/domain/requisition"
	"github.com/skc/procurement/internal/interfaces/http/dto"
)

// SetupValidator configures the validator to report JSON field names in
// binding errors instead of Go struct field names.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// HandleBindingError writes a 400 response for a request binding failure.
// Validator errors carry the offending field; anything else (malformed
// JSON, oversized body) gets a generic message.
func HandleBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		c.JSON(http.StatusBadRequest, dto.NewFieldErrorResponse(
			requisition.ErrCodeInvalidInput,
			validationMessage(e),
			e.Field(),
			e.Value(),
		))
		return
	}
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
		requisition.ErrCodeInvalidInput, "malformed request body"))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field " + e.Field() + " is required"
	case "min":
		return "field " + e.Field() + " must be at least " + e.Param()
	case "max":
		return "field " + e.Field() + " must be at most " + e.Param()
	case "oneof":
		return "field " + e.Field() + " must be one of: " + e.Param()
	default:
		return "field " + e.Field() + " is invalid"
	}
}

// Package validate checks decoded request payloads with struct tags and turns the first
// failure into a 400 that names the offending field.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/project-gallery/internal/domain"
	apperrors "github.com/spec-kit/project-gallery/pkg/util/errorutil"
)

// Validator wraps a validator instance that reports fields by their json names.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return domain.ValidPrice(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct validates payload and returns a domain validation error for the first
// failing field, in declaration order.
func (v *Validator) Struct(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewValidationError("Invalid request payload", nil)
	}

	first := fieldErrs[0]
	field := fieldPath(first.Namespace())
	switch first.Tag() {
	case "required":
		return apperrors.NewMissingField(field)
	case "email":
		return apperrors.NewInvalidField(field, "Invalid email format")
	case "price":
		return apperrors.NewInvalidField(field, domain.PriceMessage)
	default:
		return apperrors.NewInvalidField(field, "Invalid "+field)
	}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

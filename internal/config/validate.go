package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	apperrors "github.com/agbru/cpindex/internal/errors"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator returns the shared validator. Field errors are reported
// under their flag names.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("flag"); name != "" {
				return name
			}
			return strings.ToLower(fld.Name)
		})
	})
	return validate
}

// Validate checks the configuration: field constraints first, then the
// rules that relate several fields. Violations are reported as
// ValidationError so the run stops before any network call.
func (c AppConfig) Validate() error {
	if err := structValidator().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperrors.ValidationError{Field: fe.Field(), Message: describeFieldError(fe)}
		}
		return apperrors.WrapError(err, "validating configuration")
	}

	if c.Start.IsZero() || c.End.IsZero() {
		return apperrors.ValidationError{Field: "start", Message: "month range is not resolved"}
	}
	if c.End.Before(c.Start) {
		return apperrors.ValidationError{
			Field:   "end",
			Message: fmt.Sprintf("end month (%s) must not be earlier than start month (%s)", c.End, c.Start),
		}
	}

	hasMoney, hasIndex := c.Money != nil, !c.IndexMonth.IsZero()
	if hasMoney != hasIndex {
		return apperrors.ValidationError{
			Field:   "money",
			Message: "must have either both --money and --index-month or neither",
		}
	}
	if hasIndex && !c.IndexMonth.Between(c.Start, c.End) {
		return apperrors.ValidationError{
			Field:   "index-month",
			Message: fmt.Sprintf("index month (%s) must be within requested range (%s, %s)", c.IndexMonth, c.Start, c.End),
		}
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of: %s (got %v)", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "url":
		return fmt.Sprintf("must be a valid URL (got %q)", fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

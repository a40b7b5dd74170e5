package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"addisstay/internal/app/middleware"
	"addisstay/internal/domain/shared/money"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("validation: invalid input")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e Errors) Unwrap() error { return ErrInvalid }

// StructValidator checks `validate` tags on commands and queries.
type StructValidator struct {
	validate *validator.Validate
}

func New() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
		return money.IsSupported(fl.Field().String())
	})
	return &StructValidator{validate: v}
}

func (s *StructValidator) Validate(ctx context.Context, msg any) error {
	if msg == nil {
		return nil
	}
	rv := reflect.ValueOf(msg)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	err := s.validate.StructCtx(ctx, msg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{Field: fieldName(fe), Message: describe(fe)}
	}
	return out
}

// fieldName drops the leading struct name ("CreateListingCommand.Input.Title"
// becomes "Input.Title").
func fieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "currency_code":
		return "is not a supported currency"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

var _ middleware.Validator = (*StructValidator)(nil)

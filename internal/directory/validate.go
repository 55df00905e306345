package directory

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PayloadValidator validates write payloads against their struct tags and
// translates failures into field-level validation errors. It is decoupled
// from any transport request object so the same rules apply to every caller.
type PayloadValidator struct {
	validate *validator.Validate
}

// NewPayloadValidator creates a payload validator
func NewPayloadValidator() *PayloadValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their json names so error output matches the wire
	// format rather than Go identifiers.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &PayloadValidator{validate: v}
}

// ValidateCreate validates a create payload
func (p *PayloadValidator) ValidateCreate(req *CreateUserRequest) error {
	if req == nil {
		return NewValidationErrors(NewFieldError("payload", nil, "payload is required"))
	}
	return p.check(req)
}

// ValidateUpdate validates an update payload
func (p *PayloadValidator) ValidateUpdate(req *UpdateUserRequest) error {
	if req == nil {
		return NewValidationErrors(NewFieldError("payload", nil, "payload is required"))
	}
	return p.check(req)
}

func (p *PayloadValidator) check(payload interface{}) error {
	err := p.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate payload: %w", err)
	}

	verrs := &ValidationErrors{}
	for _, fe := range fieldErrs {
		verrs.Fields = append(verrs.Fields, NewFieldError(fe.Field(), fe.Value(), messageForTag(fe)))
	}
	return verrs
}

// messageForTag renders a caller-facing message for a failed rule
func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed validation rule %q", fe.Tag())
	}
}

package apperror

import (
	"errors"
	"strings"

	"github.com/go-playground/validator"
)

var validate = validator.New()

// ValidateStruct runs the `validate` tags of v and converts the first failure
// into a Validation error naming the offending field.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &Error{
			Kind:    KindValidation,
			Field:   lowerFirst(fe.Field()),
			Message: "failed on the '" + fe.Tag() + "' rule",
			Err:     err,
		}
	}
	return &Error{Kind: KindValidation, Message: "invalid request", Err: err}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Kariqs/magnets-api/catalog"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("magnet_size", func(fl validator.FieldLevel) bool {
		_, ok := catalog.LookupSize(fl.Field().String())
		return ok
	})
	v.RegisterValidation("magnet_border", func(fl validator.FieldLevel) bool {
		return catalog.ValidBorder(fl.Field().String())
	})
	v.RegisterValidation("magnet_finish", func(fl validator.FieldLevel) bool {
		return catalog.ValidFinish(fl.Field().String())
	})
	return v
}

// validationFailure turns validator output into a ValidationError whose
// message names every offending field.
func validationFailure(err error) *Error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Error{Kind: KindValidation, Message: "invalid input", Err: err}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describeFieldError(fe))
	}
	return &Error{Kind: KindValidation, Message: strings.Join(messages, "; "), Err: err}
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "magnet_size":
		return fmt.Sprintf("%s %q is not a known size", field, fe.Value())
	case "magnet_border":
		return fmt.Sprintf("%s %q is not a known border style", field, fe.Value())
	case "magnet_finish":
		return fmt.Sprintf("%s %q is not a known finish", field, fe.Value())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

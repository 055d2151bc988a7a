package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	apperrors "crud-microservices/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^[+]?[1-9]\d{1,14}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateStruct validates a struct based on its validation tags. Only the
// first violation is reported so the message is stable for a given input.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return apperrors.NewValidationError(formatFieldError(validationErrors[0]))
	}
	return apperrors.NewValidationError(err.Error())
}

// DecodeJSON decodes a request body into v, rejecting unknown fields and
// trailing data. Decode failures are validation errors.
func DecodeJSON(body io.Reader, v interface{}) error {
	if body == nil {
		return apperrors.NewValidationError("request body is required")
	}
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("request body is required")
		}
		return apperrors.NewValidationError(fmt.Sprintf("invalid JSON body: %s", err.Error())).WithCause(err)
	}
	if decoder.More() {
		return apperrors.NewValidationError("invalid JSON body: unexpected trailing data")
	}
	return nil
}

// DecodeAndValidate is DecodeJSON followed by ValidateStruct.
func DecodeAndValidate(body io.Reader, v interface{}) error {
	if err := DecodeJSON(body, v); err != nil {
		return err
	}
	return ValidateStruct(v)
}

func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := fieldPath(e)

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		switch e.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must contain at least %s items", field, e.Param())
		default:
			return fmt.Sprintf("%s must be at least %s", field, e.Param())
		}
	case "max":
		switch e.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must contain at most %s items", field, e.Param())
		default:
			return fmt.Sprintf("%s must be at most %s", field, e.Param())
		}
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "phone":
		return fmt.Sprintf("%s must be a valid phone number", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

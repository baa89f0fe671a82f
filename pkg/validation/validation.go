// Package validation wraps go-playground/validator with the custom rules the
// directory needs and turns its errors into field/message pairs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hazyhaar/provider-directory/pkg/store"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Validator validates config and request structs.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the sqlident rule registered. Field names in
// errors come from the json or yaml tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "yaml"} {
			name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return store.ValidIdent(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct validates s.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors
	for _, err := range errs {
		field := strings.TrimPrefix(err.Namespace(), strings.SplitN(err.Namespace(), ".", 2)[0]+".")
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min", "gte":
			message = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max", "lte":
			message = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "len":
			message = fmt.Sprintf("%s must have length %s", field, err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", field, err.Param())
		case "url", "http_url":
			message = fmt.Sprintf("%s must be a valid URL", field)
		case "hostname_port":
			message = fmt.Sprintf("%s must be host:port", field)
		case "sqlident":
			message = fmt.Sprintf("%s must be a plain SQL identifier", field)
		}

		out = append(out, ValidationError{Field: field, Message: message})
	}
	return out
}

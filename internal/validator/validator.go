// Package validator adapts go-playground/validator to echo and collects
// failures per field, keyed by the field's JSON name.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// Errors maps a field name to its validation messages.
type Errors struct {
	Fields map[string][]string
}

func (e *Errors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records msg for field.
func (e *Errors) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Validator implements echo.Validator.
type Validator struct {
	v *playground.Validate
}

func New() *Validator {
	v := playground.New(playground.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Validate returns nil or *Errors.
func (v *Validator) Validate(i any) error {
	err := v.v.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Errors{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The field %s must be a string with a minimum length of %s.", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("The field %s must be at least %s.", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The field %s must be a string with a maximum length of %s.", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("The field %s must be at most %s.", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("The field %s must not be less than %s.", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("The field %s is invalid.", fe.Field())
}

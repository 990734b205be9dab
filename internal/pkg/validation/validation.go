// Package validation configures the binding validator shared by all handlers.
package validation

import (
	"errors"
	"reflect"
	"slices"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Enums maps a validation tag to the values it accepts.
type Enums map[string][]string

// Setup reports field errors by their JSON/form names and registers one
// validation tag per enum.
func Setup(enums Enums) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}

	v.RegisterTagNameFunc(fieldName)

	for tag, values := range enums {
		if err := v.RegisterValidation(tag, oneOf(values)); err != nil {
			return err
		}
	}
	return nil
}

func oneOf(values []string) validator.Func {
	allowed := slices.Clone(values)
	return func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		s := fl.Field().String()
		// Empty values are left to required/omitempty.
		return s == "" || slices.Contains(allowed, s)
	}
}

func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form", "uri"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// Package validator checks form input at the boundary, before any prompt is
// assembled or sent anywhere.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// FieldError names a single field that failed a rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError is returned when one or more fields are missing or invalid.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, describe(f))
	}
	return "invalid selection: " + strings.Join(parts, ", ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func describe(f FieldError) string {
	switch f.Rule {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", f.Field)
	case "oneof":
		return fmt.Sprintf("%s has an unsupported value", f.Field)
	default:
		return fmt.Sprintf("%s failed %s", f.Field, f.Rule)
	}
}

var (
	once     sync.Once
	instance *playground.Validate
)

// engine is built once; playground.Validate caches struct metadata and is
// safe for concurrent use.
func engine() *playground.Validate {
	once.Do(func() {
		v := playground.New(playground.WithRequiredStructEnabled())
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		instance = v
	})
	return instance
}

// Struct validates s against its `validate` tags. Field names in the
// returned *ValidationError follow the json tags.
func Struct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}

	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

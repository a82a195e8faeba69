// Package validator checks extraction-agent output against the record schema.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"pdfdigest/internal/domain"
)

// Engine validates record sets. Safe for concurrent use.
type Engine struct {
	validate *validator.Validate
}

// NewEngine creates a validation engine with json tag names registered, so
// violations report the wire-level field names callers actually sent.
func NewEngine() *Engine {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Engine{validate: v}
}

// ValidateRecordSet checks every trade and fee against its field
// constraints. All violations across all records are collected before
// failing; the returned error is a *domain.SchemaValidationError.
func (e *Engine) ValidateRecordSet(rs *domain.RecordSet) error {
	err := e.validate.Struct(rs)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating record set: %w", err)
	}

	violations := make([]domain.Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		record, field := splitNamespace(fe.Namespace())
		violations = append(violations, domain.Violation{
			Record:  record,
			Field:   field,
			Rule:    fe.Tag(),
			Message: messageFor(fe),
		})
	}
	return &domain.SchemaValidationError{Violations: violations}
}

// splitNamespace turns a namespace like "RecordSet.trades[0].operationType"
// into the record path "trades[0]" and the leaf field name.
func splitNamespace(ns string) (record, field string) {
	parts := strings.Split(ns, ".")
	if len(parts) < 2 {
		return "", ns
	}
	// Drop the root struct name.
	parts = parts[1:]
	field = parts[len(parts)-1]
	record = strings.Join(parts[:len(parts)-1], ".")
	return record, field
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "datetime":
		return fmt.Sprintf("must be a date in %s format, got %q", fe.Param(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}

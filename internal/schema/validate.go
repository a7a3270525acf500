package schema

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError carries the single human-readable message for the
// first violation found while checking a schema. It is surfaced to the
// editor verbatim and blocks the save; there is no partial-success
// mode.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Validate decides whether the form metadata plus its in-progress field
// list is save-worthy. Checks run in field order and short-circuit on
// the first violation; a nil return means the schema may be normalized
// and persisted.
func Validate(meta Meta, fields []FieldDefinition) error {
	if strings.TrimSpace(meta.Title) == "" {
		return &ValidationError{Message: "Form title is required."}
	}
	if strings.TrimSpace(meta.Slug) == "" {
		return &ValidationError{Message: "Slug is required."}
	}
	if len(fields) == 0 {
		return &ValidationError{Message: "Add at least one field to the form."}
	}

	seen := make(map[string]struct{}, len(fields))
	for i, field := range fields {
		if strings.TrimSpace(field.Label) == "" {
			return &ValidationError{Message: "Every field must have a label."}
		}
		key := strings.TrimSpace(field.Key)
		if key == "" {
			return &ValidationError{Message: "Every field must have a key."}
		}
		if _, dup := seen[key]; dup {
			return validationErrorf("Duplicate field key: %s", field.Key)
		}
		seen[key] = struct{}{}

		switch field.Type {
		case TypeSelect, TypeMultiSelect:
			if len(trimOptions(field.Options)) == 0 {
				return &ValidationError{Message: "Select and multi-select fields must have at least one option."}
			}
		case TypeText:
			if field.MinCount != nil && *field.MinCount < 0 {
				return &ValidationError{Message: "Text min_count must be 0 or greater."}
			}
			if field.MaxCount != nil && *field.MaxCount < 0 {
				return &ValidationError{Message: "Text max_count must be 0 or greater."}
			}
			if field.MinCount != nil && field.MaxCount != nil && *field.MinCount > *field.MaxCount {
				return &ValidationError{Message: "Text min_count cannot exceed max_count."}
			}
		case TypeRating:
			if !isFinite(field.ScaleMin) || !isFinite(field.ScaleMax) {
				return validationErrorf("Rating field %q must have numeric scale bounds.", field.Label)
			}
			if *field.ScaleMin >= *field.ScaleMax {
				return validationErrorf("Rating field %q requires scale_min to be less than scale_max.", field.Label)
			}
			if field.ScaleType != ScaleNumeric && field.ScaleType != ScaleStars {
				return validationErrorf("Rating field %q must have a scale type.", field.Label)
			}
		}

		if field.Conditional != nil {
			if err := validateConditional(fields, i, field); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateConditional checks the conditional invariant for the field at
// index i: the referenced parent must appear strictly earlier, be a
// single-select, and still offer the stored option.
func validateConditional(fields []FieldDefinition, i int, field FieldDefinition) error {
	cond := field.Conditional
	parent, ok := findParent(fields[:i], cond.FieldKey)
	if !ok {
		return validationErrorf("Field %q is conditional on %q, which must be an earlier select field.", field.Label, cond.FieldKey)
	}
	for _, option := range trimOptions(parent.Options) {
		if option == cond.Option {
			return nil
		}
	}
	return validationErrorf("Field %q is conditional on option %q, which %q no longer offers.", field.Label, cond.Option, cond.FieldKey)
}

// findParent scans the fields preceding the dependent for a select
// field with the given trimmed key.
func findParent(earlier []FieldDefinition, key string) (FieldDefinition, bool) {
	for _, candidate := range earlier {
		if strings.TrimSpace(candidate.Key) == key && candidate.Type == TypeSelect {
			return candidate, true
		}
	}
	return FieldDefinition{}, false
}

func trimOptions(options []string) []string {
	trimmed := make([]string, 0, len(options))
	for _, option := range options {
		option = strings.TrimSpace(option)
		if option != "" {
			trimmed = append(trimmed, option)
		}
	}
	return trimmed
}

func isFinite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

package schema

import "strings"

// Normalize cleans a field list into its persisted form: labels and
// keys trimmed, type-irrelevant attributes dropped, order recomputed as
// the dense 1-based array position, and conditionals that no longer
// satisfy their invariant silently removed. Normalize is idempotent.
func Normalize(fields []FieldDefinition) []FieldDefinition {
	cleaned := make([]FieldDefinition, len(fields))
	for i, field := range fields {
		out := FieldDefinition{
			ID:       field.ID,
			Type:     field.Type,
			Label:    strings.TrimSpace(field.Label),
			Key:      strings.TrimSpace(field.Key),
			Required: field.Required,
			Order:    i + 1,
		}

		switch field.Type {
		case TypeSelect:
			out.Options = trimOptions(field.Options)
		case TypeMultiSelect:
			out.Options = trimOptions(field.Options)
			out.IsRanked = field.IsRanked
		case TypeText:
			out.MinCount = field.MinCount
			out.MaxCount = field.MaxCount
		case TypeRating:
			out.ScaleMin = field.ScaleMin
			out.ScaleMax = field.ScaleMax
			out.ScaleType = field.ScaleType
			out.AllowFloat = field.AllowFloat && field.ScaleType == ScaleNumeric
			out.MinLabel = strings.TrimSpace(field.MinLabel)
			out.MaxLabel = strings.TrimSpace(field.MaxLabel)
		case TypeEmail:
			out.IsStudentEmail = field.IsStudentEmail
		}

		cleaned[i] = out
	}

	// Conditional repair runs against the cleaned list, so a parent
	// that changed type, moved after its dependent, or lost the stored
	// option in this same save drops the conditional.
	for i := range cleaned {
		cond := fields[i].Conditional
		if cond == nil {
			continue
		}
		repaired := Conditional{
			FieldKey: strings.TrimSpace(cond.FieldKey),
			Option:   strings.TrimSpace(cond.Option),
		}
		if conditionalHolds(cleaned[:i], repaired) {
			cleaned[i].Conditional = &repaired
		}
	}

	return cleaned
}

// conditionalHolds reports whether the conditional invariant is
// satisfied against the fields preceding the dependent.
func conditionalHolds(earlier []FieldDefinition, cond Conditional) bool {
	parent, ok := findParent(earlier, cond.FieldKey)
	if !ok {
		return false
	}
	for _, option := range trimOptions(parent.Options) {
		if option == cond.Option {
			return true
		}
	}
	return false
}

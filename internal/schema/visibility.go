package schema

// Answers is one respondent's working answer set, keyed by field key.
// Value shapes follow the field type: string for text/email/select,
// []string for multi_select, bool for boolean, float64 for rating.
type Answers map[string]any

// Visible reports whether a field is currently shown/collectible given
// the working answer map. A field with no conditional is always
// visible; a conditional field is visible only while an earlier field
// with the referenced key currently holds the stored option exactly.
//
// The result is derived purely from (fields, answers); visibility keeps
// no state of its own.
func Visible(fields []FieldDefinition, answers Answers, index int) bool {
	if index < 0 || index >= len(fields) {
		return false
	}
	cond := fields[index].Conditional
	if cond == nil {
		return true
	}

	for _, earlier := range fields[:index] {
		if earlier.Key != cond.FieldKey {
			continue
		}
		value, ok := answers[cond.FieldKey].(string)
		return ok && value == cond.Option
	}
	return false
}

// VisibleFields returns the fields currently shown for the working
// answer map, in schema order.
func VisibleFields(fields []FieldDefinition, answers Answers) []FieldDefinition {
	visible := make([]FieldDefinition, 0, len(fields))
	for i, field := range fields {
		if Visible(fields, answers, i) {
			visible = append(visible, field)
		}
	}
	return visible
}

// PruneHidden returns a copy of the answer map with every entry whose
// field is currently invisible removed, along with entries that match
// no field at all. Hidden fields must not retain stale answers: a value
// collected while a dependent field was visible would otherwise survive
// the parent changing and be submitted.
func PruneHidden(fields []FieldDefinition, answers Answers) Answers {
	pruned := make(Answers, len(answers))
	for i, field := range fields {
		value, ok := answers[field.Key]
		if !ok {
			continue
		}
		if Visible(fields, pruned, i) {
			pruned[field.Key] = value
		}
	}
	return pruned
}

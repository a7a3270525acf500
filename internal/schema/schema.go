// Package schema implements the dynamic form schema engine: the field
// model, save-time validation and normalization, and the conditional
// visibility evaluation used during preview and response entry.
//
// The engine works purely on in-memory values. Persistence of the
// resulting FormSchema and the surrounding form entity live in
// internal/form.
package schema

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type FieldType string

const (
	TypeText        FieldType = "text"
	TypeEmail       FieldType = "email"
	TypeSelect      FieldType = "select"
	TypeMultiSelect FieldType = "multi_select"
	TypeBoolean     FieldType = "boolean"
	TypeRating      FieldType = "rating"
)

type ScaleType string

const (
	ScaleNumeric ScaleType = "numeric"
	ScaleStars   ScaleType = "stars"
)

// Conditional gates a field's visibility on the value of an earlier
// single-select field: the field is shown only while the referenced
// field's current answer equals Option exactly.
type Conditional struct {
	FieldKey string `json:"field_key"`
	Option   string `json:"option"`
}

// FieldDefinition is one question in a form. Type-specific attributes
// are only meaningful for the matching Type and are stripped by
// Normalize otherwise. Nullable attributes are serialized as explicit
// null rather than omitted.
type FieldDefinition struct {
	ID       string    `json:"id"`
	Type     FieldType `json:"type"`
	Label    string    `json:"label"`
	Key      string    `json:"key"`
	Required bool      `json:"required"`
	Order    int       `json:"order"`

	// select / multi_select
	Options []string `json:"options,omitempty"`

	// multi_select
	IsRanked bool `json:"is_ranked,omitempty"`

	// text
	MinCount *int `json:"min_count"`
	MaxCount *int `json:"max_count"`

	// rating
	ScaleMin   *float64  `json:"scale_min,omitempty"`
	ScaleMax   *float64  `json:"scale_max,omitempty"`
	ScaleType  ScaleType `json:"scale_type,omitempty"`
	AllowFloat bool      `json:"allow_float,omitempty"`
	MinLabel   string    `json:"min_label,omitempty"`
	MaxLabel   string    `json:"max_label,omitempty"`

	// email
	IsStudentEmail bool `json:"is_student_email,omitempty"`

	Conditional *Conditional `json:"conditional,omitempty"`
}

// FormSchema is the persisted shape of a form definition: fields in
// display order, every key unique, every conditional referencing an
// earlier select field.
type FormSchema struct {
	Fields []FieldDefinition `json:"fields"`
}

// Meta is the form-level metadata validated together with the fields.
type Meta struct {
	Title string
	Slug  string
}

// NewField returns a blank field with a fresh stable ID and the editor
// default type. The ID is assigned once and never reused.
func NewField() FieldDefinition {
	return FieldDefinition{
		ID:      uuid.New().String(),
		Type:    TypeText,
		Options: []string{},
	}
}

var keyPattern = regexp.MustCompile(`[^a-z0-9]+`)

// DeriveKey produces the default machine key for a label: lowercased,
// runs of non-alphanumerics collapsed to "-", leading and trailing "-"
// stripped. The key stays independently editable afterwards.
func DeriveKey(label string) string {
	key := keyPattern.ReplaceAllString(strings.ToLower(label), "-")
	return strings.Trim(key, "-")
}

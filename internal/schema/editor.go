package schema

import (
	"encoding/json"
	"strings"
)

// Editor is an in-memory editing session over a form's metadata and
// field list. It mirrors the dashboard editor: fields are mutated in
// place, reordered by splicing, and the whole list is validated and
// normalized on save; there is no partial update.
//
// Dirtiness is tracked by snapshot comparison against the state the
// session was opened with, keeping the "unsaved changes" concern out of
// the engine's validation path.
type Editor struct {
	Meta   Meta
	Fields []FieldDefinition

	initial string
}

// NewEditor opens an editing session seeded from the persisted form
// state. The seed is normalized first so a freshly opened session is
// never dirty due to legacy un-normalized data.
func NewEditor(meta Meta, fields []FieldDefinition) *Editor {
	e := &Editor{
		Meta:   meta,
		Fields: Normalize(fields),
	}
	e.initial = e.Snapshot()
	return e
}

// AddField appends a blank default field and returns its index.
func (e *Editor) AddField() int {
	e.Fields = append(e.Fields, NewField())
	return len(e.Fields) - 1
}

// InsertFieldAfter splices a blank field directly below index and
// returns the new field's index. Out-of-range indexes append.
func (e *Editor) InsertFieldAfter(index int) int {
	if index < 0 || index >= len(e.Fields)-1 {
		return e.AddField()
	}
	at := index + 1
	e.Fields = append(e.Fields[:at], append([]FieldDefinition{NewField()}, e.Fields[at:]...)...)
	return at
}

// UpdateField replaces the field at index, keeping its original ID so
// the identifier assigned at creation is never reused or lost.
func (e *Editor) UpdateField(index int, field FieldDefinition) {
	if index < 0 || index >= len(e.Fields) {
		return
	}
	field.ID = e.Fields[index].ID
	e.Fields[index] = field
}

// MoveField splices the field at from out of the list and back in at
// to. Moves past either end are ignored, matching the disabled
// move-up/move-down buttons at the boundaries.
func (e *Editor) MoveField(from, to int) {
	if from < 0 || from >= len(e.Fields) || to < 0 || to >= len(e.Fields) || from == to {
		return
	}
	moved := e.Fields[from]
	rest := append(e.Fields[:from], e.Fields[from+1:]...)
	e.Fields = append(rest[:to], append([]FieldDefinition{moved}, rest[to:]...)...)
}

// RemoveField deletes the field at index.
func (e *Editor) RemoveField(index int) {
	if index < 0 || index >= len(e.Fields) {
		return
	}
	e.Fields = append(e.Fields[:index], e.Fields[index+1:]...)
}

// Snapshot renders the session state in canonical form: trimmed-meta
// plus the normalized field list. Two sessions with the same effective
// content produce identical snapshots.
func (e *Editor) Snapshot() string {
	payload := struct {
		Meta   Meta              `json:"meta"`
		Fields []FieldDefinition `json:"fields"`
	}{
		Meta: Meta{
			Title: strings.TrimSpace(e.Meta.Title),
			Slug:  strings.TrimSpace(e.Meta.Slug),
		},
		Fields: Normalize(e.Fields),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(raw)
}

// Dirty reports whether the session differs from the state it was
// opened with.
func (e *Editor) Dirty() bool {
	return e.Snapshot() != e.initial
}

// Save validates the session and, when save-worthy, returns the
// normalized schema that replaces the persisted one. On violation the
// returned error carries the single message to surface in the editor.
func (e *Editor) Save() (FormSchema, error) {
	if err := Validate(e.Meta, e.Fields); err != nil {
		return FormSchema{}, err
	}
	return FormSchema{Fields: Normalize(e.Fields)}, nil
}

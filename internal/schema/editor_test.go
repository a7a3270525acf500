package schema

import (
	"testing"
)

func seedFields() []FieldDefinition {
	return []FieldDefinition{
		textField("Name", "name"),
		selectField("Country", "country", "US", "UK"),
		textField("Bio", "bio"),
	}
}

func fieldKeys(fields []FieldDefinition) []string {
	keys := make([]string, len(fields))
	for i, field := range fields {
		keys[i] = field.Key
	}
	return keys
}

func assertKeys(t *testing.T, fields []FieldDefinition, want ...string) {
	t.Helper()
	got := fieldKeys(fields)
	if len(got) != len(want) {
		t.Fatalf("expected keys %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected keys %v, got %v", want, got)
		}
	}
}

func TestEditor_OpensClean(t *testing.T) {
	e := NewEditor(validMeta(), seedFields())
	if e.Dirty() {
		t.Error("a freshly opened session must not be dirty")
	}
}

func TestEditor_AddAndInsert(t *testing.T) {
	e := NewEditor(validMeta(), seedFields())

	at := e.AddField()
	if at != 3 {
		t.Errorf("expected append at index 3, got %d", at)
	}
	if e.Fields[at].Type != TypeText {
		t.Errorf("expected default type text, got %s", e.Fields[at].Type)
	}
	if e.Fields[at].ID == "" {
		t.Error("new field must receive an ID")
	}

	at = e.InsertFieldAfter(0)
	if at != 1 {
		t.Errorf("expected insert at index 1, got %d", at)
	}
	assertKeys(t, e.Fields, "name", "", "country", "bio", "")

	if !e.Dirty() {
		t.Error("session should be dirty after structural edits")
	}
}

func TestEditor_UpdatePreservesID(t *testing.T) {
	e := NewEditor(validMeta(), seedFields())
	originalID := e.Fields[0].ID

	replacement := textField("Full Name", "full-name")
	replacement.ID = "attacker-chosen"
	e.UpdateField(0, replacement)

	if e.Fields[0].ID != originalID {
		t.Errorf("expected ID %q preserved, got %q", originalID, e.Fields[0].ID)
	}
	if e.Fields[0].Label != "Full Name" {
		t.Errorf("expected updated label, got %q", e.Fields[0].Label)
	}
}

func TestEditor_MoveField(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"move down", 0, 1, []string{"country", "name", "bio"}},
		{"move up", 2, 0, []string{"bio", "name", "country"}},
		{"move to end", 0, 2, []string{"country", "bio", "name"}},
		{"out of range ignored", 0, 5, []string{"name", "country", "bio"}},
		{"negative ignored", -1, 0, []string{"name", "country", "bio"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(validMeta(), seedFields())
			e.MoveField(tt.from, tt.to)
			assertKeys(t, e.Fields, tt.want...)
		})
	}
}

func TestEditor_RemoveField(t *testing.T) {
	e := NewEditor(validMeta(), seedFields())
	e.RemoveField(1)
	assertKeys(t, e.Fields, "name", "bio")

	e.RemoveField(9)
	assertKeys(t, e.Fields, "name", "bio")
}

func TestEditor_DirtyRoundTrip(t *testing.T) {
	e := NewEditor(validMeta(), seedFields())

	e.MoveField(0, 1)
	if !e.Dirty() {
		t.Fatal("expected dirty after move")
	}
	e.MoveField(1, 0)
	if e.Dirty() {
		t.Error("undoing the edit should restore a clean session")
	}
}

func TestEditor_MetaWhitespaceStaysClean(t *testing.T) {
	e := NewEditor(validMeta(), seedFields())

	e.Meta.Title = "  " + e.Meta.Title + "  "
	e.Meta.Slug = e.Meta.Slug + " "
	if e.Dirty() {
		t.Error("surrounding whitespace on meta must not dirty the session")
	}

	e.Meta.Title = "Renamed"
	if !e.Dirty() {
		t.Error("expected dirty after a real title change")
	}
}

func TestEditor_Save(t *testing.T) {
	t.Run("valid session saves normalized", func(t *testing.T) {
		e := NewEditor(validMeta(), seedFields())
		idx := e.AddField()
		field := e.Fields[idx]
		field.Label = "  Feedback  "
		field.Key = DeriveKey(field.Label)
		e.UpdateField(idx, field)

		saved, err := e.Save()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved.Fields[idx].Label != "Feedback" {
			t.Errorf("expected trimmed label, got %q", saved.Fields[idx].Label)
		}
		if saved.Fields[idx].Order != idx+1 {
			t.Errorf("expected order %d, got %d", idx+1, saved.Fields[idx].Order)
		}
	})

	t.Run("invalid session reports the first violation", func(t *testing.T) {
		e := NewEditor(validMeta(), seedFields())
		e.AddField()

		_, err := e.Save()
		if err == nil {
			t.Fatal("expected validation error")
		}
		if err.Error() != "Every field must have a label." {
			t.Errorf("unexpected message: %q", err.Error())
		}
	})
}

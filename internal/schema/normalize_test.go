package schema

import (
	"reflect"
	"testing"
)

func TestNormalize_StripsForeignAttributes(t *testing.T) {
	fields := []FieldDefinition{
		{
			ID:      "f1",
			Type:    TypeText,
			Label:   "  Bio  ",
			Key:     " bio ",
			Options: []string{"stale", "options"},
			IsRanked: true,
			MinCount: intPtr(1),
			MaxCount: intPtr(200),
			ScaleMin: floatPtr(1),
			ScaleMax: floatPtr(5),
		},
		{
			ID:      "f2",
			Type:    TypeSelect,
			Label:   "Country",
			Key:     "country",
			Options: []string{" US ", "", "UK", "  "},
			MinCount: intPtr(3),
		},
		{
			ID:             "f3",
			Type:           TypeBoolean,
			Label:          "Subscribed",
			Key:            "subscribed",
			IsStudentEmail: true,
			Options:        []string{"yes"},
		},
	}

	got := Normalize(fields)

	text := got[0]
	if text.Label != "Bio" || text.Key != "bio" {
		t.Errorf("expected trimmed label/key, got %q/%q", text.Label, text.Key)
	}
	if text.Options != nil || text.IsRanked || text.ScaleMin != nil || text.ScaleMax != nil {
		t.Errorf("text field kept foreign attributes: %+v", text)
	}
	if text.MinCount == nil || *text.MinCount != 1 || text.MaxCount == nil || *text.MaxCount != 200 {
		t.Errorf("text field lost its own attributes: %+v", text)
	}

	sel := got[1]
	if !reflect.DeepEqual(sel.Options, []string{"US", "UK"}) {
		t.Errorf("expected blank options dropped and rest trimmed, got %v", sel.Options)
	}
	if sel.MinCount != nil {
		t.Errorf("select field kept text attributes: %+v", sel)
	}

	boolean := got[2]
	if boolean.Options != nil || boolean.IsStudentEmail {
		t.Errorf("boolean field kept foreign attributes: %+v", boolean)
	}
}

func TestNormalize_RecomputesOrder(t *testing.T) {
	fields := []FieldDefinition{
		{ID: "a", Type: TypeText, Label: "A", Key: "a", Order: 7},
		{ID: "b", Type: TypeText, Label: "B", Key: "b", Order: 2},
		{ID: "c", Type: TypeText, Label: "C", Key: "c"},
	}

	got := Normalize(fields)
	for i, field := range got {
		if field.Order != i+1 {
			t.Errorf("field %d: expected order %d, got %d", i, i+1, field.Order)
		}
	}
}

func TestNormalize_AllowFloatOnlyNumeric(t *testing.T) {
	fields := []FieldDefinition{
		{ID: "f1", Type: TypeRating, Label: "Stars", Key: "stars", ScaleMin: floatPtr(1), ScaleMax: floatPtr(5), ScaleType: ScaleStars, AllowFloat: true},
		{ID: "f2", Type: TypeRating, Label: "Score", Key: "score", ScaleMin: floatPtr(0), ScaleMax: floatPtr(10), ScaleType: ScaleNumeric, AllowFloat: true},
	}

	got := Normalize(fields)
	if got[0].AllowFloat {
		t.Error("stars scale must not allow float values")
	}
	if !got[1].AllowFloat {
		t.Error("numeric scale should keep allow_float")
	}
}

func TestNormalize_ConditionalRepair(t *testing.T) {
	dependent := func(cond *Conditional) FieldDefinition {
		return FieldDefinition{ID: "dep", Type: TypeText, Label: "County", Key: "county", Conditional: cond}
	}
	parent := FieldDefinition{ID: "par", Type: TypeSelect, Label: "Country", Key: "country", Options: []string{"US", "UK"}}

	tests := []struct {
		name   string
		fields []FieldDefinition
		kept   bool
	}{
		{
			name:   "valid conditional survives",
			fields: []FieldDefinition{parent, dependent(&Conditional{FieldKey: "country", Option: "UK"})},
			kept:   true,
		},
		{
			name:   "parent moved after dependent",
			fields: []FieldDefinition{dependent(&Conditional{FieldKey: "country", Option: "UK"}), parent},
			kept:   false,
		},
		{
			name: "parent changed type",
			fields: []FieldDefinition{
				{ID: "par", Type: TypeText, Label: "Country", Key: "country"},
				dependent(&Conditional{FieldKey: "country", Option: "UK"}),
			},
			kept: false,
		},
		{
			name:   "stored option removed",
			fields: []FieldDefinition{parent, dependent(&Conditional{FieldKey: "country", Option: "FR"})},
			kept:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.fields)
			var dep *FieldDefinition
			for i := range got {
				if got[i].ID == "dep" {
					dep = &got[i]
				}
			}
			if dep == nil {
				t.Fatal("dependent field missing from normalized output")
			}
			if tt.kept && dep.Conditional == nil {
				t.Error("expected conditional to survive normalization")
			}
			if !tt.kept && dep.Conditional != nil {
				t.Errorf("expected conditional dropped, got %+v", dep.Conditional)
			}
		})
	}
}

func TestNormalize_ConditionalAgainstCleanedParent(t *testing.T) {
	// The parent's surviving option list decides repair: the stored
	// option matches only after the parent's options are trimmed.
	fields := []FieldDefinition{
		{ID: "par", Type: TypeSelect, Label: "Country", Key: "country", Options: []string{" UK "}},
		{ID: "dep", Type: TypeText, Label: "County", Key: "county", Conditional: &Conditional{FieldKey: "country", Option: "UK"}},
	}

	got := Normalize(fields)
	if got[1].Conditional == nil {
		t.Fatal("conditional should match the trimmed parent option")
	}
}

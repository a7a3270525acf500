package analytics

import (
	"reflect"
	"testing"

	"atrium/admin-backend/internal/schema"
)

func summaryFor(t *testing.T, field schema.FieldDefinition, responses []schema.Answers) FieldSummary {
	t.Helper()
	summaries := Summarize([]schema.FieldDefinition{field}, responses)
	if len(summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(summaries))
	}
	return summaries[0]
}

func TestSummarize_Select(t *testing.T) {
	field := schema.FieldDefinition{
		Type: schema.TypeSelect, Label: "Size", Key: "size",
		Options: []string{"S", "M", "L"},
	}
	responses := []schema.Answers{
		{"size": "M"},
		{"size": "M"},
		{"size": "XL"}, // kept from before the option was removed
		{"size": ""},
		{},
	}

	summary := summaryFor(t, field, responses)

	want := []OptionCount{{"S", 0}, {"M", 2}, {"L", 0}, {"XL", 1}}
	if !reflect.DeepEqual(summary.Counts, want) {
		t.Errorf("expected %v, got %v", want, summary.Counts)
	}
	if summary.Responses != 3 {
		t.Errorf("expected 3 responses, got %d", summary.Responses)
	}
}

func TestSummarize_MultiSelect(t *testing.T) {
	field := schema.FieldDefinition{
		Type: schema.TypeMultiSelect, Label: "Topics", Key: "topics",
		Options: []string{"go", "rust"},
	}
	responses := []schema.Answers{
		{"topics": []any{"go", "rust"}},
		{"topics": []string{"go"}},
		{"topics": []any{}},
	}

	summary := summaryFor(t, field, responses)

	want := []OptionCount{{"go", 2}, {"rust", 1}}
	if !reflect.DeepEqual(summary.Counts, want) {
		t.Errorf("expected %v, got %v", want, summary.Counts)
	}
	if summary.Responses != 2 {
		t.Errorf("expected 2 responses, got %d", summary.Responses)
	}
}

func TestSummarize_RankedMatrix(t *testing.T) {
	field := schema.FieldDefinition{
		Type: schema.TypeMultiSelect, Label: "Candidates", Key: "vote",
		IsRanked: true,
		Options:  []string{"A", "B"},
	}
	responses := []schema.Answers{
		{"vote": []any{"A", "B", "C"}},
		{"vote": []string{"B", "A"}},
	}

	summary := summaryFor(t, field, responses)

	if summary.MaxRank != 3 {
		t.Fatalf("expected max rank 3, got %d", summary.MaxRank)
	}
	want := []RankRow{
		{Option: "A", Counts: []int{1, 1, 0}},
		{Option: "B", Counts: []int{1, 1, 0}},
		{Option: "C", Counts: []int{0, 0, 1}},
	}
	if !reflect.DeepEqual(summary.RankMatrix, want) {
		t.Errorf("expected %v, got %v", want, summary.RankMatrix)
	}
}

func TestSummarize_RankedMatrixWithoutBallots(t *testing.T) {
	field := schema.FieldDefinition{
		Type: schema.TypeMultiSelect, Label: "Candidates", Key: "vote",
		IsRanked: true,
		Options:  []string{"A"},
	}

	summary := summaryFor(t, field, nil)
	if summary.MaxRank != 1 {
		t.Errorf("the matrix keeps one rank column before any ballots, got %d", summary.MaxRank)
	}
	if len(summary.RankMatrix) != 1 || len(summary.RankMatrix[0].Counts) != 1 {
		t.Errorf("unexpected matrix shape: %v", summary.RankMatrix)
	}
}

func TestSummarize_Boolean(t *testing.T) {
	field := schema.FieldDefinition{Type: schema.TypeBoolean, Label: "Subscribed", Key: "subscribed"}
	responses := []schema.Answers{
		{"subscribed": true},
		{"subscribed": false},
		{"subscribed": true},
		{"subscribed": "yes"},
	}

	summary := summaryFor(t, field, responses)

	want := []OptionCount{{"true", 2}, {"false", 1}}
	if !reflect.DeepEqual(summary.Counts, want) {
		t.Errorf("expected %v, got %v", want, summary.Counts)
	}
	if summary.Responses != 3 {
		t.Errorf("non-boolean answers must not count, got %d", summary.Responses)
	}
}

func TestSummarize_Rating(t *testing.T) {
	field := schema.FieldDefinition{Type: schema.TypeRating, Label: "Score", Key: "score"}
	responses := []schema.Answers{
		{"score": 1},
		{"score": float64(3)},
		{"score": "5"},
		{"score": "bad"},
		{"score": nil},
	}

	summary := summaryFor(t, field, responses)

	if summary.Responses != 3 {
		t.Fatalf("expected 3 usable values, got %d", summary.Responses)
	}
	wantCounts := []ValueCount{{1, 1}, {3, 1}, {5, 1}}
	if !reflect.DeepEqual(summary.ValueCounts, wantCounts) {
		t.Errorf("expected %v, got %v", wantCounts, summary.ValueCounts)
	}
	if summary.Mean == nil || *summary.Mean != 3 {
		t.Errorf("expected mean 3, got %v", summary.Mean)
	}
	if summary.Min == nil || *summary.Min != 1 || summary.Max == nil || *summary.Max != 5 {
		t.Errorf("expected min 1 max 5, got %v/%v", summary.Min, summary.Max)
	}
}

func TestSummarize_RatingEmpty(t *testing.T) {
	field := schema.FieldDefinition{Type: schema.TypeRating, Label: "Score", Key: "score"}

	summary := summaryFor(t, field, []schema.Answers{{"score": "not a number"}})
	if summary.Mean != nil {
		t.Errorf("mean must be absent without usable values, got %v", summary.Mean)
	}
	if summary.Responses != 0 {
		t.Errorf("expected 0 responses, got %d", summary.Responses)
	}
}

func TestSummarize_TextCountsOnly(t *testing.T) {
	field := schema.FieldDefinition{Type: schema.TypeText, Label: "Bio", Key: "bio"}
	responses := []schema.Answers{
		{"bio": "hello"},
		{"bio": ""},
		{"bio": nil},
		{},
	}

	// An empty string was still submitted, so it counts; a missing or
	// null answer does not.
	summary := summaryFor(t, field, responses)
	if summary.Responses != 2 {
		t.Errorf("expected 2 responses, got %d", summary.Responses)
	}
	if summary.Counts != nil || summary.ValueCounts != nil {
		t.Errorf("text fields carry no distributions: %+v", summary)
	}
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want float64
		ok   bool
	}{
		{"float64", 4.5, 4.5, true},
		{"int", 3, 3, true},
		{"numeric string", "2.5", 2.5, true},
		{"garbage string", "bad", 0, false},
		{"boolean", true, 0, false},
		{"nan string", "NaN", 0, false},
		{"infinity string", "+Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceFloat(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Errorf("coerceFloat(%v) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

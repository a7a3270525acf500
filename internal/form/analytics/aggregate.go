// Package analytics computes per-field aggregates and ranked-choice
// election results over a form's submitted responses. All computation
// is pure and deterministic; the HTTP layer in internal/form exposes it.
package analytics

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"atrium/admin-backend/internal/schema"
)

// FieldSummary is the aggregate for one field over all responses.
// Which members are populated depends on the field type.
type FieldSummary struct {
	Key       string           `json:"key"`
	Label     string           `json:"label"`
	Type      schema.FieldType `json:"type"`
	Responses int              `json:"responses"`

	// select / multi_select / boolean
	Counts []OptionCount `json:"counts,omitempty"`

	// ranked multi_select
	RankMatrix []RankRow `json:"rank_matrix,omitempty"`
	MaxRank    int       `json:"max_rank,omitempty"`

	// rating
	ValueCounts []ValueCount `json:"value_counts,omitempty"`
	Mean        *float64     `json:"mean,omitempty"`
	Min         *float64     `json:"min,omitempty"`
	Max         *float64     `json:"max,omitempty"`
}

// OptionCount is one option's tally, in presentation order.
type OptionCount struct {
	Option string `json:"option"`
	Count  int    `json:"count"`
}

// RankRow is one option's per-rank tallies: Counts[r-1] is the number
// of ballots that placed the option at rank r.
type RankRow struct {
	Option string `json:"option"`
	Counts []int  `json:"counts"`
}

// ValueCount is one distinct rating value's tally.
type ValueCount struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Summarize aggregates every field of the schema over the given answer
// maps. Fields keep schema order; responses that omit a field simply do
// not contribute to it.
func Summarize(fields []schema.FieldDefinition, responses []schema.Answers) []FieldSummary {
	summaries := make([]FieldSummary, 0, len(fields))
	for _, field := range fields {
		summaries = append(summaries, summarizeField(field, responses))
	}
	return summaries
}

func summarizeField(field schema.FieldDefinition, responses []schema.Answers) FieldSummary {
	summary := FieldSummary{
		Key:   field.Key,
		Label: field.Label,
		Type:  field.Type,
	}

	switch field.Type {
	case schema.TypeSelect:
		summarizeSelect(&summary, field, responses)
	case schema.TypeMultiSelect:
		if field.IsRanked {
			summarizeRanked(&summary, field, responses)
		} else {
			summarizeMultiSelect(&summary, field, responses)
		}
	case schema.TypeBoolean:
		summarizeBoolean(&summary, field, responses)
	case schema.TypeRating:
		summarizeRating(&summary, field, responses)
	default:
		// text and email report the answered count only; a submitted
		// empty string still counts as an answer
		for _, response := range responses {
			if _, ok := response[field.Key].(string); ok {
				summary.Responses++
			}
		}
	}

	return summary
}

// summarizeSelect counts exact value matches over the union of the
// schema's options and every observed answer, schema options first so
// zero-count options still appear and stale answers are not lost.
func summarizeSelect(summary *FieldSummary, field schema.FieldDefinition, responses []schema.Answers) {
	options, seen := optionUnion(field.Options)

	values := make([]string, 0, len(responses))
	for _, response := range responses {
		value, ok := response[field.Key].(string)
		if !ok || value == "" {
			continue
		}
		summary.Responses++
		values = append(values, value)
		if !seen[value] {
			seen[value] = true
			options = append(options, value)
		}
	}

	summary.Counts = make([]OptionCount, len(options))
	for i, option := range options {
		count := 0
		for _, value := range values {
			if value == option {
				count++
			}
		}
		summary.Counts[i] = OptionCount{Option: option, Count: count}
	}
}

func summarizeMultiSelect(summary *FieldSummary, field schema.FieldDefinition, responses []schema.Answers) {
	options, seen := optionUnion(field.Options)

	selections := make([][]string, 0, len(responses))
	for _, response := range responses {
		values := stringSlice(response[field.Key])
		if len(values) == 0 {
			continue
		}
		summary.Responses++
		selections = append(selections, values)
		for _, value := range values {
			if !seen[value] {
				seen[value] = true
				options = append(options, value)
			}
		}
	}

	summary.Counts = make([]OptionCount, len(options))
	for i, option := range options {
		count := 0
		for _, values := range selections {
			for _, value := range values {
				if value == option {
					count++
					break
				}
			}
		}
		summary.Counts[i] = OptionCount{Option: option, Count: count}
	}
}

// summarizeRanked builds the option-by-rank matrix: rank columns run
// from 1 to the longest submitted ballot, with at least one column so
// the table renders even before any ballots arrive.
func summarizeRanked(summary *FieldSummary, field schema.FieldDefinition, responses []schema.Answers) {
	options, seen := optionUnion(field.Options)

	ballots := make([][]string, 0, len(responses))
	maxRank := 1
	for _, response := range responses {
		ballot := stringSlice(response[field.Key])
		if len(ballot) == 0 {
			continue
		}
		summary.Responses++
		ballots = append(ballots, ballot)
		if len(ballot) > maxRank {
			maxRank = len(ballot)
		}
		for _, value := range ballot {
			if !seen[value] {
				seen[value] = true
				options = append(options, value)
			}
		}
	}

	summary.MaxRank = maxRank
	summary.RankMatrix = make([]RankRow, len(options))
	for i, option := range options {
		counts := make([]int, maxRank)
		for _, ballot := range ballots {
			for rank, value := range ballot {
				if value == option {
					counts[rank]++
					break
				}
			}
		}
		summary.RankMatrix[i] = RankRow{Option: option, Counts: counts}
	}
}

func summarizeBoolean(summary *FieldSummary, field schema.FieldDefinition, responses []schema.Answers) {
	trueCount, falseCount := 0, 0
	for _, response := range responses {
		value, ok := response[field.Key].(bool)
		if !ok {
			continue
		}
		summary.Responses++
		if value {
			trueCount++
		} else {
			falseCount++
		}
	}
	summary.Counts = []OptionCount{
		{Option: "true", Count: trueCount},
		{Option: "false", Count: falseCount},
	}
}

func summarizeRating(summary *FieldSummary, field schema.FieldDefinition, responses []schema.Answers) {
	values := make([]float64, 0, len(responses))
	for _, response := range responses {
		raw, ok := response[field.Key]
		if !ok || raw == nil {
			continue
		}
		value, ok := coerceFloat(raw)
		if !ok {
			continue
		}
		summary.Responses++
		values = append(values, value)
	}

	if len(values) == 0 {
		summary.ValueCounts = []ValueCount{}
		return
	}

	counts := make(map[float64]int, len(values))
	sum := 0.0
	min, max := values[0], values[0]
	for _, value := range values {
		counts[value]++
		sum += value
		if value < min {
			min = value
		}
		if value > max {
			max = value
		}
	}

	distinct := make([]float64, 0, len(counts))
	for value := range counts {
		distinct = append(distinct, value)
	}
	sort.Float64s(distinct)

	summary.ValueCounts = make([]ValueCount, len(distinct))
	for i, value := range distinct {
		summary.ValueCounts[i] = ValueCount{Value: value, Count: counts[value]}
	}

	mean := sum / float64(len(values))
	summary.Mean = &mean
	summary.Min = &min
	summary.Max = &max
}

// coerceFloat accepts the numeric shapes a JSON answer can arrive in.
// Strings are parsed so "4" counts while "bad" is discarded; NaN and
// infinities are discarded outright.
func coerceFloat(raw any) (float64, bool) {
	var value float64
	switch v := raw.(type) {
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		value = parsed
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		value = parsed
	default:
		return 0, false
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// stringSlice flattens the array shapes a multi_select answer can take
// after a JSON round trip.
func stringSlice(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		values := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
		return values
	default:
		return nil
	}
}

// optionUnion seeds the presentation order with the schema's options
// and returns the membership set used to append observed stragglers.
func optionUnion(schemaOptions []string) ([]string, map[string]bool) {
	options := make([]string, 0, len(schemaOptions))
	seen := make(map[string]bool, len(schemaOptions))
	for _, option := range schemaOptions {
		if seen[option] {
			continue
		}
		seen[option] = true
		options = append(options, option)
	}
	return options, seen
}

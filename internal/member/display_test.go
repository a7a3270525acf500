package member

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	testCases := []struct {
		name     string
		member   Member
		expected string
	}{
		{
			name:     "full name wins",
			member:   Member{FullName: "Ada Lovelace", FirstName: text("Grace"), LastName: text("Hopper")},
			expected: "Ada Lovelace",
		},
		{
			name:     "full name trimmed",
			member:   Member{FullName: "  Ada Lovelace  "},
			expected: "Ada Lovelace",
		},
		{
			name:     "falls back to first and last",
			member:   Member{FirstName: text("Grace"), LastName: text("Hopper")},
			expected: "Grace Hopper",
		},
		{
			name:     "first name only",
			member:   Member{FirstName: text("Grace")},
			expected: "Grace",
		},
		{
			name:     "last name only",
			member:   Member{LastName: text("Hopper")},
			expected: "Hopper",
		},
		{
			name:     "nothing set",
			member:   Member{},
			expected: "Unknown",
		},
		{
			name:     "whitespace only",
			member:   Member{FullName: "   ", FirstName: text("  ")},
			expected: "Unknown",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, DisplayName(tc.member))
		})
	}
}

func TestInitials(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "two words", input: "Ada Lovelace", expected: "AL"},
		{name: "single word", input: "Ada", expected: "A"},
		{name: "more than two words truncated", input: "Ada King Lovelace", expected: "AK"},
		{name: "lowercase uppercased", input: "ada lovelace", expected: "AL"},
		{name: "multibyte name", input: "å 張", expected: "Å張"},
		{name: "unknown placeholder", input: "Unknown", expected: "?"},
		{name: "empty", input: "", expected: "?"},
		{name: "whitespace", input: "   ", expected: "?"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Initials(tc.input))
		})
	}
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

package member

import "strings"

// DisplayName resolves the name shown for a member: the stored full
// name, else first plus last name, else "Unknown".
func DisplayName(m Member) string {
	if name := strings.TrimSpace(m.FullName); name != "" {
		return name
	}

	first := strings.TrimSpace(m.FirstName.String)
	last := strings.TrimSpace(m.LastName.String)
	if combined := strings.TrimSpace(first + " " + last); combined != "" {
		return combined
	}

	return "Unknown"
}

// Initials derives the avatar fallback from a display name: the first
// letters of the first two words, uppercased, "?" when the name is
// unknown.
func Initials(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed == "Unknown" {
		return "?"
	}

	parts := strings.Fields(trimmed)
	if len(parts) > 2 {
		parts = parts[:2]
	}

	var initials strings.Builder
	for _, part := range parts {
		first := []rune(part)[0]
		initials.WriteString(strings.ToUpper(string(first)))
	}
	return initials.String()
}

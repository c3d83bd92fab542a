package types

import "strings"

// ParseSkills splits a comma-separated skills string into an ordered list.
// Entries are trimmed, empty entries are dropped and case-insensitive
// duplicates keep their first occurrence.
func ParseSkills(input string) []string {
	parts := strings.Split(input, ",")
	skills := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		skill := strings.TrimSpace(part)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, skill)
	}

	return skills
}

// JoinSkills renders a skills list back into the comma-separated input form.
func JoinSkills(skills []string) string {
	return strings.Join(skills, ", ")
}

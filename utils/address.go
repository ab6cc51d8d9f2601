package utils

import "strings"

// JoinAddress flattens address parts into a single display line, skipping
// blank parts. "75001" and "Paris" given together render as "75001 Paris".
func JoinAddress(line1, line2, postalCode, city, state, country string) string {
	locality := strings.TrimSpace(strings.TrimSpace(postalCode) + " " + strings.TrimSpace(city))

	parts := make([]string, 0, 5)
	for _, p := range []string{line1, line2, locality, state, country} {
		if t := strings.TrimSpace(p); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ", ")
}

package logging

import "strings"

// FormatSubject builds the "Court N / Home vs Away" subject shown on console lines.
func FormatSubject(court, game string) string {
	court = strings.TrimSpace(court)
	game = strings.TrimSpace(game)
	parts := make([]string, 0, 2)
	if court != "" {
		parts = append(parts, "Court "+court)
	}
	if game != "" {
		parts = append(parts, game)
	}
	return strings.Join(parts, " / ")
}

package schedule

import (
	"fmt"
	"strings"

	"tourneyreel/internal/services"
)

// Game is one scheduled game on one court.
type Game struct {
	HomeTeam  string
	AwayTeam  string
	Round     string
	Subround  string
	Court     string
	StartTime string
	HomeScore *string
	AwayScore *string
	HomeLogo  string
	AwayLogo  string
	// Bracket is true for playoff games read from a bracket sheet.
	Bracket bool
}

// Label renders "Home vs Away".
func (g Game) Label() string {
	return g.HomeTeam + " vs " + g.AwayTeam
}

// Schedule holds the round-robin games of every court in play order.
type Schedule struct {
	Courts map[string][]Game
}

// CourtName returns the column heading used for court n.
func CourtName(n int) string {
	return fmt.Sprintf("Court %d", n)
}

// CourtNames returns the headings for courts 1..count.
func CourtNames(count int) []string {
	names := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		names = append(names, CourtName(i))
	}
	return names
}

// Court returns the games for court n.
func (s Schedule) Court(n int) ([]Game, error) {
	games, ok := s.Courts[CourtName(n)]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "schedule", "select court",
			fmt.Sprintf("%s is not in the schedule", CourtName(n)), nil)
	}
	return games, nil
}

// Validate checks the fields every downstream stage relies on.
func Validate(game Game) error {
	var missing []string
	if strings.TrimSpace(game.HomeTeam) == "" {
		missing = append(missing, "home team")
	}
	if strings.TrimSpace(game.AwayTeam) == "" {
		missing = append(missing, "away team")
	}
	if strings.TrimSpace(game.Round) == "" {
		missing = append(missing, "round")
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrValidation, "schedule", "validate game",
			fmt.Sprintf("%s: missing %s", describe(game), strings.Join(missing, ", ")), nil)
	}
	return nil
}

func describe(game Game) string {
	parts := make([]string, 0, 3)
	if game.Court != "" {
		parts = append(parts, game.Court)
	}
	if game.Round != "" {
		parts = append(parts, "round "+game.Round)
	}
	parts = append(parts, fmt.Sprintf("%q vs %q", game.HomeTeam, game.AwayTeam))
	return strings.Join(parts, " ")
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

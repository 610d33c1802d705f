package schedule

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"tourneyreel/internal/services"
	"tourneyreel/internal/textutil"
)

const (
	columnBracketRound = "Round"
	columnSubround     = "Subround"
	columnCourt        = "Court"
	columnHomeTeam     = "Home Team"
	columnAwayTeam     = "Away Team"
	columnHomeScore    = "Home Score"
	columnAwayScore    = "Away Score"
)

// ParseBracket reads a playoff bracket sheet with one game per row.
func ParseBracket(r io.Reader) ([]Game, error) {
	const operation = "parse bracket"
	t, err := readTable(r, operation)
	if err != nil {
		return nil, err
	}
	if err := t.require(operation, columnBracketRound, columnSubround, columnCourt, columnHomeTeam, columnAwayTeam); err != nil {
		return nil, err
	}

	games := make([]Game, 0, len(t.rows))
	for _, row := range t.rows {
		if blank(row) {
			continue
		}
		game := Game{
			HomeTeam:  t.cell(row, columnHomeTeam),
			AwayTeam:  t.cell(row, columnAwayTeam),
			Round:     t.cell(row, columnBracketRound),
			Subround:  t.cell(row, columnSubround),
			Court:     t.cell(row, columnCourt),
			StartTime: t.cell(row, columnStartTime),
			HomeScore: optional(t.cell(row, columnHomeScore)),
			AwayScore: optional(t.cell(row, columnAwayScore)),
			Bracket:   true,
		}
		if err := Validate(game); err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}

// OrderBracket returns the games played on court, sorted by roundOrder and
// then by subround. Court labels are compared trimmed and case-insensitively
// because bracket sheets are typed by hand.
func OrderBracket(games []Game, court string, roundOrder []string) ([]Game, error) {
	want := strings.ToLower(strings.TrimSpace(court))
	order := make([]string, len(roundOrder))
	for i, round := range roundOrder {
		order[i] = strings.ToLower(strings.TrimSpace(round))
	}

	selected := make([]Game, 0, len(games))
	rank := make(map[int]int, len(games))
	for _, game := range games {
		if strings.ToLower(strings.TrimSpace(game.Court)) != want {
			continue
		}
		idx := slices.Index(order, strings.ToLower(game.Round))
		if idx < 0 {
			return nil, services.Wrap(services.ErrValidation, "schedule", "order bracket",
				fmt.Sprintf("round %q is not in the configured round order %v", game.Round, roundOrder), nil)
		}
		game.Court = textutil.TitleCase(game.Court)
		rank[len(selected)] = idx
		selected = append(selected, game)
	}

	indices := make([]int, len(selected))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		ia, ib := indices[a], indices[b]
		if rank[ia] != rank[ib] {
			return rank[ia] < rank[ib]
		}
		return strings.ToLower(selected[ia].Subround) < strings.ToLower(selected[ib].Subround)
	})
	ordered := make([]Game, len(selected))
	for i, idx := range indices {
		ordered[i] = selected[idx]
	}
	return ordered, nil
}

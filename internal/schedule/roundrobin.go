package schedule

import (
	"fmt"
	"io"

	"tourneyreel/internal/services"
)

const (
	columnRound     = "Round #"
	columnStartTime = "Start Time"
)

// ParseRoundRobin reads the round-robin sheet. Rows come in blocks of three
// per round: the home team row, the away team row, and the referee row,
// which is ignored. Each court has its own column. A court left empty for a
// round has no game in that round.
func ParseRoundRobin(r io.Reader, courts []string) (Schedule, error) {
	const operation = "parse round robin"
	t, err := readTable(r, operation)
	if err != nil {
		return Schedule{}, err
	}
	if err := t.require(operation, append([]string{columnRound, columnStartTime}, courts...)...); err != nil {
		return Schedule{}, err
	}

	sched := Schedule{Courts: make(map[string][]Game, len(courts))}
	for _, court := range courts {
		sched.Courts[court] = []Game{}
	}
	for i := 0; i < len(t.rows); i += 3 {
		if i+1 >= len(t.rows) {
			return Schedule{}, services.Wrap(services.ErrValidation, "schedule", operation,
				fmt.Sprintf("row %d starts a round with no away team row", i+2), nil)
		}
		home, away := t.rows[i], t.rows[i+1]
		round := t.cell(home, columnRound)
		start := t.cell(home, columnStartTime)
		for _, court := range courts {
			game := Game{
				HomeTeam:  t.cell(home, court),
				AwayTeam:  t.cell(away, court),
				Round:     round,
				Court:     court,
				StartTime: start,
			}
			if game.HomeTeam == "" && game.AwayTeam == "" {
				continue
			}
			if err := Validate(game); err != nil {
				return Schedule{}, err
			}
			sched.Courts[court] = append(sched.Courts[court], game)
		}
	}
	return sched, nil
}

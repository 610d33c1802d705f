package schedule

import (
	"bytes"
	"context"
)

// LoadOptions select the games of one court.
type LoadOptions struct {
	Court      int
	Courts     int
	Bracket    bool
	RoundOrder []string
}

// Load fetches src and returns the games of opts.Court in play order.
func Load(ctx context.Context, src Source, opts LoadOptions) ([]Game, error) {
	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Bracket {
		games, err := ParseBracket(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return OrderBracket(games, CourtName(opts.Court), opts.RoundOrder)
	}

	courts := opts.Courts
	if courts < opts.Court {
		courts = opts.Court
	}
	sched, err := ParseRoundRobin(bytes.NewReader(data), CourtNames(courts))
	if err != nil {
		return nil, err
	}
	return sched.Court(opts.Court)
}

package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"tourneyreel/internal/schedule"
	"tourneyreel/internal/services"
)

// FileName is the hand-off file written next to the organized parts.
const FileName = "metadata.json"

// Entry is one matched game as persisted in metadata.json. Field names are
// shared with the editing tools that consume the file.
type Entry struct {
	HomeTeam    string   `json:"home_team"`
	AwayTeam    string   `json:"away_team"`
	VideoPath   []string `json:"video_path"`
	HomeScore   *string  `json:"home_team_score"`
	AwayScore   *string  `json:"away_team_score"`
	Round       string   `json:"round"`
	StartTime   string   `json:"start_time"`
	HomeLogo    *string  `json:"home_team_logo_path"`
	AwayLogo    *string  `json:"away_team_logo_path"`
	TrimTime    float64  `json:"trim_time,omitempty"`
	EndTrimTime float64  `json:"end_trim_time,omitempty"`
	Court       string   `json:"court,omitempty"`
	Subround    string   `json:"subround,omitempty"`
	Bracket     bool     `json:"bracket,omitempty"`
}

// Label renders "Home vs Away".
func (e Entry) Label() string {
	return e.HomeTeam + " vs " + e.AwayTeam
}

// Validate checks an entry read back from disk.
func (e Entry) Validate() error {
	var problems []string
	if strings.TrimSpace(e.HomeTeam) == "" {
		problems = append(problems, "home_team is empty")
	}
	if strings.TrimSpace(e.AwayTeam) == "" {
		problems = append(problems, "away_team is empty")
	}
	if len(e.VideoPath) == 0 {
		problems = append(problems, "video_path is empty")
	}
	for i, path := range e.VideoPath {
		if strings.TrimSpace(path) == "" {
			problems = append(problems, fmt.Sprintf("video_path[%d] is empty", i))
		}
	}
	if e.TrimTime < 0 {
		problems = append(problems, "trim_time is negative")
	}
	if e.EndTrimTime < 0 {
		problems = append(problems, "end_trim_time is negative")
	}
	if len(problems) > 0 {
		return services.Wrap(services.ErrValidation, "metadata", "validate", e.Label()+": "+strings.Join(problems, "; "), nil)
	}
	return nil
}

// Game converts the entry back into a schedule record.
func (e Entry) Game() schedule.Game {
	return schedule.Game{
		HomeTeam:  e.HomeTeam,
		AwayTeam:  e.AwayTeam,
		Round:     e.Round,
		Subround:  e.Subround,
		Court:     e.Court,
		StartTime: e.StartTime,
		HomeScore: e.HomeScore,
		AwayScore: e.AwayScore,
		HomeLogo:  deref(e.HomeLogo),
		AwayLogo:  deref(e.AwayLogo),
		Bracket:   e.Bracket,
	}
}

// NewEntry builds an entry for game with its organized part paths.
func NewEntry(game schedule.Game, paths []string) Entry {
	return Entry{
		HomeTeam:  game.HomeTeam,
		AwayTeam:  game.AwayTeam,
		VideoPath: append([]string(nil), paths...),
		HomeScore: game.HomeScore,
		AwayScore: game.AwayScore,
		Round:     game.Round,
		StartTime: game.StartTime,
		HomeLogo:  ref(game.HomeLogo),
		AwayLogo:  ref(game.AwayLogo),
		Court:     game.Court,
		Subround:  game.Subround,
		Bracket:   game.Bracket,
	}
}

// FromMatched pairs matched games with their part paths.
func FromMatched(games []schedule.Game, paths [][]string) ([]Entry, error) {
	if len(games) != len(paths) {
		return nil, services.Wrap(services.ErrValidation, "metadata", "build entries",
			fmt.Sprintf("%d games but %d path lists", len(games), len(paths)), nil)
	}
	entries := make([]Entry, len(games))
	for i, game := range games {
		entries[i] = NewEntry(game, paths[i])
	}
	return entries, nil
}

// Write atomically replaces path with entries encoded as a JSON array.
func Write(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrValidation, "metadata", "encode", path, err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "metadata", "create directory", filepath.Dir(path), err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "metadata", "write", path, err)
	}
	return nil
}

// Read decodes and validates a metadata file. Unknown fields are rejected so
// hand-edited typos such as "trim_tme" surface instead of being ignored.
func Read(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "metadata", "read", path, err)
		}
		return nil, services.Wrap(services.ErrValidation, "metadata", "read", path, err)
	}
	return Decode(bytes.NewReader(data), path)
}

// Decode parses metadata from r; name labels errors.
func Decode(r io.Reader, name string) ([]Entry, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	var entries []Entry
	if err := decoder.Decode(&entries); err != nil {
		return nil, services.Wrap(services.ErrValidation, "metadata", "decode", name, err)
	}
	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("%s entry %d: %w", name, i, err)
		}
	}
	return entries, nil
}

func ref(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

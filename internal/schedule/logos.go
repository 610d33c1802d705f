package schedule

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"tourneyreel/internal/services"
	"tourneyreel/internal/textutil"
)

var logoExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

// LogoResolver finds a team's logo image by fuzzy-matching the team name
// against image file names in a directory.
type LogoResolver struct {
	slugs []string
	paths map[string]string
}

// NewLogoResolver indexes the images in dir. An empty dir yields a resolver
// that never matches.
func NewLogoResolver(dir string) (*LogoResolver, error) {
	r := &LogoResolver{paths: map[string]string{}}
	if strings.TrimSpace(dir) == "" {
		return r, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "schedule", "index logos", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !logoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		slug := logoSlug(stem)
		if _, dup := r.paths[slug]; dup || slug == "" {
			continue
		}
		r.paths[slug] = filepath.Join(dir, entry.Name())
		r.slugs = append(r.slugs, slug)
	}
	sort.Strings(r.slugs)
	return r, nil
}

// Resolve returns the best logo for team. An exact slug match wins;
// otherwise the closest fuzzy match by edit distance.
func (r *LogoResolver) Resolve(team string) (string, bool) {
	if r == nil || len(r.slugs) == 0 {
		return "", false
	}
	slug := logoSlug(team)
	if slug == "" {
		return "", false
	}
	if path, ok := r.paths[slug]; ok {
		return path, true
	}
	ranks := fuzzy.RankFindNormalizedFold(slug, r.slugs)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return r.paths[ranks[0].Target], true
	}

	// Logo files are often named with a shortened team name ("dogs.png").
	best, bestDistance := "", -1
	for _, candidate := range r.slugs {
		if len(candidate) < 3 || !fuzzy.MatchNormalizedFold(candidate, slug) {
			continue
		}
		distance := fuzzy.LevenshteinDistance(candidate, slug)
		if bestDistance < 0 || distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	if best == "" {
		return "", false
	}
	return r.paths[best], true
}

// Apply fills HomeLogo and AwayLogo on games that do not already carry one.
func (r *LogoResolver) Apply(games []Game) {
	for i := range games {
		if games[i].HomeLogo == "" {
			games[i].HomeLogo, _ = r.Resolve(games[i].HomeTeam)
		}
		if games[i].AwayLogo == "" {
			games[i].AwayLogo, _ = r.Resolve(games[i].AwayTeam)
		}
	}
}

func logoSlug(name string) string {
	slug := textutil.TeamSlug(strings.NewReplacer("-", "", "_", "", ".", "").Replace(name))
	return strings.ReplaceAll(slug, "_", "")
}

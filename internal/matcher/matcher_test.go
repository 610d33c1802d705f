package matcher_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tourneyreel/internal/matcher"
	"tourneyreel/internal/recording"
	"tourneyreel/internal/schedule"
	"tourneyreel/internal/services"
)

func files(t *testing.T, names ...string) []recording.File {
	t.Helper()
	out := make([]recording.File, 0, len(names))
	for _, name := range names {
		f := recording.File{Name: name, Path: "/rec/" + name}
		if seq, err := recording.ParseName(name); err == nil {
			f.Seq = seq
			f.Parsed = true
		}
		out = append(out, f)
	}
	return out
}

func groupNames(groups []matcher.Group) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		out[i] = g.Names()
	}
	return out
}

type fakeProber struct {
	durations map[string]float64
	fail      map[string]error
	calls     []string
}

func (p *fakeProber) Duration(_ context.Context, path string) (float64, error) {
	p.calls = append(p.calls, path)
	if err := p.fail[path]; err != nil {
		return 0, err
	}
	return p.durations[path], nil
}

func games(labels ...string) []schedule.Game {
	out := make([]schedule.Game, len(labels))
	for i, label := range labels {
		out[i] = schedule.Game{HomeTeam: label, AwayTeam: label + " Opp", Round: "1"}
	}
	return out
}

func TestPartitionByCounter(t *testing.T) {
	in := files(t, "GX010343.MP4", "GX020343.MP4", "GX030343.MP4", "GX010344.MP4", "GX010345.MP4", "GX020345.MP4")
	got := groupNames(matcher.Partition(in, nil))
	want := [][]string{
		{"GX010343.MP4", "GX020343.MP4", "GX030343.MP4"},
		{"GX010344.MP4"},
		{"GX010345.MP4", "GX020345.MP4"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected groups (-want +got):\n%s", diff)
	}

	var flattened []string
	for _, g := range got {
		flattened = append(flattened, g...)
	}
	var original []string
	for _, f := range in {
		original = append(original, f.Name)
	}
	if !slices.Equal(flattened, original) {
		t.Fatalf("partition must preserve order: %v vs %v", flattened, original)
	}
}

func TestPartitionUnparsedNamesStandAlone(t *testing.T) {
	in := files(t, "GX010343.MP4", "clip.mp4", "other.mp4", "GX020343.MP4")
	got := groupNames(matcher.Partition(in, nil))
	want := [][]string{{"GX010343.MP4"}, {"clip.mp4"}, {"other.mp4"}, {"GX020343.MP4"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected groups (-want +got):\n%s", diff)
	}
}

func TestPartitionSplitsAtBoundaryMarker(t *testing.T) {
	in := files(t, "GX010343.MP4", "GX020343.MP4", "GX030343.MP4", "GX010344.MP4")
	without := matcher.Partition(in, nil)
	with := matcher.Partition(in, []string{"GX020343.MP4"})

	if len(with) != len(without)+1 {
		t.Fatalf("marker should add exactly one group: %v -> %v", groupNames(without), groupNames(with))
	}
	want := [][]string{
		{"GX010343.MP4", "GX020343.MP4"},
		{"GX020343.MP4", "GX030343.MP4"},
		{"GX010344.MP4"},
	}
	if diff := cmp.Diff(want, groupNames(with)); diff != "" {
		t.Fatalf("unexpected groups (-want +got):\n%s", diff)
	}
}

func TestFilterDropsOnlyShortSingles(t *testing.T) {
	groups := matcher.Partition(files(t, "GX010001.MP4", "GX010002.MP4", "GX020002.MP4", "GX010003.MP4"), nil)
	prober := &fakeProber{durations: map[string]float64{
		"/rec/GX010001.MP4": 42,
		"/rec/GX010002.MP4": 1500,
		"/rec/GX020002.MP4": 12,
		"/rec/GX010003.MP4": 300,
	}}
	kept, dropped, err := matcher.Filter(context.Background(), groups, prober, matcher.DefaultMinDuration)
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if diff := cmp.Diff([][]string{{"GX010002.MP4", "GX020002.MP4"}, {"GX010003.MP4"}}, groupNames(kept)); diff != "" {
		t.Fatalf("unexpected kept groups (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"GX010001.MP4"}}, groupNames(dropped)); diff != "" {
		t.Fatalf("unexpected dropped groups (-want +got):\n%s", diff)
	}
	for _, call := range prober.calls {
		if call == "/rec/GX010002.MP4" || call == "/rec/GX020002.MP4" {
			t.Fatalf("multi-file group should not be probed, saw %s", call)
		}
	}
}

func TestFilterPropagatesProbeErrors(t *testing.T) {
	groups := matcher.Partition(files(t, "GX010001.MP4"), nil)
	probeErr := services.Wrap(services.ErrExternalTool, "ffprobe", "duration", "GX010001.MP4", nil)
	prober := &fakeProber{fail: map[string]error{"/rec/GX010001.MP4": probeErr}}
	if _, _, err := matcher.Filter(context.Background(), groups, prober, matcher.DefaultMinDuration); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected probe error, got %v", err)
	}
}

func TestMatchSkipsMissedScheduleIndices(t *testing.T) {
	groups := matcher.Partition(files(t, "GX010001.MP4", "GX010002.MP4"), nil)
	result := matcher.Match(groups, games("A", "B", "C"), []int{1})

	if len(result.Games) != 2 {
		t.Fatalf("expected two matches, got %#v", result.Games)
	}
	if result.Games[0].Game.HomeTeam != "A" || result.Games[0].Group.Files[0].Name != "GX010001.MP4" {
		t.Fatalf("group 1 should map to A: %#v", result.Games[0])
	}
	if result.Games[1].Game.HomeTeam != "C" || result.Games[1].Index != 2 || result.Games[1].Group.Files[0].Name != "GX010002.MP4" {
		t.Fatalf("group 2 should map to C: %#v", result.Games[1])
	}
	for _, m := range result.Games {
		if m.Game.HomeTeam == "B" {
			t.Fatal("B must not receive a group")
		}
	}
	if !slices.Equal(result.Skipped, []int{1}) || len(result.Unrecorded) != 0 || len(result.Surplus) != 0 {
		t.Fatalf("unexpected bookkeeping: %#v", result)
	}
}

func TestMatchReportsSurplusAndUnrecorded(t *testing.T) {
	groups := matcher.Partition(files(t, "GX010001.MP4", "GX010002.MP4", "GX010003.MP4"), nil)

	surplus := matcher.Match(groups, games("A", "B"), nil)
	if len(surplus.Games) != 2 || len(surplus.Surplus) != 1 || surplus.Surplus[0].Files[0].Name != "GX010003.MP4" {
		t.Fatalf("expected one surplus group after two matches: %#v", surplus)
	}

	short := matcher.Match(groups[:1], games("A", "B", "C"), []int{2})
	if len(short.Games) != 1 || !slices.Equal(short.Unrecorded, []int{1}) || !slices.Equal(short.Skipped, []int{2}) {
		t.Fatalf("unexpected result: %#v", short)
	}

	if got := len(surplus.Games) + len(surplus.Surplus); got != len(groups) {
		t.Fatalf("every group must be matched or surplus, got %d of %d", got, len(groups))
	}
	if got := len(short.Games) + len(short.Skipped) + len(short.Unrecorded); got != 3 {
		t.Fatalf("every game must be matched, skipped, or unrecorded, got %d", got)
	}
}

func TestRunComposesSteps(t *testing.T) {
	in := files(t, "GX010001.MP4", "GX010002.MP4", "GX020002.MP4", "GX030002.MP4", "GX010003.MP4")
	prober := &fakeProber{durations: map[string]float64{
		"/rec/GX010001.MP4": 1600,
		"/rec/GX010003.MP4": 20,
	}}
	result, err := matcher.Run(context.Background(), in, games("A", "B", "C"), prober, matcher.Options{
		MinDuration:     5 * time.Minute,
		BoundaryMarkers: []string{"GX020002.MP4"},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	got := make(map[string][]string, len(result.Games))
	for _, m := range result.Games {
		got[m.Game.HomeTeam] = m.Group.Names()
	}
	want := map[string][]string{
		"A": {"GX010001.MP4"},
		"B": {"GX010002.MP4", "GX020002.MP4"},
		"C": {"GX020002.MP4", "GX030002.MP4"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected matches (-want +got):\n%s", diff)
	}
	if len(result.Dropped) != 1 || result.Dropped[0].Files[0].Name != "GX010003.MP4" {
		t.Fatalf("expected trailing false start dropped: %#v", result.Dropped)
	}
}

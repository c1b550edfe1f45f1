package tracker

import (
	"math"
	"regexp"
	"testing"

	"github.com/Robogera/track/pkg/assoc"
	"github.com/Robogera/track/pkg/detection"
	"github.com/Robogera/track/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person(box geom.Box) detection.Observation {
	return detection.Observation{Box: box, Label: "person", Confidence: 0.9}
}

func newTracker(t *testing.T, modify func(cfg *Config)) *Tracker {
	t.Helper()
	cfg := DefaultConfig()
	if modify != nil {
		modify(&cfg)
	}
	tr, err := New(cfg, nil)
	require.NoError(t, err)
	return tr
}

func ids(snapshots []Snapshot) []uint64 {
	out := make([]uint64, len(snapshots))
	for i, s := range snapshots {
		out[i] = s.ID
	}
	return out
}

func assertBox(t *testing.T, expected, actual geom.Box, delta float64) {
	t.Helper()
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], delta, "coordinate %d of %v", i, actual)
	}
}

func TestSingleObjectLifecycle(t *testing.T) {
	tr := newTracker(t, nil)

	// first frame is within the bootstrap window
	out := tr.Update([]detection.Observation{person(geom.Box{10, 10, 50, 50})})
	require.Len(t, out, 1)
	assert.Equal(t, uint64(0), out[0].ID)
	assert.Equal(t, "person", out[0].Label)
	assert.Equal(t, 0.9, out[0].Confidence)
	assert.Equal(t, 0, out[0].Hits)
	assert.Equal(t, 0, out[0].TimeSinceUpdate)
	assertBox(t, geom.Box{10, 10, 50, 50}, out[0].Box, 1e-9)

	for frame := 2; frame <= 4; frame++ {
		shift := float64(frame - 1)
		box := geom.Box{10 + shift, 10 + shift, 50 + shift, 50 + shift}
		out = tr.Update([]detection.Observation{person(box)})
		require.Len(t, out, 1, "frame %d", frame)
		assert.Equal(t, uint64(0), out[0].ID)
		assert.Equal(t, frame-1, out[0].Hits)
		assert.Equal(t, frame-1, out[0].HitStreak)
		assert.Equal(t, 0, out[0].TimeSinceUpdate)
		assertBox(t, box, out[0].Box, 1.0)
	}

	// coasting for one frame is still reported under max_age = 1
	out = tr.Update(nil)
	require.Len(t, out, 1)
	assert.Equal(t, uint64(0), out[0].ID)
	assert.Equal(t, 1, out[0].TimeSinceUpdate)
	assert.Equal(t, 3, out[0].Hits)

	out = tr.Update(nil)
	assert.Empty(t, out)
	assert.Equal(t, 0, tr.Live())
	assert.Equal(t, 1, tr.Report().Deleted)
	assert.IsType(t, TrackStatusDeletedStale{}, tr.Report().Statuses[0])
}

func TestDisjointObservationsSpawnDistinctTracks(t *testing.T) {
	tr := newTracker(t, nil)
	out := tr.Update([]detection.Observation{
		person(geom.Box{0, 0, 100, 100}),
		person(geom.Box{200, 200, 300, 300}),
	})
	// newest first
	assert.Equal(t, []uint64{1, 0}, ids(out))
	assert.Equal(t, 2, tr.Report().Created)

	out = tr.Update([]detection.Observation{
		person(geom.Box{200, 200, 300, 300}),
		person(geom.Box{0, 0, 100, 100}),
	})
	assert.Equal(t, []uint64{1, 0}, ids(out))
	assert.Equal(t, 2, tr.Report().Matched)
	assertBox(t, geom.Box{0, 0, 100, 100}, out[1].Box, 1.0)
	assertBox(t, geom.Box{200, 200, 300, 300}, out[0].Box, 1.0)
}

func TestOverlappingObservationsPreferHigherIoU(t *testing.T) {
	for _, solver := range []string{assoc.SolverJV, assoc.SolverMunkres} {
		t.Run(solver, func(t *testing.T) {
			tr := newTracker(t, func(cfg *Config) { cfg.Solver = solver })
			tr.Update([]detection.Observation{person(geom.Box{1, 1, 101, 101})})

			out := tr.Update([]detection.Observation{
				person(geom.Box{10, 10, 110, 110}),
				person(geom.Box{0, 0, 100, 100}),
			})
			require.Len(t, out, 2)
			assert.Equal(t, []uint64{1, 0}, ids(out))
			assertBox(t, geom.Box{0, 0, 100, 100}, out[1].Box, 1.0)
			assertBox(t, geom.Box{10, 10, 110, 110}, out[0].Box, 1e-9)

			report := tr.Report()
			assert.Equal(t, 1, report.Matched)
			assert.Equal(t, 1, report.Created)
			require.IsType(t, TrackStatusAssociated{}, report.Statuses[0])
			assert.Equal(t, 1, report.Statuses[0].(TrackStatusAssociated).obs)
		})
	}
}

func TestIdentitiesAreNeverReused(t *testing.T) {
	tr := newTracker(t, nil)
	seen := make(map[uint64]bool)
	for round := range 5 {
		box := geom.Box{float64(round) * 500, 0, float64(round)*500 + 50, 50}
		out := tr.Update([]detection.Observation{person(box)})
		for _, s := range out {
			seen[s.ID] = true
		}
		tr.Update(nil)
		tr.Update(nil)
		assert.Equal(t, 0, tr.Live())
	}
	// only the first round is within the bootstrap window,
	// the ids handed out are still strictly increasing
	out := tr.Update([]detection.Observation{person(geom.Box{0, 0, 10, 10})})
	assert.Empty(t, out)
	assert.Equal(t, TrackStatusNew{box: geom.Box{0, 0, 10, 10}, label: "person"}, tr.Report().Statuses[5])
	assert.True(t, seen[0])
}

func TestTentativeTracksAreHidden(t *testing.T) {
	tr := newTracker(t, nil)
	for range 4 {
		tr.Update(nil)
	}
	box := geom.Box{10, 10, 60, 60}
	for hits := range 4 {
		out := tr.Update([]detection.Observation{person(box)})
		if hits < 3 {
			assert.Empty(t, out, "hits %d", hits)
		} else {
			require.Len(t, out, 1)
			assert.Equal(t, 3, out[0].HitStreak)
		}
	}
}

func TestHitStreakResetsAfterCoasting(t *testing.T) {
	tr := newTracker(t, func(cfg *Config) { cfg.MaxAge = 3 })
	box := geom.Box{100, 100, 150, 200}
	for range 5 {
		tr.Update([]detection.Observation{person(box)})
	}

	// the streak survives the first missed frame
	out := tr.Update(nil)
	require.Len(t, out, 1)
	assert.Equal(t, 4, out[0].HitStreak)
	assert.Equal(t, 1, out[0].TimeSinceUpdate)

	// and is reset by the predict following it
	out = tr.Update([]detection.Observation{person(box)})
	assert.Empty(t, out)
	assert.Equal(t, 1, tr.Live())

	out = tr.Update([]detection.Observation{person(box)})
	assert.Empty(t, out)

	out = tr.Update([]detection.Observation{person(box)})
	require.Len(t, out, 1)
	assert.Equal(t, uint64(0), out[0].ID)
	assert.Equal(t, 3, out[0].HitStreak)
	assert.Equal(t, 7, out[0].Hits)
}

func TestCoastingUncertaintyGrows(t *testing.T) {
	tr := newTracker(t, func(cfg *Config) { cfg.MaxAge = 3 })
	box := geom.Box{10, 10, 60, 110}
	for range 4 {
		tr.Update([]detection.Observation{person(box)})
	}

	tr.Update(nil)
	require.IsType(t, TrackStatusCoasting{}, tr.Report().Statuses[0])
	first := tr.Report().Statuses[0].(TrackStatusCoasting)
	assert.Equal(t, 1, first.frames)
	assert.Greater(t, first.uncertainty, 0.0)

	tr.Update(nil)
	require.IsType(t, TrackStatusCoasting{}, tr.Report().Statuses[0])
	second := tr.Report().Statuses[0].(TrackStatusCoasting)
	assert.Equal(t, 2, second.frames)
	assert.Greater(t, second.uncertainty, first.uncertainty)
	assert.Contains(t, second.String(), "uncertainty")
}

func TestMaxAgeBoundary(t *testing.T) {
	tr := newTracker(t, func(cfg *Config) { cfg.MaxAge = 2 })
	box := geom.Box{0, 0, 40, 80}
	for range 4 {
		tr.Update([]detection.Observation{person(box)})
	}
	out := tr.Update(nil)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].TimeSinceUpdate)

	// still alive, but the streak is gone
	assert.Empty(t, tr.Update(nil))
	assert.Equal(t, 1, tr.Live())

	assert.Empty(t, tr.Update(nil))
	assert.Equal(t, 0, tr.Live())

	// an object reappearing after deletion gets a fresh id
	tr.Update([]detection.Observation{person(box)})
	require.IsType(t, TrackStatusNew{}, tr.Report().Statuses[1])
}

func TestEmptyFrames(t *testing.T) {
	tr := newTracker(t, nil)
	for frame := 1; frame <= 3; frame++ {
		assert.Empty(t, tr.Update(nil))
		assert.Empty(t, tr.Update([]detection.Observation{}))
	}
	assert.Equal(t, 6, tr.Frame())
	assert.Equal(t, 0, tr.Live())
}

func TestInvalidObservationsAreRejected(t *testing.T) {
	tr := newTracker(t, nil)
	out := tr.Update([]detection.Observation{
		person(geom.Box{math.NaN(), 0, 10, 10}),
		person(geom.Box{10, 0, 5, 10}),
		person(geom.Box{0, 10, 10, 10}),
		{Box: geom.Box{0, 0, 10, 10}, Label: "person", Confidence: 1.5},
		person(geom.Box{0, 0, 10, 10}),
	})
	require.Len(t, out, 1)
	assert.Equal(t, uint64(0), out[0].ID)

	report := tr.Report()
	assert.Equal(t, 5, report.Observations)
	assert.Equal(t, 4, report.Rejected)
	assert.Equal(t, 1, report.Created)
}

func TestNonFinitePredictionIsDropped(t *testing.T) {
	tr := newTracker(t, nil)
	// area overflows, the filter can not represent this box
	tr.Update([]detection.Observation{person(geom.Box{0, 0, 1e200, 1e200})})
	require.Equal(t, 1, tr.Live())

	out := tr.Update(nil)
	assert.Empty(t, out)
	assert.Equal(t, 0, tr.Live())
	assert.Equal(t, 1, tr.Report().Dropped)
	assert.IsType(t, TrackStatusDroppedNonFinite{}, tr.Report().Statuses[0])
}

func TestVelocityEstimate(t *testing.T) {
	tr := newTracker(t, func(cfg *Config) { cfg.History = 5 })
	var out []Snapshot
	for frame := range 30 {
		x := 3 * float64(frame)
		out = tr.Update([]detection.Observation{person(geom.Box{x, 20, x + 40, 100})})
	}
	require.Len(t, out, 1)
	assert.InDelta(t, 3.0, out[0].Velocity[0], 0.3)
	assert.InDelta(t, 0.0, out[0].Velocity[1], 0.3)
	assert.InDelta(t, 3.0, out[0].Speed(), 0.3)

	require.Len(t, out[0].History, 5)
	cx, cy := out[0].Box.Center()
	assert.InDelta(t, cx, out[0].History[4][0], 1e-9)
	assert.InDelta(t, cy, out[0].History[4][1], 1e-9)
	assert.Less(t, out[0].History[0][0], out[0].History[4][0])
}

func TestLabelFollowsLatestMatch(t *testing.T) {
	tr := newTracker(t, nil)
	box := geom.Box{0, 0, 30, 60}
	tr.Update([]detection.Observation{person(box)})
	out := tr.Update([]detection.Observation{{Box: box, Label: "cyclist", Confidence: 0.4}})
	require.Len(t, out, 1)
	assert.Equal(t, "cyclist", out[0].Label)
	assert.Equal(t, 0.4, out[0].Confidence)
}

func TestNewRejectsBadConfig(t *testing.T) {
	for name, modify := range map[string]func(cfg *Config){
		"max_age":       func(cfg *Config) { cfg.MaxAge = -1 },
		"min_hits":      func(cfg *Config) { cfg.MinHits = -2 },
		"iou_threshold": func(cfg *Config) { cfg.IoUThreshold = 1.2 },
		"iou_nan":       func(cfg *Config) { cfg.IoUThreshold = math.NaN() },
		"solver":        func(cfg *Config) { cfg.Solver = "greedy" },
		"history":       func(cfg *Config) { cfg.History = 0 },
		"noise":         func(cfg *Config) { cfg.Noise.MeasurementShapeVar = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			modify(&cfg)
			_, err := New(cfg, nil)
			assert.Error(t, err)
		})
	}
}

func TestIndependentTrackers(t *testing.T) {
	a := newTracker(t, nil)
	b := newTracker(t, nil)
	a.Update([]detection.Observation{person(geom.Box{0, 0, 10, 10}), person(geom.Box{50, 50, 60, 60})})
	out := b.Update([]detection.Observation{person(geom.Box{0, 0, 10, 10})})
	assert.Equal(t, []uint64{0}, ids(out))
	assert.Equal(t, 2, a.Live())
	assert.Equal(t, 1, b.Live())
}

func TestExport(t *testing.T) {
	tr := newTracker(t, nil)
	out := tr.Update([]detection.Observation{
		person(geom.Box{0, 0, 100, 100}),
		person(geom.Box{200, 200, 300, 300}),
	})
	exported := ExportAll(out)
	require.Len(t, exported, 2)

	hex_re := regexp.MustCompile(`^#[0-9a-f]{6}$`)
	for i, e := range exported {
		assert.Equal(t, out[i].ID, e.Id)
		assert.Equal(t, [4]float64(out[i].Box), e.Box)
		assert.Regexp(t, hex_re, e.Color)
		assert.Equal(t, e.Color, hex(Color(e.Id)))
	}
	assert.NotEqual(t, exported[0].Color, exported[1].Color)
}

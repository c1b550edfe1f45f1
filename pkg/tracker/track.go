package tracker

import (
	"github.com/Robogera/track/pkg/detection"
	"github.com/Robogera/track/pkg/geom"
	"github.com/Robogera/track/pkg/gring"
	"github.com/Robogera/track/pkg/kalman"
)

// Live hypothesis for a single object, owned by Tracker
type track struct {
	id                uint64
	filter            *kalman.BoxFilter
	label             string
	confidence        float64
	age               int
	hits              int
	hit_streak        int
	time_since_update int
	history           *gring.Ring[[2]float64]
}

func newTrack(id uint64, obs detection.Observation, noise kalman.Noise, history int) *track {
	return &track{
		id:         id,
		filter:     kalman.NewBoxFilter(obs.Box, noise),
		label:      obs.Label,
		confidence: obs.Confidence,
		history:    gring.NewRing[[2]float64](history),
	}
}

func (t *track) predict() geom.Box {
	box := t.filter.Predict()
	t.age++
	if t.time_since_update > 0 {
		t.hit_streak = 0
	}
	t.time_since_update++
	return box
}

// Counters are refreshed even when the correction itself fails,
// the filter then keeps its predicted state.
func (t *track) update(obs detection.Observation) error {
	t.time_since_update = 0
	t.hits++
	t.hit_streak++
	t.label = obs.Label
	t.confidence = obs.Confidence
	return t.filter.Update(obs.Box)
}

func (t *track) record() {
	cx, cy := t.filter.State().Center()
	t.history.Push([2]float64{cx, cy})
}

func (t *track) snapshot() Snapshot {
	vx, vy := t.filter.Velocity()
	return Snapshot{
		ID:              t.id,
		Box:             t.filter.State(),
		Label:           t.label,
		Confidence:      t.confidence,
		Age:             t.age,
		Hits:            t.hits,
		HitStreak:       t.hit_streak,
		TimeSinceUpdate: t.time_since_update,
		Velocity:        [2]float64{vx, vy},
		History:         t.history.Slice(),
	}
}

// Package tracker implements SORT style online multi-object tracking:
// a Kalman filter per track, IoU based optimal association and a
// tentative -> confirmed -> deleted track lifecycle.
//
// A Tracker is not safe for concurrent use. Feed it one frame at a time,
// in order. Independent streams need independent Trackers.
package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/Robogera/track/pkg/assoc"
	"github.com/Robogera/track/pkg/detection"
	"github.com/Robogera/track/pkg/geom"
	"github.com/Robogera/track/pkg/kalman"
	"github.com/Robogera/track/pkg/seq"
)

type Config struct {
	// Frames a track may go unmatched before it is deleted
	MaxAge int `toml:"max_age"`
	// Consecutive matches before a track is reported
	MinHits      int     `toml:"min_hits"`
	IoUThreshold float64 `toml:"iou_threshold"`
	// jv, munkres or hungarian (approximate)
	Solver string `toml:"solver"`
	// Number of centers kept per track
	History int          `toml:"history"`
	Noise   kalman.Noise `toml:"-"`
}

func DefaultConfig() Config {
	return Config{
		MaxAge:       1,
		MinHits:      3,
		IoUThreshold: assoc.DefaultIoUThreshold,
		Solver:       assoc.SolverJV,
		History:      30,
		Noise:        kalman.DefaultNoise(),
	}
}

func (c Config) Validate() error {
	if c.MaxAge < 0 {
		return fmt.Errorf("Invalid max_age: %d", c.MaxAge)
	}
	if c.MinHits < 0 {
		return fmt.Errorf("Invalid min_hits: %d", c.MinHits)
	}
	if !(c.IoUThreshold >= 0 && c.IoUThreshold <= 1) {
		return fmt.Errorf("Invalid iou_threshold: %v, expected [0, 1]", c.IoUThreshold)
	}
	if c.History < 1 {
		return fmt.Errorf("Invalid history: %d", c.History)
	}
	if _, err := assoc.ParseSolver(c.Solver); err != nil {
		return err
	}
	return c.Noise.Validate()
}

// Bookkeeping of the most recent Update
type Report struct {
	Frame        int
	Observations int
	Rejected     int
	Matched      int
	Created      int
	Deleted      int
	Dropped      int
	Live         int
	Emitted      int
	Statuses     map[uint64]TrackStatus
}

type Tracker struct {
	cfg         Config
	solver      assoc.Solver
	logger      *slog.Logger
	tracks      []*track
	frame_count int
	next_id     uint64
	report      Report
}

// A nil logger discards everything
func New(cfg Config, logger *slog.Logger) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Can't create tracker: %w", err)
	}
	solver, _ := assoc.ParseSolver(cfg.Solver)
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tracker{
		cfg:    cfg,
		solver: solver,
		logger: logger,
		tracks: make([]*track, 0),
	}, nil
}

func (tr *Tracker) Report() Report { return tr.report }
func (tr *Tracker) Frame() int     { return tr.frame_count }
func (tr *Tracker) Live() int      { return len(tr.tracks) }

func (tr *Tracker) status(id uint64, status TrackStatus) {
	tr.report.Statuses[id] = status
	tr.logger.Debug("Track", "id", id, "status", status)
}

// Drops observations that would break the box to state conversion
func (tr *Tracker) accept(observations []detection.Observation) []detection.Observation {
	return seq.SFilter(observations, func(obs detection.Observation, i int) bool {
		if err := obs.Validate(); err != nil {
			tr.report.Rejected++
			tr.logger.Debug("Observation rejected", "index", i, "error", err)
			return false
		}
		return true
	})
}

// Advances every track by one frame using this frame's observations and
// returns the confirmed ones, newest track first. Must be called exactly
// once per frame.
func (tr *Tracker) Update(observations []detection.Observation) []Snapshot {
	tr.frame_count++
	tr.report = Report{
		Frame:        tr.frame_count,
		Observations: len(observations),
		Statuses:     make(map[uint64]TrackStatus),
	}

	observations = tr.accept(observations)

	predicted := make([]geom.Box, len(tr.tracks))
	invalid := make([]int, 0)
	for i, t := range tr.tracks {
		predicted[i] = t.predict()
		if !predicted[i].Finite() {
			invalid = append(invalid, i)
			tr.status(t.id, TrackStatusDroppedNonFinite{box: predicted[i]})
		}
	}
	tr.tracks = seq.SRemove(tr.tracks, invalid...)
	predicted = seq.SRemove(predicted, invalid...)
	tr.report.Dropped = len(invalid)

	boxes := seq.SMap(observations, func(obs detection.Observation, _ int) geom.Box {
		return obs.Box
	})
	res := assoc.Associate(boxes, predicted, tr.cfg.IoUThreshold, tr.solver)

	for _, m := range res.Matches {
		t := tr.tracks[m.Track]
		if err := t.update(observations[m.Obs]); err != nil {
			tr.logger.Warn("Kalman correction failed", "id", t.id, "error", err)
			tr.status(t.id, TrackStatusCorrectionFailed{err: err})
			continue
		}
		tr.status(t.id, TrackStatusAssociated{
			obs: m.Obs,
			iou: geom.IoU(boxes[m.Obs], predicted[m.Track]),
		})
	}
	tr.report.Matched = len(res.Matches)

	for _, t_ind := range res.UnmatchedTracks {
		t := tr.tracks[t_ind]
		tr.status(t.id, TrackStatusCoasting{
			frames:      t.time_since_update,
			uncertainty: t.filter.Uncertainty(),
		})
	}

	for _, obs_ind := range res.UnmatchedObservations {
		obs := observations[obs_ind]
		t := newTrack(tr.next_id, obs, tr.cfg.Noise, tr.cfg.History)
		tr.next_id++
		tr.tracks = append(tr.tracks, t)
		tr.status(t.id, TrackStatusNew{box: obs.Box, label: obs.Label})
	}
	tr.report.Created = len(res.UnmatchedObservations)

	snapshots := make([]Snapshot, 0, len(tr.tracks))
	kept := make([]*track, 0, len(tr.tracks))
	for i := len(tr.tracks) - 1; i >= 0; i-- {
		t := tr.tracks[i]
		if t.time_since_update > tr.cfg.MaxAge {
			tr.status(t.id, TrackStatusDeletedStale{frames: t.time_since_update})
			tr.report.Deleted++
			continue
		}
		kept = append(kept, t)
		t.record()
		if t.hit_streak >= tr.cfg.MinHits || tr.frame_count <= tr.cfg.MinHits {
			snapshots = append(snapshots, t.snapshot())
		}
	}
	slices.Reverse(kept)
	tr.tracks = kept

	tr.report.Live = len(tr.tracks)
	tr.report.Emitted = len(snapshots)
	if tr.logger.Enabled(context.Background(), slog.LevelDebug) {
		tr.logger.Debug("Frame",
			"frame", tr.frame_count,
			"observations", tr.report.Observations,
			"matched", tr.report.Matched,
			"created", tr.report.Created,
			"deleted", tr.report.Deleted,
			"live", tr.report.Live,
			"emitted", tr.report.Emitted)
	}
	return snapshots
}

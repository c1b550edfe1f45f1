package assoc

import (
	"github.com/Robogera/track/pkg/geom"
	"github.com/Robogera/track/pkg/gmat"
	"github.com/Robogera/track/pkg/gset"
	"github.com/Robogera/track/pkg/seq"
)

const DefaultIoUThreshold = 0.3

type Match struct{ Obs, Track int }

// Every observation index is either in Matches or in
// UnmatchedObservations, same for track indices.
type Result struct {
	Matches               []Match
	UnmatchedObservations []int
	UnmatchedTracks       []int
}

// Similarity matrix, rows are observations and columns are tracks
func IoUMatrix(observations, predictions []geom.Box) *gmat.Mat[float64] {
	m := gmat.NewMat[float64](len(observations), len(predictions))
	for ind_r, obs := range observations {
		for ind_c, pred := range predictions {
			// in bounds by construction, Set can't fail here
			_ = m.Set(ind_r, ind_c, geom.IoU(obs, pred))
		}
	}
	return m
}

// Optimal one-to-one matching of observations to predicted track boxes
// maximizing total IoU. Pairs proposed by the solver below threshold
// are rejected and both sides reported unmatched.
func Associate(observations, predictions []geom.Box, threshold float64, solver Solver) Result {
	if len(predictions) == 0 {
		return Result{
			Matches:               []Match{},
			UnmatchedObservations: seq.SeqN(len(observations)),
			UnmatchedTracks:       []int{},
		}
	}

	iou_mat := IoUMatrix(observations, predictions)
	assignment := solver.Solve(iou_mat)

	matches := make([]Match, 0, min(len(observations), len(predictions)))
	matched_obs, matched_tracks := gset.New[int](), gset.New[int]()
	for obs, track := range assignment {
		if obs >= len(observations) || track < 0 || track >= len(predictions) {
			continue
		}
		if matched_tracks.Contains(track) {
			continue
		}
		if iou_mat.At(obs, track) < threshold {
			continue
		}
		matches = append(matches, Match{Obs: obs, Track: track})
		matched_obs.Add(obs)
		matched_tracks.Add(track)
	}

	return Result{
		Matches:               matches,
		UnmatchedObservations: gset.Complement(matched_obs, len(observations)),
		UnmatchedTracks:       gset.Complement(matched_tracks, len(predictions)),
	}
}

// Package detection holds the per-frame detector output consumed by the tracker.
package detection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Robogera/track/pkg/geom"
)

var (
	ErrInvalidBox        = errors.New("Invalid box")
	ErrInvalidConfidence = errors.New("Invalid confidence")
)

const UnknownLabel = "unknown"

// One detected object of one frame
type Observation struct {
	Box        geom.Box `json:"box"`
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
}

// Box must be finite with positive extent, confidence within [0, 1]
func (o Observation) Validate() error {
	if !o.Box.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidBox, o.Box)
	}
	if !(o.Confidence >= 0 && o.Confidence <= 1) {
		return fmt.Errorf("%w: %v", ErrInvalidConfidence, o.Confidence)
	}
	return nil
}

// Drops detections by class and score before they reach the tracker.
// Labels maps a lowercase class name to its minimum confidence, an empty
// map keeps every class. MinConfidence applies to everything.
type Filter struct {
	MinConfidence float64            `toml:"min_confidence"`
	Labels        map[string]float64 `toml:"labels"`
}

func (f Filter) Keep(o Observation) bool {
	if o.Confidence < f.MinConfidence {
		return false
	}
	if len(f.Labels) == 0 {
		return true
	}
	min_conf, ok := f.Labels[strings.ToLower(o.Label)]
	return ok && o.Confidence >= min_conf
}

func (f Filter) Apply(observations []Observation) []Observation {
	out := make([]Observation, 0, len(observations))
	for _, o := range observations {
		if f.Keep(o) {
			out = append(out, o)
		}
	}
	return out
}

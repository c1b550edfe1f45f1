package geom

import (
	"math"
)

// Axis aligned box as [x1, y1, x2, y2]
type Box [4]float64

// Box in the filter's measurement space:
// [center x, center y, area, aspect ratio (w/h)]
type State [4]float64

func (b Box) Width() float64  { return b[2] - b[0] }
func (b Box) Height() float64 { return b[3] - b[1] }
func (b Box) Area() float64   { return b.Width() * b.Height() }

func (b Box) Center() (float64, float64) {
	return b[0] + b.Width()/2, b[1] + b.Height()/2
}

// All four coordinates are finite
func (b Box) Finite() bool {
	for _, v := range b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Finite with strictly positive width and height.
// Only valid boxes may be converted with ToState.
func (b Box) Valid() bool {
	return b.Finite() && b[2] > b[0] && b[3] > b[1]
}

// Converts a valid box into [cx, cy, s, r].
// Height must be positive, the caller is responsible for that.
func ToState(b Box) State {
	w, h := b.Width(), b.Height()
	cx, cy := b.Center()
	return State{cx, cy, w * h, w / h}
}

// Inverse of ToState: w = sqrt(s*r), h = s/w
func FromState(s State) Box {
	w := math.Sqrt(s[2] * s[3])
	var h float64
	if w > 0 {
		h = s[2] / w
	}
	return Box{
		s[0] - w/2,
		s[1] - h/2,
		s[0] + w/2,
		s[1] + h/2,
	}
}

// Intersection over union of two boxes in [0, 1].
// Degenerate or non-finite input yields 0.
func IoU(a, b Box) float64 {
	inter_w := math.Max(0, math.Min(a[2], b[2])-math.Max(a[0], b[0]))
	inter_h := math.Max(0, math.Min(a[3], b[3])-math.Max(a[1], b[1]))
	inter := inter_w * inter_h
	union := a.Area() + b.Area() - inter
	if !(union > 0) || math.IsNaN(inter) {
		return 0
	}
	iou := inter / union
	if iou > 1 {
		return 1
	}
	return iou
}

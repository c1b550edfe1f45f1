package tracker

import (
	"fmt"
	"math"

	"github.com/Robogera/track/pkg/geom"
)

// Read-only view of a confirmed track for one frame
type Snapshot struct {
	ID              uint64
	Box             geom.Box
	Label           string
	Confidence      float64
	Age             int
	Hits            int
	HitStreak       int
	TimeSinceUpdate int
	// Center velocity, pixels per frame
	Velocity [2]float64
	// Recent box centers, oldest first, current one last
	History [][2]float64
}

func (s Snapshot) Speed() float64 {
	return math.Hypot(s.Velocity[0], s.Velocity[1])
}

func (s Snapshot) String() string {
	return fmt.Sprintf("Track(id=%d, %s, conf=%.2f, speed=%.1fpx/frame)",
		s.ID, s.Label, s.Confidence, s.Speed())
}

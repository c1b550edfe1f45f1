package tracker

import (
	"fmt"
	"image/color"

	"github.com/muesli/gamut"
)

var base_color = color.RGBA{255, 0, 0, 255}

// Stable display color for a track id, neighbouring ids land far apart on
// the hue wheel.
func Color(id uint64) color.RGBA {
	c := gamut.HueOffset(base_color, int(id*153%360))
	r, g, b, _ := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255}
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

type ExportedTrack struct {
	Id              uint64       `json:"id"`
	Box             [4]float64   `json:"box"`
	Label           string       `json:"label"`
	Confidence      float64      `json:"confidence"`
	Age             int          `json:"age"`
	Hits            int          `json:"hits"`
	HitStreak       int          `json:"hit_streak"`
	TimeSinceUpdate int          `json:"time_since_update"`
	Velocity        [2]float64   `json:"velocity"`
	Speed           float64      `json:"speed"`
	History         [][2]float64 `json:"history,omitempty"`
	Color           string       `json:"color"`
}

func (s Snapshot) Export() ExportedTrack {
	return ExportedTrack{
		Id:              s.ID,
		Box:             s.Box,
		Label:           s.Label,
		Confidence:      s.Confidence,
		Age:             s.Age,
		Hits:            s.Hits,
		HitStreak:       s.HitStreak,
		TimeSinceUpdate: s.TimeSinceUpdate,
		Velocity:        s.Velocity,
		Speed:           s.Speed(),
		History:         s.History,
		Color:           hex(Color(s.ID)),
	}
}

func ExportAll(snapshots []Snapshot) []ExportedTrack {
	out := make([]ExportedTrack, len(snapshots))
	for i, s := range snapshots {
		out[i] = s.Export()
	}
	return out
}

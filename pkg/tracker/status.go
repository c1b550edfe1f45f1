package tracker

import (
	"fmt"

	"github.com/Robogera/track/pkg/geom"
)

// What happened to a track during one Update
type TrackStatus interface {
	String() string
}

type TrackStatusNew struct {
	box   geom.Box
	label string
}

func (ts TrackStatusNew) String() string {
	return fmt.Sprintf("New: %s at %.1f", ts.label, ts.box)
}

type TrackStatusAssociated struct {
	obs int
	iou float64
}

func (ts TrackStatusAssociated) String() string {
	return fmt.Sprintf("Associated with %d, IoU: %.3f", ts.obs, ts.iou)
}

type TrackStatusCorrectionFailed struct {
	err error
}

func (ts TrackStatusCorrectionFailed) String() string {
	return fmt.Sprintf("Associated, correction failed: %s", ts.err)
}

// uncertainty is the trace of the filter covariance after prediction
type TrackStatusCoasting struct {
	frames      int
	uncertainty float64
}

func (ts TrackStatusCoasting) String() string {
	return fmt.Sprintf("No association found for %d frames, uncertainty: %.1f", ts.frames, ts.uncertainty)
}

type TrackStatusDeletedStale struct {
	frames int
}

func (ts TrackStatusDeletedStale) String() string {
	return fmt.Sprintf("Deleted: lost for %d frames", ts.frames)
}

type TrackStatusDroppedNonFinite struct {
	box geom.Box
}

func (ts TrackStatusDroppedNonFinite) String() string {
	return fmt.Sprintf("Dropped: non-finite prediction %v", ts.box)
}

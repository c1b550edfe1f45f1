package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/Robogera/track/pkg/indexed"
)

// Writes one JSON line per frame and forwards the frame to the publisher.
// Returns ERR_STREAM_ENDED once every frame has been written.
func writer(
	ctx context.Context,
	parent_logger *slog.Logger,
	output io.Writer,
	in_chan <-chan indexed.Indexed[TrackedFrame],
	publish_chan chan<- TrackedFrame,
) error {

	logger := parent_logger.With("coroutine", "writer")
	encoder := json.NewEncoder(output)

	var frames uint64 = 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context", "frames written", frames)
			return context.Canceled
		case frame, ok := <-in_chan:
			if !ok {
				logger.Info("All frames written", "frames", frames)
				return ERR_STREAM_ENDED
			}
			if err := encoder.Encode(frame.Value()); err != nil {
				logger.Error("Can't write frame", "seq", frame.Seq(), "error", err)
				return fmt.Errorf("%w: %w", ERR_BAD_OUTPUT, err)
			}
			frames++
			if publish_chan == nil {
				continue
			}
			select {
			case publish_chan <- frame.Value():
			default:
				logger.Warn("Publish channel full. Dropping the frame...", "capacity", cap(publish_chan))
			}
		}
	}
}

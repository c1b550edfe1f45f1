package main

import (
	"context"
	"log/slog"

	"github.com/Robogera/track/pkg/gheap"
	"github.com/Robogera/track/pkg/indexed"
)

// Streams finish their frames out of order, this puts them back
// into input order. Closes sorted_frames_chan once the input closes.
func sorter(
	ctx context.Context,
	parent_logger *slog.Logger,
	unsorted_frames_chan <-chan indexed.Indexed[TrackedFrame],
	sorted_frames_chan chan<- indexed.Indexed[TrackedFrame],
) error {

	logger := parent_logger.With("coroutine", "sorter")
	defer close(sorted_frames_chan)

	queue := gheap.Heap[indexed.Indexed[TrackedFrame]]{}

	var expected_frame uint64 = 0

	emit := func(ready func(indexed.Indexed[TrackedFrame]) bool) error {
		for frame := range queue.PopWhile(ready) {
			select {
			case <-ctx.Done():
				logger.Info("Cancelled by context")
				return context.Canceled
			case sorted_frames_chan <- frame:
				expected_frame = frame.Seq() + 1
			}
		}
		return nil
	}
	in_order := func(frame indexed.Indexed[TrackedFrame]) bool {
		return frame.Seq() <= expected_frame
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context")
			return context.Canceled
		case frame, ok := <-unsorted_frames_chan:
			if !ok {
				if !queue.IsEmpty() {
					logger.Warn("Gap in sequence, flushing", "expected", expected_frame, "queued", queue.Len())
				}
				return emit(func(indexed.Indexed[TrackedFrame]) bool { return true })
			}
			if frame.Seq() < expected_frame {
				logger.Warn("Bad index", "expected", expected_frame, "got", frame.Seq())
				continue
			}
			queue.Push(frame)
			if err := emit(in_order); err != nil {
				return err
			}
			logger.Debug("Queue", "len", queue.Len())
		}
	}
}

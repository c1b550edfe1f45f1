package main

import (
	// stdlib
	"context"
	"fmt"
	"log/slog"
	"time"

	// internal
	"github.com/Robogera/track/pkg/config"
	"github.com/Robogera/track/pkg/indexed"
	"github.com/Robogera/track/pkg/metrics"
	"github.com/Robogera/track/pkg/seq"
	"github.com/Robogera/track/pkg/tracker"

	// external
	"golang.org/x/sync/errgroup"
)

const stream_queue_size = 16

// Confirmed tracks of one input frame
type TrackedFrame struct {
	Stream string                  `json:"stream"`
	Frame  uint64                  `json:"frame"`
	Tracks []tracker.ExportedTrack `json:"tracks"`
}

type Statistics struct {
	stream      string
	update_time time.Duration
	latency     time.Duration
	live        int
}

// Fans frames out to one tracker per stream. Every tracker is driven by
// a single goroutine so frames of a stream stay in order while streams
// run concurrently. Emits exactly one TrackedFrame per input frame.
func processor(
	ctx context.Context,
	parent_logger *slog.Logger,
	cfg *config.ConfigFile,
	m *metrics.Metrics,
	in_chan <-chan indexed.Indexed[InputFrame],
	out_chan chan<- indexed.Indexed[TrackedFrame],
	stat_chan chan<- Statistics,
) error {

	logger := parent_logger.With("coroutine", "processor")
	defer close(out_chan)

	eg, child_ctx := errgroup.WithContext(ctx)
	streams := make(map[string]chan indexed.Indexed[InputFrame])
	defer func() {
		for _, stream_chan := range streams {
			close(stream_chan)
		}
		eg.Wait()
	}()

	logger.Info("Started", "solver", cfg.Tracker.Solver)
	for {
		select {
		case <-child_ctx.Done():
			logger.Info("Cancelled by context")
			return context.Canceled
		case frame, ok := <-in_chan:
			if !ok {
				for name, stream_chan := range streams {
					close(stream_chan)
					delete(streams, name)
				}
				logger.Info("Input closed, waiting for trackers")
				return eg.Wait()
			}
			name := frame.Value().Stream
			stream_chan, exists := streams[name]
			if !exists {
				trk, err := tracker.New(cfg.TrackerConfig(), parent_logger.With("stream", name))
				if err != nil {
					logger.Error("Can't create tracker", "stream", name, "error", err)
					return fmt.Errorf("%w: %w", ERR_CANT_CREATE_TRACKER, err)
				}
				stream_chan = make(chan indexed.Indexed[InputFrame], stream_queue_size)
				streams[name] = stream_chan
				logger.Info("New stream", "stream", name)
				eg.Go(func() error {
					return track(child_ctx, logger.With("stream", name), cfg, m, trk, stream_chan, out_chan, stat_chan)
				})
			}
			select {
			case <-child_ctx.Done():
				continue
			case stream_chan <- frame:
			}
		}
	}
}

func track(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.ConfigFile,
	m *metrics.Metrics,
	trk *tracker.Tracker,
	in_chan <-chan indexed.Indexed[InputFrame],
	out_chan chan<- indexed.Indexed[TrackedFrame],
	stat_chan chan<- Statistics,
) error {
	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case frame, ok := <-in_chan:
			if !ok {
				logger.Debug("Stream done", "frames", trk.Frame(), "live", trk.Live())
				return nil
			}
			input := frame.Value()
			observations := cfg.Filter.Apply(input.Detections)

			start := time.Now()
			snapshots := trk.Update(observations)
			took := time.Since(start)

			report := trk.Report()
			m.Observe(input.Stream, report, took)

			// a box too large for the filter can't be serialized
			snapshots = seq.SFilter(snapshots, func(s tracker.Snapshot, _ int) bool {
				if !s.Box.Finite() {
					logger.Warn("Skipping non-finite track", "id", s.ID, "frame", input.Frame)
					return false
				}
				return true
			})

			select {
			case stat_chan <- Statistics{
				stream:      input.Stream,
				update_time: took,
				latency:     time.Since(input.received),
				live:        report.Live,
			}:
			default:
			}

			tracked := indexed.Map(frame, func(f InputFrame) TrackedFrame {
				return TrackedFrame{
					Stream: f.Stream,
					Frame:  f.Frame,
					Tracks: tracker.ExportAll(snapshots),
				}
			})
			select {
			case <-ctx.Done():
				return context.Canceled
			case out_chan <- tracked:
			}
		}
	}
}

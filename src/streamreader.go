package main

import (
	// stdlib
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	// internal
	"github.com/Robogera/track/pkg/detection"
	"github.com/Robogera/track/pkg/indexed"
	"github.com/Robogera/track/pkg/metrics"
)

const (
	default_stream  = "default"
	max_line_length = 4 * 1024 * 1024
)

// One line of input: everything a detector saw in one frame of one stream
type InputFrame struct {
	Stream     string                  `json:"stream"`
	Frame      uint64                  `json:"frame"`
	Detections []detection.Observation `json:"detections"`
	received   time.Time
}

func parseLine(line []byte) (InputFrame, error) {
	var frame InputFrame
	if err := json.Unmarshal(line, &frame); err != nil {
		return frame, fmt.Errorf("Can't parse frame: %w", err)
	}
	if frame.Stream == "" {
		frame.Stream = default_stream
	}
	for i := range frame.Detections {
		frame.Detections[i].Label = strings.TrimSpace(frame.Detections[i].Label)
		if frame.Detections[i].Label == "" {
			frame.Detections[i].Label = detection.UnknownLabel
		}
	}
	frame.received = time.Now()
	return frame, nil
}

// Reads JSON lines from input, every parsed frame gets the next sequence
// number. Closes frames_chan once input is exhausted.
func streamreader(
	ctx context.Context,
	parent_logger *slog.Logger,
	input io.Reader,
	m *metrics.Metrics,
	frames_chan chan<- indexed.Indexed[InputFrame],
) error {

	logger := parent_logger.With("coroutine", "streamreader")
	defer close(frames_chan)

	// the scanner blocks on read, ctx is only checked between lines
	lines_chan := make(chan []byte)
	err_chan := make(chan error, 1)
	go func() {
		defer close(lines_chan)
		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 64*1024), max_line_length)
		for scanner.Scan() {
			line := make([]byte, len(scanner.Bytes()))
			copy(line, scanner.Bytes())
			select {
			case lines_chan <- line:
			case <-ctx.Done():
				return
			}
		}
		err_chan <- scanner.Err()
	}()

	var seq uint64 = 0
	var line_number uint64 = 0

	logger.Info("Started")
	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context")
			return context.Canceled
		case line, ok := <-lines_chan:
			if !ok {
				var err error
				select {
				case err = <-err_chan:
				default:
				}
				if err != nil {
					logger.Error("Can't read input", "line", line_number, "error", err)
					return fmt.Errorf("%w: %w", ERR_BAD_INPUT, err)
				}
				logger.Info("Input exhausted", "lines", line_number, "frames", seq)
				return nil
			}
			line_number++
			if len(strings.TrimSpace(string(line))) == 0 {
				continue
			}
			m.LinesRead.Inc()
			frame, err := parseLine(line)
			if err != nil {
				m.LinesRejected.Inc()
				logger.Warn("Skipping malformed line", "line", line_number, "error", err)
				continue
			}
			select {
			case <-ctx.Done():
				logger.Info("Cancelled by context")
				return context.Canceled
			case frames_chan <- indexed.NewIndexed(seq, frame):
				seq++
			}
		}
	}
}

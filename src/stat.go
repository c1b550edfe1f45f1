package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/Robogera/track/pkg/gsma"
)

const stat_window = 100

type streamStat struct {
	frames, frames_since_last_tick uint64
	live                           int
	update_time                    *gsma.SMA[time.Duration]
	latency                        *gsma.SMA[time.Duration]
}

func stat(ctx context.Context, parent_logger *slog.Logger, stats <-chan Statistics, stat_period_sec uint) error {
	logger := parent_logger.With("coroutine", "stat")
	streams := make(map[string]*streamStat)
	period := time.Second * time.Duration(stat_period_sec)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stat cancelled by context")
			return context.Canceled
		case s := <-stats:
			st, ok := streams[s.stream]
			if !ok {
				// window is a positive constant, errors are impossible
				update_time, _ := gsma.NewSMA[time.Duration](stat_window)
				latency, _ := gsma.NewSMA[time.Duration](stat_window)
				st = &streamStat{update_time: update_time, latency: latency}
				streams[s.stream] = st
			}
			st.frames++
			st.frames_since_last_tick++
			st.live = s.live
			st.update_time.Recalc(s.update_time)
			st.latency.Recalc(s.latency)
		case <-ticker.C:
			for name, st := range streams {
				logger.Info("Stats",
					"stream", name,
					"frames processed", st.frames,
					"frames per second", float64(st.frames_since_last_tick)/period.Seconds(),
					"avg update (ms)", st.update_time.Show()/float64(time.Millisecond),
					"avg latency (ms)", st.latency.Show()/float64(time.Millisecond),
					"live tracks", st.live)
				st.frames_since_last_tick = 0
			}
		}
	}
}

package combat

import (
	"context"
	"time"
)

// Autoplay steps the engine one phase per tick and hands every new log entry
// to emit. Cancelling ctx stops it between ticks; a phase in progress always finishes.
func Autoplay(ctx context.Context, e *Engine, delay time.Duration, emit func(LogEntry)) (*BattleResult, error) {
	sent := 0
	flush := func() {
		for _, le := range e.LogSince(sent) {
			if emit != nil {
				emit(le)
			}
			sent++
		}
	}
	var tick <-chan time.Time
	if delay > 0 {
		t := time.NewTicker(delay)
		defer t.Stop()
		tick = t.C
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		done, err := e.Step()
		flush()
		if err != nil {
			return nil, err
		}
		if done {
			return e.Result(), nil
		}
		if tick == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-tick:
		}
	}
}

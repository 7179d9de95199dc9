package analyzer

import (
	"context"
	"fmt"
	"time"
)

// DefaultRefreshInterval matches a display refreshing at about 23 Hz.
const DefaultRefreshInterval = 43 * time.Millisecond

// Run calls Snapshot every interval and passes the result to fn until ctx
// ends. While Params.Frozen is set, ticks are skipped and fn is not called;
// the audio side keeps filling the buffers. New desync skips are reported
// to Config.Logger.
//
// Run returns ctx.Err() when the context ends, or the first Snapshot error.
func (a *Analyzer) Run(ctx context.Context, interval time.Duration, fn func(Snapshot)) error {
	if interval <= 0 {
		return fmt.Errorf("%w: refresh interval must be positive", ErrInvalidParam)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var skipped int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		switch n := a.buffers.SkippedMigrations(); {
		case n > skipped:
			a.logf("pre/post desync: %d migrations skipped (%d total)", n-skipped, n)
			skipped = n
		case n < skipped:
			skipped = n // buffers were reset
		}

		if a.params.Frozen() {
			continue
		}

		snap, err := a.Snapshot()
		if err != nil {
			return err
		}
		fn(snap)
	}
}

func (a *Analyzer) logf(format string, args ...any) {
	if logger := a.Config().Logger; logger != nil {
		logger.Printf(format, args...)
	}
}

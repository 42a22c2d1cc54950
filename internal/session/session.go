// Package session implements the playback synchronization engine: it keeps
// a local view of a server-authoritative jukebox responsive by serializing
// outbound commands, reconciling periodic snapshots, interpolating position
// between polls, and driving auto-repeat without server push.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Refresh forces an immediate authoritative snapshot fetch and
// reconciliation, regardless of poll cadence.
func (s *Session) Refresh(ctx context.Context) error {
	snap, err := s.transport.Snapshot(ctx)
	if err != nil {
		return err
	}
	s.ApplySnapshot(snap)
	return nil
}

// Run drives the session until ctx is cancelled: an initial snapshot fetch,
// then a background poll at the poll interval and interpolation ticks at the
// tick interval. Both cadences run on one goroutine, so snapshot handling
// and ticks never race; a poll is skipped (not queued) while a command is
// in flight. Poll failures degrade silently to a stale display.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("initial snapshot failed", zap.Error(err))
	}

	tick := time.NewTicker(s.tickInterval)
	defer tick.Stop()
	poll := time.NewTicker(s.pollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			s.Tick(ctx)
		case <-poll.C:
			if s.gate.Held() {
				continue
			}
			if err := s.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.log.Warn("poll failed", zap.Error(err))
			}
		}
	}
}

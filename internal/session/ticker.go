package session

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Tick extrapolates the current position from the last snapshot anchor and
// the wall-clock time elapsed since it arrived. Paused or seeking state
// leaves the position untouched. If the track enters its end window, the
// advance decision is dispatched asynchronously, never inline in the tick.
func (s *Session) Tick(ctx context.Context) {
	s.mu.Lock()

	if !s.playing || s.seeking || s.lastSnapAt.IsZero() {
		s.mu.Unlock()
		return
	}

	track := s.currentTrackLocked()
	elapsed := s.clock.Now().Sub(s.lastSnapAt).Seconds()
	s.position = clampPosition(s.lastSnapPos+elapsed, trackDuration(track))

	action := advanceNone
	if track != nil && track.Duration >= minTrackDuration {
		near := track.Duration-s.position <= endWindow
		if s.end.observe(track.ID, near) {
			action = decideAdvance(s.repeat, s.currentIndex, len(s.queue))
			s.end.markHandled(track.ID)
		}
	}

	index := s.currentIndex
	queueLen := len(s.queue)
	s.mu.Unlock()

	if action == advanceNone {
		return
	}
	go s.dispatchAdvance(ctx, action, index, queueLen)
}

func (s *Session) dispatchAdvance(ctx context.Context, action advanceAction, index int, queueLen int) {
	var err error
	switch action {
	case advanceRestart:
		err = s.Dispatch(ctx, ActionSkipTo, Params{Index: index})
	case advanceJumpStart:
		err = s.Dispatch(ctx, ActionSkipTo, Params{Index: 0})
	default:
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("auto-advance failed",
			zap.Int("index", index),
			zap.Int("queue_len", queueLen),
			zap.Error(err),
		)
	}
}

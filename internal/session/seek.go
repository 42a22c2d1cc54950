package session

import "context"

// BeginPreview starts a scrub gesture: the position shown to the UI follows
// the gesture locally and interpolation ticks are suppressed. No network
// traffic until CommitSeek. fraction is in [0,1] of the track duration.
func (s *Session) BeginPreview(fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seeking = true
	duration := trackDuration(s.currentTrackLocked())
	if duration > 0 {
		s.position = clampPosition(fraction*duration, duration)
	}
}

// CommitSeek ends the gesture and issues exactly one skip command for the
// current index at the target offset, followed by the orchestrator's forced
// reconciling fetch.
func (s *Session) CommitSeek(ctx context.Context, fraction float64) error {
	s.mu.Lock()
	s.seeking = false
	index := s.currentIndex
	duration := trackDuration(s.currentTrackLocked())
	target := clampPosition(fraction*duration, duration)
	// Re-anchor so interpolation continues from the preview until the
	// snapshot lands.
	s.position = target
	s.lastSnapPos = target
	s.lastSnapAt = s.clock.Now()
	s.mu.Unlock()

	return s.Dispatch(ctx, ActionSkipTo, Params{Index: index, Offset: target})
}

// CancelSeek abandons the gesture without issuing a command. Callers must
// use this on abandoned gestures or seeking would stay stuck true and
// freeze the ticker.
func (s *Session) CancelSeek() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeking = false
}

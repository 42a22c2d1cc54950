package session

import "github.com/avlbx/juke/pkg/jb"

// ApplySnapshot merges an authoritative server snapshot into local state,
// replacing the cached queue wholesale and re-anchoring the position
// interpolator. Malformed snapshots (out-of-range index, empty queue) are
// clamped, never raised: a poll must not crash the client.
func (s *Session) ApplySnapshot(snap jb.Snapshot) {
	s.mu.Lock()

	prev := s.currentTrackLocked()
	prevPlaying := s.playing

	s.queue = snap.Entries
	s.currentIndex = clampIndex(snap.Status.CurrentIndex, len(snap.Entries))
	s.playing = snap.Status.Playing
	s.gain = snap.Status.Gain

	cur := s.currentTrackLocked()
	position := clampPosition(snap.Status.Position, trackDuration(cur))
	s.position = position
	s.lastSnapPos = position
	s.lastSnapAt = s.clock.Now()

	changed := trackID(prev) != trackID(cur)
	if changed {
		s.end.reset()
	} else if cur != nil && cur.Duration >= minTrackDuration && cur.Duration-position > endWindow {
		// The server moved the position back out of the end window for
		// the same track (a repeat-one restart, or a user seek), so the
		// guard must re-arm or the track could never end-handle again.
		s.end.reset()
	}

	playing := s.playing
	s.mu.Unlock()

	if changed {
		s.notifyNowPlaying(cur, position, playing)
	}
	if playing != prevPlaying {
		s.notifyPlaybackState(playing)
	}
}

func clampIndex(index int, length int) int {
	if length == 0 || index < 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	return index
}

func trackDuration(track *jb.Track) float64 {
	if track == nil {
		return 0
	}
	return track.Duration
}

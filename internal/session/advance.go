package session

// endPhase is the per-track-instance end-of-track state.
type endPhase int

const (
	// endIdle: the track is not near its end.
	endIdle endPhase = iota
	// endNear: position entered the end window, decision pending.
	endNear
	// endHandled: an advance was scheduled, or delegated to the server.
	endHandled
)

// endTracker guards end-of-track handling so that at most one advance
// command is dispatched per track instance. It is keyed by track identity:
// observing a different track id resets the machine, so no other code path
// can leave a stale guard behind.
type endTracker struct {
	trackID string
	phase   endPhase
}

// observe feeds the tracker one position sample for the given track.
// It returns true exactly once per track instance, when the track first
// enters its end window; the caller must then decide and call markHandled.
func (t *endTracker) observe(id string, nearEnd bool) bool {
	if id != t.trackID {
		t.trackID = id
		t.phase = endIdle
	}
	if !nearEnd || t.phase != endIdle {
		return false
	}
	t.phase = endNear
	return true
}

// markHandled records that the advance decision for the track was made.
func (t *endTracker) markHandled(id string) {
	if id == t.trackID {
		t.phase = endHandled
	}
}

// reset clears the guard; called when the reconciler sees the track
// identity change, or the authoritative position back outside the window.
func (t *endTracker) reset() {
	t.trackID = ""
	t.phase = endIdle
}

// advanceAction is the decision taken when a track enters its end window.
type advanceAction int

const (
	advanceNone advanceAction = iota
	// advanceRestart replays the current index from offset 0 (repeat one).
	advanceRestart
	// advanceJumpStart jumps to queue index 0 (repeat all, last track).
	advanceJumpStart
)

// decideAdvance maps repeat mode and queue position to an advance action.
// With repeat off, or repeat all mid-queue, the server advances on its own
// and the next snapshot picks the change up; no client command is issued.
func decideAdvance(repeat RepeatMode, index int, queueLen int) advanceAction {
	switch repeat {
	case RepeatOne:
		return advanceRestart
	case RepeatAll:
		if index == queueLen-1 {
			return advanceJumpStart
		}
	}
	return advanceNone
}

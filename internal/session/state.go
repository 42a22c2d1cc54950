package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avlbx/juke/internal/ports"
	"github.com/avlbx/juke/pkg/jb"
)

// RepeatMode selects end-of-track behavior. It is purely client-side and is
// never sent to the server except as the trigger for client-issued advance
// commands.
type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

// ParseRepeatMode maps a config or flag string to a RepeatMode.
func ParseRepeatMode(s string) (RepeatMode, bool) {
	switch RepeatMode(s) {
	case RepeatOff, RepeatAll, RepeatOne:
		return RepeatMode(s), true
	case "":
		return RepeatOff, true
	}
	return RepeatOff, false
}

const (
	defaultPollInterval = 5 * time.Second
	defaultTickInterval = 500 * time.Millisecond

	// endWindow is the tail of a track treated as "about to finish".
	endWindow = 0.8
	// minTrackDuration guards against end handling on zero or tiny
	// durations reported for streams and unscanned files.
	minTrackDuration = 5.0
	// restartThreshold is the grace window for the previous action:
	// above it, previous restarts the current track instead.
	restartThreshold = 3.0
)

// Options configures a Session. Transport and Clock are required.
type Options struct {
	Transport ports.Transport
	Clock     ports.Clock
	Notifier  ports.Notifier
	Logger    *zap.Logger

	PollInterval time.Duration
	TickInterval time.Duration
	Repeat       RepeatMode
}

// Session holds the client-side view of the server-owned jukebox and
// coordinates all mutations of it: snapshot reconciliation, optimistic
// command dispatch, position interpolation, seek previews, and end-of-track
// handling. One instance per connected client.
type Session struct {
	transport ports.Transport
	clock     ports.Clock
	notifier  ports.Notifier
	log       *zap.Logger

	pollInterval time.Duration
	tickInterval time.Duration

	gate commandGate

	mu           sync.Mutex
	queue        []jb.Track
	currentIndex int
	playing      bool
	gain         float64
	position     float64
	lastSnapAt   time.Time
	lastSnapPos  float64
	repeat       RepeatMode
	seeking      bool
	end          endTracker
}

// New creates a Session with neutral defaults: empty queue, index 0, paused.
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	if opts.Repeat == "" {
		opts.Repeat = RepeatOff
	}
	return &Session{
		transport:    opts.Transport,
		clock:        opts.Clock,
		notifier:     opts.Notifier,
		log:          opts.Logger,
		pollInterval: opts.PollInterval,
		tickInterval: opts.TickInterval,
		repeat:       opts.Repeat,
	}
}

// View is a read-only copy of the playback state for rendering.
type View struct {
	Queue        []jb.Track
	CurrentIndex int
	Playing      bool
	Gain         float64
	Position     float64
	Repeat       RepeatMode
	Seeking      bool
}

// Current returns the track at CurrentIndex, or nil for an empty queue.
func (v View) Current() *jb.Track {
	if v.CurrentIndex < 0 || v.CurrentIndex >= len(v.Queue) {
		return nil
	}
	track := v.Queue[v.CurrentIndex]
	return &track
}

// View returns a snapshot copy of the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := make([]jb.Track, len(s.queue))
	copy(queue, s.queue)
	return View{
		Queue:        queue,
		CurrentIndex: s.currentIndex,
		Playing:      s.playing,
		Gain:         s.gain,
		Position:     s.position,
		Repeat:       s.repeat,
		Seeking:      s.seeking,
	}
}

// Repeat returns the current repeat mode.
func (s *Session) Repeat() RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repeat
}

// SetRepeat changes the repeat mode.
func (s *Session) SetRepeat(mode RepeatMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repeat = mode
}

func (s *Session) currentTrackLocked() *jb.Track {
	if s.currentIndex < 0 || s.currentIndex >= len(s.queue) {
		return nil
	}
	return &s.queue[s.currentIndex]
}

func trackID(track *jb.Track) string {
	if track == nil {
		return ""
	}
	return track.ID
}

func clampPosition(position float64, duration float64) float64 {
	if position < 0 {
		return 0
	}
	if duration > 0 && position > duration {
		return duration
	}
	return position
}

func (s *Session) notifyNowPlaying(track *jb.Track, position float64, playing bool) {
	if s.notifier != nil {
		s.notifier.NowPlayingChanged(track, position, playing)
	}
}

func (s *Session) notifyPlaybackState(playing bool) {
	if s.notifier != nil {
		s.notifier.PlaybackStateChanged(playing)
	}
}

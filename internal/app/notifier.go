package app

import (
	"go.uber.org/zap"

	"github.com/avlbx/juke/pkg/jb"
)

// Notifier logs track and playback-state transitions as they are observed,
// so an attached terminal scrollback doubles as a play history.
type Notifier struct {
	Logger *zap.Logger
}

// NowPlayingChanged records the track that became current.
func (n Notifier) NowPlayingChanged(track *jb.Track, position float64, playing bool) {
	if track == nil {
		n.Logger.Info("queue is empty")
		return
	}
	n.Logger.Info("now playing",
		zap.String("title", track.Title),
		zap.String("artist", track.Artist),
		zap.Float64("position", position),
		zap.Bool("playing", playing),
	)
}

// PlaybackStateChanged records play and pause transitions.
func (n Notifier) PlaybackStateChanged(playing bool) {
	if playing {
		n.Logger.Info("playback started")
		return
	}
	n.Logger.Info("playback stopped")
}

//go:build linux

// Package mpris exposes the attached session as an MPRIS player over
// D-Bus so desktop media keys and applets control the remote jukebox.
package mpris

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/avlbx/juke/internal/session"
)

// Adapter connects a Session to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(sess *session.Session) (*Adapter, error) {
	a := &Adapter{}
	a.server = server.NewServer("juke", &rootAdapter{}, &playerAdapter{sess: sess})

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error { return nil }
func (r *rootAdapter) Quit() error  { return nil }

func (r *rootAdapter) CanQuit() (bool, error)      { return false, nil }
func (r *rootAdapter) CanRaise() (bool, error)     { return false, nil }
func (r *rootAdapter) HasTrackList() (bool, error) { return false, nil }

func (r *rootAdapter) Identity() (string, error) {
	return "Juke", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return nil, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return nil, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and the
// optional loop-status and shuffle interfaces. Commands refused by the
// in-flight gate are dropped, matching button-mash semantics elsewhere.
type playerAdapter struct {
	sess *session.Session
}

func (p *playerAdapter) dispatch(action string, params session.Params) error {
	err := p.sess.Dispatch(context.Background(), action, params)
	if errors.Is(err, session.ErrBusy) {
		return nil
	}
	return err
}

func (p *playerAdapter) Next() error {
	return p.dispatch(session.ActionNext, session.Params{})
}

func (p *playerAdapter) Previous() error {
	return p.dispatch(session.ActionPrevious, session.Params{})
}

func (p *playerAdapter) Pause() error {
	if !p.sess.View().Playing {
		return nil
	}
	return p.dispatch(session.ActionPlayPause, session.Params{})
}

func (p *playerAdapter) PlayPause() error {
	return p.dispatch(session.ActionPlayPause, session.Params{})
}

func (p *playerAdapter) Stop() error {
	return p.dispatch(session.ActionStop, session.Params{})
}

func (p *playerAdapter) Play() error {
	if p.sess.View().Playing {
		return nil
	}
	return p.dispatch(session.ActionPlayPause, session.Params{})
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	view := p.sess.View()
	track := view.Current()
	if track == nil || track.Duration <= 0 {
		return nil
	}
	target := view.Position + float64(offset)/1e6
	return p.commitSeek(target / track.Duration)
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	track := p.sess.View().Current()
	if track == nil || track.Duration <= 0 {
		return nil
	}
	return p.commitSeek(float64(position) / 1e6 / track.Duration)
}

func (p *playerAdapter) commitSeek(fraction float64) error {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	err := p.sess.CommitSeek(context.Background(), fraction)
	if errors.Is(err, session.ErrBusy) {
		return nil
	}
	return err
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error { return nil }

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	if p.sess.View().Playing {
		return types.PlaybackStatusPlaying, nil
	}
	return types.PlaybackStatusPaused, nil
}

func (p *playerAdapter) Rate() (float64, error)        { return 1.0, nil }
func (p *playerAdapter) SetRate(_ float64) error       { return nil }
func (p *playerAdapter) MinimumRate() (float64, error) { return 1.0, nil }
func (p *playerAdapter) MaximumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	track := p.sess.View().Current()
	if track == nil {
		return types.Metadata{}, nil
	}
	return types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(track.ID)),
		Length:  types.Microseconds(track.Duration * 1e6),
		Title:   track.Title,
		Artist:  []string{track.Artist},
		Album:   track.Album,
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.sess.View().Gain, nil
}

func (p *playerAdapter) SetVolume(volume float64) error {
	return p.dispatch(session.ActionSetGain, session.Params{Gain: volume})
}

func (p *playerAdapter) Position() (int64, error) {
	return int64(p.sess.View().Position * 1e6), nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	view := p.sess.View()
	return view.CurrentIndex+1 < len(view.Queue) || view.Repeat == session.RepeatAll, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return len(p.sess.View().Queue) > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return len(p.sess.View().Queue) > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error)   { return true, nil }
func (p *playerAdapter) CanSeek() (bool, error)    { return true, nil }
func (p *playerAdapter) CanControl() (bool, error) { return true, nil }

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.sess.Repeat() {
	case session.RepeatOne:
		return types.LoopStatusTrack, nil
	case session.RepeatAll:
		return types.LoopStatusPlaylist, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusNone:
		p.sess.SetRepeat(session.RepeatOff)
	case types.LoopStatusTrack:
		p.sess.SetRepeat(session.RepeatOne)
	case types.LoopStatusPlaylist:
		p.sess.SetRepeat(session.RepeatAll)
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle. Shuffling
// is a one-shot server operation, not a persistent mode, so the reported
// state is always false and enabling it shuffles once.
func (p *playerAdapter) Shuffle() (bool, error) {
	return false, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	if !shuffle {
		return nil
	}
	return p.dispatch(session.ActionShuffle, session.Params{})
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}

package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/avlbx/juke/pkg/jb"
)

// Named user actions accepted by Dispatch.
const (
	ActionPlayPause = "play-pause"
	ActionNext      = "next"
	ActionPrevious  = "previous"
	ActionStop      = "stop"
	ActionShuffle   = "shuffle"
	ActionClear     = "clear"
	ActionAddRandom = "add-random"
	ActionSkipTo    = "skip-to"
	ActionRemove    = "remove"
	ActionSetGain   = "set-gain"
)

// ErrBusy is returned when a command is refused because another one is
// still in flight. Refused commands are dropped, never queued; the caller
// may retry.
var ErrBusy = errors.New("another command is in flight")

// Params carries per-action arguments for Dispatch.
type Params struct {
	Index  int
	Offset float64
	Gain   float64
	Count  int
}

type command struct {
	action string
	params url.Values
}

const defaultRandomCount = 10

// Dispatch maps a named user action onto: acquire gate, apply optimistic
// local mutation, issue the mapped command(s), force a reconciling snapshot
// fetch, release gate. The gate is released on every exit path. Optimistic
// mutations are not rolled back on transport failure; the next successful
// poll self-corrects.
func (s *Session) Dispatch(ctx context.Context, action string, p Params) error {
	if !s.gate.TryAcquire() {
		return ErrBusy
	}
	defer s.gate.Release()

	commands, err := s.plan(ctx, action, p)
	if err != nil {
		return err
	}
	if len(commands) == 0 {
		return nil
	}

	for _, cmd := range commands {
		if _, err := s.transport.Issue(ctx, cmd.action, cmd.params); err != nil {
			return fmt.Errorf("%s: %w", action, err)
		}
	}

	// The forced fetch runs while the gate is still held: the gate
	// protects command issuance, and this read is part of completing
	// the logical action.
	snap, err := s.transport.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("%s: refresh: %w", action, err)
	}
	s.ApplySnapshot(snap)
	return nil
}

func (s *Session) plan(ctx context.Context, action string, p Params) ([]command, error) {
	if action == ActionAddRandom {
		return s.planAddRandom(ctx, p)
	}

	s.mu.Lock()
	var (
		commands []command
		notify   func()
	)
	switch action {
	case ActionPlayPause:
		if s.playing {
			commands = append(commands, command{action: jb.ActionStop})
		} else {
			commands = append(commands, command{action: jb.ActionStart})
		}
		s.playing = !s.playing
		playing := s.playing
		notify = func() { s.notifyPlaybackState(playing) }

	case ActionStop:
		commands = append(commands, command{action: jb.ActionStop})
		if s.playing {
			s.playing = false
			notify = func() { s.notifyPlaybackState(false) }
		}

	case ActionNext:
		target := s.currentIndex + 1
		if target >= len(s.queue) {
			if s.repeat != RepeatAll || len(s.queue) == 0 {
				break
			}
			target = 0
		}
		commands = append(commands, skipCommand(target, 0))

	case ActionPrevious:
		if s.position > restartThreshold {
			commands = append(commands, skipCommand(s.currentIndex, 0))
		} else {
			target := s.currentIndex - 1
			if target < 0 {
				target = 0
			}
			commands = append(commands, skipCommand(target, 0))
		}

	case ActionSkipTo:
		commands = append(commands, skipCommand(p.Index, p.Offset))

	case ActionRemove:
		params := url.Values{}
		params.Set("index", strconv.Itoa(p.Index))
		commands = append(commands, command{action: jb.ActionRemove, params: params})

	case ActionShuffle:
		commands = append(commands, command{action: jb.ActionShuffle})

	case ActionClear:
		commands = append(commands, command{action: jb.ActionClear})

	case ActionSetGain:
		gain := p.Gain
		if gain < 0 {
			gain = 0
		}
		if gain > 1 {
			gain = 1
		}
		params := url.Values{}
		params.Set("gain", strconv.FormatFloat(gain, 'f', 2, 64))
		commands = append(commands, command{action: jb.ActionSetGain, params: params})
		s.gain = gain

	default:
		s.mu.Unlock()
		return nil, fmt.Errorf("unknown action %q", action)
	}
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
	return commands, nil
}

func (s *Session) planAddRandom(ctx context.Context, p Params) ([]command, error) {
	count := p.Count
	if count <= 0 {
		count = defaultRandomCount
	}
	ids, err := s.transport.RandomSongIDs(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("random songs: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	params := url.Values{}
	for _, id := range ids {
		params.Add("id", id)
	}
	return []command{{action: jb.ActionAdd, params: params}}, nil
}

func skipCommand(index int, offset float64) command {
	params := url.Values{}
	params.Set("index", strconv.Itoa(index))
	params.Set("offset", strconv.Itoa(int(offset)))
	return command{action: jb.ActionSkip, params: params}
}

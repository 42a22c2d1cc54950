package session

import (
	"context"
	"errors"
	"testing"

	"github.com/avlbx/juke/pkg/jb"
)

func TestDispatchRefusesOverlap(t *testing.T) {
	transport := &fakeTransport{
		snapshot:   snapshotAt(0, true, 0),
		blockIssue: make(chan struct{}),
		started:    make(chan struct{}, 1),
	}
	sess := newTestSession(t, transport, newFakeClock())
	sess.ApplySnapshot(snapshotAt(0, false, 0))

	done := make(chan error, 1)
	go func() { done <- sess.Dispatch(context.Background(), ActionPlayPause, Params{}) }()
	<-transport.started

	if err := sess.Dispatch(context.Background(), ActionStop, Params{}); !errors.Is(err, ErrBusy) {
		t.Fatalf("overlapping dispatch: err = %v, want ErrBusy", err)
	}
	if got := transport.countAction(jb.ActionStop); got != 0 {
		t.Fatalf("refused command reached transport")
	}

	close(transport.blockIssue)
	if err := <-done; err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
}

func TestDispatchReleasesGateOnError(t *testing.T) {
	transport := &fakeTransport{issueErr: errors.New("boom")}
	sess := newTestSession(t, transport, newFakeClock())
	sess.ApplySnapshot(snapshotAt(0, false, 0))

	if err := sess.Dispatch(context.Background(), ActionPlayPause, Params{}); err == nil {
		t.Fatalf("expected transport error")
	}
	if sess.gate.Held() {
		t.Fatalf("gate leaked after error")
	}
}

func TestDispatchPlayPauseOptimisticFlip(t *testing.T) {
	transport := &fakeTransport{snapshot: snapshotAt(0, true, 0)}
	sess := newTestSession(t, transport, newFakeClock())
	sess.ApplySnapshot(snapshotAt(0, false, 0))

	if err := sess.Dispatch(context.Background(), ActionPlayPause, Params{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if got := transport.countAction(jb.ActionStart); got != 1 {
		t.Fatalf("start issued %d times, want 1", got)
	}
	if got := transport.snapshotCalls(); got != 1 {
		t.Fatalf("forced refresh ran %d times, want 1", got)
	}
	if !sess.View().Playing {
		t.Fatalf("playing = false after start")
	}
}

func TestDispatchPlayPauseTogglesToStop(t *testing.T) {
	transport := &fakeTransport{snapshot: snapshotAt(0, false, 0)}
	sess := newTestSession(t, transport, newFakeClock())
	sess.ApplySnapshot(snapshotAt(0, true, 10))

	if err := sess.Dispatch(context.Background(), ActionPlayPause, Params{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got := transport.countAction(jb.ActionStop); got != 1 {
		t.Fatalf("stop issued %d times, want 1", got)
	}
}

func TestDispatchPrevious(t *testing.T) {
	cases := []struct {
		name      string
		position  float64
		wantIndex string
	}{
		{"deep into track restarts it", 5, "1"},
		{"just started goes back", 1, "0"},
		{"at threshold goes back", 3, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			transport := &fakeTransport{snapshot: snapshotAt(1, true, 0)}
			sess := newTestSession(t, transport, newFakeClock())
			sess.ApplySnapshot(snapshotAt(1, true, tc.position))

			if err := sess.Dispatch(context.Background(), ActionPrevious, Params{}); err != nil {
				t.Fatalf("dispatch: %v", err)
			}
			cmds := transport.issuedCommands()
			if len(cmds) != 1 || cmds[0].action != jb.ActionSkip {
				t.Fatalf("commands = %+v, want one skip", cmds)
			}
			if got := cmds[0].params.Get("index"); got != tc.wantIndex {
				t.Fatalf("index = %s, want %s", got, tc.wantIndex)
			}
		})
	}
}

func TestDispatchPreviousClampsAtStart(t *testing.T) {
	transport := &fakeTransport{snapshot: snapshotAt(0, true, 0)}
	sess := newTestSession(t, transport, newFakeClock())
	sess.ApplySnapshot(snapshotAt(0, true, 1))

	if err := sess.Dispatch(context.Background(), ActionPrevious, Params{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got := transport.issuedCommands()[0].params.Get("index"); got != "0" {
		t.Fatalf("index = %s, want 0", got)
	}
}

func TestDispatchNextAtQueueEnd(t *testing.T) {
	t.Run("repeat off is a no-op", func(t *testing.T) {
		transport := &fakeTransport{}
		sess := newTestSession(t, transport, newFakeClock())
		sess.ApplySnapshot(snapshotAt(2, true, 0))

		if err := sess.Dispatch(context.Background(), ActionNext, Params{}); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		if got := len(transport.issuedCommands()); got != 0 {
			t.Fatalf("no-op next issued %d commands", got)
		}
		if got := transport.snapshotCalls(); got != 0 {
			t.Fatalf("no-op next forced a refresh")
		}
	})

	t.Run("repeat all wraps to start", func(t *testing.T) {
		transport := &fakeTransport{snapshot: snapshotAt(0, true, 0)}
		sess := newTestSession(t, transport, newFakeClock())
		sess.SetRepeat(RepeatAll)
		sess.ApplySnapshot(snapshotAt(2, true, 0))

		if err := sess.Dispatch(context.Background(), ActionNext, Params{}); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		if got := transport.issuedCommands()[0].params.Get("index"); got != "0" {
			t.Fatalf("index = %s, want 0", got)
		}
	})
}

func TestDispatchAddRandom(t *testing.T) {
	transport := &fakeTransport{
		snapshot:  snapshotAt(0, false, 0),
		randomIDs: []string{"r1", "r2", "r3"},
	}
	sess := newTestSession(t, transport, newFakeClock())

	if err := sess.Dispatch(context.Background(), ActionAddRandom, Params{Count: 3}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	cmds := transport.issuedCommands()
	if len(cmds) != 1 || cmds[0].action != jb.ActionAdd {
		t.Fatalf("commands = %+v, want one add", cmds)
	}
	if got := cmds[0].params["id"]; len(got) != 3 || got[0] != "r1" || got[2] != "r3" {
		t.Fatalf("ids = %v", got)
	}
}

func TestDispatchSetGainClamps(t *testing.T) {
	transport := &fakeTransport{snapshot: snapshotAt(0, false, 0)}
	sess := newTestSession(t, transport, newFakeClock())

	if err := sess.Dispatch(context.Background(), ActionSetGain, Params{Gain: 1.7}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got := transport.issuedCommands()[0].params.Get("gain"); got != "1.00" {
		t.Fatalf("gain = %s, want 1.00", got)
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	sess := newTestSession(t, &fakeTransport{}, newFakeClock())
	if err := sess.Dispatch(context.Background(), "rewind-tape", Params{}); err == nil {
		t.Fatalf("expected error for unknown action")
	}
	if sess.gate.Held() {
		t.Fatalf("gate leaked after unknown action")
	}
}

package session

import (
	"context"
	"testing"
	"time"

	"github.com/avlbx/juke/pkg/jb"
)

func TestTickInterpolatesPosition(t *testing.T) {
	clock := newFakeClock()
	sess := newTestSession(t, &fakeTransport{}, clock)

	sess.ApplySnapshot(snapshotAt(0, true, 10))
	clock.advance(2 * time.Second)
	sess.Tick(context.Background())

	if got := sess.View().Position; got != 12 {
		t.Fatalf("position = %v, want 12", got)
	}
}

func TestTickClampsToDuration(t *testing.T) {
	clock := newFakeClock()
	sess := newTestSession(t, &fakeTransport{}, clock)

	sess.ApplySnapshot(snapshotAt(1, true, 170))
	clock.advance(time.Minute)
	sess.Tick(context.Background())

	if got := sess.View().Position; got != 180 {
		t.Fatalf("position = %v, want clamp to 180", got)
	}
}

func TestTickNoopWhenPaused(t *testing.T) {
	clock := newFakeClock()
	sess := newTestSession(t, &fakeTransport{}, clock)

	sess.ApplySnapshot(snapshotAt(0, false, 10))
	clock.advance(5 * time.Second)
	sess.Tick(context.Background())

	if got := sess.View().Position; got != 10 {
		t.Fatalf("position = %v, want 10", got)
	}
}

func TestTickFrozenWhileSeeking(t *testing.T) {
	clock := newFakeClock()
	sess := newTestSession(t, &fakeTransport{}, clock)

	sess.ApplySnapshot(snapshotAt(0, true, 10))
	sess.BeginPreview(0.5)
	preview := sess.View().Position

	for i := 0; i < 5; i++ {
		clock.advance(time.Second)
		sess.Tick(context.Background())
	}

	if got := sess.View().Position; got != preview {
		t.Fatalf("position = %v, want frozen at %v", got, preview)
	}
}

func TestAutoAdvanceRepeatOneFiresOnce(t *testing.T) {
	clock := newFakeClock()
	transport := &fakeTransport{snapshot: snapshotAt(0, true, 199.3)}
	sess := newTestSession(t, transport, clock)
	sess.SetRepeat(RepeatOne)

	sess.ApplySnapshot(snapshotAt(0, true, 195))
	clock.advance(4300 * time.Millisecond)
	for i := 0; i < 20; i++ {
		sess.Tick(context.Background())
	}

	waitFor(t, func() bool { return transport.countAction(jb.ActionSkip) == 1 })
	time.Sleep(50 * time.Millisecond)
	if got := transport.countAction(jb.ActionSkip); got != 1 {
		t.Fatalf("skip fired %d times, want exactly once", got)
	}

	cmd := transport.issuedCommands()[0]
	if cmd.params.Get("index") != "0" || cmd.params.Get("offset") != "0" {
		t.Fatalf("unexpected restart params: %v", cmd.params)
	}
}

func TestAutoAdvanceRepeatAllWrapsAtQueueEnd(t *testing.T) {
	clock := newFakeClock()
	transport := &fakeTransport{snapshot: snapshotAt(2, true, 239.5)}
	sess := newTestSession(t, transport, clock)
	sess.SetRepeat(RepeatAll)

	sess.ApplySnapshot(snapshotAt(2, true, 239.5))
	sess.Tick(context.Background())

	waitFor(t, func() bool { return transport.countAction(jb.ActionSkip) == 1 })
	cmd := transport.issuedCommands()[0]
	if cmd.params.Get("index") != "0" {
		t.Fatalf("expected jump to index 0, got %v", cmd.params)
	}
}

func TestAutoAdvanceRepeatAllMidQueueDefersToServer(t *testing.T) {
	clock := newFakeClock()
	transport := &fakeTransport{snapshot: snapshotAt(0, true, 199.5)}
	sess := newTestSession(t, transport, clock)
	sess.SetRepeat(RepeatAll)

	sess.ApplySnapshot(snapshotAt(0, true, 199.5))
	for i := 0; i < 5; i++ {
		sess.Tick(context.Background())
	}
	time.Sleep(50 * time.Millisecond)

	if got := len(transport.issuedCommands()); got != 0 {
		t.Fatalf("expected no client command mid-queue, got %d", got)
	}
	if sess.end.phase != endHandled {
		t.Fatalf("end must still be marked handled")
	}
}

func TestAutoAdvanceRepeatOffIssuesNothing(t *testing.T) {
	clock := newFakeClock()
	transport := &fakeTransport{snapshot: snapshotAt(2, true, 239.5)}
	sess := newTestSession(t, transport, clock)

	sess.ApplySnapshot(snapshotAt(2, true, 239.5))
	for i := 0; i < 5; i++ {
		sess.Tick(context.Background())
	}
	time.Sleep(50 * time.Millisecond)

	if got := len(transport.issuedCommands()); got != 0 {
		t.Fatalf("expected no command with repeat off, got %d", got)
	}
}

func TestAutoAdvanceRearmsAfterTrackChange(t *testing.T) {
	clock := newFakeClock()
	transport := &fakeTransport{snapshot: snapshotAt(0, true, 199.3)}
	sess := newTestSession(t, transport, clock)
	sess.SetRepeat(RepeatOne)

	sess.ApplySnapshot(snapshotAt(0, true, 199.3))
	sess.Tick(context.Background())
	waitFor(t, func() bool { return transport.countAction(jb.ActionSkip) == 1 })
	waitFor(t, func() bool { return !sess.gate.Held() })

	// A different track becomes current, then the first track returns near
	// its end: the guard is per track instance and must fire again.
	sess.ApplySnapshot(snapshotAt(1, true, 0))
	sess.ApplySnapshot(snapshotAt(0, true, 199.3))
	sess.Tick(context.Background())
	waitFor(t, func() bool { return transport.countAction(jb.ActionSkip) == 2 })
}

func TestTickIgnoresShortTracks(t *testing.T) {
	clock := newFakeClock()
	transport := &fakeTransport{}
	sess := newTestSession(t, transport, clock)
	sess.SetRepeat(RepeatOne)

	sess.ApplySnapshot(jb.Snapshot{
		Status:  jb.Status{CurrentIndex: 0, Playing: true, Position: 2.5},
		Entries: []jb.Track{{ID: "jingle", Duration: 3}},
	})
	sess.Tick(context.Background())
	time.Sleep(50 * time.Millisecond)

	if got := len(transport.issuedCommands()); got != 0 {
		t.Fatalf("short track must not trigger advance, got %d commands", got)
	}
}

package ports

import (
	"context"
	"net/url"
	"time"

	"github.com/avlbx/juke/pkg/jb"
)

// Transport issues jukebox commands and fetches authoritative snapshots.
// Implementations must return an error for non-success server responses,
// never a zero-value snapshot.
type Transport interface {
	Issue(ctx context.Context, action string, params url.Values) (jb.Snapshot, error)
	Snapshot(ctx context.Context) (jb.Snapshot, error)
	RandomSongIDs(ctx context.Context, count int) ([]string, error)
}

// Clock returns the current wall-clock time. The position interpolator
// needs sub-second resolution, hence time.Time rather than unix seconds.
type Clock interface {
	Now() time.Time
}

// Notifier receives outbound playback notifications for OS integration.
type Notifier interface {
	NowPlayingChanged(track *jb.Track, position float64, playing bool)
	PlaybackStateChanged(playing bool)
}

package output

import (
	"github.com/avlbx/juke/internal/session"
	"github.com/avlbx/juke/pkg/jb"
)

// Printer renders output to stdout.
type Printer interface {
	Print(v any) error
}

// Status is the render model for the status command.
type Status struct {
	Track       *jb.Track `json:"track,omitempty"`
	Playing     bool      `json:"playing"`
	Position    float64   `json:"position"`
	Duration    float64   `json:"duration"`
	Gain        float64   `json:"gain"`
	Index       int       `json:"index"`
	QueueLength int       `json:"queueLength"`
	Repeat      string    `json:"repeat"`
}

// StatusFrom projects a session view into a status render model.
func StatusFrom(v session.View) Status {
	status := Status{
		Playing:     v.Playing,
		Position:    v.Position,
		Gain:        v.Gain,
		Index:       v.CurrentIndex,
		QueueLength: len(v.Queue),
		Repeat:      string(v.Repeat),
	}
	if track := v.Current(); track != nil {
		status.Track = track
		status.Duration = track.Duration
	}
	return status
}

// Queue is the render model for the queue listing.
type Queue struct {
	Index   int        `json:"index"`
	Entries []jb.Track `json:"entries"`
}

// QueueFrom projects a session view into a queue render model.
func QueueFrom(v session.View) Queue {
	return Queue{Index: v.CurrentIndex, Entries: v.Queue}
}

package jb

import (
	"encoding/json"
	"fmt"
)

// APIVersion is the Subsonic protocol version spoken by this client.
const APIVersion = "1.16.1"

// ClientName identifies this client to the server.
const ClientName = "juke"

// Action names accepted by the jukeboxControl endpoint.
const (
	ActionGet     = "get"
	ActionStatus  = "status"
	ActionStart   = "start"
	ActionStop    = "stop"
	ActionSkip    = "skip"
	ActionAdd     = "add"
	ActionClear   = "clear"
	ActionRemove  = "remove"
	ActionShuffle = "shuffle"
	ActionSetGain = "setGain"
)

// Status is the authoritative playback status reported by the server.
type Status struct {
	CurrentIndex int     `json:"currentIndex"`
	Playing      bool    `json:"playing"`
	Gain         float64 `json:"gain"`
	Position     float64 `json:"position"`
}

// Track describes one queue entry. Tracks are immutable once received;
// each snapshot replaces them wholesale.
type Track struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	CoverArt string  `json:"coverArt,omitempty"`
	Duration float64 `json:"duration"`
}

// Snapshot is an authoritative status+queue payload taken at a point in time.
type Snapshot struct {
	Status  Status  `json:"status"`
	Entries []Track `json:"entry"`
}

// APIError is a structured error returned inside the response envelope.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// Well-known Subsonic error codes.
const (
	ErrCodeGeneric       = 0
	ErrCodeParameter     = 10
	ErrCodeAuth          = 40
	ErrCodeNotAuthorized = 50
	ErrCodeNotFound      = 70
)

type playlist struct {
	Status
	Entry []Track `json:"entry"`
}

type response struct {
	Status          string    `json:"status"`
	Version         string    `json:"version"`
	Error           *APIError `json:"error,omitempty"`
	JukeboxStatus   *Status   `json:"jukeboxStatus,omitempty"`
	JukeboxPlaylist *playlist `json:"jukeboxPlaylist,omitempty"`
	RandomSongs     *songList `json:"randomSongs,omitempty"`
}

type songList struct {
	Song []Track `json:"song"`
}

type envelope struct {
	Response response `json:"subsonic-response"`
}

// DecodeSnapshot parses a jukeboxControl response body. The "get" action
// returns a playlist (status plus entries); every other action returns
// status only, in which case Entries is nil.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Snapshot{}, fmt.Errorf("decode response: %w", err)
	}
	if err := envelopeError(env.Response); err != nil {
		return Snapshot{}, err
	}
	if pl := env.Response.JukeboxPlaylist; pl != nil {
		return Snapshot{Status: pl.Status, Entries: pl.Entry}, nil
	}
	if st := env.Response.JukeboxStatus; st != nil {
		return Snapshot{Status: *st}, nil
	}
	return Snapshot{}, fmt.Errorf("response carries no jukebox status")
}

// DecodeRandomSongs parses a getRandomSongs response body.
func DecodeRandomSongs(data []byte) ([]Track, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if err := envelopeError(env.Response); err != nil {
		return nil, err
	}
	if env.Response.RandomSongs == nil {
		return nil, nil
	}
	return env.Response.RandomSongs.Song, nil
}

func envelopeError(resp response) error {
	if resp.Status == "ok" {
		return nil
	}
	if resp.Error != nil {
		return resp.Error
	}
	return fmt.Errorf("server reported status %q", resp.Status)
}

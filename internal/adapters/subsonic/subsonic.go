// Package subsonic implements the jukebox transport against a Subsonic
// compatible server over HTTP.
package subsonic

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/avlbx/juke/pkg/jb"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 8 << 20

	// Commands arrive in user-interaction bursts; the limiter smooths
	// them out rather than hammering the server.
	requestsPerSecond = 4
	requestBurst      = 8
)

// Options configures a Client. BaseURL, Username and Password are required.
type Options struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	Logger   *zap.Logger

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to one Subsonic server with salted-token authentication.
// Safe for concurrent use.
type Client struct {
	base     *url.URL
	username string
	password string
	http     *http.Client
	limiter  *rate.Limiter
	log      *zap.Logger
}

// New validates Options and builds a Client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if opts.Username == "" || opts.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("server URL must be http or https, got %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:     base,
		username: opts.Username,
		password: opts.Password,
		http:     httpClient,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		log:      logger,
	}, nil
}

// Issue sends one jukeboxControl action. The returned snapshot carries
// entries only for the "get" action; other actions report status alone.
func (c *Client) Issue(ctx context.Context, action string, params url.Values) (jb.Snapshot, error) {
	merged := url.Values{}
	for key, values := range params {
		merged[key] = values
	}
	merged.Set("action", action)

	body, err := c.call(ctx, "jukeboxControl", merged)
	if err != nil {
		return jb.Snapshot{}, err
	}
	snap, err := jb.DecodeSnapshot(body)
	if err != nil {
		return jb.Snapshot{}, fmt.Errorf("jukebox %s: %w", action, err)
	}
	return snap, nil
}

// Snapshot fetches the full authoritative status and queue.
func (c *Client) Snapshot(ctx context.Context) (jb.Snapshot, error) {
	return c.Issue(ctx, jb.ActionGet, nil)
}

// RandomSongIDs asks the server for count random songs and returns their IDs.
func (c *Client) RandomSongIDs(ctx context.Context, count int) ([]string, error) {
	params := url.Values{}
	params.Set("size", strconv.Itoa(count))

	body, err := c.call(ctx, "getRandomSongs", params)
	if err != nil {
		return nil, err
	}
	tracks, err := jb.DecodeRandomSongs(body)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(tracks))
	for _, track := range tracks {
		ids = append(ids, track.ID)
	}
	return ids, nil
}

func (c *Client) call(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	target := c.base.JoinPath("rest", endpoint)

	query := url.Values{}
	for key, values := range params {
		query[key] = values
	}
	c.authorize(query)
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected HTTP status %d", endpoint, resp.StatusCode)
	}

	c.log.Debug("request complete",
		zap.String("endpoint", endpoint),
		zap.Duration("elapsed", time.Since(start)),
	)
	return body, nil
}

// authorize adds the salted-token auth and protocol parameters. A fresh
// salt is drawn per request so tokens are never replayable from logs.
func (c *Client) authorize(query url.Values) {
	salt := newSalt()
	sum := md5.Sum([]byte(c.password + salt))

	query.Set("u", c.username)
	query.Set("t", hex.EncodeToString(sum[:]))
	query.Set("s", salt)
	query.Set("v", jb.APIVersion)
	query.Set("c", jb.ClientName)
	query.Set("f", "json")
}

func newSalt() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "0000000000000000"
	}
	return hex.EncodeToString(b[:])
}

// Package mqttfeed subscribes to a broker topic carrying authoritative
// playback snapshots pushed by a server-side bridge. Each message is
// decoded and handed to the session, replacing a poll cycle with a push.
package mqttfeed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/avlbx/juke/pkg/jb"
)

const defaultTimeout = 2 * time.Second

// Options configures the feed subscriber. BrokerURL and Topic are required.
type Options struct {
	BrokerURL string
	Topic     string
	ClientID  string
	Username  string
	Password  string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// Feed consumes pushed snapshots from an MQTT topic. Malformed payloads
// are logged and dropped; the poll loop remains the safety net.
type Feed struct {
	opts  Options
	apply func(jb.Snapshot)
	log   *zap.Logger
}

// New validates Options and builds a Feed. apply is invoked once per
// decoded snapshot, on the paho delivery goroutine.
func New(opts Options, apply func(jb.Snapshot)) (*Feed, error) {
	if opts.BrokerURL == "" {
		return nil, fmt.Errorf("broker URL is required")
	}
	if opts.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if apply == nil {
		return nil, fmt.Errorf("apply func is required")
	}
	if opts.ClientID == "" {
		opts.ClientID = "juke-" + randomSuffix()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Feed{opts: opts, apply: apply, log: opts.Logger}, nil
}

// Run connects, subscribes and blocks until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) error {
	clientOpts := paho.NewClientOptions().AddBroker(f.opts.BrokerURL)
	clientOpts.SetClientID(f.opts.ClientID)
	clientOpts.SetConnectTimeout(f.opts.Timeout)
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetOnConnectHandler(func(client paho.Client) {
		// Resubscribe after every reconnect.
		token := client.Subscribe(f.opts.Topic, 1, f.handleMessage)
		token.Wait()
	})
	if f.opts.Username != "" {
		clientOpts.SetUsername(f.opts.Username)
		clientOpts.SetPassword(f.opts.Password)
	}

	client := paho.NewClient(clientOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect %s: %w", f.opts.BrokerURL, token.Error())
	}
	defer client.Disconnect(250)

	f.log.Info("snapshot feed connected",
		zap.String("broker", f.opts.BrokerURL),
		zap.String("topic", f.opts.Topic),
	)

	<-ctx.Done()
	return nil
}

func (f *Feed) handleMessage(_ paho.Client, msg paho.Message) {
	var snap jb.Snapshot
	if err := json.Unmarshal(msg.Payload(), &snap); err != nil {
		f.log.Warn("dropping malformed snapshot",
			zap.String("topic", msg.Topic()),
			zap.Error(err),
		)
		return
	}
	f.apply(snap)
}

func randomSuffix() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "0"
	}
	return hex.EncodeToString(b[:])
}

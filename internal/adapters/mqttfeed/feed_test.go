package mqttfeed

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	mqtt "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"

	"github.com/avlbx/juke/pkg/jb"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func TestHandleMessageDecodesSnapshot(t *testing.T) {
	var (
		mu   sync.Mutex
		snap jb.Snapshot
		seen int
	)
	feed, err := New(Options{BrokerURL: "tcp://unused:1883", Topic: "juke/status"}, func(s jb.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		snap = s
		seen++
	})
	if err != nil {
		t.Fatalf("new feed: %v", err)
	}

	payload := `{"status":{"currentIndex":1,"playing":true,"gain":0.5,"position":12.5},
	  "entry":[{"id":"t1","title":"One","duration":200}]}`
	feed.handleMessage(nil, fakeMessage{topic: "juke/status", payload: []byte(payload)})

	mu.Lock()
	defer mu.Unlock()
	if seen != 1 {
		t.Fatalf("apply called %d times", seen)
	}
	if snap.Status.CurrentIndex != 1 || !snap.Status.Playing || len(snap.Entries) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestHandleMessageDropsMalformed(t *testing.T) {
	seen := 0
	feed, err := New(Options{BrokerURL: "tcp://unused:1883", Topic: "juke/status"}, func(jb.Snapshot) {
		seen++
	})
	if err != nil {
		t.Fatalf("new feed: %v", err)
	}

	feed.handleMessage(nil, fakeMessage{topic: "juke/status", payload: []byte("not json")})
	if seen != 0 {
		t.Fatalf("apply called for malformed payload")
	}
}

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(Options{Topic: "x"}, func(jb.Snapshot) {}); err == nil {
		t.Fatalf("expected error for missing broker")
	}
	if _, err := New(Options{BrokerURL: "tcp://x"}, func(jb.Snapshot) {}); err == nil {
		t.Fatalf("expected error for missing topic")
	}
	if _, err := New(Options{BrokerURL: "tcp://x", Topic: "t"}, nil); err == nil {
		t.Fatalf("expected error for nil apply")
	}
}

func TestFeedReceivesFromBroker(t *testing.T) {
	addr := freeAddr(t)
	server := mqtt.New(&mqtt.Options{InlineClient: true})
	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		t.Fatalf("add hook: %v", err)
	}
	if err := server.AddListener(listeners.NewTCP(listeners.Config{ID: "t", Address: addr})); err != nil {
		t.Fatalf("add listener: %v", err)
	}
	go func() { _ = server.Serve() }()
	defer server.Close()

	received := make(chan jb.Snapshot, 16)
	feed, err := New(Options{
		BrokerURL: "tcp://" + addr,
		Topic:     "juke/status",
	}, func(s jb.Snapshot) { received <- s })
	if err != nil {
		t.Fatalf("new feed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx) }()

	payload := []byte(`{"status":{"currentIndex":0,"playing":true,"gain":1,"position":3},"entry":[]}`)
	deadline := time.After(5 * time.Second)
	for {
		if err := server.Publish("juke/status", payload, false, 1); err != nil {
			t.Fatalf("publish: %v", err)
		}
		select {
		case snap := <-received:
			if snap.Status.Position != 3 || !snap.Status.Playing {
				t.Fatalf("snapshot = %+v", snap)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("run: %v", err)
			}
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatalf("no snapshot received")
		}
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return fmt.Sprintf("127.0.0.1:%d", ln.Addr().(*net.TCPAddr).Port)
}

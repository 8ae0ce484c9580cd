package transport

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPublisher_BroadcastsToConnectedSubscribers(t *testing.T) {
	pub, err := NewPublisher("127.0.0.1:0", zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	defer pub.Close()
	go pub.Serve()

	conn, err := net.Dial("tcp", pub.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// give the accept loop a moment to register the subscriber.
	deadline := time.Now().Add(2 * time.Second)
	for {
		pub.mu.Lock()
		n := len(pub.subs)
		pub.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	pub.Publish(EventMessage{FrameNumber: 42, Adjustment: -1, Attenuation: 7})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		t.Fatalf("read event: %v", err)
	}

	var evt EventMessage
	if err := json.Unmarshal(line, &evt); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if evt.FrameNumber != 42 || evt.Attenuation != 7 {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestPublisher_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	pub, err := NewPublisher("127.0.0.1:0", zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	defer pub.Close()
	go pub.Serve()

	conn, err := net.Dial("tcp", pub.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close() // never read: subscriber queue should fill and drop, not block

	deadline := time.Now().Add(2 * time.Second)
	for {
		pub.mu.Lock()
		n := len(pub.subs)
		pub.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberQueueDepth*4; i++ {
			pub.Publish(EventMessage{FrameNumber: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

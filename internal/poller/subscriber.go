package poller

import (
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/attenctl/internal/transport"
)

const reconnectBackoff = 2 * time.Second

// Subscriber holds one conflating connection per configured endpoint
// and surfaces whichever endpoints produced a fresh message within a
// single poll window (spec.md §4.2).
type Subscriber struct {
	log       *zap.SugaredLogger
	endpoints []*endpoint
	notify    chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
}

// Dial connects to every address, each under its own reconnecting
// reader goroutine, and returns a ready Subscriber. Dialing happens in
// the background; Poll simply sees no message from an endpoint that
// has not connected yet.
func Dial(log *zap.SugaredLogger, addrs []string) *Subscriber {
	s := &Subscriber{
		log:    log,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, addr := range addrs {
		ep := newEndpoint(addr, log, s.notify)
		s.endpoints = append(s.endpoints, ep)
		s.wg.Add(1)
		go s.maintain(ep, addr)
	}
	return s
}

func (s *Subscriber) maintain(ep *endpoint, addr string) {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		default:
		}

		conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
		if err != nil {
			s.log.Warnw("subscribe endpoint dial failed, retrying", "endpoint", addr, "error", err)
			if !s.sleep(reconnectBackoff) {
				return
			}
			continue
		}

		closeOnDone := make(chan struct{})
		go func() {
			select {
			case <-s.done:
				conn.Close()
			case <-closeOnDone:
			}
		}()

		ep.run(conn, s.done)
		close(closeOnDone)
		conn.Close()

		select {
		case <-s.done:
			return
		default:
		}
		if !s.sleep(reconnectBackoff) {
			return
		}
	}
}

func (s *Subscriber) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-s.done:
		return false
	}
}

// Poll blocks up to timeout waiting for at least one endpoint to have
// produced a new conflated message, then drains every endpoint that
// currently has one (spec.md §4.2's "100ms poll timeout"). It returns
// immediately if messages are already pending, and never blocks longer
// than timeout.
func (s *Subscriber) Poll(timeout time.Duration) []transport.DataMessage {
	if msgs := s.drain(); len(msgs) > 0 {
		return msgs
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.notify:
		return s.drain()
	case <-t.C:
		return nil
	}
}

func (s *Subscriber) drain() []transport.DataMessage {
	var msgs []transport.DataMessage
	for _, ep := range s.endpoints {
		if msg, ok := ep.take(); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// Close stops every reconnect loop and closes its connection.
func (s *Subscriber) Close() error {
	close(s.done)
	s.wg.Wait()
	return nil
}

package transport

import (
	"encoding/json"
	"net"
	"sync"

	"go.uber.org/zap"
)

// subscriberQueueDepth bounds how many unwritten events a slow
// subscriber can accumulate before Publish starts dropping for it
// instead of blocking the publisher (spec.md §4.5: publication is
// fire-and-forget).
const subscriberQueueDepth = 16

// Publisher is the Event Publisher of spec.md §4.5: a TCP server that
// broadcasts one EventMessage per received, non-null data message to
// every currently connected subscriber, without ever blocking on a
// slow or absent reader.
type Publisher struct {
	log *zap.SugaredLogger
	ln  net.Listener

	mu   sync.Mutex
	subs map[net.Conn]chan []byte
}

// NewPublisher binds addr and returns a publisher ready to Serve.
func NewPublisher(addr string, log *zap.SugaredLogger) (*Publisher, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Publisher{log: log, ln: ln, subs: make(map[net.Conn]chan []byte)}, nil
}

// Addr reports the bound address.
func (p *Publisher) Addr() net.Addr {
	return p.ln.Addr()
}

// Serve accepts subscriber connections until the listener is closed.
func (p *Publisher) Serve() error {
	for {
		conn, err := p.ln.Accept()
		if err != nil {
			return err
		}
		p.addSubscriber(conn)
	}
}

func (p *Publisher) addSubscriber(conn net.Conn) {
	ch := make(chan []byte, subscriberQueueDepth)

	p.mu.Lock()
	p.subs[conn] = ch
	p.mu.Unlock()

	go func() {
		for buf := range ch {
			if _, err := conn.Write(buf); err != nil {
				p.dropSubscriber(conn)
				return
			}
		}
	}()
}

func (p *Publisher) dropSubscriber(conn net.Conn) {
	p.mu.Lock()
	ch, ok := p.subs[conn]
	if ok {
		delete(p.subs, conn)
		close(ch)
	}
	p.mu.Unlock()
	conn.Close()
}

// Publish encodes event and enqueues it for every connected
// subscriber. A subscriber whose queue is already full has the event
// dropped for it and logged, rather than stalling every other
// subscriber or the caller.
func (p *Publisher) Publish(event EventMessage) {
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Errorw("failed to encode event", "error", err)
		return
	}
	body = append(body, '\n')

	p.mu.Lock()
	defer p.mu.Unlock()
	for conn, ch := range p.subs {
		select {
		case ch <- body:
		default:
			p.log.Warnw("dropping event for slow subscriber", "frame_number", event.FrameNumber, "subscriber", conn.RemoteAddr())
		}
	}
}

// Close stops accepting new subscribers and closes every existing one.
func (p *Publisher) Close() error {
	err := p.ln.Close()

	p.mu.Lock()
	for conn, ch := range p.subs {
		delete(p.subs, conn)
		close(ch)
		conn.Close()
	}
	p.mu.Unlock()

	return err
}

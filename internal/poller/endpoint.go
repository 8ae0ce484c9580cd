// Package poller is the Data Subscriber (spec.md §4.2): one conflating
// connection per configured endpoint, polled together with a single
// bounded timeout.
package poller

import (
	"bufio"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/tamzrod/attenctl/internal/transport"
)

// endpoint wraps one subscribe connection, conflating to the single
// most recently parsed, well-formed data message. spec.md §4.2: "the
// subscribe transport discards all but the most recent unread message
// per endpoint."
type endpoint struct {
	addr string
	log  *zap.SugaredLogger

	mu     sync.Mutex
	latest *transport.DataMessage

	notify chan struct{}
}

func newEndpoint(addr string, log *zap.SugaredLogger, notify chan struct{}) *endpoint {
	return &endpoint{addr: addr, log: log, notify: notify}
}

// take returns and clears the conflated message, if one has arrived
// since the last take.
func (e *endpoint) take() (transport.DataMessage, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.latest == nil {
		return transport.DataMessage{}, false
	}
	msg := *e.latest
	e.latest = nil
	return msg, true
}

func (e *endpoint) store(msg transport.DataMessage) {
	e.mu.Lock()
	e.latest = &msg
	e.mu.Unlock()

	select {
	case e.notify <- struct{}{}:
	default:
	}
}

// run reads newline-delimited data messages from conn until it closes
// or done fires, conflating each well-formed message and dropping
// malformed ones with a log instead of tearing down the connection.
func (e *endpoint) run(conn net.Conn, done <-chan struct{}) {
	reader := bufio.NewReader(conn)
	for {
		select {
		case <-done:
			return
		default:
		}

		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			msg, perr := transport.ParseDataMessage(line)
			if perr != nil {
				e.log.Warnw("dropping malformed data message", "endpoint", e.addr, "error", perr)
			} else {
				e.store(msg)
			}
		}
		if err != nil {
			e.log.Warnw("subscribe connection read error", "endpoint", e.addr, "error", err)
			return
		}
	}
}

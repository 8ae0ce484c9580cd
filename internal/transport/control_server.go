package transport

import (
	"bufio"
	"encoding/json"
	"net"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher handles one decoded control request and produces the
// reply to write back. Implemented by internal/control.
type Dispatcher func(ControlRequest) ControlReply

// ControlServer is the control channel of spec.md §4.1: a single TCP
// listener, handling one request/reply at a time on its accept loop so
// commands never interleave (spec.md design note 9).
type ControlServer struct {
	log      *zap.SugaredLogger
	ln       net.Listener
	dispatch Dispatcher
}

// NewControlServer binds addr and returns a server ready to Serve.
func NewControlServer(addr string, dispatch Dispatcher, log *zap.SugaredLogger) (*ControlServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &ControlServer{log: log, ln: ln, dispatch: dispatch}, nil
}

// Addr reports the bound address, useful when addr was ":0" in tests.
func (s *ControlServer) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections and handles each one fully before
// accepting the next, deliberately serializing all control traffic.
func (s *ControlServer) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return err
		}
		s.handle(conn)
	}
}

func (s *ControlServer) handle(conn net.Conn) {
	defer conn.Close()

	requestID := uuid.New().String()

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		s.log.Warnw("control connection closed before a request arrived", "request_id", requestID, "error", err)
		return
	}

	req, perr := ParseControlRequest(line)
	if perr != nil {
		s.log.Warnw("rejecting malformed control request", "request_id", requestID, "error", perr)
		s.write(conn, ControlReply{Success: false})
		return
	}

	s.log.Infow("control request received", "request_id", requestID, "command", req.Command)
	reply := s.dispatch(req)
	s.log.Infow("control request handled", "request_id", requestID, "command", req.Command, "success", reply.Success)

	s.write(conn, reply)
}

func (s *ControlServer) write(conn net.Conn, reply ControlReply) {
	body, err := json.Marshal(reply)
	if err != nil {
		s.log.Errorw("failed to encode control reply", "error", err)
		return
	}
	body = append(body, '\n')
	if _, err := conn.Write(body); err != nil {
		s.log.Warnw("failed to write control reply", "error", err)
	}
}

// Close stops accepting new control connections.
func (s *ControlServer) Close() error {
	return s.ln.Close()
}

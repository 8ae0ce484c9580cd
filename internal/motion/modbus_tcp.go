package motion

import (
	"errors"

	"github.com/goburrow/modbus"
)

// NewModbusTCPSink dials a Modbus TCP motion controller and returns a
// MotionSink bound to the given register layout, mirroring the
// teacher's writer/modbus.NewEndpointClient connect-on-construct
// pattern.
func NewModbusTCPSink(cfg TCPConfig) (*registerSink, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("motion: tcp endpoint required")
	}

	handler := modbus.NewTCPClientHandler(cfg.Endpoint)
	handler.Timeout = cfg.Timeout
	handler.SlaveId = cfg.UnitID

	if err := handler.Connect(); err != nil {
		return nil, err
	}

	return &registerSink{
		client: modbus.NewClient(handler),
		closer: handler.Close,
		unitID: cfg.UnitID,
		layout: cfg.Layout,
	}, nil
}

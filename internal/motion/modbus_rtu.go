package motion

import (
	"errors"

	"github.com/goburrow/modbus"
)

// NewModbusRTUSink dials a Modbus RTU (serial, RS-485) motion
// controller. Some PMAC deployments expose the motion controller this
// way instead of over Ethernet; this sink reuses the exact same
// registerSink the TCP path uses, since goburrow/modbus's RTU and TCP
// handlers both satisfy modbus.Client once connected.
func NewModbusRTUSink(cfg RTUConfig) (*registerSink, error) {
	if cfg.SerialPort == "" {
		return nil, errors.New("motion: serial port required")
	}

	handler := modbus.NewRTUClientHandler(cfg.SerialPort)
	handler.BaudRate = cfg.BaudRate
	handler.DataBits = cfg.DataBits
	handler.Parity = cfg.Parity
	handler.StopBits = cfg.StopBits
	handler.SlaveId = cfg.UnitID
	handler.Timeout = cfg.Timeout

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

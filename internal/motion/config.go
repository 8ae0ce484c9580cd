package motion

import "time"

// RegisterLayout is the fixed Modbus geometry for one motion controller.
// Addresses are holding-register/coil offsets on the controller; their
// meaning (which P-variable block, which program trigger) is defined by
// the motion program, not by this package.
type RegisterLayout struct {
	// Phase1Base/Phase2Base are the first of 8 holding registers (4
	// axes * 2 registers, int32 big-endian) holding that phase's target
	// positions.
	Phase1Base uint16
	Phase2Base uint16

	// RunCoil is written ON to trigger the motion program once both
	// phase blocks are written; this package never writes it back OFF.
	RunCoil uint16
	// ShutterCoil is written ON to command emergency shutter closure;
	// this package never writes it back OFF.
	ShutterCoil uint16

	// HealthBase, if HealthEnabled, is the base holding register of the
	// supplemented health-heartbeat block (see SPEC_FULL.md).
	HealthEnabled bool
	HealthBase    uint16
}

// TCPConfig configures a Modbus TCP motion sink.
type TCPConfig struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration
	Layout   RegisterLayout
}

// RTUConfig configures a Modbus RTU (serial) motion sink, for PMAC
// deployments reached over RS-485 instead of Ethernet.
type RTUConfig struct {
	SerialPort string
	BaudRate   int
	DataBits   int
	Parity     string
	StopBits   int
	UnitID     uint8
	Timeout    time.Duration
	Layout     RegisterLayout
}

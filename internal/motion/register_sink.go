package motion

import (
	"fmt"
	"sync"

	"github.com/goburrow/modbus"
)

const (
	coilOn  uint16 = 0xFF00
	coilOff uint16 = 0x0000
)

// registerSink implements filterengine.MotionSink over any
// modbus.Client, regardless of whether the underlying transport is TCP
// or RTU. It serializes requests the same way the teacher's
// EndpointClient does, because goburrow/modbus clients are not
// safe for concurrent use and the move sequence itself (phase1 write,
// phase2 write, run) must not interleave with a shutter command.
type registerSink struct {
	mu     sync.Mutex
	client modbus.Client
	closer func() error
	unitID uint8
	layout RegisterLayout
}

func (s *registerSink) SetMoveTargets(phase int, positions [4]int) error {
	if err := rangeCheck(phase); err != nil {
		return err
	}

	base := s.layout.Phase1Base
	if phase == 2 {
		base = s.layout.Phase2Base
	}

	payload := packPositions(positions)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.client.WriteMultipleRegisters(base, uint16(len(payload)/2), payload); err != nil {
		return fmt.Errorf("motion: write phase %d targets: %w", phase, err)
	}
	return nil
}

func (s *registerSink) RunMoveProgram() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.client.WriteSingleCoil(s.layout.RunCoil, coilOn); err != nil {
		return fmt.Errorf("motion: run move program: %w", err)
	}
	return nil
}

func (s *registerSink) CloseShutter() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.client.WriteSingleCoil(s.layout.ShutterCoil, coilOn); err != nil {
		return fmt.Errorf("motion: close shutter: %w", err)
	}
	return nil
}

// WriteHealth pushes the supplemented health-heartbeat block (health
// code, seconds-in-error) described in SPEC_FULL.md. It is a no-op if
// the layout did not opt in.
func (s *registerSink) WriteHealth(healthCode, secondsInError uint16) error {
	if !s.layout.HealthEnabled {
		return nil
	}

	regs := []uint16{healthCode, secondsInError}
	payload := make([]byte, 4)
	payload[0] = byte(regs[0] >> 8)
	payload[1] = byte(regs[0])
	payload[2] = byte(regs[1] >> 8)
	payload[3] = byte(regs[1])

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.client.WriteMultipleRegisters(s.layout.HealthBase, 2, payload); err != nil {
		return fmt.Errorf("motion: write health heartbeat: %w", err)
	}
	return nil
}

func (s *registerSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// packPositions encodes four possibly-negative axis counts as big-endian
// int32 pairs of registers, following the teacher's packRegisters
// byte order but widened from uint16 to int32 because filter counts are
// not bounded to 16 bits.
func packPositions(positions [4]int) []byte {
	out := make([]byte, 0, 16)
	for _, p := range positions {
		v := int32(p)
		out = append(out,
			byte(v>>24), byte(v>>16), byte(v>>8), byte(v),
		)
	}
	return out
}

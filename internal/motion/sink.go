// Package motion implements the filterengine.MotionSink capability:
// the binding from a two-phase move plan to a real motion controller.
//
// Grounded on the teacher's internal/writer/modbus: a mutex-guarded
// client wrapping github.com/goburrow/modbus, because the motion
// controller in the original source is a PMAC reached the same way the
// teacher reaches its MMA endpoints — numeric register writes over a
// serialized connection.
package motion

import (
	"fmt"

	"go.uber.org/zap"
)

// LoggingSink is a MotionSink that only logs. It satisfies spec.md §6's
// "an implementation without a real motion controller may log and
// no-op these calls" escape hatch, used when no motion endpoint is
// configured (e.g. local testing).
type LoggingSink struct {
	log *zap.SugaredLogger
}

func NewLoggingSink(log *zap.SugaredLogger) *LoggingSink {
	return &LoggingSink{log: log}
}

func (s *LoggingSink) SetMoveTargets(phase int, positions [4]int) error {
	s.log.Infow("motion sink (logging): set move targets", "phase", phase, "positions", positions)
	return nil
}

func (s *LoggingSink) RunMoveProgram() error {
	s.log.Info("motion sink (logging): run move program")
	return nil
}

func (s *LoggingSink) CloseShutter() error {
	s.log.Warn("motion sink (logging): close shutter")
	return nil
}

// rangeCheck is shared by both concrete sinks: filter phase must be 1 or 2.
func rangeCheck(phase int) error {
	if phase != 1 && phase != 2 {
		return fmt.Errorf("motion: invalid phase %d, want 1 or 2", phase)
	}
	return nil
}

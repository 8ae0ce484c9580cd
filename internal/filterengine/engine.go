package filterengine

import (
	"fmt"

	"go.uber.org/zap"
)

// MotionSink is the injected motion-controller capability (spec.md §6).
// An implementation without a real motion controller may log and no-op
// these calls; Engine's behavior is otherwise identical.
type MotionSink interface {
	// SetMoveTargets records the desired axis positions for the given
	// phase (1 = insertions, 2 = retractions).
	SetMoveTargets(phase int, positions [4]int) error
	// RunMoveProgram executes both phases back-to-back on the motion
	// system. Fire-and-forget: callers do not retry on error.
	RunMoveProgram() error
	// CloseShutter commands emergency shutter closure.
	CloseShutter() error
}

// Engine owns the current filter demand and drives MotionSink through
// two-phase moves. It never leaves the beam unattenuated mid-move: if a
// filter must be both added and removed across a transition, the
// insertion happens in phase 1 and the removal only in phase 2, once
// the new filter is already in place.
type Engine struct {
	log       *zap.SugaredLogger
	sink      MotionSink
	positions PositionMap

	current     Demand
	attenuation int
}

// New creates an Engine. The initial demand is all-filters-out
// (attenuation 0); callers that need a different boot state should
// call Apply immediately after construction.
func New(log *zap.SugaredLogger, sink MotionSink, positions PositionMap) *Engine {
	return &Engine{
		log:       log,
		sink:      sink,
		positions: positions,
	}
}

// SetPositions updates the in/out axis targets used for future moves.
// It does not itself move anything; the next Apply uses the new map.
func (e *Engine) SetPositions(positions PositionMap) {
	e.positions = positions
}

// CurrentAttenuation returns the attenuation level of the last applied
// move (0 before the first Apply).
func (e *Engine) CurrentAttenuation() int {
	return e.attenuation
}

// CurrentDemand returns the filter demand vector of the last applied
// move.
func (e *Engine) CurrentDemand() Demand {
	return e.current
}

// Apply clamps level into [0,15], computes the two-phase move plan from
// the current demand, commands both phases through the MotionSink, and
// records the new current demand/attenuation. Per spec.md §4.4 step 1,
// hitting either clamp bound is logged.
//
// MotionSink failures are logged and otherwise ignored: the engine does
// not retry or roll back (spec.md §7, "motion-sink failure").
func (e *Engine) Apply(level int) MovePlan {
	clamped := clamp(level, 0, 15)
	if clamped != level {
		e.log.Warnw("attenuation target clamped", "requested", level, "clamped", clamped)
	}
	if clamped == 0 {
		e.log.Info("attenuation min reached")
	}
	if clamped == 15 {
		e.log.Info("attenuation max reached")
	}

	final := DemandFromLevel(clamped)
	plan := BuildMovePlan(e.current, final, e.positions)

	if err := e.sink.SetMoveTargets(1, plan.Phase1); err != nil {
		e.log.Errorw("motion sink: set phase 1 targets failed", "err", err)
	}
	if err := e.sink.SetMoveTargets(2, plan.Phase2); err != nil {
		e.log.Errorw("motion sink: set phase 2 targets failed", "err", err)
	}
	if err := e.sink.RunMoveProgram(); err != nil {
		e.log.Errorw("motion sink: run move program failed", "err", err)
	}

	e.current = final
	e.attenuation = clamped

	return plan
}

// CloseShutter commands emergency shutter closure through the sink.
// Errors are logged; the engine does not consider a shutter failure
// its own error (spec.md §7).
func (e *Engine) CloseShutter() {
	if err := e.sink.CloseShutter(); err != nil {
		e.log.Errorw("motion sink: close shutter failed", "err", err)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ValidateLevel returns an error if level is outside [0,15]. Apply
// itself never rejects an out-of-range level (it clamps); this helper
// reports the rejection instead of clamping. The `configure` handler
// in internal/config does its own range check and does not call it.
func ValidateLevel(level int) error {
	if level < 0 || level > 15 {
		return fmt.Errorf("filterengine: attenuation %d out of range [0,15]", level)
	}
	return nil
}

package supervisor

import (
	"time"

	"github.com/tamzrod/attenctl/internal/config"
	"github.com/tamzrod/attenctl/internal/fsm"
	"github.com/tamzrod/attenctl/internal/transport"
)

// emaAlpha weights the newest sample against the running
// process_duration average; a higher alpha tracks recent frames more
// closely at the cost of more jitter in the reported value.
const emaAlpha = 0.2

// processMessage implements spec.md §4.3's per-message handling: frame
// bookkeeping, event publication, dedup/high3 screening,
// threshold-driven adjustment, and the filter-engine move. It runs once
// per message returned by a single Poll call, in arrival order.
//
// Per spec.md §9, publication happens before this frame's decision:
// the event carries the *previous* frame's adjustment and the
// attenuation already in effect, not the outcome of the frame that
// triggered it.
func (l *Loop) processMessage(cfg config.Config, msg transport.DataMessage) {
	start := time.Now()

	l.lastReceivedFrame = msg.FrameNumber
	l.lastMessageAt = start

	l.pub.Publish(transport.EventMessage{
		FrameNumber: msg.FrameNumber,
		Adjustment:  l.lastAdjustment,
		Attenuation: l.engine.CurrentAttenuation(),
	})

	adjustment := 0
	moved := false

	switch {
	case l.mode == fsm.ManualMode:
		// MANUAL mode tracks frame arrival for status but never drives
		// the engine from data; only `configure`'s manual_attenuation does.

	case l.mode == fsm.Singleshot && l.state == fsm.SingleshotComplete:
		// A completed singleshot run holds its attenuation until the
		// next singleshot_start; further frames are observed, not acted on.

	case msg.Parameters.High3 > cfg.Thresholds.High3:
		adjustment, moved = l.triggerHigh3(cfg)

	case l.isDuplicateOrAdjacent(msg.FrameNumber):
		l.log.Debugw("dropping duplicate/adjacent frame", "frame_number", msg.FrameNumber, "last_processed", l.lastProcessedFrame)

	default:
		adjustment, moved = l.applyThresholdAdjustment(cfg, msg)
		l.lastProcessedFrame = msg.FrameNumber

		if l.state == fsm.Waiting {
			l.state = fsm.Active
		}
		if l.mode == fsm.Singleshot && l.state == fsm.SingleshotWaiting && adjustment == 0 {
			l.log.Info("singleshot run stabilized")
			l.state = fsm.SingleshotComplete
		}
	}

	if moved {
		if !l.lastMoveAt.IsZero() {
			l.processPeriodUs = float64(time.Since(l.lastMoveAt).Microseconds())
		}
		l.lastMoveAt = time.Now()
	}

	l.recordProcessDuration(time.Since(start))

	l.lastAdjustment = adjustment
}

// isDuplicateOrAdjacent reports whether frameNumber carries no new
// information: spec.md's dedup rule drops both re-deliveries
// (frameNumber <= last_processed_frame) and the frame immediately
// following the last processed one, since the upstream pipeline's
// readout lag means that frame still reflects the pre-adjustment beam.
// The very first frame (last_processed_frame == NO_FRAMES) is never
// treated as a duplicate.
func (l *Loop) isDuplicateOrAdjacent(frameNumber int64) bool {
	if l.lastProcessedFrame == fsm.NoFrames {
		return false
	}
	return frameNumber <= l.lastProcessedFrame || frameNumber == l.lastProcessedFrame+1
}

// triggerHigh3 forces full attenuation and HIGH3_TRIGGERED immediately,
// bypassing dedup entirely (spec.md §4.3: a high3 breach is never
// treated as stale, even on a frame that would otherwise be dropped).
func (l *Loop) triggerHigh3(cfg config.Config) (adjustment int, moved bool) {
	before := l.engine.CurrentAttenuation()
	if l.state != fsm.High3Triggered {
		l.log.Warnw("high3 threshold breached, forcing full attenuation", "threshold", cfg.Thresholds.High3)
	}
	l.state = fsm.High3Triggered
	if l.errorSince.IsZero() {
		l.errorSince = time.Now()
	}

	l.engine.Apply(fsm.MaxAttenuation)
	after := l.engine.CurrentAttenuation()
	return after - before, after != before
}

// applyThresholdAdjustment selects the step size from the threshold
// table in spec.md §4.3 step 6's fixed strict-priority order
// (high2 -> high1 -> low2 -> low1), using strict `>` on the high side
// and strict `<` on the low side so a pixel count exactly at a
// threshold makes no change, and commands the Filter Engine to the new
// level, which itself clamps into [0,15].
func (l *Loop) applyThresholdAdjustment(cfg config.Config, msg transport.DataMessage) (adjustment int, moved bool) {
	p := msg.Parameters
	t := cfg.Thresholds

	switch {
	case p.High2 > t.High2:
		adjustment = 2
	case p.High1 > t.High1:
		adjustment = 1
	case p.Low2 < t.Low2:
		adjustment = -2
	case p.Low1 < t.Low1:
		adjustment = -1
	default:
		adjustment = 0
	}

	if adjustment == 0 {
		return 0, false
	}

	before := l.engine.CurrentAttenuation()
	l.engine.Apply(before + adjustment)
	after := l.engine.CurrentAttenuation()
	return after - before, after != before
}

func (l *Loop) recordProcessDuration(d time.Duration) {
	us := float64(d.Microseconds())
	if l.processDurationEMAUs == 0 {
		l.processDurationEMAUs = us
		return
	}
	l.processDurationEMAUs = emaAlpha*us + (1-emaAlpha)*l.processDurationEMAUs
}

// checkTimeout forces TIMEOUT and full attenuation when the controller
// has been expecting data (WAITING/ACTIVE/SINGLESHOT_*) and none has
// arrived within the configured timeout (spec.md §4.3, design note:
// "force attenuation to 15 on entering error or WAITING-from-healthy").
func (l *Loop) checkTimeout(cfg config.Config) {
	if l.state.IsError() || l.state == fsm.Idle {
		return
	}
	if l.lastMessageAt.IsZero() || cfg.TimeoutSeconds <= 0 {
		return
	}
	if time.Since(l.lastMessageAt) <= durationFromSeconds(cfg.TimeoutSeconds) {
		return
	}

	l.log.Warnw("no data message within timeout, forcing full attenuation", "timeout_seconds", cfg.TimeoutSeconds)
	l.state = fsm.Timeout
	l.errorSince = time.Now()
	l.engine.Apply(fsm.MaxAttenuation)
}

func durationFromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

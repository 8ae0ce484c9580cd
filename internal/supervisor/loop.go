// Package supervisor implements the State Supervisor (spec.md §4.3):
// the subscriber task's loop that polls the Data Subscriber, applies
// the per-frame threshold/dedup algorithm, drives the Filter Engine,
// publishes events, and tracks the control-state machine, including
// the timeout and singleshot sub-logic.
package supervisor

import (
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/attenctl/internal/config"
	"github.com/tamzrod/attenctl/internal/control"
	"github.com/tamzrod/attenctl/internal/filterengine"
	"github.com/tamzrod/attenctl/internal/fsm"
	"github.com/tamzrod/attenctl/internal/status"
	"github.com/tamzrod/attenctl/internal/transport"
)

// pollTimeout is the Data Subscriber's poll window (spec.md §4.2).
const pollTimeout = 100 * time.Millisecond

// dataSource is the subset of *poller.Subscriber the loop needs.
// Narrowing to an interface here, rather than depending on poller
// directly, lets tests drive the loop with a hand-rolled fake instead
// of real sockets -- the same separation the teacher keeps between its
// writer.Plan values and the MotionSink interface that executes them.
type dataSource interface {
	Poll(timeout time.Duration) []transport.DataMessage
}

// eventPublisher is the subset of *transport.Publisher the loop needs.
type eventPublisher interface {
	Publish(event transport.EventMessage)
}

// healthWriter is the optional supplemented health-heartbeat sink
// (SPEC_FULL.md "Device status readback on the motion transport").
// Most MotionSink implementations do not support it; it is injected
// separately through New (nil when absent) rather than widening
// filterengine.MotionSink.
type healthWriter interface {
	WriteHealth(healthCode, secondsInError uint16) error
}

const (
	healthCodeOK    uint16 = 0
	healthCodeError uint16 = 1
)

// Loop owns every piece of mutable controller state that is not itself
// guarded by its own store: frame bookkeeping, timing, and the current
// control state/mode. It is driven by a single goroutine (Run); the
// control dispatcher never touches this state directly, only through
// config.Store, status.Store, and control.Flags.
type Loop struct {
	log      *zap.SugaredLogger
	cfgStore *config.Store
	stStore  *status.Store
	flags    *control.Flags
	sub      dataSource
	pub      eventPublisher
	engine   *filterengine.Engine
	health   healthWriter

	mode  fsm.Mode
	state fsm.State

	lastReceivedFrame  int64
	lastProcessedFrame int64
	lastMessageAt      time.Time
	errorSince         time.Time

	// lastAdjustment is the previous frame's computed adjustment,
	// published with the *next* frame's event per spec.md §9's
	// publish-before-decide ordering (see processMessage).
	lastAdjustment int

	processDurationEMAUs float64
	processPeriodUs      float64
	lastMoveAt           time.Time

	version string
}

// New builds a Loop ready to Run. health may be nil.
func New(
	log *zap.SugaredLogger,
	cfgStore *config.Store,
	stStore *status.Store,
	flags *control.Flags,
	sub dataSource,
	pub eventPublisher,
	engine *filterengine.Engine,
	health healthWriter,
	version string,
) *Loop {
	return &Loop{
		log:                log,
		cfgStore:           cfgStore,
		stStore:            stStore,
		flags:              flags,
		sub:                sub,
		pub:                pub,
		engine:             engine,
		health:             health,
		state:              fsm.Idle,
		lastReceivedFrame:  fsm.NoFrames,
		lastProcessedFrame: fsm.NoFrames,
		version:            version,
	}
}

// Run drives the loop until stop is closed or a shutdown command is
// dispatched. It always publishes a final status snapshot before
// returning.
func (l *Loop) Run(stop <-chan struct{}) {
	defer l.publishStatus()

	for {
		select {
		case <-stop:
			return
		default:
		}

		if l.flags.ShutdownRequested() {
			l.log.Info("shutdown requested, stopping supervisor loop")
			return
		}

		l.tick()
	}
}

func (l *Loop) tick() {
	cfg := l.cfgStore.Get()
	l.reconcileMode(cfg)
	l.drainControlFlags(cfg)

	for _, msg := range l.sub.Poll(pollTimeout) {
		l.processMessage(cfg, msg)
		cfg = l.cfgStore.Get() // configure may have landed mid-batch
	}

	l.checkTimeout(cfg)

	if l.mode == fsm.ManualMode {
		l.applyManualAttenuation(cfg)
	}

	l.publishStatus()
	l.writeHealth()
}

func (l *Loop) reconcileMode(cfg config.Config) {
	if cfg.Mode == l.mode {
		return
	}
	l.log.Infow("control mode changed", "from", l.mode, "to", cfg.Mode)
	l.mode = cfg.Mode

	switch l.mode {
	case fsm.ManualMode:
		if !l.state.IsError() {
			l.state = fsm.Idle
		}

	case fsm.Continuous, fsm.Singleshot:
		if l.state == fsm.Idle {
			l.log.Info("entering WAITING, forcing full attenuation until data arrives")
			l.state = fsm.Waiting
			l.engine.Apply(fsm.MaxAttenuation)
			l.lastMoveAt = time.Now()
		}
	}
}

func (l *Loop) drainControlFlags(cfg config.Config) {
	if l.flags.ClaimReset() {
		l.log.Info("reset requested")
		l.lastReceivedFrame = fsm.NoFrames
		l.lastProcessedFrame = fsm.NoFrames
		l.lastMessageAt = time.Time{}
		l.errorSince = time.Time{}
		l.state = fsm.Idle
	}

	if l.flags.ClaimClearError() {
		if l.state.IsError() {
			l.log.Infow("clearing error state", "from", l.state)
			l.state = fsm.Idle
			l.errorSince = time.Time{}
		} else {
			l.log.Info("clear_error requested but controller was not in an error state")
		}
	}

	if l.flags.ClaimSingleshotStart() {
		if l.mode == fsm.Singleshot {
			l.log.Info("singleshot run started")
			l.state = fsm.SingleshotWaiting
		} else {
			l.log.Warn("singleshot start requested outside SINGLESHOT mode, ignoring")
		}
	}
}

func (l *Loop) applyManualAttenuation(cfg config.Config) {
	if l.engine.CurrentAttenuation() == cfg.ManualAttenuation {
		return
	}
	l.engine.Apply(cfg.ManualAttenuation)
	l.lastMoveAt = time.Now()
}

func (l *Loop) publishStatus() {
	l.stStore.Set(status.Snapshot{
		Version:                     l.version,
		ProcessDurationUs:           l.processDurationEMAUs,
		ProcessPeriodUs:             l.processPeriodUs,
		LastReceivedFrame:           l.lastReceivedFrame,
		LastProcessedFrame:          l.lastProcessedFrame,
		TimeSinceLastMessageSeconds: l.timeSinceLastMessageSeconds(),
		CurrentAttenuation:          l.engine.CurrentAttenuation(),
		TimeoutSeconds:              l.cfgStore.Get().TimeoutSeconds,
		State:                       l.state,
		Mode:                        l.mode,
		InPositions:                 l.cfgStore.Get().InPositions,
		OutPositions:                l.cfgStore.Get().OutPositions,
		Thresholds:                  l.cfgStore.Get().Thresholds,
		FilterNames:                 l.cfgStore.Get().FilterNames,
	})
}

func (l *Loop) timeSinceLastMessageSeconds() int64 {
	if l.lastMessageAt.IsZero() {
		return 0
	}
	return int64(time.Since(l.lastMessageAt).Seconds())
}

func (l *Loop) writeHealth() {
	if l.health == nil {
		return
	}

	code := healthCodeOK
	var secondsInError uint16
	if l.state.IsError() {
		code = healthCodeError
		if !l.errorSince.IsZero() {
			secondsInError = uint16(time.Since(l.errorSince).Seconds())
		}
	}

	if err := l.health.WriteHealth(code, secondsInError); err != nil {
		l.log.Warnw("health heartbeat write failed", "error", err)
	}
}

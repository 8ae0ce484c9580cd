// Package control is the control-server command dispatcher (spec.md
// §4.1): it decodes a ControlRequest, applies or reads the shared
// Config/Snapshot stores, and signals the supervisor loop through a
// small set of atomic flags rather than a channel, matching spec.md
// design note 9 ("shutdown, clear_error, singleshot_start are atomic
// flags; the subscriber task polls them once per loop iteration").
package control

import "sync/atomic"

// Flags are the cross-goroutine signals the control dispatcher raises
// and the supervisor loop consumes. Each is set-and-forget from the
// control side and claimed (test-and-clear) from the supervisor side.
type Flags struct {
	shutdown        atomic.Bool
	clearError      atomic.Bool
	singleshotStart atomic.Bool
	resetRequested  atomic.Bool
}

func NewFlags() *Flags {
	return &Flags{}
}

func (f *Flags) RequestShutdown()    { f.shutdown.Store(true) }
func (f *Flags) RequestClearError()  { f.clearError.Store(true) }
func (f *Flags) RequestSingleshot()  { f.singleshotStart.Store(true) }
func (f *Flags) RequestReset()       { f.resetRequested.Store(true) }

func (f *Flags) ShutdownRequested() bool { return f.shutdown.Load() }

// ClaimClearError reports and clears a pending clear_error request.
func (f *Flags) ClaimClearError() bool {
	return f.clearError.CompareAndSwap(true, false)
}

// ClaimSingleshotStart reports and clears a pending singleshot start.
func (f *Flags) ClaimSingleshotStart() bool {
	return f.singleshotStart.CompareAndSwap(true, false)
}

// ClaimReset reports and clears a pending reset request.
func (f *Flags) ClaimReset() bool {
	return f.resetRequested.CompareAndSwap(true, false)
}

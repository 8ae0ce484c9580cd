// internal/status/snapshot.go
//
// Package status owns the read-mostly runtime status the control
// server reports (spec.md §6 `status` reply). Snapshot carries
// everything the reply needs; Encode has no logic beyond shaping it
// for the wire, exactly as the teacher's status package keeps Encode
// free of side effects and Snapshot free of behavior.
package status

import (
	"github.com/tamzrod/attenctl/internal/config"
	"github.com/tamzrod/attenctl/internal/fsm"
)

// Snapshot represents exactly what the control server is allowed to
// report. It contains no logic.
type Snapshot struct {
	Version string

	ProcessDurationUs float64
	ProcessPeriodUs   float64

	LastReceivedFrame  int64
	LastProcessedFrame int64

	TimeSinceLastMessageSeconds int64

	CurrentAttenuation int
	TimeoutSeconds      float64

	State fsm.State
	Mode  fsm.Mode

	InPositions  [4]int
	OutPositions [4]int
	Thresholds   config.Thresholds
	FilterNames  [4]string
}

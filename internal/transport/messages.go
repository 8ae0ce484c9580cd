// Package transport carries the three wire message shapes spec.md §6
// defines (control request/reply, data message, event message) and the
// TCP servers/clients that move them. Schemas are validated once here;
// the core logic downstream never re-parses raw JSON (spec.md §9).
package transport

import "encoding/json"

// ControlRequest is the control channel's inbound JSON shape.
type ControlRequest struct {
	Command string                     `json:"command"`
	Params  map[string]json.RawMessage `json:"params,omitempty"`
}

// ControlReply is the control channel's outbound JSON shape.
type ControlReply struct {
	Success bool        `json:"success"`
	Status  interface{} `json:"status,omitempty"`
}

// DataParameters is the per-frame histogram summary (spec.md §6).
type DataParameters struct {
	Low1  int `json:"low1"`
	Low2  int `json:"low2"`
	High1 int `json:"high1"`
	High2 int `json:"high2"`
	High3 int `json:"high3"`
}

// DataMessage is one frame's histogram summary as received on a
// subscribe endpoint.
type DataMessage struct {
	FrameNumber int64           `json:"frame_number"`
	Parameters  *DataParameters `json:"parameters"`
}

// EventMessage is published for every received non-null data message
// (spec.md §4.5).
type EventMessage struct {
	FrameNumber int64 `json:"frame_number"`
	Adjustment  int   `json:"adjustment"`
	Attenuation int   `json:"attenuation"`
}

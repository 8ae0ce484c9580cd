package transport

import (
	"encoding/json"
	"fmt"
)

// ParseDataMessage validates and decodes a data payload (spec.md §4.2:
// "Missing frame_number or parameters causes the message to be dropped
// with a log"). Presence is checked before decoding so a present-but-
// zero frame_number is never confused with an absent one.
func ParseDataMessage(raw []byte) (DataMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return DataMessage{}, fmt.Errorf("transport: malformed data message: %w", err)
	}

	fnRaw, ok := fields["frame_number"]
	if !ok {
		return DataMessage{}, fmt.Errorf("transport: data message missing frame_number")
	}
	paramsRaw, ok := fields["parameters"]
	if !ok {
		return DataMessage{}, fmt.Errorf("transport: data message missing parameters")
	}

	var msg DataMessage
	if err := json.Unmarshal(fnRaw, &msg.FrameNumber); err != nil {
		return DataMessage{}, fmt.Errorf("transport: frame_number not an integer: %w", err)
	}

	var params DataParameters
	if err := json.Unmarshal(paramsRaw, &params); err != nil {
		return DataMessage{}, fmt.Errorf("transport: malformed parameters: %w", err)
	}
	msg.Parameters = &params

	return msg, nil
}

// ParseControlRequest validates and decodes a control request (spec.md
// §4.1): parseable JSON, a string `command`, and (for `configure`) a
// `params` object.
func ParseControlRequest(raw []byte) (ControlRequest, error) {
	var req ControlRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return ControlRequest{}, fmt.Errorf("transport: malformed control request: %w", err)
	}
	if req.Command == "" {
		return ControlRequest{}, fmt.Errorf("transport: control request missing command")
	}
	if req.Command == "configure" && req.Params == nil {
		return ControlRequest{}, fmt.Errorf("transport: configure request missing params")
	}
	return req, nil
}

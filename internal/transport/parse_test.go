package transport

import "testing"

func TestParseDataMessage_Valid(t *testing.T) {
	msg, err := ParseDataMessage([]byte(`{"frame_number":3,"parameters":{"low1":1,"low2":2,"high1":3,"high2":4,"high3":5}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.FrameNumber != 3 {
		t.Fatalf("frame_number: got=%d want=3", msg.FrameNumber)
	}
	if msg.Parameters == nil || msg.Parameters.High3 != 5 {
		t.Fatalf("parameters not decoded: %+v", msg.Parameters)
	}
}

func TestParseDataMessage_MissingFrameNumber(t *testing.T) {
	_, err := ParseDataMessage([]byte(`{"parameters":{"low1":1,"low2":1,"high1":1,"high2":1,"high3":1}}`))
	if err == nil {
		t.Fatal("expected an error for a missing frame_number")
	}
}

func TestParseDataMessage_MissingParameters(t *testing.T) {
	_, err := ParseDataMessage([]byte(`{"frame_number":3}`))
	if err == nil {
		t.Fatal("expected an error for missing parameters")
	}
}

func TestParseDataMessage_ZeroFrameNumberIsNotMissing(t *testing.T) {
	msg, err := ParseDataMessage([]byte(`{"frame_number":0,"parameters":{"low1":0,"low2":0,"high1":0,"high2":0,"high3":0}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.FrameNumber != 0 {
		t.Fatalf("frame_number: got=%d want=0", msg.FrameNumber)
	}
}

func TestParseControlRequest_Valid(t *testing.T) {
	req, err := ParseControlRequest([]byte(`{"command":"status"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Command != "status" {
		t.Fatalf("command: got=%q want=status", req.Command)
	}
}

func TestParseControlRequest_MissingCommand(t *testing.T) {
	_, err := ParseControlRequest([]byte(`{"params":{}}`))
	if err == nil {
		t.Fatal("expected an error for a missing command")
	}
}

func TestParseControlRequest_MalformedJSON(t *testing.T) {
	_, err := ParseControlRequest([]byte(`not json`))
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

// internal/stream/decoder.go

// Package stream decodes the run endpoint's event-stream framing into typed
// events. Decoding is pure and stateless: the caller accumulates raw chunks,
// hands the buffer to Decode, and retains the returned remainder for
// concatenation with the next chunk.
package stream

import (
	"encoding/json"
	"strings"

	"github.com/promptcheck/promptcheck/internal/api"
)

// separator delimits complete events in the stream body.
const separator = "\n\n"

// FatalErrorCode marks an error event that aborts the run. Error events with
// any other code are per-case failures already carried by result events.
const FatalErrorCode = "EXECUTION_ERROR"

// Kind is the event name declared by the server.
type Kind string

// The event names the run endpoint emits.
const (
	KindConnected Kind = "connected"
	KindProgress  Kind = "progress"
	KindResult    Kind = "result"
	KindComplete  Kind = "complete"
	KindError     Kind = "error"
)

// Connected reports that the stream opened and declares the total work units.
type Connected struct {
	Total int `json:"total"`
}

// Progress reports one unit of work.
type Progress struct {
	Current      int    `json:"current"`
	Total        int    `json:"total"`
	TestCaseName string `json:"testCaseName"`
}

// Complete carries the final aggregated run record. It is terminal.
type Complete struct {
	TestRun api.TestRun `json:"testRun"`
}

// ErrorPayload carries a stream-level error. Fatal errors are terminal.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Fatal reports whether the error aborts the run.
func (e ErrorPayload) Fatal() bool {
	return e.Code == FatalErrorCode
}

// Event is one decoded stream event. Exactly one payload field is set for
// the recognized kinds; unrecognized kinds keep their raw payload so callers
// can ignore them without losing framing.
type Event struct {
	Kind      Kind
	Connected *Connected
	Progress  *Progress
	Result    *api.TestCaseResult
	Complete  *Complete
	Error     *ErrorPayload
	Raw       json.RawMessage
}

// Decode extracts every complete event from buf and returns the unconsumed
// suffix. The remainder is everything after the last complete separator, so
// a buffer ending mid-event is never consumed and multiple complete events
// delivered in one chunk are all returned together. Malformed blocks are
// skipped without aborting the pass.
func Decode(buf string) ([]Event, string) {
	idx := strings.LastIndex(buf, separator)
	if idx < 0 {
		return nil, buf
	}

	rest := buf[idx+len(separator):]

	var events []Event
	for _, block := range strings.Split(buf[:idx], separator) {
		event, ok := parseBlock(block)
		if !ok {
			continue
		}
		events = append(events, event)
	}
	return events, rest
}

// parseBlock decodes a single event block: an event-name line plus one or
// more data lines holding the JSON payload.
func parseBlock(block string) (Event, bool) {
	var name string
	var dataLines []string

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}

	if name == "" {
		return Event{}, false
	}
	data := strings.Join(dataLines, "\n")

	switch Kind(name) {
	case KindConnected:
		var payload Connected
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return Event{}, false
		}
		return Event{Kind: KindConnected, Connected: &payload}, true
	case KindProgress:
		var payload Progress
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return Event{}, false
		}
		return Event{Kind: KindProgress, Progress: &payload}, true
	case KindResult:
		var payload api.TestCaseResult
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return Event{}, false
		}
		return Event{Kind: KindResult, Result: &payload}, true
	case KindComplete:
		var payload Complete
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return Event{}, false
		}
		return Event{Kind: KindComplete, Complete: &payload}, true
	case KindError:
		var payload ErrorPayload
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return Event{}, false
		}
		return Event{Kind: KindError, Error: &payload}, true
	default:
		return Event{Kind: Kind(name), Raw: json.RawMessage(data)}, true
	}
}

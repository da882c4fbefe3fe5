package agent

import "encoding/json"

// Event is one item on the stream delivered to the client. Every event
// serializes with a "type" discriminator; a stream ends with exactly one
// DoneEvent or ErrorEvent.
type Event interface {
	eventType() string
}

// TokenEvent carries one increment of assistant text.
type TokenEvent struct {
	Content string `json:"content"`
}

// ToolCallStartEvent announces a tool invocation before it runs.
type ToolCallStartEvent struct {
	ToolName  string          `json:"tool_name"`
	ToolID    string          `json:"tool_id"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolCallEndEvent carries the full result text of a completed tool call.
type ToolCallEndEvent struct {
	ToolID string `json:"tool_id"`
	Result string `json:"result"`
}

// DoneEvent terminates the stream with the accumulated assistant text.
type DoneEvent struct {
	Content string `json:"content"`
}

// ErrorEvent terminates the stream after an unrecoverable fault.
type ErrorEvent struct {
	Message string `json:"message"`
}

func (TokenEvent) eventType() string         { return "token" }
func (ToolCallStartEvent) eventType() string { return "tool_call_start" }
func (ToolCallEndEvent) eventType() string   { return "tool_call_end" }
func (DoneEvent) eventType() string          { return "done" }
func (ErrorEvent) eventType() string         { return "error" }

func (e TokenEvent) MarshalJSON() ([]byte, error) {
	type alias TokenEvent
	return marshalTagged(e.eventType(), alias(e))
}

func (e ToolCallStartEvent) MarshalJSON() ([]byte, error) {
	type alias ToolCallStartEvent
	return marshalTagged(e.eventType(), alias(e))
}

func (e ToolCallEndEvent) MarshalJSON() ([]byte, error) {
	type alias ToolCallEndEvent
	return marshalTagged(e.eventType(), alias(e))
}

func (e DoneEvent) MarshalJSON() ([]byte, error) {
	type alias DoneEvent
	return marshalTagged(e.eventType(), alias(e))
}

func (e ErrorEvent) MarshalJSON() ([]byte, error) {
	type alias ErrorEvent
	return marshalTagged(e.eventType(), alias(e))
}

func marshalTagged(typ string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	tagged := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &tagged); err != nil {
		return nil, err
	}
	tagged["type"] = json.RawMessage(`"` + typ + `"`)
	return json.Marshal(tagged)
}

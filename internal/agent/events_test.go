package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerialization(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{
			name:     "token",
			event:    TokenEvent{Content: "hello"},
			expected: `{"type":"token","content":"hello"}`,
		},
		{
			name:     "tool call start",
			event:    ToolCallStartEvent{ToolName: "list_tables", ToolID: "call_1", Arguments: json.RawMessage(`{"database":"msdb"}`)},
			expected: `{"type":"tool_call_start","tool_name":"list_tables","tool_id":"call_1","arguments":{"database":"msdb"}}`,
		},
		{
			name:     "tool call end",
			event:    ToolCallEndEvent{ToolID: "call_1", Result: "patients"},
			expected: `{"type":"tool_call_end","tool_id":"call_1","result":"patients"}`,
		},
		{
			name:     "done",
			event:    DoneEvent{Content: "answer"},
			expected: `{"type":"done","content":"answer"}`,
		},
		{
			name:     "error",
			event:    ErrorEvent{Message: "boom"},
			expected: `{"type":"error","message":"boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(payload))
		})
	}
}

// Clients dispatch on the "type" field alone; it must survive marshaling
// through the interface, not just the concrete types.
func TestEventTypeTagThroughInterface(t *testing.T) {
	events := []Event{
		TokenEvent{},
		ToolCallStartEvent{Arguments: json.RawMessage(`{}`)},
		ToolCallEndEvent{},
		DoneEvent{},
		ErrorEvent{},
	}
	expected := []string{"token", "tool_call_start", "tool_call_end", "done", "error"}

	for i, event := range events {
		payload, err := json.Marshal(event)
		require.NoError(t, err)

		var tagged struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(payload, &tagged))
		assert.Equal(t, expected[i], tagged.Type)
	}
}

package contract

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of the conversation sent to the model. A tool message
// answers exactly one tool call of the assistant message right before it.
type Message struct {
	Role       string      `json:"role"`
	Content    string      `json:"content"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	ToolCalls  []*ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a complete tool invocation requested by the model. Arguments is
// the raw JSON text exactly as the model produced it.
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type ToolDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type CompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Tools    []ToolDef `json:"tools,omitempty"`
}

// StreamDelta is one increment of a streamed completion. A delta may carry
// text, tool-call fragments, both, or neither.
type StreamDelta struct {
	Content   string
	ToolCalls []ToolCallDelta
}

// ToolCallDelta is a fragment of a tool call under construction. Fragments
// for the same call share an Index local to the current model turn; ID and
// Name arrive at most once, Arguments streams as partial JSON text.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

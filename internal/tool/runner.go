package tool

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/queryms/msconsole/internal/model/contract"
)

var emptyArguments = json.RawMessage(`{}`)

// Runner dispatches tool calls selected by the model. Bad tool selection and
// malformed arguments are recovered into normal result text so the model can
// see and react to its own mistakes; only hard faults (database unreachable)
// surface as errors.
type Runner struct {
	registry *Registry
}

func NewRunner(registry *Registry) *Runner {
	return &Runner{registry: registry}
}

func (r *Runner) Descriptors() []contract.ToolDef {
	if r == nil || r.registry == nil {
		return nil
	}
	return r.registry.Descriptors()
}

// Dispatch routes one tool call. An unrecognized name yields result text,
// never an error: the loop must not fail because of the model's tool choice.
func (r *Runner) Dispatch(ctx context.Context, name string, args json.RawMessage) (string, error) {
	t, ok := r.registry.Get(name)
	if !ok {
		slog.Warn("Unknown tool requested", "tool", name)
		return "Unknown tool: " + name, nil
	}

	start := time.Now()
	slog.Info("Executing tool", "tool", name)

	result, err := t.Execute(ctx, args)

	duration := time.Since(start)
	if err != nil {
		slog.Error("Tool execution failed", "tool", name, "error", err, "duration", duration)
		return "", err
	}

	slog.Info("Tool execution success", "tool", name, "duration", duration)
	return result, nil
}

// NormalizeArguments coerces a streamed argument payload into a JSON object.
// Malformed or non-object payloads fall back to the empty object; a bad
// argument string never fails the turn.
func NormalizeArguments(arguments string) json.RawMessage {
	raw := json.RawMessage(arguments)
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return emptyArguments
	}
	return raw
}

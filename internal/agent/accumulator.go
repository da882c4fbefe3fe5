package agent

import (
	"sort"
	"strings"

	"github.com/queryms/msconsole/internal/model/contract"
)

// turnAccumulator rebuilds one assistant turn from stream deltas. Providers
// fragment tool calls arbitrarily: the index is the only stable identity, the
// ID and name land in some fragment, and the argument text arrives as
// concatenable pieces of a JSON document.
type turnAccumulator struct {
	content strings.Builder
	calls   map[int]*pendingCall
}

type pendingCall struct {
	index int
	id    string
	name  string
	args  strings.Builder
}

func newTurnAccumulator() *turnAccumulator {
	return &turnAccumulator{calls: make(map[int]*pendingCall)}
}

func (a *turnAccumulator) Add(delta contract.StreamDelta) {
	a.content.WriteString(delta.Content)

	for _, tc := range delta.ToolCalls {
		call, ok := a.calls[tc.Index]
		if !ok {
			call = &pendingCall{index: tc.Index}
			a.calls[tc.Index] = call
		}
		if tc.ID != "" {
			call.id = tc.ID
		}
		if tc.Name != "" {
			call.name = tc.Name
		}
		call.args.WriteString(tc.Arguments)
	}
}

func (a *turnAccumulator) Content() string {
	return a.content.String()
}

func (a *turnAccumulator) HasToolCalls() bool {
	return len(a.calls) > 0
}

// ToolCalls returns the completed calls in ascending index order, which is
// the order the model issued them.
func (a *turnAccumulator) ToolCalls() []contract.ToolCall {
	pending := make([]*pendingCall, 0, len(a.calls))
	for _, call := range a.calls {
		pending = append(pending, call)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].index < pending[j].index })

	out := make([]contract.ToolCall, 0, len(pending))
	for _, call := range pending {
		out = append(out, contract.ToolCall{
			ID:        call.id,
			Name:      call.name,
			Arguments: call.args.String(),
		})
	}
	return out
}

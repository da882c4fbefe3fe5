package tool

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/queryms/msconsole/internal/model/contract"
)

// Tool represents an executable capability advertised to the model. Results
// are prose: the consumer is a language model, not a machine parser.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds the static, process-wide tool set.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	name := strings.TrimSpace(t.Name())
	if name == "" {
		panic("tool: empty tool name")
	}
	r.tools[name] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[strings.TrimSpace(name)]
	return t, ok
}

// Descriptors returns the tool definitions advertised to the model on every
// invocation, in stable name order.
func (r *Registry) Descriptors() []contract.ToolDef {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]contract.ToolDef, 0, len(names))
	for _, name := range names {
		t := r.tools[name]
		defs = append(defs, contract.ToolDef{
			Name:        name,
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

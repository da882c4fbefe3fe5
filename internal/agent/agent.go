package agent

import (
	"context"
	"io"
	"log/slog"

	"github.com/queryms/msconsole/internal/model"
	"github.com/queryms/msconsole/internal/model/contract"
	"github.com/queryms/msconsole/internal/tool"
	"github.com/queryms/msconsole/internal/worker"
)

// Agent runs the streaming tool-call loop: invoke the model, surface text
// tokens as they arrive, execute any requested tools, feed the results back,
// repeat until the model answers in plain text or the iteration cap is hit.
type Agent struct {
	provider      model.StreamProvider
	tools         *tool.Runner
	pool          *worker.Pool
	model         string
	maxIterations int
	systemPrompt  string
}

type Option func(*Agent)

func WithModel(name string) Option {
	return func(a *Agent) {
		if name != "" {
			a.model = name
		}
	}
}

func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		if prompt != "" {
			a.systemPrompt = prompt
		}
	}
}

func New(provider model.StreamProvider, tools *tool.Runner, pool *worker.Pool, opts ...Option) *Agent {
	a := &Agent{
		provider:      provider,
		tools:         tools,
		pool:          pool,
		model:         "gpt-4o",
		maxIterations: 10,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) Model() string { return a.model }

// ChatStream runs one conversation turn and streams its events. The channel
// is closed after a terminal event (done or error); exactly one terminal
// event is sent unless the context is cancelled first.
func (a *Agent) ChatStream(ctx context.Context, userMessage string, history []contract.Message, modelOverride string) <-chan Event {
	events := make(chan Event, 16)

	go func() {
		defer close(events)
		a.run(ctx, userMessage, history, modelOverride, events)
	}()

	return events
}

func (a *Agent) run(ctx context.Context, userMessage string, history []contract.Message, modelOverride string, events chan<- Event) {
	emit := func(e Event) bool {
		select {
		case events <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}

	modelName := a.model
	if modelOverride != "" {
		modelName = modelOverride
	}

	messages := make([]contract.Message, 0, len(history)+2)
	messages = append(messages, contract.Message{Role: contract.RoleSystem, Content: a.systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, contract.Message{Role: contract.RoleUser, Content: userMessage})

	var allContent string

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		acc := newTurnAccumulator()

		req := contract.CompletionRequest{
			Model:    modelName,
			Messages: messages,
			Tools:    a.tools.Descriptors(),
		}

		// One pool slot covers the whole model stream, dial through final
		// delta.
		err := a.pool.Do(ctx, func() error {
			stream, err := a.provider.CreateStream(ctx, req)
			if err != nil {
				return err
			}
			return a.consumeStream(ctx, stream, acc, &allContent, emit)
		})
		if err != nil {
			slog.Error("Model stream failed", "model", modelName, "error", err)
			emit(ErrorEvent{Message: err.Error()})
			return
		}

		if !acc.HasToolCalls() {
			emit(DoneEvent{Content: allContent})
			return
		}

		calls := acc.ToolCalls()

		assistant := contract.Message{
			Role:    contract.RoleAssistant,
			Content: acc.Content(),
		}
		for i := range calls {
			assistant.ToolCalls = append(assistant.ToolCalls, &calls[i])
		}
		messages = append(messages, assistant)

		for _, call := range calls {
			args := tool.NormalizeArguments(call.Arguments)

			if !emit(ToolCallStartEvent{ToolName: call.Name, ToolID: call.ID, Arguments: args}) {
				return
			}

			var result string
			err := a.pool.Do(ctx, func() error {
				var err error
				result, err = a.tools.Dispatch(ctx, call.Name, args)
				return err
			})
			if err != nil {
				slog.Error("Tool call failed", "tool", call.Name, "error", err)
				emit(ErrorEvent{Message: err.Error()})
				return
			}

			messages = append(messages, contract.Message{
				Role:       contract.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})

			if !emit(ToolCallEndEvent{ToolID: call.ID, Result: result}) {
				return
			}
		}
	}

	slog.Warn("Iteration cap reached", "max_iterations", a.maxIterations)
	emit(DoneEvent{Content: allContent})
}

// consumeStream drains one model stream into the accumulator, emitting a
// token event per non-empty text delta.
func (a *Agent) consumeStream(ctx context.Context, stream model.Stream, acc *turnAccumulator, allContent *string, emit func(Event) bool) error {
	defer stream.Close()

	for {
		delta, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		acc.Add(delta)

		if delta.Content != "" {
			*allContent += delta.Content
			if !emit(TokenEvent{Content: delta.Content}) {
				return ctx.Err()
			}
		}
	}
}

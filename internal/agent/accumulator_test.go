package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queryms/msconsole/internal/model/contract"
)

func TestAccumulatorContent(t *testing.T) {
	acc := newTurnAccumulator()
	acc.Add(contract.StreamDelta{Content: "Hello"})
	acc.Add(contract.StreamDelta{Content: ", "})
	acc.Add(contract.StreamDelta{Content: "world"})

	assert.Equal(t, "Hello, world", acc.Content())
	assert.False(t, acc.HasToolCalls())
	assert.Empty(t, acc.ToolCalls())
}

func TestAccumulatorReassemblesFragmentedToolCall(t *testing.T) {
	acc := newTurnAccumulator()

	// ID and name arrive on the first fragment, arguments trickle in.
	acc.Add(contract.StreamDelta{ToolCalls: []contract.ToolCallDelta{
		{Index: 0, ID: "call_1", Name: "execute_query", Arguments: `{"que`},
	}})
	acc.Add(contract.StreamDelta{ToolCalls: []contract.ToolCallDelta{
		{Index: 0, Arguments: `ry":"SELECT`},
	}})
	acc.Add(contract.StreamDelta{ToolCalls: []contract.ToolCallDelta{
		{Index: 0, Arguments: ` 1"}`},
	}})

	require.True(t, acc.HasToolCalls())
	calls := acc.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].ID)
	assert.Equal(t, "execute_query", calls[0].Name)
	assert.Equal(t, `{"query":"SELECT 1"}`, calls[0].Arguments)
}

func TestAccumulatorInterleavedCallsSortByIndex(t *testing.T) {
	acc := newTurnAccumulator()

	acc.Add(contract.StreamDelta{ToolCalls: []contract.ToolCallDelta{
		{Index: 1, ID: "call_b", Name: "execute_query", Arguments: `{"query":`},
		{Index: 0, ID: "call_a", Name: "list_tables", Arguments: `{`},
	}})
	acc.Add(contract.StreamDelta{ToolCalls: []contract.ToolCallDelta{
		{Index: 0, Arguments: `}`},
		{Index: 1, Arguments: `"SHOW TABLES"}`},
	}})

	calls := acc.ToolCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "call_a", calls[0].ID)
	assert.Equal(t, "list_tables", calls[0].Name)
	assert.Equal(t, `{}`, calls[0].Arguments)
	assert.Equal(t, "call_b", calls[1].ID)
	assert.Equal(t, `{"query":"SHOW TABLES"}`, calls[1].Arguments)
}

func TestAccumulatorLaterIDAndNameWin(t *testing.T) {
	acc := newTurnAccumulator()

	acc.Add(contract.StreamDelta{ToolCalls: []contract.ToolCallDelta{
		{Index: 0, ID: "call_1", Name: "list_tables"},
	}})
	// Empty fragments never erase what is already known.
	acc.Add(contract.StreamDelta{ToolCalls: []contract.ToolCallDelta{
		{Index: 0, Arguments: `{}`},
	}})

	calls := acc.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].ID)
	assert.Equal(t, "list_tables", calls[0].Name)
}

func TestAccumulatorMixedTextAndToolFragments(t *testing.T) {
	acc := newTurnAccumulator()
	acc.Add(contract.StreamDelta{
		Content: "Let me check. ",
		ToolCalls: []contract.ToolCallDelta{
			{Index: 0, ID: "call_1", Name: "list_tables", Arguments: `{}`},
		},
	})

	assert.Equal(t, "Let me check. ", acc.Content())
	assert.True(t, acc.HasToolCalls())
}

package builtin

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolNames(t *testing.T) {
	assert.Equal(t, "list_tables", (&ListTablesTool{}).Name())
	assert.Equal(t, "execute_query", (&ExecuteQueryTool{}).Name())
}

func TestListTablesSchema(t *testing.T) {
	params := (&ListTablesTool{}).Parameters()

	assert.Equal(t, "object", params["type"])
	props, ok := params["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "database")
	assert.Empty(t, params["required"])
}

func TestExecuteQuerySchema(t *testing.T) {
	params := (&ExecuteQueryTool{}).Parameters()

	props, ok := params["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "query")
	assert.Contains(t, props, "database")
	assert.Equal(t, []string{"query"}, params["required"])
}

func TestExecuteQueryRejectsMissingQuery(t *testing.T) {
	// Argument validation happens before the store is touched, so a nil store
	// is safe here.
	tool := &ExecuteQueryTool{}

	out, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, out, "required")
}

func TestExecuteQueryRejectsMalformedArguments(t *testing.T) {
	tool := &ExecuteQueryTool{}

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":`))
	require.NoError(t, err)
	assert.Contains(t, out, "invalid arguments")
}

func TestListTablesRejectsMalformedArguments(t *testing.T) {
	tool := &ListTablesTool{}

	out, err := tool.Execute(context.Background(), json.RawMessage(`[]`))
	require.NoError(t, err)
	assert.Contains(t, out, "invalid arguments")
}

func TestDescriptionsMentionReadOnlyContract(t *testing.T) {
	// The model only knows the rules it is told.
	assert.Contains(t, (&ExecuteQueryTool{}).Description(), "READ-ONLY")
	assert.Contains(t, (&ListTablesTool{}).Description(), "schema")
}

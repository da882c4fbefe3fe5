package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/queryms/msconsole/internal/db"
)

type executeQueryInput struct {
	Query    string `json:"query"`
	Database string `json:"database"`
}

// ExecuteQueryTool runs read-only SQL selected by the model. The read-only
// gate lives in the store, immediately before execution.
type ExecuteQueryTool struct {
	Store *db.Store
}

func (t *ExecuteQueryTool) Name() string { return "execute_query" }

func (t *ExecuteQueryTool) Description() string {
	return "Execute a READ-ONLY SQL query on the MySQL database for rapid clinical data retrieval. " +
		"Only SELECT, SHOW, DESCRIBE, and EXPLAIN queries are allowed for security and data integrity. " +
		"Supports complex queries with joins, aggregations, and filtering."
}

func (t *ExecuteQueryTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "SQL SELECT query to execute. Only read-only queries (SELECT, SHOW, DESCRIBE, EXPLAIN) are allowed.",
			},
			"database": map[string]interface{}{
				"type":        "string",
				"description": "Database name to execute query against (optional, uses default if not specified).",
			},
		},
		"required": []string{"query"},
	}
}

func (t *ExecuteQueryTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input executeQueryInput
	if err := json.Unmarshal(args, &input); err != nil {
		return fmt.Sprintf("Error: invalid arguments: %v", err), nil
	}
	if input.Query == "" {
		return "Error: 'query' argument is required.", nil
	}
	return t.Store.ExecuteQuery(ctx, input.Query, input.Database)
}

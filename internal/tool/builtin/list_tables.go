package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/queryms/msconsole/internal/db"
)

type listTablesInput struct {
	Database string `json:"database"`
}

// ListTablesTool reports database structure so the model can orient itself
// before writing queries.
type ListTablesTool struct {
	Store *db.Store
}

func (t *ListTablesTool) Name() string { return "list_tables" }

func (t *ListTablesTool) Description() string {
	return "List all tables in the MySQL database with their columns and data types. " +
		"Returns comprehensive schema information including table structure, column names, " +
		"data types, constraints, and relationships. Use this tool first to understand what data is available."
}

func (t *ListTablesTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"database": map[string]interface{}{
				"type":        "string",
				"description": "Database name to list tables from. If not specified, lists all accessible databases.",
			},
		},
		"required": []string{},
	}
}

func (t *ListTablesTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input listTablesInput
	if err := json.Unmarshal(args, &input); err != nil {
		return fmt.Sprintf("Error: invalid arguments: %v", err), nil
	}
	return t.Store.ListTables(ctx, input.Database)
}

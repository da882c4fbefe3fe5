package db

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDatabaseList(t *testing.T) {
	out := renderDatabaseList([]string{"msdb", "information_schema"})

	assert.Contains(t, out, "Available databases:")
	assert.Contains(t, out, "  - msdb")
	assert.Contains(t, out, "  - information_schema")
	assert.Contains(t, out, "Tip: specify a database name to see its tables.")
}

func TestRenderColumnLine(t *testing.T) {
	tests := []struct {
		name     string
		col      Column
		expected string
	}{
		{
			name:     "primary key not null",
			col:      Column{Field: "id", Type: "int", Null: "NO", Key: "PRI"},
			expected: "  id: int [PK] NOT NULL",
		},
		{
			name:     "plain nullable column",
			col:      Column{Field: "name", Type: "varchar(255)", Null: "YES"},
			expected: "  name: varchar(255)",
		},
		{
			name:     "indexed foreign key",
			col:      Column{Field: "patient_id", Type: "int", Null: "YES", Key: "MUL"},
			expected: "  patient_id: int [FK]",
		},
		{
			name:     "unique",
			col:      Column{Field: "mrn", Type: "varchar(32)", Null: "NO", Key: "UNI"},
			expected: "  mrn: varchar(32) [UNIQUE] NOT NULL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderColumnLine(tt.col))
		})
	}
}

func TestRenderTableSection(t *testing.T) {
	columns := []Column{
		{Field: "id", Type: "int", Null: "NO", Key: "PRI"},
		{Field: "name", Type: "varchar(255)", Null: "YES"},
	}

	out := renderTableSection("patients", columns, 42, true)
	assert.Contains(t, out, "patients\n--------\n")
	assert.Contains(t, out, "  id: int [PK] NOT NULL\n")
	assert.Contains(t, out, "  Rows: 42\n")

	// Failed count probes leave the row line out entirely.
	out = renderTableSection("patients", columns, 0, false)
	assert.NotContains(t, out, "Rows:")
}

func TestRenderResultTable(t *testing.T) {
	out := renderResultTable(
		[]string{"id", "name"},
		[][]string{
			{"1", "alice"},
			{"2", "NULL"},
		},
	)

	assert.Contains(t, out, "Query results (2 rows)")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "Total: 2 rows, 2 columns")
	assert.NotContains(t, out, "Showing")

	lines := strings.Split(out, "\n")
	var header string
	for _, line := range lines {
		if strings.Contains(line, "id") && strings.Contains(line, "|") {
			header = line
			break
		}
	}
	require.NotEmpty(t, header)
	assert.Contains(t, header, " | ")
}

func TestRenderResultTableRowLimit(t *testing.T) {
	rows := make([][]string, 120)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("%d", i)}
	}

	out := renderResultTable([]string{"id"}, rows)

	assert.Contains(t, out, "Query results (120 rows)")
	assert.Contains(t, out, "Showing 50 of 120 rows")
	assert.Contains(t, out, "Add a LIMIT clause to your query for specific row counts.")
	assert.Contains(t, out, "Total: 120 rows, 1 columns")

	// Row 49 is the last rendered data row; row 50 is cut.
	assert.Contains(t, out, "\n49")
	assert.NotContains(t, out, "\n50 ")
}

func TestRenderResultTableWidthCapping(t *testing.T) {
	long := strings.Repeat("x", 80)
	out := renderResultTable([]string{"note"}, [][]string{{long}})

	assert.NotContains(t, out, long)
	assert.Contains(t, out, strings.Repeat("x", maxCellWidth))
}

func TestPad(t *testing.T) {
	assert.Equal(t, "abc  ", pad("abc", 5))
	assert.Equal(t, "ab", pad("abcd", 2))
	assert.Equal(t, "", pad("", 0))
}

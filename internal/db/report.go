package db

import (
	"fmt"
	"strings"
)

const (
	// displayRowLimit caps how many result rows are rendered.
	displayRowLimit = 50
	// widthProbeRows caps how many rows participate in column width sizing.
	widthProbeRows = 100
	// maxCellWidth caps every rendered cell and column.
	maxCellWidth = 50
)

// Column is one DESCRIBE row reduced to what the schema report needs.
type Column struct {
	Field string
	Type  string
	Null  string
	Key   string
}

func renderDatabaseList(databases []string) string {
	var b strings.Builder
	b.WriteString("Available databases:\n")
	b.WriteString(strings.Repeat("=", 30) + "\n")
	for _, name := range databases {
		fmt.Fprintf(&b, "  - %s\n", name)
	}
	b.WriteString("\nTip: specify a database name to see its tables.\n")
	return b.String()
}

func renderColumnLine(col Column) string {
	line := fmt.Sprintf("  %s: %s", col.Field, col.Type)
	switch col.Key {
	case "PRI":
		line += " [PK]"
	case "MUL":
		line += " [FK]"
	case "UNI":
		line += " [UNIQUE]"
	}
	if col.Null == "NO" {
		line += " NOT NULL"
	}
	return line
}

func renderTableSection(table string, columns []Column, rowCount int64, haveCount bool) string {
	var b strings.Builder
	b.WriteString(table + "\n")
	b.WriteString(strings.Repeat("-", len(table)) + "\n")
	for _, col := range columns {
		b.WriteString(renderColumnLine(col) + "\n")
	}
	if haveCount {
		fmt.Fprintf(&b, "  Rows: %d\n", rowCount)
	}
	b.WriteString("\n")
	return b.String()
}

// renderResultTable renders an ASCII table over already-stringified cells
// (NULL values arrive as the literal "NULL"). At most displayRowLimit rows
// are shown; the caller passes every fetched row so the omission note can
// state the true total.
func renderResultTable(columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query results (%d rows)\n", len(rows))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
		probe := rows
		if len(probe) > widthProbeRows {
			probe = probe[:widthProbeRows]
		}
		for _, row := range probe {
			if i >= len(row) {
				continue
			}
			cellLen := len(row[i])
			if cellLen > maxCellWidth {
				cellLen = maxCellWidth
			}
			if cellLen > widths[i] {
				widths[i] = cellLen
			}
		}
		if widths[i] > maxCellWidth {
			widths[i] = maxCellWidth
		}
	}

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = pad(col, widths[i])
	}
	headerLine := strings.Join(header, " | ")
	b.WriteString(headerLine + "\n")
	b.WriteString(strings.Repeat("-", len(headerLine)) + "\n")

	display := rows
	if len(display) > displayRowLimit {
		display = display[:displayRowLimit]
	}
	for _, row := range display {
		cells := make([]string, len(columns))
		for i := range columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = pad(cell, widths[i])
		}
		b.WriteString(strings.Join(cells, " | ") + "\n")
	}

	if len(rows) > displayRowLimit {
		fmt.Fprintf(&b, "\nShowing %d of %d rows\n", displayRowLimit, len(rows))
		b.WriteString("Add a LIMIT clause to your query for specific row counts.\n")
	}

	fmt.Fprintf(&b, "\nTotal: %d rows, %d columns\n", len(rows), len(columns))
	return b.String()
}

// pad truncates a cell to its column width and left-justifies it.
func pad(s string, width int) string {
	if len(s) > width {
		s = s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

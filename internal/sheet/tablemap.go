package sheet

import "log/slog"

// ColumnSpan is the inclusive column range of one logical table. EndCol is
// the index of the empty boundary column that closed the table, not the last
// labeled column; the boundary column is included in the raw slice and then
// dropped as fully empty. Tables still open at the grid edge extend to the
// last column.
type ColumnSpan struct {
	StartCol int
	EndCol   int
}

// TableMap indexes logical table names to their column spans. Built once per
// sheet refresh and treated as immutable until rebuilt.
type TableMap map[string]ColumnSpan

// gridWidth is the widest row, since exports often ship ragged rows.
func gridWidth(grid [][]string) int {
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// cellAt reads a cell treating out-of-range as empty.
func cellAt(grid [][]string, row, col int) string {
	if row >= len(grid) || col >= len(grid[row]) {
		return ""
	}
	return grid[row][col]
}

// BuildTableMap scans the header row left to right. A non-empty cell opens a
// table at that column and closes the previous one; every empty cell pushes
// the current table's EndCol forward. A table never closed by an empty cell
// runs to the grid's last column. Single-column tables (a label with no
// trailing cells) are valid.
func BuildTableMap(grid [][]string) TableMap {
	tm := make(TableMap)
	if len(grid) == 0 {
		return tm
	}

	width := gridWidth(grid)
	current := ""

	for col := 0; col < width; col++ {
		header := cellAt(grid, 0, col)

		if header != "" {
			// Spans never overlap: an adjacent label caps the
			// previous table at the column before it.
			if current != "" {
				span := tm[current]
				if span.EndCol >= col {
					span.EndCol = col - 1
					tm[current] = span
				}
			}
			current = header
			tm[current] = ColumnSpan{StartCol: col, EndCol: width - 1}
			continue
		}

		if current != "" {
			span := tm[current]
			span.EndCol = col
			tm[current] = span
		}
	}

	slog.Debug("Built table map", "tables", len(tm))
	return tm
}

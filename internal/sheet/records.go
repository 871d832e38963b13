package sheet

import "log/slog"

// Record is one cleaned table row. Absent cells are omitted, so presence
// checks distinguish blank from filled.
type Record map[string]string

// Get returns the value of a field and whether it is present.
func (r Record) Get(field string) (string, bool) {
	v, ok := r[field]
	return v, ok
}

// Value returns the field value, or "" when absent.
func (r Record) Value(field string) string {
	return r[field]
}

// RecordSet is the cleaned contents of one logical table. Row order follows
// sheet order; rotation consumes rows in this order.
type RecordSet struct {
	Fields  []string
	Records []Record
}

// Empty reports whether the set has no usable records. Callers distinguish
// "not found" from "malformed" only by this.
func (rs RecordSet) Empty() bool {
	return len(rs.Records) == 0
}

// Len returns the number of data records.
func (rs RecordSet) Len() int {
	return len(rs.Records)
}

// PullTable extracts the named table from the grid. An unknown name yields
// an empty set, never an error. The raw column slice is cleaned in a fixed
// order: drop the label row, drop fully-empty columns, drop fully-empty
// rows, then promote the first remaining row to field names. Column cleanup
// must run before row cleanup, since boundary columns are empty on every
// row.
func PullTable(grid [][]string, tm TableMap, name string) RecordSet {
	span, ok := tm[name]
	if !ok {
		slog.Debug("Table not found in map", "table", name)
		return RecordSet{}
	}

	if len(grid) < 2 {
		return RecordSet{}
	}

	// Slice columns [StartCol, EndCol] inclusive, skipping the label row.
	width := span.EndCol - span.StartCol + 1
	if width <= 0 {
		return RecordSet{}
	}

	rows := make([][]string, 0, len(grid)-1)
	for r := 1; r < len(grid); r++ {
		row := make([]string, width)
		for c := 0; c < width; c++ {
			row[c] = cellAt(grid, r, span.StartCol+c)
		}
		rows = append(rows, row)
	}

	rows = dropEmptyColumns(rows)
	rows = dropEmptyRows(rows)

	// First remaining row carries the field names.
	if len(rows) < 2 || len(rows[0]) == 0 {
		return RecordSet{}
	}

	fields := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(fields))
		for i, field := range fields {
			if field == "" || row[i] == "" {
				continue
			}
			rec[field] = row[i]
		}
		records = append(records, rec)
	}

	return RecordSet{Fields: fields, Records: records}
}

func dropEmptyColumns(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}

	width := len(rows[0])
	keep := make([]int, 0, width)
	for c := 0; c < width; c++ {
		for _, row := range rows {
			if row[c] != "" {
				keep = append(keep, c)
				break
			}
		}
	}

	if len(keep) == width {
		return rows
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		slim := make([]string, len(keep))
		for j, c := range keep {
			slim[j] = row[c]
		}
		out[i] = slim
	}
	return out
}

func dropEmptyRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		empty := true
		for _, cell := range row {
			if cell != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}

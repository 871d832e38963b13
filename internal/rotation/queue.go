// Package rotation serves tasks from the sheet one at a time: the daily and
// bounty channels each consume a single-item table, pulling a paired row
// from the double-item table whenever a row is flagged as a double.
// Consumption is lazy, single-pass, and non-restartable.
package rotation

import (
	"github.com/abristow3/Hunt-Bot/internal/sheet"
)

// Field names inside the rotation tables.
const (
	fieldTask     = "Task"
	fieldPassword = "Password"
	fieldDouble   = "Double"
)

// Queue is a one-directional cursor over a table's records. Exhaustion is
// terminal; there is no wraparound.
type Queue struct {
	records  []sheet.Record
	position int
}

// NewQueue wraps a record set. The caller has already checked that the set
// is non-empty where that matters.
func NewQueue(rs sheet.RecordSet) *Queue {
	return &Queue{records: rs.Records}
}

// Next returns the next unread record, or ok=false once the queue is
// exhausted.
func (q *Queue) Next() (sheet.Record, bool) {
	if q.position >= len(q.records) {
		return nil, false
	}
	rec := q.records[q.position]
	q.position++
	return rec, true
}

// Remaining reports how many records are still unread.
func (q *Queue) Remaining() int {
	return len(q.records) - q.position
}

// Item is one served piece of content. A composite item carries the paired
// double task.
type Item struct {
	Task     string
	Password string

	Double         bool
	DoubleTask     string
	DoublePassword string
}

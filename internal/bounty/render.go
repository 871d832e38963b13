package bounty

import (
	"fmt"
	"strings"
)

// Fixed column widths of the rendered bounty table.
var tableColumns = []struct {
	name  string
	width int
}{
	{"Item Name", 20},
	{"Status", 8},
	{"Reward", 16},
	{"Time Left", 12},
	{"Completed By", 14},
}

// RenderTable renders every bounty (active and inactive) for a team as a
// bordered monospace table, active-first and soonest-expiring-first.
func (l *Ledger) RenderTable(team string) string {
	bounties := l.Team(team)
	if len(bounties) == 0 {
		return fmt.Sprintf("No bounties currently listed for %s.", team)
	}

	divider := tableDivider()
	lines := []string{divider, tableHeader(), divider}

	for _, b := range bounties {
		status := "Active"
		timeLeft := fmt.Sprintf("%.1fh", b.TimeRemaining)
		if !b.Active {
			status = "Inactive"
			timeLeft = "Expired"
		}

		reward := "N/A"
		if b.RewardAmount != 0 {
			reward = formatThousands(int64(b.RewardAmount))
		}

		completedBy := b.CompletedBy
		if completedBy == "" {
			completedBy = "N/A"
		}

		cells := []string{b.ItemName, status, reward, timeLeft, completedBy}
		row := make([]string, len(cells))
		for i, cell := range cells {
			width := tableColumns[i].width
			row[i] = center(truncate(cell, width), width)
		}

		lines = append(lines, "| "+strings.Join(row, " | ")+" |", divider)
	}

	return strings.Join(lines, "\n")
}

func tableHeader() string {
	cells := make([]string, len(tableColumns))
	for i, col := range tableColumns {
		cells[i] = center(col.name, col.width)
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

func tableDivider() string {
	cells := make([]string, len(tableColumns))
	for i, col := range tableColumns {
		cells[i] = strings.Repeat("-", col.width)
	}
	return "+-" + strings.Join(cells, "-+-") + "-+"
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width]
}

// formatThousands renders 2500000 as "2,500,000".
func formatThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

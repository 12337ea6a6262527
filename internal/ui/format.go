package ui

import (
	"fmt"
	"strings"

	"github.com/nibzard/tasks-go/internal/task"
)

// maxDetailWidth is how much of a description FormatTask shows.
const maxDetailWidth = 60

// DisplayOrder returns a copy of tasks in display order. Saved order is
// oldest first; newestFirst reverses it.
func DisplayOrder(tasks []task.Task, newestFirst bool) []task.Task {
	out := make([]task.Task, len(tasks))
	copy(out, tasks)
	if !newestFirst {
		return out
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// FormatTask renders one task as a list line. With verbose set, a
// non-empty description follows on its own line.
func FormatTask(t task.Task, verbose bool) string {
	mark := " "
	if t.Done() {
		mark = "x"
	}
	line := fmt.Sprintf("  [%s] %s", mark, t.Title)
	if !verbose || t.Description == "" {
		return line
	}
	details := t.Description
	if len([]rune(details)) > maxDetailWidth {
		details = string([]rune(details)[:maxDetailWidth-3]) + "..."
	}
	return line + "\n      " + details
}

// FormatCounts renders the completed and incomplete totals, one per line.
func FormatCounts(c task.Counts) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Completed tasks: %d\n", c.Completed)
	fmt.Fprintf(&b, "Incomplete tasks: %d\n", c.Incomplete)
	return b.String()
}

// NoTasks is shown in place of an empty list.
const NoTasks = "No tasks available"

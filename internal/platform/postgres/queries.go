package postgres

import (
	"fmt"
	"strings"

	"github.com/taskhub/taskhub-api/internal/store"
)

// placeholders returns a comma-separated list of n positional parameters
// starting at $start, e.g. placeholders(3, 2) == "$2, $3, $4".
func placeholders(n, start int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// buildTaskUpdateSet turns the patch's field changes into a SET clause
// fragment with positional parameters starting at $start. Only columns on the
// patch allow-list can ever appear here; association fields are ignored.
// Returns the fragment (without leading/trailing separators) and its arguments.
func buildTaskUpdateSet(patch store.TaskPatch, start int) (string, []any) {
	var cols []string
	var args []any

	add := func(col string, val any) {
		cols = append(cols, fmt.Sprintf("%s = $%d", col, start+len(args)))
		args = append(args, val)
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.DueAt != nil {
		add("due_at", *patch.DueAt)
	}
	if patch.StartAt != nil {
		add("start_at", *patch.StartAt)
	}
	if patch.EstimatedMinutes != nil {
		add("estimated_minutes", *patch.EstimatedMinutes)
	}
	if patch.ParentTaskID != nil {
		add("parent_task_id", *patch.ParentTaskID)
	}
	if patch.Position != nil {
		add("position", *patch.Position)
	}

	return strings.Join(cols, ", "), args
}

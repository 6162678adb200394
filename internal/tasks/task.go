// Package tasks implements the persistent ordered task tree the engine
// executes: a single JSON document of Task nodes addressed by dotted
// path-codes, with a typed transition API (Store) on top.
package tasks

import (
	"strconv"
	"strings"
)

// Status is the lifecycle state of a Task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"

	// StatusSkipped is reachable only via an explicit operator reset
	// (reset-task --skip); the automated engine never assigns it, so it does
	// not appear in the pending -> in_progress -> {completed|failed} lifecycle.
	StatusSkipped Status = "skipped"
)

// Task is a node in the ordered task tree.
type Task struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	Steps        []string `json:"steps,omitempty"`
	Status       Status   `json:"status"`
	SessionID    string   `json:"session_id,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Notes        string   `json:"notes,omitempty"`

	// Priority and ValidationCommand are not read by the engine's own
	// scheduling (execution order is always the DFS pre-order over ID).
	// Priority is carried through unchanged and is not displayed by any
	// command. ValidationCommand is an optional mechanical check the
	// Validator runs once the working tree is clean; if it fails, validation
	// fails.
	Priority          int    `json:"priority,omitempty"`
	ValidationCommand string `json:"validation_command,omitempty"`
}

// segments splits a dotted id into its integer components. A malformed
// segment (non-numeric) sorts after every well-formed segment at the same
// position.
func segments(id string) []int {
	parts := strings.Split(id, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 1<<31 - 1
		}
		out[i] = n
	}
	return out
}

// Less reports whether id a sorts before id b under the DFS pre-order:
// segments are compared numerically component by component; a shorter id
// that is a prefix of a longer one sorts first (the parent precedes its
// children).
func Less(a, b string) bool {
	sa, sb := segments(a), segments(b)
	for i := 0; i < len(sa) && i < len(sb); i++ {
		if sa[i] != sb[i] {
			return sa[i] < sb[i]
		}
	}
	return len(sa) < len(sb)
}

// ParentID returns the parent id of a dotted id, or "" if id is a root
// ("1", not "1.2").
func ParentID(id string) string {
	i := strings.LastIndex(id, ".")
	if i < 0 {
		return ""
	}
	return id[:i]
}

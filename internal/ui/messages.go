// Package ui implements the optional single-screen live dashboard for
// `conductor run --tui`: a task table, a worker-output tail, and a running
// cost summary.
package ui

import "github.com/ralphlabs/conductor/internal/tasks"

// LoopStateMsg is a point-in-time snapshot of the engine's progress: the
// task list, the task currently in progress, and the running cost.
type LoopStateMsg struct {
	Tasks         []tasks.Task
	CurrentTaskID string
	TotalCostUSD  float64
}

// AgentOutputMsg carries one line of worker output for the live tail.
type AgentOutputMsg struct {
	Text string
}

// LoopDoneMsg signals the engine loop returned with no error.
type LoopDoneMsg struct{}

// LoopErrorMsg signals the engine loop returned an error.
type LoopErrorMsg struct {
	Err error
}

// Package prompts builds the agent prompt text for every invocation the
// engine makes (Worker, Supervisor, Validator, Orchestrator, bootstrap,
// learn) by composing a fixed instruction body with task-specific context,
// one prompt per component.
package prompts

import (
	"fmt"
	"strings"

	"github.com/ralphlabs/conductor/internal/tasks"
)

// WorkerSystem returns the short system prompt advising the agent that this
// is one step in a longer job.
func WorkerSystem() string {
	return "This is one step in a longer automated job. Read recent project " +
		"history and any handover notes before acting. Work on exactly the " +
		"task described below; do not select a different one."
}

// WorkerTask composes the task prompt: description, advisory steps, and any
// notes carried over from a prior failed or interrupted attempt.
func WorkerTask(t tasks.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task %s: %s\n", t.ID, t.Description)
	if len(t.Steps) > 0 {
		b.WriteString("\nSuggested steps (advisory, adapt as needed):\n")
		for _, s := range t.Steps {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	if t.Notes != "" {
		b.WriteString("\nHandover notes from a previous attempt:\n")
		b.WriteString(t.Notes)
		b.WriteString("\n")
	}
	b.WriteString("\nWhen finished, emit TASK_COMPLETED. If you cannot make " +
		"progress, emit TASK_BLOCKED: <reason>. On an unrecoverable error, " +
		"emit TASK_ERROR: <description>.")
	return b.String()
}

// Cleanup composes the two-phase gracefulShutdown cleanup prompt, resumed
// against the Worker's own session.
func Cleanup(reason string) string {
	return fmt.Sprintf(
		"Your work on this task is being interrupted: %s. Kill any side "+
			"processes you started, remove temporary files you created, and "+
			"then emit a handover summary of exactly what you completed and "+
			"what remains, fenced between the literal tokens HANDOVER_START "+
			"and HANDOVER_END. Finish by emitting CLEANUP_DONE.", reason)
}

// Supervisor composes the oversight prompt naming the task, elapsed time,
// and the absolute path of the worker log.
func Supervisor(t tasks.Task, checkOrdinal int, elapsedSeconds int64, logPath string) string {
	return fmt.Sprintf(
		"You are overseeing task %s (%q), check #%d, %ds elapsed. Read the "+
			"worker's log at %s. Decide whether the worker is making "+
			"reasonable progress or is stuck (looping, repeating the same "+
			"tool calls, off-task). Emit exactly one JSON object: "+
			`{"decision": "continue"|"orchestrate", "reason": "<short>"}.`,
		t.ID, t.Description, checkOrdinal, elapsedSeconds, logPath)
}

// Validator composes the post-work verification prompt. extraHint, when
// non-empty, is appended for the retry pass (the "remaining-files" hint).
func Validator(extraHint string) string {
	p := "Verify this change set, fix what you can, and commit with a " +
		"message matching the project's existing style. Anything that " +
		"should not be committed, add to the ignore list."
	if extraHint != "" {
		p += "\n\n" + extraHint
	}
	return p
}

// ValidatorRemainingFilesHint composes the extra hint passed to Validator's
// second attempt.
func ValidatorRemainingFilesHint(files []string) string {
	return fmt.Sprintf("These files are still uncommitted after your previous "+
		"pass: %s. Resolve them — commit, ignore, or delete as appropriate.",
		strings.Join(files, ", "))
}

// Orchestrate composes the orchestrator prompt for a task-list rewrite,
// naming the trigger reason and any extra context.
func Orchestrate(reason, context string) string {
	p := fmt.Sprintf(
		"The task list needs to be rewritten. Trigger: %s. Read project "+
			"docs, the current tasks.json, and recent version-control history. "+
			"Edit tasks.json in place to reflect reality: split, reprioritize, "+
			"mark unreachable work aside, or add recovery tasks as needed. "+
			"Every task must keep a unique id and a non-empty description. "+
			"When done, emit the literal token ORCHESTRATION_DONE.", reason)
	if context != "" {
		p += "\n\nAdditional context:\n" + context
	}
	return p
}

// OrchestrateRetryHint is appended when ORCHESTRATION_DONE was not observed.
func OrchestrateRetryHint() string {
	return "Your previous attempt did not end with the literal token " +
		"ORCHESTRATION_DONE. Finish editing tasks.json and emit exactly that " +
		"token as your final output."
}

// Review composes the review prompt: diff against HEAD, fix or pass.
func Review() string {
	return "Diff your edits to tasks.json against HEAD. If they are correct " +
		"and well-formed, emit the literal token REVIEW_PASSED. Otherwise fix " +
		"them first, then emit REVIEW_PASSED."
}

// ReviewRetryHint is appended when REVIEW_PASSED was not observed.
func ReviewRetryHint() string {
	return "Your previous attempt did not end with the literal token " +
		"REVIEW_PASSED. Finish reviewing and fixing tasks.json and emit " +
		"exactly that token as your final output."
}

// Bootstrap composes the init-from-prompt prompt that populates tasks.json
// from a free-form request.
func Bootstrap(request string) string {
	return fmt.Sprintf(
		"Study the project and the following request, then create tasks.json "+
			"as a JSON array of task objects, each with a unique dotted id "+
			"(e.g. \"1\", \"1.1\", \"1.2\"), a one-line description, and optional "+
			"advisory steps. Order tasks so the array order matches dependency "+
			"order. Do not implement anything yet; plan only.\n\nRequest:\n%s",
		request)
}

// Learn composes the prompt that updates the project's instructions
// document with a new suggestion.
func Learn(suggestion string) string {
	return fmt.Sprintf(
		"Update this project's agent-instructions document (create it if "+
			"absent) to incorporate the following lesson, phrased as a durable "+
			"instruction for future automated work on this codebase. Keep "+
			"existing content unless it directly conflicts. When done, emit "+
			"the literal token LEARNED.\n\nLesson:\n%s", suggestion)
}

package ui

import (
	"fmt"

	"charm.land/huh/v2"
)

// Confirm runs a standalone yes/no prompt and returns the user's answer.
// Used by the `task` and `learn` subcommands before dispatching their
// Orchestrator-style agent invocation.
func Confirm(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("running confirmation prompt: %w", err)
	}
	return ok, nil
}

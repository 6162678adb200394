// Package runstate persists the engine loop's runtime status across
// restarts using a crash-safe tmp+rename strategy.
package runstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	dirName  = ".state"
	fileName = "runstate.json"
	tmpName  = "runstate.json.tmp"

	StatusRunning = "running"
	StatusStopped = "stopped"
	StatusError   = "error"
)

// State holds the persistent execution state of the engine loop.
type State struct {
	CurrentTaskID  string    `json:"current_task_id"`
	Status         string    `json:"status"`
	FailedRetries  int       `json:"failed_retries"`
	ActiveAgent    string    `json:"active_agent"`
	ActiveModel    string    `json:"active_model"`
	LastUpdated    time.Time `json:"last_updated"`
}

func defaultState() *State {
	return &State{Status: StatusStopped}
}

func path(workspace string) string    { return filepath.Join(workspace, dirName, fileName) }
func tmpPath(workspace string) string { return filepath.Join(workspace, dirName, tmpName) }
func dir(workspace string) string     { return filepath.Join(workspace, dirName) }

// Load reads state from <workspace>/.state/runstate.json. A missing file
// yields a default (stopped) state. An interrupted previous write (a .tmp
// file with no corresponding real file) is recovered by renaming it in.
func Load(workspace string) (*State, error) {
	real := path(workspace)
	tmp := tmpPath(workspace)

	if _, err := os.Stat(real); errors.Is(err, os.ErrNotExist) {
		if _, tmpErr := os.Stat(tmp); tmpErr == nil {
			if renameErr := os.Rename(tmp, real); renameErr != nil {
				return nil, fmt.Errorf("recovering runstate from tmp: %w", renameErr)
			}
		}
	}

	data, err := os.ReadFile(real)
	if errors.Is(err, os.ErrNotExist) {
		return defaultState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading runstate file: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing runstate file: %w", err)
	}
	return &s, nil
}

// Save writes s to <workspace>/.state/runstate.json using a crash-safe
// tmp+rename strategy.
func Save(workspace string, s *State) error {
	s.LastUpdated = time.Now()

	if err := os.MkdirAll(dir(workspace), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding runstate: %w", err)
	}

	tmp := tmpPath(workspace)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing tmp runstate file: %w", err)
	}
	if err := os.Rename(tmp, path(workspace)); err != nil {
		return fmt.Errorf("committing runstate file: %w", err)
	}
	return nil
}

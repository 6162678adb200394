package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ralphlabs/conductor/internal/logger"
)

const fileName = "tasks.json"

// ErrNotFound is returned when a task id does not exist in the store.
var ErrNotFound = errors.New("task not found")

// wireDocument is the on-disk shape. tasks.json may be either a bare JSON
// array, or {"tasks": [...]}; both are accepted on read, and the bare-array
// form is always written back (unknown fields on read are dropped on
// write).
type wireDocument struct {
	Tasks []Task `json:"tasks"`
}

// Store owns the single tasks.json document for a workspace. All reads are
// a full-document load (snapshot); all writes are a full-document rewrite
// using a crash-safe tmp+rename strategy.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns a Store rooted at workspaceDir/tasks.json. It does not touch
// the filesystem; call Load to read it.
func Open(workspaceDir string) *Store {
	return &Store{path: filepath.Join(workspaceDir, fileName)}
}

func (s *Store) tmpPath() string { return s.path + ".tmp" }

// Load reads the full task list from disk. A missing file is not an error:
// it returns an empty list.
func (s *Store) Load() ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() ([]Task, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tasks file: %w", err)
	}

	var list []Task
	trimmed := firstNonSpace(data)
	if trimmed == '{' {
		var doc wireDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing tasks file (object form): %w", err)
		}
		list = doc.Tasks
	} else {
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parsing tasks file (array form): %w", err)
		}
	}

	// A task whose status is omitted on disk is a pending task: tasks.json
	// only ever carries a status once the engine has touched it.
	for i := range list {
		if list[i].Status == "" {
			list[i].Status = StatusPending
		}
	}
	return list, nil
}

func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b
		}
	}
	return 0
}

// save performs the crash-safe rewrite. Always writes the bare-array form.
func (s *Store) save(list []Task) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating workspace directory: %w", err)
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}

	if err := os.WriteFile(s.tmpPath(), data, 0o644); err != nil {
		return fmt.Errorf("writing tmp tasks file: %w", err)
	}
	if err := os.Rename(s.tmpPath(), s.path); err != nil {
		return fmt.Errorf("committing tasks file: %w", err)
	}
	return nil
}

// Next returns a copy of the least-id task in {pending, in_progress}, or nil
// if none exists. Execution order is the DFS pre-order implied by
// segment-wise integer comparison of ids.
func (s *Store) Next() (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	candidates := make([]Task, 0, len(list))
	for _, t := range list {
		if t.Status == StatusPending || t.Status == StatusInProgress {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool { return Less(candidates[i].ID, candidates[j].ID) })
	return &candidates[0], nil
}

// MarkInProgress transitions task id to in_progress and records the agent
// session that is about to work on it.
func (s *Store) MarkInProgress(id, sessionID string) error {
	return s.mutate(id, func(t *Task) {
		t.Status = StatusInProgress
		t.SessionID = sessionID
	})
}

// MarkCompleted transitions task id to completed and clears its notes, per
// the invariant that completed tasks carry no handover context forward.
func (s *Store) MarkCompleted(id string) error {
	return s.mutate(id, func(t *Task) {
		t.Status = StatusCompleted
		t.Notes = ""
		t.ErrorMessage = ""
	})
}

// MarkFailed transitions task id to failed and records the error and a
// notes payload carried across to the next attempt.
func (s *Store) MarkFailed(id string, cause error, notes string) error {
	return s.mutate(id, func(t *Task) {
		t.Status = StatusFailed
		if cause != nil {
			t.ErrorMessage = cause.Error()
		}
		if notes != "" {
			t.Notes = notes
		}
	})
}

// UpdateNotes overwrites the free-text handover notes on task id without
// touching its status.
func (s *Store) UpdateNotes(id, text string) error {
	return s.mutate(id, func(t *Task) { t.Notes = text })
}

// Reset transitions task id back to pending, clearing session, error, and
// notes. Calling Reset twice in a row is idempotent: the second call
// observes the already-reset task and performs the identical rewrite.
func (s *Store) Reset(id string) error {
	return s.mutate(id, func(t *Task) {
		t.Status = StatusPending
		t.SessionID = ""
		t.ErrorMessage = ""
		t.Notes = ""
	})
}

// ResetAll resets every non-completed task to pending. Used by the `reset`
// CLI subcommand. Completed tasks are frozen and never reopened.
func (s *Store) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadLocked()
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].Status == StatusCompleted {
			continue
		}
		list[i].Status = StatusPending
		list[i].SessionID = ""
		list[i].ErrorMessage = ""
		list[i].Notes = ""
	}
	return s.save(list)
}

// Skip marks task id as skipped. Only reachable via an explicit operator
// action (reset-task --skip); the automated engine never calls this.
func (s *Store) Skip(id string) error {
	return s.mutate(id, func(t *Task) { t.Status = StatusSkipped })
}

func (s *Store) mutate(id string, fn func(*Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadLocked()
	if err != nil {
		return err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fn(&list[idx])
	return s.save(list)
}

func indexOf(list []Task, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// Refresh reloads the task list after an external rewrite, such as the
// Orchestrator agent rewriting tasks.json directly on disk. Store holds no
// in-memory cache, so refreshing is simply loading again; the distinct name
// just makes call sites read as "reload after external change" rather than
// a bare Load(). The engine loop does not call it: its Next and FailedTasks
// calls read the file afresh on every iteration.
func (s *Store) Refresh() ([]Task, error) { return s.Load() }

// Stats summarizes the task list for the `status` CLI subcommand.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
	Failed     int
	Skipped    int
}

// LoadStats loads the task list and summarizes it.
func (s *Store) LoadStats() (Stats, error) {
	list, err := s.Load()
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	st.Total = len(list)
	for _, t := range list {
		switch t.Status {
		case StatusPending:
			st.Pending++
		case StatusInProgress:
			st.InProgress++
		case StatusCompleted:
			st.Completed++
		case StatusFailed:
			st.Failed++
		case StatusSkipped:
			st.Skipped++
		default:
			logger.Warn().Str("task_id", t.ID).Str("status", string(t.Status)).Msg("unknown task status")
		}
	}
	return st, nil
}

// FailedTasks returns every task currently in the failed state, in
// execution order.
func (s *Store) FailedTasks() ([]Task, error) {
	list, err := s.Load()
	if err != nil {
		return nil, err
	}
	var failed []Task
	for _, t := range list {
		if t.Status == StatusFailed {
			failed = append(failed, t)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return Less(failed[i].ID, failed[j].ID) })
	return failed, nil
}

// Package schedule implements the Task Scheduler: named recurring shell
// commands, re-approved by the Safety Engine on every run, kill-switch
// aware, with bounded wall-clock execution.
package schedule

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"warden/internal/logging"
)

// minInterval is the shortest interval a scheduled task may run at. A var,
// not a const, so tests can shrink it instead of waiting out real time.
var minInterval = 10 * time.Second

// maxRunDuration caps a single command's wall-clock execution time.
const maxRunDuration = 60 * time.Second

// RunOutcome classifies one execution attempt.
type RunOutcome string

const (
	RunOK      RunOutcome = "ok"
	RunSkipped RunOutcome = "skipped"
	RunError   RunOutcome = "error"
)

// HistoryEntry records one scheduled execution attempt.
type HistoryEntry struct {
	Time    time.Time
	Outcome RunOutcome
	Output  string
	Error   string
}

// Approver re-applies Safety Engine policy to a scheduled command before
// every run; the scheduler never executes without a fresh approval.
type Approver func(command string) (approved bool, reason string)

type task struct {
	name     string
	command  string
	shell    string
	interval time.Duration
	maxRuns  int
	runs     int
	history  []HistoryEntry
	active   bool
	cancel   chan struct{}
}

// Scheduler owns every registered recurring task.
type Scheduler struct {
	mu       sync.Mutex
	tasks    map[string]*task
	approve  Approver
	isKilled func() bool
}

// New builds a Scheduler. approve is consulted before every run; isKilled
// reports the current kill-switch state.
func New(approve Approver, isKilled func() bool) *Scheduler {
	return &Scheduler{tasks: make(map[string]*task), approve: approve, isKilled: isKilled}
}

// Add registers a new recurring task. Duplicate names and intervals below
// 10s are rejected.
func (s *Scheduler) Add(name, command, shell string, interval time.Duration, maxRuns int) error {
	if interval < minInterval {
		return fmt.Errorf("interval must be at least %s", minInterval)
	}

	s.mu.Lock()
	if _, exists := s.tasks[name]; exists {
		s.mu.Unlock()
		return fmt.Errorf("task %q already scheduled", name)
	}
	t := &task{name: name, command: command, shell: shell, interval: interval, maxRuns: maxRuns, active: true, cancel: make(chan struct{})}
	s.tasks[name] = t
	s.mu.Unlock()

	go s.loop(t)
	return nil
}

// tickInterval is how often the scheduler loop re-checks kill state and
// elapsed time; a var for the same reason as minInterval.
var tickInterval = time.Second

func (s *Scheduler) loop(t *task) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var elapsed time.Duration
	for {
		select {
		case <-t.cancel:
			return
		case <-ticker.C:
			elapsed += tickInterval
			if elapsed < t.interval {
				continue
			}
			elapsed = 0

			s.mu.Lock()
			active := t.active
			s.mu.Unlock()
			if !active {
				return
			}

			if s.isKilled != nil && s.isKilled() {
				s.record(t, HistoryEntry{Time: time.Now(), Outcome: RunSkipped, Error: "kill switch active"})
				continue
			}

			s.runOnce(t)

			s.mu.Lock()
			t.runs++
			done := t.maxRuns > 0 && t.runs >= t.maxRuns
			s.mu.Unlock()
			if done {
				s.mu.Lock()
				t.active = false
				s.mu.Unlock()
				return
			}
		}
	}
}

func (s *Scheduler) runOnce(t *task) {
	log := logging.Get(logging.CategorySchedule)

	if s.approve != nil {
		approved, reason := s.approve(t.command)
		if !approved {
			s.record(t, HistoryEntry{Time: time.Now(), Outcome: RunSkipped, Error: reason})
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), maxRunDuration)
	defer cancel()

	shell := t.shell
	if shell == "" {
		shell = "cmd"
	}
	cmd := exec.CommandContext(ctx, shell, "/C", t.command)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		log.Warn("scheduled task %q failed: %v", t.name, err)
		s.record(t, HistoryEntry{Time: time.Now(), Outcome: RunError, Output: out.String(), Error: err.Error()})
		return
	}
	s.record(t, HistoryEntry{Time: time.Now(), Outcome: RunOK, Output: out.String()})
}

func (s *Scheduler) record(t *task, entry HistoryEntry) {
	const maxHistory = 200 // oldest entries are dropped first
	s.mu.Lock()
	t.history = append(t.history, entry)
	if len(t.history) > maxHistory {
		t.history = t.history[len(t.history)-maxHistory:]
	}
	s.mu.Unlock()
}

// Remove deactivates and drops a scheduled task.
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	t, ok := s.tasks[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("no such task: %s", name)
	}
	t.active = false
	delete(s.tasks, name)
	s.mu.Unlock()

	close(t.cancel)
	return nil
}

// History returns the execution history for name.
func (s *Scheduler) History(name string) ([]HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[name]
	if !ok {
		return nil, fmt.Errorf("no such task: %s", name)
	}
	out := make([]HistoryEntry, len(t.history))
	copy(out, t.history)
	return out, nil
}

// Names returns every currently active task name.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tasks))
	for name, t := range s.tasks {
		if t.active {
			out = append(out, name)
		}
	}
	return out
}

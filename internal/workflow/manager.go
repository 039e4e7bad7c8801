// File path: internal/workflow/manager.go
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/repobrief/repobrief/internal/common"
)

// State describes where a background job is in its lifecycle.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// ErrJobActive indicates a project already has a queued or running job.
var ErrJobActive = errors.New("workflow: job already active for project")

// Job is the observable record of one background ingestion run. Failures
// land in Error instead of disappearing into a request that has already
// returned.
type Job struct {
	ProjectID  string    `json:"project_id"`
	State      State     `json:"state"`
	Documents  int       `json:"documents"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Manager supervises at most one background job per project.
type Manager struct {
	ctx  context.Context
	mu   sync.Mutex
	jobs map[string]*Job
	wg   sync.WaitGroup
}

// NewManager creates a manager whose jobs run under the given base context,
// detached from the request that submitted them.
func NewManager(ctx context.Context) *Manager {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Manager{ctx: ctx, jobs: make(map[string]*Job)}
}

// Submit starts run in a supervised goroutine. The returned error only
// covers admission; the run's own outcome is observable through Status.
func (m *Manager) Submit(projectID string, run func(ctx context.Context) (int, error)) error {
	if projectID == "" {
		return errors.New("workflow: project id required")
	}
	if run == nil {
		return errors.New("workflow: run function required")
	}
	m.mu.Lock()
	if job, ok := m.jobs[projectID]; ok && (job.State == StateQueued || job.State == StateRunning) {
		m.mu.Unlock()
		return ErrJobActive
	}
	job := &Job{ProjectID: projectID, State: StateQueued, StartedAt: time.Now().UTC()}
	m.jobs[projectID] = job
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				m.finish(projectID, 0, fmt.Errorf("panic: %v", r))
			}
		}()
		m.setState(projectID, StateRunning)
		common.Logger().Info("workflow: job started", "project", projectID)
		count, err := run(m.ctx)
		m.finish(projectID, count, err)
	}()
	return nil
}

// Status returns the last known job for a project.
func (m *Manager) Status(projectID string) (Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[projectID]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Wait blocks until every submitted job has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) setState(projectID string, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[projectID]; ok {
		job.State = state
	}
}

func (m *Manager) finish(projectID string, count int, err error) {
	logger := common.Logger()
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[projectID]
	if !ok {
		return
	}
	job.Documents = count
	job.FinishedAt = time.Now().UTC()
	if err != nil {
		job.State = StateFailed
		job.Error = err.Error()
		logger.Error("workflow: job failed", "project", projectID, "error", err)
		return
	}
	job.State = StateCompleted
	logger.Info("workflow: job completed", "project", projectID, "documents", count)
}

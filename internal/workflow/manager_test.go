// File path: internal/workflow/manager_test.go
package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitForState(t *testing.T, m *Manager, projectID string, want State) Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job, ok := m.Status(projectID); ok && job.State == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := m.Status(projectID)
	t.Fatalf("job never reached state %q, last seen %+v", want, job)
	return Job{}
}

func TestSubmitRunsJobToCompletion(t *testing.T) {
	m := NewManager(context.Background())
	err := m.Submit("proj-1", func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	m.Wait()

	job := waitForState(t, m, "proj-1", StateCompleted)
	require.Equal(t, 7, job.Documents)
	require.Empty(t, job.Error)
	require.False(t, job.FinishedAt.IsZero())
}

func TestSubmitRecordsFailure(t *testing.T) {
	m := NewManager(context.Background())
	boom := errors.New("loader exploded")
	require.NoError(t, m.Submit("proj-1", func(ctx context.Context) (int, error) {
		return 0, boom
	}))
	m.Wait()

	job := waitForState(t, m, "proj-1", StateFailed)
	require.Equal(t, boom.Error(), job.Error)
}

func TestSubmitRejectsActiveJob(t *testing.T) {
	m := NewManager(context.Background())
	release := make(chan struct{})
	require.NoError(t, m.Submit("proj-1", func(ctx context.Context) (int, error) {
		<-release
		return 0, nil
	}))
	err := m.Submit("proj-1", func(ctx context.Context) (int, error) { return 0, nil })
	require.ErrorIs(t, err, ErrJobActive)
	close(release)
	m.Wait()

	// Once finished, the project may be submitted again.
	require.NoError(t, m.Submit("proj-1", func(ctx context.Context) (int, error) { return 1, nil }))
	m.Wait()
}

func TestSubmitRecoversFromPanic(t *testing.T) {
	m := NewManager(context.Background())
	require.NoError(t, m.Submit("proj-1", func(ctx context.Context) (int, error) {
		panic("boom")
	}))
	m.Wait()

	job := waitForState(t, m, "proj-1", StateFailed)
	require.Contains(t, job.Error, "panic")
}

func TestSubmitValidation(t *testing.T) {
	m := NewManager(nil)
	require.Error(t, m.Submit("", func(ctx context.Context) (int, error) { return 0, nil }))
	require.Error(t, m.Submit("proj-1", nil))
	_, ok := m.Status("proj-1")
	require.False(t, ok)
}

package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/loopwork/actiond/errors"
)

// memDocStore is an in-memory DocumentStore for tests
type memDocStore struct {
	mu   sync.Mutex
	docs map[string][]byte
	// failSaves makes every Save return an error
	failSaves bool
}

func newMemDocStore() *memDocStore {
	return &memDocStore{docs: make(map[string][]byte)}
}

func (m *memDocStore) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *memDocStore) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return errors.Mark(errors.New("disk full"), errors.ErrPersistence)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.docs[key] = stored
	return nil
}

// fakeExecutor records executions and returns a configurable outcome
type fakeExecutor struct {
	mu      sync.Mutex
	calls   int
	byType  map[string]int
	err     error
	result  string
	release chan struct{} // when non-nil, Execute blocks until closed
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{byType: make(map[string]int), result: "ok"}
}

func (e *fakeExecutor) Execute(ctx context.Context, actionType string) (string, error) {
	e.mu.Lock()
	e.calls++
	e.byType[actionType]++
	release := e.release
	err := e.err
	result := e.result
	e.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return result, nil
}

func (e *fakeExecutor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// fakeNotifier records notifications; panicOnCall exercises hook isolation
type fakeNotifier struct {
	mu          sync.Mutex
	successes   []string
	failures    []string
	panicOnCall bool
}

func (n *fakeNotifier) NotifySuccess(job *Job, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.panicOnCall {
		panic("notifier exploded")
	}
	n.successes = append(n.successes, job.ID)
}

func (n *fakeNotifier) NotifyFailure(job *Job, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.panicOnCall {
		panic("notifier exploded")
	}
	n.failures = append(n.failures, job.ID)
}

func (n *fakeNotifier) successCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.successes)
}

func (n *fakeNotifier) failureCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.failures)
}

// testSettings returns settings tuned for fast tests: retries fire
// immediately rather than minutes later
func testSettings() Settings {
	s := DefaultSettings()
	s.RetryDelayMinutes = 0
	return s
}

// newTestScheduler builds a started scheduler with fast background loops.
// Stop is registered via t.Cleanup.
func newTestScheduler(t *testing.T, docs DocumentStore, exec ActionExecutor, notifier Notifier, settings Settings) *Scheduler {
	t.Helper()

	s := New(context.Background(), docs, exec, notifier, settings, zap.NewNop().Sugar(),
		WithSweepInterval(20*time.Millisecond),
		WithCleanupInterval(time.Hour),
	)
	if err := s.Start(); err != nil {
		t.Fatalf("failed to start scheduler: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func ptr[T any](v T) *T {
	return &v
}

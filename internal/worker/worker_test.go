package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven/mocks"
)

// mockScanner implements driving.ScanService for testing
type mockScanner struct {
	mu        sync.Mutex
	processFn func(ref domain.DocumentReference) (*domain.ScanResult, error)
	calls     []domain.DocumentReference
}

func (m *mockScanner) Process(ctx context.Context, ref domain.DocumentReference) (*domain.ScanResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ref)
	fn := m.processFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ref)
	}
	return &domain.ScanResult{Document: ref, Outcome: domain.OutcomeWritten}, nil
}

func (m *mockScanner) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// erroringQueue fails every dequeue
type erroringQueue struct {
	*mocks.MockTaskQueue
	mu    sync.Mutex
	count int
}

func (q *erroringQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.ScanTask, error) {
	q.mu.Lock()
	q.count++
	q.mu.Unlock()
	return nil, errors.New("connection reset")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func testRef(key string) domain.DocumentReference {
	return domain.DocumentReference{Bucket: "uploads", Key: key}
}

func TestNewWorker(t *testing.T) {
	w := NewWorker(WorkerConfig{
		TaskQueue:      mocks.NewMockTaskQueue(),
		Scanner:        &mockScanner{},
		Concurrency:    4,
		DequeueTimeout: 10,
		RateLimit:      2.5,
	})

	if w.concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", w.concurrency)
	}
	if w.dequeueTimeout != 10 {
		t.Errorf("expected dequeue timeout 10, got %d", w.dequeueTimeout)
	}
	if float64(w.limiter.Limit()) != 2.5 {
		t.Errorf("expected rate limit 2.5, got %v", w.limiter.Limit())
	}
	if w.limiter.Burst() != 2 {
		t.Errorf("expected burst 2, got %d", w.limiter.Burst())
	}
}

func TestNewWorker_Defaults(t *testing.T) {
	w := NewWorker(WorkerConfig{
		TaskQueue: mocks.NewMockTaskQueue(),
		Scanner:   &mockScanner{},
	})

	if w.concurrency != 1 {
		t.Errorf("expected default concurrency 1, got %d", w.concurrency)
	}
	if w.dequeueTimeout != 5 {
		t.Errorf("expected default dequeue timeout 5, got %d", w.dequeueTimeout)
	}
	if w.errorBackoff != time.Second {
		t.Errorf("expected default backoff 1s, got %v", w.errorBackoff)
	}
	if w.logger == nil {
		t.Error("expected default logger")
	}
	if w.limiter.Burst() != 1 {
		t.Errorf("expected burst 1, got %d", w.limiter.Burst())
	}
}

func TestWorker_StartStop(t *testing.T) {
	w := NewWorker(WorkerConfig{
		TaskQueue:   mocks.NewMockTaskQueue(),
		Scanner:     &mockScanner{},
		Concurrency: 2,
	})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !w.Health(context.Background()).Running {
		t.Error("expected worker to be running")
	}

	// Second start is a no-op
	if err := w.Start(context.Background()); err != nil {
		t.Errorf("second Start failed: %v", err)
	}

	w.Stop()
	if w.Health(context.Background()).Running {
		t.Error("expected worker to be stopped")
	}

	// Second stop is a no-op
	w.Stop()
}

func TestWorker_ProcessesAndAcksTasks(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	scanner := &mockScanner{}
	ctx := context.Background()

	tasks := []*domain.ScanTask{
		domain.NewScanTask(testRef("a.png")),
		domain.NewScanTask(testRef("b.png")),
		domain.NewScanTask(testRef("c.png")),
	}
	for _, task := range tasks {
		_ = queue.Enqueue(ctx, task)
	}

	w := NewWorker(WorkerConfig{TaskQueue: queue, Scanner: scanner, Concurrency: 2})
	_ = w.Start(ctx)
	waitFor(t, func() bool { return len(queue.Acked()) == 3 })
	w.Stop()

	if n := scanner.callCount(); n != 3 {
		t.Errorf("expected 3 scans, got %d", n)
	}
	if n := len(queue.Nacked()); n != 0 {
		t.Errorf("expected no nacks, got %d", n)
	}
}

func TestWorker_SkippedOutcomesAreAcked(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	scanner := &mockScanner{processFn: func(ref domain.DocumentReference) (*domain.ScanResult, error) {
		return &domain.ScanResult{Document: ref, Outcome: domain.OutcomeSkippedEmptyDocument}, nil
	}}
	ctx := context.Background()
	_ = queue.Enqueue(ctx, domain.NewScanTask(testRef("blank.png")))

	w := NewWorker(WorkerConfig{TaskQueue: queue, Scanner: scanner})
	_ = w.Start(ctx)
	waitFor(t, func() bool { return len(queue.Acked()) == 1 })
	w.Stop()
}

func TestWorker_FailedTaskRedeliveredThenDeadLettered(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	scanner := &mockScanner{processFn: func(ref domain.DocumentReference) (*domain.ScanResult, error) {
		err := &domain.ExtractionError{Document: ref, Err: errors.New("ThrottlingException")}
		return &domain.ScanResult{Document: ref, Outcome: domain.OutcomeFailed}, err
	}}
	ctx := context.Background()

	task := domain.NewScanTask(testRef("flaky.png"))
	_ = queue.Enqueue(ctx, task)

	w := NewWorker(WorkerConfig{TaskQueue: queue, Scanner: scanner})
	_ = w.Start(ctx)
	waitFor(t, func() bool { return len(queue.DeadLettered()) == 1 })
	w.Stop()

	if n := scanner.callCount(); n != domain.DefaultMaxAttempts {
		t.Errorf("expected %d attempts, got %d", domain.DefaultMaxAttempts, n)
	}
	if n := len(queue.Nacked()); n != domain.DefaultMaxAttempts {
		t.Errorf("expected %d nacks, got %d", domain.DefaultMaxAttempts, n)
	}
	if len(queue.Acked()) != 0 {
		t.Error("expected no acks for a failing task")
	}
}

func TestWorker_InvalidReferenceDeadLetteredImmediately(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	scanner := &mockScanner{processFn: func(ref domain.DocumentReference) (*domain.ScanResult, error) {
		return &domain.ScanResult{Document: ref, Outcome: domain.OutcomeFailed}, domain.ErrInvalidInput
	}}
	ctx := context.Background()
	_ = queue.Enqueue(ctx, domain.NewScanTask(domain.DocumentReference{Bucket: "uploads"}))

	w := NewWorker(WorkerConfig{TaskQueue: queue, Scanner: scanner})
	_ = w.Start(ctx)
	waitFor(t, func() bool { return len(queue.DeadLettered()) == 1 })
	w.Stop()

	if n := scanner.callCount(); n != 1 {
		t.Errorf("expected a single attempt, got %d", n)
	}
}

func TestWorker_DequeueErrorBacksOff(t *testing.T) {
	queue := &erroringQueue{MockTaskQueue: mocks.NewMockTaskQueue()}
	w := NewWorker(WorkerConfig{
		TaskQueue:    queue,
		Scanner:      &mockScanner{},
		ErrorBackoff: 50 * time.Millisecond,
	})

	_ = w.Start(context.Background())
	time.Sleep(120 * time.Millisecond)
	w.Stop()

	queue.mu.Lock()
	count := queue.count
	queue.mu.Unlock()
	if count < 1 || count > 4 {
		t.Errorf("expected a handful of dequeue attempts with backoff, got %d", count)
	}
}

func TestWorker_ContextCancellation(t *testing.T) {
	w := NewWorker(WorkerConfig{
		TaskQueue:   mocks.NewMockTaskQueue(),
		Scanner:     &mockScanner{},
		Concurrency: 3,
	})

	ctx, cancel := context.WithCancel(context.Background())
	_ = w.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

func TestWorker_Health(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	w := NewWorker(WorkerConfig{TaskQueue: queue, Scanner: &mockScanner{}})

	health := w.Health(context.Background())
	if health.Running {
		t.Error("expected worker not running before Start")
	}
	if !health.QueueHealth {
		t.Error("expected healthy queue")
	}

	queue.PingErr = errors.New("redis unavailable")
	health = w.Health(context.Background())
	if health.QueueHealth {
		t.Error("expected unhealthy queue")
	}
	if health.Error != "redis unavailable" {
		t.Errorf("expected error message, got %q", health.Error)
	}
}

func TestWorker_Ping(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	w := NewWorker(WorkerConfig{TaskQueue: queue, Scanner: &mockScanner{}, DequeueTimeout: 1})
	ctx := context.Background()

	if err := w.Ping(ctx); err == nil {
		t.Error("expected error before Start")
	}

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := w.Ping(ctx); err != nil {
		t.Errorf("expected running worker to be ready, got %v", err)
	}

	queue.PingErr = errors.New("redis unavailable")
	if err := w.Ping(ctx); err == nil {
		t.Error("expected error when the queue is unreachable")
	}
}

package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

type countingTask struct {
	Task
	runs    *atomic.Int32
	failFor int32
	delay   time.Duration
}

func newCountingTask(runs *atomic.Int32, maxRetries int, failFor int32) *countingTask {
	return &countingTask{
		Task:    NewTask(TaskTypeCommand, "u1", maxRetries),
		runs:    runs,
		failFor: failFor,
	}
}

func (t *countingTask) Execute(ctx context.Context) error {
	if t.delay > 0 {
		time.Sleep(t.delay)
	}
	n := t.runs.Add(1)
	if n <= t.failFor {
		return errors.New("transient failure")
	}
	return nil
}

func waitFor(t *testing.T, cond func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Condition not met before timeout")
}

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeCapture, "u1", 3)

	if task.ID == "" {
		t.Error("Expected task ID to be set")
	}
	if task.GetType() != TaskTypeCapture {
		t.Errorf("Expected type capture, got %s", task.GetType())
	}
	if task.GetOwnerID() != "u1" {
		t.Errorf("Expected owner u1, got %s", task.GetOwnerID())
	}
	if !task.CanRetry() {
		t.Error("Expected fresh task to be retryable")
	}

	for i := 0; i < 3; i++ {
		task.IncrementRetryCount()
	}
	if task.CanRetry() {
		t.Error("Expected task to be exhausted after max retries")
	}
}

func TestNewTaskIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		task := NewTask(TaskTypeCapture, "u1", 0)
		if _, err := uuid.Parse(task.ID); err != nil {
			t.Fatalf("Expected task ID to be a UUID, got %q: %v", task.ID, err)
		}
		if seen[task.ID] {
			t.Fatalf("Expected unique task IDs, got duplicate %q", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestTaskDuration(t *testing.T) {
	task := NewTask(TaskTypeCommand, "u1", 0)
	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}

	task.Start()
	time.Sleep(5 * time.Millisecond)
	if task.GetDuration() < 5*time.Millisecond {
		t.Errorf("Expected duration >= 5ms, got %v", task.GetDuration())
	}
}

func TestScheduler_ExecutesTasks(t *testing.T) {
	s := NewScheduler(2, 10, time.Second)
	s.Start()
	defer s.Stop()

	var runs atomic.Int32
	for i := 0; i < 5; i++ {
		if err := s.EnqueueTask(newCountingTask(&runs, 0, 0)); err != nil {
			t.Fatalf("Failed to enqueue task: %v", err)
		}
	}

	waitFor(t, func() bool { return runs.Load() == 5 }, time.Second)
}

func TestScheduler_RetriesFailedTask(t *testing.T) {
	s := NewScheduler(1, 10, time.Second)
	s.Start()
	defer s.Stop()

	var runs atomic.Int32
	if err := s.EnqueueTask(newCountingTask(&runs, 1, 1)); err != nil {
		t.Fatalf("Failed to enqueue task: %v", err)
	}

	waitFor(t, func() bool { return runs.Load() == 2 }, 3*time.Second)
}

func TestScheduler_NoRetryWhenDisabled(t *testing.T) {
	s := NewScheduler(1, 10, time.Second)
	s.Start()

	var runs atomic.Int32
	if err := s.EnqueueTask(newCountingTask(&runs, 0, 1)); err != nil {
		t.Fatalf("Failed to enqueue task: %v", err)
	}

	s.Stop()
	if n := runs.Load(); n != 1 {
		t.Errorf("Expected exactly one run, got %d", n)
	}
}

func TestScheduler_QueueFull(t *testing.T) {
	s := NewScheduler(1, 1, time.Second)

	var runs atomic.Int32
	if err := s.EnqueueTask(newCountingTask(&runs, 0, 0)); err != nil {
		t.Fatalf("Failed to enqueue first task: %v", err)
	}
	if err := s.EnqueueTask(newCountingTask(&runs, 0, 0)); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}

	s.Start()
	s.Stop()
}

func TestScheduler_StopDrainsQueue(t *testing.T) {
	s := NewScheduler(1, 10, time.Second)
	s.Start()

	var runs atomic.Int32
	for i := 0; i < 3; i++ {
		task := newCountingTask(&runs, 0, 0)
		task.delay = 10 * time.Millisecond
		if err := s.EnqueueTask(task); err != nil {
			t.Fatalf("Failed to enqueue task: %v", err)
		}
	}

	s.Stop()

	if n := runs.Load(); n != 3 {
		t.Errorf("Expected queued tasks to drain, got %d runs", n)
	}
	if err := s.EnqueueTask(newCountingTask(&runs, 0, 0)); !errors.Is(err, ErrSchedulerStopped) {
		t.Errorf("Expected ErrSchedulerStopped after Stop, got %v", err)
	}

	s.Stop()
}

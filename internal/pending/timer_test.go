package pending

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerScheduler_Fires(t *testing.T) {
	s := NewTimerScheduler()
	defer s.Stop()

	fired := make(chan struct{})
	s.Schedule("a", 5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("Expected timer to fire")
	}

	time.Sleep(5 * time.Millisecond)
	s.mu.Lock()
	n := len(s.timers)
	s.mu.Unlock()
	if n != 0 {
		t.Errorf("Expected fired timer to be forgotten, got %d armed", n)
	}
}

func TestTimerScheduler_Cancel(t *testing.T) {
	s := NewTimerScheduler()
	defer s.Stop()

	var fired atomic.Bool
	s.Schedule("a", 20*time.Millisecond, func() { fired.Store(true) })

	if !s.Cancel("a") {
		t.Error("Expected Cancel to stop an armed timer")
	}
	if s.Cancel("a") {
		t.Error("Expected second Cancel to report nothing stopped")
	}

	time.Sleep(40 * time.Millisecond)
	if fired.Load() {
		t.Error("Expected cancelled timer not to fire")
	}
}

func TestTimerScheduler_StopRejectsNewTimers(t *testing.T) {
	s := NewTimerScheduler()

	var fired atomic.Int32
	s.Schedule("a", 10*time.Millisecond, func() { fired.Add(1) })
	s.Stop()
	s.Schedule("b", 1*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(30 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("Expected no timers to fire after Stop, got %d", n)
	}
}

func TestTimerScheduler_StopWaitsForRunningCallback(t *testing.T) {
	s := NewTimerScheduler()

	started := make(chan struct{})
	var finished atomic.Bool
	s.Schedule("a", time.Millisecond, func() {
		close(started)
		time.Sleep(30 * time.Millisecond)
		finished.Store(true)
	})

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("Expected timer to fire")
	}

	s.Stop()
	if !finished.Load() {
		t.Error("Expected Stop to return only after the running callback finished")
	}
}

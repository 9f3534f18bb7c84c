package retention

import (
	"context"
	"testing"
	"time"
)

func TestScheduler_StartRunsImmediately(t *testing.T) {
	st, _ := newTestStore(t, recordAt("a", 50*time.Hour, "/uploads/a.jpg"))
	photos := &fakePhotos{}
	sweeper := NewSweeper(st, photos, testClock(), &Config{
		Interval:   time.Hour,
		RunOnStart: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := sweeper.Scheduler()
	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer scheduler.Stop()

	if photos.count() != 1 {
		t.Errorf("Expected the startup sweep to delete 1 photo, got %d", photos.count())
	}
	if !scheduler.IsRunning() {
		t.Error("Expected scheduler to be running")
	}

	next := scheduler.NextRun()
	if next == nil {
		t.Fatal("Expected a next run time")
	}
	if until := time.Until(*next); until <= 0 || until > time.Hour+time.Minute {
		t.Errorf("Next run %v is not about one interval away", next)
	}

	status := sweeper.Status()
	if !status.Running || status.ThresholdHours != 48 || status.LastResult == nil {
		t.Errorf("Unexpected status: %+v", status)
	}
}

func TestScheduler_NoRunOnStart(t *testing.T) {
	st, _ := newTestStore(t, recordAt("a", 50*time.Hour, "/uploads/a.jpg"))
	photos := &fakePhotos{}
	sweeper := NewSweeper(st, photos, testClock(), &Config{Interval: time.Hour})

	if err := sweeper.Scheduler().Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer sweeper.Scheduler().Stop()

	if photos.count() != 0 {
		t.Errorf("Expected no startup sweep, got %d deletions", photos.count())
	}
}

func TestScheduler_StopOnContextCancel(t *testing.T) {
	st, _ := newTestStore(t)
	sweeper := NewSweeper(st, &fakePhotos{}, testClock(), &Config{Interval: time.Hour})
	scheduler := sweeper.Scheduler()

	ctx, cancel := context.WithCancel(context.Background())
	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for scheduler.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler did not stop after context cancellation")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if scheduler.NextRun() != nil {
		t.Error("Expected no next run after stop")
	}
}

func TestScheduler_RunsOnInterval(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a scheduled tick")
	}

	st, _ := newTestStore(t)
	runs := make(chan struct{}, 4)
	sweeper := NewSweeper(st, &fakePhotos{}, testClock(), &Config{Interval: time.Second})
	sweeper.OnSweep = func(Result, error) { runs <- struct{}{} }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := sweeper.Scheduler().Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer sweeper.Scheduler().Stop()

	select {
	case <-runs:
	case <-time.After(3 * time.Second):
		t.Fatal("no scheduled sweep within 3s")
	}
}

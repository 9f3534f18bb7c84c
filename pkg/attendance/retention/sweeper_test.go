package retention

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rollcall-hq/attendance/pkg/attendance"
	"rollcall-hq/attendance/pkg/attendance/store"
)

var sweepNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func testClock() *attendance.Clock {
	return attendance.NewClock(time.UTC).WithNow(func() time.Time { return sweepNow })
}

type fakePhotos struct {
	mu      sync.Mutex
	deleted []string
	fail    map[string]bool
	block   chan struct{}
}

func (f *fakePhotos) Delete(ctx context.Context, ref string) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail[ref] {
		return errors.New("permission denied")
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakePhotos) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted)
}

func recordAt(id string, age time.Duration, photo string) attendance.Record {
	ts, day := testClock().Stamp(sweepNow.Add(-age))
	return attendance.Record{ID: id, StudentID: id, PhotoRef: photo, Timestamp: ts, Day: day}
}

func newTestStore(t *testing.T, seed ...attendance.Record) (*store.Store, *store.Memory) {
	t.Helper()
	mem := store.NewMemory(seed...)
	st := store.New(mem, store.Options{})
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return st, mem
}

func TestSweeper_Threshold(t *testing.T) {
	st, _ := newTestStore(t,
		recordAt("expired", 48*time.Hour+time.Second, "/uploads/expired.jpg"),
		recordAt("recent", 47*time.Hour, "/uploads/recent.jpg"),
		recordAt("boundary", 48*time.Hour, "/uploads/boundary.jpg"),
		recordAt("no-photo", 72*time.Hour, ""),
	)
	photos := &fakePhotos{}
	sweeper := NewSweeper(st, photos, testClock(), nil)

	result, err := sweeper.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce() failed: %v", err)
	}

	if result.Cleared != 1 || result.Expired != 1 || result.Scanned != 4 {
		t.Errorf("Unexpected result: %+v", result)
	}
	if len(photos.deleted) != 1 || photos.deleted[0] != "/uploads/expired.jpg" {
		t.Errorf("Unexpected deletions: %v", photos.deleted)
	}

	want := map[string]string{
		"expired":  "",
		"recent":   "/uploads/recent.jpg",
		"boundary": "/uploads/boundary.jpg",
		"no-photo": "",
	}
	for _, r := range st.All() {
		if r.PhotoRef != want[r.ID] {
			t.Errorf("record %s: photo = %q, want %q", r.ID, r.PhotoRef, want[r.ID])
		}
		if r.ID == "expired" && (r.StudentID == "" || r.Timestamp == "") {
			t.Error("textual data must be preserved")
		}
	}
}

func TestSweeper_Idempotent(t *testing.T) {
	st, mem := newTestStore(t,
		recordAt("a", 50*time.Hour, "/uploads/a.jpg"),
		recordAt("b", 60*time.Hour, "/uploads/b.jpg"),
	)
	photos := &fakePhotos{}
	sweeper := NewSweeper(st, photos, testClock(), nil)
	ctx := context.Background()

	if _, err := sweeper.SweepOnce(ctx); err != nil {
		t.Fatalf("first SweepOnce() failed: %v", err)
	}
	savesAfterFirst := mem.Saves()
	deletedAfterFirst := photos.count()

	result, err := sweeper.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("second SweepOnce() failed: %v", err)
	}
	if result.Cleared != 0 || result.Expired != 0 {
		t.Errorf("Expected nothing to do, got %+v", result)
	}
	if photos.count() != deletedAfterFirst {
		t.Error("second sweep deleted files")
	}
	if mem.Saves() != savesAfterFirst {
		t.Error("second sweep rewrote the store")
	}
}

func TestSweeper_BatchedRewrite(t *testing.T) {
	st, mem := newTestStore(t,
		recordAt("a", 50*time.Hour, "/uploads/a.jpg"),
		recordAt("b", 60*time.Hour, "/uploads/b.jpg"),
		recordAt("c", 70*time.Hour, "/uploads/c.jpg"),
	)
	before := mem.Saves()

	result, err := NewSweeper(st, &fakePhotos{}, testClock(), nil).SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce() failed: %v", err)
	}
	if result.Cleared != 3 {
		t.Errorf("Expected 3 cleared, got %d", result.Cleared)
	}
	if mem.Saves()-before != 1 {
		t.Errorf("Expected 1 rewrite, got %d", mem.Saves()-before)
	}
}

func TestSweeper_PartialFailure(t *testing.T) {
	st, _ := newTestStore(t,
		recordAt("a", 50*time.Hour, "/uploads/a.jpg"),
		recordAt("b", 50*time.Hour, "/uploads/b.jpg"),
		recordAt("c", 50*time.Hour, "/uploads/c.jpg"),
	)
	photos := &fakePhotos{fail: map[string]bool{"/uploads/b.jpg": true}}
	sweeper := NewSweeper(st, photos, testClock(), nil)

	var hookResult Result
	sweeper.OnSweep = func(r Result, err error) { hookResult = r }

	result, err := sweeper.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("partial failure must not abort the sweep, got %v", err)
	}
	if result.Failures != 1 || result.Cleared != 2 {
		t.Errorf("Unexpected result: %+v", result)
	}
	if hookResult.Failures != 1 {
		t.Error("OnSweep hook not called with result")
	}

	for _, r := range st.All() {
		if r.ID == "b" && r.PhotoRef != "/uploads/b.jpg" {
			t.Error("failed deletion must keep the photo reference for retry")
		}
		if r.ID != "b" && r.PhotoRef != "" {
			t.Errorf("record %s should be cleared", r.ID)
		}
	}
}

func TestSweeper_SkipsUnparseableTimestamps(t *testing.T) {
	bad := attendance.Record{ID: "bad", StudentID: "SV1", PhotoRef: "/uploads/bad.jpg", Timestamp: "yesterday"}
	st, _ := newTestStore(t, bad)

	result, err := NewSweeper(st, &fakePhotos{}, testClock(), nil).SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce() failed: %v", err)
	}
	if result.Skipped != 1 || result.Cleared != 0 {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestSweeper_StoreFailureAborts(t *testing.T) {
	st := store.New(corruptBackend{store.NewMemory()}, store.Options{})
	if err := st.Load(context.Background()); !errors.Is(err, attendance.ErrStoreCorrupt) {
		t.Fatalf("Expected corrupt load, got %v", err)
	}

	sweeper := NewSweeper(st, &fakePhotos{}, testClock(), nil)
	_, err := sweeper.SweepOnce(context.Background())

	var sweepErr *attendance.SweepError
	if !errors.As(err, &sweepErr) {
		t.Fatalf("Expected SweepError, got %v", err)
	}
	if !errors.Is(err, attendance.ErrStoreCorrupt) {
		t.Errorf("Expected cause ErrStoreCorrupt, got %v", err)
	}
	if sweepErr.ThresholdHours != 48 {
		t.Errorf("Expected threshold 48, got %d", sweepErr.ThresholdHours)
	}
	if sweeper.State() != Idle {
		t.Error("sweeper must return to Idle after an aborted sweep")
	}
	if sweeper.Status().LastError == "" {
		t.Error("Status() should report the last error")
	}
}

type corruptBackend struct {
	*store.Memory
}

func (c corruptBackend) Load(ctx context.Context) ([]attendance.Record, error) {
	return nil, attendance.NewCorruptStoreError("memory", errors.New("bad json"))
}

func TestSweeper_ConcurrentTriggerRejected(t *testing.T) {
	st, _ := newTestStore(t, recordAt("a", 50*time.Hour, "/uploads/a.jpg"))
	photos := &fakePhotos{block: make(chan struct{})}
	sweeper := NewSweeper(st, photos, testClock(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := sweeper.SweepOnce(context.Background())
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for sweeper.State() != Sweeping {
		if time.Now().After(deadline) {
			t.Fatal("first sweep never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := sweeper.SweepOnce(context.Background()); !errors.Is(err, ErrSweepInProgress) {
		t.Errorf("Expected ErrSweepInProgress, got %v", err)
	}

	close(photos.block)
	if err := <-done; err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}
	if sweeper.State() != Idle {
		t.Errorf("Expected Idle after sweep, got %s", sweeper.State())
	}
}

func TestSweeper_IsImageRetained(t *testing.T) {
	sweeper := NewSweeper(nil, nil, testClock(), nil)

	at := func(age time.Duration) string {
		ts, _ := testClock().Stamp(sweepNow.Add(-age))
		return ts
	}

	tests := []struct {
		name      string
		timestamp string
		want      bool
	}{
		{"fresh", at(time.Hour), true},
		{"47 hours", at(47 * time.Hour), true},
		{"exactly at cutoff", at(48 * time.Hour), true},
		{"one second past cutoff", at(48*time.Hour + time.Second), false},
		{"blank", "", false},
		{"garbage", "not a time", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sweeper.IsImageRetained(tt.timestamp); got != tt.want {
				t.Errorf("IsImageRetained(%q) = %v, want %v", tt.timestamp, got, tt.want)
			}
		})
	}
}

func TestSweeper_DisplayPhoto(t *testing.T) {
	sweeper := NewSweeper(nil, nil, testClock(), nil)

	fresh := recordAt("fresh", time.Hour, "/uploads/fresh.jpg")
	old := recordAt("old", 49*time.Hour, "/uploads/old.jpg")
	cleared := recordAt("cleared", time.Hour, "")

	if got := sweeper.DisplayPhoto(fresh); got != "/uploads/fresh.jpg" {
		t.Errorf("fresh: got %q", got)
	}
	if got := sweeper.DisplayPhoto(old); got != DefaultPlaceholder {
		t.Errorf("old: got %q", got)
	}
	if got := sweeper.DisplayPhoto(cleared); got != DefaultPlaceholder {
		t.Errorf("cleared: got %q", got)
	}
}

func TestState_String(t *testing.T) {
	if Idle.String() != "idle" || Sweeping.String() != "sweeping" || State(9).String() != "unknown" {
		t.Error("unexpected state names")
	}
}

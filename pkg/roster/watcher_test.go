package roster

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "danh_sach_sinh_vien.csv")
	if err := os.WriteFile(path, []byte("MSSV,Tên Sinh Viên\nSV001,A\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(path)
	if err := r.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(r, WatcherConfig{DebounceInterval: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer func() { _ = w.Stop() }()

	reloaded := make(chan error, 10)
	w.OnReload = func(err error) { reloaded <- err }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx) }()

	// Wait for watcher to start
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("MSSV,Tên Sinh Viên\nSV001,A\nSV002,B\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-reloaded:
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("roster was not reloaded")
	}

	if r.Len() != 2 {
		t.Errorf("Expected 2 students after reload, got %d", r.Len())
	}
}

func TestWatcher_Relevant(t *testing.T) {
	r := New("/data/danh_sach_sinh_vien.xlsx")
	w := &Watcher{roster: r}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"roster write", fsnotify.Event{Name: "/data/danh_sach_sinh_vien.xlsx", Op: fsnotify.Write}, true},
		{"csv sibling", fsnotify.Event{Name: "/data/danh_sach_sinh_vien.csv", Op: fsnotify.Create}, true},
		{"chmod only", fsnotify.Event{Name: "/data/danh_sach_sinh_vien.xlsx", Op: fsnotify.Chmod}, false},
		{"excel lock file", fsnotify.Event{Name: "/data/~$danh_sach_sinh_vien.xlsx", Op: fsnotify.Create}, false},
		{"other file", fsnotify.Event{Name: "/data/notes.csv", Op: fsnotify.Write}, false},
		{"other extension", fsnotify.Event{Name: "/data/danh_sach_sinh_vien.bak", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.event); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestDebouncer_CollapsesBursts(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 call, got %d", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(120 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("Expected no calls after Stop, got %d", got)
	}
}

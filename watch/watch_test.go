package watch

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/syncthing/notify"
)

type event struct {
	path string
}

func (e event) Event() notify.Event { return notify.Write }
func (e event) Path() string        { return e.path }
func (e event) Sys() any            { return nil }

func TestRunBatchesEvents(t *testing.T) {
	dir := t.TempDir()
	batches := make(chan []string, 4)
	w, err := New(dir, func(path string) bool { return strings.HasSuffix(path, ".cm") }, func(paths []string) {
		batches <- paths
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	w.SetDelay(20 * time.Millisecond)

	events := make(chan notify.EventInfo)
	go w.run(events)
	events <- event{filepath.Join(dir, "b.cm")}
	events <- event{filepath.Join(dir, "notes.txt")}
	events <- event{filepath.Join(dir, "a.cm")}
	events <- event{filepath.Join(dir, "b.cm")}

	select {
	case got := <-batches:
		want := []string{filepath.Join(dir, "a.cm"), filepath.Join(dir, "b.cm")}
		if !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no batch reported")
	}

	close(w.stopCh)
	<-w.done
	if len(batches) != 0 {
		t.Errorf("extra batches reported: %v", <-batches)
	}
}

func TestStopFlushesPendingEvents(t *testing.T) {
	dir := t.TempDir()
	var got []string
	w, err := New(dir, nil, func(paths []string) { got = paths })
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	w.SetDelay(time.Hour)

	events := make(chan notify.EventInfo)
	go w.run(events)
	events <- event{filepath.Join(dir, "a.cm")}
	close(w.stopCh)
	<-w.done

	if len(got) != 1 {
		t.Errorf("got %v, want the pending event", got)
	}
}

func TestSingleFileMatchesOnlyThatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.cm")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New(path, nil, func([]string) {})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if w.recurse || w.root != dir {
		t.Errorf("root = %s (recurse %v), want %s", w.root, w.recurse, dir)
	}
	if !w.match(path) || w.match(filepath.Join(dir, "b.cm")) {
		t.Errorf("single file watcher matches the wrong paths")
	}
}

func TestNewRejectsMissingPath(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), nil, func([]string) {}); err == nil {
		t.Errorf("watching a missing path succeeded")
	}
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	batches := make(chan []string, 8)
	w, err := New(dir, nil, func(paths []string) { batches <- paths })
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Skipf("file notifications unavailable: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "a.cm"), []byte("x = 1;"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-batches:
		if len(paths) == 0 || filepath.Base(paths[0]) != "a.cm" {
			t.Errorf("got %v", paths)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported")
	}
}

// Package watch reports file changes below a path, batching bursts of
// events into one callback.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/syncthing/notify"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("cmparse.watch")

// DefaultDelay is how long the watcher waits for events to stop arriving
// before it reports them.
const DefaultDelay = 100 * time.Millisecond

type Watcher struct {
	root     string
	recurse  bool
	match    func(path string) bool
	onChange func(paths []string)
	delay    time.Duration

	events chan notify.EventInfo
	stopCh chan struct{}
	done   chan struct{}
}

// New returns a watcher for root, which is a directory watched
// recursively or a single file. onChange receives the sorted paths that
// changed and that match accepts; a nil match accepts every path.
func New(root string, match func(path string) bool, onChange func(paths []string)) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	w := &Watcher{
		root:     abs,
		recurse:  info.IsDir(),
		match:    match,
		onChange: onChange,
		delay:    DefaultDelay,
		// buffered so that notify does not drop events while a batch is
		// being reported
		events: make(chan notify.EventInfo, 16),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	if !w.recurse {
		file := abs
		w.root = filepath.Dir(abs)
		w.match = func(path string) bool {
			return path == file && (match == nil || match(path))
		}
	}
	return w, nil
}

func (w *Watcher) SetDelay(d time.Duration) {
	w.delay = d
}

func (w *Watcher) Start() error {
	path := w.root
	if w.recurse {
		path = filepath.Join(path, "...")
	}
	if err := notify.Watch(path, w.events, notify.Write, notify.Create, notify.Remove, notify.Rename); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	log.Infof("watching %s", path)
	go w.run(w.events)
	return nil
}

// Stop ends watching and waits until a pending batch has been reported.
func (w *Watcher) Stop() {
	notify.Stop(w.events)
	close(w.stopCh)
	<-w.done
}

func (w *Watcher) run(events <-chan notify.EventInfo) {
	defer close(w.done)

	pending := make(map[string]bool)
	var timer *time.Timer
	timeout := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil
	}
	flush := func() {
		timer = nil
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for path := range pending {
			paths = append(paths, path)
		}
		slices.Sort(paths)
		clear(pending)
		w.onChange(paths)
	}

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
				flush()
			}
			return
		case ei := <-events:
			if w.match != nil && !w.match(ei.Path()) {
				continue
			}
			log.Debugf("%s: %s", ei.Event(), ei.Path())
			pending[ei.Path()] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.delay)
		case <-timeout():
			flush()
		}
	}
}

package tailer

import (
	"bufio"
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/packerlschupfer/ESP32-Logger/internal/model"
	"github.com/packerlschupfer/ESP32-Logger/internal/watcher"
)

// Tailer reads harness log files incrementally and emits complete lines.
// Unlike a generic log follower it always starts at the beginning of the
// file: backend attribution depends on every "Testing <X>Backend" marker
// that came before the current write position, so skipping history would
// misattribute everything that follows. Offsets are kept in memory only.
type Tailer struct {
	mu     sync.Mutex
	files  map[string]*trackedFile
	out    chan model.RawLine
	events <-chan watcher.Event
	watch  *watcher.Watcher
}

type trackedFile struct {
	path   string
	file   *os.File
	reader *bufio.Reader
	buf    string // partial line carried across reads
}

// New creates a Tailer fed by the given Watcher.
func New(w *watcher.Watcher) *Tailer {
	return &Tailer{
		files:  make(map[string]*trackedFile),
		out:    make(chan model.RawLine, 512),
		events: w.Events,
		watch:  w,
	}
}

// Lines returns the channel where raw log lines are sent.
func (t *Tailer) Lines() <-chan model.RawLine {
	return t.out
}

// Start replays existing file content, then follows watcher events.
// Blocks until the context is cancelled.
func (t *Tailer) Start(ctx context.Context) {
	defer close(t.out)

	for _, p := range t.watch.Paths() {
		t.openFile(p)
		t.readNewLines(p)
	}

	for {
		select {
		case <-ctx.Done():
			t.closeAll()
			return
		case ev, ok := <-t.events:
			if !ok {
				return
			}
			t.handleEvent(ev)
		}
	}
}

func (t *Tailer) handleEvent(ev watcher.Event) {
	switch {
	case ev.Op&fsnotify.Write != 0:
		t.readNewLines(ev.Path)

	case ev.Op&fsnotify.Create != 0:
		// File reappeared after rotation — replay it from the start.
		t.openFile(ev.Path)
		t.readNewLines(ev.Path)

	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		t.closeFile(ev.Path)
		go t.reconnect(ev.Path)
	}
}

// openFile opens a file for tailing at offset zero.
func (t *Tailer) openFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.files[path]; exists {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		log.Printf("cannot open %s: %v", path, err)
		return
	}

	t.files[path] = &trackedFile{
		path:   path,
		file:   f,
		reader: bufio.NewReader(f),
	}
}

// readNewLines drains everything between the current position and EOF,
// emitting complete lines and buffering a trailing partial write until the
// harness finishes it.
func (t *Tailer) readNewLines(path string) {
	t.mu.Lock()
	tf, ok := t.files[path]
	t.mu.Unlock()
	if !ok {
		return
	}

	for {
		chunk, err := tf.reader.ReadString('\n')
		if err == nil {
			line := tf.buf + chunk[:len(chunk)-1]
			tf.buf = ""
			t.out <- model.RawLine{Text: line, Source: path}
			continue
		}
		// EOF: hold whatever partial line is pending for the next write.
		tf.buf += chunk
		return
	}
}

// closeFile releases a tracked file.
func (t *Tailer) closeFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tf, ok := t.files[path]; ok {
		tf.file.Close()
		delete(t.files, path)
	}
}

// reconnect polls for a file to reappear after rotation (up to 5 retries).
func (t *Tailer) reconnect(path string) {
	for i := 0; i < 5; i++ {
		time.Sleep(1 * time.Second)
		if _, err := os.Stat(path); err == nil {
			log.Printf("reconnected to rotated file: %s", path)
			_ = t.watch.ReWatch(path)
			t.openFile(path)
			t.readNewLines(path)
			return
		}
	}
	log.Printf("gave up reconnecting to %s after 5 retries", path)
}

// closeAll closes all tracked file handles.
func (t *Tailer) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for path, tf := range t.files {
		tf.file.Close()
		delete(t.files, path)
	}
}

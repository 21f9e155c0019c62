// Package watch implements the Watcher Registry: named filesystem
// observers that feed a bounded, globally shared event ring.
package watch

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"warden/internal/logging"
)

// EventKind names the filesystem change kinds a watcher can filter to.
type EventKind string

const (
	EventCreated  EventKind = "created"
	EventModified EventKind = "modified"
	EventDeleted  EventKind = "deleted"
	EventMoved    EventKind = "moved"
)

// Event is one delivered, ring-buffered filesystem change.
type Event struct {
	WatcherID string
	Kind      EventKind
	Path      string
	Time      time.Time
}

// maxRingEvents bounds the shared event ring; oldest events are evicted first.
const maxRingEvents = 500

type watcher struct {
	id      string
	path    string
	kinds   map[EventKind]bool
	fsw     *fsnotify.Watcher
	done    chan struct{}
}

// Registry owns every active watcher and the shared, bounded event ring.
type Registry struct {
	mu       sync.Mutex
	watchers map[string]*watcher

	ringMu sync.Mutex
	ring   []Event
}

// New builds an empty Watcher Registry.
func New() *Registry {
	return &Registry{watchers: make(map[string]*watcher)}
}

// Watch starts observing path for the given event kinds (recursive is
// currently applied only to the immediate directory; fsnotify itself is
// non-recursive, matching the teacher stack's watcher library). Returns the
// new watcher's id.
func (r *Registry) Watch(path string, kinds []EventKind, recursive bool) (string, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return "", fmt.Errorf("create fs watcher: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return "", fmt.Errorf("watch %s: %w", path, err)
	}

	kindSet := make(map[EventKind]bool, len(kinds))
	for _, k := range kinds {
		kindSet[k] = true
	}
	if len(kindSet) == 0 {
		kindSet = map[EventKind]bool{EventCreated: true, EventModified: true, EventDeleted: true, EventMoved: true}
	}

	id := uuid.NewString()
	w := &watcher{id: id, path: path, kinds: kindSet, fsw: fsw, done: make(chan struct{})}

	r.mu.Lock()
	r.watchers[id] = w
	r.mu.Unlock()

	go r.pump(w)

	logging.Get(logging.CategoryWatch).Info("watching %s (id=%s)", path, id)
	return id, nil
}

func (r *Registry) pump(w *watcher) {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			kind := kindOf(ev.Op)
			if !w.kinds[kind] {
				continue
			}
			r.append(Event{WatcherID: w.id, Kind: kind, Path: ev.Name, Time: time.Now()})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Warn("watcher %s error: %v", w.id, err)
		case <-w.done:
			return
		}
	}
}

func kindOf(op fsnotify.Op) EventKind {
	switch {
	case op&fsnotify.Create != 0:
		return EventCreated
	case op&fsnotify.Remove != 0:
		return EventDeleted
	case op&fsnotify.Rename != 0:
		return EventMoved
	default:
		return EventModified
	}
}

func (r *Registry) append(ev Event) {
	r.ringMu.Lock()
	defer r.ringMu.Unlock()
	r.ring = append(r.ring, ev)
	if len(r.ring) > maxRingEvents {
		r.ring = r.ring[len(r.ring)-maxRingEvents:]
	}
}

// Unwatch stops and removes the watcher identified by id.
func (r *Registry) Unwatch(id string) error {
	r.mu.Lock()
	w, ok := r.watchers[id]
	if ok {
		delete(r.watchers, id)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("no such watcher: %s", id)
	}
	close(w.done)
	return w.fsw.Close()
}

// ListWatchers returns the id and path of every currently active watcher.
func (r *Registry) ListWatchers() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.watchers))
	for id, w := range r.watchers {
		out[id] = w.path
	}
	return out
}

// Events returns a filtered snapshot of the shared event ring: optionally
// restricted to one watcher id, capped at limit entries, and only events
// after since.
func (r *Registry) Events(id string, limit int, since time.Time) []Event {
	r.ringMu.Lock()
	defer r.ringMu.Unlock()

	var out []Event
	for _, ev := range r.ring {
		if id != "" && ev.WatcherID != id {
			continue
		}
		if !since.IsZero() && !ev.Time.After(since) {
			continue
		}
		out = append(out, ev)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

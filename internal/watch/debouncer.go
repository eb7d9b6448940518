// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"sort"
	"sync"
	"time"
)

// Op is the kind of change seen for a path.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event is one changed path in a batch.
type Event struct {
	Path string
	Op   Op
}

// Debouncer collects events and emits them as one batch after a quiet period.
// Events for the same path inside a window collapse to the latest operation.
type Debouncer struct {
	interval time.Duration
	events   map[string]Event
	mu       sync.Mutex
	timer    *time.Timer
	stopped  bool
	output   chan []Event
}

// NewDebouncer creates a debouncer with the given quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		events:   make(map[string]Event),
		output:   make(chan []Event, 16),
	}
}

// Output delivers batches sorted by path.
func (d *Debouncer) Output() <-chan []Event {
	return d.output
}

// Add records an event and restarts the quiet period.
func (d *Debouncer) Add(path string, op Op) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.events[path] = Event{Path: path, Op: op}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

// Stop discards pending events. Later calls to Add are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.events = make(map[string]Event)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || len(d.events) == 0 {
		return
	}

	batch := make([]Event, 0, len(d.events))
	for _, e := range d.events {
		batch = append(batch, e)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })

	d.events = make(map[string]Event)
	select {
	case d.output <- batch:
	default:
		// Consumer is behind; drop the batch.
	}
}

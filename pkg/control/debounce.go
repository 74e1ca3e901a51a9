package control

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of events into one callback after a
// quiet period. Shell redirections and editors produce several
// filesystem events per logical write; only the last one matters.
type Debouncer struct {
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Interval reports the configured quiet period.
func (d *Debouncer) Interval() time.Duration {
	return d.interval
}

// Trigger records an event. The callback runs once the interval
// passes without another Trigger; a newer callback replaces a pending
// one.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}

		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

// Stop cancels any pending callback. Safe to call more than once;
// the debouncer is done afterwards.
func (d *Debouncer) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}

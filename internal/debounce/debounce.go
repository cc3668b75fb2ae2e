// Package debounce coalesces bursts of change signals into one delayed action.
package debounce

import (
	"sync"
	"time"

	"langtray/internal/loop"
)

// DefaultDelay gives the system time to apply a layout switch before it is read back.
const DefaultDelay = 40 * time.Millisecond

// Debouncer schedules fire at most once per armed period.
type Debouncer struct {
	sched loop.Scheduler
	fire  func()

	mu    sync.Mutex
	armed bool
	timer loop.Timer
}

// New returns a debouncer that runs fire through sched.
func New(sched loop.Scheduler, fire func()) *Debouncer {
	return &Debouncer{sched: sched, fire: fire}
}

// Arm schedules fire after delay unless a call is already pending.
// It reports whether a new timer was scheduled.
func (d *Debouncer) Arm(delay time.Duration) bool {
	if delay <= 0 {
		delay = DefaultDelay
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.armed {
		return false
	}
	d.armed = true
	d.timer = d.sched.AfterFunc(delay, d.expire)
	return true
}

func (d *Debouncer) expire() {
	d.mu.Lock()
	d.armed = false
	d.timer = nil
	d.mu.Unlock()

	if d.fire != nil {
		d.fire()
	}
}

// Armed reports whether a call is pending.
func (d *Debouncer) Armed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

// Cancel drops a pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = nil
	d.armed = false
}

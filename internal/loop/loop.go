// Package loop defines the single-threaded execution model: every state change
// runs on one loop, and other goroutines hand work to it with Post.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrClosed is returned when posting to a loop that has stopped.
var ErrClosed = errors.New("loop closed")

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented it from running.
	Stop() bool
}

// Scheduler runs callbacks on the loop after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Poster hands a closure to the loop from any goroutine.
type Poster interface {
	Post(fn func()) error
}

// Queue is a portable loop driven by a channel. The Windows build drives the
// same contract from the window message loop instead.
type Queue struct {
	ch   chan func()
	done chan struct{}
	once sync.Once
}

// NewQueue creates a loop with the given backlog.
func NewQueue(backlog int) *Queue {
	if backlog < 1 {
		backlog = 1
	}
	return &Queue{ch: make(chan func(), backlog), done: make(chan struct{})}
}

// Post implements Poster. It blocks while the backlog is full.
func (q *Queue) Post(fn func()) error {
	if fn == nil {
		return errors.New("loop: nil func")
	}
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case q.ch <- fn:
		return nil
	case <-q.done:
		return ErrClosed
	}
}

// AfterFunc implements Scheduler. fn runs on the loop, not on a timer goroutine.
func (q *Queue) AfterFunc(d time.Duration, fn func()) Timer {
	t := &queueTimer{}
	t.timer = time.AfterFunc(d, func() {
		if err := q.Post(func() {
			if t.fire() {
				fn()
			}
		}); err != nil {
			slog.Debug("[loop] timer dropped", "error", err)
		}
	})
	return t
}

// Run executes posted closures until ctx is done or Stop is called.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			q.Stop()
			return ctx.Err()
		case <-q.done:
			return nil
		case fn := <-q.ch:
			fn()
		}
	}
}

// Stop ends Run. Pending closures are discarded.
func (q *Queue) Stop() {
	q.once.Do(func() { close(q.done) })
}

type queueTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	fired   bool
}

func (t *queueTimer) fire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.fired = true
	return true
}

func (t *queueTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}

package timer

import (
	"sync"
	"time"
)

// Clock is the time source of a Rest timer.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

type Stopper interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

var SystemClock Clock = systemClock{}

type countdown struct {
	deadline time.Time
	stopper  Stopper
	done     chan struct{}
}

// Rest runs at most one countdown at a time. Starting a countdown replaces the
// running one. A finished countdown only closes its Done channel.
type Rest struct {
	mu      sync.Mutex
	clock   Clock
	current *countdown
}

func NewRest(clock Clock) *Rest {
	if clock == nil {
		clock = SystemClock
	}
	return &Rest{
		clock: clock,
	}
}

// Start begins a countdown of d and returns its Done channel.
func (r *Rest) Start(d time.Duration) <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.endLocked(true)
	c := &countdown{
		deadline: r.clock.Now().Add(d),
		done:     make(chan struct{}),
	}
	r.current = c
	if d <= 0 {
		r.endLocked(false)
		return c.done
	}
	c.stopper = r.clock.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.current == c {
			r.endLocked(false)
		}
	})
	return c.done
}

// endLocked closes the current countdown, stopping its timer when cancel is
// set.
func (r *Rest) endLocked(cancel bool) {
	c := r.current
	if c == nil {
		return
	}
	if cancel && c.stopper != nil {
		c.stopper.Stop()
	}
	close(c.done)
	r.current = nil
}

// Stop cancels the running countdown. It reports whether one was running.
func (r *Rest) Stop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	running := r.current != nil
	r.endLocked(true)
	return running
}

// Remaining is the time left on the running countdown, zero when idle.
func (r *Rest) Remaining() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return 0
	}
	left := r.current.deadline.Sub(r.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Running reports whether a countdown is in progress.
func (r *Rest) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

// Done returns the channel of the running countdown. It is closed when the
// countdown runs out, is stopped, or is replaced. When idle the returned
// channel is already closed.
func (r *Rest) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return r.current.done
}

package clock

import (
	"container/heap"
	"log"
	"sync"
	"time"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/go_func_utils"
)

// Scheduler is the part of Loop that tasks and audio channels depend on.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) *Timer
	Post(fn func())
}

// Loop is a single control queue. Every callback scheduled on it runs one at a
// time, so state touched only from loop callbacks needs no further locking.
//
// A real loop is driven by a goroutine and wall-clock timers. A manual loop has
// a virtual clock that only moves when Advance is called, which makes timing
// fully deterministic in tests.
type Loop struct {
	logger *log.Logger
	manual bool

	// Timer queue (protected by mu)
	mu      sync.Mutex
	timers  timerHeap
	seq     uint64
	virtual time.Time

	// Serializes callback execution for manual loops, where callers run them
	// on their own goroutine.
	execMu sync.Mutex

	// Goroutine management (real loops only)
	wake         chan struct{}
	doneChan     chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewRealLoop creates a loop driven by wall-clock time and starts its goroutine
func NewRealLoop(logger *log.Logger) *Loop {
	if logger == nil {
		panic("Loop: logger cannot be nil")
	}
	l := &Loop{
		logger:   logger,
		wake:     make(chan struct{}, 1),
		doneChan: make(chan struct{}),
	}
	l.wg.Add(1)
	go_func_utils.SafeGo(logger, func() { l.run() })
	return l
}

// NewManualLoop creates a loop whose clock starts at start and only moves on Advance
func NewManualLoop(start time.Time) *Loop {
	return &Loop{
		logger:   log.New(discard{}, "", 0),
		manual:   true,
		virtual:  start,
		doneChan: make(chan struct{}),
	}
}

// Now returns the loop's current time
func (l *Loop) Now() time.Time {
	if !l.manual {
		return time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.virtual
}

// AfterFunc schedules fn to run on the loop once d has elapsed
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	if fn == nil {
		panic("Loop: fn cannot be nil")
	}
	if d < 0 {
		d = 0
	}

	l.mu.Lock()
	now := l.virtual
	if !l.manual {
		now = time.Now()
	}
	l.seq++
	t := &Timer{loop: l, when: now.Add(d), seq: l.seq, fn: fn, index: -1}
	heap.Push(&l.timers, t)
	l.mu.Unlock()

	l.signal()
	return t
}

// Post enqueues fn to run on the loop as soon as possible
func (l *Loop) Post(fn func()) {
	l.AfterFunc(0, fn)
}

// Do runs fn on the loop and waits for it to finish. It must not be called
// from a loop callback.
func (l *Loop) Do(fn func()) {
	if l.manual {
		l.execMu.Lock()
		fn()
		l.execMu.Unlock()
		l.RunPending()
		return
	}

	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
	case <-l.doneChan:
	}
}

// Advance moves a manual loop's clock forward by d, running every timer that
// falls due on the way in time order. Timers scheduled by those callbacks are
// honored if they fall inside the window.
func (l *Loop) Advance(d time.Duration) {
	if !l.manual {
		panic("Loop: Advance is only valid on a manual loop")
	}

	l.mu.Lock()
	target := l.virtual.Add(d)
	l.mu.Unlock()

	for {
		l.mu.Lock()
		if len(l.timers) == 0 || l.timers[0].when.After(target) {
			l.virtual = target
			l.mu.Unlock()
			return
		}
		t := heap.Pop(&l.timers).(*Timer)
		if t.when.After(l.virtual) {
			l.virtual = t.when
		}
		l.mu.Unlock()

		l.execMu.Lock()
		t.fn()
		l.execMu.Unlock()
	}
}

// RunPending runs every timer already due on a manual loop without moving the clock
func (l *Loop) RunPending() {
	l.Advance(0)
}

// Pending returns the number of scheduled timers
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

// Shutdown stops a real loop's goroutine. Pending timers are dropped.
// Safe to call multiple times - only the first call has effect
func (l *Loop) Shutdown() {
	l.shutdownOnce.Do(func() {
		close(l.doneChan)
		l.wg.Wait()
		l.mu.Lock()
		for _, t := range l.timers {
			t.index = -1
		}
		l.timers = nil
		l.mu.Unlock()
	})
}

func (l *Loop) signal() {
	if l.manual {
		return
	}
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// run is the real loop's goroutine
func (l *Loop) run() {
	defer l.wg.Done()

	wait := time.NewTimer(time.Hour)
	wait.Stop()
	defer wait.Stop()

	for {
		l.mu.Lock()
		var next *Timer
		if len(l.timers) > 0 {
			next = l.timers[0]
		}
		if next != nil && !next.when.After(time.Now()) {
			heap.Pop(&l.timers)
			l.mu.Unlock()
			next.fn()
			continue
		}
		l.mu.Unlock()

		if next != nil {
			wait.Reset(time.Until(next.when))
		}

		select {
		case <-l.doneChan:
			return
		case <-l.wake:
		case <-wait.C:
		}
		if !wait.Stop() {
			select {
			case <-wait.C:
			default:
			}
		}
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

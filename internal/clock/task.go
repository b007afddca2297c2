package clock

import "time"

// Task is cancelable work scheduled on a Loop: a periodic tick loop or a
// one-shot delayed action. All methods except Done must be called from loop
// callbacks (or, on a manual loop, the goroutine driving it).
type Task struct {
	sched    Scheduler
	interval time.Duration
	fn       func() bool
	timer    *Timer
	ticks    int
	canceled bool
	finished bool
	done     chan struct{}
	onDone   []func()
}

// Every starts a task that calls fn every interval, first after one interval.
// The task ends when fn returns false or the task is canceled.
func Every(s Scheduler, interval time.Duration, fn func() bool) *Task {
	t := newTask(s, interval, fn)
	t.schedule(interval)
	return t
}

// EveryNow is Every with the first call made on the next loop turn
func EveryNow(s Scheduler, interval time.Duration, fn func() bool) *Task {
	t := newTask(s, interval, fn)
	t.schedule(0)
	return t
}

// After starts a one-shot task that calls fn once d has elapsed
func After(s Scheduler, d time.Duration, fn func()) *Task {
	t := newTask(s, d, func() bool {
		fn()
		return false
	})
	t.schedule(d)
	return t
}

func newTask(s Scheduler, interval time.Duration, fn func() bool) *Task {
	if s == nil {
		panic("Task: scheduler cannot be nil")
	}
	if fn == nil {
		panic("Task: fn cannot be nil")
	}
	if interval <= 0 {
		panic("Task: interval must be > 0")
	}
	return &Task{
		sched:    s,
		interval: interval,
		fn:       fn,
		done:     make(chan struct{}),
	}
}

func (t *Task) schedule(d time.Duration) {
	t.timer = t.sched.AfterFunc(d, t.tick)
}

// tick runs at each suspension boundary. A canceled task exits here without
// running further side effects.
func (t *Task) tick() {
	t.timer = nil
	if t.canceled || t.finished {
		return
	}
	t.ticks++
	if !t.fn() {
		t.finish()
		return
	}
	// fn may have canceled its own task
	if t.canceled || t.finished {
		return
	}
	t.schedule(t.interval)
}

// Cancel stops the task. It is a no-op on a finished task.
func (t *Task) Cancel() {
	if t == nil || t.finished {
		return
	}
	t.canceled = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.finish()
}

// OnDone registers fn to run once when the task finishes or is canceled
func (t *Task) OnDone(fn func()) {
	if t.finished {
		fn()
		return
	}
	t.onDone = append(t.onDone, fn)
}

func (t *Task) finish() {
	if t.finished {
		return
	}
	t.finished = true
	close(t.done)
	hooks := t.onDone
	t.onDone = nil
	for _, fn := range hooks {
		fn()
	}
}

// Done is closed when the task ends, whether it completed or was canceled
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Active reports whether the task is still scheduled
func (t *Task) Active() bool {
	return t != nil && !t.finished
}

// Canceled reports whether the task ended through Cancel
func (t *Task) Canceled() bool {
	return t != nil && t.canceled
}

// Ticks returns how many times the task has fired
func (t *Task) Ticks() int {
	return t.ticks
}

package clock

// TaskObserver is told when a slot's task starts and when it ends
type TaskObserver interface {
	TaskStarted(kind string)
	TaskFinished(kind string)
}

// Slot holds at most one active task of a given kind. Starting a new task
// through Replace cancels and discards the previous one first.
type Slot struct {
	kind     string
	observer TaskObserver
	task     *Task
}

// NewSlot creates a slot for tasks of the given kind. observer may be nil.
func NewSlot(kind string, observer TaskObserver) *Slot {
	return &Slot{kind: kind, observer: observer}
}

// Replace cancels the current task and installs the one built by start.
// start is only called after the previous task has been torn down.
func (s *Slot) Replace(start func() *Task) *Task {
	s.Cancel()
	t := start()
	if t == nil {
		return nil
	}
	s.task = t
	if s.observer != nil {
		s.observer.TaskStarted(s.kind)
	}
	t.OnDone(func() {
		if s.observer != nil {
			s.observer.TaskFinished(s.kind)
		}
		if s.task == t {
			s.task = nil
		}
	})
	return t
}

// Cancel cancels the current task, if any
func (s *Slot) Cancel() {
	if s.task != nil {
		s.task.Cancel()
		s.task = nil
	}
}

// Active reports whether the slot holds a running task
func (s *Slot) Active() bool {
	return s.task.Active()
}

// Task returns the current task, or nil
func (s *Slot) Task() *Task {
	return s.task
}

// Kind returns the slot's task kind
func (s *Slot) Kind() string {
	return s.kind
}

package events

// ChannelEvent fans values out to registered channels. Sends never block: when
// a listener's buffer is full the oldest queued value is dropped so the
// listener always ends up holding the newest state.
type ChannelEvent[T any] struct {
	reg registry[T, chan T]
}

// NewChannelEvent creates a ChannelEvent. With replay set, a new listener is
// immediately sent the last value published, if there was one.
func NewChannelEvent[T any](replay bool) *ChannelEvent[T] {
	return &ChannelEvent[T]{reg: newRegistry[T, chan T](replay)}
}

// Listen registers ch and returns a function that removes it. ch must be
// buffered; an unbuffered channel only receives values while a reader waits.
func (e *ChannelEvent[T]) Listen(ch chan T) func() {
	if ch == nil {
		panic("channel cannot be nil")
	}
	id, last, send := e.reg.add(ch)
	if send {
		deliver(ch, last)
	}
	return func() { e.reg.remove(id) }
}

// Notify publishes value to every listener
func (e *ChannelEvent[T]) Notify(value T) {
	for _, ch := range e.reg.publish(value) {
		deliver(ch, value)
	}
}

// Last returns the last value published (replay events only)
func (e *ChannelEvent[T]) Last() (T, bool) {
	return e.reg.lastValue()
}

// ListenerCount returns the current number of registered listeners
func (e *ChannelEvent[T]) ListenerCount() int {
	return e.reg.count()
}

func deliver[T any](ch chan T, value T) {
	for attempt := 0; attempt < 2; attempt++ {
		select {
		case ch <- value:
			return
		default:
		}
		// full: drop the stale value and retry once
		select {
		case <-ch:
		default:
		}
	}
}

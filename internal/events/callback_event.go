package events

// CallbackEvent calls registered functions synchronously on Notify
type CallbackEvent[T any] struct {
	reg registry[T, func(T)]
}

// NewCallbackEvent creates a CallbackEvent. With replay set, a new listener is
// called immediately with the last value published, if there was one.
func NewCallbackEvent[T any](replay bool) *CallbackEvent[T] {
	return &CallbackEvent[T]{reg: newRegistry[T, func(T)](replay)}
}

// Listen registers callback and returns a function that removes it
func (e *CallbackEvent[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("callback cannot be nil")
	}
	id, last, send := e.reg.add(callback)
	if send {
		callback(last)
	}
	return func() { e.reg.remove(id) }
}

// Notify calls every listener with value, outside the registry lock
func (e *CallbackEvent[T]) Notify(value T) {
	for _, callback := range e.reg.publish(value) {
		callback(value)
	}
}

// ListenerCount returns the current number of registered listeners
func (e *CallbackEvent[T]) ListenerCount() int {
	return e.reg.count()
}

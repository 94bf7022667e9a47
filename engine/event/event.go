// Package event provides the typed, synchronous multicast notification used by every
// lifecycle phase in the engine.
package event

// Listener receives notifications for a single event argument type.
type Listener[T any] interface {
	// Handle is invoked once per notification.
	//
	// Parameters:
	//   - arg: the phase-specific payload
	Handle(arg T)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc[T any] func(arg T)

// Handle calls f(arg).
func (f ListenerFunc[T]) Handle(arg T) {
	f(arg)
}

// Event is an ordered list of listeners for one phase.
//
// Listeners are invoked synchronously on the notifying goroutine in the order they were
// attached. Attaching the same listener twice yields two invocations, and there is no
// way to detach. Event is not safe for concurrent use.
type Event[T any] struct {
	listeners []Listener[T]
}

// NewEvent creates an Event with no listeners.
//
// Returns:
//   - *Event[T]: the new event
func NewEvent[T any]() *Event[T] {
	return &Event[T]{}
}

// Attach appends a listener.
//
// Parameters:
//   - l: the listener to notify on every Notify call
func (e *Event[T]) Attach(l Listener[T]) {
	e.listeners = append(e.listeners, l)
}

// AttachFunc is shorthand for Attach(ListenerFunc[T](f)).
//
// Parameters:
//   - f: the function to notify on every Notify call
func (e *Event[T]) AttachFunc(f func(arg T)) {
	e.Attach(ListenerFunc[T](f))
}

// Notify invokes every attached listener in attachment order.
// A listener attached during Notify is not invoked until the next Notify.
//
// Parameters:
//   - arg: the payload passed to each listener
func (e *Event[T]) Notify(arg T) {
	listeners := e.listeners
	for _, l := range listeners {
		l.Handle(arg)
	}
}

// Size returns the number of attached listeners, counting duplicates.
func (e *Event[T]) Size() int {
	return len(e.listeners)
}

package event

import (
	"reflect"
)

// Bus is a double-buffered event bus. Events emitted in step N are readable
// in step N+1. SwapBuffers() is called at the start of the events phase.
// Like the rest of the step, the bus is only touched from the simulation
// goroutine.
type Bus struct {
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]any
	order    []reflect.Type // first-emit order, keeps dispatch deterministic
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer (will be readable next step).
func Emit[T any](b *Bus, event T) {
	t := typeOf[T]()
	if _, seen := b.back[t]; !seen {
		if _, seenFront := b.front[t]; !seenFront {
			b.order = append(b.order, t)
		}
	}
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], fn)
}

// SwapBuffers rotates back→front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() int {
	delivered := 0
	for _, t := range b.order {
		events := b.front[t]
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				// Subscribe and Emit use the same type key, so the call is safe.
				callHandler(h, ev)
			}
			delivered++
		}
	}
	return delivered
}

// Queued returns how many events wait in the back buffer.
func (b *Bus) Queued() int {
	n := 0
	for _, evs := range b.back {
		n += len(evs)
	}
	return n
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}

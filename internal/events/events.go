// Package events carries store change notifications to in-process
// subscribers and, optionally, to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

type Event interface {
	Type() string
	Topic() string
	Key() string
}

type Dispatcher interface {
	Dispatch(ctx context.Context, e Event) error
}

type Handler func(ctx context.Context, e Event)

// Bus delivers every event synchronously to its subscribers in
// subscription order.
type Bus struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler
	order    []int
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a func that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.handlers[id] = h
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

func (b *Bus) Dispatch(ctx context.Context, e Event) error {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		hs = append(hs, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(ctx, e)
	}
	return nil
}

type nop struct{}

func (nop) Dispatch(context.Context, Event) error { return nil }

// Nop discards every event.
var Nop Dispatcher = nop{}

type tee []Dispatcher

func (t tee) Dispatch(ctx context.Context, e Event) error {
	var errs []error
	for _, d := range t {
		if err := d.Dispatch(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Tee dispatches to every non-nil dispatcher and joins their errors.
func Tee(ds ...Dispatcher) Dispatcher {
	out := make(tee, 0, len(ds))
	for _, d := range ds {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

// Encode renders e as a flat JSON object with its type under "type".
func Encode(e Event) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("events: marshal %s: %w", e.Type(), err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("events: %s is not an object: %w", e.Type(), err)
	}
	t, _ := json.Marshal(e.Type())
	fields["type"] = t
	return json.Marshal(fields)
}

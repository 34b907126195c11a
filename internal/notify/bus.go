package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Publisher is what the ledger needs from the bus.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

type Handler func(Event)

const defaultBuffer = 32

type subscriber struct {
	id     uint64
	events chan Event
	done   chan struct{}
}

// Bus delivers each published event to every subscriber on the subscriber's
// own goroutine.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscriber
	nextID uint64
	buffer int
	closed bool
	wg     sync.WaitGroup
	logger *slog.Logger
	now    func() time.Time
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[uint64]*subscriber),
		buffer: defaultBuffer,
		logger: logger,
		now:    time.Now,
	}
}

// Subscribe registers h and returns a function that removes it. Calling the
// returned function more than once is safe.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	b.nextID++
	sub := &subscriber{
		id:     b.nextID,
		events: make(chan Event, b.buffer),
		done:   make(chan struct{}),
	}
	b.subs[sub.id] = sub

	b.wg.Add(1)

	go b.run(sub, h)

	var once sync.Once

	return func() {
		once.Do(func() { b.remove(sub.id) })
	}
}

func (b *Bus) run(sub *subscriber, h Handler) {
	defer b.wg.Done()

	for {
		select {
		case evt := <-sub.events:
			b.deliver(h, evt)
		case <-sub.done:
			return
		}
	}
}

func (b *Bus) deliver(h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("notification handler panicked", "kind", evt.Kind, "panic", r)
		}
	}()

	h(evt)
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return
	}

	delete(b.subs, id)
	close(sub.done)
}

// Publish hands evt to every subscriber without waiting. Subscribers whose
// buffer is full drop the event.
func (b *Bus) Publish(_ context.Context, evt Event) {
	if evt.At.IsZero() {
		evt.At = b.now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		select {
		case sub.events <- evt:
		default:
			b.logger.Warn("dropping notification for slow subscriber", "kind", evt.Kind, "subscriber", sub.id)
		}
	}
}

// Close unsubscribes everyone and waits for handler goroutines to exit.
// Events still buffered are discarded.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}

	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.done)
	}
	b.mu.Unlock()

	b.wg.Wait()
}

// Discard is a Publisher that drops everything.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}

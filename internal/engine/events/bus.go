package events

// Handler receives one event.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus queues events and dispatches them to subscribers in publish order.
type Bus struct {
	subs   [kindCount][]subscription
	queue  []Event
	nextID uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h for events of kind k. The returned function removes
// the subscription.
func (b *Bus) Subscribe(k Kind, h Handler) (unsubscribe func()) {
	if k >= kindCount || h == nil {
		return func() {}
	}
	b.nextID++
	id := b.nextID
	b.subs[k] = append(b.subs[k], subscription{id: id, handler: h})
	return func() {
		subs := b.subs[k]
		for i, s := range subs {
			if s.id == id {
				b.subs[k] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish queues e for the next Drain.
func (b *Bus) Publish(e Event) {
	if e == nil {
		return
	}
	b.queue = append(b.queue, e)
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int {
	return len(b.queue)
}

// Drain dispatches the events queued before the call. Events published by
// handlers wait for the next Drain. It returns the number dispatched.
func (b *Bus) Drain() int {
	batch := b.queue
	b.queue = nil
	for _, e := range batch {
		k := e.Kind()
		if k >= kindCount {
			continue
		}
		for _, s := range b.subs[k] {
			s.handler(e)
		}
	}
	return len(batch)
}

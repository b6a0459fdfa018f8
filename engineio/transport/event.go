package transport

import (
	"sync"

	eiop "github.com/njones/eioclient/engineio/protocol"
)

// Event names what a transport reports to its owner.
type Event int

const (
	EventOpen Event = iota
	EventClose
	EventError
	EventPacket
	EventDrain
	EventPoll
	EventPollComplete

	numEvents
)

func (e Event) String() string {
	switch e {
	case EventOpen:
		return "open"
	case EventClose:
		return "close"
	case EventError:
		return "error"
	case EventPacket:
		return "packet"
	case EventDrain:
		return "drain"
	case EventPoll:
		return "poll"
	case EventPollComplete:
		return "poll_complete"
	}
	return "unknown"
}

func (e Event) valid() bool { return e >= EventOpen && e < numEvents }

// Emit is passed to listeners. Packet is set for EventPacket and Err
// (always an *Error) for EventError.
type Emit struct {
	Event  Event
	Packet eiop.Packet
	Err    error
}

type Listener func(Emit)

type listener struct {
	id   uint64
	fn   Listener
	once bool
}

// emitter is the listener registry of a single transport.
type emitter struct {
	mu        sync.Mutex
	seq       uint64
	listeners [numEvents][]listener
}

func newEmitter() *emitter { return &emitter{} }

// On registers fn for every e, the returned func removes it.
func (em *emitter) On(e Event, fn Listener) (off func()) { return em.add(e, fn, false) }

// Once registers fn for the next e only.
func (em *emitter) Once(e Event, fn Listener) (off func()) { return em.add(e, fn, true) }

func (em *emitter) add(e Event, fn Listener, once bool) func() {
	if !e.valid() || fn == nil {
		return func() {}
	}

	em.mu.Lock()
	defer em.mu.Unlock()

	em.seq++
	id := em.seq
	em.listeners[e] = append(em.listeners[e], listener{id: id, fn: fn, once: once})

	return func() { em.remove(e, id) }
}

func (em *emitter) remove(e Event, id uint64) {
	em.mu.Lock()
	defer em.mu.Unlock()

	list := em.listeners[e]
	for i, l := range list {
		if l.id == id {
			em.listeners[e] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// emit calls the listeners of x.Event outside of the registry lock, so a
// listener may register or remove listeners itself.
func (em *emitter) emit(x Emit) {
	if !x.Event.valid() {
		return
	}

	em.mu.Lock()
	list := em.listeners[x.Event]
	call := make([]Listener, 0, len(list))
	keep := list[:0:0]
	for _, l := range list {
		call = append(call, l.fn)
		if !l.once {
			keep = append(keep, l)
		}
	}
	em.listeners[x.Event] = keep
	em.mu.Unlock()

	for _, fn := range call {
		fn(x)
	}
}

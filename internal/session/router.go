package session

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/sibe7691/tablelink/internal/protocol"
)

// Event is a single decoded message delivered to a channel subscriber.
// Data is a pointer to the payload struct for the channel's tag
// (e.g. *protocol.ChatMessageData on the chat channel).
type Event struct {
	Channel  protocol.MessageType
	Data     interface{}
	Received time.Time
}

// Subscription is one subscriber's view of a channel. Every subscriber to
// the same channel receives every event, in arrival order. Events queue
// without bound while the consumer is slow, so publishing never blocks.
type Subscription struct {
	id      uuid.UUID
	channel protocol.MessageType
	router  *router

	mu      sync.Mutex
	pending []Event
	wake    chan struct{}
	done    chan struct{}
	once    sync.Once

	events chan Event
}

// Events returns the subscriber's delivery channel. It is closed when the
// subscription is closed; it is not closed on disconnect, so a subscriber
// survives reconnects.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close unregisters the subscriber and releases its delivery goroutine.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.router.unsubscribe(s)
		close(s.done)
	})
}

func (s *Subscription) enqueue(ev Event) {
	s.mu.Lock()
	s.pending = append(s.pending, ev)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// purge drops queued but undelivered events. Called at the disconnect
// boundary so nothing from a dead connection arrives after the status
// flips to disconnected.
func (s *Subscription) purge() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

func (s *Subscription) next() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return Event{}, false
	}
	ev := s.pending[0]
	s.pending = s.pending[1:]
	return ev, true
}

// deliver drains the pending queue into the events channel in order.
func (s *Subscription) deliver() {
	defer close(s.events)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			ev, ok := s.next()
			if !ok {
				break
			}
			select {
			case s.events <- ev:
			case <-s.done:
				return
			}
		}
	}
}

// router fans each event out to every current subscriber of its channel.
// There is no cross-channel ordering guarantee; each channel alone
// preserves arrival order.
type router struct {
	logger *log.Logger

	mu   sync.RWMutex
	subs map[protocol.MessageType]map[uuid.UUID]*Subscription
}

func newRouter(logger *log.Logger) *router {
	return &router{
		logger: logger,
		subs:   make(map[protocol.MessageType]map[uuid.UUID]*Subscription),
	}
}

func (r *router) subscribe(channel protocol.MessageType) *Subscription {
	sub := &Subscription{
		id:      uuid.New(),
		channel: channel,
		router:  r,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		events:  make(chan Event, 16),
	}

	r.mu.Lock()
	if r.subs[channel] == nil {
		r.subs[channel] = make(map[uuid.UUID]*Subscription)
	}
	r.subs[channel][sub.id] = sub
	r.mu.Unlock()

	go sub.deliver()
	return sub
}

func (r *router) unsubscribe(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.subs[sub.channel]; m != nil {
		delete(m, sub.id)
		if len(m) == 0 {
			delete(r.subs, sub.channel)
		}
	}
}

func (r *router) publish(ev Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sub := range r.subs[ev.Channel] {
		sub.enqueue(ev)
	}
}

// purgePending drops undelivered events on every channel except the ones
// listed. The connection channel is exempted so the disconnected status
// event itself is not lost.
func (r *router) purgePending(except ...protocol.MessageType) {
	keep := make(map[protocol.MessageType]bool, len(except))
	for _, ch := range except {
		keep[ch] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for channel, m := range r.subs {
		if keep[channel] {
			continue
		}
		for _, sub := range m {
			sub.purge()
		}
	}
}

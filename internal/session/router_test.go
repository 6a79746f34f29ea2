package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibe7691/tablelink/internal/protocol"
)

func publishChat(r *router, text string) {
	r.publish(Event{
		Channel:  protocol.TypeChatMessage,
		Data:     &protocol.ChatMessageData{Message: text},
		Received: time.Now(),
	})
}

func TestRouterDeliversInOrder(t *testing.T) {
	r := newRouter(testLogger())
	sub := r.subscribe(protocol.TypeChatMessage)
	defer sub.Close()

	for _, text := range []string{"one", "two", "three"} {
		publishChat(r, text)
	}

	for _, want := range []string{"one", "two", "three"} {
		ev := nextEvent(t, sub, time.Second)
		assert.Equal(t, want, ev.Data.(*protocol.ChatMessageData).Message)
	}
}

func TestRouterIgnoresChannelsWithoutSubscribers(t *testing.T) {
	r := newRouter(testLogger())

	// Must not panic or block.
	publishChat(r, "into the void")

	sub := r.subscribe(protocol.TypeChatMessage)
	defer sub.Close()

	// A subscriber created after the fact sees nothing old.
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRouterFanOut(t *testing.T) {
	r := newRouter(testLogger())
	a := r.subscribe(protocol.TypeChatMessage)
	defer a.Close()
	b := r.subscribe(protocol.TypeChatMessage)
	defer b.Close()

	publishChat(r, "both")

	for _, sub := range []*Subscription{a, b} {
		ev := nextEvent(t, sub, time.Second)
		assert.Equal(t, "both", ev.Data.(*protocol.ChatMessageData).Message)
	}
}

func TestRouterNoCrossChannelLeak(t *testing.T) {
	r := newRouter(testLogger())
	chat := r.subscribe(protocol.TypeChatMessage)
	defer chat.Close()
	game := r.subscribe(protocol.TypeGameState)
	defer game.Close()

	publishChat(r, "chat only")

	ev := nextEvent(t, chat, time.Second)
	require.Equal(t, protocol.TypeChatMessage, ev.Channel)

	select {
	case ev := <-game.Events():
		t.Fatalf("game_state subscriber received %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	r := newRouter(testLogger())
	sub := r.subscribe(protocol.TypeChatMessage)

	sub.Close()
	publishChat(r, "late")

	// The events channel closes once the delivery goroutine winds down.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel never closed")
		}
	}
}

func TestPurgePendingDropsQueuedEvents(t *testing.T) {
	r := newRouter(testLogger())
	sub := r.subscribe(protocol.TypeChatMessage)
	defer sub.Close()

	// Fill well past the delivery buffer without consuming, so some events
	// are still queued when the purge hits.
	for i := 0; i < 100; i++ {
		publishChat(r, "stale")
	}
	r.purgePending(protocol.TypeConnection)
	publishChat(r, "fresh")

	// Everything still delivered is either an already-buffered stale event
	// or the fresh one; the fresh one must arrive last and arrive at all.
	var last string
	deadline := time.After(time.Second)
	for last != "fresh" {
		select {
		case ev := <-sub.Events():
			last = ev.Data.(*protocol.ChatMessageData).Message
		case <-deadline:
			t.Fatal("fresh event never delivered after purge")
		}
	}
}

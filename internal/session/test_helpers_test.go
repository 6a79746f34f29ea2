package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/sibe7691/tablelink/internal/protocol"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.ErrorLevel})
}

// wsServer is an in-process stand-in for the poker server. It records every
// command the client sends and lets tests push frames to the client.
type wsServer struct {
	t        *testing.T
	srv      *httptest.Server
	received chan *protocol.Message

	mu       sync.Mutex
	conns    []*websocket.Conn
	accepted int
}

func newWSServer(t *testing.T) *wsServer {
	t.Helper()

	ws := &wsServer{
		t:        t,
		received: make(chan *protocol.Message, 64),
	}

	upgrader := websocket.Upgrader{}
	ws.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		ws.mu.Lock()
		ws.conns = append(ws.conns, conn)
		ws.accepted++
		ws.mu.Unlock()

		for {
			var msg protocol.Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			ws.received <- &msg
		}
	}))
	t.Cleanup(ws.close)

	return ws
}

func (ws *wsServer) close() {
	ws.mu.Lock()
	conns := ws.conns
	ws.conns = nil
	ws.mu.Unlock()
	for _, conn := range conns {
		_ = conn.Close()
	}
	ws.srv.Close()
}

// URL returns the http:// URL; the session converts the scheme itself.
func (ws *wsServer) URL() string {
	return ws.srv.URL
}

func (ws *wsServer) acceptedConns() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.accepted
}

// send pushes a frame to the most recent client connection.
func (ws *wsServer) send(messageType protocol.MessageType, data interface{}) {
	ws.t.Helper()

	msg, err := protocol.NewMessage(messageType, data)
	if err != nil {
		ws.t.Fatalf("failed to build %s frame: %v", messageType, err)
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if len(ws.conns) == 0 {
		ws.t.Fatalf("no client connection to send %s on", messageType)
	}
	conn := ws.conns[len(ws.conns)-1]
	if err := conn.WriteJSON(msg); err != nil {
		ws.t.Fatalf("failed to send %s frame: %v", messageType, err)
	}
}

// sendRaw pushes an arbitrary payload, e.g. garbage for decode tests.
func (ws *wsServer) sendRaw(raw string) {
	ws.t.Helper()

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if len(ws.conns) == 0 {
		ws.t.Fatal("no client connection")
	}
	conn := ws.conns[len(ws.conns)-1]
	if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
		ws.t.Fatalf("failed to send raw frame: %v", err)
	}
}

// dropClient severs the most recent client connection server-side.
func (ws *wsServer) dropClient() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if len(ws.conns) > 0 {
		_ = ws.conns[len(ws.conns)-1].Close()
	}
}

// expectCommand waits for the next command from the client and fails the
// test if it has a different tag.
func (ws *wsServer) expectCommand(messageType protocol.MessageType, timeout time.Duration) *protocol.Message {
	ws.t.Helper()

	select {
	case msg := <-ws.received:
		if msg.Type != messageType {
			ws.t.Fatalf("expected %s command, got %s", messageType, msg.Type)
		}
		return msg
	case <-time.After(timeout):
		ws.t.Fatalf("timed out waiting for %s command", messageType)
		return nil
	}
}

// expectNoCommand asserts the client stays quiet for the given window.
func (ws *wsServer) expectNoCommand(window time.Duration) {
	ws.t.Helper()

	select {
	case msg := <-ws.received:
		ws.t.Fatalf("expected no command, got %s", msg.Type)
	case <-time.After(window):
	}
}

// unmarshalData decodes a received command's payload into out.
func unmarshalData(msg *protocol.Message, out interface{}) error {
	return json.Unmarshal(msg.Data, out)
}

// nextEvent waits for an event on a subscription.
func nextEvent(t *testing.T, sub *Subscription, timeout time.Duration) Event {
	t.Helper()

	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed")
		}
		return ev
	case <-time.After(timeout):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

// waitForStatusEvent consumes connection events until the wanted status
// appears.
func waitForStatusEvent(t *testing.T, sub *Subscription, status Status, timeout time.Duration) {
	t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				t.Fatal("subscription closed")
			}
			if data, ok := ev.Data.(*protocol.ConnectionData); ok && data.Status == status.String() {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s status", status)
		}
	}
}

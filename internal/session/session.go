// Package session maintains the single persistent websocket connection to
// the poker server and exposes the inbound message stream as per-channel
// fan-out subscriptions. The session is mechanism only: it reports socket
// loss and authentication failures but never retries on its own; reconnect
// policy belongs to the Controller.
package session

import (
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/sibe7691/tablelink/internal/protocol"
)

const (
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
	sendBuffer   = 256
)

// Session owns the socket. Exactly one underlying connection exists at a
// time; Connect while already connecting or connected is a no-op.
type Session struct {
	serverURL string
	logger    *log.Logger
	clock     quartz.Clock
	router    *router

	mu     sync.Mutex
	conn   *websocket.Conn
	status Status
	send   chan *protocol.Message
	stop   chan struct{}
	gen    uint64

	dropped   atomic.Uint64
	delivered atomic.Uint64
}

// Option configures a Session.
type Option func(*Session)

// WithClock substitutes the clock driving the ping ticker. Tests pass a
// quartz mock.
func WithClock(clock quartz.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// New creates a session for the given server URL. No socket is opened
// until Connect.
func New(serverURL string, logger *log.Logger, opts ...Option) *Session {
	s := &Session{
		serverURL: serverURL,
		logger:    logger.WithPrefix("session"),
		clock:     quartz.NewReal(),
	}
	s.router = newRouter(s.logger)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the current connection status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Subscribe returns a subscription to one channel's decoded events.
// Multiple subscribers to the same channel each receive every event.
// Subscriptions survive disconnects; they simply go quiet until the next
// connection delivers something.
func (s *Session) Subscribe(channel protocol.MessageType) *Subscription {
	return s.router.subscribe(channel)
}

// Stats reports frame counters for diagnostics.
type Stats struct {
	DroppedFrames   uint64
	DeliveredEvents uint64
}

func (s *Session) Stats() Stats {
	return Stats{
		DroppedFrames:   s.dropped.Load(),
		DeliveredEvents: s.delivered.Load(),
	}
}

// Connect establishes the socket and reports whether it reached connected.
// Ordinary network failure is not an error condition here: it is published
// on the error channel and reflected in the return value. Calling Connect
// while already connecting or connected does not open a second socket.
func (s *Session) Connect() bool {
	s.mu.Lock()
	if s.status != StatusDisconnected {
		connected := s.status >= StatusConnected
		s.mu.Unlock()
		return connected
	}
	s.status = StatusConnecting
	s.mu.Unlock()
	s.publishStatus(StatusConnecting, "")

	u, err := url.Parse(s.serverURL)
	if err != nil {
		s.connectFailed(fmt.Sprintf("invalid server URL: %v", err))
		return false
	}

	// Convert http/https to ws/wss
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	s.logger.Info("connecting to server", "url", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		s.connectFailed(fmt.Sprintf("failed to connect: %v", err))
		return false
	}

	s.mu.Lock()
	if s.status != StatusConnecting {
		// Disconnect raced the dial; drop the fresh socket.
		s.mu.Unlock()
		_ = conn.Close()
		return false
	}
	s.conn = conn
	s.status = StatusConnected
	s.gen++
	gen := s.gen
	s.send = make(chan *protocol.Message, sendBuffer)
	s.stop = make(chan struct{})
	sendCh, stopCh := s.send, s.stop
	s.mu.Unlock()

	go s.readPump(conn, gen)
	go s.writePump(conn, sendCh, stopCh)

	s.logger.Info("connected to server")
	s.publishStatus(StatusConnected, "")
	return true
}

func (s *Session) connectFailed(reason string) {
	s.mu.Lock()
	s.status = StatusDisconnected
	s.mu.Unlock()

	s.logger.Error("connect failed", "reason", reason)
	s.publishError("transport", reason)
	s.publishStatus(StatusDisconnected, reason)
}

// Authenticate sends the auth command over an already-connected socket.
// The server's verdict arrives asynchronously: either a connection frame
// with status authenticated or an auth_failed frame. Calling before the
// socket is connected reports on the error channel and does nothing else.
func (s *Session) Authenticate(accessToken string) {
	if s.Status() < StatusConnected {
		s.logger.Error("authenticate requested before socket connected")
		s.publishError("not_connected", "cannot authenticate: socket is not connected")
		return
	}

	if err := s.Send(protocol.TypeAuthenticate, protocol.AuthenticateData{Token: accessToken}); err != nil {
		s.publishError("transport", fmt.Sprintf("failed to send authenticate: %v", err))
	}
}

// Send serializes and transmits a command. Commands sent before the
// handshake completes still go out (the server is the authority on command
// legality) but log a local warning, since most are meaningless pre-auth.
func (s *Session) Send(messageType protocol.MessageType, data interface{}) error {
	msg, err := protocol.NewMessage(messageType, data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", messageType, err)
	}

	s.mu.Lock()
	status := s.status
	sendCh, stopCh := s.send, s.stop
	s.mu.Unlock()

	if status < StatusConnected || sendCh == nil {
		err := fmt.Errorf("not connected")
		s.publishError("not_connected", fmt.Sprintf("cannot send %s: socket is not connected", messageType))
		return err
	}

	if status != StatusAuthenticated && messageType != protocol.TypeAuthenticate {
		s.logger.Warn("sending command before authentication", "type", messageType)
	}

	select {
	case sendCh <- msg:
		return nil
	case <-stopCh:
		return fmt.Errorf("connection closed")
	default:
		return fmt.Errorf("send buffer full")
	}
}

// Disconnect closes the socket idempotently and resets the status. It does
// not clear subscriptions.
func (s *Session) Disconnect() {
	if s.teardown("") {
		s.logger.Info("disconnected from server")
	}
}

// teardown collapses the session back to disconnected: close the socket,
// stop the pumps, and purge undelivered events so nothing from the dead
// connection is delivered after the status flips. Returns false if already
// disconnected.
func (s *Session) teardown(reason string) bool {
	s.mu.Lock()
	if s.status == StatusDisconnected {
		s.mu.Unlock()
		return false
	}
	s.status = StatusDisconnected
	conn, stop := s.conn, s.stop
	s.conn, s.send, s.stop = nil, nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	if conn != nil {
		_ = conn.Close()
	}

	s.router.purgePending(protocol.TypeConnection)
	if reason != "" {
		s.publishError("transport", reason)
	}
	s.publishStatus(StatusDisconnected, reason)
	return true
}

func (s *Session) socketLost(gen uint64, reason string) {
	s.mu.Lock()
	stale := s.gen != gen
	s.mu.Unlock()
	if stale {
		return
	}
	s.teardown(reason)
}

// readPump decodes inbound frames until the socket dies.
func (s *Session) readPump(conn *websocket.Conn, gen uint64) {
	for {
		var msg protocol.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Error("websocket read error", "error", err)
			}
			s.socketLost(gen, "connection lost")
			return
		}
		s.dispatch(&msg)
	}
}

// dispatch routes one decoded frame to its channel. Malformed frames are
// counted and dropped; a bad message must never terminate a stream.
func (s *Session) dispatch(msg *protocol.Message) {
	payload, err := protocol.DecodeInbound(msg)
	if err != nil {
		s.dropped.Add(1)
		s.logger.Warn("dropping inbound frame", "type", msg.Type, "error", err)
		return
	}

	// The server just told us it no longer accepts our token; we are back
	// to merely connected until a new handshake completes.
	if msg.Type == protocol.TypeAuthFailed {
		s.mu.Lock()
		if s.status == StatusAuthenticated {
			s.status = StatusConnected
		}
		s.mu.Unlock()
	}

	// The server confirms the handshake with a connection frame.
	if msg.Type == protocol.TypeConnection {
		if data, ok := payload.(*protocol.ConnectionData); ok && data.Status == StatusAuthenticated.String() {
			s.mu.Lock()
			if s.status == StatusConnected {
				s.status = StatusAuthenticated
			}
			s.mu.Unlock()
			s.logger.Info("authenticated", "playerId", data.PlayerID)
		}
	}

	s.delivered.Add(1)
	s.router.publish(Event{Channel: msg.Type, Data: payload, Received: time.Now()})
}

// writePump serializes all socket writes and keeps the connection alive
// with pings.
func (s *Session) writePump(conn *websocket.Conn, sendCh chan *protocol.Message, stopCh chan struct{}) {
	ticker := s.clock.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg := <-sendCh:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Error("failed to write message", "type", msg.Type, "error", err)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-stopCh:
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (s *Session) publishStatus(status Status, message string) {
	s.router.publish(Event{
		Channel:  protocol.TypeConnection,
		Data:     &protocol.ConnectionData{Status: status.String(), Message: message},
		Received: time.Now(),
	})
}

func (s *Session) publishError(code, message string) {
	s.router.publish(Event{
		Channel:  protocol.TypeError,
		Data:     &protocol.ErrorData{Code: code, Message: message},
		Received: time.Now(),
	})
}

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/sibe7691/tablelink/internal/creds"
	"github.com/sibe7691/tablelink/internal/protocol"
)

const (
	refreshTimeout = 15 * time.Second

	// A token this close to expiry is refreshed before the handshake
	// instead of burning a round trip on a guaranteed auth_failed.
	expiryHeadroom = 30 * time.Second
)

// PendingJoin remembers the table to resume once re-authentication
// succeeds. At most one exists at a time; a new join request overwrites it,
// and it is cleared the instant the replay is issued.
type PendingJoin struct {
	TableID string
	Seat    *int
	BuyIn   int
}

// State is the coarse session state the UI renders from.
type State struct {
	Connecting     bool
	Connected      bool
	Authenticated  bool
	Refreshing     bool // advisory, for spinners; does not block sends
	CurrentTableID string
	LastError      string
}

// Controller turns low-level connection events into a coherent session
// lifecycle. It owns reconnect and credential-refresh policy: when the
// server reports an expired access token the controller refreshes it,
// re-authenticates the still-open session, and replays table membership,
// all invisibly to the UI apart from the Refreshing flag.
type Controller struct {
	session *Session
	store   creds.Store
	logger  *log.Logger

	refresh singleflight.Group

	mu          sync.Mutex
	state       State
	pendingJoin *PendingJoin

	connSub *Subscription
	authSub *Subscription
}

// NewController wires a controller to a session and credential store and
// starts consuming connection and auth-failure events.
func NewController(sess *Session, store creds.Store, logger *log.Logger) *Controller {
	c := &Controller{
		session: sess,
		store:   store,
		logger:  logger.WithPrefix("controller"),
		connSub: sess.Subscribe(protocol.TypeConnection),
		authSub: sess.Subscribe(protocol.TypeAuthFailed),
	}
	go c.run()
	return c
}

// Close stops the controller's event loop. The session is left as-is.
func (c *Controller) Close() {
	c.connSub.Close()
	c.authSub.Close()
}

// Session exposes the underlying transport for channel subscriptions.
func (c *Controller) Session() *Session {
	return c.session
}

// State returns a snapshot of the coarse session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ClearError discards the last recorded error.
func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.LastError = ""
}

func (c *Controller) setError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.LastError = message
}

func (c *Controller) run() {
	connEvents := c.connSub.Events()
	authEvents := c.authSub.Events()

	for connEvents != nil || authEvents != nil {
		select {
		case ev, ok := <-connEvents:
			if !ok {
				connEvents = nil
				continue
			}
			if data, ok := ev.Data.(*protocol.ConnectionData); ok {
				c.handleConnection(data)
			}
		case ev, ok := <-authEvents:
			if !ok {
				authEvents = nil
				continue
			}
			if data, ok := ev.Data.(*protocol.AuthFailedData); ok {
				c.handleAuthFailed(data)
			}
		}
	}
}

func (c *Controller) handleConnection(data *protocol.ConnectionData) {
	switch data.Status {
	case StatusConnecting.String():
		c.mu.Lock()
		c.state.Connecting = true
		c.mu.Unlock()

	case StatusConnected.String():
		c.mu.Lock()
		c.state.Connecting = false
		c.state.Connected = true
		c.state.Authenticated = false
		c.mu.Unlock()

	case StatusAuthenticated.String():
		c.mu.Lock()
		c.state.Connecting = false
		c.state.Connected = true
		c.state.Authenticated = true
		pending := c.pendingJoin
		c.pendingJoin = nil
		c.mu.Unlock()

		if pending != nil {
			c.logger.Info("replaying table join", "tableId", pending.TableID)
			err := c.session.Send(protocol.TypeJoinTable, protocol.JoinTableData{
				TableID:    pending.TableID,
				SeatNumber: pending.Seat,
				BuyIn:      pending.BuyIn,
			})
			if err != nil {
				// The replay is at-most-once; a failed send must not
				// vanish silently.
				c.logger.Error("failed to replay table join", "tableId", pending.TableID, "error", err)
				c.setError(fmt.Sprintf("could not rejoin table %s: %v", pending.TableID, err))
			}
		}

	case StatusDisconnected.String():
		// CurrentTableID is preserved so the UI can show which table the
		// player would return to. No PendingJoin is created here; only the
		// refresh flow resumes membership.
		c.mu.Lock()
		c.state.Connecting = false
		c.state.Connected = false
		c.state.Authenticated = false
		c.mu.Unlock()
	}
}

// handleAuthFailed applies the recovery protocol. Anything other than an
// expired token is terminal: surface it and stop. An expired token starts
// one refresh exchange, re-authenticates, and lets the authenticated
// transition replay table membership.
func (c *Controller) handleAuthFailed(data *protocol.AuthFailedData) {
	if !data.TokenExpired {
		c.logger.Error("authentication rejected", "message", data.Message)
		c.setError(data.Message)
		return
	}

	c.mu.Lock()
	if c.state.Refreshing {
		// A recovery is already in flight; it covers this occurrence too.
		c.mu.Unlock()
		return
	}
	c.state.Refreshing = true
	if c.state.CurrentTableID != "" {
		// Seat is unknown at this point; the server still holds our seat
		// across the refresh, so rejoin without one.
		c.pendingJoin = &PendingJoin{TableID: c.state.CurrentTableID}
	}
	c.mu.Unlock()

	// Refresh off the event loop so channel delivery keeps flowing.
	go c.recoverExpiredToken()
}

func (c *Controller) recoverExpiredToken() {
	defer func() {
		// The flag must never stick, whatever the refresh did.
		c.mu.Lock()
		c.state.Refreshing = false
		c.mu.Unlock()
	}()

	c.logger.Info("access token expired, refreshing")

	// Collapse concurrent expiry events into a single exchange: the
	// refresh token is one-shot, so two racing refreshes would strand
	// the session.
	token, err, _ := c.refresh.Do("refresh", func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		return c.store.Refresh(ctx)
	})
	if err != nil {
		// Only a definitive rejection of the refresh token ends the
		// session. An unreachable auth service keeps the credentials
		// and the socket; the user can retry once it is back.
		if errors.Is(err, creds.ErrInvalidRefresh) || errors.Is(err, creds.ErrNoCredentials) {
			c.logger.Error("refresh token rejected", "error", err)
			c.mu.Lock()
			c.state.LastError = "session expired, please log in again"
			c.pendingJoin = nil
			c.mu.Unlock()
			_ = c.store.Clear()
			c.session.Disconnect()
			return
		}

		c.logger.Error("credential refresh failed", "error", err)
		c.setError(fmt.Sprintf("could not refresh session: %v", err))
		return
	}

	// The socket may have dropped while we were refreshing.
	if c.session.Status() < StatusConnected {
		if !c.session.Connect() {
			return
		}
	}
	c.session.Authenticate(token.(string))
}

// ConnectAndAuthenticate composes Connect with the handshake's second
// phase. If no access token is stored it reports a local error without
// touching the socket further.
func (c *Controller) ConnectAndAuthenticate() bool {
	if !c.session.Connect() {
		return false
	}

	token := c.store.AccessToken()
	if token == "" {
		c.logger.Warn("no stored credentials")
		c.setError("not logged in")
		return false
	}

	// Best effort: a token about to expire is refreshed up front. Failure
	// here is not terminal, the stale token still goes out and the normal
	// recovery path handles the rejection.
	if creds.ExpiresSoon(token, expiryHeadroom) {
		c.logger.Info("access token near expiry, refreshing before handshake")
		fresh, err, _ := c.refresh.Do("refresh", func() (interface{}, error) {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			return c.store.Refresh(ctx)
		})
		if err == nil {
			token = fresh.(string)
		} else {
			c.logger.Warn("pre-handshake refresh failed", "error", err)
		}
	}

	c.session.Authenticate(token)
	return true
}

// JoinTable requests a seat at a table. If the session is not yet
// authenticated the join is deferred and issued on the authenticated
// transition; a later join request replaces a deferred one.
func (c *Controller) JoinTable(tableID string, seat *int, buyIn int) error {
	c.mu.Lock()
	c.state.CurrentTableID = tableID
	authenticated := c.state.Authenticated
	if !authenticated {
		c.pendingJoin = &PendingJoin{TableID: tableID, Seat: seat, BuyIn: buyIn}
	} else {
		c.pendingJoin = nil
	}
	c.mu.Unlock()

	if !authenticated {
		return nil
	}
	return c.session.Send(protocol.TypeJoinTable, protocol.JoinTableData{
		TableID:    tableID,
		SeatNumber: seat,
		BuyIn:      buyIn,
	})
}

// LeaveTable leaves the current table and forgets it.
func (c *Controller) LeaveTable() error {
	c.mu.Lock()
	tableID := c.state.CurrentTableID
	c.state.CurrentTableID = ""
	c.pendingJoin = nil
	c.mu.Unlock()

	if tableID == "" {
		return fmt.Errorf("not at a table")
	}
	return c.session.Send(protocol.TypeLeaveTable, protocol.LeaveTableData{TableID: tableID})
}

// StandUp gives up the seat but stays at the table as an observer.
func (c *Controller) StandUp() error {
	tableID := c.currentTable()
	if tableID == "" {
		return fmt.Errorf("not at a table")
	}
	return c.session.Send(protocol.TypeStandUp, protocol.StandUpData{TableID: tableID})
}

// SendAction forwards a betting action. Amount legality is the server's
// call; rejections come back on the error channel.
func (c *Controller) SendAction(action protocol.ActionKind, amount *int) error {
	tableID := c.currentTable()
	if tableID == "" {
		return fmt.Errorf("not at a table")
	}
	return c.session.Send(protocol.TypePlayerAction, protocol.PlayerActionData{
		TableID: tableID,
		Action:  action,
		Amount:  amount,
	})
}

// SendChat sends a chat line to the current table.
func (c *Controller) SendChat(message string) error {
	tableID := c.currentTable()
	if tableID == "" {
		return fmt.Errorf("not at a table")
	}
	return c.session.Send(protocol.TypeChat, protocol.ChatData{TableID: tableID, Message: message})
}

// FetchTables asks the server for the current table list.
func (c *Controller) FetchTables() error {
	return c.session.Send(protocol.TypeFetchTables, nil)
}

// Admin operations. The server decides whether the player may perform them.

func (c *Controller) StartGame(tableID string) error {
	return c.session.Send(protocol.TypeStartGame, protocol.StartGameData{TableID: tableID})
}

func (c *Controller) CreateTable(name string, smallBlind, bigBlind, maxPlayers int) error {
	return c.session.Send(protocol.TypeCreateTable, protocol.CreateTableData{
		Name:       name,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		MaxPlayers: maxPlayers,
	})
}

func (c *Controller) DeleteTable(tableID string) error {
	return c.session.Send(protocol.TypeDeleteTable, protocol.DeleteTableData{TableID: tableID})
}

func (c *Controller) GiveChips(tableID, playerID string, amount int) error {
	return c.session.Send(protocol.TypeGiveChips, protocol.ChipAdjustmentData{
		TableID: tableID, PlayerID: playerID, Amount: amount,
	})
}

func (c *Controller) TakeChips(tableID, playerID string, amount int) error {
	return c.session.Send(protocol.TypeTakeChips, protocol.ChipAdjustmentData{
		TableID: tableID, PlayerID: playerID, Amount: amount,
	})
}

func (c *Controller) GetLedger(tableID string) error {
	return c.session.Send(protocol.TypeGetLedger, protocol.GetLedgerData{TableID: tableID})
}

func (c *Controller) GetStandings() error {
	return c.session.Send(protocol.TypeGetStandings, nil)
}

func (c *Controller) currentTable() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.CurrentTableID
}

// WaitForStatus blocks until the transport reaches the given status or the
// timeout elapses. Intended for CLI flows and tests.
func (c *Controller) WaitForStatus(status Status, timeout time.Duration) error {
	sub := c.session.Subscribe(protocol.TypeConnection)
	defer sub.Close()

	if c.session.Status() == status {
		return nil
	}

	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return fmt.Errorf("subscription closed")
			}
			if data, ok := ev.Data.(*protocol.ConnectionData); ok && data.Status == status.String() {
				return nil
			}
		case <-deadline:
			return fmt.Errorf("timeout waiting for status %s", status)
		}
	}
}

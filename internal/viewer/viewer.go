// Package viewer is a terminal front end over the session controller: a
// scrolling event log, a status bar, and a command line. It is a plain
// consumer of the session's channels; all connection and recovery logic
// lives below it.
package viewer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sibe7691/tablelink/internal/protocol"
	"github.com/sibe7691/tablelink/internal/session"
)

// eventMsg wraps a session event for the bubbletea update loop.
type eventMsg session.Event

// Model is the bubbletea model for the event viewer.
type Model struct {
	controller *session.Controller

	logViewport viewport.Model
	input       textinput.Model
	spin        spinner.Model

	lines        []string
	defaultBuyIn int
	width        int
	height       int
	ready        bool
	quitting     bool
}

// NewModel creates the viewer model.
func NewModel(controller *session.Controller, defaultBuyIn int) *Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 200
	ti.Prompt = "> "
	ti.Placeholder = "tables | join <id> [seat] | chat <msg> | fold/check/call | bet <n> | quit"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		controller:   controller,
		input:        ti,
		spin:         sp,
		defaultBuyIn: defaultBuyIn,
	}
}

// Init initializes the viewer model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// Update handles messages in the viewer.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := m.height - 5
		if logHeight < 3 {
			logHeight = 3
		}
		if !m.ready {
			m.logViewport = viewport.New(m.width-4, logHeight)
			m.ready = true
		} else {
			m.logViewport.Width = m.width - 4
			m.logViewport.Height = logHeight
		}
		m.refreshLog()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line != "" {
				if quit := m.runCommand(line); quit {
					m.quitting = true
					return m, tea.Sequence(tea.ClearScreen, tea.Quit)
				}
			}
		case "pgup":
			m.logViewport.HalfPageUp()
		case "pgdown":
			m.logViewport.HalfPageDown()
		}

	case eventMsg:
		m.appendEvent(session.Event(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the viewer.
func (m *Model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderStatusBar(),
		PaneStyle.Width(m.width-2).Render(m.logViewport.View()),
		m.input.View(),
	)
}

func (m *Model) renderStatusBar() string {
	state := m.controller.State()

	var status string
	switch {
	case state.Refreshing:
		status = m.spin.View() + "refreshing session"
	case state.Authenticated:
		status = "authenticated"
	case state.Connected:
		status = "connected"
	case state.Connecting:
		status = "connecting"
	default:
		status = "disconnected"
	}

	if state.CurrentTableID != "" {
		status += " · table " + state.CurrentTableID
	}
	if state.LastError != "" {
		status += "  " + ErrorStyle.Render(state.LastError)
	}

	return StatusBarStyle.Width(m.width).Render(status)
}

func (m *Model) appendEvent(ev session.Event) {
	line := formatEvent(ev)
	if line == "" {
		return
	}
	m.lines = append(m.lines, line)
	if len(m.lines) > 500 {
		m.lines = m.lines[len(m.lines)-500:]
	}
	m.refreshLog()
}

func (m *Model) refreshLog() {
	if !m.ready {
		return
	}
	m.logViewport.SetContent(strings.Join(m.lines, "\n"))
	m.logViewport.GotoBottom()
}

// runCommand parses and executes one input line. Returns true to quit.
func (m *Model) runCommand(line string) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		return true

	case "tables":
		err = m.controller.FetchTables()

	case "join":
		if len(args) < 1 {
			err = fmt.Errorf("usage: join <tableId> [seat]")
			break
		}
		var seat *int
		if len(args) > 1 {
			if n, convErr := strconv.Atoi(args[1]); convErr == nil {
				seat = &n
			}
		}
		err = m.controller.JoinTable(args[0], seat, m.defaultBuyIn)

	case "leave":
		err = m.controller.LeaveTable()

	case "stand":
		err = m.controller.StandUp()

	case "fold", "check", "call", "allin":
		kind := protocol.ActionKind(cmd)
		if cmd == "allin" {
			kind = protocol.ActionAllIn
		}
		err = m.controller.SendAction(kind, nil)

	case "bet", "raise":
		if len(args) < 1 {
			err = fmt.Errorf("usage: %s <amount>", cmd)
			break
		}
		n, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			err = fmt.Errorf("bad amount %q", args[0])
			break
		}
		err = m.controller.SendAction(protocol.ActionKind(cmd), &n)

	case "chat":
		err = m.controller.SendChat(strings.Join(args, " "))

	case "start":
		if len(args) < 1 {
			err = fmt.Errorf("usage: start <tableId>")
			break
		}
		err = m.controller.StartGame(args[0])

	case "ledger":
		tableID := m.controller.State().CurrentTableID
		if len(args) > 0 {
			tableID = args[0]
		}
		err = m.controller.GetLedger(tableID)

	case "standings":
		err = m.controller.GetStandings()

	case "clearerror":
		m.controller.ClearError()

	default:
		// Anything unrecognized is table chat.
		err = m.controller.SendChat(line)
	}

	if err != nil {
		m.lines = append(m.lines, ErrorStyle.Render(err.Error()))
		m.refreshLog()
	}
	return false
}

// Run starts the viewer, forwarding session events into the program until
// it exits. Subscriptions are released on return.
func Run(controller *session.Controller, defaultBuyIn int) error {
	m := NewModel(controller, defaultBuyIn)
	p := tea.NewProgram(m, tea.WithAltScreen())

	channels := []protocol.MessageType{
		protocol.TypeConnection,
		protocol.TypeGameState,
		protocol.TypeHandResult,
		protocol.TypeChatMessage,
		protocol.TypeTableList,
		protocol.TypeError,
		protocol.TypePlayerJoined,
		protocol.TypePlayerLeft,
		protocol.TypeActionTaken,
		protocol.TypeChipsUpdated,
		protocol.TypeHandStarted,
		protocol.TypeStateChanged,
		protocol.TypeLedger,
		protocol.TypeStandings,
		protocol.TypeAuthFailed,
	}

	subs := make([]*session.Subscription, 0, len(channels))
	for _, ch := range channels {
		sub := controller.Session().Subscribe(ch)
		subs = append(subs, sub)
		go func(sub *session.Subscription) {
			for ev := range sub.Events() {
				p.Send(eventMsg(ev))
			}
		}(sub)
	}
	defer func() {
		for _, sub := range subs {
			sub.Close()
		}
	}()

	_, err := p.Run()
	return err
}

package viewer

import (
	"fmt"
	"strings"

	"github.com/sibe7691/tablelink/internal/protocol"
	"github.com/sibe7691/tablelink/internal/session"
)

// formatEvent renders one session event as a log line. Returns "" for
// events with nothing worth printing.
func formatEvent(ev session.Event) string {
	switch data := ev.Data.(type) {
	case *protocol.ConnectionData:
		if data.Message != "" {
			return InfoStyle.Render(fmt.Sprintf("[%s] %s", data.Status, data.Message))
		}
		return InfoStyle.Render("[" + data.Status + "]")

	case *protocol.ErrorData:
		if data.Code != "" {
			return ErrorStyle.Render(fmt.Sprintf("error (%s): %s", data.Code, data.Message))
		}
		return ErrorStyle.Render("error: " + data.Message)

	case *protocol.AuthFailedData:
		if data.TokenExpired {
			// The controller is already refreshing; no need to alarm anyone.
			return InfoStyle.Render("session expired, refreshing")
		}
		return ErrorStyle.Render("auth failed: " + data.Message)

	case *protocol.ChatMessageData:
		return ChatStyle.Render(fmt.Sprintf("%s: %s", data.PlayerName, data.Message))

	case *protocol.TableListData:
		var b strings.Builder
		b.WriteString(fmt.Sprintf("%d table(s):", len(data.Tables)))
		for _, t := range data.Tables {
			b.WriteString(fmt.Sprintf("\n  %s  %s  %d/%d  %d/%d  %s",
				t.ID, t.Name, t.PlayerCount, t.MaxPlayers, t.SmallBlind, t.BigBlind, t.Status))
		}
		return EventLogStyle.Render(b.String())

	case *protocol.PlayerJoinedData:
		return EventLogStyle.Render(fmt.Sprintf("%s joined seat %d with %d chips", data.Name, data.SeatNumber, data.Chips))

	case *protocol.PlayerLeftData:
		return EventLogStyle.Render(data.Name + " left the table")

	case *protocol.ActionTakenData:
		if data.Amount > 0 {
			return ActionStyle.Render(fmt.Sprintf("%s %ss %d (pot %d)", data.Name, data.Action, data.Amount, data.Pot))
		}
		return ActionStyle.Render(fmt.Sprintf("%s %ss", data.Name, data.Action))

	case *protocol.ChipsUpdatedData:
		return EventLogStyle.Render(fmt.Sprintf("chips updated: player %s now %d", data.PlayerID, data.Chips))

	case *protocol.HandStartedData:
		line := fmt.Sprintf("hand %s started, blinds %d/%d", data.HandID, data.SmallBlind, data.BigBlind)
		if len(data.HoleCards) > 0 {
			line += "  cards: " + strings.Join(data.HoleCards, " ")
		}
		return ActionStyle.Render(line)

	case *protocol.HandResultData:
		var b strings.Builder
		b.WriteString("hand " + data.HandID + " over")
		if len(data.Board) > 0 {
			b.WriteString("  board: " + strings.Join(data.Board, " "))
		}
		for _, w := range data.Winners {
			b.WriteString(fmt.Sprintf("\n  %s wins %d", w.Name, w.Amount))
			if w.HandRank != "" {
				b.WriteString(" (" + w.HandRank + ")")
			}
		}
		return ActionStyle.Render(b.String())

	case *protocol.GameStateData:
		return EventLogStyle.Render(fmt.Sprintf("table %s  street %s  pot %d  board %s",
			data.TableID, data.Street, data.Pot, strings.Join(data.Board, " ")))

	case *protocol.StateChangedData:
		return InfoStyle.Render(fmt.Sprintf("table %s is now %s", data.TableID, data.State))

	case *protocol.LedgerData:
		var b strings.Builder
		b.WriteString("ledger for " + data.TableID + ":")
		for _, e := range data.Entries {
			b.WriteString(fmt.Sprintf("\n  %-16s buy-in %6d  cash-out %6d  net %+d", e.Name, e.BuyIn, e.CashOut, e.Net))
		}
		return EventLogStyle.Render(b.String())

	case *protocol.StandingsData:
		var b strings.Builder
		b.WriteString("standings:")
		for _, e := range data.Standings {
			b.WriteString(fmt.Sprintf("\n  %2d. %-16s %d", e.Rank, e.Name, e.Chips))
		}
		return EventLogStyle.Render(b.String())
	}

	return ""
}

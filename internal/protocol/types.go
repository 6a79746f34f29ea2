package protocol

// MessageType identifies a frame's tag on the wire.
type MessageType string

// Client → server tags
const (
	TypeAuthenticate MessageType = "authenticate"
	TypeJoinTable    MessageType = "join_table"
	TypeLeaveTable   MessageType = "leave_table"
	TypeStandUp      MessageType = "stand_up"
	TypePlayerAction MessageType = "player_action"
	TypeChat         MessageType = "chat"
	TypeFetchTables  MessageType = "fetch_tables"
	TypeStartGame    MessageType = "start_game"
	TypeCreateTable  MessageType = "create_table"
	TypeDeleteTable  MessageType = "delete_table"
	TypeGiveChips    MessageType = "give_chips"
	TypeTakeChips    MessageType = "take_chips"
	TypeGetLedger    MessageType = "get_ledger"
	TypeGetStandings MessageType = "get_standings"
)

// Server → client tags. Each maps 1:1 to a subscription channel.
const (
	TypeGameState    MessageType = "game_state"
	TypeHandResult   MessageType = "hand_result"
	TypeChatMessage  MessageType = "chat_message"
	TypeTableList    MessageType = "table_list"
	TypeError        MessageType = "error"
	TypePlayerJoined MessageType = "player_joined"
	TypePlayerLeft   MessageType = "player_left"
	TypeActionTaken  MessageType = "action_taken"
	TypeChipsUpdated MessageType = "chips_updated"
	TypeHandStarted  MessageType = "hand_started"
	TypeStateChanged MessageType = "state_changed"
	TypeLedger       MessageType = "ledger"
	TypeStandings    MessageType = "standings"
	TypeAuthFailed   MessageType = "auth_failed"
)

// TypeConnection carries connection status. The server sends it to confirm
// the authentication handshake; the session also synthesizes frames under
// this tag locally so every status change rides the same subscription
// mechanism as server messages.
const TypeConnection MessageType = "connection"

// String returns the string representation of the message type.
func (mt MessageType) String() string {
	return string(mt)
}

// ActionKind is a player betting action.
type ActionKind string

const (
	ActionFold  ActionKind = "fold"
	ActionCheck ActionKind = "check"
	ActionCall  ActionKind = "call"
	ActionBet   ActionKind = "bet"
	ActionRaise ActionKind = "raise"
	ActionAllIn ActionKind = "all_in"
)

package protocol

// Client → server payloads

type AuthenticateData struct {
	Token string `json:"token"`
}

type JoinTableData struct {
	TableID    string `json:"tableId"`
	SeatNumber *int   `json:"seatNumber,omitempty"`
	BuyIn      int    `json:"buyIn,omitempty"`
}

type LeaveTableData struct {
	TableID string `json:"tableId"`
}

type StandUpData struct {
	TableID string `json:"tableId"`
}

type PlayerActionData struct {
	TableID string     `json:"tableId"`
	Action  ActionKind `json:"action"`
	Amount  *int       `json:"amount,omitempty"` // required for bet/raise, ignored otherwise
}

type ChatData struct {
	TableID string `json:"tableId"`
	Message string `json:"message"`
}

type StartGameData struct {
	TableID string `json:"tableId"`
}

type CreateTableData struct {
	Name       string `json:"name"`
	SmallBlind int    `json:"smallBlind"`
	BigBlind   int    `json:"bigBlind"`
	MaxPlayers int    `json:"maxPlayers,omitempty"`
}

type DeleteTableData struct {
	TableID string `json:"tableId"`
}

type ChipAdjustmentData struct {
	TableID  string `json:"tableId"`
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

type GetLedgerData struct {
	TableID string `json:"tableId"`
}

// Server → client payloads

// AuthFailedData distinguishes a recoverable credential expiry from any
// other rejection. TokenExpired=true is the only case the client retries.
type AuthFailedData struct {
	Message      string `json:"message"`
	TokenExpired bool   `json:"tokenExpired"`
}

// ConnectionData reports a connection status. The server sends one with
// status "authenticated" to confirm the handshake; the client synthesizes
// the rest locally for its own transitions.
type ConnectionData struct {
	Status   string `json:"status"`
	PlayerID string `json:"playerId,omitempty"`
	Message  string `json:"message,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type PlayerState struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	SeatNumber int      `json:"seatNumber"`
	Chips      int      `json:"chips"`
	Bet        int      `json:"bet,omitempty"`
	Folded     bool     `json:"folded,omitempty"`
	AllIn      bool     `json:"allIn,omitempty"`
	SittingOut bool     `json:"sittingOut,omitempty"`
	HoleCards  []string `json:"holeCards,omitempty"` // only present for the receiving player
}

type GameStateData struct {
	TableID    string        `json:"tableId"`
	HandID     string        `json:"handId,omitempty"`
	Street     string        `json:"street,omitempty"`
	Board      []string      `json:"board,omitempty"`
	Pot        int           `json:"pot"`
	CurrentBet int           `json:"currentBet,omitempty"`
	ActiveSeat int           `json:"activeSeat,omitempty"`
	DealerSeat int           `json:"dealerSeat,omitempty"`
	Players    []PlayerState `json:"players"`
}

type WinnerInfo struct {
	PlayerID  string   `json:"playerId"`
	Name      string   `json:"name"`
	Amount    int      `json:"amount"`
	HoleCards []string `json:"holeCards,omitempty"`
	HandRank  string   `json:"handRank,omitempty"`
}

type HandResultData struct {
	TableID string       `json:"tableId"`
	HandID  string       `json:"handId"`
	Board   []string     `json:"board,omitempty"`
	Winners []WinnerInfo `json:"winners"`
}

type ChatMessageData struct {
	TableID    string `json:"tableId"`
	PlayerID   string `json:"playerId,omitempty"`
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
}

type TableInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	SmallBlind  int    `json:"smallBlind"`
	BigBlind    int    `json:"bigBlind"`
	Status      string `json:"status"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

type PlayerJoinedData struct {
	TableID    string `json:"tableId"`
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	SeatNumber int    `json:"seatNumber"`
	Chips      int    `json:"chips"`
}

type PlayerLeftData struct {
	TableID  string `json:"tableId"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type ActionTakenData struct {
	TableID    string     `json:"tableId"`
	HandID     string     `json:"handId,omitempty"`
	PlayerID   string     `json:"playerId"`
	Name       string     `json:"name"`
	Action     ActionKind `json:"action"`
	Amount     int        `json:"amount,omitempty"`
	Pot        int        `json:"pot,omitempty"`
	ChipsAfter int        `json:"chipsAfter,omitempty"`
}

type ChipsUpdatedData struct {
	TableID  string `json:"tableId"`
	PlayerID string `json:"playerId"`
	Chips    int    `json:"chips"`
	Delta    int    `json:"delta,omitempty"`
}

type HandStartedData struct {
	TableID    string   `json:"tableId"`
	HandID     string   `json:"handId"`
	DealerSeat int      `json:"dealerSeat"`
	SmallBlind int      `json:"smallBlind"`
	BigBlind   int      `json:"bigBlind"`
	HoleCards  []string `json:"holeCards,omitempty"`
}

type StateChangedData struct {
	TableID string `json:"tableId"`
	State   string `json:"state"` // e.g. "waiting", "playing", "paused"
}

type LedgerEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	BuyIn    int    `json:"buyIn"`
	CashOut  int    `json:"cashOut"`
	Net      int    `json:"net"`
}

type LedgerData struct {
	TableID string        `json:"tableId"`
	Entries []LedgerEntry `json:"entries"`
}

type StandingEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Chips    int    `json:"chips"`
	Rank     int    `json:"rank"`
}

type StandingsData struct {
	Standings []StandingEntry `json:"standings"`
}

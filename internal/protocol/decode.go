package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType indicates a frame carried a tag this client does not know.
// Callers drop the frame rather than failing the connection.
var ErrUnknownType = errors.New("protocol: unknown message type")

// DecodeInbound parses a server frame's payload into its typed form.
// The returned value is a pointer to the payload struct for the tag
// (e.g. *GameStateData for TypeGameState).
func DecodeInbound(msg *Message) (interface{}, error) {
	var payload interface{}

	switch msg.Type {
	case TypeGameState:
		payload = &GameStateData{}
	case TypeHandResult:
		payload = &HandResultData{}
	case TypeChatMessage:
		payload = &ChatMessageData{}
	case TypeTableList:
		payload = &TableListData{}
	case TypeError:
		payload = &ErrorData{}
	case TypePlayerJoined:
		payload = &PlayerJoinedData{}
	case TypePlayerLeft:
		payload = &PlayerLeftData{}
	case TypeActionTaken:
		payload = &ActionTakenData{}
	case TypeChipsUpdated:
		payload = &ChipsUpdatedData{}
	case TypeHandStarted:
		payload = &HandStartedData{}
	case TypeStateChanged:
		payload = &StateChangedData{}
	case TypeLedger:
		payload = &LedgerData{}
	case TypeStandings:
		payload = &StandingsData{}
	case TypeAuthFailed:
		payload = &AuthFailedData{}
	case TypeConnection:
		payload = &ConnectionData{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}

	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, payload); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", msg.Type, err)
		}
	}

	return payload, nil
}

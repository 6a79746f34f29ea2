package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMessageSerialization(t *testing.T) {
	msg, err := NewMessage(TypeJoinTable, JoinTableData{TableID: "T1", BuyIn: 200})
	if err != nil {
		t.Fatalf("failed to create message: %v", err)
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("failed to marshal message: %v", err)
	}

	var decoded Message
	if err := json.Unmarshal(jsonData, &decoded); err != nil {
		t.Fatalf("failed to unmarshal message: %v", err)
	}

	if decoded.Type != TypeJoinTable {
		t.Errorf("expected message type %s, got %s", TypeJoinTable, decoded.Type)
	}

	var join JoinTableData
	if err := json.Unmarshal(decoded.Data, &join); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if join.TableID != "T1" || join.BuyIn != 200 {
		t.Errorf("payload round trip mangled: %+v", join)
	}
	if join.SeatNumber != nil {
		t.Errorf("expected seat to be absent, got %v", *join.SeatNumber)
	}
}

func TestNewMessageWithNilData(t *testing.T) {
	msg, err := NewMessage(TypeFetchTables, nil)
	if err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	if len(msg.Data) != 0 {
		t.Errorf("expected empty data, got %s", msg.Data)
	}
}

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name string
		typ  MessageType
		data string
		want func(t *testing.T, payload interface{})
	}{
		{
			name: "chat message",
			typ:  TypeChatMessage,
			data: `{"tableId":"T1","playerName":"alice","message":"gg"}`,
			want: func(t *testing.T, payload interface{}) {
				chat, ok := payload.(*ChatMessageData)
				if !ok {
					t.Fatalf("wrong payload type %T", payload)
				}
				if chat.PlayerName != "alice" || chat.Message != "gg" {
					t.Errorf("bad decode: %+v", chat)
				}
			},
		},
		{
			name: "auth failed with expiry",
			typ:  TypeAuthFailed,
			data: `{"message":"token expired","tokenExpired":true}`,
			want: func(t *testing.T, payload interface{}) {
				auth, ok := payload.(*AuthFailedData)
				if !ok {
					t.Fatalf("wrong payload type %T", payload)
				}
				if !auth.TokenExpired {
					t.Error("expected tokenExpired to be true")
				}
			},
		},
		{
			name: "table list",
			typ:  TypeTableList,
			data: `{"tables":[{"id":"T1","name":"Main","playerCount":3,"maxPlayers":9}]}`,
			want: func(t *testing.T, payload interface{}) {
				list, ok := payload.(*TableListData)
				if !ok {
					t.Fatalf("wrong payload type %T", payload)
				}
				if len(list.Tables) != 1 || list.Tables[0].ID != "T1" {
					t.Errorf("bad decode: %+v", list)
				}
			},
		},
		{
			name: "connection status",
			typ:  TypeConnection,
			data: `{"status":"authenticated","playerId":"p9"}`,
			want: func(t *testing.T, payload interface{}) {
				conn, ok := payload.(*ConnectionData)
				if !ok {
					t.Fatalf("wrong payload type %T", payload)
				}
				if conn.Status != "authenticated" || conn.PlayerID != "p9" {
					t.Errorf("bad decode: %+v", conn)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &Message{Type: tt.typ, Data: json.RawMessage(tt.data)}
			payload, err := DecodeInbound(msg)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			tt.want(t, payload)
		})
	}
}

func TestDecodeInboundUnknownTag(t *testing.T) {
	msg := &Message{Type: "launch_rockets", Data: json.RawMessage(`{}`)}
	_, err := DecodeInbound(msg)
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
}

func TestDecodeInboundMalformedPayload(t *testing.T) {
	msg := &Message{Type: TypeChatMessage, Data: json.RawMessage(`{"message":42}`)}
	if _, err := DecodeInbound(msg); err == nil {
		t.Error("expected an error for payload shape mismatch")
	}
}

func TestDecodeInboundEmptyPayload(t *testing.T) {
	msg := &Message{Type: TypeStandings}
	payload, err := DecodeInbound(msg)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, ok := payload.(*StandingsData); !ok {
		t.Errorf("wrong payload type %T", payload)
	}
}

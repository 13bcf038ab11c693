package schemas

import (
	"errors"
	"strings"
	"testing"

	"github.com/baksohyeon/bycle-console-game/entities"
)

func TestDecodeInboundVariants(t *testing.T) {
	message, err := DecodeInbound([]byte(`{"type":"join-room","payload":{"roomId":"ABC123","playerName":"  Alice ","playerColor":"red"}}`))
	if err != nil {
		t.Fatalf("decode join: %v", err)
	}

	join, ok := message.(*JoinRoom)
	if !ok {
		t.Fatalf("expected *JoinRoom, got %T", message)
	}
	if join.PlayerName != "Alice" || join.Room() != "ABC123" {
		t.Fatalf("unexpected join: %+v", join)
	}

	message, err = DecodeInbound([]byte(`{"type":"player-action","payload":{"roomId":"ABC123","action":"energy-burst"}}`))
	if err != nil {
		t.Fatalf("decode action: %v", err)
	}
	if action := message.(*PlayerAction); action.Action != entities.ActionBurst {
		t.Fatalf("action got=%q", action.Action)
	}
}

func TestDecodeInboundRejectsBadMessages(t *testing.T) {
	longName := strings.Repeat("x", 25)

	cases := []struct {
		name string
		data string
		want error
	}{
		{"not json", `nope`, InvalidMessage},
		{"unknown type", `{"type":"dance","payload":{}}`, UnknownMessage},
		{"missing payload", `{"type":"start-game"}`, InvalidMessage},
		{"missing room", `{"type":"start-game","payload":{}}`, MissingRoomId},
		{"blank name", `{"type":"join-room","payload":{"roomId":"R","playerName":"   "}}`, MissingName},
		{"long name", `{"type":"join-room","payload":{"roomId":"R","playerName":"` + longName + `"}}`, NameTooLong},
		{"bad action", `{"type":"player-action","payload":{"roomId":"R","action":"fly"}}`, InvalidAction},
		{"missing power-up", `{"type":"use-power-up","payload":{"roomId":"R"}}`, MissingPowerUp},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeInbound([]byte(tc.data))
			if !errors.Is(err, tc.want) {
				t.Fatalf("got=%v want=%v", err, tc.want)
			}
		})
	}
}

func TestReconnectAttemptNeedsNameOnlyWithoutToken(t *testing.T) {
	if _, err := DecodeInbound([]byte(`{"type":"reconnect-attempt","payload":{"roomId":"R","playerToken":"t"}}`)); err != nil {
		t.Fatalf("token alone must be enough: %v", err)
	}

	_, err := DecodeInbound([]byte(`{"type":"reconnect-attempt","payload":{"roomId":"R"}}`))
	if !errors.Is(err, MissingName) {
		t.Fatalf("got=%v want=%v", err, MissingName)
	}
}

package schemas

import (
	"encoding/json"
	"testing"
)

func TestPublisherEventWrapsContent(t *testing.T) {
	message, err := RaceFinishedEvent("ABC123", "Alice", "winner", 42)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var event PublisherEvent
	if err := json.Unmarshal([]byte(message), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Type != "RaceFinished" {
		t.Fatalf("type got=%q", event.Type)
	}

	var content map[string]any
	if err := json.Unmarshal([]byte(event.Content), &content); err != nil {
		t.Fatalf("decode content: %v", err)
	}
	if content["roomId"] != "ABC123" || content["winner"] != "Alice" || content["turns"] != float64(42) {
		t.Fatalf("unexpected content: %v", content)
	}
}

func TestEncodeEnvelope(t *testing.T) {
	body, err := Encode(ErrorEvent, ErrorPayload{Message: "room not found"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if string(body) != `{"type":"error","payload":{"message":"room not found"}}` {
		t.Fatalf("unexpected frame: %s", body)
	}
}

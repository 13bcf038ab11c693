package schemas

import (
	"encoding/json"
)

// PublisherEvent is the broker frame announcing room lifecycle changes to
// other services.
type PublisherEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func RoomCreatedEvent(roomId, raceType string, maxPlayers int) (string, error) {
	type RoomCreatedContent struct {
		RoomId     string `json:"roomId"`
		RaceType   string `json:"raceType"`
		MaxPlayers int    `json:"maxPlayers"`
	}

	content := RoomCreatedContent{
		RoomId:     roomId,
		RaceType:   raceType,
		MaxPlayers: maxPlayers,
	}

	return encode("RoomCreated", content)
}

func RaceStartedEvent(roomId string, racers int) (string, error) {
	type RaceStartedContent struct {
		RoomId string `json:"roomId"`
		Racers int    `json:"racers"`
	}

	content := RaceStartedContent{
		RoomId: roomId,
		Racers: racers,
	}

	return encode("RaceStarted", content)
}

func RaceFinishedEvent(roomId, winner, reason string, turns int) (string, error) {
	type RaceFinishedContent struct {
		RoomId string `json:"roomId"`
		Winner string `json:"winner,omitempty"`
		Reason string `json:"reason"`
		Turns  int    `json:"turns"`
	}

	content := RaceFinishedContent{
		RoomId: roomId,
		Winner: winner,
		Reason: reason,
		Turns:  turns,
	}

	return encode("RaceFinished", content)
}

func RoomRemovedEvent(roomId, state string) (string, error) {
	type RoomRemovedContent struct {
		RoomId string `json:"roomId"`
		State  string `json:"state"`
	}

	content := RoomRemovedContent{
		RoomId: roomId,
		State:  state,
	}

	return encode("RoomRemoved", content)
}

func encode(eventType string, content any) (string, error) {
	message, err := json.Marshal(content)
	if err != nil {
		return "", err
	}

	event := PublisherEvent{
		Type:    eventType,
		Content: string(message),
	}

	e, err := json.Marshal(event)
	if err != nil {
		return "", err
	}

	return string(e), nil
}

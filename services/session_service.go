package services

import (
	"time"

	"github.com/baksohyeon/bycle-console-game/entities"
	"github.com/baksohyeon/bycle-console-game/pkg/logx"
	"github.com/baksohyeon/bycle-console-game/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	ownerLeftReason         = "owner-left"
	ownerDisconnectedReason = "owner-disconnected"
	ownerReconnectedReason  = "owner-reconnected"
)

// SessionService maps connections to room members: join, reconnect,
// leave and disconnect.
type SessionService struct {
	*dependencies
	settings Settings
	race     *RaceService
}

func NewSessionService(settings Settings, race *RaceService) *SessionService {
	return &SessionService{
		dependencies: race.dependencies,
		settings:     settings,
		race:         race,
	}
}

// Join admits a connection as a player, or as a spectator when the race is
// running and full. A known token, or the name of a disconnected member,
// resumes that member instead.
func (sessionService *SessionService) Join(connectionId string, conn entities.Conn, message *schemas.JoinRoom) error {
	room := lockRoom(sessionService.hub, message.RoomId)

	if room == nil {
		return RoomNotFound
	}

	out := newOutbox(room.Id)
	err := sessionService.joinLocked(room, connectionId, conn, message, out)
	room.Unlock()

	sessionService.flush(out)

	return err
}

func (sessionService *SessionService) joinLocked(
	room *entities.Room,
	connectionId string,
	conn entities.Conn,
	message *schemas.JoinRoom,
	out *outbox,
) error {
	if participant, ok := room.Participant(connectionId); ok {
		out.to([]string{connectionId}, schemas.JoinedRoomEvent, joinedRoom(room, participant, false))
		return nil
	}

	if participant, ok := room.FindByToken(message.PlayerToken); ok {
		if participant.IsConnected {
			// the same identity opened a second connection; the newest wins
			participant.Kick()
		}
		if err := sessionService.resumeLocked(room, participant, connectionId, conn, out); err != nil {
			return err
		}
		out.to([]string{connectionId}, schemas.JoinedRoomEvent, joinedRoom(room, participant, true))
		return nil
	}

	if participant, ok := room.FindDisconnectedByName(message.PlayerName); ok {
		if err := sessionService.resumeLocked(room, participant, connectionId, conn, out); err != nil {
			return err
		}
		out.to([]string{connectionId}, schemas.JoinedRoomEvent, joinedRoom(room, participant, true))
		return nil
	}

	spectator := false
	if room.Seats() >= room.MaxPlayers {
		if room.State != entities.RoomActive {
			return RoomFull
		}
		if !sessionService.settings.AllowSpectators {
			return AlreadyStarted
		}
		spectator = true
	}

	now := sessionService.settings.now()

	participant := &entities.Participant{
		Id:          connectionId,
		Token:       bson.NewObjectID().Hex(),
		Name:        message.PlayerName,
		Color:       message.PlayerColor,
		IsConnected: true,
		JoinedAt:    now,
		LastSeen:    now,
		Conn:        conn,
	}

	if !spectator {
		participant.Bicycle = entities.NewBicycle(participant.Name, participant.Color, sessionService.settings.Bicycle, room.Rand)
		participant.Bicycle.SetWeather(room.Weather)
	}

	room.Add(participant)

	if room.OwnerId == "" && !spectator {
		room.OwnerId = participant.Id
	}

	room.LastActivity = now
	room.UpdateState()

	logx.Logger.Infow(
		"participant joined",
		"roomId", room.Id,
		"participantId", participant.Id,
		"name", participant.Name,
		"spectator", spectator,
	)

	out.to([]string{connectionId}, schemas.JoinedRoomEvent, joinedRoom(room, participant, false))
	out.broadcastExcept(room, connectionId, schemas.PlayerJoinedEvent, schemas.PlayerJoined{
		Id:          participant.Id,
		Name:        participant.Name,
		Color:       participant.Color,
		IsOwner:     room.OwnerId == participant.Id,
		IsSpectator: spectator,
	})

	return nil
}

// Reconnect resumes a disconnected member under a new connection. Only the
// reconnecting client receives the full state.
func (sessionService *SessionService) Reconnect(connectionId string, conn entities.Conn, message *schemas.ReconnectAttempt) error {
	room := lockRoom(sessionService.hub, message.RoomId)

	if room == nil {
		return RoomNotFound
	}

	out := newOutbox(room.Id)

	err := func() error {
		defer room.Unlock()

		// a seated connection just gets its own state back
		participant, ok := room.Participant(connectionId)

		if !ok {
			participant, ok = room.FindByToken(message.PlayerToken)
			if !ok {
				participant, ok = room.FindDisconnectedByName(message.PlayerName)
			}

			if !ok {
				return ParticipantNotFound
			}

			if participant.IsConnected {
				participant.Kick()
			}

			if err := sessionService.resumeLocked(room, participant, connectionId, conn, out); err != nil {
				return err
			}
		}

		state := snapshot(room)
		out.to([]string{connectionId}, schemas.ReconnectedEvent, schemas.Reconnected{
			PlayerId:    participant.Id,
			PlayerToken: participant.Token,
			RoomId:      room.Id,
			IsOwner:     room.OwnerId == participant.Id,
			IsSpectator: participant.IsSpectator(),
			State:       string(room.State),
			GameState:   &state,
		})

		return nil
	}()

	sessionService.flush(out)

	return err
}

// resumeLocked rebinds a member to a new connection and tells the others.
func (sessionService *SessionService) resumeLocked(
	room *entities.Room,
	participant *entities.Participant,
	connectionId string,
	conn entities.Conn,
	out *outbox,
) error {
	now := sessionService.settings.now()

	if !room.Rekey(participant, connectionId) {
		return AlreadySeated
	}
	participant.Conn = conn
	participant.IsConnected = true
	participant.DisconnectedAt = time.Time{}
	participant.ReconnectCount++
	participant.LastSeen = now
	room.LastActivity = now

	if room.OwnerId == "" {
		room.OwnerId = participant.Id
		out.broadcast(room, schemas.OwnershipTransferredEvent, schemas.OwnershipTransferred{
			NewOwnerId:   participant.Id,
			NewOwnerName: participant.Name,
			Reason:       ownerReconnectedReason,
		})
	}

	room.UpdateState()

	logx.Logger.Infow(
		"participant reconnected",
		"roomId", room.Id,
		"participantId", participant.Id,
		"reconnectCount", participant.ReconnectCount,
	)

	out.broadcastExcept(room, connectionId, schemas.PlayerReconnectedEvent, schemas.PlayerReconnected{
		Id:   participant.Id,
		Name: participant.Name,
	})

	return nil
}

// Leave removes the member for good. Leaving twice is a no-op.
func (sessionService *SessionService) Leave(roomId, connectionId string) error {
	room := lockRoom(sessionService.hub, roomId)

	if room == nil {
		return nil
	}

	out := newOutbox(room.Id)

	func() {
		defer room.Unlock()

		participant, ok := room.Remove(connectionId)
		if !ok {
			return
		}

		room.LastActivity = sessionService.settings.now()

		logx.Logger.Infow(
			"participant left",
			"roomId", room.Id,
			"participantId", participant.Id,
		)

		sessionService.departLocked(room, participant, schemas.PlayerLeftEvent, ownerLeftReason, out)
	}()

	sessionService.flush(out)

	return nil
}

// Disconnect keeps the member and its bicycle so it can reconnect.
// Unknown or already disconnected members are ignored.
func (sessionService *SessionService) Disconnect(roomId, connectionId string) {
	room := lockRoom(sessionService.hub, roomId)

	if room == nil {
		return
	}

	out := newOutbox(room.Id)

	func() {
		defer room.Unlock()

		participant, ok := room.Participant(connectionId)
		if !ok || !participant.IsConnected {
			return
		}

		now := sessionService.settings.now()

		participant.IsConnected = false
		participant.DisconnectedAt = now
		participant.LastSeen = now
		participant.Conn = nil
		room.LastActivity = now

		logx.Logger.Infow(
			"participant disconnected",
			"roomId", room.Id,
			"participantId", participant.Id,
		)

		sessionService.departLocked(room, participant, schemas.PlayerDisconnectedEvent, ownerDisconnectedReason, out)
	}()

	sessionService.flush(out)
}

// departLocked runs everything a lost member triggers: ownership transfer,
// the owner advisory, the forced finish and the state update.
func (sessionService *SessionService) departLocked(
	room *entities.Room,
	participant *entities.Participant,
	eventType string,
	reason string,
	out *outbox,
) {
	wasOwner := room.OwnerId == participant.Id
	newOwner := ""

	if wasOwner {
		room.OwnerId = ""
		if next, ok := nextOwner(room); ok {
			room.OwnerId = next.Id
			newOwner = next.Name
		}

		out.broadcast(room, schemas.OwnershipTransferredEvent, schemas.OwnershipTransferred{
			NewOwnerId:   room.OwnerId,
			NewOwnerName: newOwner,
			Reason:       reason,
		})
	}

	out.broadcast(room, eventType, schemas.PlayerDeparted{
		PlayerId:   participant.Id,
		PlayerName: participant.Name,
		WasOwner:   wasOwner,
		NewOwner:   newOwner,
	})

	if room.State == entities.RoomActive {
		humans := room.ConnectedHumans()

		if wasOwner {
			out.broadcast(room, schemas.OwnerLeftDuringGameEvent, schemas.OwnerLeftDuringGame{
				Message:     participant.Name + " left during the race",
				NewOwner:    newOwner,
				CanContinue: len(humans) > 0,
			})
		}

		if len(humans) == 0 || room.ConnectedPlayers() == 0 {
			sessionService.race.forceFinishLocked(room, sessionService.settings.now(), FinishReasonNoPlayers, out)
		}
	}

	room.UpdateState()
}

// nextOwner picks the earliest joined connected human, players before
// spectators.
func nextOwner(room *entities.Room) (*entities.Participant, bool) {
	var spectator *entities.Participant

	for _, participant := range room.ConnectedHumans() {
		if !participant.IsSpectator() {
			return participant, true
		}
		if spectator == nil {
			spectator = participant
		}
	}

	return spectator, spectator != nil
}

func joinedRoom(room *entities.Room, participant *entities.Participant, reconnected bool) schemas.JoinedRoom {
	joined := schemas.JoinedRoom{
		PlayerId:    participant.Id,
		PlayerToken: participant.Token,
		RoomId:      room.Id,
		IsOwner:     room.OwnerId == participant.Id,
		OwnerName:   ownerName(room),
		IsSpectator: participant.IsSpectator(),
		State:       string(room.State),
		Players:     participantSummaries(room),
		Reconnected: reconnected,
	}

	if room.State == entities.RoomActive || reconnected {
		state := snapshot(room)
		joined.GameState = &state
	}

	return joined
}

package handlers

import (
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/baksohyeon/bycle-console-game/pkg/logx"
	"github.com/baksohyeon/bycle-console-game/schemas"
	"github.com/baksohyeon/bycle-console-game/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Options tunes the transport. ActionRate is player actions per second
// per connection.
type Options struct {
	AllowedOrigins []string
	ActionRate     float64
	ActionBurst    int
}

type RoomHandler struct {
	roomService    *services.RoomService
	sessionService *services.SessionService
	raceService    *services.RaceService
	upgrader       websocket.Upgrader
	options        Options
}

func NewRoomHandler(
	router chi.Router,
	roomService *services.RoomService,
	sessionService *services.SessionService,
	raceService *services.RaceService,
	options Options,
) {
	roomHandler := RoomHandler{
		roomService:    roomService,
		sessionService: sessionService,
		raceService:    raceService,
		options:        options,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(options.AllowedOrigins),
		},
	}

	router.Post("/rooms", roomHandler.create)
	router.Get("/rooms", roomHandler.list)
	router.Get("/rooms/{id}", roomHandler.show)
	router.Get("/races", roomHandler.races)
	router.Get("/ws", roomHandler.connect)
}

func checkOrigin(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("origin")

		if origin == "" || slices.Contains(allowedOrigins, "*") {
			return true
		}

		return slices.Contains(allowedOrigins, origin)
	}
}

func (roomHandler RoomHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload schemas.CreateRoomRequest

	// the body is optional
	if r.ContentLength != 0 {
		err := decode(&payload, r)
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			logx.Logger.Infow(err.Error(), "desc", "could not decode payload")
			encode(schemas.ErrorResponse{Message: "Invalid payload."}, w)
			return
		}
	}

	response := roomHandler.roomService.Create(payload)

	w.WriteHeader(http.StatusCreated)

	encode(response, w)
}

func (roomHandler RoomHandler) list(w http.ResponseWriter, r *http.Request) {
	encode(roomHandler.roomService.List(), w)
}

func (roomHandler RoomHandler) show(w http.ResponseWriter, r *http.Request) {
	room, err := roomHandler.roomService.Find(chi.URLParam(r, "id"))

	if err != nil {
		if errors.Is(err, services.RoomNotFound) {
			w.WriteHeader(http.StatusNotFound)
			encode(schemas.ErrorResponse{Message: "Room not found."}, w)
			return
		}

		w.WriteHeader(http.StatusInternalServerError)
		encode(schemas.ErrorResponse{Message: "Something goes wrong!"}, w)
		return
	}

	encode(room, w)
}

func (roomHandler RoomHandler) races(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	results, err := roomHandler.roomService.RecentResults(r.Context(), limit)

	if err != nil {
		logx.Logger.Errorw(
			err.Error(),
			"desc", "could not load race results",
		)
		w.WriteHeader(http.StatusInternalServerError)
		encode(schemas.ErrorResponse{Message: "Something goes wrong!"}, w)
		return
	}

	encode(results, w)
}

func (roomHandler RoomHandler) connect(w http.ResponseWriter, r *http.Request) {
	connection, err := roomHandler.upgrader.Upgrade(w, r, nil)

	if err != nil {
		logx.Logger.Errorw(
			err.Error(),
			"desc", "could not upgrade http request",
		)
		return
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if roomHandler.options.ActionRate > 0 {
		limiter = rate.NewLimiter(
			rate.Limit(roomHandler.options.ActionRate),
			max(roomHandler.options.ActionBurst, 1),
		)
	}

	client := newClient(
		uuid.NewString(),
		connection,
		limiter,
		roomHandler.sessionService,
		roomHandler.raceService,
	)

	go client.Write()

	body, err := schemas.Encode(schemas.ConnectedEvent, schemas.Connected{ConnectionId: client.Id})
	if err == nil {
		_ = client.Send(body)
	}

	client.Read()
}

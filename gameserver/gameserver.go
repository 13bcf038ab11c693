package gameserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/baksohyeon/bycle-console-game/entities"
	"github.com/baksohyeon/bycle-console-game/handlers"
	"github.com/baksohyeon/bycle-console-game/pkg/logx"
	"github.com/baksohyeon/bycle-console-game/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// GameServer encapsulates all game server functionality
type GameServer struct {
	config  Config
	router  *chi.Mux
	hub     *entities.Hub
	closers []func(ctx context.Context) error

	Rooms    *services.RoomService
	Sessions *services.SessionService
	Races    *services.RaceService
	Reaper   *services.ReaperService
}

// NewGameServer creates a new game server with the provided configuration.
// Redis and MongoDB are optional; without them events and results are
// dropped.
func NewGameServer(config Config) (*GameServer, error) {
	if config.Context == nil {
		config.Context = context.Background()
	}

	gameServer := &GameServer{config: config}

	var publisher services.Publisher = services.NopPublisher{}

	if config.Publisher.Redis.Host != "" {
		publisherService := services.NewPublisherService(
			config.Publisher.Redis.Host,
			config.Publisher.Redis.Port,
			config.Publisher.Redis.Password,
			config.Publisher.Channel,
		)
		publisher = publisherService
		gameServer.closers = append(gameServer.closers, func(context.Context) error {
			return publisherService.Close()
		})
	}

	var results services.ResultRepository = services.NopResultRepository{}

	if config.Mongo.URI != "" {
		ctx, cancel := context.WithTimeout(config.Context, 10*time.Second)
		repository, err := services.NewMongoResultRepository(ctx, config.Mongo.URI, config.Mongo.Database)
		cancel()

		if err != nil {
			return nil, err
		}

		results = repository
		gameServer.closers = append(gameServer.closers, repository.Disconnect)
	}

	hub := entities.NewHub(config.Context, config.DispatchBufferSize)

	raceService := services.NewRaceService(hub, config.Race, publisher, results)
	sessionService := services.NewSessionService(config.Race, raceService)
	roomService := services.NewRoomService(config.Race, raceService)
	reaperService := services.NewReaperService(config.Race, raceService)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.Router.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.SetHeader("Content-Type", "application/json"))

	handlers.NewRoomHandler(router, roomService, sessionService, raceService, handlers.Options{
		AllowedOrigins: config.Router.AllowedOrigins,
		ActionRate:     config.Router.ActionRate,
		ActionBurst:    config.Router.ActionBurst,
	})

	gameServer.router = router
	gameServer.hub = hub
	gameServer.Rooms = roomService
	gameServer.Sessions = sessionService
	gameServer.Races = raceService
	gameServer.Reaper = reaperService

	go hub.Run()
	go reaperService.Run(config.Context)

	return gameServer, nil
}

// GetRouter returns the configured router
func (gs *GameServer) GetRouter() *chi.Mux {
	return gs.router
}

// GetHub returns the hub instance
func (gs *GameServer) GetHub() *entities.Hub {
	return gs.hub
}

// ListenAndServe serves until the config context is cancelled, then shuts
// the HTTP server down and releases the broker and database clients.
func (gs *GameServer) ListenAndServe() error {
	server := &http.Server{
		Addr:              gs.config.Address,
		Handler:           gs.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)

	go func() {
		logx.Logger.Infow("listening", "address", server.Addr)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		gs.close()
		return err
	case <-gs.config.Context.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := server.Shutdown(ctx)
	gs.close()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (gs *GameServer) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, closer := range gs.closers {
		if err := closer(ctx); err != nil {
			logx.Logger.Errorw(
				err.Error(),
				"desc", "could not release server resource",
			)
		}
	}
}

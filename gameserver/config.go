package gameserver

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/baksohyeon/bycle-console-game/services"

	"github.com/joho/godotenv"
)

// Config contains all configuration options for the game server
type Config struct {
	// Context for controlling server shutdown. When cancelled, the hub
	// kicks every connection and the reaper stops.
	Context context.Context

	// Controls how many messages can be queued for dispatch before blocking
	DispatchBufferSize int

	Address   string
	Publisher PublisherConfig
	Mongo     MongoConfig
	Router    RouterConfig
	Race      services.Settings
}

// PublisherConfig contains configuration for the publisher service
type PublisherConfig struct {
	Redis   RedisConfig
	Channel string
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// MongoConfig points at the race result archive.
type MongoConfig struct {
	URI      string
	Database string
}

// RouterConfig contains router configuration
type RouterConfig struct {
	AllowedOrigins []string
	ActionRate     float64
	ActionBurst    int
}

// LoadConfig reads the environment, after loading a .env file if there is
// one.
func LoadConfig(ctx context.Context) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("could not load .env: %w", err)
	}

	race := services.DefaultSettings()

	config := Config{
		Context:            ctx,
		DispatchBufferSize: 500,
		Address:            env("HTTP_ADDR", ":8080"),
		Publisher: PublisherConfig{
			Redis: RedisConfig{
				Host:     env("REDIS_HOST", ""),
				Port:     env("REDIS_PORT", "6379"),
				Password: env("REDIS_PASSWORD", ""),
			},
			Channel: env("REDIS_CHANNEL", "bicycle-race"),
		},
		Mongo: MongoConfig{
			URI:      env("MONGO_URI", ""),
			Database: env("MONGO_DATABASE", "bicycle_race"),
		},
		Router: RouterConfig{
			AllowedOrigins: strings.Split(env("ALLOWED_ORIGINS", "*"), ","),
			ActionBurst:    5,
		},
	}

	var err error

	if config.Router.ActionRate, err = envFloat("ACTION_RATE", 10); err != nil {
		return Config{}, err
	}

	if race.TickInterval, err = envDuration("TICK_INTERVAL", race.TickInterval); err != nil {
		return Config{}, err
	}

	if race.ReconnectTimeout, err = envDuration("RECONNECT_TIMEOUT", race.ReconnectTimeout); err != nil {
		return Config{}, err
	}

	if race.FinishedTimeout, err = envDuration("FINISHED_TIMEOUT", race.FinishedTimeout); err != nil {
		return Config{}, err
	}

	if race.RoomTimeout, err = envDuration("ROOM_TIMEOUT", race.RoomTimeout); err != nil {
		return Config{}, err
	}

	if race.ReaperInterval, err = envDuration("REAPER_INTERVAL", race.ReaperInterval); err != nil {
		return Config{}, err
	}

	if race.MaxPlayers, err = envInt("MAX_PLAYERS", race.MaxPlayers); err != nil {
		return Config{}, err
	}

	if race.AllowSpectators, err = envBool("ALLOW_SPECTATORS", race.AllowSpectators); err != nil {
		return Config{}, err
	}

	if race.TickInterval <= 0 || race.ReaperInterval <= 0 {
		return Config{}, fmt.Errorf("tick and reaper intervals must be positive")
	}

	if race.RoomTimeout <= 0 || race.ReconnectTimeout <= 0 || race.FinishedTimeout <= 0 {
		return Config{}, fmt.Errorf("room, reconnect and finished timeouts must be positive")
	}

	if race.MaxPlayers < 1 {
		return Config{}, fmt.Errorf("MAX_PLAYERS must be at least 1, got %d", race.MaxPlayers)
	}

	config.Race = race

	return config, nil
}

func env(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := env(key, "")
	if value == "" {
		return fallback, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return duration, nil
}

func envInt(key string, fallback int) (int, error) {
	value := env(key, "")
	if value == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	value := env(key, "")
	if value == "" {
		return fallback, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return f, nil
}

func envBool(key string, fallback bool) (bool, error) {
	value := env(key, "")
	if value == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}

	return b, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/baksohyeon/bycle-console-game/pkg/logx"

	"github.com/redis/go-redis/v9"
)

// Publisher announces room lifecycle events to other services.
type Publisher interface {
	Publish(message string) error
}

type PublisherService struct {
	broker  *redis.Client
	channel string
}

func NewPublisherService(host, port, password, channel string) PublisherService {
	broker := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})
	return PublisherService{broker: broker, channel: channel}
}

func (publisherService PublisherService) Publish(message string) error {
	if message == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := publisherService.broker.Publish(ctx, publisherService.channel, message).Err()

	if err != nil {
		logx.Logger.Errorw(
			err.Error(),
			"desc", "could not publish message",
			"message", message,
		)

		return err
	}

	return nil
}

func (publisherService PublisherService) Close() error {
	return publisherService.broker.Close()
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(string) error {
	return nil
}

package services

import (
	"context"
	"time"

	"github.com/baksohyeon/bycle-console-game/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// RaceResult is the archived outcome of one race.
type RaceResult struct {
	Id        bson.ObjectID         `bson:"_id" json:"id"`
	RoomId    string                `bson:"roomId" json:"roomId"`
	RaceType  string                `bson:"raceType" json:"raceType"`
	Distance  float64               `bson:"distance" json:"distance"`
	Winner    string                `bson:"winner,omitempty" json:"winner,omitempty"`
	Reason    string                `bson:"reason" json:"reason"`
	Turns     int                   `bson:"turns" json:"turns"`
	Standings []schemas.FinalResult `bson:"standings" json:"standings"`
	EndedAt   time.Time             `bson:"endedAt" json:"endedAt"`
}

type ResultRepository interface {
	Save(ctx context.Context, result RaceResult) error
	Recent(ctx context.Context, limit int64) ([]RaceResult, error)
}

type MongoResultRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoResultRepository(ctx context.Context, uri, database string) (*MongoResultRepository, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &MongoResultRepository{
		client:     client,
		collection: client.Database(database).Collection("races"),
	}, nil
}

func (repository *MongoResultRepository) Save(ctx context.Context, result RaceResult) error {
	_, err := repository.collection.InsertOne(ctx, result)
	return err
}

func (repository *MongoResultRepository) Recent(ctx context.Context, limit int64) ([]RaceResult, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "endedAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := repository.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	results := make([]RaceResult, 0)

	err = cursor.All(ctx, &results)
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (repository *MongoResultRepository) Disconnect(ctx context.Context) error {
	return repository.client.Disconnect(ctx)
}

// NopResultRepository is used when no database is configured.
type NopResultRepository struct{}

func (NopResultRepository) Save(context.Context, RaceResult) error {
	return nil
}

func (NopResultRepository) Recent(context.Context, int64) ([]RaceResult, error) {
	return []RaceResult{}, nil
}

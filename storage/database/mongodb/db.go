package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/revelohq/revelo/core"
)

// collection names
const (
	institutesCollection = "institutes"
	eventsCollection     = "events"
	subEventsCollection  = "subevents"
	flyersCollection     = "flyers"
	videosCollection     = "videos"
	usersCollection      = "users"
	paymentsCollection   = "payments"
)

// Open connects to the configured deployment and verifies it is
// reachable before anything else starts.
func Open(ctx context.Context, conf *core.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Database.URI))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client.Database(conf.Database.Name), nil
}

func Close(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	_, err := db.Collection(institutesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "instituteName", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "officeEmail", Value: 1}}, Options: unique},
	})
	if err != nil {
		return err
	}
	_, err = db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
	})
	if err != nil {
		return err
	}
	_, err = db.Collection(flyersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "imgUrl", Value: 1}}, Options: unique,
	})
	return err
}

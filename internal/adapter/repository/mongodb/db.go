package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

// NewClient connects and pings the primary. The caller owns Disconnect.
func NewClient(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	connectCtx, cancelConnect := context.WithTimeout(ctx, connectTimeout)
	defer cancelConnect()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := Ping(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func Ping(ctx context.Context, client *mongo.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique email index and the owner index used by
// the my-properties query.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bsonKey("email"),
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create users.email index: %w", err)
	}
	_, err = db.Collection(propertiesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bsonKey("user_id"),
		Options: options.Index().SetName("user_id"),
	})
	if err != nil {
		return fmt.Errorf("failed to create properties.user_id index: %w", err)
	}
	return nil
}

package persistence

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoOptions describes how to reach the booking database
type MongoOptions struct {
	URI            string
	Database       string
	Username       string
	Password       string
	ConnectTimeout time.Duration
}

// NewMongoDatabase connects, verifies the primary is reachable and returns
// the client together with the named database
func NewMongoDatabase(ctx context.Context, opts MongoOptions) (*mongo.Client, *mongo.Database, error) {
	clientOptions := options.Client().
		ApplyURI(opts.URI).
		SetAppName("flightdesk")

	if opts.Username != "" && opts.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: opts.Username,
			Password: opts.Password,
		})
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, client.Database(opts.Database), nil
}

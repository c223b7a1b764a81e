package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/noah-isme/scan-registration/pkg/config"
)

// NewMongo connects to MongoDB and verifies the deployment is reachable.
// Server selection fails after the store timeout so an unreachable cluster
// surfaces quickly instead of hanging requests.
func NewMongo(ctx context.Context, cfg config.MongoConfig, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(2 * timeout).
		SetSocketTimeout(2 * timeout).
		SetAppName("scan-registration")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, nil
}

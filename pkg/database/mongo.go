// Package database opens the snapshot store.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/logging"
	"github.com/datalens/datalens-engine/pkg/retry"
)

// DB wraps a MongoDB client bound to one database.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Config holds snapshot store connection configuration.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxRetries     int
}

// NewConnection connects and pings MongoDB, retrying transient failures.
func NewConnection(ctx context.Context, cfg *Config, logger *zap.Logger) (*DB, error) {
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	retryCfg := retry.WithMaxRetries(cfg.MaxRetries)
	attempt := 0
	client, err := retry.DoWithResult(ctx, retryCfg, func() (*mongo.Client, error) {
		attempt++
		client, err := mongo.Connect(ctx, clientOpts)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			logger.Warn("MongoDB not reachable yet",
				zap.Int("attempt", attempt),
				zap.String("uri", logging.SanitizeConnectionString(cfg.URI)),
				zap.String("error", logging.SanitizeError(err)))
			return nil, err
		}
		return client, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	return &DB{Client: client, Database: client.Database(cfg.Database)}, nil
}

// Close disconnects the client.
func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}

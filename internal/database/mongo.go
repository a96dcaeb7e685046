// Package database provides the MongoDB bootstrap and the collection
// registry used by administrative reset paths.
package database

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/troindx/oxidize/internal/config"
)

// Connect establishes a MongoDB client for the configured instance and
// verifies the connection with a ping.
func Connect(ctx context.Context, logger *zerolog.Logger, cfg *config.MongoConfig) (*mongo.Client, *mongo.Database) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI()))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create MongoDB client")
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}

	return client, client.Database(cfg.DatabaseName)
}

// Disconnect closes the client, logging instead of failing since it runs
// on shutdown paths.
func Disconnect(ctx context.Context, logger *zerolog.Logger, client *mongo.Client) {
	if err := client.Disconnect(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
	}
}

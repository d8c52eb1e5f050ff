// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/villagehub/internal/app/system/indexes"
	"github.com/dalemusser/villagehub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB connection used by every store.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect to MongoDB: %w", err)
	}

	// A failed ping is logged but not fatal: Mongo may still be coming up
	// alongside the app, and the driver reconnects on first use.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Warn("MongoDB ping failed; continuing, driver will retry",
			zap.String("uri", appCfg.MongoURI), zap.Error(err))
	} else {
		logger.Info("connected to MongoDB",
			zap.String("database", appCfg.MongoDatabase))
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the unique indexes and collection validators every
// store relies on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		// Validators need collMod rights; without them the app still works,
		// the stores enforce the same shapes.
		logger.Warn("collection validators not applied", zap.Error(err))
	}
	return nil
}

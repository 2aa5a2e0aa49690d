package main

import (
	"context"

	migrations "countries/internal/migrations/mongo"
	"countries/pkg/config"
)

const ServiceName = "ensure-indexes"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout+cfg.MongoOpTimeout*4)
	defer cancel()

	if err := migrations.NewIndexManager(cfg).Run(ctx); err != nil {
		cancel()
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Index maintenance failed", "error", err)
	}

	cfg.Log.Info("Indexes are in place",
		"database", cfg.MongoDatabaseName,
		"collection", cfg.MongoCollectionName,
	)
}

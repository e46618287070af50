package repository

import (
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned when a unique index rejects a write
var ErrDuplicate = errors.New("duplicate key")

func createIndex(ctx context.Context, coll *mongo.Collection, keys bson.D, unique bool) {
	opts := options.Index().SetUnique(unique)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts})
	if err != nil {
		slog.Warn("failed to create index", "collection", coll.Name(), "error", err)
	}
}

func translate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

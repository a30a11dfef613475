package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionAccounts = "accounts"
	collectionRoles    = "roles"
	collectionClients  = "clients"
	collectionCounters = "counters"
)

// EnsureIndexes creates the unique indexes the repositories rely on for
// username and role name uniqueness. It is safe to run on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := withTimeout(ctx, 0)
	defer cancel()

	indexes := map[string]mongo.IndexModel{
		collectionAccounts: {
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("accounts_username_key"),
		},
		collectionRoles: {
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("roles_name_key"),
		},
	}

	for coll, model := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", coll, err)
		}
	}
	return nil
}

package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

type roleDoc struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type RoleRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewRoleRepository(db *mongo.Database, timeout time.Duration) *RoleRepository {
	return &RoleRepository{coll: db.Collection(collectionRoles), timeout: timeout}
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc roleDoc
	if err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		return nil, storageError("find role", err)
	}
	return &domain.Role{ID: doc.ID, Name: doc.Name}, nil
}

func (r *RoleRepository) Save(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	saved := *role
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": saved.ID},
		roleDoc{ID: saved.ID, Name: saved.Name},
		options.Replace().SetUpsert(true))
	if err != nil {
		return nil, storageError("save role", err)
	}
	return &saved, nil
}

// GetOrCreate upserts on the unique name index. Two upserts racing on a
// missing role can both attempt the insert; the loser sees a duplicate key
// error and retries, finding the winner's document.
func (r *RoleRepository) GetOrCreate(ctx context.Context, name string) (*domain.Role, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc roleDoc
	backoff := retry.WithMaxRetries(3, retry.NewConstant(10*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := r.coll.FindOneAndUpdate(ctx,
			bson.M{"name": name},
			bson.M{"$setOnInsert": bson.M{"_id": uuid.NewString(), "name": name}},
			opts,
		).Decode(&doc)
		if mongo.IsDuplicateKeyError(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, storageError("get or create role", err)
	}
	return &domain.Role{ID: doc.ID, Name: doc.Name}, nil
}

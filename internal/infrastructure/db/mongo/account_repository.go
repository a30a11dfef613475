package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

// Roles are embedded in the account document; the roles collection remains
// the catalogue GetOrCreate draws from.
type accountDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"`
	Enabled      bool      `bson:"enabled"`
	Roles        []roleDoc `bson:"roles"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toAccountDoc(a *domain.Account) accountDoc {
	roles := make([]roleDoc, 0, len(a.Roles))
	for _, r := range a.Roles {
		roles = append(roles, roleDoc{ID: r.ID, Name: r.Name})
	}
	return accountDoc{
		ID:           a.ID,
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		Enabled:      a.Enabled,
		Roles:        roles,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (d accountDoc) toDomain() *domain.Account {
	a := &domain.Account{
		ID:           d.ID,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Enabled:      d.Enabled,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, r := range d.Roles {
		a.AddRole(domain.Role{ID: r.ID, Name: r.Name})
	}
	return a
}

type AccountRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewAccountRepository bounds each call by timeout, or by ten seconds when
// timeout is not positive.
func NewAccountRepository(db *mongo.Database, timeout time.Duration) *AccountRepository {
	return &AccountRepository{coll: db.Collection(collectionAccounts), timeout: timeout}
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc accountDoc
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		return nil, storageError("find account", err)
	}
	return doc.toDomain(), nil
}

// Save inserts accounts without an ID and replaces existing ones. The unique
// username index turns concurrent duplicates into domain.ErrConflict.
func (r *AccountRepository) Save(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	saved := *a
	saved.Roles = append([]domain.Role(nil), a.Roles...)
	now := time.Now().UTC().Truncate(time.Millisecond)
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	if saved.ID == "" {
		saved.ID = uuid.NewString()
		if _, err := r.coll.InsertOne(ctx, toAccountDoc(&saved)); err != nil {
			return nil, storageError("insert account", err)
		}
		return &saved, nil
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": saved.ID}, toAccountDoc(&saved))
	if err != nil {
		return nil, storageError("replace account", err)
	}
	if res.MatchedCount == 0 {
		return nil, storageError("replace account", mongo.ErrNoDocuments)
	}
	return &saved, nil
}

func (r *AccountRepository) FindAll(ctx context.Context) ([]*domain.Account, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, storageError("list accounts", err)
	}
	defer cur.Close(ctx)

	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageError("decode accounts", err)
	}

	accounts := make([]*domain.Account, 0, len(docs))
	for _, d := range docs {
		accounts = append(accounts, d.toDomain())
	}
	return accounts, nil
}

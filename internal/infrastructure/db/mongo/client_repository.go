package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

type clientDoc struct {
	ID      int64  `bson:"_id"`
	Name    string `bson:"name"`
	Email   string `bson:"email"`
	Phone   string `bson:"phone"`
	Address string `bson:"address"`
}

func (d clientDoc) toDomain() *domain.Client {
	return &domain.Client{ID: d.ID, Name: d.Name, Email: d.Email, Phone: d.Phone, Address: d.Address}
}

// ClientRepository numbers clients from a counter document so IDs stay
// numeric and increasing, matching the relational store.
type ClientRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
	timeout  time.Duration
}

func NewClientRepository(db *mongo.Database, timeout time.Duration) *ClientRepository {
	return &ClientRepository{
		coll:     db.Collection(collectionClients),
		counters: db.Collection(collectionCounters),
		timeout:  timeout,
	}
}

func (r *ClientRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": collectionClients},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return nil, storageError("allocate client id", err)
	}

	doc := clientDoc{ID: id, Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, storageError("insert client", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id int64) (*domain.Client, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc clientDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, storageError("find client", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) FindAll(ctx context.Context) ([]*domain.Client, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storageError("list clients", err)
	}
	defer cur.Close(ctx)

	var docs []clientDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageError("decode clients", err)
	}

	clients := make([]*domain.Client, 0, len(docs))
	for _, d := range docs {
		clients = append(clients, d.toDomain())
	}
	return clients, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	doc := clientDoc{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, doc)
	if err != nil {
		return nil, storageError("update client", err)
	}
	if res.MatchedCount == 0 {
		return nil, storageError("update client", mongo.ErrNoDocuments)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storageError("delete client", err)
	}
	if res.DeletedCount == 0 {
		return storageError("delete client", mongo.ErrNoDocuments)
	}
	return nil
}

package deal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoCollection is the deals collection name.
const MongoCollection = "deals"

type mongoDeal struct {
	ID        string         `bson:"_id"`
	Fields    map[string]any `bson:"fields"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

// MongoRepository stores records in the "deals" collection as
// {_id, fields, updated_at} documents.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository binds the repository to db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(MongoCollection)}
}

func (m *MongoRepository) Get(ctx context.Context, id string) (Record, error) {
	var doc mongoDeal
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, errors.Join(ErrStorage, err)
	}
	return FromRaw(doc.ID, doc.Fields)
}

func (m *MongoRepository) Save(ctx context.Context, r Record) error {
	if r.ID() == "" {
		return ErrInvalidID
	}
	doc := mongoDeal{ID: r.ID(), Fields: r.Raw(), UpdatedAt: time.Now().UTC()}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": r.ID()}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

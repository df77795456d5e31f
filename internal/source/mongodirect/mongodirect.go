// Package mongodirect implements the source contract against a live MongoDB
// collection, bypassing the REST proxy. Selected with INMOFEED_MONGO_MODE=direct.
package mongodirect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inmofeed/internal/models"
	"inmofeed/internal/source"
)

// Adapter reads property documents straight from MongoDB.
type Adapter struct {
	collection *mongo.Collection
}

type Options struct {
	URI        string
	Database   string // default "listings"
	Collection string // default "properties"
}

// Connect dials MongoDB, pings it, and returns an adapter bound to the
// properties collection.
func Connect(ctx context.Context, opts Options) (*Adapter, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("mongodirect: URI is required")
	}
	db := opts.Database
	if db == "" {
		db = "listings"
	}
	coll := opts.Collection
	if coll == "" {
		coll = "properties"
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("mongodirect: connect: %w", err)
	}
	if err := client.Ping(dialCtx, nil); err != nil {
		return nil, fmt.Errorf("mongodirect: ping: %w", err)
	}
	return &Adapter{collection: client.Database(db).Collection(coll)}, nil
}

func (a *Adapter) Name() models.SourceID { return models.SourceMongoDB }

// FetchAll returns up to limit documents, newest first.
func (a *Adapter) FetchAll(ctx context.Context, limit int) ([]source.Raw, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := a.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodirect: %w: %v", source.ErrUnavailable, err)
	}
	defer cursor.Close(ctx)

	var docs []source.Raw
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodirect: decode: %w", err)
	}
	return docs, nil
}

// FetchByID looks a document up by its ObjectID hex.
func (a *Adapter) FetchByID(ctx context.Context, id string) (source.Raw, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("mongodirect: id %q: %w", id, source.ErrNotFound)
	}
	var doc source.Raw
	err = a.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("mongodirect: %w", source.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("mongodirect: %w: %v", source.ErrUnavailable, err)
	}
	return doc, nil
}

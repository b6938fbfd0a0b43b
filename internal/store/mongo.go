package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoDatabase = "internradar"
	mongoCollection      = "seen_postings"
	mongoSnapshotID      = "seen"
)

type seenDocument struct {
	ID        string    `bson:"_id"`
	IDs       []string  `bson:"ids"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoBackend keeps the seen snapshot as a single MongoDB document.
type MongoBackend struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoBackend connects to uri and verifies the connection with a ping.
func NewMongoBackend(ctx context.Context, uri, database string) (*MongoBackend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	if database == "" {
		database = DefaultMongoDatabase
	}
	return &MongoBackend{
		client:     client,
		collection: client.Database(database).Collection(mongoCollection),
	}, nil
}

func (b *MongoBackend) Name() string { return "mongo" }

// Load reads the snapshot document. A missing document is an empty snapshot.
func (b *MongoBackend) Load(ctx context.Context) ([]string, error) {
	var doc seenDocument
	err := b.collection.FindOne(ctx, bson.M{"_id": mongoSnapshotID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading seen snapshot: %w", err)
	}
	return doc.IDs, nil
}

// Save upserts the snapshot document. A single-document replace is atomic.
func (b *MongoBackend) Save(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	doc := seenDocument{ID: mongoSnapshotID, IDs: ids, UpdatedAt: time.Now().UTC()}
	_, err := b.collection.ReplaceOne(ctx, bson.M{"_id": mongoSnapshotID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("writing seen snapshot: %w", err)
	}
	return nil
}

func (b *MongoBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}

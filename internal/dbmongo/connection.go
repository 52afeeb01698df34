// Package dbmongo stores message attachments in MongoDB GridFS.
package dbmongo

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"camerpulse/internal/config"
)

const (
	AttachmentBucket = "message_attachments"
	connectTimeout   = 10 * time.Second
)

// MongoClient owns the client and the attachment bucket built on it.
type MongoClient struct {
	client *mongo.Client
	GridFS *gridfs.Bucket
}

func NewMongoConnection(c *config.Config) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(c.GetMongoURI()).
		SetAppName("camerpulse").
		SetServerSelectionTimeout(connectTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb at %s:%s: %w", c.MongoDB.Host, c.MongoDB.Port, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	db := client.Database(c.MongoDB.Database)
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(AttachmentBucket))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to open bucket %s: %w", AttachmentBucket, err)
	}

	// lookups by conversation go through the files collection metadata
	files := db.Collection(AttachmentBucket + ".files")
	if _, err := files.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "metadata.conversation_id", Value: 1}, {Key: "uploadDate", Value: -1}},
	}); err != nil {
		log.Printf("⚠️ could not index %s metadata: %v", AttachmentBucket, err)
	}

	log.Printf("✅ Connected to MongoDB %s, bucket %s", c.MongoDB.Database, AttachmentBucket)
	return &MongoClient{client: client, GridFS: bucket}, nil
}

func (mc *MongoClient) Close(ctx context.Context) error {
	return mc.client.Disconnect(ctx)
}

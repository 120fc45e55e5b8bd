package repository

import (
	"context"
	"fmt"

	"flightdesk-service/internal/domain/entity"
	"flightdesk-service/internal/domain/repository"
	"flightdesk-service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// keyAttr holds the normalized entity key of a stored record
const keyAttr = "_key"

// MongoGateway implements CollectionGateway on a MongoDB collection.
// Records are stored as ordered documents next to their normalized key.
type MongoGateway struct {
	collection *mongo.Collection
	view       entity.ViewDefinition
	logger     logger.Logger
}

// NewMongoGateway creates a gateway on collection name of db
func NewMongoGateway(db *mongo.Database, name string, view entity.ViewDefinition, logger logger.Logger) repository.CollectionGateway {
	collection := db.Collection(name)

	// Create unique index on the entity key
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: keyAttr, Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(context.Background(), indexModel); err != nil {
		logger.Warn("Failed to create key index", "collection", name, "error", err)
	}

	return &MongoGateway{
		collection: collection,
		view:       view,
		logger:     logger,
	}
}

// FetchAll returns every stored record in insertion order
func (g *MongoGateway) FetchAll(ctx context.Context) (entity.Collection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := g.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find records: %w", err)
	}
	defer cursor.Close(ctx)

	col := entity.Collection{}
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		col = append(col, documentToRecord(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return col, nil
}

// Create inserts record under its normalized key
func (g *MongoGateway) Create(ctx context.Context, record entity.Record) error {
	key, err := g.view.BuildKey(record)
	if err != nil {
		return err
	}

	_, err = g.collection.InsertOne(ctx, recordToDocument(record, key))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("record %s already exists: %w", entity.KeyString(key), entity.ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// DeleteByKey removes the record stored under key
func (g *MongoGateway) DeleteByKey(ctx context.Context, key []entity.KeyField) error {
	if len(key) == 0 {
		return fmt.Errorf("empty key: %w", entity.ErrInvalidKey)
	}

	keyString := entity.KeyString(key)
	result, err := g.collection.DeleteOne(ctx, bson.M{keyAttr: keyString})
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("record %s: %w", keyString, entity.ErrNotFound)
	}

	g.logger.Info("Record deleted", "key", keyString)
	return nil
}

func recordToDocument(record entity.Record, key []entity.KeyField) bson.D {
	doc := bson.D{{Key: keyAttr, Value: entity.KeyString(key)}}
	for _, f := range record.Fields() {
		doc = append(doc, bson.E{Key: f.Name, Value: f.Value})
	}
	return doc
}

func documentToRecord(doc bson.D) entity.Record {
	fields := make([]entity.Field, 0, len(doc))
	for _, e := range doc {
		if e.Key == "_id" || e.Key == keyAttr {
			continue
		}
		value := ""
		if e.Value != nil {
			value = fmt.Sprint(e.Value)
		}
		fields = append(fields, entity.Field{Name: e.Key, Value: value})
	}
	return entity.NewRecord(fields...)
}

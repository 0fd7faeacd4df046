package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/property/domain"
)

type PropertyRepository struct {
	collection *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{collection: db.Collection(propertiesCollection)}
}

func (r *PropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	userID, err := primitive.ObjectIDFromHex(property.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", property.UserID, err)
	}
	id := primitive.NewObjectID()
	doc := newPropertyDocument(property, id, userID)
	doc.CreatedAt, doc.UpdatedAt = doc.CreatedAt.UTC(), doc.UpdatedAt.UTC()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	property.ID = id.Hex()
	return nil
}

func (r *PropertyRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Property, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []*domain.Property{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": objID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []propertyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	properties := make([]*domain.Property, 0, len(docs))
	for i := range docs {
		properties = append(properties, docs[i].toDomain())
	}
	return properties, nil
}

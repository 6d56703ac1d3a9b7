package repository

import (
	"context"
	"errors"
	"fmt"

	reserrors "qota/internal/reservations/errors"
	"qota/pkg/config"
	"qota/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	PropertyCollectionName = "Properties"
)

type mongoPropertyReader struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// PropertyReader gives the admission pipeline read access to the stay bounds
// and caps configured on a property. Writes belong to the properties service.
type PropertyReader interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
}

func NewMongoPropertyReader(cfg *config.Config) PropertyReader {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPropertyReader{
		cfg:        cfg,
		collection: db.Collection(PropertyCollectionName),
	}
}

func (r *mongoPropertyReader) FindByID(ctx context.Context, id string) (*model.Property, error) {
	timeout := r.cfg.ReadTimeout
	if _, ok := ctx.(mongo.SessionContext); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid property ID format: %s", id)
	}

	var property model.Property
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}

	return &property, nil
}

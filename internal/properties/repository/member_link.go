package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	properrors "qota/internal/properties/errors"
	"qota/pkg/config"
	"qota/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MemberLinkCollectionName = "MemberLinks"
)

type mongoMemberLinkRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type MemberLinkRepository interface {
	Create(ctx context.Context, link *model.MemberLink) error
	FindByMemberAndProperty(ctx context.Context, memberID, propertyID string) (*model.MemberLink, error)
	FindByMember(ctx context.Context, memberID string, limit int, offset int64) ([]*model.MemberLink, error)
	CountByMember(ctx context.Context, memberID string) (int64, error)
}

func NewMongoMemberLinkRepository(cfg *config.Config) MemberLinkRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMemberLinkRepository{
		cfg:        cfg,
		collection: db.Collection(MemberLinkCollectionName),
	}
}

func (r *mongoMemberLinkRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoMemberLinkRepository) Create(ctx context.Context, link *model.MemberLink) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	link.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, link)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return properrors.ErrDuplicateLink
		}
		return fmt.Errorf("failed to create member link: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		link.ID = oid.Hex()
	}
	return nil
}

func (r *mongoMemberLinkRepository) FindByMemberAndProperty(ctx context.Context, memberID, propertyID string) (*model.MemberLink, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"member_id":   memberID,
		"property_id": propertyID,
	}

	var link model.MemberLink
	err := r.collection.FindOne(ctx, filter).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, properrors.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to find member link: %w", err)
	}

	return &link, nil
}

func (r *mongoMemberLinkRepository) FindByMember(ctx context.Context, memberID string, limit int, offset int64) ([]*model.MemberLink, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"member_id": memberID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find member links: %w", err)
	}
	defer cursor.Close(ctx)

	var links []*model.MemberLink
	if err = cursor.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("failed to decode member links: %w", err)
	}

	return links, nil
}

func (r *mongoMemberLinkRepository) CountByMember(ctx context.Context, memberID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"member_id": memberID})
	if err != nil {
		return 0, fmt.Errorf("failed to count member links: %w", err)
	}
	return count, nil
}

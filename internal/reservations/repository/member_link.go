package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reserrors "qota/internal/reservations/errors"
	"qota/pkg/config"
	"qota/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	MemberLinkCollectionName = "MemberLinks"
)

type mongoMemberLinkRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// MemberLinkRepository is the quota ledger. Balance writes happen only inside
// the booking and cancellation transactions.
type MemberLinkRepository interface {
	FindByMemberAndProperty(ctx context.Context, memberID, propertyID string) (*model.MemberLink, error)
	DecrementBalance(ctx context.Context, linkID string, pool string, days float64) error
	IncrementBalance(ctx context.Context, linkID string, pool string, days float64) error
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
			return nil, reserrors.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to find member link: %w", err)
	}

	return &link, nil
}

func (r *mongoMemberLinkRepository) DecrementBalance(ctx context.Context, linkID string, pool string, days float64) error {
	return r.adjustBalance(ctx, linkID, pool, -days)
}

func (r *mongoMemberLinkRepository) IncrementBalance(ctx context.Context, linkID string, pool string, days float64) error {
	return r.adjustBalance(ctx, linkID, pool, days)
}

func (r *mongoMemberLinkRepository) adjustBalance(ctx context.Context, linkID string, pool string, delta float64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(linkID)
	if err != nil {
		return fmt.Errorf("invalid member link ID format: %s", linkID)
	}

	if pool != model.PoolCurrentYear && pool != model.PoolNextYear {
		return fmt.Errorf("unknown quota pool: %s", pool)
	}

	update := bson.M{"$inc": bson.M{pool: delta}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}

	if result.MatchedCount == 0 {
		return reserrors.ErrLinkNotFound
	}

	return nil
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SubscriberStorage implements the SubscriberStorage interface for
// MongoDB. Each subscription set is its own collection, keyed by email.
type SubscriberStorage struct {
	conn   *Connection
	logger arbor.ILogger
}

// NewSubscriberStorage creates a new SubscriberStorage instance
func NewSubscriberStorage(conn *Connection, logger arbor.ILogger) interfaces.SubscriberStorage {
	return &SubscriberStorage{
		conn:   conn,
		logger: logger,
	}
}

func subscriberCollection(set models.SubscriptionSet) (string, error) {
	switch set {
	case models.SubscriptionAllCountries:
		return "subscribers_all_countries", nil
	case models.SubscriptionMetricsUpdates:
		return "subscribers_metrics_updates", nil
	default:
		return "", fmt.Errorf("unknown subscription set: %s", set)
	}
}

func (s *SubscriberStorage) UpsertSubscriber(ctx context.Context, set models.SubscriptionSet, sub *models.Subscriber) (bool, error) {
	if sub.Email == "" {
		return false, fmt.Errorf("subscriber email is required")
	}

	collection, err := subscriberCollection(set)
	if err != nil {
		return false, err
	}

	db, err := s.conn.Database(ctx)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	id := sub.ID
	if id == "" {
		id = common.NewSubscriberID()
	}

	setFields := bson.M{"updatedAt": now}
	if sub.Phone != "" {
		setFields["phone"] = sub.Phone
	}
	update := bson.M{
		"$set": setFields,
		"$setOnInsert": bson.M{
			"_id":       id,
			"email":     sub.Email,
			"createdAt": now,
		},
	}

	res, err := db.Collection(collection).UpdateOne(
		ctx,
		bson.M{"email": sub.Email},
		update,
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		s.conn.ObserveError(err)
		return false, common.NewInfrastructureError("upsert subscriber", err)
	}

	created := res.UpsertedCount > 0

	s.logger.Debug().
		Str("set", string(set)).
		Str("email", sub.Email).
		Bool("created", created).
		Msg("Subscriber upserted")

	return created, nil
}

func (s *SubscriberStorage) GetSubscriber(ctx context.Context, set models.SubscriptionSet, email string) (*models.Subscriber, error) {
	collection, err := subscriberCollection(set)
	if err != nil {
		return nil, err
	}

	db, err := s.conn.Database(ctx)
	if err != nil {
		return nil, err
	}

	var sub models.Subscriber
	err = db.Collection(collection).FindOne(ctx, bson.M{"email": email}).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.NewNotFoundError("subscriber", email)
		}
		s.conn.ObserveError(err)
		return nil, common.NewInfrastructureError("get subscriber", err)
	}
	return &sub, nil
}

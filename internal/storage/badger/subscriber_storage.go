package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SubscriberStorage implements the SubscriberStorage interface for
// Badger. Keys are "<set>:<email>" so each subscription set stays a
// distinct namespace, mirroring the per-set collections of the Mongo
// backend.
type SubscriberStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSubscriberStorage creates a new SubscriberStorage instance
func NewSubscriberStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SubscriberStorage {
	return &SubscriberStorage{
		db:     db,
		logger: logger,
	}
}

func subscriberKey(set models.SubscriptionSet, email string) string {
	return fmt.Sprintf("%s:%s", set, email)
}

func (s *SubscriberStorage) UpsertSubscriber(ctx context.Context, set models.SubscriptionSet, sub *models.Subscriber) (bool, error) {
	if sub.Email == "" {
		return false, fmt.Errorf("subscriber email is required")
	}

	key := subscriberKey(set, sub.Email)
	now := time.Now().UTC()
	created := false

	var existing models.Subscriber
	err := s.db.Store().Get(key, &existing)
	switch {
	case errors.Is(err, badgerhold.ErrNotFound):
		created = true
		if sub.ID == "" {
			sub.ID = common.NewSubscriberID()
		}
		sub.CreatedAt = now
	case err != nil:
		return false, common.NewInfrastructureError("get subscriber", err)
	default:
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
		if sub.Phone == "" {
			sub.Phone = existing.Phone
		}
	}
	sub.UpdatedAt = now

	if err := s.db.Store().Upsert(key, sub); err != nil {
		return false, common.NewInfrastructureError("upsert subscriber", err)
	}

	s.logger.Debug().
		Str("set", string(set)).
		Str("email", sub.Email).
		Bool("created", created).
		Msg("Subscriber upserted")

	return created, nil
}

func (s *SubscriberStorage) GetSubscriber(ctx context.Context, set models.SubscriptionSet, email string) (*models.Subscriber, error) {
	var sub models.Subscriber
	if err := s.db.Store().Get(subscriberKey(set, email), &sub); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, common.NewNotFoundError("subscriber", email)
		}
		return nil, common.NewInfrastructureError("get subscriber", err)
	}
	return &sub, nil
}

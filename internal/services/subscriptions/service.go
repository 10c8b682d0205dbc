package subscriptions

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
)

// Service implements the SubscriptionService interface
type Service struct {
	storage  interfaces.StorageManager
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewService creates a new subscription service
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) interfaces.SubscriptionService {
	return &Service{
		storage:  storage,
		validate: validator.New(),
		logger:   logger,
	}
}

// Subscribe validates the request and upserts the email into every
// targeted subscription set, reporting created or updated per set.
// Validation failures happen before any write.
func (s *Service) Subscribe(ctx context.Context, req *models.SubscribeRequest) (*models.SubscriptionResults, error) {
	if req == nil {
		return nil, common.NewValidationError("email", "a valid email address is required")
	}
	if err := s.validate.Struct(req); err != nil {
		s.logger.Debug().Err(err).Msg("Subscription request rejected")
		return nil, common.NewValidationError("email", "a valid email address is required")
	}

	results := &models.SubscriptionResults{}

	if req.NotifyAllCountries {
		created, err := s.upsert(ctx, models.SubscriptionAllCountries, req)
		if err != nil {
			return nil, err
		}
		results.AllCountries = outcome(created)
	}

	if req.NotifyMetricsUpdates {
		created, err := s.upsert(ctx, models.SubscriptionMetricsUpdates, req)
		if err != nil {
			return nil, err
		}
		results.MetricsUpdates = outcome(created)
	}

	s.logger.Info().
		Str("email", req.Email).
		Bool("all_countries", req.NotifyAllCountries).
		Bool("metrics_updates", req.NotifyMetricsUpdates).
		Msg("Subscription processed")

	return results, nil
}

func (s *Service) upsert(ctx context.Context, set models.SubscriptionSet, req *models.SubscribeRequest) (bool, error) {
	sub := &models.Subscriber{
		Email: req.Email,
		Phone: req.Phone,
	}
	return s.storage.SubscriberStorage().UpsertSubscriber(ctx, set, sub)
}

func outcome(created bool) string {
	if created {
		return models.SubscriptionCreated
	}
	return models.SubscriptionUpdated
}

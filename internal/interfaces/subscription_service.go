package interfaces

import (
	"context"

	"github.com/ternarybob/bursa/internal/models"
)

// SubscriptionService - notification subscription write path
type SubscriptionService interface {
	// Subscribe validates the request and upserts the email into every
	// targeted set. ValidationError on a missing or malformed email;
	// nothing is written in that case.
	Subscribe(ctx context.Context, req *models.SubscribeRequest) (*models.SubscriptionResults, error)
}

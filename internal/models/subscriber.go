package models

import (
	"time"
)

// SubscriptionSet identifies one of the subscriber collections.
type SubscriptionSet string

const (
	// SubscriptionAllCountries receives listing change notifications for every country
	SubscriptionAllCountries SubscriptionSet = "all_countries"
	// SubscriptionMetricsUpdates receives valuation metrics refresh notifications
	SubscriptionMetricsUpdates SubscriptionSet = "metrics_updates"
)

// Upsert outcomes reported back to the subscriber per set.
const (
	SubscriptionCreated = "created"
	SubscriptionUpdated = "updated"
)

// Subscriber is one stored notification subscription, keyed by email
// within each set.
type Subscriber struct {
	ID        string    `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// SubscribeRequest is the POST /api/notifications/subscribe payload.
type SubscribeRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Phone                string `json:"phone,omitempty"`
	NotifyAllCountries   bool   `json:"notifyAllCountries,omitempty"`
	NotifyMetricsUpdates bool   `json:"notifyMetricsUpdates,omitempty"`
}

// SubscriptionResults reports the per-set upsert outcome
// ("created" or "updated"); sets not targeted stay absent.
type SubscriptionResults struct {
	AllCountries   string `json:"allCountries,omitempty"`
	MetricsUpdates string `json:"metricsUpdates,omitempty"`
}

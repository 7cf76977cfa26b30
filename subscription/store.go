package subscription

import (
	"context"

	"github.com/xraph/restro/id"
)

type Store interface {
	// SaveSubscription inserts s or replaces the record with the same ProviderID.
	SaveSubscription(ctx context.Context, s *Subscription) error
	GetSubscriptionByProvider(ctx context.Context, providerID string) (*Subscription, error)
	ListSubscriptions(ctx context.Context, tenantID id.TenantID) ([]*Subscription, error)
}

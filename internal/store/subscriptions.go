package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pallet-cubing-backend/internal/model"
)

// SubscriptionStore keeps the browsers that want export-ready pushes.
type SubscriptionStore interface {
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForTerminal(ctx context.Context, terminal string) ([]model.PushSubscription, error)
}

type gormSubscriptionStore struct {
	db *gorm.DB
}

// NewGormSubscriptionStore creates a new GORM-backed subscription store.
func NewGormSubscriptionStore(db *gorm.DB) SubscriptionStore {
	return &gormSubscriptionStore{db: db}
}

func (s *gormSubscriptionStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "terminal"}),
	}).Create(sub).Error; err != nil {
		return fmt.Errorf("upsert subscription failed: %w", err)
	}
	return nil
}

func (s *gormSubscriptionStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sub, ErrNotFound
		}
		return sub, fmt.Errorf("failed to fetch subscription: %w", err)
	}
	return sub, nil
}

func (s *gormSubscriptionStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// SubscriptionsForTerminal returns the subscriptions registered for a terminal
// plus those registered without one.
func (s *gormSubscriptionStore) SubscriptionsForTerminal(ctx context.Context, terminal string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).
		Where("terminal = ? OR terminal = ''", terminal).
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for terminal %s: %w", terminal, err)
	}
	return subs, nil
}

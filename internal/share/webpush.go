package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"pallet-cubing-backend/internal/model"
	"pallet-cubing-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// ErrNoSubscribers is returned when nobody is registered for the terminal.
var ErrNoSubscribers = errors.New("no push subscribers for terminal")

// WebPushSharer announces a ready export to the browsers subscribed for the
// operator's terminal.
type WebPushSharer struct {
	subs    store.SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWebPushSharer creates a sharer using the real webpush sender.
func NewWebPushSharer(subs store.SubscriptionStore, options *webpush.Options) *WebPushSharer {
	return &WebPushSharer{
		subs:    subs,
		webpush: options,
		sender:  &WebPushSender{},
	}
}

type pushPayload struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	Trailer     string `json:"trailer"`
	FileName    string `json:"file_name"`
	Rows        int    `json:"rows"`
	ContentType string `json:"content_type"`
}

// Share notifies every subscription. It fails only if no notification got through.
func (s *WebPushSharer) Share(ctx context.Context, a Artifact) error {
	subscriptions, err := s.subs.SubscriptionsForTerminal(ctx, a.Terminal)
	if err != nil {
		return err
	}
	if len(subscriptions) == 0 {
		return ErrNoSubscribers
	}

	payload, err := json.Marshal(pushPayload{
		Title:       a.Subject,
		Body:        a.Body,
		Trailer:     a.Trailer,
		FileName:    a.FileName,
		Rows:        a.Rows,
		ContentType: a.ContentType,
	})
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	log.Printf("Sending %d notifications for trailer %s", len(subscriptions), a.Trailer)
	var errs []error
	delivered := 0
	for _, sub := range subscriptions {
		if err := s.sendNotification(ctx, sub, payload); err != nil {
			errs = append(errs, err)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return errors.Join(errs...)
	}
	return nil
}

// sendNotification sends a single web push notification.
func (s *WebPushSharer) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) error {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := s.sender.Send(payload, wpSub, s.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return err
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := s.subs.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		return fmt.Errorf("subscription %s expired", sub.Endpoint)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push service returned %d for %s", resp.StatusCode, sub.Endpoint)
	}
	return nil
}

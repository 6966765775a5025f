package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/models"
	"github.com/loadlane/loadlane/pkg/logger"
)

// ErrSubscriptionGone signals that the push service reports the subscription
// permanently expired. The adapter prunes the stored row when it sees this.
var ErrSubscriptionGone = errors.New("push: subscription gone")

// WebPushSender performs one web-push send to one subscription.
type WebPushSender interface {
	Send(ctx context.Context, sub *models.PushSubscription, payload []byte) error
}

// VAPIDConfig holds the key pair and contact address used to sign pushes.
type VAPIDConfig struct {
	Subscriber string
	PublicKey  string
	PrivateKey string
	TTL        int
}

type vapidSender struct {
	cfg VAPIDConfig
}

// NewVAPIDSender constructs the production web-push sender.
func NewVAPIDSender(cfg VAPIDConfig) (WebPushSender, error) {
	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil, errors.New("push: VAPID key pair is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 60
	}
	return &vapidSender{cfg: cfg}, nil
}

func (s *vapidSender) Send(ctx context.Context, sub *models.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		Subscriber:      s.cfg.Subscriber,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             s.cfg.TTL,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return ErrSubscriptionGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push: service returned status %d", resp.StatusCode)
	default:
		return nil
	}
}

// PushAdapter delivers notifications over web push, fanning out to every
// registered subscription for the user.
type PushAdapter struct {
	db     *gorm.DB
	sender WebPushSender
	log    *zap.Logger
}

// NewPushAdapter constructs a push channel adapter.
func NewPushAdapter(db *gorm.DB, sender WebPushSender) *PushAdapter {
	return &PushAdapter{
		db:     db,
		sender: sender,
		log:    logger.WithModule("notify.push"),
	}
}

// Channel identifies the adapter's medium.
func (a *PushAdapter) Channel() Channel {
	return ChannelPush
}

// Deliver sends the rendered content to each of the user's subscriptions.
// One accepted push counts as delivered; permanently gone subscriptions are
// pruned in passing.
func (a *PushAdapter) Deliver(ctx context.Context, userID string, t Type, data Data) Delivery {
	if a.sender == nil {
		return skipped("push sender not configured")
	}

	var subs []models.PushSubscription
	if err := a.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return failed(fmt.Sprintf("subscription lookup failed: %v", err))
	}
	if len(subs) == 0 {
		return skipped("no push subscriptions registered")
	}

	payload, err := json.Marshal(FormatPush(t, data))
	if err != nil {
		return failed(fmt.Sprintf("payload encoding failed: %v", err))
	}

	deliveredAny := false
	var lastErr error
	for i := range subs {
		sub := &subs[i]
		sendErr := a.sender.Send(ctx, sub, payload)
		switch {
		case sendErr == nil:
			deliveredAny = true
		case errors.Is(sendErr, ErrSubscriptionGone):
			a.pruneSubscription(ctx, sub)
		default:
			lastErr = sendErr
			a.log.Warn("push send failed",
				zap.String("user_id", userID),
				zap.String("device", sub.DeviceName),
				zap.Error(sendErr))
		}
	}

	if deliveredAny {
		return delivered()
	}
	if lastErr != nil {
		return failed(lastErr.Error())
	}
	return skipped("all push subscriptions expired")
}

func (a *PushAdapter) pruneSubscription(ctx context.Context, sub *models.PushSubscription) {
	if err := a.db.WithContext(ctx).Delete(&models.PushSubscription{}, "id = ?", sub.ID).Error; err != nil {
		a.log.Warn("failed to prune expired push subscription",
			zap.String("subscription_id", sub.ID),
			zap.Error(err))
		return
	}
	a.log.Info("pruned expired push subscription",
		zap.String("user_id", sub.UserID),
		zap.String("device", sub.DeviceName))
}

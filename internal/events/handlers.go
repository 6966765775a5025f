package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/models"
	"github.com/loadlane/loadlane/internal/notify"
	"github.com/loadlane/loadlane/pkg/logger"
)

// Dispatcher is the slice of the notification core the event handlers use.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID string, t notify.Type, data notify.Data) notify.Result
}

// Handlers translates domain events into notification dispatches. Each
// handler resolves the recipient set for its event, builds the payload and
// calls the dispatcher once per recipient. Dispatch outcomes are logged,
// never propagated; notifications are best-effort side effects of the
// events that trigger them.
type Handlers struct {
	db         *gorm.DB
	dispatcher Dispatcher
	log        *zap.Logger
}

// New constructs the event handlers.
func New(db *gorm.DB, dispatcher Dispatcher) *Handlers {
	return &Handlers{
		db:         db,
		dispatcher: dispatcher,
		log:        logger.WithModule("events"),
	}
}

func (h *Handlers) loadByID(ctx context.Context, loadID string) (*models.Load, error) {
	var load models.Load
	if err := h.db.WithContext(ctx).Take(&load, "id = ?", loadID).Error; err != nil {
		return nil, fmt.Errorf("load %s lookup failed: %w", loadID, err)
	}
	return &load, nil
}

func baseLoadData(load *models.Load) notify.Data {
	return notify.Data{
		"load_id":           load.ID,
		"load_number":       load.LoadNumber,
		"pickup_location":   load.PickupLocation,
		"delivery_location": load.DeliveryLocation,
	}
}

// dispatchTo fans one notification out to a recipient list. Each dispatch
// is independent; one user's outcome never affects another's.
func (h *Handlers) dispatchTo(ctx context.Context, recipients []Stakeholder, t notify.Type, data notify.Data) {
	for _, recipient := range recipients {
		result := h.dispatcher.Dispatch(ctx, recipient.UserID, t, data)
		h.log.Debug("dispatched notification",
			zap.String("user_id", recipient.UserID),
			zap.String("role", recipient.Role),
			zap.String("type", string(t)),
			zap.Bool("delivered", result.Delivered),
			zap.Bool("suppressed", result.Suppressed))
	}
}

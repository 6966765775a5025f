package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/loadlane/loadlane/pkg/errors"
	"github.com/loadlane/loadlane/pkg/logger"
	"github.com/loadlane/loadlane/pkg/response"
)

// EventSink is the slice of the event handlers the ingest API needs.
type EventSink interface {
	LoadAssigned(ctx context.Context, loadID string) error
	LoadStatusChanged(ctx context.Context, loadID, newStatus string) error
	DocumentUploaded(ctx context.Context, loadID, documentType, uploadedBy string) error
	PaymentIssued(ctx context.Context, loadID, payeeID, amount string) error
	DelayAlert(ctx context.Context, loadID, reason string) error
	ETAUpdated(ctx context.Context, loadID, eta string) error
	GeofenceEntered(ctx context.Context, loadID, geofenceName, geofenceType string) error
	GeofenceExited(ctx context.Context, loadID, geofenceName string) error
	ApproachingGeofence(ctx context.Context, loadID, geofenceName string, distanceMeters float64) error
	DwellTimeAlert(ctx context.Context, loadID, geofenceName string, dwellMinutes int) error
	MessageSent(ctx context.Context, recipientID, senderName, preview string)
}

type loadAssignedEvent struct {
	LoadID string `json:"load_id" binding:"required"`
}

type loadStatusEvent struct {
	LoadID string `json:"load_id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

type documentUploadedEvent struct {
	LoadID       string `json:"load_id" binding:"required"`
	DocumentType string `json:"document_type" binding:"required"`
	UploadedBy   string `json:"uploaded_by"`
}

type paymentIssuedEvent struct {
	LoadID  string `json:"load_id" binding:"required"`
	PayeeID string `json:"payee_id" binding:"required"`
	Amount  string `json:"amount"`
}

type delayAlertEvent struct {
	LoadID string `json:"load_id" binding:"required"`
	Reason string `json:"reason"`
}

type etaUpdateEvent struct {
	LoadID string `json:"load_id" binding:"required"`
	ETA    string `json:"eta" binding:"required"`
}

type geofenceEvent struct {
	LoadID         string  `json:"load_id" binding:"required"`
	Transition     string  `json:"transition" binding:"required,oneof=entered exited approaching dwell"`
	GeofenceName   string  `json:"geofence_name" binding:"required"`
	GeofenceType   string  `json:"geofence_type" binding:"omitempty,oneof=pickup delivery"`
	DistanceMeters float64 `json:"distance_meters"`
	DwellMinutes   int     `json:"dwell_minutes"`
}

type messageEvent struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	SenderName  string `json:"sender_name"`
	Preview     string `json:"preview"`
}

// accept runs the handler in the background and acknowledges the event.
// Notifications are best-effort side effects; the producing operation never
// waits on, or fails with, delivery.
func accept(c *gin.Context, name string, fn func(ctx context.Context) error) {
	go func() {
		if err := fn(context.Background()); err != nil {
			logger.WithModule("api.events").Warn("event handling failed",
				zap.String("event", name),
				zap.Error(err))
		}
	}()
	response.Success(c, http.StatusAccepted, gin.H{"accepted": true})
}

func (h *handlers) ingestLoadAssigned(c *gin.Context) {
	var event loadAssignedEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}
	accept(c, "load_assigned", func(ctx context.Context) error {
		return h.deps.Events.LoadAssigned(ctx, event.LoadID)
	})
}

func (h *handlers) ingestLoadStatus(c *gin.Context) {
	var event loadStatusEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}
	accept(c, "load_status_change", func(ctx context.Context) error {
		return h.deps.Events.LoadStatusChanged(ctx, event.LoadID, event.Status)
	})
}

func (h *handlers) ingestDocumentUploaded(c *gin.Context) {
	var event documentUploadedEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}
	accept(c, "document_uploaded", func(ctx context.Context) error {
		return h.deps.Events.DocumentUploaded(ctx, event.LoadID, event.DocumentType, event.UploadedBy)
	})
}

func (h *handlers) ingestPaymentIssued(c *gin.Context) {
	var event paymentIssuedEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}
	accept(c, "payment_issued", func(ctx context.Context) error {
		return h.deps.Events.PaymentIssued(ctx, event.LoadID, event.PayeeID, event.Amount)
	})
}

func (h *handlers) ingestDelayAlert(c *gin.Context) {
	var event delayAlertEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}
	accept(c, "delay_alert", func(ctx context.Context) error {
		return h.deps.Events.DelayAlert(ctx, event.LoadID, event.Reason)
	})
}

func (h *handlers) ingestETAUpdate(c *gin.Context) {
	var event etaUpdateEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}
	accept(c, "eta_update", func(ctx context.Context) error {
		return h.deps.Events.ETAUpdated(ctx, event.LoadID, event.ETA)
	})
}

func (h *handlers) ingestGeofence(c *gin.Context) {
	var event geofenceEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}
	accept(c, "geofence_"+event.Transition, func(ctx context.Context) error {
		switch event.Transition {
		case "entered":
			return h.deps.Events.GeofenceEntered(ctx, event.LoadID, event.GeofenceName, event.GeofenceType)
		case "exited":
			return h.deps.Events.GeofenceExited(ctx, event.LoadID, event.GeofenceName)
		case "approaching":
			return h.deps.Events.ApproachingGeofence(ctx, event.LoadID, event.GeofenceName, event.DistanceMeters)
		default:
			return h.deps.Events.DwellTimeAlert(ctx, event.LoadID, event.GeofenceName, event.DwellMinutes)
		}
	})
}

func (h *handlers) ingestMessage(c *gin.Context) {
	var event messageEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}
	accept(c, "new_message", func(ctx context.Context) error {
		h.deps.Events.MessageSent(ctx, event.RecipientID, event.SenderName, event.Preview)
		return nil
	})
}

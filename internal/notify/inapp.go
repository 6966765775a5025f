package notify

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/hub"
	"github.com/loadlane/loadlane/internal/models"
	apperrors "github.com/loadlane/loadlane/pkg/errors"
	"github.com/loadlane/loadlane/pkg/logger"
)

// InAppService writes and manages in-app notification records. New records
// are pushed to connected websocket subscribers as they are written.
type InAppService struct {
	db  *gorm.DB
	hub *hub.Hub
	log *zap.Logger
}

// NewInAppService constructs an InAppService. The hub may be nil when no
// realtime stream is wanted.
func NewInAppService(db *gorm.DB, h *hub.Hub) *InAppService {
	return &InAppService{
		db:  db,
		hub: h,
		log: logger.WithModule("notify.inapp"),
	}
}

// Write creates the in-app record for one dispatch and returns its id.
// Storage failure is logged and reported as an empty id, never an error;
// the rest of the dispatch proceeds regardless.
func (s *InAppService) Write(ctx context.Context, userID string, t Type, data Data) string {
	content := FormatInApp(t, data)

	metadata, err := json.Marshal(data)
	if err != nil {
		s.log.Warn("failed to encode notification metadata",
			zap.String("user_id", userID),
			zap.String("type", string(t)),
			zap.Error(err))
		metadata = []byte("{}")
	}

	record := models.Notification{
		UserID:   userID,
		Type:     string(t),
		Title:    content.Title,
		Message:  content.Body,
		Severity: severityFor(t),
		Metadata: datatypes.JSON(metadata),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		s.log.Error("failed to write in-app notification",
			zap.String("user_id", userID),
			zap.String("type", string(t)),
			zap.Error(err))
		return ""
	}

	if s.hub != nil {
		s.hub.Broadcast(userID, hub.Event{
			Event:        "notification.created",
			Notification: record,
		})
	}
	return record.ID
}

// List returns a page of the user's notifications, newest first.
func (s *InAppService) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count notifications")
	}

	var records []models.Notification
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to list notifications")
	}
	return records, total, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (s *InAppService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count unread notifications")
	}
	return count, nil
}

// MarkRead marks one notification as read.
func (s *InAppService) MarkRead(ctx context.Context, userID, notificationID string) error {
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "failed to mark notification read")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	if s.hub != nil {
		s.hub.Broadcast(userID, hub.Event{
			Event:          "notification.read",
			NotificationID: notificationID,
		})
	}
	return nil
}

// MarkUnread returns one notification to the unread state.
func (s *InAppService) MarkUnread(ctx context.Context, userID, notificationID string) error {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{"is_read": false, "read_at": nil})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "failed to mark notification unread")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification for the user as read.
func (s *InAppService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "failed to mark notifications read")
	}
	return result.RowsAffected, nil
}

// Delete removes one notification owned by the user.
func (s *InAppService) Delete(ctx context.Context, userID, notificationID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "failed to delete notification")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// severityFor maps a notification type to the record severity shown in-app.
func severityFor(t Type) string {
	switch t {
	case TypeDelayAlert, TypeDwellTimeAlert, TypeWeatherAlert, TypeDocumentRequired:
		return "warning"
	default:
		return "info"
	}
}

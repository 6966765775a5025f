package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/models"
	apperrors "github.com/loadlane/loadlane/pkg/errors"
	"github.com/loadlane/loadlane/pkg/response"
)

type createSubscriptionRequest struct {
	Endpoint   string `json:"endpoint" binding:"required,url"`
	P256dhKey  string `json:"p256dh_key" binding:"required"`
	AuthKey    string `json:"auth_key" binding:"required"`
	DeviceName string `json:"device_name" binding:"omitempty,max=128"`
}

// createPushSubscription registers a browser push subscription for the
// caller. Re-registering an existing endpoint refreshes its keys instead of
// creating a duplicate row.
func (h *handlers) createPushSubscription(c *gin.Context) {
	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	userID := currentUserID(c)
	ctx := c.Request.Context()

	var existing models.PushSubscription
	err := h.deps.DB.WithContext(ctx).
		Take(&existing, "user_id = ? AND endpoint = ?", userID, req.Endpoint).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(c, apperrors.Wrap(err, "failed to look up push subscription"))
		return
	}
	if err == nil {
		existing.P256dhKey = req.P256dhKey
		existing.AuthKey = req.AuthKey
		existing.DeviceName = req.DeviceName
		if saveErr := h.deps.DB.WithContext(ctx).Save(&existing).Error; saveErr != nil {
			response.Error(c, apperrors.Wrap(saveErr, "failed to update push subscription"))
			return
		}
		response.Success(c, http.StatusOK, existing)
		return
	}

	sub := models.PushSubscription{
		UserID:     userID,
		Endpoint:   req.Endpoint,
		P256dhKey:  req.P256dhKey,
		AuthKey:    req.AuthKey,
		DeviceName: req.DeviceName,
	}
	if createErr := h.deps.DB.WithContext(ctx).Create(&sub).Error; createErr != nil {
		response.Error(c, apperrors.Wrap(createErr, "failed to register push subscription"))
		return
	}
	response.Success(c, http.StatusCreated, sub)
}

func (h *handlers) deletePushSubscription(c *gin.Context) {
	result := h.deps.DB.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", c.Param("id"), currentUserID(c)).
		Delete(&models.PushSubscription{})
	if result.Error != nil {
		response.Error(c, apperrors.Wrap(result.Error, "failed to remove push subscription"))
		return
	}
	if result.RowsAffected == 0 {
		response.Error(c, apperrors.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

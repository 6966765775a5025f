package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/loadlane/loadlane/internal/notify"
	apperrors "github.com/loadlane/loadlane/pkg/errors"
	"github.com/loadlane/loadlane/pkg/response"
)

var validate = validator.New()

type preferencesPayload struct {
	EnablePush  bool `json:"enable_push"`
	EnableSMS   bool `json:"enable_sms"`
	EnableEmail bool `json:"enable_email"`

	QuietHoursStart *string `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd   *string `json:"quiet_hours_end,omitempty"`
	Timezone        string  `json:"timezone,omitempty"`

	Types map[notify.Type]notify.TypePreference `json:"types"`
}

type updatePreferencesRequest struct {
	EnablePush  *bool `json:"enable_push"`
	EnableSMS   *bool `json:"enable_sms"`
	EnableEmail *bool `json:"enable_email"`

	QuietHoursStart *string `json:"quiet_hours_start" binding:"omitempty,datetime=15:04"`
	QuietHoursEnd   *string `json:"quiet_hours_end" binding:"omitempty,datetime=15:04"`
	Timezone        *string `json:"timezone" binding:"omitempty,timezone"`

	Types map[notify.Type]notify.TypePreference `json:"types"`
}

func (h *handlers) getPreferences(c *gin.Context) {
	prefs := h.deps.Preferences.Get(c.Request.Context(), currentUserID(c))
	response.Success(c, http.StatusOK, preferencesToPayload(prefs))
}

// updatePreferences applies a partial update over the user's current
// settings. Quiet-hours bounds must be HH:MM; both bounds are cleared when
// either is explicitly set to empty.
func (h *handlers) updatePreferences(c *gin.Context) {
	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}
	if err := validateTypePreferences(req.Types); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	userID := currentUserID(c)
	prefs := h.deps.Preferences.Get(c.Request.Context(), userID)
	prefs.UserID = userID

	if req.EnablePush != nil {
		prefs.EnablePush = *req.EnablePush
	}
	if req.EnableSMS != nil {
		prefs.EnableSMS = *req.EnableSMS
	}
	if req.EnableEmail != nil {
		prefs.EnableEmail = *req.EnableEmail
	}
	if req.QuietHoursStart != nil {
		prefs.QuietHoursStart = normalizeClockBound(req.QuietHoursStart)
	}
	if req.QuietHoursEnd != nil {
		prefs.QuietHoursEnd = normalizeClockBound(req.QuietHoursEnd)
	}
	if req.Timezone != nil {
		prefs.Timezone = *req.Timezone
	}
	for typ, pref := range req.Types {
		prefs.Types[typ] = pref
	}

	if err := h.deps.Preferences.Update(c.Request.Context(), prefs); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, preferencesToPayload(prefs))
}

// validateTypePreferences rejects unknown channels in submitted channel lists.
func validateTypePreferences(types map[notify.Type]notify.TypePreference) error {
	for typ, pref := range types {
		for _, channel := range pref.Channels {
			if err := validate.Var(string(channel), "oneof=push sms email in_app"); err != nil {
				return fmt.Errorf("unknown channel %q for type %q", channel, typ)
			}
		}
	}
	return nil
}

func normalizeClockBound(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}

func preferencesToPayload(prefs *notify.Preferences) preferencesPayload {
	return preferencesPayload{
		EnablePush:      prefs.EnablePush,
		EnableSMS:       prefs.EnableSMS,
		EnableEmail:     prefs.EnableEmail,
		QuietHoursStart: prefs.QuietHoursStart,
		QuietHoursEnd:   prefs.QuietHoursEnd,
		Timezone:        prefs.Timezone,
		Types:           prefs.Types,
	}
}

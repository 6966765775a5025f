package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/database/testutil"
	"github.com/loadlane/loadlane/internal/hub"
	"github.com/loadlane/loadlane/internal/models"
	"github.com/loadlane/loadlane/internal/notify"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *notify.InAppService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	inApp := notify.NewInAppService(db, nil)
	router := NewRouter(Deps{
		DB:          db,
		InApp:       inApp,
		Preferences: notify.NewPreferenceService(db),
		Hub:         hub.New(),
	})
	return router, db, inApp
}

func doRequest(router *gin.Engine, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHealthzIsOpen(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsIsOpen(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRejectsMissingUserHeader(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/api/v1/notifications", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListNotificationsScopedToUser(t *testing.T) {
	router, _, inApp := newTestRouter(t)
	ctx := context.Background()

	require.NotEmpty(t, inApp.Write(ctx, "u1", notify.TypeLoadAssigned, notify.Data{"load_number": "L-1"}))
	require.NotEmpty(t, inApp.Write(ctx, "u2", notify.TypeLoadAssigned, notify.Data{"load_number": "L-2"}))

	rec := doRequest(router, http.MethodGet, "/api/v1/notifications", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                  `json:"success"`
		Data    []models.Notification `json:"data"`
		Meta    struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, 1, body.Meta.Total)
	require.Len(t, body.Data, 1)
	require.Equal(t, "u1", body.Data[0].UserID)
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	router, _, inApp := newTestRouter(t)
	id := inApp.Write(context.Background(), "u1", notify.TypeNewMessage, notify.Data{})
	require.NotEmpty(t, id)

	rec := doRequest(router, http.MethodGet, "/api/v1/notifications/unread-count", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"count":1`)

	rec = doRequest(router, http.MethodPost, "/api/v1/notifications/"+id+"/read", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/v1/notifications/unread-count", "u1", nil)
	require.Contains(t, rec.Body.String(), `"count":0`)

	// Another user cannot mark it.
	rec = doRequest(router, http.MethodPost, "/api/v1/notifications/"+id+"/read", "u2", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(router, http.MethodPost, "/api/v1/notifications/"+id+"/unread", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/v1/notifications/unread-count", "u1", nil)
	require.Contains(t, rec.Body.String(), `"count":1`)
}

func TestDeleteNotification(t *testing.T) {
	router, _, inApp := newTestRouter(t)
	id := inApp.Write(context.Background(), "u1", notify.TypeNewMessage, notify.Data{})

	rec := doRequest(router, http.MethodDelete, "/api/v1/notifications/"+id, "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodDelete, "/api/v1/notifications/"+id, "u1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPreferencesReturnsDefaults(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/api/v1/preferences", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data preferencesPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Data.EnablePush)
	require.True(t, body.Data.Types[notify.TypeNewMessage].Enabled)
}

func TestUpdatePreferencesValidatesQuietHours(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodPut, "/api/v1/preferences", "u1", map[string]interface{}{
		"quiet_hours_start": "25:99",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, http.MethodPut, "/api/v1/preferences", "u1", map[string]interface{}{
		"quiet_hours_start": "22:00",
		"quiet_hours_end":   "06:00",
		"enable_sms":        false,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/v1/preferences", "u1", nil)
	var body struct {
		Data preferencesPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Data.EnableSMS)
	require.NotNil(t, body.Data.QuietHoursStart)
	require.Equal(t, "22:00", *body.Data.QuietHoursStart)
}

func TestPushSubscriptionLifecycle(t *testing.T) {
	router, db, _ := newTestRouter(t)

	payload := map[string]interface{}{
		"endpoint":    "https://push.example/sub-1",
		"p256dh_key":  "p256dh",
		"auth_key":    "auth",
		"device_name": "pixel",
	}

	rec := doRequest(router, http.MethodPost, "/api/v1/push-subscriptions", "u1", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Re-registering the same endpoint updates in place.
	rec = doRequest(router, http.MethodPost, "/api/v1/push-subscriptions", "u1", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	var subs []models.PushSubscription
	require.NoError(t, db.Where("user_id = ?", "u1").Find(&subs).Error)
	require.Len(t, subs, 1)

	rec = doRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/push-subscriptions/%s", subs[0].ID), "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/push-subscriptions/%s", subs[0].ID), "u1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPushSubscriptionValidation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodPost, "/api/v1/push-subscriptions", "u1", map[string]interface{}{
		"endpoint": "not-a-url",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

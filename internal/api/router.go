package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/hub"
	"github.com/loadlane/loadlane/internal/notify"
)

// Deps carries the collaborators the HTTP layer exposes.
type Deps struct {
	DB          *gorm.DB
	InApp       *notify.InAppService
	Preferences *notify.PreferenceService
	Hub         *hub.Hub
	Events      EventSink
}

// NewRouter builds the gin engine with the notification read API, the
// websocket stream and the operational endpoints.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers := &handlers{deps: deps}

	authed := router.Group("/api/v1")
	authed.Use(requireUser())
	{
		authed.GET("/notifications", handlers.listNotifications)
		authed.GET("/notifications/unread-count", handlers.unreadCount)
		authed.POST("/notifications/read-all", handlers.markAllRead)
		authed.POST("/notifications/:id/read", handlers.markRead)
		authed.POST("/notifications/:id/unread", handlers.markUnread)
		authed.DELETE("/notifications/:id", handlers.deleteNotification)
		authed.GET("/notifications/stream", handlers.stream)

		authed.GET("/preferences", handlers.getPreferences)
		authed.PUT("/preferences", handlers.updatePreferences)

		authed.POST("/push-subscriptions", handlers.createPushSubscription)
		authed.DELETE("/push-subscriptions/:id", handlers.deletePushSubscription)
	}

	// Event ingest for upstream business services. Events are acknowledged
	// before dispatch; delivery never blocks the producing operation.
	if deps.Events != nil {
		events := router.Group("/internal/events")
		{
			events.POST("/load-assigned", handlers.ingestLoadAssigned)
			events.POST("/load-status", handlers.ingestLoadStatus)
			events.POST("/document-uploaded", handlers.ingestDocumentUploaded)
			events.POST("/payment-issued", handlers.ingestPaymentIssued)
			events.POST("/delay-alert", handlers.ingestDelayAlert)
			events.POST("/eta-update", handlers.ingestETAUpdate)
			events.POST("/geofence", handlers.ingestGeofence)
			events.POST("/message", handlers.ingestMessage)
		}
	}

	return router
}

type handlers struct {
	deps Deps
}

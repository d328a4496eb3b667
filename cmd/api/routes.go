package main

import (
	"database/sql"
	"net/http"

	"call-recording/internal/httpapi"
	"call-recording/internal/rbac"
	"call-recording/internal/telephony"
	"call-recording/pkg/metrics"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	DB      *sql.DB
	Metrics *metrics.Metrics

	AuthMW gin.HandlerFunc
	// WebhookMW guards the provider callbacks (signature verification).
	WebhookMW []gin.HandlerFunc

	API      httpapi.Handlers
	Webhooks telephony.WebhookHandler
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := dbHealth(c.Request.Context(), d.DB); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", d.Metrics.Handler())
	}

	v1 := r.Group("/api/v1")

	// Provider webhooks (public, optionally signed).
	hooks := v1.Group("/calls")
	hooks.Use(d.WebhookMW...)
	{
		hooks.GET("/answer", d.Webhooks.HandleAnswer)
		hooks.POST("/answer", d.Webhooks.HandleAnswer)
		hooks.POST("/events", d.Webhooks.HandleCallEvent)
		hooks.POST("/recordings", d.Webhooks.HandleRecordingEvent)
	}

	// AUTH routes
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signup", d.API.Signup)
		authGroup.POST("/login", d.API.Login)
		authGroup.POST("/refresh", d.API.Refresh)
		authGroup.GET("/user", d.AuthMW, d.API.CurrentUser)
	}

	// protected API
	protected := v1.Group("")
	protected.Use(d.AuthMW)
	{
		protected.GET("/recordings/list", d.API.ListRecordings)
		protected.GET("/dashboard/data", d.API.Dashboard)

		// analysts are read-only
		protected.POST("/recordings/create", rbac.RequireAnyRole(rbac.RoleAgent), d.API.CreateRecording)
	}

	// ADMIN routes
	admin := v1.Group("/calls")
	admin.Use(d.AuthMW, rbac.RequireAnyRole(rbac.RoleAdmin))
	{
		admin.GET("/active", d.API.ActiveCalls)
		admin.GET("/:uuid/history", d.API.CallHistory)
	}
}

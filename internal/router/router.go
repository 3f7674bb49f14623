package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/pnj-dev/facility-booking/internal/authz"
	"github.com/pnj-dev/facility-booking/internal/config"
	"github.com/pnj-dev/facility-booking/internal/handler"
	"github.com/pnj-dev/facility-booking/internal/middleware"
)

// Handlers bundles everything the route table needs so Register stays a
// single call from main.
type Handlers struct {
	Auth          *handler.AuthHandler
	Buildings     *handler.BuildingHandler
	Requests      *handler.RequestHandler
	Schedules     *handler.ScheduleHandler
	Notifications *handler.NotificationHandler
	Dashboard     *handler.DashboardHandler
}

// Register wires the full route table. Public routes come first, then
// everything under /api/v1 that requires a valid access token. Write
// access to decisions and schedules is additionally gated by role.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated session endpoints.
	auth := e.Group("/api/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// Public building catalogue, served through the response cache when
	// Redis is configured.
	pub := e.Group("/api/v1")
	if rdb != nil {
		cacheCfg := config.LoadCacheConfig()
		pub.Use(middleware.Cache(cacheCfg, rdb))
	}
	pub.GET("/buildings", h.Buildings.List)
	pub.GET("/buildings/:id", h.Buildings.Get)

	// Everything below requires a session.
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))
	if rdb != nil {
		rlCfg := config.LoadRateLimitConfig()
		if rlCfg.Enabled {
			api.Use(middleware.RateLimit(rdb, rlCfg))
		}
	}

	api.GET("/me", h.Auth.Me)

	api.POST("/requests", h.Requests.Create)
	api.GET("/requests", h.Requests.List)
	api.GET("/requests/:id", h.Requests.Get)
	api.PUT("/requests/:id", h.Requests.Update)
	api.DELETE("/requests/:id", h.Requests.Delete)
	api.GET("/requests/:id/attachment", h.Requests.Attachment)

	// First-stage review: approve or reject with a reason.
	api.PATCH("/requests/:id/status", h.Requests.Decide,
		middleware.Require(authz.ActionDecideRequest))

	// Second-stage scheduling of approved requests.
	api.POST("/requests/:id/schedule", h.Schedules.Create,
		middleware.Require(authz.ActionCreateSchedule))
	api.GET("/schedules", h.Schedules.List)
	api.GET("/schedules/:id", h.Schedules.Get)
	api.PUT("/schedules/:id", h.Schedules.Update,
		middleware.Require(authz.ActionUpdateSchedule))
	api.DELETE("/schedules/:id", h.Schedules.Delete,
		middleware.Require(authz.ActionDeleteSchedule))

	api.GET("/notifications", h.Notifications.List)
	api.GET("/notifications/unread-count", h.Notifications.UnreadCount)
	api.GET("/notifications/recent", h.Notifications.Recent)
	api.PATCH("/notifications/:id/read", h.Notifications.MarkRead)
	api.PATCH("/notifications/read-all", h.Notifications.MarkAllRead)

	api.GET("/dashboard", h.Dashboard.Summary)
}

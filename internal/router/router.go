// Package router registers the HTTP routes and wires middleware to
// handlers.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// Handlers bundles everything the router needs.
type Handlers struct {
	Auth    *handler.AuthHandler
	Movie   *handler.MovieHandler
	Hall    *handler.HallHandler
	Session *handler.SessionHandler
	Ticket  *handler.TicketHandler
	Admin   *handler.AdminHandler
}

// Register wires every route of the API onto e.  Public browsing is
// cached and unauthenticated; booking requires a user token; catalog
// mutations and reporting require the admin role.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	e.Use(rateLimit)

	// auth
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	authed := e.Group("/v1/auth", middleware.JWTAuth(cfg.JWTSecret))
	authed.POST("/logout", h.Auth.Logout)
	authed.GET("/me", h.Auth.Me)

	// public browsing, cached
	pub := e.Group("/v1", cache)
	pub.GET("/movies", h.Movie.List)
	pub.GET("/movies/search", h.Movie.Search)
	pub.GET("/movies/now-playing", h.Movie.NowPlaying)
	pub.GET("/movies/:id", h.Movie.Get)
	pub.GET("/movies/:id/sessions", h.Session.ByMovie)
	pub.GET("/halls", h.Hall.List)
	pub.GET("/halls/:id", h.Hall.Get)
	pub.GET("/halls/:id/seats", h.Hall.Seats)
	pub.GET("/halls/:id/sessions", h.Session.ByHall)
	pub.GET("/sessions", h.Session.List)
	pub.GET("/sessions/search", h.Session.Search)
	pub.GET("/sessions/by-date", h.Session.ByDate)
	pub.GET("/sessions/upcoming", h.Session.Upcoming)
	pub.GET("/sessions/available", h.Session.Available)
	pub.GET("/sessions/:id", h.Session.Get)
	pub.GET("/sessions/:id/seats", h.Session.SeatMap)

	// booking, any authenticated user
	user := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	user.POST("/sessions/:id/reserve", h.Ticket.Reserve)
	user.POST("/sessions/:id/purchase", h.Ticket.Purchase)
	user.POST("/tickets/:number/confirm", h.Ticket.Confirm)
	user.POST("/tickets/:number/cancel", h.Ticket.Cancel)
	user.GET("/tickets/my", h.Ticket.My)
	user.GET("/tickets/:number", h.Ticket.Get)

	// catalog management and reporting, admin only
	admin := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(model.RoleAdmin))
	admin.POST("/movies", h.Movie.Create)
	admin.PUT("/movies/:id", h.Movie.Update)
	admin.DELETE("/movies/:id", h.Movie.Delete)
	admin.POST("/halls", h.Hall.Create)
	admin.PUT("/halls/:id", h.Hall.Update)
	admin.DELETE("/halls/:id", h.Hall.Delete)
	admin.POST("/halls/:id/seats/initialize", h.Hall.InitializeSeats)
	admin.POST("/sessions", h.Session.Create)
	admin.PUT("/sessions/:id", h.Session.Update)
	admin.DELETE("/sessions/:id", h.Session.Delete)
	admin.GET("/sessions/:id/tickets", h.Ticket.BySession)

	admin.GET("/admin/dashboard", h.Admin.Dashboard)
	admin.GET("/admin/reports/revenue", h.Admin.Revenue)
	admin.GET("/admin/reports/revenue/daily", h.Admin.RevenueByDay)
	admin.GET("/admin/reports/revenue/movies", h.Admin.RevenueByMovie)
	admin.GET("/admin/reports/popular", h.Admin.PopularMovies)
	admin.GET("/admin/reports/low-attendance", h.Admin.LowAttendance)
	admin.GET("/admin/users", h.Admin.ListUsers)
	admin.GET("/admin/users/:id/stats", h.Admin.UserStats)
	admin.GET("/admin/users/:id/tickets", h.Admin.UserTickets)
	admin.POST("/admin/sessions/:id/cancel", h.Admin.CancelSession)
	admin.POST("/admin/sessions/:id/reschedule", h.Admin.Reschedule)
}

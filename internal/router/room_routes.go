package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
)

// RegisterRooms registers the room catalog routes.  Browsing is public and
// sits behind the Redis response cache and rate limiter (both no-ops when
// Redis is unavailable or disabled); create and delete require an OWNER JWT.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, jwtSecret string, rdb *redis.Client) {
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	pub := e.Group("/v1", rl, cache)
	pub.GET("/rooms", h.ListRooms)
	pub.GET("/rooms/featured", h.ListFeatured)
	pub.GET("/rooms/:id", h.GetRoom)

	// Uploaded room images are served from the upload directory.
	e.Static("/images", h.UploadDir)

	owner := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)
	owner.POST("/rooms", h.CreateRoom)
	owner.DELETE("/rooms/:id", h.DeleteRoom)
}

package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wb-go/wbf/ginext"

	"eventman/cmd/middleware"
	"eventman/internal/handlers"
	"eventman/pkg/token"
)

type Routers struct {
	Handler *handlers.Handler
	Tokens  *token.Manager
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(middleware.MetricsMiddleware())
	app.Use(cors.Default())

	authRequired := middleware.AuthRequired(r.Tokens)

	apiGroup := app.Group("/v1")

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", r.Handler.RegisterUser)
	authGroup.POST("/login", r.Handler.Login)
	authGroup.GET("/me", authRequired, r.Handler.CurrentUser)

	events := apiGroup.Group("/events")
	events.POST("", authRequired, r.Handler.CreateEvent)
	events.GET("", r.Handler.ListEvents)
	events.GET("/:id", r.Handler.GetEvent)
	events.PUT("/:id", authRequired, r.Handler.UpdateEvent)
	events.PATCH("/:id/status", authRequired, r.Handler.UpdateEventStatus)

	attendees := apiGroup.Group("/attendees")
	attendees.POST("", r.Handler.RegisterAttendee)
	attendees.POST("/:id/check-in", r.Handler.CheckInAttendee)
	attendees.POST("/bulk-check-in", r.Handler.BulkCheckIn)
	attendees.POST("/event/:event_id/bulk-check-in/upload", r.Handler.BulkCheckInUpload)
	attendees.GET("", r.Handler.ListAttendees)
	attendees.GET("/event/:event_id/checked-in", r.Handler.ListCheckedIn)

	app.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return app
}

// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"itinerary/internal/http/handlers"
	"itinerary/internal/http/middleware"
	"itinerary/internal/logger"
	"itinerary/internal/modules/ratelimit"
	"itinerary/internal/service"
)

type RouterDeps struct {
	ServiceName   string
	Dispatcher    *service.Dispatcher
	DefaultFormat service.Format
	// History is nil when no database is configured.
	History     handlers.HistoryReader
	Limiter     ratelimit.Limiter
	CORSOrigins []string
	Log         *logger.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	r := gin.New()
	r.Use(
		otelgin.Middleware(deps.ServiceName),
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.Recovery(log),
		middleware.CORS(deps.CORSOrigins),
		middleware.ClientID(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	itineraryHandler := handlers.NewItineraryHandler(deps.Dispatcher, deps.DefaultFormat, log)
	generate := []gin.HandlerFunc{itineraryHandler.Generate}
	if deps.Limiter != nil {
		generate = append([]gin.HandlerFunc{middleware.RateLimit(deps.Limiter, log)}, generate...)
	}
	api.GET("/generate-itinerary", itineraryHandler.Describe)
	api.POST("/generate-itinerary", generate...)

	historyHandler := handlers.NewHistoryHandler(deps.History, log)
	api.GET("/itineraries", historyHandler.List)
	api.GET("/itineraries/:id", historyHandler.Get)

	return r
}

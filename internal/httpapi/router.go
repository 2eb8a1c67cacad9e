package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/pawtrip/internal/chat"
	"github.com/suPer8Hu/pawtrip/internal/common"
	"github.com/suPer8Hu/pawtrip/internal/config"
	"github.com/suPer8Hu/pawtrip/internal/httpapi/handlers"
	"github.com/suPer8Hu/pawtrip/internal/httpapi/middleware"
)

func NewRouter(cfg config.Config, chatSvc *chat.Service) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	h := handlers.NewHandler(chatSvc)

	r.GET("/ping", h.Ping)

	// anonymous callers are allowed; a valid token scopes the conversation
	api := r.Group("/")
	api.Use(middleware.OptionalAuth(cfg.JWTSecret))
	api.POST("/chat/turn", h.ChatTurn)
	api.POST("/itinerary/generate", h.GenerateItinerary)
	api.GET("/trips", h.ListTrips)
	api.GET("/trips/:id", h.GetTrip)
	return r
}
